package model

import "fmt"

// TemplateNotFoundError is returned when the canonical template cannot be
// located. It is the only fill-pipeline error with no fallback tier.
type TemplateNotFoundError struct {
	Path  string
	Cause error
}

func (e *TemplateNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template not found: %s (%v)", e.Path, e.Cause)
	}
	return fmt.Sprintf("template not found: %s", e.Path)
}

func (e *TemplateNotFoundError) Unwrap() error {
	return e.Cause
}

// NewTemplateNotFoundError creates a new template-not-found error
func NewTemplateNotFoundError(path string, cause error) *TemplateNotFoundError {
	return &TemplateNotFoundError{Path: path, Cause: cause}
}

// MalformedDocumentError indicates the archive or its document XML part could
// not be parsed. Callers degrade to raw string substitution instead of failing.
type MalformedDocumentError struct {
	Part    string
	Message string
	Cause   error
}

func (e *MalformedDocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed document [%s]: %s (%v)", e.Part, e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed document [%s]: %s", e.Part, e.Message)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Cause
}

// NewMalformedDocumentError creates a new malformed-document error
func NewMalformedDocumentError(part, message string, cause error) *MalformedDocumentError {
	return &MalformedDocumentError{Part: part, Message: message, Cause: cause}
}

// ClassificationServiceError indicates a synthesis or content-generation call
// failed. Always recovered locally: synthesis yields an empty map, generation
// yields an empty string for the affected span.
type ClassificationServiceError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *ClassificationServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("classification service failed [%s]: %s (%v)", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("classification service failed [%s]: %s", e.Operation, e.Message)
}

func (e *ClassificationServiceError) Unwrap() error {
	return e.Cause
}

// NewClassificationServiceError creates a new classification-service error
func NewClassificationServiceError(operation, message string, cause error) *ClassificationServiceError {
	return &ClassificationServiceError{Operation: operation, Message: message, Cause: cause}
}

// PlaceholderNotFoundError indicates a substitution was requested for a token
// not physically present in the document. Recovered per key and counted in
// Result.Failed.
type PlaceholderNotFoundError struct {
	Token string
}

func (e *PlaceholderNotFoundError) Error() string {
	return fmt.Sprintf("placeholder not found in document: %s", e.Token)
}

// NewPlaceholderNotFoundError creates a new placeholder-not-found error
func NewPlaceholderNotFoundError(token string) *PlaceholderNotFoundError {
	return &PlaceholderNotFoundError{Token: token}
}

// PartialWriteError indicates an I/O failure while repackaging the archive.
// Fatal: no partially written file is ever promoted to the final path.
type PartialWriteError struct {
	Path  string
	Cause error
}

func (e *PartialWriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("partial write: %s (%v)", e.Path, e.Cause)
	}
	return fmt.Sprintf("partial write: %s", e.Path)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Cause
}

// NewPartialWriteError creates a new partial-write error
func NewPartialWriteError(path string, cause error) *PartialWriteError {
	return &PartialWriteError{Path: path, Cause: cause}
}
