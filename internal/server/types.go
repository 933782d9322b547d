package server

import "github.com/rezonia/docgen/internal/model"

// FillResponse is the response for the fill endpoint
type FillResponse struct {
	Document string        `json:"document"`
	Result   *model.Result `json:"result"`
}

// PlaceholdersResponse is the response for the placeholders endpoint
type PlaceholdersResponse struct {
	Placeholders []model.Placeholder `json:"placeholders"`
	Count        int                 `json:"count"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
