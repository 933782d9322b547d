package filler_test

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rezonia/docgen/internal/docx"
	"github.com/rezonia/docgen/internal/llm"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`
}

func run(text string) string {
	return `<w:r><w:t>` + text + `</w:t></w:r>`
}

func para(runs ...string) string {
	body := ""
	for _, r := range runs {
		body += run(r)
	}
	return `<w:p>` + body + `</w:p>`
}

// writeTemplate creates a minimal template .docx and returns its path.
func writeTemplate(t *testing.T, dir, body string) string {
	t.Helper()

	path := filepath.Join(dir, "template.docx")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	for name, content := range map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"word/document.xml":   documentXML(body),
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	return path
}

// flattenedText re-opens a generated document and returns its merged text.
func flattenedText(t *testing.T, path string) string {
	t.Helper()

	session, err := docx.Open(path)
	require.NoError(t, err)
	doc, err := session.Part(docx.DocumentPart)
	require.NoError(t, err)
	return docx.Flatten(doc.Root()).Text
}

// fakeCompleter returns canned responses keyed by call order, or a fixed
// error.
type fakeCompleter struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string, _ llm.ResponseFormat) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	i := f.calls - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}
