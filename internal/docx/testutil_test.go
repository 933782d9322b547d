package docx_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

// documentXML wraps body content in a minimal wordprocessingml document.
func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`
}

// run builds a single w:r with one w:t.
func run(text string) string {
	return `<w:r><w:t>` + text + `</w:t></w:r>`
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// writeDocx creates a minimal .docx file under dir and returns its path.
func writeDocx(t *testing.T, dir, name string, parts map[string]string) string {
	t.Helper()

	if _, ok := parts["[Content_Types].xml"]; !ok {
		parts["[Content_Types].xml"] = contentTypesXML
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	for partName, content := range parts {
		w, err := zw.Create(partName)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	return path
}
