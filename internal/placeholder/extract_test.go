package placeholder_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/docgen/internal/placeholder"
)

func TestScanText_EachSyntax(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		token string
		key   string
	}{
		{"dollar brace", "Số: ${so_van_ban}", "${so_van_ban}", "so_van_ban"},
		{"double brace", "Kính gửi {{ten_co_quan}}", "{{ten_co_quan}}", "ten_co_quan"},
		{"single brace", "Ngày {ngay_thang}", "{ngay_thang}", "ngay_thang"},
		{"double bracket", "Người ký [[nguoi_ky]]", "[[nguoi_ky]]", "nguoi_ky"},
		{"single bracket", "Chức vụ [chuc_vu]", "[chuc_vu]", "chuc_vu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := placeholder.ScanText(tt.text)
			require.Len(t, found, 1)
			assert.Equal(t, tt.key, found[tt.token])
		})
	}
}

func TestScanText_AllSyntaxesCombined(t *testing.T) {
	text := "${a} {{b}} {c} [[d]] [e]"
	found := placeholder.ScanText(text)

	assert.Equal(t, map[string]string{
		"${a}":  "a",
		"{{b}}": "b",
		"{c}":   "c",
		"[[d]]": "d",
		"[e]":   "e",
	}, found)
}

func TestScanText_LongerDelimitersWin(t *testing.T) {
	// "{{key}}" must not additionally register as "{key}", nor "[[x]]" as "[x]".
	found := placeholder.ScanText("{{key}} and [[x]]")

	assert.Equal(t, map[string]string{
		"{{key}}": "key",
		"[[x]]":   "x",
	}, found)
}

func TestScanText_KeyNormalization(t *testing.T) {
	found := placeholder.ScanText("${ Tên cơ quan }")
	assert.Equal(t, "ten_co_quan", found["${ Tên cơ quan }"])
}

func TestScanText_EmptyKeyDiscarded(t *testing.T) {
	found := placeholder.ScanText("${ ... } normal text")
	assert.Empty(t, found)
}

func TestToken(t *testing.T) {
	assert.Equal(t, "${so_van_ban}", placeholder.Token("so_van_ban"))
}

func writeTestDocx(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "template.docx")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	return path
}

func TestExtract_RunFragmentedToken(t *testing.T) {
	// "${so_van_ban}" split across three runs; only the merged-paragraph
	// pass can see it.
	body := `<w:p>` +
		`<w:r><w:t>${so_</w:t></w:r>` +
		`<w:r><w:t>van_</w:t></w:r>` +
		`<w:r><w:t>ban}</w:t></w:r>` +
		`</w:p>`

	found, err := placeholder.Extract(writeTestDocx(t, body))
	require.NoError(t, err)

	// Exactly one token: the raw-XML pass must not also register a
	// cross-tag match spanning the run boundaries.
	require.Len(t, found, 1)
	assert.Equal(t, "so_van_ban", found["${so_van_ban}"])
}

func TestExtract_NoPlaceholders(t *testing.T) {
	body := `<w:p><w:r><w:t>CỘNG HÒA XÃ HỘI CHỦ NGHĨA VIỆT NAM</w:t></w:r></w:p>`

	found, err := placeholder.Extract(writeTestDocx(t, body))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestExtract_MissingTemplate(t *testing.T) {
	_, err := placeholder.Extract(filepath.Join(t.TempDir(), "nope.docx"))
	require.Error(t, err)
}
