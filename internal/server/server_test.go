package server_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/docgen/internal/server"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	return server.NewServer(&server.Config{
		Address:      ":0",
		StorageRoot:  t.TempDir(),
		PublicPrefix: "/public/files",
	})
}

func templateUpload(t *testing.T, body string, extraFields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var docxBuf bytes.Buffer
	zw := zip.NewWriter(&docxBuf)
	ct, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = ct.Write([]byte(
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`))
	require.NoError(t, err)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var reqBuf bytes.Buffer
	mw := multipart.NewWriter(&reqBuf)
	part, err := mw.CreateFormFile("template", "template.docx")
	require.NoError(t, err)
	_, err = part.Write(docxBuf.Bytes())
	require.NoError(t, err)
	for k, v := range extraFields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	return &reqBuf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docgen")
}

func TestFill(t *testing.T) {
	s := newTestServer(t)

	body, contentType := templateUpload(t,
		`<w:p><w:r><w:t>Số: ${so_van_ban}</w:t></w:r></w:p>`,
		map[string]string{"data": `{"so_van_ban": "01/BC-ABC"}`})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fill", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp server.FillResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Document)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 1, resp.Result.Replaced)
}

func TestFill_MissingTemplate(t *testing.T) {
	s := newTestServer(t)

	var reqBuf bytes.Buffer
	mw := multipart.NewWriter(&reqBuf)
	require.NoError(t, mw.WriteField("data", `{}`))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fill", &reqBuf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFill_InvalidDataJSON(t *testing.T) {
	s := newTestServer(t)

	body, contentType := templateUpload(t,
		`<w:p><w:r><w:t>x</w:t></w:r></w:p>`,
		map[string]string{"data": `not-json`})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fill", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceholders(t *testing.T) {
	s := newTestServer(t)

	body, contentType := templateUpload(t,
		`<w:p><w:r><w:t>${so_van_ban} gửi {{ten_co_quan}}</w:t></w:r></w:p>`, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/placeholders", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp server.PlaceholdersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
}

func TestDownload_NotFound(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/nope.docx", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
