package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(filename, contentType string, size int64) *multipart.FileHeader {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Type", contentType)
	return &multipart.FileHeader{
		Filename: filename,
		Header:   header,
		Size:     size,
	}
}

func TestValidateUploadAllowedTypes(t *testing.T) {
	cases := []struct {
		filename    string
		contentType string
	}{
		{"dagvaarding.pdf", "application/pdf"},
		{"contract.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"foto.jpg", "image/jpeg"},
		{"scan.png", "image/png"},
		{"afbeelding.gif", "image/gif"},
		{"afbeelding.webp", "image/webp"},
		{"notitie.txt", "text/plain"},
		{"overzicht.csv", "text/csv"},
		{"bericht.eml", "message/rfc822"},
	}

	for _, tc := range cases {
		assert.Nil(t, validateUpload(fileHeader(tc.filename, tc.contentType, 1024)), tc.filename)
	}
}

func TestValidateUploadEmlByExtension(t *testing.T) {
	// mail clients and browsers often send .eml as octet-stream
	assert.Nil(t, validateUpload(fileHeader("correspondentie.eml", "application/octet-stream", 1024)))
	assert.Nil(t, validateUpload(fileHeader("CORRESPONDENTIE.EML", "application/octet-stream", 1024)))
}

func TestValidateUploadRejectsDisallowedType(t *testing.T) {
	rejected := validateUpload(fileHeader("virus.exe", "application/x-msdownload", 1024))
	require.NotNil(t, rejected)
	assert.Equal(t, "virus.exe", rejected.Filename)
	assert.Contains(t, rejected.Reason, "not allowed")

	assert.NotNil(t, validateUpload(fileHeader("archief.zip", "application/zip", 1024)))
	assert.NotNil(t, validateUpload(fileHeader("pagina.html", "text/html", 1024)))
}

func TestValidateUploadSizeBoundary(t *testing.T) {
	// exactly 100 MiB is allowed, one byte more is not
	assert.Nil(t, validateUpload(fileHeader("groot.pdf", "application/pdf", 100*1024*1024)))

	rejected := validateUpload(fileHeader("te-groot.pdf", "application/pdf", 100*1024*1024+1))
	require.NotNil(t, rejected)
	assert.Contains(t, rejected.Reason, "maximum size")
}

func TestValidateUploadStripsContentTypeParams(t *testing.T) {
	assert.Nil(t, validateUpload(fileHeader("notitie.txt", "text/plain; charset=utf-8", 1024)))
}

func TestUploadDocumentsAllRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// validation happens before any repository or storage access, so the
	// handler can run with none of them wired
	handler := NewDocumentHandler(nil, nil, nil)
	router := gin.New()
	router.POST("/api/cases/:id/uploads", handler.UploadDocuments)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="files"; filename="script.sh"`)
	header.Set("Content-Type", "application/x-sh")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("#!/bin/sh\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/cases/e5a1f1f8-6f3e-4a39-b8e2-6a0c9a2b8f10/uploads", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
		Rejected []RejectedUpload `json:"rejected"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "ALL_FILES_REJECTED", resp.Error.Code)
	require.Len(t, resp.Rejected, 1)
	assert.Equal(t, "script.sh", resp.Rejected[0].Filename)
}

func TestUploadDocumentsMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewDocumentHandler(nil, nil, nil)
	router := gin.New()
	router.POST("/api/cases/:id/uploads", handler.UploadDocuments)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("onbedoeld", "veld"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/cases/e5a1f1f8-6f3e-4a39-b8e2-6a0c9a2b8f10/uploads", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_FILE")
}

func TestUploadDocumentsInvalidCaseID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewDocumentHandler(nil, nil, nil)
	router := gin.New()
	router.POST("/api/cases/:id/uploads", handler.UploadDocuments)

	req := httptest.NewRequest(http.MethodPost, "/api/cases/niet-een-uuid/uploads", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_CASE_ID")
}
