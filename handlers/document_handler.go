package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/doclegal/rechtstreeks-sub002/models"
	"github.com/doclegal/rechtstreeks-sub002/repository"
	"github.com/doclegal/rechtstreeks-sub002/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxUploadSize is the hard per-file limit of 100 MiB
const maxUploadSize = 100 * 1024 * 1024

// allowedUploadTypes is the MIME allow-list for case documents. Emails are
// additionally accepted by their .eml extension because browsers rarely send
// message/rfc822.
var allowedUploadTypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"text/plain":      true,
	"text/csv":        true,
	"message/rfc822":  true,
}

// DocumentHandler handles HTTP requests for case documents
type DocumentHandler struct {
	documentRepo *repository.DocumentRepository
	caseRepo     *repository.CaseRepository
	storage      storage.Storage
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentRepo *repository.DocumentRepository, caseRepo *repository.CaseRepository, store storage.Storage) *DocumentHandler {
	return &DocumentHandler{
		documentRepo: documentRepo,
		caseRepo:     caseRepo,
		storage:      store,
	}
}

// RejectedUpload describes why a file in an upload batch was refused
type RejectedUpload struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// validateUpload checks one file against the type allow-list and size limit
func validateUpload(fileHeader *multipart.FileHeader) *RejectedUpload {
	mimeType := fileHeader.Header.Get("Content-Type")
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	isEml := strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".eml")
	if !allowedUploadTypes[mimeType] && !isEml {
		return &RejectedUpload{
			Filename: fileHeader.Filename,
			Reason:   fmt.Sprintf("file type %q is not allowed", mimeType),
		}
	}

	if fileHeader.Size > maxUploadSize {
		return &RejectedUpload{
			Filename: fileHeader.Filename,
			Reason:   fmt.Sprintf("file exceeds maximum size of %d bytes", maxUploadSize),
		}
	}

	return nil
}

// UploadDocuments handles POST /api/cases/:id/uploads. It accepts a single
// "file" field or a multi-valued "files" field. Invalid files are reported
// per file; valid files in the same batch are still stored.
func (h *DocumentHandler) UploadDocuments(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CASE_ID",
				"message": "Invalid case id format",
			},
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FORM",
				"message": err.Error(),
			},
		})
		return
	}

	fileHeaders := form.File["files"]
	if single := form.File["file"]; len(single) > 0 {
		fileHeaders = append(fileHeaders, single...)
	}
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "At least one file is required",
			},
		})
		return
	}

	// Validate the whole batch before touching the database or storage, so
	// a batch of rejects costs nothing.
	var accepted []*multipart.FileHeader
	var rejected []RejectedUpload
	for _, fh := range fileHeaders {
		if reason := validateUpload(fh); reason != nil {
			rejected = append(rejected, *reason)
			continue
		}
		accepted = append(accepted, fh)
	}

	if len(accepted) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ALL_FILES_REJECTED",
				"message": "No valid files in upload",
			},
			"rejected": rejected,
		})
		return
	}

	if _, err := h.caseRepo.GetByID(c.Request.Context(), caseID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CASE_NOT_FOUND",
				"message": "Case not found",
			},
		})
		return
	}

	var documents []*models.Document
	for _, fh := range accepted {
		doc, err := h.storeUpload(c, caseID, fh)
		if err != nil {
			rejected = append(rejected, RejectedUpload{Filename: fh.Filename, Reason: err.Error()})
			continue
		}
		documents = append(documents, doc)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"documents": documents,
			"rejected":  rejected,
		},
	})
}

func (h *DocumentHandler) storeUpload(c *gin.Context, caseID uuid.UUID, fh *multipart.FileHeader) (*models.Document, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || strings.HasSuffix(strings.ToLower(fh.Filename), ".eml") {
		mimeType = "message/rfc822"
	}

	docID := uuid.New()
	storagePath, err := h.storage.Upload(c.Request.Context(), docID, fh.Filename, file)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	doc := &models.Document{
		ID:          docID,
		CaseID:      caseID,
		Filename:    fh.Filename,
		MimeType:    mimeType,
		Size:        fh.Size,
		StoragePath: storagePath,
	}
	if err := h.documentRepo.Create(c.Request.Context(), doc); err != nil {
		// Keep storage and database consistent when the insert fails.
		_ = h.storage.Delete(c.Request.Context(), storagePath)
		return nil, fmt.Errorf("failed to save document record: %w", err)
	}

	return doc, nil
}

// ListDocuments handles GET /api/cases/:id/uploads
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CASE_ID",
				"message": "Invalid case id format",
			},
		})
		return
	}

	documents, err := h.documentRepo.ListByCaseID(c.Request.Context(), caseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"documents": documents,
			"count":     len(documents),
		},
	})
}

// DownloadDocument handles GET /api/documents/:id/download
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DOCUMENT_ID",
				"message": "Invalid document id format",
			},
		})
		return
	}

	doc, err := h.documentRepo.GetByID(c.Request.Context(), docID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOCUMENT_NOT_FOUND",
				"message": "Document not found",
			},
		})
		return
	}

	reader, err := h.storage.Download(c.Request.Context(), doc.StoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOWNLOAD_FAILED",
				"message": err.Error(),
			},
		})
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Header("Content-Type", doc.MimeType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Headers are already sent; nothing to do but abort the stream.
		c.Abort()
	}
}
