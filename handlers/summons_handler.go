package handlers

import (
	"errors"
	"net/http"

	"github.com/doclegal/rechtstreeks-sub002/models"
	"github.com/doclegal/rechtstreeks-sub002/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SummonsHandler handles HTTP requests for the summons editor
type SummonsHandler struct {
	summonsService *service.SummonsService
}

// NewSummonsHandler creates a new summons handler
func NewSummonsHandler(summonsService *service.SummonsService) *SummonsHandler {
	return &SummonsHandler{summonsService: summonsService}
}

// CreateSummons handles POST /api/cases/:id/summons
func (h *SummonsHandler) CreateSummons(c *gin.Context) {
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

	result, err := h.summonsService.CreateSummons(c.Request.Context(), service.CreateSummonsRequest{CaseID: caseID})
	if err != nil {
		if errors.Is(err, service.ErrCaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CASE_NOT_FOUND",
					"message": "Case not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CREATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"summons":  result.Summons,
			"sections": result.Sections,
		},
	})
}

// ListSections handles GET /api/summons/:id/sections
func (h *SummonsHandler) ListSections(c *gin.Context) {
	summonsID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_SUMMONS_ID",
				"message": "Invalid summons id format",
			},
		})
		return
	}

	result, err := h.summonsService.ListSections(c.Request.Context(), service.ListSectionsRequest{SummonsID: summonsID})
	if err != nil {
		if errors.Is(err, service.ErrSummonsNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SUMMONS_NOT_FOUND",
					"message": "Summons not found",
				},
			})
			return
		}
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
			"sections": result.Sections,
		},
	})
}

// GenerateSectionRequest represents the request body for generating a section
type GenerateSectionRequest struct {
	UserFields   map[string]interface{} `json:"user_fields"`
	UserFeedback *string                `json:"user_feedback"`
}

// GenerateSection handles POST /api/summons/:id/sections/:key/generate
func (h *SummonsHandler) GenerateSection(c *gin.Context) {
	summonsID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_SUMMONS_ID",
				"message": "Invalid summons id format",
			},
		})
		return
	}

	key := models.SectionKey(c.Param("key"))
	if !models.IsValidSectionKey(key) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SECTION_NOT_FOUND",
				"message": "Unknown section key",
			},
		})
		return
	}

	var req GenerateSectionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_REQUEST",
					"message": err.Error(),
				},
			})
			return
		}
	}

	result, err := h.summonsService.GenerateSection(c.Request.Context(), service.GenerateSectionRequest{
		SummonsID:    summonsID,
		Key:          key,
		UserFields:   req.UserFields,
		UserFeedback: req.UserFeedback,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSummonsNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SUMMONS_NOT_FOUND",
					"message": "Summons not found",
				},
			})
		case errors.Is(err, service.ErrSectionNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SECTION_NOT_FOUND",
					"message": "Section not found",
				},
			})
		case errors.Is(err, service.ErrSectionNotGeneratable):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SECTION_NOT_GENERATABLE",
					"message": "Section cannot be generated in its current status",
				},
			})
		case errors.Is(err, service.ErrSectionLocked):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SECTION_LOCKED",
					"message": "Earlier sections must be approved first",
				},
			})
		case errors.Is(err, service.ErrGenerationFailed):
			c.JSON(http.StatusBadGateway, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "GENERATION_FAILED",
					"message": err.Error(),
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "GENERATE_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Section,
	})
}

// ApproveSection handles POST /api/summons/:id/sections/:key/approve
func (h *SummonsHandler) ApproveSection(c *gin.Context) {
	summonsID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_SUMMONS_ID",
				"message": "Invalid summons id format",
			},
		})
		return
	}

	result, err := h.summonsService.ApproveSection(c.Request.Context(), service.ApproveSectionRequest{
		SummonsID: summonsID,
		Key:       models.SectionKey(c.Param("key")),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSectionNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SECTION_NOT_FOUND",
					"message": "Section not found",
				},
			})
		case errors.Is(err, service.ErrInvalidSectionState):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_SECTION_STATE",
					"message": "Only drafted sections can be approved",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "APPROVE_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Section,
	})
}

// RejectSectionRequest represents the request body for rejecting a section
type RejectSectionRequest struct {
	Feedback string `json:"feedback"`
}

// RejectSection handles POST /api/summons/:id/sections/:key/reject
func (h *SummonsHandler) RejectSection(c *gin.Context) {
	summonsID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_SUMMONS_ID",
				"message": "Invalid summons id format",
			},
		})
		return
	}

	var req RejectSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.summonsService.RejectSection(c.Request.Context(), service.RejectSectionRequest{
		SummonsID: summonsID,
		Key:       models.SectionKey(c.Param("key")),
		Feedback:  req.Feedback,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFeedbackRequired):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FEEDBACK_REQUIRED",
					"message": "Feedback is required to reject a section",
				},
			})
		case errors.Is(err, service.ErrSectionNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SECTION_NOT_FOUND",
					"message": "Section not found",
				},
			})
		case errors.Is(err, service.ErrInvalidSectionState):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_SECTION_STATE",
					"message": "Only drafted sections can be rejected",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "REJECT_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Section,
	})
}

// AssembleSummons handles GET /api/summons/:id/document
func (h *SummonsHandler) AssembleSummons(c *gin.Context) {
	summonsID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_SUMMONS_ID",
				"message": "Invalid summons id format",
			},
		})
		return
	}

	result, err := h.summonsService.AssembleSummons(c.Request.Context(), service.AssembleSummonsRequest{SummonsID: summonsID})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSummonsNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SUMMONS_NOT_FOUND",
					"message": "Summons not found",
				},
			})
		case errors.Is(err, service.ErrSummonsIncomplete):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SUMMONS_INCOMPLETE",
					"message": "All sections must be approved before assembly",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ASSEMBLE_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"content": result.Content,
		},
	})
}
