package handlers

import (
	"errors"
	"net/http"

	"github.com/doclegal/rechtstreeks-sub002/models"
	"github.com/doclegal/rechtstreeks-sub002/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MissingInfoHandler handles HTTP requests for missing-information flows
type MissingInfoHandler struct {
	missingInfoService *service.MissingInfoService
}

// NewMissingInfoHandler creates a new missing-info handler
func NewMissingInfoHandler(missingInfoService *service.MissingInfoService) *MissingInfoHandler {
	return &MissingInfoHandler{missingInfoService: missingInfoService}
}

// GetMissingInfo handles GET /api/cases/:id/missing-info
func (h *MissingInfoHandler) GetMissingInfo(c *gin.Context) {
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

	result, err := h.missingInfoService.GetMissingInfo(c.Request.Context(), service.GetMissingInfoRequest{CaseID: caseID})
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
				"code":    "GET_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"requirements": result.Requirements,
			"responses":    result.Responses,
			"completion":   result.Completion,
		},
	})
}

// ListResponses handles GET /api/cases/:id/missing-info/responses
func (h *MissingInfoHandler) ListResponses(c *gin.Context) {
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

	result, err := h.missingInfoService.ListResponses(c.Request.Context(), service.ListResponsesRequest{CaseID: caseID})
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
			"responses": result.Responses,
		},
	})
}

// SubmitAnswerRequest is one answer in a submission body
type SubmitAnswerRequest struct {
	RequirementID string  `json:"requirement_id" binding:"required"`
	Kind          string  `json:"kind" binding:"required"`
	Value         string  `json:"value"`
	DocumentID    *string `json:"document_id"`
	DocumentName  string  `json:"document_name"`
}

// SubmitResponsesRequest represents the request body for submitting answers
type SubmitResponsesRequest struct {
	Answers []SubmitAnswerRequest `json:"answers" binding:"required"`
}

// SubmitResponses handles POST /api/cases/:id/missing-info/responses
func (h *MissingInfoHandler) SubmitResponses(c *gin.Context) {
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

	var req SubmitResponsesRequest
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

	answers := make([]service.SubmittedAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answer := service.SubmittedAnswer{
			RequirementID: a.RequirementID,
			Kind:          models.ResponseKind(a.Kind),
			Value:         a.Value,
			DocumentName:  a.DocumentName,
		}
		if a.DocumentID != nil {
			docID, err := uuid.Parse(*a.DocumentID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INVALID_DOCUMENT_ID",
						"message": "Invalid document_id format",
					},
				})
				return
			}
			answer.DocumentID = &docID
		}
		answers = append(answers, answer)
	}

	result, err := h.missingInfoService.SubmitResponses(c.Request.Context(), service.SubmitResponsesRequest{
		CaseID:  caseID,
		Answers: answers,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaseNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CASE_NOT_FOUND",
					"message": "Case not found",
				},
			})
		case errors.Is(err, service.ErrInvalidAnswer):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_ANSWER",
					"message": err.Error(),
				},
			})
		case errors.Is(err, service.ErrNoDraftAnswers):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NO_ANSWERS",
					"message": "Submission contains no usable answers",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SUBMIT_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"responses":  result.Responses,
			"completion": result.Completion,
		},
	})
}
