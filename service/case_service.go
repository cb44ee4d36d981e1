package service

import (
	"context"
	"errors"

	"github.com/doclegal/rechtstreeks-sub002/models"
	"github.com/doclegal/rechtstreeks-sub002/repository"

	"github.com/google/uuid"
)

// ErrCaseNotFound is returned when a case does not exist
var ErrCaseNotFound = errors.New("case not found")

// CaseService handles business logic for cases
type CaseService struct {
	caseRepo     *repository.CaseRepository
	responseRepo *repository.ResponseRepository
}

// CaseServiceOption is a functional option for CaseService
type CaseServiceOption func(*CaseService)

// WithCaseRepository sets the case repository
func WithCaseRepository(repo *repository.CaseRepository) CaseServiceOption {
	return func(s *CaseService) {
		s.caseRepo = repo
	}
}

// WithResponseRepository sets the response repository
func WithResponseRepository(repo *repository.ResponseRepository) CaseServiceOption {
	return func(s *CaseService) {
		s.responseRepo = repo
	}
}

// NewCaseService creates a new case service
func NewCaseService(opts ...CaseServiceOption) *CaseService {
	s := &CaseService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCaseRequest represents a request to create a case
type CreateCaseRequest struct {
	UserID      uuid.UUID
	Title       string
	Description string
}

// CreateCaseResult represents the result of creating a case
type CreateCaseResult struct {
	Case *models.Case
}

// CreateCase creates a new case in intake state
func (s *CaseService) CreateCase(ctx context.Context, req CreateCaseRequest) (*CreateCaseResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case repository not set")
	}

	kase := &models.Case{
		UserID:      req.UserID,
		Status:      models.CaseStatusIntake,
		Title:       req.Title,
		Description: req.Description,
	}

	err := s.caseRepo.Create(ctx, kase)
	if err != nil {
		return nil, err
	}

	return &CreateCaseResult{Case: kase}, nil
}

// GetCaseRequest represents a request to get a case
type GetCaseRequest struct {
	ID uuid.UUID
}

// GetCaseResult represents the result of getting a case
type GetCaseResult struct {
	Case *models.Case
}

// GetCase retrieves a case by ID
func (s *CaseService) GetCase(ctx context.Context, req GetCaseRequest) (*GetCaseResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case repository not set")
	}

	kase, err := s.caseRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	return &GetCaseResult{Case: kase}, nil
}

// AttachAnalysisRequest represents a request to store an AI analysis payload
type AttachAnalysisRequest struct {
	CaseID   uuid.UUID
	Analysis models.AnalysisJSON
}

// AttachAnalysisResult represents the result of storing an analysis
type AttachAnalysisResult struct {
	Case         *models.Case
	Requirements []models.Requirement
	Completion   models.CompletionSummary
}

// AttachAnalysis stores the analysis payload produced by the triage backend
// and moves the case to awaiting_info when the payload leaves required
// requirements unanswered.
func (s *CaseService) AttachAnalysis(ctx context.Context, req AttachAnalysisRequest) (*AttachAnalysisResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case repository not set")
	}
	if s.responseRepo == nil {
		return nil, errors.New("response repository not set")
	}

	kase, err := s.caseRepo.GetByID(ctx, req.CaseID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	if err := s.caseRepo.UpdateAnalysis(ctx, req.CaseID, req.Analysis); err != nil {
		return nil, err
	}
	kase.Analysis = req.Analysis

	saved, err := s.responseRepo.ListByCaseID(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}

	requirements := ExtractRequirements(req.Analysis)
	completion := ComputeCompletion(requirements, saved)

	status := models.CaseStatusComplete
	if !completion.Complete {
		status = models.CaseStatusAwaitingInfo
	}
	if status != kase.Status {
		if err := s.caseRepo.UpdateStatus(ctx, req.CaseID, status); err != nil {
			return nil, err
		}
		kase.Status = status
	}

	return &AttachAnalysisResult{
		Case:         kase,
		Requirements: requirements,
		Completion:   completion,
	}, nil
}

// ListCasesRequest represents a request to list cases
type ListCasesRequest struct {
	UserID uuid.UUID
	Status *models.CaseStatus
	Limit  int
	Offset int
}

// ListCasesResult represents the result of listing cases
type ListCasesResult struct {
	Cases []*models.Case
}

// ListCases lists cases for a user
func (s *CaseService) ListCases(ctx context.Context, req ListCasesRequest) (*ListCasesResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case repository not set")
	}

	cases, err := s.caseRepo.ListByUserID(ctx, req.UserID, req.Status, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}

	return &ListCasesResult{Cases: cases}, nil
}
