package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/doclegal/rechtstreeks-sub002/models"
	"github.com/doclegal/rechtstreeks-sub002/repository"

	"github.com/google/uuid"
)

// ErrInvalidAnswer is returned when a submitted answer is malformed
var ErrInvalidAnswer = errors.New("invalid answer")

// MissingInfoService reconciles requirements, drafts and saved responses
type MissingInfoService struct {
	caseRepo     *repository.CaseRepository
	responseRepo *repository.ResponseRepository
}

// MissingInfoServiceOption is a functional option for MissingInfoService
type MissingInfoServiceOption func(*MissingInfoService)

// MissingInfoWithCaseRepository sets the case repository
func MissingInfoWithCaseRepository(repo *repository.CaseRepository) MissingInfoServiceOption {
	return func(s *MissingInfoService) {
		s.caseRepo = repo
	}
}

// MissingInfoWithResponseRepository sets the response repository
func MissingInfoWithResponseRepository(repo *repository.ResponseRepository) MissingInfoServiceOption {
	return func(s *MissingInfoService) {
		s.responseRepo = repo
	}
}

// NewMissingInfoService creates a new missing-info service
func NewMissingInfoService(opts ...MissingInfoServiceOption) *MissingInfoService {
	s := &MissingInfoService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetMissingInfoRequest represents a request for a case's requirement overview
type GetMissingInfoRequest struct {
	CaseID uuid.UUID
}

// GetMissingInfoResult bundles requirements, saved responses and completion
type GetMissingInfoResult struct {
	Requirements []models.Requirement
	Responses    []*models.MissingInfoResponse
	Completion   models.CompletionSummary
}

// GetMissingInfo derives the requirement list from the latest analysis and
// pairs it with the saved responses and completion counts.
func (s *MissingInfoService) GetMissingInfo(ctx context.Context, req GetMissingInfoRequest) (*GetMissingInfoResult, error) {
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

	saved, err := s.responseRepo.ListByCaseID(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}

	requirements := ExtractRequirements(kase.Analysis)

	return &GetMissingInfoResult{
		Requirements: requirements,
		Responses:    saved,
		Completion:   ComputeCompletion(requirements, saved),
	}, nil
}

// ListResponsesRequest represents a request for a case's saved responses
type ListResponsesRequest struct {
	CaseID uuid.UUID
}

// ListResponsesResult represents the saved responses of a case
type ListResponsesResult struct {
	Responses []*models.MissingInfoResponse
}

// ListResponses returns the saved responses for a case
func (s *MissingInfoService) ListResponses(ctx context.Context, req ListResponsesRequest) (*ListResponsesResult, error) {
	if s.responseRepo == nil {
		return nil, errors.New("response repository not set")
	}

	responses, err := s.responseRepo.ListByCaseID(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}

	return &ListResponsesResult{Responses: responses}, nil
}

// SubmittedAnswer is one answer in a submission payload
type SubmittedAnswer struct {
	RequirementID string
	Kind          models.ResponseKind
	Value         string
	DocumentID    *uuid.UUID
	DocumentName  string
}

// SubmitResponsesRequest represents a submission of draft answers
type SubmitResponsesRequest struct {
	CaseID  uuid.UUID
	Answers []SubmittedAnswer
}

// SubmitResponsesResult represents the outcome of a submission
type SubmitResponsesResult struct {
	Responses  []*models.MissingInfoResponse
	Completion models.CompletionSummary
}

// SubmitResponses runs the incoming answers through a response ledger and
// persists what survives. Each answer replaces any earlier response for the
// same requirement; whitespace-only text answers are dropped, and a
// submission that drops to zero answers is rejected outright.
func (s *MissingInfoService) SubmitResponses(ctx context.Context, req SubmitResponsesRequest) (*SubmitResponsesResult, error) {
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

	saved, err := s.responseRepo.ListByCaseID(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}

	ledger := NewResponseLedger(req.CaseID, saved)
	for _, answer := range req.Answers {
		if answer.RequirementID == "" {
			return nil, fmt.Errorf("%w: missing requirement id", ErrInvalidAnswer)
		}
		switch answer.Kind {
		case models.ResponseKindText:
			ledger.SetText(answer.RequirementID, answer.Value)
		case models.ResponseKindDocument:
			if answer.DocumentID == nil {
				return nil, fmt.Errorf("%w: document answer for %s has no document id", ErrInvalidAnswer, answer.RequirementID)
			}
			ledger.SetDocument(answer.RequirementID, *answer.DocumentID, answer.DocumentName)
		case models.ResponseKindNotAvailable:
			ledger.SetNotAvailable(answer.RequirementID)
		default:
			return nil, fmt.Errorf("%w: unknown kind %q for %s", ErrInvalidAnswer, answer.Kind, answer.RequirementID)
		}
	}

	drafts, err := ledger.Drain()
	if err != nil {
		return nil, err
	}

	for _, draft := range drafts {
		if err := s.responseRepo.Upsert(ctx, draft); err != nil {
			return nil, err
		}
	}

	all, err := s.responseRepo.ListByCaseID(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}

	requirements := ExtractRequirements(kase.Analysis)
	completion := ComputeCompletion(requirements, all)

	if completion.Complete && kase.Status == models.CaseStatusAwaitingInfo {
		if err := s.caseRepo.UpdateStatus(ctx, req.CaseID, models.CaseStatusComplete); err != nil {
			return nil, err
		}
	}

	return &SubmitResponsesResult{
		Responses:  all,
		Completion: completion,
	}, nil
}
