package repository

import (
	"context"

	"github.com/doclegal/rechtstreeks-sub002/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResponseRepository handles database operations for missing-info responses
type ResponseRepository struct {
	db *pgxpool.Pool
}

// NewResponseRepository creates a new response repository
func NewResponseRepository(db *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Upsert stores a response, replacing any earlier response for the same
// requirement. A case keeps at most one response per requirement id.
func (r *ResponseRepository) Upsert(ctx context.Context, resp *models.MissingInfoResponse) error {
	query := `
		INSERT INTO missing_info_responses (
			case_id, requirement_id, kind, value, document_id, document_name
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (case_id, requirement_id) DO UPDATE SET
			kind = EXCLUDED.kind,
			value = EXCLUDED.value,
			document_id = EXCLUDED.document_id,
			document_name = EXCLUDED.document_name,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		resp.CaseID,
		resp.RequirementID,
		resp.Kind,
		resp.Value,
		resp.DocumentID,
		resp.DocumentName,
	).Scan(&resp.ID, &resp.CreatedAt, &resp.UpdatedAt)

	return err
}

// ListByCaseID retrieves all responses for a case
func (r *ResponseRepository) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.MissingInfoResponse, error) {
	query := `
		SELECT id, case_id, requirement_id, kind, value, document_id, document_name,
			created_at, updated_at
		FROM missing_info_responses
		WHERE case_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []*models.MissingInfoResponse
	for rows.Next() {
		resp := &models.MissingInfoResponse{}
		err := rows.Scan(
			&resp.ID,
			&resp.CaseID,
			&resp.RequirementID,
			&resp.Kind,
			&resp.Value,
			&resp.DocumentID,
			&resp.DocumentName,
			&resp.CreatedAt,
			&resp.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}

	return responses, rows.Err()
}
