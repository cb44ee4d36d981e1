package repository

import (
	"context"
	"fmt"

	"github.com/doclegal/rechtstreeks-sub002/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CaseRepository handles database operations for cases
type CaseRepository struct {
	db *pgxpool.Pool
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: db}
}

// Create creates a new case
func (r *CaseRepository) Create(ctx context.Context, kase *models.Case) error {
	query := `
		INSERT INTO cases (
			user_id, status, title, description, analysis
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		kase.UserID,
		kase.Status,
		kase.Title,
		kase.Description,
		kase.Analysis,
	).Scan(&kase.ID, &kase.CreatedAt, &kase.UpdatedAt)

	return err
}

// GetByID retrieves a case by ID
func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	kase := &models.Case{}
	query := `
		SELECT id, user_id, status, title, description, analysis,
			created_at, updated_at, completed_at
		FROM cases
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&kase.ID,
		&kase.UserID,
		&kase.Status,
		&kase.Title,
		&kase.Description,
		&kase.Analysis,
		&kase.CreatedAt,
		&kase.UpdatedAt,
		&kase.CompletedAt,
	)

	if err != nil {
		return nil, err
	}

	return kase, nil
}

// UpdateAnalysis replaces the stored AI analysis payload for a case
func (r *CaseRepository) UpdateAnalysis(ctx context.Context, id uuid.UUID, analysis models.AnalysisJSON) error {
	query := `
		UPDATE cases SET
			analysis = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, analysis)
	return err
}

// UpdateStatus updates the status of a case
func (r *CaseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CaseStatus) error {
	query := `
		UPDATE cases SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// ListByUserID retrieves all cases for a user
func (r *CaseRepository) ListByUserID(ctx context.Context, userID uuid.UUID, status *models.CaseStatus, limit, offset int) ([]*models.Case, error) {
	query := `
		SELECT id, user_id, status, title, description, analysis,
			created_at, updated_at, completed_at
		FROM cases
		WHERE user_id = $1`

	args := []interface{}{userID}
	argIndex := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*models.Case
	for rows.Next() {
		kase := &models.Case{}
		err := rows.Scan(
			&kase.ID,
			&kase.UserID,
			&kase.Status,
			&kase.Title,
			&kase.Description,
			&kase.Analysis,
			&kase.CreatedAt,
			&kase.UpdatedAt,
			&kase.CompletedAt,
		)
		if err != nil {
			return nil, err
		}
		cases = append(cases, kase)
	}

	return cases, rows.Err()
}

// Delete deletes a case
func (r *CaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM cases WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
