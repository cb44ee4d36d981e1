package repository

import (
	"context"
	"fmt"

	"github.com/doclegal/rechtstreeks-sub002/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SummonsRepository handles database operations for summonses and their sections
type SummonsRepository struct {
	db *pgxpool.Pool
}

// NewSummonsRepository creates a new summons repository
func NewSummonsRepository(db *pgxpool.Pool) *SummonsRepository {
	return &SummonsRepository{db: db}
}

// Create creates a summons together with its sections in one transaction
func (r *SummonsRepository) Create(ctx context.Context, summons *models.Summons, sections []*models.SummonsSection) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO summonses (case_id)
		VALUES ($1)
		RETURNING id, created_at, updated_at`,
		summons.CaseID,
	).Scan(&summons.ID, &summons.CreatedAt, &summons.UpdatedAt)
	if err != nil {
		return err
	}

	for _, section := range sections {
		section.SummonsID = summons.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO summons_sections (
				summons_id, key, step_order, status, generated_text,
				user_feedback, generation_count, warnings
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at`,
			section.SummonsID,
			section.Key,
			section.StepOrder,
			section.Status,
			section.GeneratedText,
			section.UserFeedback,
			section.GenerationCount,
			section.Warnings,
		).Scan(&section.ID, &section.CreatedAt, &section.UpdatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a summons by ID
func (r *SummonsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Summons, error) {
	summons := &models.Summons{}
	query := `
		SELECT id, case_id, created_at, updated_at
		FROM summonses
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&summons.ID,
		&summons.CaseID,
		&summons.CreatedAt,
		&summons.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return summons, nil
}

// GetByCaseID retrieves the summons for a case, if one exists
func (r *SummonsRepository) GetByCaseID(ctx context.Context, caseID uuid.UUID) (*models.Summons, error) {
	summons := &models.Summons{}
	query := `
		SELECT id, case_id, created_at, updated_at
		FROM summonses
		WHERE case_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.QueryRow(ctx, query, caseID).Scan(
		&summons.ID,
		&summons.CaseID,
		&summons.CreatedAt,
		&summons.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return summons, nil
}

// ListSections retrieves all sections of a summons in step order
func (r *SummonsRepository) ListSections(ctx context.Context, summonsID uuid.UUID) ([]*models.SummonsSection, error) {
	query := `
		SELECT id, summons_id, key, step_order, status, generated_text,
			user_feedback, generation_count, warnings, created_at, updated_at
		FROM summons_sections
		WHERE summons_id = $1
		ORDER BY step_order ASC`

	rows, err := r.db.Query(ctx, query, summonsID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []*models.SummonsSection
	for rows.Next() {
		section := &models.SummonsSection{}
		err := rows.Scan(
			&section.ID,
			&section.SummonsID,
			&section.Key,
			&section.StepOrder,
			&section.Status,
			&section.GeneratedText,
			&section.UserFeedback,
			&section.GenerationCount,
			&section.Warnings,
			&section.CreatedAt,
			&section.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}

	return sections, rows.Err()
}

// GetSection retrieves one section of a summons by its key
func (r *SummonsRepository) GetSection(ctx context.Context, summonsID uuid.UUID, key models.SectionKey) (*models.SummonsSection, error) {
	section := &models.SummonsSection{}
	query := `
		SELECT id, summons_id, key, step_order, status, generated_text,
			user_feedback, generation_count, warnings, created_at, updated_at
		FROM summons_sections
		WHERE summons_id = $1 AND key = $2`

	err := r.db.QueryRow(ctx, query, summonsID, key).Scan(
		&section.ID,
		&section.SummonsID,
		&section.Key,
		&section.StepOrder,
		&section.Status,
		&section.GeneratedText,
		&section.UserFeedback,
		&section.GenerationCount,
		&section.Warnings,
		&section.CreatedAt,
		&section.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return section, nil
}

// UpdateSectionStatus updates only the status of a section
func (r *SummonsRepository) UpdateSectionStatus(ctx context.Context, id uuid.UUID, status models.SectionStatus) error {
	query := `
		UPDATE summons_sections SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// UpdateSection persists the mutable fields of a section
func (r *SummonsRepository) UpdateSection(ctx context.Context, section *models.SummonsSection) error {
	query := `
		UPDATE summons_sections SET
			status = $2,
			generated_text = $3,
			user_feedback = $4,
			generation_count = $5,
			warnings = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		section.ID,
		section.Status,
		section.GeneratedText,
		section.UserFeedback,
		section.GenerationCount,
		section.Warnings,
	).Scan(&section.UpdatedAt)

	return err
}
