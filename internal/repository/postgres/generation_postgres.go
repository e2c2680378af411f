package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"odtplayground/internal/model"
	"odtplayground/internal/repository"
)

// GenerationPostgres is a PostgreSQL implementation of repository.GenerationRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type GenerationPostgres struct {
	db *sql.DB
}

// NewGenerationPostgres creates a new GenerationPostgres repository.
func NewGenerationPostgres(db *sql.DB) *GenerationPostgres {
	return &GenerationPostgres{db: db}
}

var _ repository.GenerationRepository = (*GenerationPostgres)(nil)

const generationColumns = `id, template_name, template_size, output_name, output_size, status, error, duration_ms, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(s scanner) (model.Generation, error) {
	var g model.Generation
	err := s.Scan(
		&g.ID,
		&g.TemplateName,
		&g.TemplateSize,
		&g.OutputName,
		&g.OutputSize,
		&g.Status,
		&g.Error,
		&g.DurationMs,
		&g.CreatedAt,
	)
	return g, err
}

// Create inserts a generation row and returns the stored record.
func (r *GenerationPostgres) Create(ctx context.Context, g *model.Generation) (*model.Generation, error) {
	const q = `
		INSERT INTO generations (` + generationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + generationColumns
	row := r.db.QueryRowContext(ctx, q,
		g.ID,
		g.TemplateName,
		g.TemplateSize,
		g.OutputName,
		g.OutputSize,
		g.Status,
		g.Error,
		g.DurationMs,
		g.CreatedAt,
	)
	out, err := scanGeneration(row)
	if err != nil {
		return nil, fmt.Errorf("insert generation: %w", err)
	}
	return &out, nil
}

// List returns generations using LIMIT/OFFSET pagination and a total count.
func (r *GenerationPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Generation], error) {
	const qCount = `SELECT COUNT(*) FROM generations`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, fmt.Errorf("count generations: %w", err)
	}

	const qList = `
		SELECT ` + generationColumns + `
		FROM generations
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	items := make([]model.Generation, 0)
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		items = append(items, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Generation]{
		Items: items,
		Total: total,
	}, nil
}
