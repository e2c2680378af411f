package repository

import (
	"context"

	"odtplayground/internal/model"
)

// GenerationRepository defines data access for the generation audit log using SQL queries only.
// No business logic here, strictly persistence operations.
type GenerationRepository interface {
	// Create inserts a new generation record.
	// The caller provides ID and CreatedAt. Returns the stored record.
	Create(ctx context.Context, g *model.Generation) (*model.Generation, error)

	// List returns a page of generations, newest first, and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Generation], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
