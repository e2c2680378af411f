package mocks

import (
	"context"

	"odtplayground/internal/model"
	"odtplayground/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockGenerationRepository struct {
	mock.Mock
}

func (m *MockGenerationRepository) Create(ctx context.Context, g *model.Generation) (*model.Generation, error) {
	args := m.Called(ctx, g)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Generation), args.Error(1)
}

func (m *MockGenerationRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Generation], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Generation]), args.Error(1)
}
