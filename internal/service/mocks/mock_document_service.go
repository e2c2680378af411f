package mocks

import (
	"context"

	"odtplayground/internal/model"
	"odtplayground/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Generate(ctx context.Context, in service.GenerateInput) (*model.GeneratedDocument, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GeneratedDocument), args.Error(1)
}

func (m *MockDocumentService) Validate(ctx context.Context, template []byte, filename string, size int64) *model.ValidationResult {
	args := m.Called(ctx, template, filename, size)
	return args.Get(0).(*model.ValidationResult)
}

func (m *MockDocumentService) ListGenerations(ctx context.Context, limit, offset int) (*service.GenerationListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerationListResult), args.Error(1)
}
