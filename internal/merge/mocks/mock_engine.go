package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) IsValidTemplate(template []byte) bool {
	args := m.Called(template)
	return args.Bool(0)
}

func (m *MockEngine) GenerateDocument(ctx context.Context, template []byte, data map[string]any) ([]byte, error) {
	args := m.Called(ctx, template, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
