package mocks

import (
	"context"

	"odtplayground/internal/model"
	"odtplayground/internal/samples"

	"github.com/stretchr/testify/mock"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Get(ctx context.Context, kind samples.Kind, name string) (*model.SampleAsset, error) {
	args := m.Called(ctx, kind, name)
	asset, _ := args.Get(0).(*model.SampleAsset)
	return asset, args.Error(1)
}

func (m *MockCatalog) Templates(ctx context.Context) []string {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names
}

func (m *MockCatalog) Data(ctx context.Context) []model.SampleData {
	args := m.Called(ctx)
	data, _ := args.Get(0).([]model.SampleData)
	return data
}
