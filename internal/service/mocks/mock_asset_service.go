package mocks

import (
	"context"

	"courtview/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockAssetService struct {
	mock.Mock
}

func (m *MockAssetService) Open(ctx context.Context, rawPath string) (*service.Asset, error) {
	args := m.Called(ctx, rawPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Asset), args.Error(1)
}

func (m *MockAssetService) Ready(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
