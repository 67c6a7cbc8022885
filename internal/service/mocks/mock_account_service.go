package mocks

import (
	"context"

	"dms/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Authenticate(ctx context.Context, c service.Credentials) (*service.Session, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAccountService) Register(ctx context.Context, r service.Registration) (*service.Session, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAccountService) RevokeSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
