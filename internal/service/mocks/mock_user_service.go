package mocks

import (
	"context"

	"dms/internal/model"
	"dms/internal/policy"
	"dms/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context, requester policy.Principal, limit, offset int) (*service.UserListResult, error) {
	args := m.Called(ctx, requester, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserListResult), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, requester policy.Principal, id int64) (*model.User, error) {
	args := m.Called(ctx, requester, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, requester policy.Principal, id int64, upd service.UserUpdate) (*model.User, error) {
	args := m.Called(ctx, requester, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, requester policy.Principal, id int64) error {
	args := m.Called(ctx, requester, id)
	return args.Error(0)
}
