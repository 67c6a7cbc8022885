package mocks

import (
	"context"

	"dms/internal/model"
	"dms/internal/policy"
	"dms/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Create(ctx context.Context, requester policy.Principal, in service.NewDocument) (*model.Document, error) {
	args := m.Called(ctx, requester, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, requester policy.Principal, id int64) (*model.Document, error) {
	args := m.Called(ctx, requester, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) ListByOwner(ctx context.Context, requester policy.Principal, ownerID int64) ([]model.Document, error) {
	args := m.Called(ctx, requester, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, requester policy.Principal, id int64) error {
	args := m.Called(ctx, requester, id)
	return args.Error(0)
}
