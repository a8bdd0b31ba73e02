package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) GetLatestByChat(ctx context.Context, chatID int64, callerID *int64) (*domain.RentalAgreement, error) {
	args := m.Called(ctx, chatID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalAgreement), args.Error(1)
}

func (m *MockRentalService) CreateAgreement(ctx context.Context, request *domain.CreateRentalRequest, callerID *int64) (*domain.RentalAgreement, error) {
	args := m.Called(ctx, request, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalAgreement), args.Error(1)
}

func (m *MockRentalService) Confirm(ctx context.Context, id uuid.UUID, request *domain.ConfirmRequest, callerID *int64) (*domain.RentalAgreement, error) {
	args := m.Called(ctx, id, request, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalAgreement), args.Error(1)
}

func (m *MockRentalService) ListEvents(ctx context.Context, id uuid.UUID, callerID *int64) ([]*domain.EventRecord, error) {
	args := m.Called(ctx, id, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EventRecord), args.Error(1)
}

// NewMockRentalService creates a new mock rental service instance
func NewMockRentalService() *MockRentalService {
	return &MockRentalService{}
}
