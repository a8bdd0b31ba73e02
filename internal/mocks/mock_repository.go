package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockAgreementRepository struct {
	mock.Mock
}

func (m *MockAgreementRepository) Create(ctx context.Context, agreement *domain.RentalAgreement) error {
	args := m.Called(ctx, agreement)
	return args.Error(0)
}

func (m *MockAgreementRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RentalAgreement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalAgreement), args.Error(1)
}

func (m *MockAgreementRepository) GetLatestByChatID(ctx context.Context, chatID int64) (*domain.RentalAgreement, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalAgreement), args.Error(1)
}

// Mutate does not run fn; it returns whatever the expectation supplies.
func (m *MockAgreementRepository) Mutate(ctx context.Context, id uuid.UUID, fn repository.MutateFunc) (*domain.RentalAgreement, []domain.Event, error) {
	args := m.Called(ctx, id, fn)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	events, _ := args.Get(1).([]domain.Event)
	return args.Get(0).(*domain.RentalAgreement), events, args.Error(2)
}

func (m *MockAgreementRepository) ListEvents(ctx context.Context, agreementID uuid.UUID) ([]*domain.EventRecord, error) {
	args := m.Called(ctx, agreementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EventRecord), args.Error(1)
}

func (m *MockAgreementRepository) ListOverdue(ctx context.Context, now time.Time) ([]*domain.RentalAgreement, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RentalAgreement), args.Error(1)
}

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) GetByID(ctx context.Context, id int64) (*domain.Chat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockChatRepository) PostSystemMessage(ctx context.Context, chatID int64, content string) (*domain.Message, error) {
	args := m.Called(ctx, chatID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

type MockAgreementCache struct {
	mock.Mock
}

func (m *MockAgreementCache) GetLatest(ctx context.Context, chatID int64) (*domain.RentalAgreement, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalAgreement), args.Error(1)
}

func (m *MockAgreementCache) SetLatest(ctx context.Context, agreement *domain.RentalAgreement) error {
	args := m.Called(ctx, agreement)
	return args.Error(0)
}

func (m *MockAgreementCache) Invalidate(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}
