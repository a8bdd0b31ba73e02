package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/rental-engine/internal/domain"
)

// ErrActiveAgreementExists is returned by Create when the chat already has an
// agreement that is not completed.
var ErrActiveAgreementExists = errors.New("chat already has an active agreement")

// ListingWriter updates listing status inside an agreement transaction
type ListingWriter interface {
	UpdateStatus(ctx context.Context, listingID int64, status string) error
}

// MutateFunc changes a locked agreement in place and returns the events it
// applied. Returning an error discards every change.
type MutateFunc func(ctx context.Context, agreement *domain.RentalAgreement, listings ListingWriter) ([]domain.Event, error)

// AgreementRepository defines the interface for rental agreement data operations.
// Lookups that find nothing return sql.ErrNoRows.
type AgreementRepository interface {
	// Create stores a new agreement and its creation event
	Create(ctx context.Context, agreement *domain.RentalAgreement) error

	// GetByID retrieves an agreement by its id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RentalAgreement, error)

	// GetLatestByChatID retrieves the most recently created agreement of a chat
	GetLatestByChatID(ctx context.Context, chatID int64) (*domain.RentalAgreement, error)

	// Mutate runs fn with the agreement locked against concurrent mutation and
	// persists the result together with the returned events
	Mutate(ctx context.Context, id uuid.UUID, fn MutateFunc) (*domain.RentalAgreement, []domain.Event, error)

	// ListEvents returns the event log of an agreement in order
	ListEvents(ctx context.Context, agreementID uuid.UUID) ([]*domain.EventRecord, error)

	// ListOverdue returns unfinished agreements whose return date is before now
	ListOverdue(ctx context.Context, now time.Time) ([]*domain.RentalAgreement, error)
}

// ListingRepository is the part of the listing store the rental flow uses
type ListingRepository interface {
	ListingWriter

	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
}

// ChatRepository is the part of the chat channel the rental flow uses
type ChatRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Chat, error)

	// PostSystemMessage appends a message to the chat on behalf of the seller
	PostSystemMessage(ctx context.Context, chatID int64, content string) (*domain.Message, error)
}
