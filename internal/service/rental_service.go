package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/rental-engine/internal/cache"
	"github.com/segyhp/rental-engine/internal/config"
	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/internal/logger"
	"github.com/segyhp/rental-engine/internal/repository"
	customError "github.com/segyhp/rental-engine/pkg/errors"
	"github.com/segyhp/rental-engine/pkg/utils"
)

// System messages posted into the chat. They are informational only.
const (
	msgMarkedRented     = "[System] This item has been marked as rented."
	msgHandoverVerified = "[System] Handover verified. The rental is now active."
	msgReturnVerified   = "[System] Return verified. This item is available again."
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

type OTPGen interface {
	Pair() (handover string, ret string, err error)
}

type cryptoOTPGen struct{}

func (cryptoOTPGen) Pair() (string, string, error) {
	return utils.GenerateOTPPair()
}

type RentalService struct {
	AgreementRepo repository.AgreementRepository
	ListingRepo   repository.ListingRepository
	ChatRepo      repository.ChatRepository
	cache         cache.AgreementCache
	config        *config.Config
	penalty       domain.LatePenalty
	clock         Clock
	otp           OTPGen
	log           *slog.Logger
}

func NewRentalService(
	agreementRepo repository.AgreementRepository,
	listingRepo repository.ListingRepository,
	chatRepo repository.ChatRepository,
	agreementCache cache.AgreementCache,
	config *config.Config,
) *RentalService {
	if agreementCache == nil {
		agreementCache = cache.NewNopAgreementCache()
	}
	return &RentalService{
		AgreementRepo: agreementRepo,
		ListingRepo:   listingRepo,
		ChatRepo:      chatRepo,
		cache:         agreementCache,
		config:        config,
		penalty: domain.LatePenalty{
			Amount:   config.GetLatePenalty(),
			Currency: config.Business.Currency,
		},
		clock: realClock{},
		otp:   cryptoOTPGen{},
		log:   logger.WithService("rental"),
	}
}

// GetLatestByChat returns the newest agreement of a chat, or nil when the chat
// has none. An overdue agreement is marked late before it is returned.
func (s *RentalService) GetLatestByChat(ctx context.Context, chatID int64, callerID *int64) (*domain.RentalAgreement, error) {
	viewer, err := s.viewerOf(ctx, chatID, callerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	cached, err := s.cache.GetLatest(ctx, chatID)
	if err != nil {
		s.log.WarnContext(ctx, "cache read failed", "chat_id", chatID, "error", customError.WrapCacheError(err))
	}
	if cached != nil && len(cached.ObserveLateness(now, s.penalty)) == 0 {
		cached.RefreshLateness(now)
		return cached.RedactFor(viewer), nil
	}

	agreement, err := s.AgreementRepo.GetLatestByChatID(ctx, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if len(agreement.ObserveLateness(now, s.penalty)) > 0 {
		agreement, err = s.observeLateness(ctx, agreement.ID, now)
		if err != nil {
			return nil, err
		}
	}

	agreement.RefreshLateness(now)

	if err := s.cache.SetLatest(ctx, agreement); err != nil {
		s.log.WarnContext(ctx, "cache write failed", "chat_id", chatID, "error", customError.WrapCacheError(err))
	}

	return agreement.RedactFor(viewer), nil
}

func (s *RentalService) observeLateness(ctx context.Context, id uuid.UUID, now time.Time) (*domain.RentalAgreement, error) {
	agreement, events, err := s.AgreementRepo.Mutate(ctx, id, func(_ context.Context, a *domain.RentalAgreement, _ repository.ListingWriter) ([]domain.Event, error) {
		events := a.ObserveLateness(now, s.penalty)
		for _, ev := range events {
			a.Apply(ev, now)
		}
		return events, nil
	})
	if err != nil {
		return nil, s.mapRepoError(err, id)
	}

	if len(events) > 0 {
		s.log.InfoContext(ctx, "rental marked late",
			"rental_id", id,
			"return_date", agreement.ReturnDate,
			"penalty", agreement.Penalty.String(),
			"currency", s.penalty.Currency,
		)
	}
	return agreement, nil
}

// CreateAgreement starts a rental for the listing bound to a chat.
func (s *RentalService) CreateAgreement(ctx context.Context, request *domain.CreateRentalRequest, callerID *int64) (*domain.RentalAgreement, error) {
	chat, err := s.ChatRepo.GetByID(ctx, request.ChatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapChatNotFound(request.ChatID)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	viewer, err := s.authorize(chat, callerID, domain.PartySeller)
	if err != nil {
		return nil, err
	}

	if chat.ListingID != request.ListingID {
		return nil, customError.WrapValidation(fmt.Sprintf("chat %d is not about listing %d", chat.ID, request.ListingID))
	}

	listing, err := s.ListingRepo.GetByID(ctx, request.ListingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapListingNotFound(request.ListingID)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if listing.Type != domain.ListingTypeRent {
		return nil, customError.WrapValidation(fmt.Sprintf("listing %d is not offered for rent", listing.ID))
	}
	if listing.Status == domain.ListingStatusSold {
		return nil, customError.WrapValidation(fmt.Sprintf("listing %d is already sold", listing.ID))
	}

	now := s.clock.Now()
	if !request.ReturnDate.After(now) {
		return nil, customError.WrapValidation("return date must be in the future")
	}

	handoverOTP, returnOTP, err := s.otp.Pair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp: %w", err)
	}

	agreement := domain.NewRentalAgreement(uuid.New(), chat.ID, listing.ID, request.ReturnDate, handoverOTP, returnOTP, now)
	if err := s.AgreementRepo.Create(ctx, agreement); err != nil {
		if errors.Is(err, repository.ErrActiveAgreementExists) {
			return nil, customError.WrapRentalAlreadyActive(chat.ID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.log.InfoContext(ctx, "rental agreement created",
		"rental_id", agreement.ID,
		"chat_id", chat.ID,
		"listing_id", listing.ID,
		"return_date", agreement.ReturnDate,
	)

	if listing.Status != domain.ListingStatusRented {
		if err := s.ListingRepo.UpdateStatus(ctx, listing.ID, domain.ListingStatusRented); err != nil {
			s.log.WarnContext(ctx, "failed to mark listing rented", "listing_id", listing.ID, "error", err)
		}
	}

	s.invalidate(ctx, chat.ID)
	s.postSystemMessage(ctx, chat.ID, msgMarkedRented)

	// only the seller creates, so an anonymous caller gets the seller's view
	if viewer == nil {
		seller := domain.PartySeller
		viewer = &seller
	}
	return agreement.RedactFor(viewer), nil
}

// Confirm applies one party action to an agreement.
func (s *RentalService) Confirm(ctx context.Context, id uuid.UUID, request *domain.ConfirmRequest, callerID *int64) (*domain.RentalAgreement, error) {
	cmd, err := domain.ParseCommand(request)
	if err != nil {
		return nil, err
	}

	current, err := s.AgreementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id)
	}

	var viewer *domain.Party
	if callerID == nil && s.config.Business.RequireCallerIdentity {
		return nil, customError.WrapUnauthorized()
	}
	if callerID != nil {
		chat, err := s.ChatRepo.GetByID(ctx, current.ChatID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapChatNotFound(current.ChatID)
		}
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		if viewer, err = s.authorize(chat, callerID, cmd.Actor()); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	agreement, events, err := s.AgreementRepo.Mutate(ctx, id, func(ctx context.Context, a *domain.RentalAgreement, listings repository.ListingWriter) ([]domain.Event, error) {
		applied := a.ObserveLateness(now, s.penalty)
		for _, ev := range applied {
			a.Apply(ev, now)
		}

		events, err := a.Handle(cmd, now)
		if err != nil {
			return nil, err
		}

		for _, ev := range events {
			if v, ok := ev.(domain.OTPVerified); ok && v.Direction == domain.DirectionReturn {
				if err := listings.UpdateStatus(ctx, a.ListingID, domain.ListingStatusAvailable); err != nil {
					if errors.Is(err, sql.ErrNoRows) {
						return nil, customError.WrapListingNotFound(a.ListingID)
					}
					return nil, err
				}
			}
		}

		return append(applied, events...), nil
	})
	if err != nil {
		s.logRejected(ctx, id, request, err)
		return nil, s.mapRepoError(err, id)
	}
	agreement.RefreshLateness(now)

	if len(events) == 0 {
		s.log.DebugContext(ctx, "confirm was a no-op", "rental_id", id, "action", request.Action, "party", request.ConfirmedBy)
		return agreement.RedactFor(viewer), nil
	}

	s.log.InfoContext(ctx, "rental agreement updated",
		"rental_id", id,
		"action", request.Action,
		"party", request.ConfirmedBy,
		"status", agreement.Status,
		"events", len(events),
	)

	s.invalidate(ctx, agreement.ChatID)
	for _, ev := range events {
		v, ok := ev.(domain.OTPVerified)
		if !ok {
			continue
		}
		if v.Direction == domain.DirectionHandover {
			s.postSystemMessage(ctx, agreement.ChatID, msgHandoverVerified)
		} else {
			s.postSystemMessage(ctx, agreement.ChatID, msgReturnVerified)
		}
	}

	return agreement.RedactFor(viewer), nil
}

// ListEvents returns the event log of an agreement.
func (s *RentalService) ListEvents(ctx context.Context, id uuid.UUID, callerID *int64) ([]*domain.EventRecord, error) {
	agreement, err := s.AgreementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id)
	}

	if _, err := s.viewerOf(ctx, agreement.ChatID, callerID); err != nil {
		return nil, err
	}

	records, err := s.AgreementRepo.ListEvents(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return records, nil
}

// viewerOf resolves the caller to a party of the chat. A nil result means an
// anonymous caller.
func (s *RentalService) viewerOf(ctx context.Context, chatID int64, callerID *int64) (*domain.Party, error) {
	if callerID == nil {
		if s.config.Business.RequireCallerIdentity {
			return nil, customError.WrapUnauthorized()
		}
		return nil, nil
	}

	chat, err := s.ChatRepo.GetByID(ctx, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapChatNotFound(chatID)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	role, ok := chat.RoleOf(*callerID)
	if !ok {
		return nil, customError.WrapForbidden(fmt.Sprintf("user %d is not a participant of chat %d", *callerID, chatID))
	}
	return &role, nil
}

// authorize checks that the caller may act as party in chat.
func (s *RentalService) authorize(chat *domain.Chat, callerID *int64, party domain.Party) (*domain.Party, error) {
	if callerID == nil {
		if s.config.Business.RequireCallerIdentity {
			return nil, customError.WrapUnauthorized()
		}
		return nil, nil
	}

	role, ok := chat.RoleOf(*callerID)
	if !ok {
		return nil, customError.WrapForbidden(fmt.Sprintf("user %d is not a participant of chat %d", *callerID, chat.ID))
	}
	if role != party {
		return nil, customError.WrapForbidden(fmt.Sprintf("user %d cannot act as the %s", *callerID, party))
	}
	return &role, nil
}

func (s *RentalService) mapRepoError(err error, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapRentalNotFound(id.String())
	}
	var be *customError.BusinessError
	if errors.As(err, &be) {
		return err
	}
	return customError.WrapDatabaseError(err)
}

func (s *RentalService) logRejected(ctx context.Context, id uuid.UUID, request *domain.ConfirmRequest, err error) {
	switch {
	case errors.Is(err, customError.ErrVerificationFailed):
		s.log.WarnContext(ctx, "otp verification failed", "rental_id", id, "party", request.ConfirmedBy)
	case errors.Is(err, customError.ErrInvalidTransition):
		s.log.InfoContext(ctx, "confirm rejected", "rental_id", id, "action", request.Action, "reason", customError.MessageOf(err))
	}
}

func (s *RentalService) invalidate(ctx context.Context, chatID int64) {
	if err := s.cache.Invalidate(ctx, chatID); err != nil {
		s.log.WarnContext(ctx, "cache invalidation failed", "chat_id", chatID, "error", customError.WrapCacheError(err))
	}
}

func (s *RentalService) postSystemMessage(ctx context.Context, chatID int64, content string) {
	if _, err := s.ChatRepo.PostSystemMessage(ctx, chatID, content); err != nil {
		s.log.WarnContext(ctx, "failed to post system message", "chat_id", chatID, "error", err)
	}
}
