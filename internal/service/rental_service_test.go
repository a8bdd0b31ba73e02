package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/rental-engine/internal/config"
	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/internal/mocks"
	"github.com/segyhp/rental-engine/internal/repository"
	customError "github.com/segyhp/rental-engine/pkg/errors"
)

const (
	chatID    int64 = 11
	listingID int64 = 22
	buyerID   int64 = 5
	sellerID  int64 = 3
	outsider  int64 = 99

	handoverCode = "4821"
	returnCode   = "1739"
)

var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixedOTP struct{ handover, ret string }

func (f fixedOTP) Pair() (string, string, error) { return f.handover, f.ret, nil }

type failingOTP struct{}

func (failingOTP) Pair() (string, string, error) { return "", "", errors.New("entropy exhausted") }

// mapCache is an in-process AgreementCache that records invalidations.
type mapCache struct {
	mu          sync.Mutex
	entries     map[int64]*domain.RentalAgreement
	invalidated []int64
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[int64]*domain.RentalAgreement{}}
}

func (c *mapCache) GetLatest(_ context.Context, chatID int64) (*domain.RentalAgreement, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a, ok := c.entries[chatID]; ok {
		return a.Clone(), nil
	}
	return nil, nil
}

func (c *mapCache) SetLatest(_ context.Context, a *domain.RentalAgreement) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[a.ChatID] = a.Clone()
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, chatID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, chatID)
	c.invalidated = append(c.invalidated, chatID)
	return nil
}

type fixture struct {
	store *repository.MemoryStore
	cache *mapCache
	clock *fakeClock
	svc   *RentalService
}

func newFixture(t *testing.T, requireCaller bool) *fixture {
	t.Helper()

	store := repository.NewMemoryStore()
	store.SeedListing(domain.Listing{ID: listingID, SellerID: sellerID, Title: "Lab coat", Type: domain.ListingTypeRent, Status: domain.ListingStatusAvailable})
	store.SeedChat(domain.Chat{ID: chatID, ListingID: listingID, BuyerID: buyerID, SellerID: sellerID, CreatedAt: baseTime})

	cfg := &config.Config{
		Business: config.BusinessConfig{
			LatePenalty:           "500",
			Currency:              "INR",
			RequireCallerIdentity: requireCaller,
		},
	}

	c := newMapCache()
	clock := &fakeClock{now: baseTime}
	svc := NewRentalService(store.Agreements(), store.Listings(), store.Chats(), c, cfg)
	svc.clock = clock
	svc.otp = fixedOTP{handover: handoverCode, ret: returnCode}

	return &fixture{store: store, cache: c, clock: clock, svc: svc}
}

func ptr(v int64) *int64 { return &v }

func dateReq(by string, d time.Time) *domain.ConfirmRequest {
	return &domain.ConfirmRequest{ConfirmedBy: by, Action: domain.ActionDate, Date: &d}
}

func otpReq(by, code string) *domain.ConfirmRequest {
	otp := domain.OTPCode(code)
	return &domain.ConfirmRequest{ConfirmedBy: by, Action: domain.ActionVerifyOTP, OTP: &otp}
}

func actionReq(by, action string) *domain.ConfirmRequest {
	return &domain.ConfirmRequest{ConfirmedBy: by, Action: action}
}

func (f *fixture) create(t *testing.T) *domain.RentalAgreement {
	t.Helper()
	a, err := f.svc.CreateAgreement(context.Background(), &domain.CreateRentalRequest{
		ChatID:     chatID,
		ListingID:  listingID,
		ReturnDate: baseTime.AddDate(0, 0, 7),
	}, nil)
	require.NoError(t, err)
	return a
}

func (f *fixture) stored(t *testing.T, id uuid.UUID) *domain.RentalAgreement {
	t.Helper()
	a, err := f.store.Agreements().GetByID(context.Background(), id)
	require.NoError(t, err)
	return a
}

func TestRentalService_CreateAgreement(t *testing.T) {
	ctx := context.Background()
	returnDate := baseTime.AddDate(0, 0, 7)

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t, false)

		a, err := f.svc.CreateAgreement(ctx, &domain.CreateRentalRequest{ChatID: chatID, ListingID: listingID, ReturnDate: returnDate}, ptr(sellerID))
		require.NoError(t, err)

		assert.Equal(t, domain.AgreementStatusPending, a.Status)
		assert.Equal(t, handoverCode, a.HandoverOTP)
		assert.Empty(t, a.ReturnOTP)
		assert.True(t, a.Penalty.IsZero())
		assert.False(t, a.BuyerAgreedDate || a.SellerAgreedDate)

		stored := f.stored(t, a.ID)
		assert.Equal(t, returnCode, stored.ReturnOTP)

		listing, _ := f.store.Listings().GetByID(ctx, listingID)
		assert.Equal(t, domain.ListingStatusRented, listing.Status)

		messages := f.store.Messages(chatID)
		require.Len(t, messages, 1)
		assert.Equal(t, msgMarkedRented, messages[0].Content)
		assert.Contains(t, f.cache.invalidated, chatID)
	})

	tests := []struct {
		name    string
		prepare func(f *fixture)
		request domain.CreateRentalRequest
		caller  *int64
		require bool
		wantErr error
	}{
		{
			name:    "UnknownChat",
			request: domain.CreateRentalRequest{ChatID: 404, ListingID: listingID, ReturnDate: returnDate},
			wantErr: customError.ErrChatNotFound,
		},
		{
			name:    "ListingNotInChat",
			request: domain.CreateRentalRequest{ChatID: chatID, ListingID: 23, ReturnDate: returnDate},
			wantErr: customError.ErrValidation,
		},
		{
			name: "ListingForSale",
			prepare: func(f *fixture) {
				f.store.SeedListing(domain.Listing{ID: listingID, SellerID: sellerID, Type: domain.ListingTypeSell, Status: domain.ListingStatusAvailable})
			},
			request: domain.CreateRentalRequest{ChatID: chatID, ListingID: listingID, ReturnDate: returnDate},
			wantErr: customError.ErrValidation,
		},
		{
			name: "ListingSold",
			prepare: func(f *fixture) {
				f.store.SeedListing(domain.Listing{ID: listingID, SellerID: sellerID, Type: domain.ListingTypeRent, Status: domain.ListingStatusSold})
			},
			request: domain.CreateRentalRequest{ChatID: chatID, ListingID: listingID, ReturnDate: returnDate},
			wantErr: customError.ErrValidation,
		},
		{
			name:    "PastReturnDate",
			request: domain.CreateRentalRequest{ChatID: chatID, ListingID: listingID, ReturnDate: baseTime.Add(-time.Hour)},
			wantErr: customError.ErrValidation,
		},
		{
			name:    "BuyerCannotCreate",
			request: domain.CreateRentalRequest{ChatID: chatID, ListingID: listingID, ReturnDate: returnDate},
			caller:  ptr(buyerID),
			wantErr: customError.ErrForbidden,
		},
		{
			name:    "IdentityRequired",
			request: domain.CreateRentalRequest{ChatID: chatID, ListingID: listingID, ReturnDate: returnDate},
			require: true,
			wantErr: customError.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.require)
			if tt.prepare != nil {
				tt.prepare(f)
			}

			_, err := f.svc.CreateAgreement(ctx, &tt.request, tt.caller)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Empty(t, f.store.Messages(chatID))
		})
	}

	t.Run("AnonymousCreatorGetsSellerView", func(t *testing.T) {
		f := newFixture(t, false)

		a, err := f.svc.CreateAgreement(ctx, &domain.CreateRentalRequest{ChatID: chatID, ListingID: listingID, ReturnDate: returnDate}, nil)
		require.NoError(t, err)
		assert.Equal(t, handoverCode, a.HandoverOTP)
		assert.Empty(t, a.ReturnOTP)
	})

	t.Run("SecondOpenAgreementRejected", func(t *testing.T) {
		f := newFixture(t, false)
		f.create(t)

		_, err := f.svc.CreateAgreement(ctx, &domain.CreateRentalRequest{ChatID: chatID, ListingID: listingID, ReturnDate: returnDate}, nil)
		assert.True(t, errors.Is(err, customError.ErrRentalAlreadyActive))
		assert.Equal(t, customError.ErrCodeRentalAlreadyActive, customError.CodeOf(err))
	})

	t.Run("OTPFailure", func(t *testing.T) {
		f := newFixture(t, false)
		f.svc.otp = failingOTP{}

		_, err := f.svc.CreateAgreement(ctx, &domain.CreateRentalRequest{ChatID: chatID, ListingID: listingID, ReturnDate: returnDate}, nil)
		assert.ErrorContains(t, err, "entropy exhausted")
	})
}

func TestRentalService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	a := f.create(t)
	agreed := a.ReturnDate

	steps := []struct {
		caller  *int64
		request *domain.ConfirmRequest
	}{
		{ptr(sellerID), dateReq("seller", agreed)},
		{ptr(buyerID), dateReq("buyer", agreed)},
		{ptr(buyerID), otpReq("buyer", handoverCode)},
		{ptr(buyerID), actionReq("buyer", domain.ActionStart)},
		{ptr(sellerID), actionReq("seller", domain.ActionStart)},
	}
	for _, step := range steps {
		f.clock.Advance(time.Hour)
		_, err := f.svc.Confirm(ctx, a.ID, step.request, step.caller)
		require.NoError(t, err, "%s %s", step.request.ConfirmedBy, step.request.Action)
	}

	active := f.stored(t, a.ID)
	assert.Equal(t, domain.AgreementStatusActive, active.Status)
	require.NotNil(t, active.StartDate)
	assert.True(t, active.BuyerStarted && active.SellerStarted)

	listing, _ := f.store.Listings().GetByID(ctx, listingID)
	assert.Equal(t, domain.ListingStatusRented, listing.Status)

	f.clock.Advance(24 * time.Hour)
	got, err := f.svc.Confirm(ctx, a.ID, otpReq("seller", returnCode), ptr(sellerID))
	require.NoError(t, err)
	assert.Equal(t, domain.AgreementStatusCompleted, got.Status)
	assert.Empty(t, got.ReturnOTP)
	assert.Equal(t, handoverCode, got.HandoverOTP)

	listing, _ = f.store.Listings().GetByID(ctx, listingID)
	assert.Equal(t, domain.ListingStatusAvailable, listing.Status)

	for _, by := range []string{"buyer", "seller"} {
		_, err := f.svc.Confirm(ctx, a.ID, actionReq(by, domain.ActionEnd), nil)
		require.NoError(t, err)
	}

	done := f.stored(t, a.ID)
	assert.True(t, done.BuyerConfirmed && done.SellerConfirmed)
	assert.False(t, done.IsLate)
	assert.Equal(t, handoverCode, done.HandoverOTP)
	assert.Equal(t, returnCode, done.ReturnOTP)

	var contents []string
	for _, m := range f.store.Messages(chatID) {
		contents = append(contents, m.Content)
	}
	assert.Equal(t, []string{msgMarkedRented, msgHandoverVerified, msgReturnVerified}, contents)

	events, err := f.svc.ListEvents(ctx, a.ID, ptr(buyerID))
	require.NoError(t, err)
	assert.Len(t, events, 1+len(steps)+1+2)
	assert.Equal(t, domain.EventAgreementCreated, events[0].Kind)
}

func TestRentalService_Confirm_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("WrongCodeLeavesStateUnchanged", func(t *testing.T) {
		f := newFixture(t, false)
		a := f.create(t)
		for _, by := range []string{"buyer", "seller"} {
			_, err := f.svc.Confirm(ctx, a.ID, dateReq(by, a.ReturnDate), nil)
			require.NoError(t, err)
		}
		before := f.stored(t, a.ID)

		_, err := f.svc.Confirm(ctx, a.ID, otpReq("buyer", "0000"), nil)
		assert.True(t, errors.Is(err, customError.ErrVerificationFailed))
		assert.Equal(t, before, f.stored(t, a.ID))
	})

	t.Run("HandoverBeforeDateAgreed", func(t *testing.T) {
		f := newFixture(t, false)
		a := f.create(t)

		_, err := f.svc.Confirm(ctx, a.ID, otpReq("buyer", handoverCode), nil)
		assert.True(t, errors.Is(err, customError.ErrInvalidTransition))
	})

	t.Run("UnknownAgreement", func(t *testing.T) {
		f := newFixture(t, false)

		_, err := f.svc.Confirm(ctx, uuid.New(), actionReq("buyer", domain.ActionStart), nil)
		assert.True(t, errors.Is(err, customError.ErrRentalNotFound))
	})

	t.Run("MalformedRequest", func(t *testing.T) {
		f := newFixture(t, false)
		a := f.create(t)

		_, err := f.svc.Confirm(ctx, a.ID, &domain.ConfirmRequest{ConfirmedBy: "buyer", Action: domain.ActionDate}, nil)
		assert.True(t, errors.Is(err, customError.ErrValidation))
	})

	t.Run("CallerActsForOtherParty", func(t *testing.T) {
		f := newFixture(t, false)
		a := f.create(t)

		_, err := f.svc.Confirm(ctx, a.ID, dateReq("seller", a.ReturnDate), ptr(buyerID))
		assert.True(t, errors.Is(err, customError.ErrForbidden))

		_, err = f.svc.Confirm(ctx, a.ID, dateReq("buyer", a.ReturnDate), ptr(outsider))
		assert.True(t, errors.Is(err, customError.ErrForbidden))
		assert.False(t, f.stored(t, a.ID).BuyerAgreedDate)
	})

	t.Run("IdentityRequired", func(t *testing.T) {
		f := newFixture(t, false)
		a := f.create(t)
		f.svc.config.Business.RequireCallerIdentity = true

		_, err := f.svc.Confirm(ctx, a.ID, dateReq("buyer", a.ReturnDate), nil)
		assert.True(t, errors.Is(err, customError.ErrUnauthorized))
	})
}

func TestRentalService_ConcurrentDateProposals(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		f := newFixture(t, false)
		a := f.create(t)
		dates := map[string]time.Time{
			"buyer":  baseTime.AddDate(0, 0, 7),
			"seller": baseTime.AddDate(0, 0, 10),
		}

		var wg sync.WaitGroup
		for by, d := range dates {
			wg.Add(1)
			go func(by string, d time.Time) {
				defer wg.Done()
				_, err := f.svc.Confirm(ctx, a.ID, dateReq(by, d), nil)
				assert.NoError(t, err)
			}(by, d)
		}
		wg.Wait()

		got := f.stored(t, a.ID)
		require.NotEqual(t, got.BuyerAgreedDate, got.SellerAgreedDate, "exactly one party may hold an agreement")
		if got.BuyerAgreedDate {
			assert.True(t, got.ReturnDate.Equal(dates["buyer"]))
		} else {
			assert.True(t, got.ReturnDate.Equal(dates["seller"]))
		}
	}
}

func TestRentalService_GetLatestByChat(t *testing.T) {
	ctx := context.Background()

	t.Run("NoAgreement", func(t *testing.T) {
		f := newFixture(t, false)

		got, err := f.svc.GetLatestByChat(ctx, chatID, nil)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Redaction", func(t *testing.T) {
		f := newFixture(t, false)
		f.create(t)

		asBuyer, err := f.svc.GetLatestByChat(ctx, chatID, ptr(buyerID))
		require.NoError(t, err)
		assert.Empty(t, asBuyer.HandoverOTP)
		assert.Equal(t, returnCode, asBuyer.ReturnOTP)

		asSeller, err := f.svc.GetLatestByChat(ctx, chatID, ptr(sellerID))
		require.NoError(t, err)
		assert.Equal(t, handoverCode, asSeller.HandoverOTP)
		assert.Empty(t, asSeller.ReturnOTP)

		anonymous, err := f.svc.GetLatestByChat(ctx, chatID, nil)
		require.NoError(t, err)
		assert.Empty(t, anonymous.HandoverOTP)
		assert.Empty(t, anonymous.ReturnOTP)

		_, err = f.svc.GetLatestByChat(ctx, chatID, ptr(outsider))
		assert.True(t, errors.Is(err, customError.ErrForbidden))
	})

	t.Run("LatenessChargedOnce", func(t *testing.T) {
		f := newFixture(t, false)
		a := f.create(t)

		f.clock.Advance(8 * 24 * time.Hour)
		for i := 0; i < 3; i++ {
			got, err := f.svc.GetLatestByChat(ctx, chatID, nil)
			require.NoError(t, err)
			assert.True(t, got.IsLate)
			assert.True(t, got.Penalty.Equal(decimal.NewFromInt(500)))
			assert.Equal(t, domain.AgreementStatusPending, got.Status)
		}

		f.clock.Advance(24 * time.Hour)
		_, err := f.svc.Confirm(ctx, a.ID, actionReq("buyer", domain.ActionStart), nil)
		assert.True(t, errors.Is(err, customError.ErrInvalidTransition))

		records, err := f.svc.ListEvents(ctx, a.ID, nil)
		require.NoError(t, err)
		late := 0
		for _, r := range records {
			if r.Kind == domain.EventLatenessObserved {
				late++
			}
		}
		assert.Equal(t, 1, late)
		assert.True(t, f.stored(t, a.ID).Penalty.Equal(decimal.NewFromInt(500)))
	})

	t.Run("LateThenReturned", func(t *testing.T) {
		f := newFixture(t, false)
		a := f.create(t)
		for _, step := range []struct {
			caller  int64
			request *domain.ConfirmRequest
		}{
			{sellerID, dateReq("seller", a.ReturnDate)},
			{buyerID, dateReq("buyer", a.ReturnDate)},
			{buyerID, otpReq("buyer", handoverCode)},
		} {
			_, err := f.svc.Confirm(ctx, a.ID, step.request, ptr(step.caller))
			require.NoError(t, err)
		}

		f.clock.Advance(8 * 24 * time.Hour)
		got, err := f.svc.GetLatestByChat(ctx, chatID, ptr(sellerID))
		require.NoError(t, err)
		require.True(t, got.IsLate)

		returned, err := f.svc.Confirm(ctx, a.ID, otpReq("seller", returnCode), ptr(sellerID))
		require.NoError(t, err)
		assert.False(t, returned.IsLate)

		got, err = f.svc.GetLatestByChat(ctx, chatID, ptr(sellerID))
		require.NoError(t, err)
		assert.Equal(t, domain.AgreementStatusCompleted, got.Status)
		assert.False(t, got.IsLate)
		assert.True(t, got.Penalty.Equal(decimal.NewFromInt(500)))
	})

	t.Run("LateThenRescheduled", func(t *testing.T) {
		f := newFixture(t, false)
		a := f.create(t)
		_, err := f.svc.Confirm(ctx, a.ID, dateReq("seller", a.ReturnDate), ptr(sellerID))
		require.NoError(t, err)
		_, err = f.svc.Confirm(ctx, a.ID, dateReq("buyer", a.ReturnDate), ptr(buyerID))
		require.NoError(t, err)

		f.clock.Advance(8 * 24 * time.Hour)
		got, err := f.svc.GetLatestByChat(ctx, chatID, ptr(buyerID))
		require.NoError(t, err)
		require.True(t, got.IsLate)

		newDate := f.clock.Now().AddDate(0, 0, 5)
		reject := &domain.ConfirmRequest{ConfirmedBy: "buyer", Action: domain.ActionRejectDate, Date: &newDate}
		rescheduled, err := f.svc.Confirm(ctx, a.ID, reject, ptr(buyerID))
		require.NoError(t, err)
		assert.False(t, rescheduled.IsLate)

		got, err = f.svc.GetLatestByChat(ctx, chatID, ptr(buyerID))
		require.NoError(t, err)
		assert.Equal(t, domain.AgreementStatusPending, got.Status)
		assert.True(t, got.ReturnDate.Equal(newDate))
		assert.False(t, got.IsLate)
		assert.True(t, got.Penalty.Equal(decimal.NewFromInt(500)))
	})

	t.Run("ServedFromCacheUntilWrite", func(t *testing.T) {
		f := newFixture(t, false)
		a := f.create(t)

		_, err := f.svc.GetLatestByChat(ctx, chatID, nil)
		require.NoError(t, err)
		require.Contains(t, f.cache.entries, chatID)

		_, err = f.svc.Confirm(ctx, a.ID, dateReq("buyer", a.ReturnDate), nil)
		require.NoError(t, err)
		assert.NotContains(t, f.cache.entries, chatID)

		got, err := f.svc.GetLatestByChat(ctx, chatID, nil)
		require.NoError(t, err)
		assert.True(t, got.BuyerAgreedDate)
	})
}

func TestRentalService_InfrastructureFailures(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Business: config.BusinessConfig{LatePenalty: "500", Currency: "INR"}}
	agreement := domain.NewRentalAgreement(uuid.New(), chatID, listingID, baseTime.AddDate(0, 0, 7), handoverCode, returnCode, baseTime)

	newService := func(agreements *mocks.MockAgreementRepository, c *mocks.MockAgreementCache) *RentalService {
		svc := NewRentalService(agreements, nil, &mocks.MockChatRepository{}, c, cfg)
		svc.clock = &fakeClock{now: baseTime.Add(time.Hour)}
		return svc
	}

	t.Run("CacheFailureFallsThrough", func(t *testing.T) {
		agreements := &mocks.MockAgreementRepository{}
		agreements.On("GetLatestByChatID", mock.Anything, chatID).Return(agreement, nil).Once()
		c := &mocks.MockAgreementCache{}
		c.On("GetLatest", mock.Anything, chatID).Return(nil, errors.New("redis: connection refused")).Once()
		c.On("SetLatest", mock.Anything, mock.Anything).Return(errors.New("redis: connection refused")).Once()

		got, err := newService(agreements, c).GetLatestByChat(ctx, chatID, nil)
		require.NoError(t, err)
		assert.Equal(t, agreement.ID, got.ID)
		assert.Empty(t, got.HandoverOTP)
		agreements.AssertExpectations(t)
		c.AssertExpectations(t)
	})

	t.Run("DatabaseErrorOnRead", func(t *testing.T) {
		agreements := &mocks.MockAgreementRepository{}
		agreements.On("GetLatestByChatID", mock.Anything, chatID).Return(nil, errors.New("connection reset")).Once()
		c := &mocks.MockAgreementCache{}
		c.On("GetLatest", mock.Anything, chatID).Return(nil, nil).Once()

		_, err := newService(agreements, c).GetLatestByChat(ctx, chatID, nil)
		assert.True(t, errors.Is(err, customError.ErrDatabase))
		assert.Equal(t, customError.ErrCodeDatabaseError, customError.CodeOf(err))
	})

	t.Run("DatabaseErrorOnConfirm", func(t *testing.T) {
		agreements := &mocks.MockAgreementRepository{}
		agreements.On("GetByID", mock.Anything, agreement.ID).Return(agreement, nil).Once()
		agreements.On("Mutate", mock.Anything, agreement.ID, mock.Anything).Return(nil, nil, errors.New("serialization failure")).Once()
		c := &mocks.MockAgreementCache{}

		_, err := newService(agreements, c).Confirm(ctx, agreement.ID, actionReq("buyer", domain.ActionStart), nil)
		assert.True(t, errors.Is(err, customError.ErrDatabase))
		c.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})
}
