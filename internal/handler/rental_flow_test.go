package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/rental-engine/internal/config"
	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/internal/repository"
	"github.com/segyhp/rental-engine/internal/service"
)

func TestRentalFlow_EndToEnd(t *testing.T) {
	store := repository.NewMemoryStore()
	store.SeedListing(domain.Listing{ID: 22, SellerID: 3, Title: "Graphing calculator", Type: domain.ListingTypeRent, Status: domain.ListingStatusAvailable})
	store.SeedChat(domain.Chat{ID: 11, ListingID: 22, BuyerID: 5, SellerID: 3, CreatedAt: time.Now()})

	cfg := &config.Config{Business: config.BusinessConfig{LatePenalty: "500", Currency: "INR"}}
	svc := service.NewRentalService(store.Agreements(), store.Listings(), store.Chats(), nil, cfg)
	router := newRouter(svc)

	const buyer, seller = "5", "3"
	returnDate := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)

	w, env := doRequest(t, router, http.MethodPost, "/api/v1/rentals",
		map[string]interface{}{"chatId": 11, "listingId": 22, "returnDate": returnDate}, seller)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created domain.RentalAgreement
	require.NoError(t, json.Unmarshal(env.Data, &created))
	handoverOTP := created.HandoverOTP
	require.Len(t, handoverOTP, 4)
	assert.Empty(t, created.ReturnOTP)

	confirmPath := "/api/v1/rentals/" + created.ID.String() + "/confirm"
	confirm := func(user string, body map[string]interface{}) (int, domain.RentalAgreement) {
		w, env := doRequest(t, router, http.MethodPatch, confirmPath, body, user)
		var got domain.RentalAgreement
		if w.Code == http.StatusOK {
			require.NoError(t, json.Unmarshal(env.Data, &got))
		}
		return w.Code, got
	}

	code, _ := confirm(buyer, map[string]interface{}{"confirmedBy": "buyer", "action": "verify_otp", "otp": handoverOTP})
	assert.Equal(t, http.StatusConflict, code, "handover before the date is agreed")

	code, _ = confirm(seller, map[string]interface{}{"confirmedBy": "seller", "action": "date", "date": returnDate})
	require.Equal(t, http.StatusOK, code)
	code, got := confirm(buyer, map[string]interface{}{"confirmedBy": "buyer", "action": "date", "date": returnDate})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, got.BuyerAgreedDate && got.SellerAgreedDate)

	code, _ = confirm(buyer, map[string]interface{}{"confirmedBy": "seller", "action": "start"})
	assert.Equal(t, http.StatusForbidden, code)

	code, got = confirm(buyer, map[string]interface{}{"confirmedBy": "buyer", "action": "verify_otp", "otp": handoverOTP})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, domain.AgreementStatusActive, got.Status)
	assert.Empty(t, got.HandoverOTP)
	returnOTP := got.ReturnOTP
	require.Len(t, returnOTP, 4)

	for _, p := range []struct{ user, party string }{{buyer, "buyer"}, {seller, "seller"}} {
		code, _ = confirm(p.user, map[string]interface{}{"confirmedBy": p.party, "action": "start"})
		require.Equal(t, http.StatusOK, code)
	}

	code, got = confirm(seller, map[string]interface{}{"confirmedBy": "seller", "action": "verify_otp", "otp": returnOTP})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, domain.AgreementStatusCompleted, got.Status)

	listing, err := store.Listings().GetByID(context.Background(), 22)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusAvailable, listing.Status)

	w, env = doRequest(t, router, http.MethodGet, "/api/v1/rentals/11", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var latest domain.RentalAgreement
	require.NoError(t, json.Unmarshal(env.Data, &latest))
	assert.Equal(t, created.ID, latest.ID)
	assert.Empty(t, latest.HandoverOTP)
	assert.Empty(t, latest.ReturnOTP)
	assert.False(t, latest.IsLate)

	assert.Len(t, store.Messages(11), 3)
}
