package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/segyhp/rental-engine/internal/domain"
	customError "github.com/segyhp/rental-engine/pkg/errors"
	"github.com/segyhp/rental-engine/pkg/response"
)

// UserIDHeader carries the numeric id of the calling user, when known.
const UserIDHeader = "X-User-ID"

type RentalService interface {
	GetLatestByChat(ctx context.Context, chatID int64, callerID *int64) (*domain.RentalAgreement, error)
	CreateAgreement(ctx context.Context, request *domain.CreateRentalRequest, callerID *int64) (*domain.RentalAgreement, error)
	Confirm(ctx context.Context, id uuid.UUID, request *domain.ConfirmRequest, callerID *int64) (*domain.RentalAgreement, error)
	ListEvents(ctx context.Context, id uuid.UUID, callerID *int64) ([]*domain.EventRecord, error)
}

type RentalHandler struct {
	service   RentalService
	validator *validator.Validate
}

func NewRentalHandler(service RentalService) *RentalHandler {
	return &RentalHandler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the rental endpoints on r.
func (h *RentalHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/rentals", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/rentals/{chatId:[0-9]+}", h.GetByChat).Methods(http.MethodGet)
	r.HandleFunc("/rentals/{id}/confirm", h.Confirm).Methods(http.MethodPatch)
	r.HandleFunc("/rentals/{id}/events", h.Events).Methods(http.MethodGet)
}

// GetByChat returns the latest agreement of a chat, or null.
func (h *RentalHandler) GetByChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(mux.Vars(r)["chatId"], 10, 64)
	if err != nil || chatID <= 0 {
		response.FromError(w, customError.WrapValidation("chatId must be a positive integer"))
		return
	}

	caller, err := callerFrom(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	agreement, err := h.service.GetLatestByChat(r.Context(), chatID, caller)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, agreement)
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateRentalRequest
	if err := h.decode(r, &request); err != nil {
		response.FromError(w, err)
		return
	}

	caller, err := callerFrom(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	agreement, err := h.service.CreateAgreement(r.Context(), &request, caller)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, agreement)
}

func (h *RentalHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := rentalID(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	var request domain.ConfirmRequest
	if err := h.decode(r, &request); err != nil {
		response.FromError(w, err)
		return
	}

	caller, err := callerFrom(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	agreement, err := h.service.Confirm(r.Context(), id, &request, caller)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, agreement)
}

func (h *RentalHandler) Events(w http.ResponseWriter, r *http.Request) {
	id, err := rentalID(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	caller, err := callerFrom(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	events, err := h.service.ListEvents(r.Context(), id, caller)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, domain.EventsResponse{RentalID: id, Events: events})
}

func (h *RentalHandler) decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return customError.WrapValidation("invalid request body: " + err.Error())
	}
	if err := h.validator.Struct(v); err != nil {
		return customError.WrapValidation(err.Error())
	}
	return nil
}

func rentalID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, customError.WrapValidation("rental id must be a UUID")
	}
	return id, nil
}

func callerFrom(r *http.Request) (*int64, error) {
	raw := r.Header.Get(UserIDHeader)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, customError.WrapValidation(UserIDHeader + " must be a positive integer")
	}
	return &id, nil
}
