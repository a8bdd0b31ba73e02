package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventKind string

const (
	EventAgreementCreated       EventKind = "agreement_created"
	EventDateProposed           EventKind = "date_proposed"
	EventDateAgreementWithdrawn EventKind = "date_agreement_withdrawn"
	EventDateRejected           EventKind = "date_rejected"
	EventOTPVerified            EventKind = "otp_verified"
	EventHandoverConfirmed      EventKind = "handover_confirmed"
	EventReturnConfirmed        EventKind = "return_confirmed"
	EventLatenessObserved       EventKind = "lateness_observed"
)

// OTPDirection tells which secret a verification proved.
type OTPDirection string

const (
	DirectionHandover OTPDirection = "handover"
	DirectionReturn   OTPDirection = "return"
)

// Event is something that happened to an agreement. Events never carry OTP values.
type Event interface {
	Kind() EventKind
}

type AgreementCreated struct {
	ReturnDate time.Time `json:"returnDate"`
}

type DateProposed struct {
	By   Party     `json:"by"`
	Date time.Time `json:"date"`
}

// DateAgreementWithdrawn clears a party's agreement after the date it agreed to changed.
type DateAgreementWithdrawn struct {
	Party Party `json:"party"`
}

type DateRejected struct {
	By   Party     `json:"by"`
	Date time.Time `json:"date"`
}

type OTPVerified struct {
	By        Party        `json:"by"`
	Direction OTPDirection `json:"direction"`
}

type HandoverConfirmed struct {
	By Party `json:"by"`
}

type ReturnConfirmed struct {
	By Party `json:"by"`
}

type LatenessObserved struct {
	ReturnDate time.Time       `json:"returnDate"`
	Penalty    decimal.Decimal `json:"penalty"`
}

func (AgreementCreated) Kind() EventKind       { return EventAgreementCreated }
func (DateProposed) Kind() EventKind           { return EventDateProposed }
func (DateAgreementWithdrawn) Kind() EventKind { return EventDateAgreementWithdrawn }
func (DateRejected) Kind() EventKind           { return EventDateRejected }
func (OTPVerified) Kind() EventKind            { return EventOTPVerified }
func (HandoverConfirmed) Kind() EventKind      { return EventHandoverConfirmed }
func (ReturnConfirmed) Kind() EventKind        { return EventReturnConfirmed }
func (LatenessObserved) Kind() EventKind       { return EventLatenessObserved }

// Apply folds ev into the agreement. Every agreement field change after
// creation goes through here.
func (a *RentalAgreement) Apply(ev Event, at time.Time) {
	switch e := ev.(type) {
	case AgreementCreated:
		a.ReturnDate = e.ReturnDate
	case DateProposed:
		a.ReturnDate = e.Date
		a.setAgreedDate(e.By, true)
	case DateAgreementWithdrawn:
		a.setAgreedDate(e.Party, false)
	case DateRejected:
		a.ReturnDate = e.Date
		a.BuyerAgreedDate = false
		a.SellerAgreedDate = false
	case OTPVerified:
		switch e.Direction {
		case DirectionHandover:
			a.HandoverOTPVerified = true
			a.advance(AgreementStatusActive)
			start := at
			a.StartDate = &start
		case DirectionReturn:
			a.ReturnOTPVerified = true
			a.advance(AgreementStatusCompleted)
		}
	case HandoverConfirmed:
		if e.By == PartyBuyer {
			a.BuyerStarted = true
		} else {
			a.SellerStarted = true
		}
	case ReturnConfirmed:
		if e.By == PartyBuyer {
			a.BuyerConfirmed = true
		} else {
			a.SellerConfirmed = true
		}
	case LatenessObserved:
		a.LateCharged = true
		a.Penalty = e.Penalty
	}
	a.RefreshLateness(at)
	a.UpdatedAt = at
}

func (a *RentalAgreement) advance(to AgreementStatus) {
	if to.rank() > a.Status.rank() {
		a.Status = to
	}
}

// EventRecord is the persisted form of an event.
type EventRecord struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	AgreementID uuid.UUID       `json:"rentalId" db:"agreement_id"`
	Kind        EventKind       `json:"kind" db:"kind"`
	Party       Party           `json:"party,omitempty" db:"party"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// NewEventRecord serializes ev for the event log.
func NewEventRecord(agreementID uuid.UUID, ev Event, at time.Time) (*EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return &EventRecord{
		ID:          uuid.New(),
		AgreementID: agreementID,
		Kind:        ev.Kind(),
		Party:       partyOf(ev),
		Payload:     payload,
		CreatedAt:   at,
	}, nil
}

func partyOf(ev Event) Party {
	switch e := ev.(type) {
	case DateProposed:
		return e.By
	case DateAgreementWithdrawn:
		return e.Party
	case DateRejected:
		return e.By
	case OTPVerified:
		return e.By
	case HandoverConfirmed:
		return e.By
	case ReturnConfirmed:
		return e.By
	}
	return ""
}
