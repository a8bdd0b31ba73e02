package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Party is one side of a rental chat.
type Party string

const (
	PartyBuyer  Party = "buyer"
	PartySeller Party = "seller"
)

// Other returns the counterpart.
func (p Party) Other() Party {
	if p == PartyBuyer {
		return PartySeller
	}
	return PartyBuyer
}

func (p Party) Valid() bool {
	return p == PartyBuyer || p == PartySeller
}

// AgreementStatus only ever moves forward: pending -> active -> completed.
type AgreementStatus string

const (
	AgreementStatusPending   AgreementStatus = "pending"
	AgreementStatusActive    AgreementStatus = "active"
	AgreementStatusCompleted AgreementStatus = "completed"
)

func (s AgreementStatus) rank() int {
	switch s {
	case AgreementStatusPending:
		return 0
	case AgreementStatusActive:
		return 1
	case AgreementStatusCompleted:
		return 2
	}
	return -1
}

// RentalAgreement tracks one rental episode's handover/return negotiation.
type RentalAgreement struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ChatID    int64     `json:"chatId" db:"chat_id"`
	ListingID int64     `json:"listingId" db:"listing_id"`

	ReturnDate       time.Time `json:"returnDate" db:"return_date"`
	BuyerAgreedDate  bool      `json:"buyerAgreedDate" db:"buyer_agreed_date"`
	SellerAgreedDate bool      `json:"sellerAgreedDate" db:"seller_agreed_date"`

	HandoverOTP         string `json:"handoverOtp,omitempty" db:"handover_otp"`
	ReturnOTP           string `json:"returnOtp,omitempty" db:"return_otp"`
	HandoverOTPVerified bool   `json:"handoverOtpVerified" db:"handover_otp_verified"`
	ReturnOTPVerified   bool   `json:"returnOtpVerified" db:"return_otp_verified"`

	BuyerStarted    bool `json:"buyerStarted" db:"buyer_started"`
	SellerStarted   bool `json:"sellerStarted" db:"seller_started"`
	BuyerConfirmed  bool `json:"buyerConfirmed" db:"buyer_confirmed"`
	SellerConfirmed bool `json:"sellerConfirmed" db:"seller_confirmed"`

	IsLate      bool            `json:"isLate" db:"is_late"`
	Penalty     decimal.Decimal `json:"penalty" db:"penalty"`
	LateCharged bool            `json:"-" db:"late_charged"`

	Status    AgreementStatus `json:"status" db:"status"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	StartDate *time.Time      `json:"startDate,omitempty" db:"start_date"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// NewRentalAgreement builds a pending agreement with every flag cleared.
func NewRentalAgreement(id uuid.UUID, chatID, listingID int64, returnDate time.Time, handoverOTP, returnOTP string, now time.Time) *RentalAgreement {
	return &RentalAgreement{
		ID:          id,
		ChatID:      chatID,
		ListingID:   listingID,
		ReturnDate:  returnDate.UTC(),
		HandoverOTP: handoverOTP,
		ReturnOTP:   returnOTP,
		Penalty:     decimal.Zero,
		Status:      AgreementStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AgreedDate reports whether p has agreed to the current return date.
func (a *RentalAgreement) AgreedDate(p Party) bool {
	if p == PartyBuyer {
		return a.BuyerAgreedDate
	}
	return a.SellerAgreedDate
}

func (a *RentalAgreement) setAgreedDate(p Party, v bool) {
	if p == PartyBuyer {
		a.BuyerAgreedDate = v
	} else {
		a.SellerAgreedDate = v
	}
}

// DateLocked is true once both parties agreed to the same return date.
func (a *RentalAgreement) DateLocked() bool {
	return a.BuyerAgreedDate && a.SellerAgreedDate
}

func (a *RentalAgreement) Started(p Party) bool {
	if p == PartyBuyer {
		return a.BuyerStarted
	}
	return a.SellerStarted
}

func (a *RentalAgreement) Confirmed(p Party) bool {
	if p == PartyBuyer {
		return a.BuyerConfirmed
	}
	return a.SellerConfirmed
}

func (a *RentalAgreement) IsCompleted() bool {
	return a.Status == AgreementStatusCompleted
}

// Clone returns a deep copy.
func (a *RentalAgreement) Clone() *RentalAgreement {
	c := *a
	if a.StartDate != nil {
		sd := *a.StartDate
		c.StartDate = &sd
	}
	return &c
}

// RedactFor hides the secret the given party has to verify. A nil party
// hides both secrets.
func (a *RentalAgreement) RedactFor(p *Party) *RentalAgreement {
	c := a.Clone()
	switch {
	case p == nil:
		c.HandoverOTP = ""
		c.ReturnOTP = ""
	case *p == PartyBuyer:
		c.HandoverOTP = ""
	case *p == PartySeller:
		c.ReturnOTP = ""
	}
	return c
}
