package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Confirm actions accepted on the wire.
const (
	ActionDate       = "date"
	ActionRejectDate = "reject_date"
	ActionVerifyOTP  = "verify_otp"
	ActionStart      = "start"
	ActionEnd        = "end"
)

// OTPCode is a one-time code that may arrive as a JSON string or number.
// It is always kept and compared in its textual form.
type OTPCode string

func (c *OTPCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = OTPCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("otp must be a string or a number: %w", err)
	}
	*c = OTPCode(n.String())
	return nil
}

// DTOs for requests and responses

type CreateRentalRequest struct {
	ChatID     int64     `json:"chatId" validate:"required,gt=0"`
	ListingID  int64     `json:"listingId" validate:"required,gt=0"`
	ReturnDate time.Time `json:"returnDate" validate:"required"`
}

type ConfirmRequest struct {
	ConfirmedBy string     `json:"confirmedBy" validate:"required,oneof=buyer seller"`
	Action      string     `json:"action" validate:"required,oneof=date reject_date verify_otp start end"`
	Date        *time.Time `json:"date,omitempty"`
	OTP         *OTPCode   `json:"otp,omitempty" validate:"omitempty,len=4,numeric"`
}

type EventsResponse struct {
	RentalID uuid.UUID      `json:"rentalId"`
	Events   []*EventRecord `json:"events"`
}
