package domain

import (
	"fmt"
	"time"

	customError "github.com/segyhp/rental-engine/pkg/errors"
)

// Command is a party's intent. Decide turns it into events or rejects it.
type Command interface {
	Actor() Party
}

type ProposeDate struct {
	By   Party
	Date time.Time
}

type RejectDate struct {
	By   Party
	Date time.Time
}

type VerifyOTP struct {
	By   Party
	Code string
}

// ConfirmHandover is a party's attestation that the item changed hands at the start.
type ConfirmHandover struct {
	By Party
}

// ConfirmReturn is a party's attestation that the item came back.
type ConfirmReturn struct {
	By Party
}

func (c ProposeDate) Actor() Party     { return c.By }
func (c RejectDate) Actor() Party      { return c.By }
func (c VerifyOTP) Actor() Party       { return c.By }
func (c ConfirmHandover) Actor() Party { return c.By }
func (c ConfirmReturn) Actor() Party   { return c.By }

// ParseCommand decodes a confirm request into a command. Malformed input is
// reported as a validation error, never as a transition error.
func ParseCommand(req *ConfirmRequest) (Command, error) {
	by := Party(req.ConfirmedBy)
	if !by.Valid() {
		return nil, customError.WrapValidation(fmt.Sprintf("confirmedBy must be buyer or seller, got %q", req.ConfirmedBy))
	}

	switch req.Action {
	case ActionDate, ActionRejectDate:
		if req.Date == nil || req.Date.IsZero() {
			return nil, customError.WrapValidation(fmt.Sprintf("date is required for action %s", req.Action))
		}
		date := req.Date.UTC()
		if req.Action == ActionDate {
			return ProposeDate{By: by, Date: date}, nil
		}
		return RejectDate{By: by, Date: date}, nil
	case ActionVerifyOTP:
		if req.OTP == nil || *req.OTP == "" {
			return nil, customError.WrapValidation("otp is required for action verify_otp")
		}
		code := string(*req.OTP)
		if !isOTPShaped(code) {
			return nil, customError.WrapValidation("otp must be exactly 4 digits")
		}
		return VerifyOTP{By: by, Code: code}, nil
	case ActionStart:
		return ConfirmHandover{By: by}, nil
	case ActionEnd:
		return ConfirmReturn{By: by}, nil
	}

	return nil, customError.WrapValidation(fmt.Sprintf("unknown action %q", req.Action))
}

func isOTPShaped(code string) bool {
	if len(code) != OTPLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
