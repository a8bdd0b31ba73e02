package domain

import (
	"crypto/subtle"
	"time"

	customError "github.com/segyhp/rental-engine/pkg/errors"
)

// OTPLength is the number of digits in handover and return codes.
const OTPLength = 4

// Decide checks cmd against the current state and returns the events it
// produces. It does not modify the agreement. An empty result with a nil
// error means the command was already satisfied.
func (a *RentalAgreement) Decide(cmd Command, now time.Time) ([]Event, error) {
	switch c := cmd.(type) {
	case ProposeDate:
		return a.decideProposeDate(c, now)
	case RejectDate:
		return a.decideRejectDate(c, now)
	case VerifyOTP:
		return a.decideVerifyOTP(c)
	case ConfirmHandover:
		return a.decideConfirmHandover(c)
	case ConfirmReturn:
		return a.decideConfirmReturn(c)
	}
	return nil, customError.WrapValidation("unsupported command")
}

// Handle decides cmd and folds the resulting events into the agreement.
func (a *RentalAgreement) Handle(cmd Command, now time.Time) ([]Event, error) {
	events, err := a.Decide(cmd, now)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		a.Apply(ev, now)
	}
	return events, nil
}

func (a *RentalAgreement) decideProposeDate(c ProposeDate, now time.Time) ([]Event, error) {
	if a.Status != AgreementStatusPending {
		return nil, customError.WrapInvalidTransition("return date can only change while the rental is pending")
	}
	if !c.Date.After(now) {
		return nil, customError.WrapValidation("return date must be in the future")
	}

	sameDate := c.Date.Equal(a.ReturnDate)
	if sameDate && a.AgreedDate(c.By) {
		return nil, nil
	}
	if a.DateLocked() && !sameDate {
		return nil, customError.WrapInvalidTransition("return date is already agreed by both parties; reject it to propose another")
	}

	var events []Event
	other := c.By.Other()
	if a.AgreedDate(other) && !sameDate {
		events = append(events, DateAgreementWithdrawn{Party: other})
	}
	events = append(events, DateProposed{By: c.By, Date: c.Date})
	return events, nil
}

func (a *RentalAgreement) decideRejectDate(c RejectDate, now time.Time) ([]Event, error) {
	if a.Status != AgreementStatusPending {
		return nil, customError.WrapInvalidTransition("return date can only be rejected while the rental is pending")
	}
	if !a.BuyerAgreedDate && !a.SellerAgreedDate {
		return nil, customError.WrapInvalidTransition("no party has agreed to the return date yet")
	}
	if !c.Date.After(now) {
		return nil, customError.WrapValidation("return date must be in the future")
	}
	return []Event{DateRejected{By: c.By, Date: c.Date}}, nil
}

func (a *RentalAgreement) decideVerifyOTP(c VerifyOTP) ([]Event, error) {
	switch a.Status {
	case AgreementStatusPending:
		if !a.DateLocked() {
			return nil, customError.WrapInvalidTransition("both parties must agree on the return date before handover")
		}
		if !codesMatch(c.Code, a.HandoverOTP) {
			return nil, customError.WrapVerificationFailed("handover code does not match")
		}
		return []Event{OTPVerified{By: c.By, Direction: DirectionHandover}}, nil
	case AgreementStatusActive:
		if !codesMatch(c.Code, a.ReturnOTP) {
			return nil, customError.WrapVerificationFailed("return code does not match")
		}
		return []Event{OTPVerified{By: c.By, Direction: DirectionReturn}}, nil
	}
	return nil, customError.WrapInvalidTransition("rental is already completed")
}

func (a *RentalAgreement) decideConfirmHandover(c ConfirmHandover) ([]Event, error) {
	if a.Status != AgreementStatusActive || !a.HandoverOTPVerified || !a.DateLocked() {
		return nil, customError.WrapInvalidTransition("handover can only be confirmed after the handover code is verified")
	}
	if a.Started(c.By) {
		return nil, nil
	}
	return []Event{HandoverConfirmed{By: c.By}}, nil
}

func (a *RentalAgreement) decideConfirmReturn(c ConfirmReturn) ([]Event, error) {
	if !a.ReturnOTPVerified {
		return nil, customError.WrapInvalidTransition("return can only be confirmed after the return code is verified")
	}
	if a.Confirmed(c.By) {
		return nil, nil
	}
	return []Event{ReturnConfirmed{By: c.By}}, nil
}

func codesMatch(given, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(want)) == 1
}

// Overdue reports whether the return date has passed on an unfinished rental.
func (a *RentalAgreement) Overdue(now time.Time) bool {
	return !a.IsCompleted() && now.After(a.ReturnDate)
}

// RefreshLateness sets IsLate for now. A charged penalty is kept even when
// the rental is no longer late.
func (a *RentalAgreement) RefreshLateness(now time.Time) {
	a.IsLate = a.Overdue(now)
}

// ObserveLateness returns the event that charges the late penalty the first
// time the rental is seen overdue. Later calls return nothing.
func (a *RentalAgreement) ObserveLateness(now time.Time, penalty LatePenalty) []Event {
	if a.LateCharged || !a.Overdue(now) {
		return nil
	}
	return []Event{LatenessObserved{ReturnDate: a.ReturnDate, Penalty: penalty.Amount}}
}
