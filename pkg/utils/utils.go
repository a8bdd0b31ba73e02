package utils

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

const (
	otpMin = 1000
	otpMax = 9999
)

// GenerateOTP returns a 4 digit code drawn uniformly from 1000-9999
func GenerateOTP() (string, error) {
	return generateOTP(rand.Reader)
}

func generateOTP(r io.Reader) (string, error) {
	n, err := rand.Int(r, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()+otpMin), nil
}

// GenerateOTPPair returns a handover and a return code. The second code is
// redrawn a few times so the pair is distinct; a collision after that is
// tolerated.
func GenerateOTPPair() (string, string, error) {
	return generateOTPPair(rand.Reader, 5)
}

func generateOTPPair(r io.Reader, attempts int) (string, string, error) {
	handover, err := generateOTP(r)
	if err != nil {
		return "", "", err
	}

	ret, err := generateOTP(r)
	if err != nil {
		return "", "", err
	}
	for i := 0; i < attempts && ret == handover; i++ {
		if ret, err = generateOTP(r); err != nil {
			return "", "", err
		}
	}
	return handover, ret, nil
}

// DaysOverdue returns the number of started days between due and now
func DaysOverdue(due, now time.Time) int {
	if !now.After(due) {
		return 0
	}
	return int(now.Sub(due).Hours()/24) + 1
}
