package models

import (
	"time"
)

// OTPPurpose distinguishes the flows an OTP code may be issued for
type OTPPurpose string

const (
	OTPPurposeRegister      OTPPurpose = "register"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

// OTPToken defines a one-time verification code based on the 'otp_tokens' table
type OTPToken struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"userId" db:"user_id"`
	Purpose   OTPPurpose `json:"purpose" db:"purpose"`
	Code      string     `json:"-" db:"code"`
	ExpiresAt time.Time  `json:"expiresAt" db:"expires_at"`
	UsedAt    *time.Time `json:"usedAt,omitempty" db:"used_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}
