package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	MinPassword    = 12
)

// Lockout policy.
const (
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
)

// Role constants
const (
	RoleAdmin   = "admin"
	RoleCoach   = "coach"
	RoleAthlete = "athlete"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleCoach, RoleAthlete}

// Domain errors
var (
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
	ErrInvalidRole      = errors.New("role must be one of: admin, coach, athlete")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrWrongPassword    = errors.New("incorrect password")
)

// Account is a portal login. Athlete accounts are linked to their roster
// record by email.
type Account struct {
	ID                     string
	Email                  string
	PasswordHash           string
	Role                   string
	CreatedAt              time.Time
	FailedLogins           int
	LockedUntil            time.Time
	PasswordChangeRequired bool
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	if !isValidRole(a.Role) {
		return ErrInvalidRole
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 12 characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < MinPassword {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked reports whether the account is locked out at now.
func (a *Account) IsLocked(now time.Time) bool {
	return !a.LockedUntil.IsZero() && now.Before(a.LockedUntil)
}

// RecordFailedLogin increments the counter and locks after MaxFailedLogins.
// POST: LockedUntil set when the threshold is reached
func (a *Account) RecordFailedLogin(now time.Time) {
	a.FailedLogins++
	if a.FailedLogins >= MaxFailedLogins {
		a.LockedUntil = now.Add(LockoutDuration)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

// IsStaff reports whether the account is a coach or admin.
func (a *Account) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleCoach
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
