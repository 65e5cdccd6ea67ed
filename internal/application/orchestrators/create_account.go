package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"athleteportal/internal/domain/account"
	"athleteportal/internal/domain/athlete"
)

// AccountStoreForCreate is the slice of the account store that account creation needs.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// RosterByEmail finds an athlete in the served roster.
type RosterByEmail interface {
	ByEmail(email string) (athlete.Record, bool)
}

// CreateAccountInput carries the new login's identity and role.
type CreateAccountInput struct {
	Email                  string
	Password               string
	Role                   string
	PasswordChangeRequired bool
}

// CreateAccountDeps holds dependencies for CreateAccount.
// Roster is optional; when set, athlete logins must match a roster email.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	Roster       RosterByEmail
	Now          func() time.Time
}

var (
	ErrEmailAlreadyExists = errors.New("an account with this email already exists")
	ErrAthleteNotOnRoster = errors.New("athlete accounts must use an email from the current roster")
)

// ExecuteCreateAccount validates and stores a new portal login.
// PRE: Valid email, password >= 12 chars, valid role
// POST: Account stored with a bcrypt hash; returns its id
// INVARIANT: Emails are unique and stored lowercase
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (string, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	acct := account.Account{
		ID:                     uuid.NewString(),
		Email:                  strings.ToLower(strings.TrimSpace(input.Email)),
		Role:                   input.Role,
		CreatedAt:              now().UTC(),
		PasswordChangeRequired: input.PasswordChangeRequired,
	}
	if err := acct.Validate(); err != nil {
		return "", err
	}
	if _, err := deps.AccountStore.GetByEmail(ctx, acct.Email); err == nil {
		return "", ErrEmailAlreadyExists
	}
	if acct.Role == account.RoleAthlete && deps.Roster != nil {
		if _, ok := deps.Roster.ByEmail(acct.Email); !ok {
			return "", ErrAthleteNotOnRoster
		}
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return "", err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email, "role", acct.Role)
	return acct.ID, nil
}

// ExecuteSeedAdmin creates the first admin on an empty account table.
// POST: No-op when any account exists
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, email, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil || count > 0 {
		return err
	}
	_, err = ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:                  email,
		Password:               password,
		Role:                   account.RoleAdmin,
		PasswordChangeRequired: true,
	}, deps)
	if err != nil {
		return err
	}
	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}
