package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"athleteportal/internal/domain/account"
)

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	AccountID       string
	CurrentPassword string
	NewPassword     string
}

// AccountStoreForChangePassword defines the store interface needed by ChangePassword.
type AccountStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	AccountStore AccountStoreForChangePassword
}

var (
	ErrPasswordFieldsRequired = errors.New("current and new password are required")
	ErrCurrentPasswordWrong   = errors.New("current password is incorrect")
	ErrNewPasswordSame        = errors.New("new password must be different from current password")
)

// ExecuteChangePassword verifies the current password and stores the new one.
// PRE: AccountID identifies a saved account
// POST: Password is re-hashed and PasswordChangeRequired is cleared
// INVARIANT: A wrong current password leaves the account untouched
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return ErrPasswordFieldsRequired
	}

	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return fmt.Errorf("load account %s: %w", input.AccountID, err)
	}
	if err := acct.CheckPassword(input.CurrentPassword); err != nil {
		slog.Info("auth_event", "event", "password_change_failed", "account_id", acct.ID)
		return ErrCurrentPasswordWrong
	}
	if input.CurrentPassword == input.NewPassword {
		return ErrNewPasswordSame
	}
	if err := acct.SetPassword(input.NewPassword); err != nil {
		return err
	}
	acct.PasswordChangeRequired = false

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "password_changed", "account_id", acct.ID)
	return nil
}
