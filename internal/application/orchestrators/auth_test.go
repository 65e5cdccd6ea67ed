package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"athleteportal/internal/domain/account"
	"athleteportal/internal/domain/athlete"
	"athleteportal/internal/domain/feature"
)

// mockAccountStore is an in-memory account store keyed by lowercase email.
type mockAccountStore struct {
	byEmail map[string]account.Account
	saves   int
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{byEmail: map[string]account.Account{}}
}

// GetByEmail implements AccountStoreForLogin.
func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return account.Account{}, errors.New("not found")
	}
	return a, nil
}

// GetByID implements AccountStoreForChangePassword.
func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	for _, a := range m.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return account.Account{}, errors.New("not found")
}

// Save implements AccountStoreForLogin.
func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.byEmail[strings.ToLower(a.Email)] = a
	m.saves++
	return nil
}

// Count implements AccountStoreForCreate.
func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.byEmail), nil
}

const testPassword = "correct horse battery"

// TestExecuteCreateAccount verifies creation, normalization and uniqueness.
func TestExecuteCreateAccount(t *testing.T) {
	store := newMockAccountStore()
	deps := CreateAccountDeps{AccountStore: store}
	ctx := context.Background()

	id, err := ExecuteCreateAccount(ctx, CreateAccountInput{Email: " Coach@Club.test ", Password: testPassword, Role: account.RoleCoach}, deps)
	if err != nil {
		t.Fatalf("ExecuteCreateAccount: %v", err)
	}
	got := store.byEmail["coach@club.test"]
	if got.ID != id || got.Email != "coach@club.test" || got.PasswordHash == "" {
		t.Errorf("stored = %+v", got)
	}

	if _, err := ExecuteCreateAccount(ctx, CreateAccountInput{Email: "coach@club.test", Password: testPassword, Role: account.RoleCoach}, deps); err != ErrEmailAlreadyExists {
		t.Errorf("duplicate err = %v", err)
	}
	if _, err := ExecuteCreateAccount(ctx, CreateAccountInput{Email: "x@club.test", Password: testPassword, Role: "parent"}, deps); err != account.ErrInvalidRole {
		t.Errorf("role err = %v", err)
	}
	if _, err := ExecuteCreateAccount(ctx, CreateAccountInput{Email: "y@club.test", Password: "short", Role: account.RoleAthlete}, deps); err != account.ErrPasswordTooShort {
		t.Errorf("password err = %v", err)
	}
}

// TestExecuteCreateAccount_AthleteRoster verifies athlete logins are tied to the roster.
func TestExecuteCreateAccount_AthleteRoster(t *testing.T) {
	roster, err := athlete.NewRoster([]athlete.Record{{ID: "a1", Name: "Riley", Email: "riley@club.test"}})
	if err != nil {
		t.Fatal(err)
	}
	deps := CreateAccountDeps{AccountStore: newMockAccountStore(), Roster: roster}
	ctx := context.Background()

	if _, err := ExecuteCreateAccount(ctx, CreateAccountInput{Email: "RILEY@club.test", Password: testPassword, Role: account.RoleAthlete}, deps); err != nil {
		t.Errorf("rostered athlete: %v", err)
	}
	if _, err := ExecuteCreateAccount(ctx, CreateAccountInput{Email: "ghost@club.test", Password: testPassword, Role: account.RoleAthlete}, deps); err != ErrAthleteNotOnRoster {
		t.Errorf("unrostered athlete err = %v", err)
	}
	if _, err := ExecuteCreateAccount(ctx, CreateAccountInput{Email: "coach@club.test", Password: testPassword, Role: account.RoleCoach}, deps); err != nil {
		t.Errorf("coaches need no roster entry: %v", err)
	}
}

// TestExecuteSeedAdmin verifies the admin is only seeded into an empty store.
func TestExecuteSeedAdmin(t *testing.T) {
	store := newMockAccountStore()
	deps := CreateAccountDeps{AccountStore: store}
	ctx := context.Background()

	if err := ExecuteSeedAdmin(ctx, deps, "admin@club.test", testPassword); err != nil {
		t.Fatalf("ExecuteSeedAdmin: %v", err)
	}
	admin := store.byEmail["admin@club.test"]
	if admin.Role != account.RoleAdmin || !admin.PasswordChangeRequired {
		t.Errorf("admin = %+v", admin)
	}

	if err := ExecuteSeedAdmin(ctx, deps, "other@club.test", testPassword); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if _, ok := store.byEmail["other@club.test"]; ok {
		t.Error("seed should be a no-op when accounts exist")
	}
}

// TestExecuteLogin verifies success, failure counting and lockout.
func TestExecuteLogin(t *testing.T) {
	store := newMockAccountStore()
	ctx := context.Background()
	if _, err := ExecuteCreateAccount(ctx, CreateAccountInput{Email: "coach@club.test", Password: testPassword, Role: account.RoleCoach}, CreateAccountDeps{AccountStore: store}); err != nil {
		t.Fatalf("create: %v", err)
	}
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	deps := LoginDeps{AccountStore: store, Now: func() time.Time { return now }}

	res, err := ExecuteLogin(ctx, LoginInput{Email: "coach@club.test", Password: testPassword}, deps)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Role != account.RoleCoach {
		t.Errorf("role = %q", res.Role)
	}

	if _, err := ExecuteLogin(ctx, LoginInput{Email: "ghost@club.test", Password: testPassword}, deps); err != ErrInvalidCredentials {
		t.Errorf("unknown account err = %v", err)
	}
	if _, err := ExecuteLogin(ctx, LoginInput{Email: "coach@club.test"}, deps); err != ErrInvalidCredentials {
		t.Errorf("blank password err = %v", err)
	}

	for i := 0; i < account.MaxFailedLogins; i++ {
		if _, err := ExecuteLogin(ctx, LoginInput{Email: "coach@club.test", Password: "wrong password!"}, deps); err != ErrInvalidCredentials {
			t.Fatalf("attempt %d err = %v", i, err)
		}
	}
	if _, err := ExecuteLogin(ctx, LoginInput{Email: "coach@club.test", Password: testPassword}, deps); err != ErrAccountLocked {
		t.Errorf("locked err = %v", err)
	}

	now = now.Add(account.LockoutDuration + time.Minute)
	if _, err := ExecuteLogin(ctx, LoginInput{Email: "coach@club.test", Password: testPassword}, deps); err != nil {
		t.Errorf("login after lockout expiry: %v", err)
	}
	if got := store.byEmail["coach@club.test"]; got.FailedLogins != 0 {
		t.Errorf("failed logins not reset: %d", got.FailedLogins)
	}
}

// mockFeatureStore is an in-memory catalog.
type mockFeatureStore struct {
	byKey map[string]feature.Feature
	saves int
}

// GetByKey implements FeatureStoreForToggle.
func (m *mockFeatureStore) GetByKey(_ context.Context, key string) (feature.Feature, error) {
	f, ok := m.byKey[key]
	if !ok {
		return feature.Feature{}, errors.New("feature not found")
	}
	return f, nil
}

// Save implements FeatureStoreForToggle.
func (m *mockFeatureStore) Save(_ context.Context, f feature.Feature) error {
	m.byKey[f.Key] = f
	m.saves++
	return nil
}

// SeedMissing implements FeatureStoreForSeed.
func (m *mockFeatureStore) SeedMissing(_ context.Context, catalog []feature.Feature) (int, error) {
	added := 0
	for _, f := range catalog {
		if _, ok := m.byKey[f.Key]; !ok {
			m.byKey[f.Key] = f
			added++
		}
	}
	return added, nil
}

// TestExecuteSeedAndToggleFeatures verifies seeding and the kill switch.
func TestExecuteSeedAndToggleFeatures(t *testing.T) {
	store := &mockFeatureStore{byKey: map[string]feature.Feature{}}
	ctx := context.Background()

	if err := ExecuteSeedFeatures(ctx, store); err != nil {
		t.Fatalf("ExecuteSeedFeatures: %v", err)
	}
	if len(store.byKey) != len(feature.DefaultCatalog()) {
		t.Fatalf("seeded %d features", len(store.byKey))
	}
	key := feature.DefaultCatalog()[0].Key

	f, err := ExecuteSetFeatureEnabled(ctx, SetFeatureEnabledInput{Key: key, Enabled: false, ChangedBy: "admin"}, store)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if f.Enabled || store.byKey[key].Enabled {
		t.Error("feature still enabled")
	}
	if _, err := ExecuteSetFeatureEnabled(ctx, SetFeatureEnabledInput{Key: key, Enabled: false}, store); err != nil {
		t.Fatalf("repeat toggle: %v", err)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1 (no-op toggle should not write)", store.saves)
	}
	if _, err := ExecuteSetFeatureEnabled(ctx, SetFeatureEnabledInput{Key: "missing"}, store); err == nil {
		t.Error("expected error for unknown key")
	}
}

// TestExecuteChangePassword verifies the current password gate and flag reset.
func TestExecuteChangePassword(t *testing.T) {
	ctx := context.Background()
	store := newMockAccountStore()
	id, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Email: "coach@club.test", Password: testPassword, Role: account.RoleCoach, PasswordChangeRequired: true,
	}, CreateAccountDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	deps := ChangePasswordDeps{AccountStore: store}
	const next = "a much longer passphrase"

	tests := []struct {
		name    string
		input   ChangePasswordInput
		wantErr error
	}{
		{"missing fields", ChangePasswordInput{AccountID: id}, ErrPasswordFieldsRequired},
		{"wrong current", ChangePasswordInput{AccountID: id, CurrentPassword: "nope nope nope", NewPassword: next}, ErrCurrentPasswordWrong},
		{"same password", ChangePasswordInput{AccountID: id, CurrentPassword: testPassword, NewPassword: testPassword}, ErrNewPasswordSame},
		{"too short", ChangePasswordInput{AccountID: id, CurrentPassword: testPassword, NewPassword: "short"}, account.ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ExecuteChangePassword(ctx, tt.input, deps); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if err := ExecuteChangePassword(ctx, ChangePasswordInput{AccountID: id, CurrentPassword: testPassword, NewPassword: next}, deps); err != nil {
		t.Fatalf("change: %v", err)
	}
	acct, _ := store.GetByID(ctx, id)
	if acct.PasswordChangeRequired {
		t.Error("PasswordChangeRequired not cleared")
	}
	if err := acct.CheckPassword(next); err != nil {
		t.Error("new password not stored")
	}
	if err := ExecuteChangePassword(ctx, ChangePasswordInput{AccountID: "ghost", CurrentPassword: next, NewPassword: testPassword}, deps); err == nil {
		t.Error("expected error for unknown account")
	}
}
