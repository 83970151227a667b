package user

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

type fakeUserRepo struct {
	users map[string]User // keyed by ID
}

func newFakeUserRepo(users ...User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]User, len(users))}
	for _, usr := range users {
		repo.users[usr.ID] = usr
	}
	return repo
}

func (repo *fakeUserRepo) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error {
	return nil
}

func (repo *fakeUserRepo) CreateUser(ctx context.Context, usr User) (User, error) {
	repo.users[usr.ID] = usr
	return usr, nil
}

func (repo *fakeUserRepo) QueryAllUsers(ctx context.Context) ([]User, error) {
	all := make([]User, 0, len(repo.users))
	for _, usr := range repo.users {
		all = append(all, usr)
	}
	return all, nil
}

func (repo *fakeUserRepo) GetUserByID(ctx context.Context, id string) (User, error) {
	if usr, ok := repo.users[id]; ok {
		return usr, nil
	}
	return User{}, ErrNotFound
}

func (repo *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (User, error) {
	for _, usr := range repo.users {
		if usr.Username == username {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (repo *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (User, error) {
	for _, usr := range repo.users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (repo *fakeUserRepo) GetUserByGoogleID(ctx context.Context, googleID string) (User, error) {
	for _, usr := range repo.users {
		if usr.GoogleID != "" && usr.GoogleID == googleID {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (repo *fakeUserRepo) GetUserByUsernameOrEmail(ctx context.Context, username string) (User, error) {
	if usr, err := repo.GetUserByUsername(ctx, username); err == nil {
		return usr, nil
	}
	return repo.GetUserByEmail(ctx, username)
}

func (repo *fakeUserRepo) FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error) {
	return repo.QueryAllUsers(ctx)
}

func (repo *fakeUserRepo) UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error) {
	if _, ok := repo.users[usr.ID]; !ok {
		return User{}, ErrNotFound
	}
	if isActive != nil {
		usr.IsActive = *isActive
	}
	repo.users[usr.ID] = usr
	return usr, nil
}

func (repo *fakeUserRepo) DeleteUsersByID(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		delete(repo.users, id)
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func mockAllowedEmails(t *testing.T, emails ...string) {
	t.Helper()
	orig := allowedEmails
	allowedEmails = emails
	t.Cleanup(func() { allowedEmails = orig })
}

func TestService_SyncGoogleAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("existing account matched by google ID", func(t *testing.T) {
		mockAllowedEmails(t, "someoneelse@test.cd") // existing accounts bypass the allowlist
		repo := newFakeUserRepo(User{
			ID: "u1", Name: "Old Name", Username: "abi", Email: "abi@test.cd",
			GoogleID: "g-123", IsActive: true, Roles: StaffRoles,
		})
		svc := &service{repo: repo, log: nopLogger{}}

		usr, err := svc.SyncGoogleAccount(ctx, GoogleAccount{ID: "g-123", Email: "abi@test.cd", Name: "Abi", Picture: "https://pic"})
		if err != nil {
			t.Fatalf("SyncGoogleAccount() failed: %v", err)
		}
		if usr.ID != "u1" {
			t.Errorf("ID = %s, want u1", usr.ID)
		}
		if usr.Name != "Abi" || usr.Picture != "https://pic" {
			t.Errorf("profile not refreshed: Name = %s, Picture = %s", usr.Name, usr.Picture)
		}
		if usr.LastLogin.IsZero() {
			t.Error("LastLogin not set")
		}
		if len(repo.users) != 1 {
			t.Errorf("got %d users, want 1", len(repo.users))
		}
	})

	t.Run("first google sign-in attaches to the account by email", func(t *testing.T) {
		mockAllowedEmails(t, "someoneelse@test.cd")
		repo := newFakeUserRepo(User{
			ID: "u1", Name: "Bala", Username: "bala", Email: "bala@test.cd",
			IsActive: true, Roles: MemberRoles,
		})
		svc := &service{repo: repo, log: nopLogger{}}

		usr, err := svc.SyncGoogleAccount(ctx, GoogleAccount{ID: "g-456", Email: "Bala@Test.cd", Name: "Bala"})
		if err != nil {
			t.Fatalf("SyncGoogleAccount() failed: %v", err)
		}
		if usr.ID != "u1" {
			t.Errorf("ID = %s, want u1", usr.ID)
		}
		if usr.GoogleID != "g-456" {
			t.Errorf("GoogleID = %s, want g-456", usr.GoogleID)
		}
		if len(repo.users) != 1 {
			t.Errorf("got %d users, want 1", len(repo.users))
		}
	})

	t.Run("new account gets the member role", func(t *testing.T) {
		mockAllowedEmails(t) // empty allowlist: everyone is allowed
		repo := newFakeUserRepo()
		svc := &service{repo: repo, log: nopLogger{}}

		usr, err := svc.SyncGoogleAccount(ctx, GoogleAccount{ID: "g-789", Email: "Chandra@Test.cd", Name: "Chandra"})
		if err != nil {
			t.Fatalf("SyncGoogleAccount() failed: %v", err)
		}
		if usr.ID == "" {
			t.Error("expected a generated ID")
		}
		if usr.Email != "chandra@test.cd" {
			t.Errorf("Email = %s, want chandra@test.cd", usr.Email)
		}
		if !usr.IsActive {
			t.Error("new account should be active")
		}
		if len(usr.Roles) != 1 || usr.Roles[0] != RoleMember {
			t.Errorf("Roles = %v, want [%s]", usr.Roles, RoleMember)
		}
	})

	t.Run("allowlisted new account is created", func(t *testing.T) {
		mockAllowedEmails(t, "Chandra@Test.cd")
		repo := newFakeUserRepo()
		svc := &service{repo: repo, log: nopLogger{}}

		if _, err := svc.SyncGoogleAccount(ctx, GoogleAccount{ID: "g-789", Email: "chandra@test.cd"}); err != nil {
			t.Fatalf("SyncGoogleAccount() failed: %v", err)
		}
		if len(repo.users) != 1 {
			t.Errorf("got %d users, want 1", len(repo.users))
		}
	})

	t.Run("allowlist blocks unknown emails", func(t *testing.T) {
		mockAllowedEmails(t, "abi@test.cd")
		repo := newFakeUserRepo()
		svc := &service{repo: repo, log: nopLogger{}}

		_, err := svc.SyncGoogleAccount(ctx, GoogleAccount{ID: "g-000", Email: "stranger@test.cd"})
		if errors.Cause(err) != ErrEmailNotAllowed {
			t.Fatalf("error = %v, want %v", err, ErrEmailNotAllowed)
		}
		if len(repo.users) != 0 {
			t.Errorf("got %d users, want 0", len(repo.users))
		}
	})

	t.Run("allowlist does not block existing accounts", func(t *testing.T) {
		mockAllowedEmails(t, "someoneelse@test.cd")
		byGoogleID := User{
			ID: "u1", Username: "abi", Email: "abi@test.cd",
			GoogleID: "g-123", IsActive: true, Roles: StaffRoles,
		}
		byEmail := User{
			ID: "u2", Username: "bala", Email: "bala@test.cd",
			IsActive: true, Roles: MemberRoles,
		}
		repo := newFakeUserRepo(byGoogleID, byEmail)
		svc := &service{repo: repo, log: nopLogger{}}

		if _, err := svc.SyncGoogleAccount(ctx, GoogleAccount{ID: "g-123", Email: "abi@test.cd"}); err != nil {
			t.Errorf("SyncGoogleAccount() by google ID failed: %v", err)
		}
		if _, err := svc.SyncGoogleAccount(ctx, GoogleAccount{ID: "g-456", Email: "bala@test.cd"}); err != nil {
			t.Errorf("SyncGoogleAccount() by email failed: %v", err)
		}
	})
}
