package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/TaskKeeper/internal/models"
)

type mockAuthRepo struct {
	CreateUserFunc     func(ctx context.Context, user models.User) error
	FindByUsernameFunc func(ctx context.Context, username string) (models.User, error)
}

func (m *mockAuthRepo) CreateUser(ctx context.Context, user models.User) error {
	return m.CreateUserFunc(ctx, user)
}
func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return m.FindByUsernameFunc(ctx, username)
}

// uniqueUserRepo stores users in memory and decides uniqueness inside the
// insert, the way a unique index does.
type uniqueUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newUniqueUserRepo() *uniqueUserRepo {
	return &uniqueUserRepo{users: make(map[string]models.User)}
}

func (r *uniqueUserRepo) CreateUser(_ context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return models.ErrConflict
	}
	r.users[user.Username] = user
	return nil
}

func (r *uniqueUserRepo) FindByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return u, nil
}

type fakeIssuer struct {
	issued []models.User
	err    error
}

func (f *fakeIssuer) Issue(user models.User) (string, error) {
	f.issued = append(f.issued, user)
	if f.err != nil {
		return "", f.err
	}
	return "token-for-" + user.Username, nil
}

type fakeRevocations struct {
	tokenID   string
	expiresAt time.Time
	err       error
}

func (f *fakeRevocations) RevokeToken(_ context.Context, tokenID string, expiresAt time.Time) error {
	f.tokenID = tokenID
	f.expiresAt = expiresAt
	return f.err
}

func newTestAuthService(repo AuthRepository, issuer TokenIssuer, rev RevocationRepository) *AuthService {
	return NewAuthService(repo, issuer, rev, WithBcryptCost(bcrypt.MinCost))
}

func TestRegister_Success(t *testing.T) {
	var stored models.User
	repo := &mockAuthRepo{
		CreateUserFunc: func(ctx context.Context, user models.User) error {
			stored = user
			return nil
		},
	}
	svc := newTestAuthService(repo, &fakeIssuer{}, &fakeRevocations{})

	user, err := svc.Register(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Error("expected an assigned user id")
	}
	if stored.Username != "carol" {
		t.Errorf("stored username = %q; want %q", stored.Username, "carol")
	}
	if stored.PasswordHash == "s3cret" || stored.PasswordHash == "" {
		t.Fatalf("password must be stored hashed, got %q", stored.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "pw"},
		{"empty password", "dave", ""},
		{"username too long", strings.Repeat("a", models.MaxUsernameLength+1), "pw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAuthRepo{
				CreateUserFunc: func(context.Context, models.User) error {
					t.Fatal("repository must not be called on invalid input")
					return nil
				},
			}
			svc := newTestAuthService(repo, &fakeIssuer{}, &fakeRevocations{})

			_, err := svc.Register(context.Background(), tt.username, tt.password)
			if !errors.Is(err, models.ErrValidation) {
				t.Errorf("Register error = %v; want ErrValidation", err)
			}
		})
	}
}

func TestRegister_MaxLengthUsernameAccepted(t *testing.T) {
	svc := newTestAuthService(newUniqueUserRepo(), &fakeIssuer{}, &fakeRevocations{})

	if _, err := svc.Register(context.Background(), strings.Repeat("a", models.MaxUsernameLength), "pw"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
}

func TestRegister_Conflict(t *testing.T) {
	svc := newTestAuthService(newUniqueUserRepo(), &fakeIssuer{}, &fakeRevocations{})

	if _, err := svc.Register(context.Background(), "erin", "pw1"); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	_, err := svc.Register(context.Background(), "erin", "pw2")
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("second Register error = %v; want ErrConflict", err)
	}
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	svc := newTestAuthService(newUniqueUserRepo(), &fakeIssuer{}, &fakeRevocations{})

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Register(context.Background(), "frank", "pw")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, models.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if successes != 1 {
		t.Errorf("successes = %d; want exactly 1", successes)
	}
	if conflicts != workers-1 {
		t.Errorf("conflicts = %d; want %d", conflicts, workers-1)
	}
}

func TestRegister_RepoError(t *testing.T) {
	wantErr := errors.New("insert failed")
	repo := &mockAuthRepo{
		CreateUserFunc: func(context.Context, models.User) error { return wantErr },
	}
	svc := newTestAuthService(repo, &fakeIssuer{}, &fakeRevocations{})

	_, err := svc.Register(context.Background(), "gina", "pw")
	if err != wantErr {
		t.Fatalf("Register error = %v; want %v", err, wantErr)
	}
}

func TestLogin_Success(t *testing.T) {
	repo := newUniqueUserRepo()
	issuer := &fakeIssuer{}
	svc := newTestAuthService(repo, issuer, &fakeRevocations{})

	registered, err := svc.Register(context.Background(), "hank", "pw")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	tok, err := svc.Login(context.Background(), "hank", "pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if tok != "token-for-hank" {
		t.Errorf("token = %q; want %q", tok, "token-for-hank")
	}
	if len(issuer.issued) != 1 || issuer.issued[0].ID != registered.ID {
		t.Errorf("issued for %+v; want user %s", issuer.issued, registered.ID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newUniqueUserRepo()
	issuer := &fakeIssuer{}
	svc := newTestAuthService(repo, issuer, &fakeRevocations{})
	if _, err := svc.Register(context.Background(), "ivy", "right"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, err := svc.Login(context.Background(), "ivy", "wrong")
	if !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("Login error = %v; want ErrUnauthorized", err)
	}
	if len(issuer.issued) != 0 {
		t.Error("no token must be issued on a wrong password")
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newTestAuthService(newUniqueUserRepo(), &fakeIssuer{}, &fakeRevocations{})

	_, err := svc.Login(context.Background(), "nobody", "pw")
	if !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("Login error = %v; want ErrUserNotFound", err)
	}
	if errors.Is(err, models.ErrUnauthorized) {
		t.Error("unknown user must not be reported as unauthorized")
	}
}

func TestLogin_EmptyFields(t *testing.T) {
	svc := newTestAuthService(newUniqueUserRepo(), &fakeIssuer{}, &fakeRevocations{})

	_, err := svc.Login(context.Background(), "", "")
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Login error = %v; want ErrValidation", err)
	}
}

func TestLogin_IssuerError(t *testing.T) {
	wantErr := errors.New("sign failed")
	repo := newUniqueUserRepo()
	svc := newTestAuthService(repo, &fakeIssuer{err: wantErr}, &fakeRevocations{})
	if _, err := svc.Register(context.Background(), "jack", "pw"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, err := svc.Login(context.Background(), "jack", "pw")
	if err != wantErr {
		t.Errorf("Login error = %v; want %v", err, wantErr)
	}
}

func TestLogout(t *testing.T) {
	rev := &fakeRevocations{}
	svc := newTestAuthService(newUniqueUserRepo(), &fakeIssuer{}, rev)
	exp := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	err := svc.Logout(context.Background(), models.Claims{TokenID: "jti-9", ExpiresAt: exp})
	if err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if rev.tokenID != "jti-9" || !rev.expiresAt.Equal(exp) {
		t.Errorf("revoked %q until %v; want %q until %v", rev.tokenID, rev.expiresAt, "jti-9", exp)
	}
}

func TestLogout_MissingTokenID(t *testing.T) {
	svc := newTestAuthService(newUniqueUserRepo(), &fakeIssuer{}, &fakeRevocations{})

	err := svc.Logout(context.Background(), models.Claims{})
	if !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("Logout error = %v; want ErrUnauthorized", err)
	}
}
