package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"atlastours/internal/shared/config"
	"atlastours/internal/users"
)

type memUserRepo struct {
	byEmail map[string]*users.User
	byID    map[string]*users.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byEmail: make(map[string]*users.User),
		byID:    make(map[string]*users.User),
	}
}

func (r *memUserRepo) CreateUser(ctx context.Context, user *users.User) error {
	user.ID = uuid.New()
	r.byEmail[user.Email] = user
	r.byID[user.ID.String()] = user
	return nil
}

func (r *memUserRepo) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (r *memUserRepo) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (r *memUserRepo) UpdateUserPassword(ctx context.Context, userID, hashedPassword string) error {
	u, ok := r.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Password = hashedPassword
	return nil
}

func (r *memUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			JWTExpiresIn:     15 * time.Minute,
			RefreshExpiresIn: 24 * time.Hour,
		},
	}
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc := NewService(newMemUserRepo(), testConfig())
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{
		FirstName: "Omar",
		LastName:  "Idrissi",
		Email:     "omar@example.com",
		Password:  "s3cret-pass",
		Role:      "superuser", // unknown role falls back to USER
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if registered.User.Role != string(users.RoleUser) {
		t.Errorf("role = %q, want USER fallback", registered.User.Role)
	}

	claims, err := svc.ValidateToken(registered.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Type != "access" || claims.Email != "omar@example.com" {
		t.Errorf("unexpected access claims: %+v", claims)
	}

	logged, err := svc.Login(ctx, &LoginRequest{Email: "omar@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.User.ID != registered.User.ID {
		t.Error("login returned a different user")
	}

	if _, err := svc.Login(ctx, &LoginRequest{Email: "omar@example.com", Password: "wrong"}); err != ErrInvalidCredentials {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewService(newMemUserRepo(), testConfig())
	ctx := context.Background()

	req := &RegisterRequest{FirstName: "Omar", LastName: "Idrissi", Email: "omar@example.com", Password: "s3cret-pass"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, req); err != ErrUserAlreadyExists {
		t.Errorf("got %v, want ErrUserAlreadyExists", err)
	}
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	svc := NewService(newMemUserRepo(), testConfig())
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{
		FirstName: "Omar", LastName: "Idrissi", Email: "omar@example.com", Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.RefreshToken(ctx, registered.AccessToken); err != ErrInvalidToken {
		t.Errorf("refresh with access token: got %v, want ErrInvalidToken", err)
	}

	pair, err := svc.RefreshToken(ctx, registered.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("refresh returned empty tokens")
	}
}

func TestChangePassword(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewService(repo, testConfig())
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{
		FirstName: "Omar", LastName: "Idrissi", Email: "omar@example.com", Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	err = svc.ChangePassword(ctx, registered.User.ID, &ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "new-pass-123",
	})
	if err != ErrInvalidCredentials {
		t.Fatalf("wrong current password: got %v, want ErrInvalidCredentials", err)
	}

	err = svc.ChangePassword(ctx, registered.User.ID, &ChangePasswordRequest{
		CurrentPassword: "s3cret-pass", NewPassword: "new-pass-123",
	})
	if err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	user := repo.byID[registered.User.ID]
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("new-pass-123")) != nil {
		t.Error("stored hash does not match the new password")
	}
}
