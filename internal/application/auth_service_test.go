package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/marketmapper/marketmapper/internal/domain/entity"
	"github.com/marketmapper/marketmapper/internal/domain/repository"
)

type stubUserRepo struct {
	users  map[string]*entity.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]*entity.User{}}
}

func (r *stubUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.nextID++
	u.ID = fmt.Sprintf("u%d", r.nextID)
	if u.ImageURL == "" {
		u.ImageURL = entity.DefaultProfileImage
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetByGoogleID(_ context.Context, googleID string) (*entity.User, error) {
	if googleID == "" {
		return nil, repository.ErrNotFound
	}
	for _, u := range r.users {
		if u.GoogleID == googleID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func TestSignupThenLogin(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, nil, nil, false)
	ctx := context.Background()

	created, err := svc.Signup(ctx, "ana@example.com", "ana", "supersecret1")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected created user to have an id")
	}
	if created.PasswordHash == "supersecret1" {
		t.Fatal("password must be stored hashed")
	}

	u, err := svc.Login(ctx, "ana@example.com", "supersecret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.ID != created.ID {
		t.Errorf("logged in as %q, want %q", u.ID, created.ID)
	}

	if _, err := svc.Login(ctx, "ana@example.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), nil, nil, false)

	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	if !errors.Is(err, ErrEmailNotRegistered) {
		t.Fatalf("err = %v, want ErrEmailNotRegistered", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), nil, nil, false)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "dup@example.com", "first", "password123"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := svc.Signup(ctx, "dup@example.com", "second", "password456"); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestLoginWithGoogleCreatesAndReuses(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, nil, nil, false)
	ctx := context.Background()

	profile := GoogleProfile{
		ID:         "g-123",
		Email:      "bo@example.com",
		Name:       "Bo",
		PictureURL: "https://img.example.com/v1.png",
	}

	first, err := svc.LoginWithGoogle(ctx, profile)
	if err != nil {
		t.Fatalf("LoginWithGoogle: %v", err)
	}
	if first.GoogleID != "g-123" || first.Username != "Bo" {
		t.Fatalf("unexpected created user: %+v", first)
	}

	// Second login with a new picture reuses the account and refreshes the image.
	profile.PictureURL = "https://img.example.com/v2.png"
	second, err := svc.LoginWithGoogle(ctx, profile)
	if err != nil {
		t.Fatalf("LoginWithGoogle: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected the same account, got %q and %q", first.ID, second.ID)
	}
	if second.ImageURL != "https://img.example.com/v2.png" {
		t.Errorf("image url = %q, want the refreshed one", second.ImageURL)
	}
}

func TestOAuthOnlyAccountCannotLoginLocally(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, nil, nil, false)
	ctx := context.Background()

	if _, err := svc.LoginWithGoogle(ctx, GoogleProfile{ID: "g-9", Email: "only@example.com", Name: "Only"}); err != nil {
		t.Fatalf("LoginWithGoogle: %v", err)
	}
	if _, err := svc.Login(ctx, "only@example.com", "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, nil, nil, false)
	ctx := context.Background()

	u, err := svc.Signup(ctx, "cam@example.com", "cam", "password123")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{Username: "camden", ImageURL: "https://img.example.com/c.png"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Username != "camden" || updated.ImageURL != "https://img.example.com/c.png" {
		t.Fatalf("unexpected profile: %+v", updated)
	}

	// Blank fields keep existing values.
	kept, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if kept.Username != "camden" {
		t.Errorf("username = %q, want camden", kept.Username)
	}

	if _, err := svc.UpdateProfile(ctx, "missing", UpdateProfileInput{Username: "x"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}
