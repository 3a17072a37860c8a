package authpw

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ridhiagarwalla/AI-doc-Generator/internal/store"
)

type fakeUserStore struct {
	getUserByEmailFn func(context.Context, string) (store.User, error)
	createUserFn     func(context.Context, store.User) error
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	if f.getUserByEmailFn != nil {
		return f.getUserByEmailFn(ctx, email)
	}
	return store.User{}, sql.ErrNoRows
}

func (f *fakeUserStore) GetUserByID(context.Context, string) (store.User, error) {
	return store.User{}, sql.ErrNoRows
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user store.User) error {
	if f.createUserFn != nil {
		return f.createUserFn(ctx, user)
	}
	return nil
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(&fakeUserStore{})
	cases := []struct {
		name     string
		fullName string
		email    string
		password string
	}{
		{"empty name", "", "a@b.com", "secret1"},
		{"bad email", "Ada", "nope", "secret1"},
		{"short password", "Ada", "a@b.com", "12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), RegisterRequest{
				FullName: tc.fullName,
				Email:    tc.email,
				Password: tc.password,
			})
			var validation ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	var created store.User
	svc := NewService(&fakeUserStore{
		createUserFn: func(_ context.Context, user store.User) error {
			created = user
			return nil
		},
	})

	user, err := svc.Register(context.Background(), RegisterRequest{
		FullName: "Ada Lovelace",
		Email:    "  Ada@Example.COM ",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ada@example.com" || created.Email != "ada@example.com" {
		t.Fatalf("email = %q / %q", user.Email, created.Email)
	}
	if user.ID == "" {
		t.Error("user id should be assigned")
	}
	if user.PasswordHash == "secret1" || user.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	svc := NewService(&fakeUserStore{
		getUserByEmailFn: func(context.Context, string) (store.User, error) {
			return store.User{ID: "u1"}, nil
		},
	})
	_, err := svc.Register(context.Background(), RegisterRequest{
		FullName: "Ada",
		Email:    "a@b.com",
		Password: "secret1",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc := NewService(&fakeUserStore{
		getUserByEmailFn: func(_ context.Context, email string) (store.User, error) {
			if email != "a@b.com" {
				return store.User{}, sql.ErrNoRows
			}
			return store.User{ID: "u1", Email: email, PasswordHash: string(hash)}, nil
		},
	})

	user, err := svc.Authenticate(context.Background(), "A@b.com", "secret1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("user = %+v", user)
	}

	if _, err := svc.Authenticate(context.Background(), "a@b.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(context.Background(), "missing@b.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}
