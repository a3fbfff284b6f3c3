package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository"
)

type mockAuthUserRepository struct {
	createFn      func(ctx context.Context, user domain.User) (domain.User, error)
	findByEmailFn func(ctx context.Context, email string) (domain.User, error)
}

func (m *mockAuthUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	return m.createFn(ctx, user)
}

func (m *mockAuthUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.findByEmailFn(ctx, email)
}

func TestAuthService_Signup(t *testing.T) {
	svc := NewAuthService(&mockAuthUserRepository{
		createFn: func(_ context.Context, user domain.User) (domain.User, error) {
			user.ID = 1
			return user, nil
		},
	})

	created, err := svc.Signup(context.Background(), domain.User{
		Email:    "kate@cidery.test",
		Password: "orchard2024",
		Role:     "cellarman",
		Name:     "Kate",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(1), created.ID)
	// The stored password is a hash of the submitted one.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("orchard2024")))
}

func TestAuthService_Signup_InvalidRole(t *testing.T) {
	svc := NewAuthService(&mockAuthUserRepository{})

	_, err := svc.Signup(context.Background(), domain.User{
		Email:    "kate@cidery.test",
		Password: "orchard2024",
		Role:     "owner",
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAuthService_Signup_WeakPassword(t *testing.T) {
	svc := NewAuthService(&mockAuthUserRepository{})

	tests := []string{
		"short1",       // too short
		"onlyletters",  // no digit
		"123456789012", // no letter
	}
	for _, password := range tests {
		_, err := svc.Signup(context.Background(), domain.User{
			Email:    "kate@cidery.test",
			Password: password,
			Role:     "admin",
		})
		assert.ErrorIs(t, err, ErrWeakPassword, "password %q", password)
	}
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	svc := NewAuthService(&mockAuthUserRepository{
		createFn: func(_ context.Context, _ domain.User) (domain.User, error) {
			return domain.User{}, repository.ErrUserEmailExists
		},
	})

	_, err := svc.Signup(context.Background(), domain.User{
		Email:    "kate@cidery.test",
		Password: "orchard2024",
		Role:     "cellarman",
	})
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("orchard2024"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockAuthUserRepository{
		findByEmailFn: func(_ context.Context, email string) (domain.User, error) {
			if email != "kate@cidery.test" {
				return domain.User{}, repository.ErrUserNotFound
			}
			return domain.User{ID: 1, Email: email, Password: string(hash), Role: "cellarman"}, nil
		},
	}
	svc := NewAuthService(repo)

	user, err := svc.Login(context.Background(), "kate@cidery.test", "orchard2024")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	_, err = svc.Login(context.Background(), "kate@cidery.test", "wrong-password")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Login(context.Background(), "nobody@cidery.test", "orchard2024")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
