package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/types"
)

func setupPasswordConfig(t *testing.T) *config.PasswordConfig {
	t.Helper()
	cfg, err := config.AuthConfig{BcryptCost: 10}.Password()
	require.NoError(t, err)
	return cfg
}

func TestConvertDBUserToTypesUser(t *testing.T) {
	t.Run("valid user", func(t *testing.T) {
		now := time.Now()
		dbUser := &db.User{
			ID:           uuid.New(),
			Name:         "John Doe",
			Email:        "john@example.com",
			Phone:        "555-0100",
			PasswordHash: "hashed-password",
			PasswordSet:  true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		typesUser := convertDBUserToTypesUser(dbUser)
		require.NotNil(t, typesUser)
		assert.Equal(t, dbUser.ID, typesUser.ID)
		assert.Equal(t, dbUser.Name, typesUser.Name)
		assert.Equal(t, dbUser.Email, typesUser.Email)
		assert.Equal(t, dbUser.Phone, typesUser.Phone)
		assert.True(t, typesUser.PasswordSet)
		assert.Equal(t, dbUser.CreatedAt, typesUser.DateJoined)
		assert.Nil(t, typesUser.ProfilePicture)
	})

	t.Run("profile picture", func(t *testing.T) {
		typesUser := convertDBUserToTypesUser(&db.User{ProfilePicture: "https://img.example.com/me.png"})
		require.NotNil(t, typesUser.ProfilePicture)
		assert.Equal(t, "https://img.example.com/me.png", *typesUser.ProfilePicture)
	})

	t.Run("nil user", func(t *testing.T) {
		assert.Nil(t, convertDBUserToTypesUser(nil))
	})
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	service := NewUserService(newFakeDB(), setupPasswordConfig(t))

	user, err := service.Register(ctx, &types.CreateUserRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.True(t, user.PasswordSet)

	_, err = service.Register(ctx, &types.CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	var exists *ErrEmailAlreadyExists
	assert.ErrorAs(t, err, &exists)

	got, err := service.Login(ctx, &types.LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	for _, req := range []types.LoginRequest{
		{Email: "ada@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "secret1"},
	} {
		_, err := service.Login(ctx, &req)
		var invalid *ErrInvalidCredentials
		assert.ErrorAs(t, err, &invalid, "unknown email and wrong password must look the same")
	}
}

func TestUserService_LoginWithoutPassword(t *testing.T) {
	ctx := context.Background()
	fdb := newFakeDB()
	_, err := fdb.CreateUser(ctx, "No Password", "nopw@example.com", "")
	require.NoError(t, err)

	service := NewUserService(fdb, setupPasswordConfig(t))
	_, err = service.Login(ctx, &types.LoginRequest{Email: "nopw@example.com", Password: ""})
	var invalid *ErrInvalidCredentials
	assert.ErrorAs(t, err, &invalid)
}

func TestUserService_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	service := NewUserService(newFakeDB(), setupPasswordConfig(t))
	user, err := service.Register(ctx, &types.CreateUserRequest{Name: "Bo", Email: "bo@example.com", Password: "first-pass"})
	require.NoError(t, err)

	err = service.UpdatePassword(ctx, user.ID, "not-it", "second-pass")
	var mismatch *ErrPasswordMismatch
	assert.ErrorAs(t, err, &mismatch)

	require.NoError(t, service.UpdatePassword(ctx, user.ID, "first-pass", "second-pass"))
	_, err = service.Login(ctx, &types.LoginRequest{Email: "bo@example.com", Password: "second-pass"})
	assert.NoError(t, err)

	err = service.UpdatePassword(ctx, uuid.New(), "x", "y")
	var notFound *ErrUserNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	service := NewUserService(newFakeDB(), setupPasswordConfig(t))
	user, err := service.Register(ctx, &types.CreateUserRequest{Name: "Cy", Email: "cy@example.com", Password: "password", Phone: "555"})
	require.NoError(t, err)

	name := "Cyrus"
	updated, err := service.UpdateProfile(ctx, user.ID, &types.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Cyrus", updated.Name)
	assert.Equal(t, "555", updated.Phone, "nil fields are left alone")

	profile, err := service.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cyrus", profile.Name)

	_, err = service.GetProfile(ctx, uuid.New())
	var notFound *ErrUserNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestUserService_DatabaseErrorsAreWrapped(t *testing.T) {
	fdb := newFakeDB()
	fdb.err = errors.New("connection refused")
	service := NewUserService(fdb, setupPasswordConfig(t))

	_, err := service.Login(context.Background(), &types.LoginRequest{Email: "a@b.co", Password: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 500, HTTPStatus(err))
}
