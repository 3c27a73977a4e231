package repo

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ndanilin/account-service/internal/models"
)

func newTestRepo(t *testing.T) *UserRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return &UserRepo{DB: db}
}

func testParams() CreateParams {
	return CreateParams{
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     "a@x.com",
		Password:  "secret1",
	}
}

func TestCreate(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	user, err := r.Create(ctx, testParams())
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "Ann", user.FirstName)
	require.Equal(t, "Lee", user.LastName)
	require.Equal(t, "a@x.com", user.Email)
	require.True(t, user.IsActive)
	require.False(t, user.IsStaff)
	require.False(t, user.IsSuperuser)

	require.NotEqual(t, "secret1", user.PasswordHash)
	require.True(t, r.VerifyPassword(user, "secret1"))
	require.False(t, r.VerifyPassword(user, "wrong"))
}

func TestCreateNormalizesEmail(t *testing.T) {
	r := newTestRepo(t)

	p := testParams()
	p.Email = "  Ann.Lee@X.COM "
	user, err := r.Create(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, "ann.lee@x.com", user.Email)
}

func TestCreateDuplicateEmail(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.Create(ctx, testParams())
	require.NoError(t, err)

	_, err = r.Create(ctx, testParams())
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreateValidation(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	for _, tc := range []struct {
		name   string
		mutate func(*CreateParams)
	}{
		{"empty email", func(p *CreateParams) { p.Email = "" }},
		{"empty first name", func(p *CreateParams) { p.FirstName = "" }},
		{"empty last name", func(p *CreateParams) { p.LastName = "" }},
		{"empty password", func(p *CreateParams) { p.Password = "" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := testParams()
			tc.mutate(&p)
			_, err := r.Create(ctx, p)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestFindByEmailMiss(t *testing.T) {
	r := newTestRepo(t)

	user, err := r.FindByEmail(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestGetByIDMiss(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.GetByID(context.Background(), "no-such-id")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePartial(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	user, err := r.Create(ctx, testParams())
	require.NoError(t, err)
	oldHash := user.PasswordHash

	first := "X"
	updated, err := r.Update(ctx, user, UpdateParams{FirstName: &first})
	require.NoError(t, err)

	require.Equal(t, "X", updated.FirstName)
	require.Equal(t, "Lee", updated.LastName)
	require.Equal(t, "a@x.com", updated.Email)
	require.Equal(t, oldHash, updated.PasswordHash)
}

func TestUpdatePassword(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	user, err := r.Create(ctx, testParams())
	require.NoError(t, err)

	password := "newsecret"
	updated, err := r.Update(ctx, user, UpdateParams{Password: &password})
	require.NoError(t, err)

	require.NotEqual(t, user.PasswordHash, updated.PasswordHash)
	require.NotEqual(t, "newsecret", updated.PasswordHash)
	require.True(t, r.VerifyPassword(updated, "newsecret"))
	require.False(t, r.VerifyPassword(updated, "secret1"))
}

func TestUpdateDuplicateEmail(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.Create(ctx, testParams())
	require.NoError(t, err)

	p := testParams()
	p.Email = "b@x.com"
	second, err := r.Create(ctx, p)
	require.NoError(t, err)

	email := "a@x.com"
	_, err = r.Update(ctx, second, UpdateParams{Email: &email})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateBlankField(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	user, err := r.Create(ctx, testParams())
	require.NoError(t, err)

	blank := ""
	_, err = r.Update(ctx, user, UpdateParams{Email: &blank})
	require.ErrorIs(t, err, ErrValidation)
}
