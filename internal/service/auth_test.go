package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fichaje/config"
	"fichaje/internal/model"
	"fichaje/internal/model/dto"
	"fichaje/pkg/errors"
	"fichaje/pkg/token"
)

type fakeProfileRepo struct {
	profiles map[string]*model.Profile
	nextID   int64
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile *model.Profile) error {
	f.nextID++
	profile.ID = f.nextID
	f.profiles[profile.Email] = profile
	return nil
}

func (f *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return f.profiles[email], nil
}

func (f *fakeProfileRepo) GetByPublicID(ctx context.Context, publicID int64) (*model.Profile, error) {
	for _, p := range f.profiles {
		if p.PublicID == publicID {
			return p, nil
		}
	}
	return nil, nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeProfileRepo) {
	t.Helper()

	config.Cfg.JWTSecret = "clave-de-pruebas"
	require.NoError(t, token.Init())

	repo := newFakeProfileRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreta1"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.profiles["ana@empresa.es"] = &model.Profile{
		BaseModel:    model.BaseModel{ID: 1},
		PublicID:     101,
		Email:        "ana@empresa.es",
		FullName:     "Ana García",
		PasswordHash: hash,
		Role:         model.RoleEmployee,
	}

	return NewAuthService(repo), repo
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newAuthFixture(t)

	pair, profile, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "ana@empresa.es", Password: "secreta1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, "101", profile.UserID)
	assert.Equal(t, "employee", profile.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "ana@empresa.es", Password: "incorrecta",
	})

	assert.ErrorIs(t, err, errors.InvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "nadie@empresa.es", Password: "secreta1",
	})

	// mismo error que la contraseña mala: no se filtra qué emails existen
	assert.ErrorIs(t, err, errors.InvalidCredentials)
}

func TestRefreshIssuesNewPair(t *testing.T) {
	svc, _ := newAuthFixture(t)

	pair, _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "ana@empresa.es", Password: "secreta1",
	})
	require.NoError(t, err)

	renewed, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, renewed.AccessToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	pair, _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "ana@empresa.es", Password: "secreta1",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, errors.Unauthorized)
}

func TestCreateUserValidations(t *testing.T) {
	svc, _ := newAuthFixture(t)

	cases := []struct {
		name string
		req  dto.CreateUserRequest
		want error
	}{
		{"email inválido", dto.CreateUserRequest{Email: "no-es-email", Password: "secreta1"}, errors.InvalidEmail},
		{"contraseña corta", dto.CreateUserRequest{Email: "luis@empresa.es", Password: "abc"}, errors.WeakPassword},
		{"email repetido", dto.CreateUserRequest{Email: "ana@empresa.es", Password: "secreta1"}, errors.EmailTaken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), &tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateUserDefaultsToEmployee(t *testing.T) {
	svc, repo := newAuthFixture(t)

	profile, err := svc.CreateUser(context.Background(), &dto.CreateUserRequest{
		Email: "luis@empresa.es", Password: "secreta1", FullName: "Luis Pérez", Role: "superuser",
	})
	require.NoError(t, err)

	assert.Equal(t, "employee", profile.Role)
	created := repo.profiles["luis@empresa.es"]
	require.NotNil(t, created)
	assert.NoError(t, bcrypt.CompareHashAndPassword(created.PasswordHash, []byte("secreta1")))
}
