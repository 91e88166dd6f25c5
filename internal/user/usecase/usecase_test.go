package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fekuna/superfume-sync/internal/apperr"
	"github.com/fekuna/superfume-sync/internal/live"
	"github.com/fekuna/superfume-sync/internal/model"
	"github.com/fekuna/superfume-sync/internal/remote"
	"github.com/fekuna/superfume-sync/internal/secret"
	"github.com/fekuna/superfume-sync/internal/testutil"
	"github.com/fekuna/superfume-sync/internal/user/dto"
	"github.com/fekuna/superfume-sync/internal/user/repository"
	"github.com/fekuna/superfume-sync/pkg/logger"
)

type fakeGateway struct {
	mu        sync.Mutex
	loginResp *remote.AuthResponse
	regResp   *remote.AuthResponse
	users     []remote.UserDTO
	err       error
	calls     int
	updated   []remote.UpdateUserRequest
	deleted   []int64
}

func (g *fakeGateway) result(resp *remote.AuthResponse) (*remote.AuthResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return resp, nil
}

func (g *fakeGateway) Login(ctx context.Context, req remote.LoginRequest) (*remote.AuthResponse, error) {
	return g.result(g.loginResp)
}

func (g *fakeGateway) Register(ctx context.Context, req remote.RegisterRequest) (*remote.AuthResponse, error) {
	return g.result(g.regResp)
}

func (g *fakeGateway) ListUsers(ctx context.Context) ([]remote.UserDTO, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.users, nil
}

func (g *fakeGateway) UpdateUser(ctx context.Context, id int64, req remote.UpdateUserRequest) (*remote.UserDTO, error) {
	g.updated = append(g.updated, req)
	if g.err != nil {
		return nil, g.err
	}
	return &remote.UserDTO{ID: id, Nombre: req.Nombre, Correo: req.Correo}, nil
}

func (g *fakeGateway) ChangeUserRole(ctx context.Context, id int64, roleID int) (*remote.UserDTO, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &remote.UserDTO{ID: id, Rol: &remote.RoleDTO{ID: roleID}}, nil
}

func (g *fakeGateway) DeleteUser(ctx context.Context, id int64) error {
	g.deleted = append(g.deleted, id)
	return g.err
}

type fixture struct {
	uc     *userUseCase
	repo   *repository.SQLiteRepository
	gw     *fakeGateway
	tokens *secret.MemoryStore
}

func newFixture(t *testing.T, gw *fakeGateway) *fixture {
	t.Helper()
	repo := repository.NewSQLiteRepository(testutil.NewDB(t), live.NewHub())
	tokens := secret.NewMemoryStore()
	uc := NewUserUseCase(repo, gw, tokens, "es", logger.NewNop()).(*userUseCase)
	uc.hashCost = bcrypt.MinCost
	return &fixture{uc: uc, repo: repo, gw: gw, tokens: tokens}
}

func (f *fixture) cacheUser(t *testing.T, email, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = f.repo.Upsert(context.Background(), &model.User{ID: 7, Email: email, PasswordHash: string(hash), FirstName: "Ana"})
	require.NoError(t, err)
}

func okLogin(token string) *remote.AuthResponse {
	return &remote.AuthResponse{
		Success: true,
		Message: "ok",
		User: &remote.UserDTO{
			ID: 7, Nombre: "Ana Soto Rivas", Correo: "ana@superfume.cl",
			Rol: &remote.RoleDTO{ID: 2, Nombre: "cliente"},
		},
		Token: &token,
	}
}

func TestLoginOnlineMirrorsUser(t *testing.T) {
	f := newFixture(t, &fakeGateway{loginResp: okLogin("jwt-token")})
	ctx := context.Background()

	s, err := f.uc.Login(ctx, " ana@superfume.cl ", "secreto1")
	require.NoError(t, err)
	assert.False(t, s.Offline)
	assert.Equal(t, "jwt-token", s.Token)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "Inicio de sesión exitoso", s.Message)

	token, ok := f.tokens.Token()
	assert.True(t, ok)
	assert.Equal(t, "jwt-token", token)
	info, ok := f.tokens.UserInfo()
	require.True(t, ok)
	assert.Equal(t, int64(7), info.UserID)
	assert.False(t, info.IsAdmin())

	stored, err := f.repo.GetByEmail(ctx, "ana@superfume.cl")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Ana", stored.FirstName)
	assert.Equal(t, "Soto Rivas", stored.LastName)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secreto1")))
}

func TestLoginRejectedByServer(t *testing.T) {
	f := newFixture(t, &fakeGateway{loginResp: &remote.AuthResponse{Success: false, Mensaje: "credenciales inválidas"}})

	_, err := f.uc.Login(context.Background(), "ana@superfume.cl", "secreto1")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	_, ok := f.tokens.Token()
	assert.False(t, ok)
}

func TestLoginFallsBackToCachedCredentials(t *testing.T) {
	cases := []struct {
		name      string
		remoteErr error
		cached    bool
		password  string
		check     func(t *testing.T, s *dto.Session, err error)
	}{
		{
			name: "network error, cached user, right password", remoteErr: &apperr.NetworkError{Err: errors.New("dial tcp")},
			cached: true, password: "secreto1",
			check: func(t *testing.T, s *dto.Session, err error) {
				require.NoError(t, err)
				assert.True(t, s.Offline)
				assert.Empty(t, s.Token)
				assert.Equal(t, int64(7), s.User.ID)
			},
		},
		{
			name: "http error, cached user, right password", remoteErr: &apperr.HTTPError{StatusCode: 503},
			cached: true, password: "secreto1",
			check: func(t *testing.T, s *dto.Session, err error) {
				require.NoError(t, err)
				assert.True(t, s.Offline)
			},
		},
		{
			name: "network error, cached user, wrong password", remoteErr: &apperr.NetworkError{Err: errors.New("dial tcp")},
			cached: true, password: "otra123",
			check: func(t *testing.T, s *dto.Session, err error) {
				assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
			},
		},
		{
			name: "network error, unknown user", remoteErr: &apperr.NetworkError{Err: errors.New("dial tcp")},
			password: "secreto1",
			check: func(t *testing.T, s *dto.Session, err error) {
				assert.ErrorIs(t, err, apperr.ErrNoCachedSession)
			},
		},
		{
			name: "http error, unknown user", remoteErr: &apperr.HTTPError{StatusCode: 401, Message: "no autorizado"},
			password: "secreto1",
			check: func(t *testing.T, s *dto.Session, err error) {
				assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
				assert.Equal(t, 401, apperr.StatusCode(err))
			},
		},
		{
			name: "server failure, unknown user", remoteErr: &apperr.HTTPError{StatusCode: 500},
			password: "secreto1",
			check: func(t *testing.T, s *dto.Session, err error) {
				assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, &fakeGateway{err: tc.remoteErr})
			if tc.cached {
				f.cacheUser(t, "ana@superfume.cl", "secreto1")
			}
			s, err := f.uc.Login(context.Background(), "ANA@superfume.cl", tc.password)
			tc.check(t, s, err)

			_, hasToken := f.tokens.Token()
			assert.False(t, hasToken)
		})
	}
}

func TestLoginRejectedWithoutCacheReadsAsBadCredentials(t *testing.T) {
	f := newFixture(t, &fakeGateway{err: &apperr.HTTPError{StatusCode: 401, Message: "no autorizado"}})

	s, err := f.uc.Login(context.Background(), "nadie@superfume.cl", "secreto1")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	assert.Equal(t, f.uc.Describe(apperr.ErrInvalidCredentials), f.uc.Describe(err))
}

func TestLoginWithoutProfileSkipsUserInfo(t *testing.T) {
	token := "jwt-token"
	f := newFixture(t, &fakeGateway{loginResp: &remote.AuthResponse{Success: true, Token: &token}})
	ctx := context.Background()

	s, err := f.uc.Login(ctx, "nueva@superfume.cl", "secreto1")
	require.NoError(t, err)
	assert.Zero(t, s.User.ID)

	saved, ok := f.tokens.Token()
	assert.True(t, ok)
	assert.Equal(t, token, saved)
	_, ok = f.tokens.UserInfo()
	assert.False(t, ok)

	current, err := f.uc.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestLoginValidatesBeforeRemote(t *testing.T) {
	gw := &fakeGateway{loginResp: okLogin("t")}
	f := newFixture(t, gw)

	_, err := f.uc.Login(context.Background(), "not-an-email", "secreto1")
	assert.True(t, apperr.IsValidation(err))
	_, err = f.uc.Login(context.Background(), "ana@superfume.cl", "")
	assert.True(t, apperr.IsValidation(err))
	assert.Zero(t, gw.calls)
}

func TestRegisterThenOfflineLogin(t *testing.T) {
	gw := &fakeGateway{regResp: okLogin("reg-token")}
	f := newFixture(t, gw)
	ctx := context.Background()

	s, err := f.uc.Register(ctx, &dto.RegisterInput{
		FirstName: "Ana", LastName: "Soto", Email: "ana@superfume.cl", Password: "secreto1",
	})
	require.NoError(t, err)
	assert.Equal(t, "reg-token", s.Token)
	assert.Equal(t, "Registro exitoso", s.Message)

	gw.err = &apperr.NetworkError{Err: errors.New("offline")}
	offline, err := f.uc.Login(ctx, "ana@superfume.cl", "secreto1")
	require.NoError(t, err)
	assert.True(t, offline.Offline)
}

func TestRegisterHasNoOfflineFallback(t *testing.T) {
	f := newFixture(t, &fakeGateway{err: &apperr.NetworkError{Err: errors.New("offline")}})

	_, err := f.uc.Register(context.Background(), &dto.RegisterInput{
		FirstName: "Ana", LastName: "Soto", Email: "ana@superfume.cl", Password: "secreto1",
	})
	assert.True(t, apperr.IsNetwork(err))

	u, err := f.repo.GetByEmail(context.Background(), "ana@superfume.cl")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestRegisterValidation(t *testing.T) {
	gw := &fakeGateway{regResp: okLogin("t")}
	f := newFixture(t, gw)
	phone := "12ab"

	address := " Av 1 "

	tests := []struct {
		in      *dto.RegisterInput
		field   string
		message string
	}{
		{&dto.RegisterInput{FirstName: "A", LastName: "Soto", Email: "ana@superfume.cl", Password: "secreto1"}, "first_name", "too short"},
		{&dto.RegisterInput{FirstName: "Ana", LastName: "R2D2", Email: "ana@superfume.cl", Password: "secreto1"}, "last_name", "letters only"},
		{&dto.RegisterInput{FirstName: "Ana", LastName: "Soto", Email: "ana@superfume", Password: "secreto1"}, "email", "malformed address"},
		{&dto.RegisterInput{FirstName: "Ana", LastName: "Soto", Email: "ana@superfume.cl", Password: "corta"}, "password", "too short"},
		{&dto.RegisterInput{FirstName: "Ana", LastName: "Soto", Email: "ana@superfume.cl", Password: "secretos"}, "password", "needs a number"},
		{&dto.RegisterInput{FirstName: "Ana", LastName: "Soto", Email: "ana@superfume.cl", Password: "secreto1", Phone: &phone}, "phone", "digits only"},
		{&dto.RegisterInput{FirstName: "Ana", LastName: "Soto", Email: "ana@superfume.cl", Password: "secreto1", Address: &address}, "address", "too short"},
	}
	for _, tt := range tests {
		_, err := f.uc.Register(context.Background(), tt.in)
		var ve *apperr.ValidationError
		if assert.ErrorAs(t, err, &ve) {
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.message, ve.Message)
		}
	}
	assert.Zero(t, gw.calls)
}

func TestLogoutAndCurrent(t *testing.T) {
	f := newFixture(t, &fakeGateway{loginResp: okLogin("t")})
	ctx := context.Background()

	_, err := f.uc.Login(ctx, "ana@superfume.cl", "secreto1")
	require.NoError(t, err)

	u, err := f.uc.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "ana@superfume.cl", u.Email)

	require.NoError(t, f.uc.Logout(ctx))
	u, err = f.uc.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	kept, err := f.repo.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestUpdateProfileWritesLocallyFirst(t *testing.T) {
	gw := &fakeGateway{loginResp: okLogin("t")}
	f := newFixture(t, gw)
	ctx := context.Background()

	_, err := f.uc.UpdateProfile(ctx, &dto.UpdateProfileInput{FirstName: "Ana", LastName: "Soto"})
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)

	_, err = f.uc.Login(ctx, "ana@superfume.cl", "secreto1")
	require.NoError(t, err)

	gw.err = &apperr.NetworkError{Err: errors.New("offline")}
	address := "Av. Providencia 1234"
	u, err := f.uc.UpdateProfile(ctx, &dto.UpdateProfileInput{FirstName: "Ana María", LastName: "Soto", Address: &address})
	assert.True(t, apperr.IsNetwork(err))
	require.NotNil(t, u)

	stored, err := f.repo.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ana María", stored.FirstName)
	require.NotNil(t, stored.Address)
	assert.Equal(t, address, *stored.Address)
	require.Len(t, gw.updated, 1)
	assert.Equal(t, "Ana María Soto", gw.updated[0].Nombre)
}

func TestListUsersMirrorsAndKeepsHashes(t *testing.T) {
	gw := &fakeGateway{users: []remote.UserDTO{
		{ID: 7, Nombre: "Ana Soto", Correo: "ana@superfume.cl"},
		{ID: 1, Nombre: "Root", Correo: "root@superfume.cl", Rol: &remote.RoleDTO{ID: 1, Nombre: "admin"}},
	}}
	f := newFixture(t, gw)
	f.cacheUser(t, "ana@superfume.cl", "secreto1")

	users, err := f.uc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	ana, err := f.repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.NotEmpty(t, ana.PasswordHash)
	root, err := f.repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, root.IsAdmin())
}

func TestChangeRoleAndDelete(t *testing.T) {
	f := newFixture(t, &fakeGateway{})
	ctx := context.Background()
	f.cacheUser(t, "ana@superfume.cl", "secreto1")

	u, err := f.uc.ChangeRole(ctx, 7, 1)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	_, err = f.uc.ChangeRole(ctx, 7, 9)
	assert.True(t, apperr.IsValidation(err))

	require.NoError(t, f.uc.DeleteUser(ctx, 7))
	gone, err := f.repo.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestDescribe(t *testing.T) {
	f := newFixture(t, &fakeGateway{})

	assert.Equal(t, "", f.uc.Describe(nil))
	assert.Equal(t, "Email o contraseña incorrectos", f.uc.Describe(apperr.ErrInvalidCredentials))
	assert.Equal(t, "Sin conexión y sin sesión guardada para este usuario", f.uc.Describe(apperr.ErrNoCachedSession))
	assert.Equal(t, "No se pudo conectar con el servidor", f.uc.Describe(&apperr.NetworkError{Err: errors.New("x")}))
	assert.Equal(t, "El servidor rechazó la solicitud: correo duplicado",
		f.uc.Describe(&apperr.HTTPError{StatusCode: 409, Message: "correo duplicado"}))

	f.uc.lang = "en"
	assert.Equal(t, "Invalid password: too short", f.uc.Describe(apperr.Validation("password", "too short")))
	assert.Equal(t, "Local storage failure", f.uc.Describe(apperr.Storage("x", errors.New("disk"))))
	assert.Equal(t, "Something went wrong", f.uc.Describe(errors.New("???")))
}
