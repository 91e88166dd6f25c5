package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fekuna/superfume-sync/internal/apperr"
	"github.com/fekuna/superfume-sync/internal/live"
	"github.com/fekuna/superfume-sync/internal/model"
	"github.com/fekuna/superfume-sync/internal/remote"
	"github.com/fekuna/superfume-sync/internal/secret"
	"github.com/fekuna/superfume-sync/internal/user"
	"github.com/fekuna/superfume-sync/internal/user/dto"
	"github.com/fekuna/superfume-sync/internal/validator"
	"github.com/fekuna/superfume-sync/pkg/i18n"
	"github.com/fekuna/superfume-sync/pkg/logger"
)

const (
	roleAdminID    = 1
	roleCustomerID = 2
)

type userUseCase struct {
	repo     user.Repository
	remote   user.Gateway
	tokens   secret.Store
	lang     string
	hashCost int
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewUserUseCase(repo user.Repository, remote user.Gateway, tokens secret.Store, lang string, log logger.ZapLogger) user.UseCase {
	return &userUseCase{
		repo:     repo,
		remote:   remote,
		tokens:   tokens,
		lang:     lang,
		hashCost: bcrypt.DefaultCost,
		logger:   log,
		now:      time.Now,
	}
}

// Login tries the backend first. When the backend cannot be used the
// credentials are checked against the hash mirrored by an earlier sign in.
func (uc *userUseCase) Login(ctx context.Context, email, password string) (*dto.Session, error) {
	email = strings.TrimSpace(email)
	if err := validator.Struct(&dto.LoginInput{Email: email, Password: password}); err != nil {
		return nil, err
	}

	resp, err := uc.remote.Login(ctx, remote.LoginRequest{Email: email, Password: password})
	if err != nil {
		if apperr.IsRemote(err) {
			return uc.offlineLogin(ctx, email, password, err)
		}
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalidCredentials, resp.Text())
	}

	u, err := uc.mirror(ctx, resp.Profile(), email, password)
	if err != nil {
		return nil, err
	}
	if err := uc.saveSession(resp.BearerToken(), u); err != nil {
		return nil, err
	}

	uc.logger.Info("signed in", zap.Int64("user_id", u.ID))
	return &dto.Session{
		ID:      uuid.NewString(),
		User:    u,
		Token:   resp.BearerToken(),
		Message: i18n.Localize(uc.lang, "AuthLoginSuccess", nil),
	}, nil
}

func (uc *userUseCase) offlineLogin(ctx context.Context, email, password string, remoteErr error) (*dto.Session, error) {
	u, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		if apperr.IsNetwork(remoteErr) {
			return nil, apperr.ErrNoCachedSession
		}
		// The server answered and nothing is cached to check against.
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidCredentials, remoteErr)
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.ErrInvalidCredentials
	}

	if err := uc.tokens.SaveUserInfo(userInfo(u)); err != nil {
		return nil, fmt.Errorf("save user info: %w", err)
	}

	uc.logger.Warn("signed in offline", zap.Int64("user_id", u.ID), zap.Error(remoteErr))
	return &dto.Session{
		ID:      uuid.NewString(),
		User:    u,
		Offline: true,
		Message: i18n.Localize(uc.lang, "AuthOfflineSession", nil),
	}, nil
}

// Register has no offline fallback: an account must exist on the server.
func (uc *userUseCase) Register(ctx context.Context, input *dto.RegisterInput) (*dto.Session, error) {
	in := *input
	in.FirstName, in.LastName = strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone, in.Address = trimmed(in.Phone), trimmed(in.Address)
	if err := validator.Struct(&in); err != nil {
		return nil, err
	}
	input, email := &in, in.Email

	resp, err := uc.remote.Register(ctx, remote.RegisterRequest{
		Name:     strings.TrimSpace(input.FirstName + " " + input.LastName),
		Email:    email,
		Password: input.Password,
		Rut:      input.Rut,
		Phone:    input.Phone,
		Address:  input.Address,
		Role:     model.RoleCustomer,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if !resp.Success {
		return nil, apperr.Validation("account", resp.Text())
	}

	u, err := uc.mirror(ctx, resp.Profile(), email, input.Password)
	if err != nil {
		return nil, err
	}
	if err := uc.saveSession(resp.BearerToken(), u); err != nil {
		return nil, err
	}

	return &dto.Session{
		ID:      uuid.NewString(),
		User:    u,
		Token:   resp.BearerToken(),
		Message: i18n.Localize(uc.lang, "AuthRegisterSuccess", nil),
	}, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// mirror stores the backend profile together with a hash of the password
// so the same credentials work offline later. Without a profile the local
// row for email is reused; when there is none the returned user is unsaved
// and has no id.
func (uc *userUseCase) mirror(ctx context.Context, profile *remote.UserDTO, email, password string) (*model.User, error) {
	var u *model.User
	if profile != nil && profile.ID != 0 {
		u = fromUserDTO(profile)
		if u.Email == "" {
			u.Email = email
		}
	} else {
		existing, err := uc.repo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			uc.logger.Warn("auth response without profile, nothing mirrored", zap.String("email", email))
			return &model.User{Email: email, Role: model.RoleCustomer}, nil
		}
		u = existing
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = uc.now().UnixMilli()

	if _, err := uc.repo.Upsert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (uc *userUseCase) saveSession(token string, u *model.User) error {
	if token != "" {
		if err := uc.tokens.SaveToken(token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
	}
	// An unsaved user cannot be resolved by Current or used offline later.
	if u.ID == 0 {
		uc.logger.Warn("session kept without user info", zap.String("email", u.Email))
		return nil
	}
	if err := uc.tokens.SaveUserInfo(userInfo(u)); err != nil {
		return fmt.Errorf("save user info: %w", err)
	}
	return nil
}

// Logout forgets the session. Mirrored users stay for offline sign in.
func (uc *userUseCase) Logout(ctx context.Context) error {
	if err := uc.tokens.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns the signed in user, or nil when there is none.
func (uc *userUseCase) Current(ctx context.Context) (*model.User, error) {
	info, ok := uc.tokens.UserInfo()
	if !ok {
		return nil, nil
	}
	if info.UserID != 0 {
		u, err := uc.repo.GetByID(ctx, info.UserID)
		if err != nil || u != nil {
			return u, err
		}
	}
	return uc.repo.GetByEmail(ctx, info.Email)
}

func (uc *userUseCase) UpdateProfile(ctx context.Context, input *dto.UpdateProfileInput) (*model.User, error) {
	in := *input
	in.FirstName, in.LastName = strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	in.Phone, in.Address = trimmed(in.Phone), trimmed(in.Address)
	if err := validator.Struct(&in); err != nil {
		return nil, err
	}
	input = &in

	u, err := uc.Current(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil || u.ID == 0 {
		return nil, apperr.ErrNotAuthenticated
	}

	u.FirstName = input.FirstName
	u.LastName = input.LastName
	u.Phone = input.Phone
	u.Address = input.Address
	u.UpdatedAt = uc.now().UnixMilli()
	if _, err := uc.repo.Upsert(ctx, u); err != nil {
		return nil, err
	}

	_, err = uc.remote.UpdateUser(ctx, u.ID, remote.UpdateUserRequest{
		Nombre:    u.FullName(),
		Correo:    u.Email,
		Telefono:  u.Phone,
		Direccion: u.Address,
	})
	if err != nil {
		return u, fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return u, nil
}

func (uc *userUseCase) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := uc.remote.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		u := fromUserDTO(&users[i])
		if u.ID == 0 || u.Email == "" {
			continue
		}
		if _, err := uc.repo.Upsert(ctx, u); err != nil {
			return nil, err
		}
	}
	return uc.repo.FindAll(ctx)
}

func (uc *userUseCase) WatchUsers(ctx context.Context) (*live.Subscription[[]model.User], error) {
	return uc.repo.WatchAll(ctx)
}

func (uc *userUseCase) ChangeRole(ctx context.Context, userID int64, roleID int) (*model.User, error) {
	if roleID != roleAdminID && roleID != roleCustomerID {
		return nil, apperr.Validation("role", "unknown role")
	}
	d, err := uc.remote.ChangeUserRole(ctx, userID, roleID)
	if err != nil {
		return nil, fmt.Errorf("change role of user %d: %w", userID, err)
	}

	u := fromUserDTO(d)
	if u.ID == 0 {
		u.ID = userID
	}
	if u.Email == "" {
		existing, err := uc.repo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("user %d: %w", userID, apperr.ErrNotFound)
		}
		existing.Role = roleName(roleID, "")
		u = existing
	}
	if _, err := uc.repo.Upsert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (uc *userUseCase) DeleteUser(ctx context.Context, userID int64) error {
	if err := uc.remote.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user %d: %w", userID, err)
	}
	return uc.repo.Delete(ctx, userID)
}

func (uc *userUseCase) Describe(err error) string {
	if err == nil {
		return ""
	}

	var (
		validationErr *apperr.ValidationError
		httpErr       *apperr.HTTPError
	)
	switch {
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return i18n.Localize(uc.lang, "AuthInvalidCredentials", nil)
	case errors.Is(err, apperr.ErrNoCachedSession):
		return i18n.Localize(uc.lang, "AuthNoCachedSession", nil)
	case errors.Is(err, apperr.ErrNotAuthenticated):
		return i18n.Localize(uc.lang, "AuthRequired", nil)
	case errors.Is(err, apperr.ErrBusy):
		return i18n.Localize(uc.lang, "ResourceBusy", nil)
	case errors.Is(err, apperr.ErrNotFound):
		return i18n.Localize(uc.lang, "NotFound", nil)
	case errors.As(err, &validationErr):
		return i18n.Localize(uc.lang, "ValidationFailed", map[string]any{
			"Field":   validationErr.Field,
			"Message": validationErr.Message,
		})
	case apperr.IsNetwork(err):
		return i18n.Localize(uc.lang, "NetworkUnavailable", nil)
	case errors.As(err, &httpErr):
		return i18n.Localize(uc.lang, "ServerRejected", map[string]any{"Message": httpErr.Message})
	case apperr.IsStorage(err):
		return i18n.Localize(uc.lang, "StorageFailure", nil)
	default:
		return i18n.Localize(uc.lang, "UnknownError", nil)
	}
}

func fromUserDTO(d *remote.UserDTO) *model.User {
	first, last := model.SplitName(d.Nombre)
	u := &model.User{
		ID:        d.ID,
		Email:     strings.TrimSpace(d.Correo),
		FirstName: first,
		LastName:  last,
		Phone:     d.Telefono,
		Address:   d.Direccion,
		Role:      model.RoleCustomer,
	}
	if d.Rol != nil {
		u.Role = roleName(d.Rol.ID, d.Rol.Nombre)
	}
	return u
}

func roleName(id int, name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if id == roleAdminID || n == "admin" || n == "administrador" {
		return model.RoleAdmin
	}
	return model.RoleCustomer
}

func userInfo(u *model.User) secret.UserInfo {
	info := secret.UserInfo{
		UserID:   u.ID,
		Email:    u.Email,
		RoleID:   roleCustomerID,
		RoleName: u.Role,
	}
	if u.IsAdmin() {
		info.RoleID = roleAdminID
	}
	return info
}
