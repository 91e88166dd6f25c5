// Package secret is the boundary to the platform's secure key-value store
// holding the session token.
package secret

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type UserInfo struct {
	UserID   int64
	Email    string
	RoleID   int
	RoleName string
}

func (u UserInfo) IsAdmin() bool {
	return u.RoleID == 1
}

type Store interface {
	Token() (string, bool)
	SaveToken(token string) error
	UserInfo() (UserInfo, bool)
	SaveUserInfo(info UserInfo) error
	Clear() error
}

// MemoryStore keeps secrets for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	info  *UserInfo
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *MemoryStore) SaveToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) UserInfo() (UserInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil {
		return UserInfo{}, false
	}
	return *s.info, true
}

func (s *MemoryStore) SaveUserInfo(info UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = &info
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.info = nil
	return nil
}

// Usable reports whether token is worth sending. Opaque tokens always are;
// a JWT is usable until its exp claim. The signature is not checked here,
// that is the server's job.
func Usable(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return now.Before(claims.ExpiresAt.Time)
}
