// Package session holds the authenticated identity for one browser profile:
// the backend token plus a cached user record, hydrated from the profile
// store before each request is handled.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shopzone/storefront/internal/api"
	"github.com/shopzone/storefront/internal/model"
	"github.com/shopzone/storefront/internal/store"
)

// Permissions checked by HasPermission. Admins hold every permission;
// managers hold exactly these three; regular users hold none.
const (
	PermViewAllOrders     = "view-all-orders"
	PermUpdateOrderStatus = "update-order-status"
	PermViewProducts      = "view-products"
)

var managerPermissions = map[string]bool{
	PermViewAllOrders:     true,
	PermUpdateOrderStatus: true,
	PermViewProducts:      true,
}

type Manager struct {
	client *api.Client
	store  store.Store
	log    *slog.Logger
}

func NewManager(client *api.Client, st store.Store, log *slog.Logger) *Manager {
	return &Manager{client: client, store: st, log: log}
}

// Session is the hydrated state for one profile. The zero value is
// indeterminate: Loading reports true and the guards must not redirect.
type Session struct {
	profileID string
	token     string
	user      *model.User
	hydrated  bool
}

func (s *Session) ProfileID() string { return s.profileID }
func (s *Session) Token() string     { return s.token }
func (s *Session) User() *model.User { return s.user }

// Loading reports whether hydration has not completed; until it has, the
// session is neither authenticated nor unauthenticated.
func (s *Session) Loading() bool { return !s.hydrated }

func (s *Session) IsAuthenticated() bool { return s.hydrated && s.user != nil }

func (s *Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.user.Role == model.RoleAdmin
}

func (s *Session) IsManager() bool {
	return s.IsAuthenticated() && s.user.Role == model.RoleManager
}

func (s *Session) HasPermission(perm string) bool {
	switch {
	case s.IsAdmin():
		return true
	case s.IsManager():
		return managerPermissions[perm]
	default:
		return false
	}
}

// Hydrate loads the stored token and user record for the profile. A missing
// pair yields an unauthenticated session; a store failure yields an
// indeterminate one so callers don't bounce the shopper to login over a
// transient storage error.
func (m *Manager) Hydrate(ctx context.Context, profileID string) *Session {
	sess := &Session{profileID: profileID}

	token, err := m.store.Get(ctx, profileID, store.KeyToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sess.hydrated = true
			return sess
		}
		m.log.Error("hydrate session: read token", "error", err)
		return sess
	}

	userData, err := m.store.Get(ctx, profileID, store.KeyUser)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sess.hydrated = true
			return sess
		}
		m.log.Error("hydrate session: read user", "error", err)
		return sess
	}

	var user model.User
	if err := json.Unmarshal(userData, &user); err != nil {
		m.log.Error("hydrate session: decode user", "error", err)
		_ = m.clear(ctx, profileID)
		sess.hydrated = true
		return sess
	}

	if tokenExpired(string(token)) {
		m.log.Info("stored token expired, dropping session", "profile_id", profileID)
		_ = m.clear(ctx, profileID)
		sess.hydrated = true
		return sess
	}

	sess.token = string(token)
	sess.user = &user
	sess.hydrated = true
	return sess
}

// tokenExpired checks the JWT exp claim without verifying the signature;
// verification is the backend's job. Tokens that don't parse are left for
// the backend to reject.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// Result reports the outcome of a login or registration attempt. Expected
// failures (bad credentials, taken email) come back as OK=false with a
// display-ready message, not as an error.
type Result struct {
	OK      bool
	Message string
	User    *model.User
}

func (m *Manager) Login(ctx context.Context, profileID string, req api.LoginRequest) Result {
	resp, err := m.client.Login(ctx, req)
	if err != nil {
		m.log.Warn("login failed", "email", req.Email, "error", err)
		return Result{Message: api.Message(err, "Login failed")}
	}
	return m.establish(ctx, profileID, resp)
}

func (m *Manager) Register(ctx context.Context, profileID string, req api.RegisterRequest) Result {
	resp, err := m.client.Register(ctx, req)
	if err != nil {
		m.log.Warn("registration failed", "email", req.Email, "error", err)
		return Result{Message: api.Message(err, "Registration failed")}
	}
	return m.establish(ctx, profileID, resp)
}

func (m *Manager) establish(ctx context.Context, profileID string, resp *api.AuthResponse) Result {
	user := &model.User{ID: resp.ID, Name: resp.Name, Email: resp.Email, Role: resp.Role}

	userData, err := json.Marshal(user)
	if err != nil {
		return Result{Message: "Login failed"}
	}
	if err := m.store.Set(ctx, profileID, store.KeyToken, []byte(resp.Token)); err != nil {
		m.log.Error("persist token", "error", err)
		return Result{Message: "Login failed"}
	}
	if err := m.store.Set(ctx, profileID, store.KeyUser, userData); err != nil {
		m.log.Error("persist user", "error", err)
		return Result{Message: "Login failed"}
	}
	return Result{OK: true, User: user}
}

// Logout clears the token and user record. The cart is deliberately left
// alone; it belongs to the browser profile, not the account.
func (m *Manager) Logout(ctx context.Context, profileID string) error {
	if err := m.clear(ctx, profileID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (m *Manager) clear(ctx context.Context, profileID string) error {
	if err := m.store.Delete(ctx, profileID, store.KeyToken); err != nil {
		return err
	}
	return m.store.Delete(ctx, profileID, store.KeyUser)
}
