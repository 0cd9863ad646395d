package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shopzone/storefront/internal/cart"
	"github.com/shopzone/storefront/internal/session"
)

const (
	ctxSession = "session"
	ctxCart    = "cart"

	flashCookie = "sz_flash"
)

// ProfileCookie assigns each browser a stable profile ID on first visit. The
// ID scopes all durable state (token, user, cart) to that browser profile.
func (s *Server) ProfileCookie() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(s.cookies.ProfileName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetCookie(s.cookies.ProfileName, id, int(s.cookies.MaxAge.Seconds()), "/", "", s.cookies.Secure, true)
		}
		c.Set("profileID", id)
		c.Next()
	}
}

// LoadState hydrates the session and cart from the profile store before any
// handler runs. Guards and pages read the hydrated copies from the request
// context; they never mutate session state themselves.
func (s *Server) LoadState() gin.HandlerFunc {
	return func(c *gin.Context) {
		profileID := ProfileID(c)
		c.Set(ctxSession, s.sessions.Hydrate(c.Request.Context(), profileID))
		c.Set(ctxCart, s.carts.Load(c.Request.Context(), profileID))
		c.Next()
	}
}

// RequireAuth renders a placeholder while the session is indeterminate,
// redirects unauthenticated visitors to the login page, and otherwise lets
// the request through.
func (s *Server) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := Session(c)
		if sess.Loading() {
			s.renderLoading(c)
			c.Abort()
			return
		}
		if !sess.IsAuthenticated() {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin sends unauthenticated visitors to login and authenticated
// non-admins home.
func (s *Server) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := Session(c)
		if sess.Loading() {
			s.renderLoading(c)
			c.Abort()
			return
		}
		if !sess.IsAuthenticated() {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if !sess.IsAdmin() {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

func ProfileID(c *gin.Context) string {
	id, _ := c.Get("profileID")
	v, _ := id.(string)
	return v
}

func Session(c *gin.Context) *session.Session {
	v, _ := c.Get(ctxSession)
	sess, ok := v.(*session.Session)
	if !ok {
		return &session.Session{}
	}
	return sess
}

func Cart(c *gin.Context) *cart.Cart {
	v, _ := c.Get(ctxCart)
	crt, _ := v.(*cart.Cart)
	return crt
}

// Flash messages ride a short-lived cookie across one redirect.

func (s *Server) setFlash(c *gin.Context, kind, message string) {
	c.SetCookie(flashCookie, url.QueryEscape(kind+"|"+message), 30, "/", "", s.cookies.Secure, true)
}

func (s *Server) flashSuccess(c *gin.Context, message string) { s.setFlash(c, "success", message) }
func (s *Server) flashError(c *gin.Context, message string)   { s.setFlash(c, "error", message) }

type flash struct {
	Kind    string
	Message string
}

func (s *Server) takeFlash(c *gin.Context) *flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", s.cookies.Secure, true)
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(decoded, "|")
	if !ok {
		return nil
	}
	return &flash{Kind: kind, Message: message}
}
