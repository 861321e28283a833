package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Rana-Faraz/authbase/internal/auth"
	"github.com/Rana-Faraz/authbase/internal/avatars"
	"github.com/Rana-Faraz/authbase/internal/common"
	"github.com/Rana-Faraz/authbase/internal/database"
	"github.com/Rana-Faraz/authbase/internal/logging"
	"github.com/Rana-Faraz/authbase/internal/sessions"
	"github.com/Rana-Faraz/authbase/internal/users"
)

// SessionCookieName is the cookie the server sets on sign-up and sign-in and
// reads back on authenticated requests.
const SessionCookieName = "authbase.session_token"

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address string
	logger  logging.Logger
	auth    *auth.Auth
	avatars *avatars.Service
	store   *database.Store
	echo    *echo.Echo
}

func NewHTTPServer(address string, logger logging.Logger, a *auth.Auth, av *avatars.Service, store *database.Store) *HTTPServer {
	s := &HTTPServer{
		address: address,
		logger:  logger,
		auth:    a,
		avatars: av,
		store:   store,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info(c.Request().Context(), "request",
				"method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     a.TrustedOrigins(),
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", s.health)

	g := e.Group("/api/auth")
	g.POST("/sign-up/email", s.signUpEmail)
	g.POST("/sign-in/email", s.signInEmail)
	g.POST("/sign-out", s.signOut)
	g.GET("/get-session", s.getSession)
	g.POST("/send-verification-email", s.sendVerificationEmail)
	g.GET("/verify-email", s.verifyEmail)
	g.GET("/avatar/upload-url", s.avatarUploadURL)
	g.POST("/avatar/confirm", s.avatarConfirm)
	g.GET("/avatar/download-url", s.avatarDownloadURL)

	s.echo = e

	return s
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "http shutdown", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sendVerificationRequest struct {
	Email string `json:"email"`
}

type confirmAvatarRequest struct {
	Key string `json:"key"`
}

func (s *HTTPServer) signUpEmail(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, session, err := s.auth.SignUpEmail(c.Request().Context(), auth.SignUpParams{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorInvalidEmail):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid email address")
		case errors.Is(err, common.ErrorWeakPassword):
			return echo.NewHTTPError(http.StatusBadRequest, "password is too short")
		case errors.Is(err, common.ErrorEmailAlreadyExists):
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	s.setSessionCookie(c, session)

	return c.JSON(http.StatusOK, echo.Map{
		"token": session.Token,
		"user":  userPayload(user),
	})
}

func (s *HTTPServer) signInEmail(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, session, err := s.auth.SignInEmail(c.Request().Context(), auth.SignInParams{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	s.setSessionCookie(c, session)

	return c.JSON(http.StatusOK, echo.Map{
		"token": session.Token,
		"user":  userPayload(user),
	})
}

func (s *HTTPServer) signOut(c echo.Context) error {
	token := sessionToken(c)
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}

	if err := s.auth.SignOut(c.Request().Context(), token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	s.clearSessionCookie(c)

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (s *HTTPServer) getSession(c echo.Context) error {
	user, session, err := s.currentSession(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"session": sessionPayload(session),
		"user":    userPayload(user),
	})
}

func (s *HTTPServer) sendVerificationEmail(c echo.Context) error {
	var req sendVerificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	v, err := s.auth.IssueVerification(c.Request().Context(), req.Email)
	if err != nil {
		// Do not reveal whether the address is registered.
		if errors.Is(err, common.ErrorNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"status": true})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	// No mailer is wired yet, so the verification link is logged for pickup
	// by the operator or a log-scraping dev tool.
	s.logger.Info(c.Request().Context(), "verification issued",
		"identifier", v.Identifier, "url", s.auth.VerificationURL(v))

	return c.JSON(http.StatusOK, echo.Map{"status": true})
}

func (s *HTTPServer) verifyEmail(c echo.Context) error {
	email := c.QueryParam("email")
	token := c.QueryParam("token")
	if email == "" || token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and token are required")
	}

	if err := s.auth.VerifyEmail(c.Request().Context(), email, token); err != nil {
		switch {
		case errors.Is(err, common.ErrorVerificationNotFound):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid verification token")
		case errors.Is(err, common.ErrorVerificationExpired):
			return echo.NewHTTPError(http.StatusBadRequest, "verification token expired")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"status": true})
}

func (s *HTTPServer) avatarUploadURL(c echo.Context) error {
	user, _, err := s.currentSession(c)
	if err != nil {
		return err
	}

	key, url, err := s.avatars.UploadURL(c.Request().Context(), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"key": key, "url": url})
}

func (s *HTTPServer) avatarConfirm(c echo.Context) error {
	user, _, err := s.currentSession(c)
	if err != nil {
		return err
	}

	var req confirmAvatarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.avatars.ConfirmUpload(c.Request().Context(), user.ID, req.Key); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return echo.NewHTTPError(http.StatusForbidden, "key does not belong to this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (s *HTTPServer) avatarDownloadURL(c echo.Context) error {
	user, _, err := s.currentSession(c)
	if err != nil {
		return err
	}

	if user.Image == "" {
		return echo.NewHTTPError(http.StatusNotFound, "no avatar uploaded")
	}

	url, err := s.avatars.DownloadURL(c.Request().Context(), user.Image)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"url": url})
}

func (s *HTTPServer) health(c echo.Context) error {
	if err := s.store.Ping(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unreachable")
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// currentSession resolves the session token on the request and maps auth
// errors to HTTP status codes shared by all authenticated handlers.
func (s *HTTPServer) currentSession(c echo.Context) (*users.User, *sessions.Session, error) {
	token := sessionToken(c)
	if token == "" {
		return nil, nil, echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}

	session, user, err := s.auth.GetSession(c.Request().Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorSessionExpired):
			s.clearSessionCookie(c)
			return nil, nil, echo.NewHTTPError(http.StatusUnauthorized, "session expired")
		case errors.Is(err, common.ErrorUnauthorized):
			return nil, nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
		default:
			return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	return user, session, nil
}

// sessionToken reads the session token from the cookie, falling back to an
// Authorization bearer header for non-browser clients.
func sessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}

	return ""
}

func (s *HTTPServer) setSessionCookie(c echo.Context, session *sessions.Session) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *HTTPServer) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func userPayload(u *users.User) echo.Map {
	return echo.Map{
		"id":            u.ID,
		"name":          u.Name,
		"email":         u.Email,
		"emailVerified": u.EmailVerified,
		"image":         u.Image,
		"createdAt":     u.CreatedAt,
		"updatedAt":     u.UpdatedAt,
	}
}

func sessionPayload(s *sessions.Session) echo.Map {
	return echo.Map{
		"id":        s.ID,
		"userId":    s.UserID,
		"expiresAt": s.ExpiresAt,
		"ipAddress": s.IPAddress,
		"userAgent": s.UserAgent,
	}
}
