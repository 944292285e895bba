package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"communityhub/internal/delivery/http/helpers"
	"communityhub/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RegisterRequest is the request body for POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (s RegisterRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name is required")
	}
	email := strings.TrimSpace(s.Email)
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginRequest is the request body for POST /auth/login. Password may be omitted for
// accounts that were never registered with one.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	if strings.TrimSpace(l.Email) == "" {
		return []string{"email is required"}
	}
	return nil
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      *domain.User `json:"user"`
}

// AuthSuccessResponse is the success response envelope for POST /auth/register (201) and POST /auth/login (200).
type AuthSuccessResponse struct {
	Data  AuthResponse      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// StatusResponse is a bare acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

// AuthController handles registration and the login session.
type AuthController struct {
	Logger      *slog.Logger
	Identity    domain.IdentityStore
	Tokens      domain.TokenIssuer
	TokenExpiry time.Duration
}

func NewAuthController(logger *slog.Logger, identity domain.IdentityStore, tokens domain.TokenIssuer, expiry time.Duration) *AuthController {
	return &AuthController{
		Logger:      logger,
		Identity:    identity,
		Tokens:      tokens,
		TokenExpiry: expiry,
	}
}

// Register godoc
// @Summary Register a new member
// @Description Creates the account, logs it in, and returns a JWT. Email must be unique.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.RegisterRequest true "Registration data"
// @Success 201 {object} controllers.AuthSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/register [post]
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Identity.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.writeSession(w, r, http.StatusCreated, user)
}

// Login godoc
// @Summary Log in
// @Description Logs in by email and returns a JWT. The previous session, if any, ends.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.LoginRequest true "Login credentials"
// @Success 200 {object} controllers.AuthSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Identity.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.writeSession(w, r, http.StatusOK, user)
}

func (c *AuthController) writeSession(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	token, err := c.Tokens.Issue(user.ID, user.Email, c.TokenExpiry)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, status, AuthResponse{Token: token, TokenType: "Bearer", User: user})
}

// Logout godoc
// @Summary Log out
// @Description Ends the current session. Every token issued so far stops working.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data.status: logged out"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := c.Identity.Logout(r.Context()); err != nil {
		// The in-memory session is already gone; only the persisted copy may linger.
		c.Logger.WarnContext(r.Context(), "logout: clear stored user", "err", err)
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "logged out"})
}
