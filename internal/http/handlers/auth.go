package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/geocoder89/careercounsel/internal/accounts"
	"github.com/geocoder89/careercounsel/internal/auth"
	"github.com/geocoder89/careercounsel/internal/domain/user"
	"github.com/geocoder89/careercounsel/internal/security"
	"github.com/geocoder89/careercounsel/internal/store"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	accounts AccountService
	sessions *auth.Manager
	notifier Notifier
	log      *slog.Logger
}

func NewAuthHandler(accounts AccountService, sessions *auth.Manager, notifier Notifier, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		accounts: accounts,
		sessions: sessions,
		notifier: notifier,
		log:      log,
	}
}

type SignupForm struct {
	Username string `form:"username" binding:"required,max=64"`
	Password string `form:"password" binding:"required,max=72"`
	Role     string `form:"role" binding:"omitempty,oneof=student admin"`
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Role     string `form:"role" binding:"omitempty,oneof=student admin"`
}

func (h *AuthHandler) SignupPage(ctx *gin.Context) {
	renderPage(ctx, h.sessions, "signup", nil)
}

func (h *AuthHandler) Signup(ctx *gin.Context) {
	var form SignupForm

	if msg, ok := BindForm(ctx, &form); !ok {
		flashAndRedirect(ctx, h.sessions, "danger", msg, "/signup")
		return
	}

	role := user.ParseRole(form.Role)

	cctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	acc, err := h.accounts.Create(cctx, form.Username, form.Password, role)
	if errors.Is(err, security.ErrPasswordTooLong) {
		flashAndRedirect(ctx, h.sessions, "danger", "Password must be at most 72 bytes.", "/signup")
		return
	}
	if err != nil {
		// any failed storage write reads as a taken username
		if !errors.Is(err, store.ErrAlreadyExists) {
			h.log.ErrorContext(ctx.Request.Context(), "signup failed", "username", form.Username, "err", err)
		}
		flashAndRedirect(ctx, h.sessions, "danger", "Username already exists.", "/signup")
		return
	}

	h.notifier.Notify(ctx.Request.Context(), acc.Username, "Registered as "+string(acc.Role))

	flashAndRedirect(ctx, h.sessions, "success", acc.Role.Title()+" account created! Please login.", "/login")
}

func (h *AuthHandler) LoginPage(ctx *gin.Context) {
	renderPage(ctx, h.sessions, "login", nil)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var form LoginForm

	if msg, ok := BindForm(ctx, &form); !ok {
		flashAndRedirect(ctx, h.sessions, "danger", msg, "/login")
		return
	}

	role := user.ParseRole(form.Role)

	cctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	acc, err := h.accounts.Login(cctx, form.Username, form.Password, role)
	switch {
	case errors.Is(err, accounts.ErrRoleMismatch):
		flashAndRedirect(ctx, h.sessions, "danger", fmt.Sprintf("This account is not registered as a %s.", role), "/login")
		return
	case errors.Is(err, accounts.ErrInvalidCredentials):
		flashAndRedirect(ctx, h.sessions, "danger", "Invalid username or password.", "/login")
		return
	case err != nil:
		h.log.ErrorContext(ctx.Request.Context(), "login failed", "username", form.Username, "err", err)
		flashAndRedirect(ctx, h.sessions, "danger", "Login is unavailable right now. Please try again.", "/login")
		return
	}

	if err := h.sessions.Login(ctx, acc); err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "session write failed", "err", err)
		RespondInternal(ctx, "Could not create session")
		return
	}

	if acc.IsAdmin {
		ctx.Redirect(http.StatusFound, "/admin-dashboard")
		return
	}
	ctx.Redirect(http.StatusFound, "/home")
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.sessions.Logout(ctx)
	ctx.Redirect(http.StatusFound, "/login")
}
