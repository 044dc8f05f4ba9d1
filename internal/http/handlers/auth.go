package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/docvault/internal/auth"
	"github.com/geocoder89/docvault/internal/config"
	"github.com/geocoder89/docvault/internal/observability"
	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (auth.RegisterResult, error)
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
}

type AuthHandler struct {
	svc  AuthService
	log  *slog.Logger
	prom *observability.Prom
}

func NewAuthHandler(svc AuthService, log *slog.Logger, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		svc:  svc,
		log:  log,
		prom: prom,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Message    string `json:"message"`
	Token      string `json:"token"`
	Role       string `json:"role"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		h.prom.ObserveAuth("register", "invalid")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := h.svc.Register(cctx, req.Email, req.Password)

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrValidation):
			h.prom.ObserveAuth("register", "invalid")
			RespondBadRequest(ctx, "invalid_request", "Email and password are required", nil)
		case errors.Is(err, auth.ErrEmailTaken):
			h.prom.ObserveAuth("register", "conflict")
			RespondBadRequest(ctx, "email_taken", "A user with this email already exists", nil)
		case errors.Is(err, auth.ErrPersistence):
			h.prom.ObserveAuth("register", "persistence_error")
			h.log.ErrorContext(ctx.Request.Context(), "register: store rejected user", "err", err)
			RespondBadRequest(ctx, "registration_failed", "Could not create user", nil)
		default:
			h.prom.ObserveAuth("register", "error")
			h.log.ErrorContext(ctx.Request.Context(), "register failed", "err", err)
			RespondInternal(ctx, "Could not create user")
		}
		return
	}

	h.prom.ObserveAuth("register", "ok")

	ctx.JSON(http.StatusCreated, RegisterResponse{
		Message: "User created",
		UserID:  res.UserID,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		h.prom.ObserveAuth("login", "invalid")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := h.svc.Login(cctx, req.Email, req.Password)

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrValidation):
			h.prom.ObserveAuth("login", "invalid")
			RespondBadRequest(ctx, "invalid_request", "Email and password are required", nil)
		case errors.Is(err, auth.ErrUserNotFound):
			h.prom.ObserveAuth("login", "not_found")
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.prom.ObserveAuth("login", "unauthorized")
			RespondUnauthorized(ctx, "invalid_credentials", "Incorrect password")
		default:
			h.prom.ObserveAuth("login", "error")
			h.log.ErrorContext(ctx.Request.Context(), "login failed", "err", err)
			RespondInternal(ctx, "Something went wrong")
		}
		return
	}

	h.prom.ObserveAuth("login", "ok")

	ctx.JSON(http.StatusOK, LoginResponse{
		Message:    "Logged in",
		Token:      res.Token,
		Role:       res.Role,
		RedirectTo: res.RedirectTo,
	})
}
