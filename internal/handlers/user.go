package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/contacts/internal/metrics"
	"github.com/jjudge-oj/contacts/internal/services"
)

// UserHandler provides the registration, login and profile endpoints.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes on the given router. authMiddleware guards
// every route except register and login.
func UserRouter(r chi.Router, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", handler.Current)
		r.Patch("/", handler.Update)
		r.Post("/logout", handler.Logout)
	})
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=100,bcrypt"`
	Name     string `json:"name" validate:"required,max=100"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=100"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Password *string `json:"password" validate:"omitempty,max=100,bcrypt"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			writeErrors(w, http.StatusBadRequest, map[string][]string{"username": {err.Error()}})
			return
		}
		writeServiceError(w, r, err, "user")
		return
	}

	writeData(w, http.StatusCreated, user)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			metrics.RecordLogin(metrics.ResultFailure)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		metrics.RecordLogin(metrics.ResultError)
		writeServiceError(w, r, err, "user")
		return
	}

	metrics.RecordLogin(metrics.ResultSuccess)
	writeData(w, http.StatusOK, TokenResponse{Token: token})
}

func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeData(w, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.userService.Update(r.Context(), user, services.UpdateUserInput{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.userService.Logout(r.Context(), user); err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	writeData(w, http.StatusOK, true)
}
