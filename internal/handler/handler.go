package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/auth-service/internal/apperror"
	"github.com/Dan9191/auth-service/internal/models"
)

const maxBodyBytes = 1 << 20

// AuthService is the business layer behind the HTTP endpoints
type AuthService interface {
	Register(ctx context.Context, in models.RegisterInput) (*models.PublicUser, error)
	Login(ctx context.Context, in models.LoginInput) (string, error)
}

// Readiness reports whether backing stores are reachable
type Readiness interface {
	Ready() bool
	LastError() string
}

type Handler struct {
	svc   AuthService
	ready Readiness
	log   *logrus.Logger
}

func NewHandler(svc AuthService, ready Readiness, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, ready: ready, log: log}
}

type registerResponse struct {
	Message string             `json:"message"`
	User    *models.PublicUser `json:"user"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if !h.decode(w, r, &in) {
		return
	}

	user, err := h.svc.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{Message: "User registered", User: user})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if !h.decode(w, r, &in) {
		return
	}

	token, err := h.svc.Login(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", Token: token})
}

// Welcome answers the root path
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the auth service"})
}

// Health is a liveness probe
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready is a readiness probe
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.ready == nil || h.ready.Ready() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	h.log.WithField("reason", h.ready.LastError()).Debug("Readiness probe failed")
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
}

// Routes mounts the endpoints both at the root and under /api
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", h.Welcome).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/ready", h.Ready).Methods("GET")

	h.mountAuth(r)
	h.mountAuth(r.PathPrefix("/api").Subrouter())

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "Method not allowed"})
	})
	return r
}

func (h *Handler) mountAuth(r *mux.Router) {
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.log.WithError(err).Debug("Rejected request body")
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return false
	}
	return true
}

// writeError maps service errors to responses. Internal causes are logged, never returned.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.NewInternalError("unexpected error", err)
	}

	if appErr.Kind == apperror.InternalError {
		h.log.WithError(err).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}
	writeJSON(w, appErr.StatusCode(), map[string]string{"message": appErr.Message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
