package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/contacts/internal/logging"
	"github.com/jjudge-oj/contacts/internal/services"
	"github.com/jjudge-oj/contacts/internal/store"
	"github.com/jjudge-oj/contacts/types"
)

const maxBodyBytes = 1 << 20

type contextKey string

const contextUserKey contextKey = "user"

// UserFromContext returns the user bound by RequireAuth.
func UserFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	if !ok || user.ID < 1 {
		return types.User{}, false
	}
	return user, true
}

func withUser(ctx context.Context, user types.User) context.Context {
	return context.WithValue(ctx, contextUserKey, user)
}

// DataResponse is the success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// ErrorResponse maps a field name, or "message" for request level errors,
// to its messages.
type ErrorResponse struct {
	Errors map[string][]string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, DataResponse{Data: data})
}

func writeErrors(w http.ResponseWriter, status int, errs map[string][]string) {
	writeJSON(w, status, ErrorResponse{Errors: errs})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeErrors(w, status, map[string][]string{"message": {message}})
}

// writeServiceError maps service and store errors to responses. resource
// names the entity in the not-found message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, resource+" not found")
	case errors.Is(err, services.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, services.ErrPasswordTooLong):
		writeErrors(w, http.StatusBadRequest, map[string][]string{"password": {err.Error()}})
	case errors.Is(err, services.ErrPageOutOfRange):
		writeErrors(w, http.StatusBadRequest, map[string][]string{"page": {pageMessage}})
	case errors.Is(err, services.ErrExportsDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logging.FromContext(r.Context()).WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// decodeAndValidate decodes the body into dst and runs struct validation,
// writing a 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !decodeJSON(w, r, dst) {
		return false
	}
	if errs := validateStruct(dst); errs != nil {
		writeErrors(w, http.StatusBadRequest, errs)
		return false
	}
	return true
}

// parseID reads a positive integer path parameter. Anything else is
// reported like an absent resource.
func parseID(r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

var pageMessage = "The page field must be an integer between 1 and " + strconv.Itoa(services.MaxPage) + "."

func parsePagination(r *http.Request) (page, size int, errs map[string][]string) {
	page = 1
	size = services.DefaultPageSize
	errs = map[string][]string{}

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > services.MaxPage {
			errs["page"] = []string{pageMessage}
		}
		page = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("size")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > services.MaxPageSize {
			errs["size"] = []string{"The size field must be an integer between 1 and " + strconv.Itoa(services.MaxPageSize) + "."}
		}
		size = v
	}

	if len(errs) > 0 {
		return 0, 0, errs
	}
	return page, size, nil
}
