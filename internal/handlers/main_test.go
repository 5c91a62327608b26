package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/contacts/internal/services"
	"github.com/jjudge-oj/contacts/internal/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	t       *testing.T
	mem     *testutil.Memory
	objects *testutil.ObjectStore
	router  http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return buildTestAPI(t, testutil.NewObjectStore())
}

func buildTestAPI(t *testing.T, objects *testutil.ObjectStore) *testAPI {
	t.Helper()
	mem := testutil.NewMemory()
	events := services.NewEvents(&testutil.Publisher{}, "contacts.events")

	userService := services.NewUserService(mem.Users(), bcrypt.MinCost, events)
	contactService := services.NewContactService(mem.Contacts(), events)
	addressService := services.NewAddressService(mem.Addresses(), events)

	var objectStore services.ObjectStore
	if objects != nil {
		objectStore = objects
	}
	exportService := services.NewExportService(mem.Contacts(), mem.Addresses(), objectStore)

	auth := RequireAuth(userService)
	router := chi.NewRouter()
	router.Route("/users", func(r chi.Router) {
		UserRouter(r, userService, auth)
	})
	router.Group(func(r chi.Router) {
		r.Use(auth)
		ContactRouter(r, contactService)
		AddressRouter(r, addressService)
		ExportRouter(r, exportService)
	})

	return &testAPI{t: t, mem: mem, objects: objects, router: router}
}

type response struct {
	Code int
	Body []byte
}

func (r response) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, dst), "body: %s", r.Body)
}

func (r response) errors(t *testing.T) map[string][]string {
	t.Helper()
	var body ErrorResponse
	r.decode(t, &body)
	return body.Errors
}

func (a *testAPI) do(method, path, token string, body any) response {
	a.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return response{Code: rec.Code, Body: rec.Body.Bytes()}
}

// login registers username and returns a fresh token.
func (a *testAPI) login(username string) string {
	a.t.Helper()
	res := a.do(http.MethodPost, "/users/register", "", map[string]string{
		"username": username,
		"password": "secret",
		"name":     "Name " + username,
	})
	require.Equal(a.t, http.StatusCreated, res.Code, "register: %s", res.Body)

	res = a.do(http.MethodPost, "/users/login", "", map[string]string{"username": username, "password": "secret"})
	require.Equal(a.t, http.StatusOK, res.Code, "login: %s", res.Body)

	var body struct {
		Data TokenResponse `json:"data"`
	}
	res.decode(a.t, &body)
	require.NotEmpty(a.t, body.Data.Token)
	return body.Data.Token
}

func (a *testAPI) createContact(token string, body map[string]any) int64 {
	a.t.Helper()
	res := a.do(http.MethodPost, "/contact", token, body)
	require.Equal(a.t, http.StatusCreated, res.Code, "create contact: %s", res.Body)
	var created struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	res.decode(a.t, &created)
	return created.Data.ID
}
