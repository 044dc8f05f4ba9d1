package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/docvault/internal/auth"
	"github.com/geocoder89/docvault/internal/config"
	"github.com/geocoder89/docvault/internal/domain/user"
	apphttp "github.com/geocoder89/docvault/internal/http"
	"github.com/geocoder89/docvault/internal/observability"
	"github.com/geocoder89/docvault/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig(authRequired bool) config.Config {
	return config.Config{
		Env:                "test",
		StoreDriver:        config.StoreMemory,
		JWTSecret:          "test-secret-key",
		JWTTTL:             time.Hour,
		BcryptCost:         bcrypt.MinCost,
		AuthRequired:       authRequired,
		CORSAllowedOrigins: []string{"*"},
		MaxBodyBytes:       1 << 20,
	}
}

type testServer struct {
	router *gin.Engine
	users  apphttp.UserStore
	hasher *security.Hasher
	tokens *auth.Manager
}

func newTestServer(t *testing.T, authRequired bool) *testServer {
	t.Helper()

	cfg := testConfig(authRequired)

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	require.NoError(t, err)

	hasher := security.NewHasher(cfg.BcryptCost)
	users, documents := apphttp.MemoryStores()

	router := apphttp.NewRouter(observability.Discard(), cfg, apphttp.Deps{
		Users:     users,
		Documents: documents,
		Tokens:    tokens,
		Hasher:    hasher,
	})

	return &testServer{router: router, users: users, hasher: hasher, tokens: tokens}
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body=%s", w.Body.String())
	return out
}

type loginBody struct {
	Message    string `json:"message"`
	Token      string `json:"token"`
	Role       string `json:"role"`
	RedirectTo string `json:"redirectTo"`
}

type documentBody struct {
	Message  string `json:"message"`
	Document struct {
		ID       int64   `json:"id"`
		Title    string  `json:"title"`
		Status   string  `json:"status"`
		UserID   int64   `json:"userId"`
		FilePath string  `json:"filePath"`
		Desc     *string `json:"description"`
	} `json:"document"`
}

func TestRouter_DocumentLifecycle(t *testing.T) {
	s := newTestServer(t, false)

	// register
	w := s.do(http.MethodPost, "/register", `{"email":"a@b.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	reg := decode[struct {
		Message string `json:"message"`
		UserID  int64  `json:"userId"`
	}](t, w)
	assert.Equal(t, "User created", reg.Message)
	require.Positive(t, reg.UserID)

	// duplicate email
	w = s.do(http.MethodPost, "/register", `{"email":"a@b.com","password":"other"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// login
	w = s.do(http.MethodPost, "/login", `{"email":"a@b.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	login := decode[loginBody](t, w)
	assert.Equal(t, "user", login.Role)
	assert.Empty(t, login.RedirectTo)
	require.NotEmpty(t, login.Token)

	claims, err := s.tokens.VerifyAccessToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)

	// wrong password and unknown user
	w = s.do(http.MethodPost, "/login", `{"email":"a@b.com","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "token\"")

	w = s.do(http.MethodPost, "/login", `{"email":"ghost@b.com","password":"pw123"}`, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// create
	body := `{"title":"Lease","filePath":"/files/lease.pdf","userId":` + jsonInt(reg.UserID) + `}`
	w = s.do(http.MethodPost, "/documents", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[documentBody](t, w)
	assert.Equal(t, "pending", created.Document.Status)
	assert.Nil(t, created.Document.Desc)
	docPath := "/documents/" + jsonInt(created.Document.ID)

	// update
	w = s.do(http.MethodPut, docPath, `{"status":"approved"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "approved", decode[documentBody](t, w).Document.Status)

	// read back with owner
	w = s.do(http.MethodGet, docPath, "", "")
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[struct {
		Status string `json:"status"`
		User   struct {
			Email string `json:"email"`
		} `json:"user"`
	}](t, w)
	assert.Equal(t, "approved", got.Status)
	assert.Equal(t, "a@b.com", got.User.Email)
	assert.NotContains(t, w.Body.String(), "$2a$")

	// list
	w = s.do(http.MethodGet, "/documents", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	// delete twice
	w = s.do(http.MethodDelete, docPath, "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, docPath, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/users", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, strings.ToLower(w.Body.String()), "password")
}

func TestRouter_RegisterLongPassword(t *testing.T) {
	s := newTestServer(t, false)
	body := `{"email":"long@b.com","password":"` + strings.Repeat("p", 80) + `"}`

	w := s.do(http.MethodPost, "/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/login", body, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode[loginBody](t, w).Token)
}

func TestRouter_CreateDocumentWithUnknownOwner(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(http.MethodPost, "/documents", `{"title":"t","filePath":"/f","userId":999}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_MissingFields(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(http.MethodPost, "/register", `{"email":"a@b.com"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	e := decode[map[string]any](t, w)
	assert.Equal(t, "Missing required fields: password", e["error"])
	assert.NotEmpty(t, e["requestId"])
}

func TestRouter_AuthRequired(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(http.MethodGet, "/documents", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/documents", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// register and login stay open
	w = s.do(http.MethodPost, "/register", `{"email":"a@b.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/login", `{"email":"a@b.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[loginBody](t, w).Token

	w = s.do(http.MethodGet, "/documents", "", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AdminPanel(t *testing.T) {
	s := newTestServer(t, false)

	hash, err := s.hasher.Hash("adminpassword")
	require.NoError(t, err)

	_, err = s.users.Create(t.Context(), "admin@example.com", hash, user.RoleAdmin)
	require.NoError(t, err)

	w := s.do(http.MethodPost, "/register", `{"email":"a@b.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/login", `{"email":"a@b.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	userToken := decode[loginBody](t, w).Token

	w = s.do(http.MethodPost, "/login", `{"email":"admin@example.com","password":"adminpassword"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	adminLogin := decode[loginBody](t, w)
	assert.Equal(t, "admin", adminLogin.Role)
	assert.Equal(t, "/admin", adminLogin.RedirectTo)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/admin", "", "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/admin", "", userToken).Code)

	w = s.do(http.MethodGet, "/admin", "", adminLogin.Token)
	require.Equal(t, http.StatusOK, w.Code)

	panel := decode[struct {
		Users     int `json:"users"`
		Documents int `json:"documents"`
	}](t, w)
	assert.Equal(t, 2, panel.Users)
	assert.Equal(t, 0, panel.Documents)
}

func TestRouter_RejectsNonJSONWrites(t *testing.T) {
	s := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("email=a@b.com&password=pw123"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decode[map[string]any](t, w)["code"])

	n, err := s.users.Count(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t, false)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/readyz", "", "").Code)

	s.do(http.MethodPost, "/login", `{"email":"x@y.z","password":"p"}`, "")

	w := s.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "docvault_auth_attempts_total")
	assert.Contains(t, w.Body.String(), "docvault_http_requests_total")
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
