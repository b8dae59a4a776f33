package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"primetrade-server/internal/models"
	"primetrade-server/internal/security"
	"primetrade-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	testJWTSecret     = "handler-test-secret-with-32-bytes-min"
	testAdminEmail    = "root@example.com"
	testAdminPassword = "root-password"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	codec  *security.TokenCodec
	users  *memUserRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	users := &memUserRepo{}
	hasher := security.NewPasswordHasher("pepper", bcrypt.MinCost)
	codec, err := security.NewTokenCodec([]byte(testJWTSecret), "HS256", time.Hour)
	require.NoError(t, err)

	authSvc := service.NewAuthService(users, hasher, codec, nil, logger)
	_, err = authSvc.SeedAdmin(context.Background(), testAdminEmail, testAdminPassword)
	require.NoError(t, err)

	h := NewHandler(
		authSvc,
		service.NewAccessGuard(users, codec, logger),
		service.NewUserService(users, hasher, nil, logger),
		service.NewItemService(newMemItemRepo(), logger),
		service.NewTaskService(newMemTaskRepo(), logger),
		logger,
	)

	router := gin.New()
	router.RedirectTrailingSlash = true
	h.RegisterRoutes(router)
	return &testServer{t: t, router: router, codec: codec, users: users}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(email, password string) *httptest.ResponseRecorder {
	s.t.Helper()
	form := url.Values{"username": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) token(email, password string) string {
	s.t.Helper()
	w := s.login(email, password)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var tok models.AccessToken
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &tok))
	return tok.AccessToken
}

// signup registers a user and returns its access token.
func (s *testServer) signup(email string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": email, "password": "secret-pw"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return s.token(email, "secret-pw")
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func assertUnauthorized(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"code":"UNAUTHORIZED","detail":"Could not validate credentials"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = s.do(http.MethodHead, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": "Alice@Example.com", "password": "pw", "full_name": "Alice"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[models.MessageResponse](t, w)
	assert.Equal(t, "user created", resp.Msg)
	assert.NotEmpty(t, resp.ID)

	t.Run("duplicate differing only in case", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": "alice@example.COM", "password": "other"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"code":"EMAIL_ALREADY_REGISTERED","detail":"Email already registered"}`, w.Body.String())
	})

	t.Run("missing password", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": "bob@example.com"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decode[models.ErrorResponse](t, w)
		assert.Equal(t, models.ErrCodeValidation, resp.Code)
		require.Len(t, resp.Fields, 1)
		assert.Equal(t, "password", resp.Fields[0].Field)
	})

	t.Run("invalid email", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": "not-an-email", "password": "pw"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/register", "", `{"email":`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, models.ErrCodeValidation, decode[models.ErrorResponse](t, w).Code)
	})
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.signup("carol@example.com")

	tok := s.token("CAROL@example.com", "secret-pw")
	claims, err := s.codec.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", claims.Subject)

	w := s.login("carol@example.com", "secret-pw")
	assert.Equal(t, "bearer", decode[models.AccessToken](t, w).TokenType)

	wrongPassword := s.login("carol@example.com", "nope")
	unknownUser := s.login("nobody@example.com", "nope")
	assertUnauthorized(t, wrongPassword)
	assertUnauthorized(t, unknownUser)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String(), "Failures are indistinguishable")

	form := url.Values{"username": {"carol@example.com"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	missing := httptest.NewRecorder()
	s.router.ServeHTTP(missing, req)
	assert.Equal(t, http.StatusUnprocessableEntity, missing.Code)
}

func TestBearerAuthentication(t *testing.T) {
	s := newTestServer(t)
	tok := s.signup("dave@example.com")

	w := s.do(http.MethodGet, "/api/v1/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[models.Identity](t, w)
	assert.Equal(t, "dave@example.com", me.Email)
	assert.Equal(t, models.RoleUser, me.Role)

	expired, err := s.codec.EncodeWithTTL(models.TokenClaims{Subject: "dave@example.com", Role: models.RoleUser}, -time.Minute)
	require.NoError(t, err)
	otherCodec, err := security.NewTokenCodec([]byte("a-completely-different-secret-value"), "HS256", time.Hour)
	require.NoError(t, err)
	forged, err := otherCodec.Encode(models.TokenClaims{Subject: "dave@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	ghost, err := s.codec.Encode(models.TokenClaims{Subject: "ghost@example.com", Role: models.RoleUser})
	require.NoError(t, err)

	cases := map[string]func(*http.Request){
		"missing header": func(r *http.Request) {},
		"wrong scheme":   func(r *http.Request) { r.Header.Set("Authorization", "Basic "+tok) },
		"empty token":    func(r *http.Request) { r.Header.Set("Authorization", "Bearer ") },
		"garbage":        func(r *http.Request) { r.Header.Set("Authorization", "Bearer not.a.jwt") },
		"expired":        func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) },
		"bad signature":  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+forged) },
		"unknown user":   func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+ghost) },
	}
	for name, prepare := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			prepare(req)
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)
			assertUnauthorized(t, w)
		})
	}
}

func TestDeactivatedUserIsRejected(t *testing.T) {
	s := newTestServer(t)
	userTok := s.signup("erin@example.com")
	adminTok := s.token(testAdminEmail, testAdminPassword)

	me := decode[models.Identity](t, s.do(http.MethodGet, "/api/v1/auth/me", userTok, nil))
	w := s.do(http.MethodPut, "/api/v1/admin/users/"+me.ID.String(), adminTok, gin.H{"is_active": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assertUnauthorized(t, s.do(http.MethodGet, "/api/v1/auth/me", userTok, nil))
	assertUnauthorized(t, s.login("erin@example.com", "secret-pw"))
}

func TestDemotedAdminLosesAccess(t *testing.T) {
	s := newTestServer(t)
	rootTok := s.token(testAdminEmail, testAdminPassword)
	tok := s.signup("frank@example.com")
	me := decode[models.Identity](t, s.do(http.MethodGet, "/api/v1/auth/me", tok, nil))

	w := s.do(http.MethodGet, "/api/v1/admin/users", tok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"code":"FORBIDDEN","detail":"Admin privileges required"}`, w.Body.String())

	w = s.do(http.MethodPut, "/api/v1/admin/users/"+me.ID.String(), rootTok, gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/admin/users", tok, nil).Code)

	w = s.do(http.MethodPut, "/api/v1/admin/users/"+me.ID.String(), rootTok, gin.H{"role": "user"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/admin/users", tok, nil).Code,
		"The same token no longer grants admin access")
}

func TestAdminUserListing(t *testing.T) {
	s := newTestServer(t)
	s.signup("gina@example.com")
	rootTok := s.token(testAdminEmail, testAdminPassword)

	w := s.do(http.MethodGet, "/api/v1/admin/users?limit=1", rootTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.UserPage](t, w)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, int64(2), page.Meta.Total)
	assert.NotContains(t, w.Body.String(), "hashed_password")

	root := decode[models.Identity](t, s.do(http.MethodGet, "/api/v1/auth/me", rootTok, nil))
	w = s.do(http.MethodPut, "/api/v1/admin/users/"+root.ID.String(), rootTok, gin.H{"role": "user"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "Admins cannot demote themselves")

	w = s.do(http.MethodPut, "/api/v1/admin/users/not-a-uuid", rootTok, gin.H{"role": "user"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, query := range []string{"q=gina", "sort=title_asc", "status=open"} {
		w = s.do(http.MethodGet, "/api/v1/admin/users?"+query, rootTok, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, query)
	}
}

func TestPageOverflowIsReportedOnPage(t *testing.T) {
	s := newTestServer(t)
	tok := s.signup("ivy@example.com")

	w := s.do(http.MethodGet, "/api/v1/items/?page=461168601842738792", tok, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[models.ErrorResponse](t, w)
	require.NotEmpty(t, body.Fields)
	assert.Equal(t, "page", body.Fields[0].Field)

	w = s.do(http.MethodGet, "/api/v1/items/?page=9223372036854775807&limit=100", tok, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "Must not wrap round to a small skip")
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)
	tok := s.signup("hank@example.com")

	w := s.do(http.MethodGet, "/api/v1/profile/", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[models.User](t, w).FullName)

	w = s.do(http.MethodPut, "/api/v1/profile/", tok, gin.H{"full_name": "Hank Hill", "password": "new-secret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode[models.User](t, w)
	require.NotNil(t, user.FullName)
	assert.Equal(t, "Hank Hill", *user.FullName)

	assertUnauthorized(t, s.login("hank@example.com", "secret-pw"))
	s.token("hank@example.com", "new-secret")

	w = s.do(http.MethodPut, "/api/v1/profile/", tok, gin.H{"full_name": "  "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[models.User](t, w).FullName, "Blank name clears it")

	w = s.do(http.MethodGet, "/api/v1/profile", tok, nil)
	assert.Equal(t, http.StatusMovedPermanently, w.Code, "Trailing slash redirect")
}

func TestItemAccessMatrix(t *testing.T) {
	s := newTestServer(t)
	ownerTok := s.signup("owner@example.com")
	otherTok := s.signup("other@example.com")
	adminTok := s.token(testAdminEmail, testAdminPassword)

	w := s.do(http.MethodPost, "/api/v1/items/", ownerTok, gin.H{"title": "Notebook", "description": "spiral"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[models.Item](t, w)
	path := "/api/v1/items/" + item.ID.String()

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, ownerTok, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, adminTok, nil).Code)

	w = s.do(http.MethodGet, path, otherTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "Existence is not revealed")
	assert.JSONEq(t, `{"code":"NOT_FOUND","detail":"Item not found"}`, w.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, path, otherTok, gin.H{"title": "x"}).Code)

	w = s.do(http.MethodPut, path, ownerTok, gin.H{"title": "Sketchbook"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.Item](t, w)
	assert.Equal(t, "Sketchbook", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "spiral", *updated.Description)

	w = s.do(http.MethodPut, path, ownerTok, gin.H{"title": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodDelete, path, ownerTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"code":"FORBIDDEN","detail":"Admin privileges required"}`, w.Body.String())

	w = s.do(http.MethodDelete, "/api/v1/items/00000000-0000-0000-0000-000000000000", ownerTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "Role check precedes the lookup")

	w = s.do(http.MethodDelete, path, adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"msg":"deleted"}`, w.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, ownerTok, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, adminTok, nil).Code)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/items/42", ownerTok, nil).Code)
	assertUnauthorized(t, s.do(http.MethodGet, path, "", nil))
}

func TestTaskAccessMatrix(t *testing.T) {
	s := newTestServer(t)
	ownerTok := s.signup("owner@example.com")
	otherTok := s.signup("other@example.com")
	adminTok := s.token(testAdminEmail, testAdminPassword)

	w := s.do(http.MethodPost, "/api/v1/tasks/", ownerTok, gin.H{"title": "Write report"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decode[models.Task](t, w)
	assert.Equal(t, models.TaskStatusOpen, task.Status)
	path := "/api/v1/tasks/" + task.ID.String()

	w = s.do(http.MethodPost, "/api/v1/tasks/", ownerTok, gin.H{"title": "x", "status": "someday"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPut, path, adminTok, gin.H{"status": "in_progress"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TaskStatusInProgress, decode[models.Task](t, w).Status)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, otherTok, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, otherTok, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, adminTok, nil).Code, "Task delete is owner-only")

	w = s.do(http.MethodDelete, path, ownerTok, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, ownerTok, nil).Code)
}

func TestListPaginationAndFilters(t *testing.T) {
	s := newTestServer(t)
	tok := s.signup("lister@example.com")
	otherTok := s.signup("stranger@example.com")
	adminTok := s.token(testAdminEmail, testAdminPassword)

	for _, title := range []string{"alpha foo", "beta", "gamma FOO", "100% sure"} {
		require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/items/", tok, gin.H{"title": title}).Code)
	}
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/items/", otherTok, gin.H{"title": "foo elsewhere"}).Code)

	w := s.do(http.MethodGet, "/api/v1/items/?limit=2", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.ItemPage](t, w)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, models.PageMeta{Skip: 0, Page: 1, Limit: 2, Total: 4}, page.Meta)
	assert.Equal(t, "100% sure", page.Data[0].Title, "Newest first by default")

	page = decode[models.ItemPage](t, s.do(http.MethodGet, "/api/v1/items/?page=2&limit=3", tok, nil))
	assert.Len(t, page.Data, 1)
	assert.Equal(t, models.PageMeta{Skip: 3, Page: 2, Limit: 3, Total: 4}, page.Meta)

	page = decode[models.ItemPage](t, s.do(http.MethodGet, "/api/v1/items/?skip=50", tok, nil))
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(4), page.Meta.Total, "Total stays the filtered count past the end")
	assert.Contains(t, s.do(http.MethodGet, "/api/v1/items/?skip=50", tok, nil).Body.String(), `"data":[]`)

	page = decode[models.ItemPage](t, s.do(http.MethodGet, "/api/v1/items/?q=foo&sort=title_asc", tok, nil))
	require.Len(t, page.Data, 2)
	assert.Equal(t, "alpha foo", page.Data[0].Title)
	assert.Equal(t, "gamma FOO", page.Data[1].Title)

	page = decode[models.ItemPage](t, s.do(http.MethodGet, "/api/v1/items/?q=foo", adminTok, nil))
	assert.Equal(t, int64(3), page.Meta.Total, "Admin sees every owner")

	page = decode[models.ItemPage](t, s.do(http.MethodGet, "/api/v1/items/?q="+url.QueryEscape("%"), tok, nil))
	assert.Equal(t, int64(1), page.Meta.Total)

	for name, query := range map[string]string{
		"skip and page":   "skip=0&page=1",
		"negative skip":   "skip=-1",
		"zero page":       "page=0",
		"zero limit":      "limit=0",
		"limit too large": "limit=101",
		"not a number":    "limit=ten",
		"unknown sort":    "sort=random",
		"status on items": "status=open",
		"page overflows":  "page=461168601842738792",
	} {
		t.Run(name, func(t *testing.T) {
			w := s.do(http.MethodGet, "/api/v1/items/?"+query, tok, nil)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		})
	}
}

func TestTaskStatusFilter(t *testing.T) {
	s := newTestServer(t)
	tok := s.signup("worker@example.com")

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/tasks/", tok, gin.H{"title": "a"}).Code)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/tasks/", tok, gin.H{"title": "b", "status": "done"}).Code)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/tasks/", tok, gin.H{"title": "c", "status": "done"}).Code)

	page := decode[models.TaskPage](t, s.do(http.MethodGet, "/api/v1/tasks/?status=done&limit=1", tok, nil))
	assert.Len(t, page.Data, 1)
	assert.Equal(t, int64(2), page.Meta.Total)

	w := s.do(http.MethodGet, "/api/v1/tasks/?status=blocked", tok, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
