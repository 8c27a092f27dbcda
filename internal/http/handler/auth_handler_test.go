package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/launchbase/accountd/internal/config"
	"github.com/launchbase/accountd/internal/domain"
	httptransport "github.com/launchbase/accountd/internal/http"
	"github.com/launchbase/accountd/internal/http/handler"
	"github.com/launchbase/accountd/internal/http/middleware"
	"github.com/launchbase/accountd/internal/service"
	"github.com/launchbase/accountd/internal/token"
)

const testAdminKey = "test-admin-key"

func newTestRouter(t *testing.T) (*gin.Engine, *fakeUserRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newFakeUserRepo()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	issuer := token.NewIssuer("test-secret", 2*time.Hour)
	logger := zap.NewNop()

	authService := service.NewAuthService(repo, issuer, node, logger)
	adminService := service.NewAdminService(repo, node, logger)

	cfg := config.Config{
		ServiceName:        "accountd-test",
		AdminAPIKey:        testAdminKey,
		CORSAllowedOrigins: []string{"*"},
		CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowedHeaders: []string{"Authorization", "Content-Type", "X-Admin-Key"},
	}

	router := httptransport.NewRouter(
		cfg,
		handler.NewAuthHandler(authService),
		handler.NewAdminHandler(adminService),
		&middleware.Auth{Verifier: authService},
		nil,
	)
	return router, repo
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHelloEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/hello", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Hello, I'm your backend", body["message"])
}

func TestSignupEndpoint(t *testing.T) {
	router, repo := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/signup", `{"email":"A@B.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, true, body["success"])
	require.Equal(t, "a@b.com", body["email"])

	stored, err := repo.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.NotContains(t, rec.Body.String(), stored.PasswordHash)

	// Duplicate signup conflicts regardless of case or padding.
	rec = doJSON(t, router, http.MethodPost, "/signup", `{"email":" a@b.COM ","password":"other"}`, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	// Missing fields are rejected before touching the store.
	rec = doJSON(t, router, http.MethodPost, "/signup", `{"email":"","password":""}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/signup", `not json`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	router, repo := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/signup", `{"email":"A@B.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Trailing space on the email normalizes away.
	rec = doJSON(t, router, http.MethodPost, "/login", `{"email":"a@b.com ","password":"secret1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Msg     string `json:"msg"`
		Token   string `json:"token"`
		User    struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.NotEmpty(t, body.Token)
	require.Equal(t, "a@b.com", body.User.Email)

	stored, err := repo.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.NotContains(t, rec.Body.String(), stored.PasswordHash)

	// Wrong password and unknown email produce identical response shapes.
	wrongPassword := doJSON(t, router, http.MethodPost, "/login", `{"email":"a@b.com","password":"wrong"}`, nil)
	unknownEmail := doJSON(t, router, http.MethodPost, "/login", `{"email":"nobody@b.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	require.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestPrivateEndpointRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/private", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/private", "", map[string]string{"Authorization": "Bearer garbage"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/signup", `{"email":"p@q.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	login := doJSON(t, router, http.MethodPost, "/login", `{"email":"p@q.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusOK, login.Code)

	var loginBody struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &loginBody))

	rec = doJSON(t, router, http.MethodGet, "/private", "", map[string]string{"Authorization": "Bearer " + loginBody.Token})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Msg  string `json:"msg"`
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "This is a protected route", body.Msg)
	require.Equal(t, "p@q.com", body.User.Email)
}

func TestPrivateEndpointRejectsExpiredToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/signup", `{"email":"x@y.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	expired := token.NewIssuer("test-secret", -time.Minute)
	stale, err := expired.Issue(1, "x@y.com")
	require.NoError(t, err)

	rec = doJSON(t, router, http.MethodGet, "/private", "", map[string]string{"Authorization": "Bearer " + stale})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminEndpointsGatedByKey(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/admin/users", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/admin/users", "", map[string]string{"X-Admin-Key": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	adminHeaders := map[string]string{"X-Admin-Key": testAdminKey}

	rec = doJSON(t, router, http.MethodPost, "/admin/users", `{"email":"admin-made@q.com","password":"secret1"}`, adminHeaders)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotContains(t, rec.Body.String(), "password_hash")

	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodGet, "/admin/users", "", adminHeaders)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/admin/users/"+itoa(created.ID), `{"is_active":false}`, adminHeaders)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/admin/users/"+itoa(created.ID), "", adminHeaders)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/admin/users/"+itoa(created.ID), "", adminHeaders)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

// fakeUserRepo mirrors the Postgres uniqueness contract in memory.
type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byEmail[user.Email]; exists {
		return domain.User{}, domain.ErrDuplicateEmail
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	f.byEmail[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]domain.User, 0, len(f.byEmail))
	for _, user := range f.byEmail {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	if offset >= len(users) {
		return nil, nil
	}
	users = users[offset:]
	if limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byEmail)), nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var existingEmail string
	found := false
	for email, existing := range f.byEmail {
		if existing.ID == user.ID {
			existingEmail = email
			found = true
			break
		}
	}
	if !found {
		return domain.User{}, domain.ErrUserNotFound
	}
	if other, exists := f.byEmail[user.Email]; exists && other.ID != user.ID {
		return domain.User{}, domain.ErrDuplicateEmail
	}
	delete(f.byEmail, existingEmail)
	user.UpdatedAt = time.Now()
	f.byEmail[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, user := range f.byEmail {
		if user.ID == id {
			delete(f.byEmail, email)
			return nil
		}
	}
	return domain.ErrUserNotFound
}
