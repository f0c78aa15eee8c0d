package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/assessment-api/internal/config"
	"github.com/yukikurage/assessment-api/internal/database"
	"github.com/yukikurage/assessment-api/internal/dto"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(t *testing.T, loginPerMinute uint) *gin.Engine {
	t.Helper()

	log := zap.NewNop()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1}, log)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, log))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	cfg := &config.Config{
		Server:    config.ServerConfig{GinMode: gin.TestMode, SessionSecret: "test-session-secret"},
		Auth:      config.AuthConfig{JWTSecret: "test-jwt-secret", AccessTokenTTL: time.Hour},
		RateLimit: config.RateLimitConfig{LoginPerMinute: loginPerMinute},
	}
	r, err := Setup(cfg, db, log)
	require.NoError(t, err)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, url, token string, payload interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// signupAndLogin registers a user and returns its bearer token and personal organization id.
func signupAndLogin(t *testing.T, r *gin.Engine, email, name string) (string, uint64) {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": email, "name": name, "password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = doJSON(t, r, http.MethodGet, "/api/organizations", login.AccessToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var orgs struct {
		Organizations []dto.OrganizationWithRolesDTO `json:"organizations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orgs))
	require.Len(t, orgs.Organizations, 1)

	return login.AccessToken, orgs.Organizations[0].ID
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestHealth(t *testing.T) {
	r := setupTestRouter(t, 10)

	w := doJSON(t, r, http.MethodGet, "/health", "", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestProtectedRoutesRequireAuthentication(t *testing.T) {
	r := setupTestRouter(t, 10)

	w := doJSON(t, r, http.MethodGet, "/api/templates", "", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/templates", "not-a-token", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestForeignTemplateIsForbiddenNotMissing(t *testing.T) {
	r := setupTestRouter(t, 50)

	aliceToken, aliceOrg := signupAndLogin(t, r, "alice@example.com", "Alice")
	bobToken, bobOrg := signupAndLogin(t, r, "bob@example.com", "Bob")

	// alice belongs to one organization, so it is inferred
	w := doJSON(t, r, http.MethodPost, "/api/templates", aliceToken, map[string]string{"name": "Quarterly review"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var template struct {
		ID             uint64 `json:"id"`
		OrganizationID uint64 `json:"organization_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &template))
	require.Equal(t, aliceOrg, template.OrganizationID)

	templateURL := fmt.Sprintf("/api/templates/%d", template.ID)

	w = doJSON(t, r, http.MethodGet, templateURL, aliceToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// bob claims alice's organization
	w = doJSON(t, r, http.MethodGet, templateURL, bobToken, nil, map[string]string{
		"X-Org-Id": fmt.Sprint(aliceOrg),
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "FORBIDDEN", errorCode(t, w))

	// bob acts from his own organization, which has no link to the template
	w = doJSON(t, r, http.MethodGet, templateURL, bobToken, nil, map[string]string{
		"X-Org-Id": fmt.Sprint(bobOrg),
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/templates/999999", bobToken, nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestLinkedTemplateBecomesReadable(t *testing.T) {
	r := setupTestRouter(t, 50)

	aliceToken, _ := signupAndLogin(t, r, "alice@example.com", "Alice")
	bobToken, bobOrg := signupAndLogin(t, r, "bob@example.com", "Bob")

	w := doJSON(t, r, http.MethodPost, "/api/templates", aliceToken, map[string]string{"name": "Shared review"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var template struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &template))

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/templates/%d/links", template.ID), aliceToken, map[string]interface{}{
		"target_organization_id": bobOrg,
		"level":                  "USE",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/templates/%d", template.ID), bobToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// USE does not allow editing
	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/templates/%d", template.ID), bobToken, map[string]string{"name": "Hijacked"}, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTemplateRoutesInferOwningOrganization(t *testing.T) {
	r := setupTestRouter(t, 50)

	aliceToken, aliceOrg := signupAndLogin(t, r, "alice@example.com", "Alice")
	bobToken, _ := signupAndLogin(t, r, "bob@example.com", "Bob")

	w := doJSON(t, r, http.MethodPost, "/api/templates", aliceToken, map[string]string{"name": "Team health"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var template struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &template))
	templateURL := fmt.Sprintf("/api/templates/%d", template.ID)

	for _, token := range []string{aliceToken, bobToken} {
		w = doJSON(t, r, http.MethodPost, "/api/organizations", token, map[string]string{"name": "Side project"}, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	// two memberships and no organization key: the template's owner is used
	w = doJSON(t, r, http.MethodGet, templateURL, aliceToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got struct {
		OrganizationID uint64 `json:"organization_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, aliceOrg, got.OrganizationID)

	// the inferred organization is still checked against the caller's memberships
	w = doJSON(t, r, http.MethodGet, templateURL, bobToken, nil, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "FORBIDDEN", errorCode(t, w))

	// nothing to infer from a missing template
	w = doJSON(t, r, http.MethodGet, "/api/templates/999999", aliceToken, nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "INVALID_INPUT", errorCode(t, w))
}

func TestInvalidOrganizationHeader(t *testing.T) {
	r := setupTestRouter(t, 50)

	token, _ := signupAndLogin(t, r, "alice@example.com", "Alice")

	w := doJSON(t, r, http.MethodGet, "/api/templates", token, nil, map[string]string{"X-Org-Id": "abc"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "INVALID_INPUT", errorCode(t, w))
}

func TestLoginIsRateLimited(t *testing.T) {
	r := setupTestRouter(t, 2)

	credentials := map[string]string{"email": "nobody@example.com", "password": "supersecret"}
	for i := 0; i < 2; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", credentials, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", credentials, nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "TOO_MANY_REQUESTS", errorCode(t, w))
}
