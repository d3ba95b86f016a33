package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/dafibh/nexus/nexus-backend/internal/middleware"
	"github.com/dafibh/nexus/nexus-backend/internal/testutil"
	"github.com/dafibh/nexus/nexus-backend/internal/webhook"
	"github.com/dafibh/nexus/nexus-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenValidator maps raw tokens to subjects
type tokenValidator map[string]string

func (v tokenValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	subject, ok := v[token]
	if !ok {
		return nil, errors.New("token is invalid")
	}
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: subject},
		CustomClaims:     &middleware.CustomClaims{},
	}, nil
}

type testServer struct {
	e        *echo.Echo
	store    *testutil.MemoryStore
	verifier *webhook.Verifier
}

func newTestServer(t *testing.T, rateLimiter *middleware.RateLimiter) *testServer {
	t.Helper()
	store := testutil.NewMemoryStore()
	hub := websocket.NewHub()

	workspaceService := newTestWorkspaceService(store)
	workspaceService.SetEventPublisher(hub)
	reconciler := newTestIdentitySyncService(store)
	reconciler.SetEventPublisher(hub)

	auth := middleware.NewAuthMiddlewareWithValidator(tokenValidator{
		"admin-token":  "admin_1",
		"member-token": "member_1",
		"ada-token":    "user_1",
	})
	verifier := newTestVerifier(t)

	if rateLimiter == nil {
		rateLimiter = middleware.NewRateLimiter()
	}
	t.Cleanup(rateLimiter.Stop)

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	RegisterRoutes(e, auth, rateLimiter,
		NewHealthHandler(mockPinger{}),
		NewWorkspaceHandler(workspaceService),
		NewWebhookHandler(reconciler, verifier, newTestSchemaValidator(t), testutil.NewMockDeliveryLog()),
		NewWebSocketHandler(hub, websocket.NewAuthorizer(auth, workspaceService), []string{"http://localhost:5173"}),
		NewOpenAPIHandler("https://api.nexus.example.com/", "test"),
	)

	return &testServer{e: e, store: store, verifier: verifier}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestRoutes_AccessGuard(t *testing.T) {
	s := newTestServer(t, nil)
	seedWorkspace(s.store)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"no token", httptest.NewRequest(http.MethodGet, "/workspaces", nil)},
		{"invalid token", authed(httptest.NewRequest(http.MethodGet, "/workspaces", nil), "forged")},
		{"add member without token", httptest.NewRequest(http.MethodPost, "/workspaces/members", strings.NewReader(`{}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
		})
	}
}

func TestRoutes_ListWorkspaces(t *testing.T) {
	s := newTestServer(t, nil)
	seedWorkspace(s.store)

	rec := s.do(authed(httptest.NewRequest(http.MethodGet, "/workspaces", nil), "member-token"))

	require.Equal(t, http.StatusOK, rec.Code)
	var body WorkspacesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Workspaces, 1)
	assert.Equal(t, "org_1", body.Workspaces[0].ID)
}

func TestRoutes_AddMember_EndToEnd(t *testing.T) {
	s := newTestServer(t, nil)
	seedWorkspace(s.store)

	req := httptest.NewRequest(http.MethodPost, "/workspaces/members",
		strings.NewReader(`{"email":"target@x.com","role":"ADMIN","workspaceId":"org_1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := s.do(authed(req, "admin-token"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	member := s.store.Member("target_1", "org_1")
	require.NotNil(t, member)
	assert.Equal(t, domain.WorkspaceRoleAdmin, member.Role)
}

func TestRoutes_AddMember_MemberCallerRejected(t *testing.T) {
	s := newTestServer(t, nil)
	seedWorkspace(s.store)
	writes := s.store.Writes

	req := httptest.NewRequest(http.MethodPost, "/workspaces/members",
		strings.NewReader(`{"email":"target@x.com","role":"MEMBER","workspaceId":"org_1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := s.do(authed(req, "member-token"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, writes, s.store.Writes)
	assert.Nil(t, s.store.Member("target_1", "org_1"))
}

func TestRoutes_WebhookOrganizationCreated_EndToEnd(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(signedWebhookRequest(s.verifier, "msg_1", envelope(webhook.EventUserCreated, userCreatedData)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(signedWebhookRequest(s.verifier, "msg_2", envelope(webhook.EventOrganizationCreated, orgCreatedData)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NotNil(t, s.store.Workspace("org_1"))
	member := s.store.Member("user_1", "org_1")
	require.NotNil(t, member)
	assert.Equal(t, domain.WorkspaceRoleAdmin, member.Role)

	// The creator now sees the workspace through the API
	rec = s.do(authed(httptest.NewRequest(http.MethodGet, "/workspaces", nil), "ada-token"))
	require.Equal(t, http.StatusOK, rec.Code)
	var body WorkspacesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Workspaces, 1)
	assert.Equal(t, "org_1", body.Workspaces[0].ID)
	require.NotNil(t, body.Workspaces[0].Owner)
	assert.Equal(t, "user_1", body.Workspaces[0].Owner.ID)
}

func TestRoutes_RateLimit(t *testing.T) {
	s := newTestServer(t, middleware.NewRateLimiterWithConfig(60, 1))
	seedWorkspace(s.store)

	first := s.do(authed(httptest.NewRequest(http.MethodGet, "/workspaces", nil), "member-token"))
	second := s.do(authed(httptest.NewRequest(http.MethodGet, "/workspaces", nil), "member-token"))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), `"message"`)

	// Other principals keep their own bucket
	other := s.do(authed(httptest.NewRequest(http.MethodGet, "/workspaces", nil), "admin-token"))
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestRoutes_Health(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_OpenAPI(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var spec OpenAPI3Spec
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.Equal(t, "3.0.3", spec.OpenAPI)
	assert.Contains(t, spec.Paths, "/workspaces/members")
	assert.Contains(t, spec.Paths, "/webhooks/clerk")
	require.Len(t, spec.Servers, 1)
	assert.Equal(t, "https://api.nexus.example.com", spec.Servers[0].URL)

	// Body parameters become an OpenAPI 3 requestBody
	post := spec.Paths["/workspaces/members"].(map[string]interface{})["post"].(map[string]interface{})
	assert.NotContains(t, post, "parameters")
	body := post["requestBody"].(map[string]interface{})
	schema := body["content"].(map[string]interface{})["application/json"].(map[string]interface{})["schema"].(map[string]interface{})
	assert.Equal(t, "#/components/schemas/handler.AddMemberRequest", schema["$ref"])

	success := post["responses"].(map[string]interface{})["200"].(map[string]interface{})
	assert.Contains(t, success, "content")
}

func TestRoutes_UnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Not Found"}`, rec.Body.String())
}
