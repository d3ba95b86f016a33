package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/dafibh/nexus/nexus-backend/internal/middleware"
	"github.com/dafibh/nexus/nexus-backend/internal/service"
	"github.com/dafibh/nexus/nexus-backend/internal/testutil"
	"github.com/dafibh/nexus/nexus-backend/internal/webhook"
	"github.com/labstack/echo/v4"
)

var errBoom = errors.New("connection reset by peer")

var testWebhookSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("nexus-test-signing-key"))

// setupPrincipal decorates the request context the way the auth middleware does
func setupPrincipal(c echo.Context, principalID string) {
	ctx := context.WithValue(c.Request().Context(), middleware.PrincipalIDKey, principalID)
	c.SetRequest(c.Request().WithContext(ctx))
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	return body.Message
}

// seedWorkspace creates org_1 owned by admin_1 with member_1 as MEMBER and target_1 as a non-member
func seedWorkspace(store *testutil.MemoryStore) {
	owner := "admin_1"
	store.AddUser(&domain.User{ID: "admin_1", Email: "admin@x.com", Name: "Admin"})
	store.AddUser(&domain.User{ID: "member_1", Email: "member@x.com", Name: "Member"})
	store.AddUser(&domain.User{ID: "target_1", Email: "target@x.com", Name: "Target"})
	store.AddWorkspace(&domain.Workspace{ID: "org_1", Name: "Acme", Slug: "acme", OwnerID: &owner})
	store.AddMember("admin_1", "org_1", domain.WorkspaceRoleAdmin)
	store.AddMember("member_1", "org_1", domain.WorkspaceRoleMember)
}

func newTestWorkspaceService(store *testutil.MemoryStore) *service.WorkspaceService {
	return service.NewWorkspaceService(
		store.WorkspaceRepository(),
		store.MemberRepository(),
		store.UserRepository(),
		store.ProjectRepository(),
	)
}

func newTestIdentitySyncService(store *testutil.MemoryStore) *service.IdentitySyncService {
	return service.NewIdentitySyncService(
		store.UserRepository(),
		store.WorkspaceRepository(),
		store.MemberRepository(),
		store.Transactor(),
	)
}

func newTestVerifier(t *testing.T) *webhook.Verifier {
	t.Helper()
	v, err := webhook.NewVerifier(testWebhookSecret)
	if err != nil {
		t.Fatalf("Failed to create verifier: %v", err)
	}
	return v
}

func newTestSchemaValidator(t *testing.T) *webhook.SchemaValidator {
	t.Helper()
	s, err := webhook.NewSchemaValidator()
	if err != nil {
		t.Fatalf("Failed to compile schemas: %v", err)
	}
	return s
}

// signedWebhookRequest builds a POST /webhooks/clerk request carrying valid svix headers
func signedWebhookRequest(v *webhook.Verifier, deliveryID, body string) *http.Request {
	now := time.Now()
	sig, err := v.Sign(deliveryID, now, []byte(body))
	if err != nil {
		panic(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(webhook.HeaderID, deliveryID)
	req.Header.Set(webhook.HeaderTimestamp, strconv.FormatInt(now.Unix(), 10))
	req.Header.Set(webhook.HeaderSignature, sig)
	return req
}

func envelope(eventType, data string) string {
	return `{"type":"` + eventType + `","object":"event","timestamp":1700000000000,"data":` + data + `}`
}
