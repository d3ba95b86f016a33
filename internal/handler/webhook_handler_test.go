package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/dafibh/nexus/nexus-backend/internal/testutil"
	"github.com/dafibh/nexus/nexus-backend/internal/webhook"
	"github.com/labstack/echo/v4"
)

type webhookFixture struct {
	store      *testutil.MemoryStore
	verifier   *webhook.Verifier
	deliveries *testutil.MockDeliveryLog
	publisher  *testutil.MockEventPublisher
	handler    *WebhookHandler
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	store := testutil.NewMemoryStore()
	reconciler := newTestIdentitySyncService(store)
	publisher := testutil.NewMockEventPublisher()
	reconciler.SetEventPublisher(publisher)
	verifier := newTestVerifier(t)
	deliveries := testutil.NewMockDeliveryLog()

	return &webhookFixture{
		store:      store,
		verifier:   verifier,
		deliveries: deliveries,
		publisher:  publisher,
		handler:    NewWebhookHandler(reconciler, verifier, newTestSchemaValidator(t), deliveries),
	}
}

func (f *webhookFixture) deliver(t *testing.T, deliveryID, body string) *httptest.ResponseRecorder {
	t.Helper()
	return f.serve(t, signedWebhookRequest(f.verifier, deliveryID, body))
}

func (f *webhookFixture) serve(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	if err := f.handler.HandleClerk(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	return rec
}

const (
	userCreatedData = `{"id":"user_1","email_addresses":[{"id":"idn_2","email_address":"other@x.com"},{"id":"idn_1","email_address":"ada@x.com"}],"primary_email_address_id":"idn_1","first_name":"Ada","last_name":"Lovelace","image_url":"https://img.example/ada.png"}`
	orgCreatedData  = `{"id":"org_1","name":"Acme","slug":"acme","image_url":null,"created_by":"user_1"}`
)

func TestHandleClerk_UserCreated(t *testing.T) {
	f := newWebhookFixture(t)

	rec := f.deliver(t, "msg_1", envelope(webhook.EventUserCreated, userCreatedData))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	user := f.store.User("user_1")
	if user == nil {
		t.Fatal("Expected user_1 to be stored")
	}
	if user.Email != "ada@x.com" {
		t.Errorf("Expected primary email ada@x.com, got %s", user.Email)
	}
	if user.Name != "Ada Lovelace" {
		t.Errorf("Expected name 'Ada Lovelace', got %q", user.Name)
	}
	if !f.deliveries.Processed["msg_1"] {
		t.Error("Expected delivery msg_1 to be marked processed")
	}
}

func TestHandleClerk_OrganizationCreated_EndToEnd(t *testing.T) {
	f := newWebhookFixture(t)

	if rec := f.deliver(t, "msg_1", envelope(webhook.EventUserCreated, userCreatedData)); rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for user.created, got %d", rec.Code)
	}
	rec := f.deliver(t, "msg_2", envelope(webhook.EventOrganizationCreated, orgCreatedData))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	ws := f.store.Workspace("org_1")
	if ws == nil {
		t.Fatal("Expected workspace org_1 to be stored")
	}
	if ws.OwnerID == nil || *ws.OwnerID != "user_1" {
		t.Errorf("Expected owner user_1, got %v", ws.OwnerID)
	}
	member := f.store.Member("user_1", "org_1")
	if member == nil {
		t.Fatal("Expected creator membership to be stored")
	}
	if member.Role != domain.WorkspaceRoleAdmin {
		t.Errorf("Expected role ADMIN, got %s", member.Role)
	}
}

func TestHandleClerk_OrganizationCreated_UnknownCreator(t *testing.T) {
	f := newWebhookFixture(t)

	rec := f.deliver(t, "msg_1", envelope(webhook.EventOrganizationCreated, orgCreatedData))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg == "" {
		t.Error("Expected the reconciler error as message")
	}
	if f.store.WorkspaceCount() != 0 || f.store.MemberCount() != 0 {
		t.Errorf("Expected no rows after rollback, got %d workspaces and %d members", f.store.WorkspaceCount(), f.store.MemberCount())
	}
	if f.deliveries.Processed["msg_1"] {
		t.Error("Expected failed delivery to stay unmarked")
	}
}

func TestHandleClerk_MembershipLifecycle(t *testing.T) {
	f := newWebhookFixture(t)
	seedWorkspace(f.store)

	created := envelope(webhook.EventMembershipCreated, `{"id":"orgmem_1","role":"org:member","organization":{"id":"org_1"},"public_user_data":{"user_id":"target_1","identifier":"target@x.com"}}`)
	for i, id := range []string{"msg_1", "msg_2"} {
		rec := f.deliver(t, id, created)
		if rec.Code != http.StatusOK {
			t.Fatalf("Delivery %d: expected status 200, got %d: %s", i, rec.Code, rec.Body.String())
		}
	}
	if m := f.store.Member("target_1", "org_1"); m == nil || m.Role != domain.WorkspaceRoleMember {
		t.Fatalf("Expected target_1 as MEMBER, got %+v", m)
	}
	if f.store.MemberCount() != 3 {
		t.Errorf("Expected 3 memberships after duplicate delivery, got %d", f.store.MemberCount())
	}

	updated := envelope(webhook.EventMembershipUpdated, `{"id":"orgmem_1","role":"org:admin","organization":{"id":"org_1"},"public_user_data":{"user_id":"target_1"}}`)
	if rec := f.deliver(t, "msg_3", updated); rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if m := f.store.Member("target_1", "org_1"); m == nil || m.Role != domain.WorkspaceRoleAdmin {
		t.Errorf("Expected target_1 promoted to ADMIN, got %+v", m)
	}

	deleted := envelope(webhook.EventMembershipDeleted, `{"id":"orgmem_1","role":"org:admin","organization":{"id":"org_1"},"public_user_data":{"user_id":"target_1"}}`)
	for i, id := range []string{"msg_4", "msg_5"} {
		rec := f.deliver(t, id, deleted)
		if rec.Code != http.StatusOK {
			t.Fatalf("Delete %d: expected status 200, got %d", i, rec.Code)
		}
	}
	if f.store.Member("target_1", "org_1") != nil {
		t.Error("Expected membership to be removed")
	}

	types := f.publisher.Types()
	if len(types) == 0 || types[len(types)-1] != "member.removed" {
		t.Errorf("Expected last published event member.removed, got %v", types)
	}
}

func TestHandleClerk_InvitationAccepted_ResolvesByEmail(t *testing.T) {
	f := newWebhookFixture(t)
	seedWorkspace(f.store)

	body := envelope(webhook.EventInvitationAccepted, `{"id":"orginv_1","email_address":"target@x.com","organization_id":"org_1","role":"org:member","status":"accepted","public_user_data":null}`)
	rec := f.deliver(t, "msg_1", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if f.store.Member("target_1", "org_1") == nil {
		t.Error("Expected invitation to create a membership for target_1")
	}
}

func TestHandleClerk_DeletesAreIdempotent(t *testing.T) {
	f := newWebhookFixture(t)
	seedWorkspace(f.store)

	for _, tt := range []struct {
		id   string
		body string
	}{
		{"msg_1", envelope(webhook.EventOrganizationDeleted, `{"id":"org_1","object":"organization","deleted":true}`)},
		{"msg_2", envelope(webhook.EventOrganizationDeleted, `{"id":"org_1","object":"organization","deleted":true}`)},
		{"msg_3", envelope(webhook.EventUserDeleted, `{"id":"user_404","object":"user","deleted":true}`)},
	} {
		rec := f.deliver(t, tt.id, tt.body)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d: %s", tt.id, rec.Code, rec.Body.String())
		}
	}
	if f.store.Workspace("org_1") != nil {
		t.Error("Expected org_1 to be deleted")
	}
	if f.store.MemberCount() != 0 {
		t.Errorf("Expected memberships to cascade, got %d", f.store.MemberCount())
	}
}

func TestHandleClerk_UnknownEventIgnored(t *testing.T) {
	f := newWebhookFixture(t)

	rec := f.deliver(t, "msg_1", envelope("session.created", `{"id":"sess_1"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "event ignored" {
		t.Errorf("Expected 'event ignored', got %q", msg)
	}
	if f.store.Writes != 0 {
		t.Errorf("Expected no writes, got %d", f.store.Writes)
	}
}

func TestHandleClerk_DuplicateDeliverySkipped(t *testing.T) {
	f := newWebhookFixture(t)
	f.deliveries.Processed["msg_1"] = true

	rec := f.deliver(t, "msg_1", envelope(webhook.EventUserCreated, userCreatedData))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if f.store.UserCount() != 0 {
		t.Errorf("Expected the store untouched, got %d users", f.store.UserCount())
	}
}

func TestHandleClerk_DeliveryLogFailureStillProcesses(t *testing.T) {
	f := newWebhookFixture(t)
	f.deliveries.SeenErr = errBoom

	rec := f.deliver(t, "msg_1", envelope(webhook.EventUserCreated, userCreatedData))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if f.store.User("user_1") == nil {
		t.Error("Expected user_1 to be stored")
	}
}

func TestHandleClerk_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		req    func(f *webhookFixture) *http.Request
		status int
	}{
		{
			name: "missing headers",
			req: func(f *webhookFixture) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/webhooks/clerk", strings.NewReader(envelope(webhook.EventUserCreated, userCreatedData)))
			},
			status: http.StatusUnauthorized,
		},
		{
			name: "tampered body",
			req: func(f *webhookFixture) *http.Request {
				req := signedWebhookRequest(f.verifier, "msg_1", envelope(webhook.EventUserCreated, userCreatedData))
				req.Body = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(envelope(webhook.EventUserDeleted, `{"id":"user_1"}`))).Body
				return req
			},
			status: http.StatusUnauthorized,
		},
		{
			name: "schema violation",
			req: func(f *webhookFixture) *http.Request {
				return signedWebhookRequest(f.verifier, "msg_1", envelope(webhook.EventUserCreated, `{"email_addresses":[]}`))
			},
			status: http.StatusBadRequest,
		},
		{
			name: "not json",
			req: func(f *webhookFixture) *http.Request {
				return signedWebhookRequest(f.verifier, "msg_1", "not json")
			},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWebhookFixture(t)

			rec := f.serve(t, tt.req(f))

			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if f.store.Writes != 0 {
				t.Errorf("Expected no writes, got %d", f.store.Writes)
			}
		})
	}
}

func TestHandleClerk_PhoneOnlyUserAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)

	rec := f.deliver(t, "msg_1", envelope(webhook.EventUserCreated, `{"id":"user_9","email_addresses":[],"first_name":"Phone"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if msg := decodeMessage(t, rec); msg != "event ignored" {
		t.Errorf("Expected message 'event ignored', got %q", msg)
	}
	if f.store.Writes != 0 {
		t.Errorf("Expected no writes, got %d", f.store.Writes)
	}
	if !f.deliveries.Processed["msg_1"] {
		t.Error("Expected the delivery to be recorded so it is not retried")
	}
}
