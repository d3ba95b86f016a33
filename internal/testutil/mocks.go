package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/dafibh/nexus/nexus-backend/internal/websocket"
	"github.com/google/uuid"
)

type memberKey struct {
	userID      string
	workspaceID string
}

// storeData is the state of a MemoryStore. It is cloned for every transaction.
type storeData struct {
	users      map[string]*domain.User
	workspaces map[string]*domain.Workspace
	members    map[memberKey]*domain.WorkspaceMember
	projects   map[string][]*domain.Project
}

func newStoreData() *storeData {
	return &storeData{
		users:      make(map[string]*domain.User),
		workspaces: make(map[string]*domain.Workspace),
		members:    make(map[memberKey]*domain.WorkspaceMember),
		projects:   make(map[string][]*domain.Project),
	}
}

func (d *storeData) clone() *storeData {
	c := newStoreData()
	for k, v := range d.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range d.workspaces {
		w := *v
		c.workspaces[k] = &w
	}
	for k, v := range d.members {
		m := *v
		c.members[k] = &m
	}
	for k, v := range d.projects {
		c.projects[k] = v
	}
	return c
}

// MemoryStore is an in-memory stand-in for the relational store.
// It enforces the unique keys, foreign keys and cascades of the real schema.
type MemoryStore struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *storeData

	// Fault injection: when set, the matching write fails with this error
	UserUpsertErr      error
	WorkspaceUpsertErr error
	MemberUpsertErr    error
	// ReadErr makes every read fail
	ReadErr error

	// Writes counts successful write statements, including those later rolled back
	Writes int
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newStoreData()}
}

// AddUser seeds a user (helper for tests)
func (s *MemoryStore) AddUser(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.data.users[user.ID] = &u
}

// AddWorkspace seeds a workspace (helper for tests)
func (s *MemoryStore) AddWorkspace(workspace *domain.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := *workspace
	s.data.workspaces[workspace.ID] = &w
}

// AddMember seeds a membership without FK checks (helper for tests)
func (s *MemoryStore) AddMember(userID, workspaceID string, role domain.WorkspaceRole) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.data.members[memberKey{userID, workspaceID}] = &domain.WorkspaceMember{
		ID:          uuid.New(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AddProject seeds a project tree under a workspace (helper for tests)
func (s *MemoryStore) AddProject(project *domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.projects[project.WorkspaceID] = append(s.data.projects[project.WorkspaceID], project)
}

// User returns a copy of the stored user, or nil
func (s *MemoryStore) User(id string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.data.users[id]; ok {
		c := *u
		return &c
	}
	return nil
}

// Workspace returns a copy of the stored workspace, or nil
func (s *MemoryStore) Workspace(id string) *domain.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.data.workspaces[id]; ok {
		c := *w
		return &c
	}
	return nil
}

// Member returns a copy of the stored membership, or nil
func (s *MemoryStore) Member(userID, workspaceID string) *domain.WorkspaceMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.data.members[memberKey{userID, workspaceID}]; ok {
		c := *m
		return &c
	}
	return nil
}

// UserCount returns the number of stored users
func (s *MemoryStore) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.users)
}

// WorkspaceCount returns the number of stored workspaces
func (s *MemoryStore) WorkspaceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.workspaces)
}

// MemberCount returns the number of stored memberships
func (s *MemoryStore) MemberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.members)
}

// UserRepository returns a domain.UserRepository over the store
func (s *MemoryStore) UserRepository() *MockUserRepository {
	return &MockUserRepository{store: s, data: func() *storeData { return s.data }}
}

// WorkspaceRepository returns a domain.WorkspaceRepository over the store
func (s *MemoryStore) WorkspaceRepository() *MockWorkspaceRepository {
	return &MockWorkspaceRepository{store: s, data: func() *storeData { return s.data }}
}

// MemberRepository returns a domain.WorkspaceMemberRepository over the store
func (s *MemoryStore) MemberRepository() *MockWorkspaceMemberRepository {
	return &MockWorkspaceMemberRepository{store: s, data: func() *storeData { return s.data }}
}

// ProjectRepository returns a domain.ProjectRepository over the store
func (s *MemoryStore) ProjectRepository() *MockProjectRepository {
	return &MockProjectRepository{store: s}
}

// Transactor returns a domain.WorkspaceTransactor over the store
func (s *MemoryStore) Transactor() *MockTransactor {
	return &MockTransactor{store: s}
}

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	store *MemoryStore
	data  func() *storeData
}

// GetByID retrieves a user by ID
func (r *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.ReadErr != nil {
		return nil, r.store.ReadErr
	}
	if u, ok := r.data().users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by exact email
func (r *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.ReadErr != nil {
		return nil, r.store.ReadErr
	}
	for _, u := range r.data().users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Upsert inserts or updates a user keyed by ID
func (r *MockUserRepository) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.UserUpsertErr != nil {
		return nil, r.store.UserUpsertErr
	}
	data := r.data()
	for _, u := range data.users {
		if u.ID != user.ID && u.Email == user.Email {
			return nil, fmt.Errorf("%w: users_email_key", domain.ErrAlreadyExists)
		}
	}
	now := time.Now()
	stored, ok := data.users[user.ID]
	if !ok {
		stored = &domain.User{ID: user.ID, CreatedAt: now}
		data.users[user.ID] = stored
	}
	stored.Email = user.Email
	stored.Name = user.Name
	stored.ImageURL = user.ImageURL
	stored.UpdatedAt = now
	r.store.Writes++
	c := *stored
	return &c, nil
}

// Delete removes a user and cascades to memberships; owned workspaces lose their owner
func (r *MockUserRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	data := r.data()
	if _, ok := data.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(data.users, id)
	for k := range data.members {
		if k.userID == id {
			delete(data.members, k)
		}
	}
	for _, w := range data.workspaces {
		if w.OwnerID != nil && *w.OwnerID == id {
			w.OwnerID = nil
		}
	}
	r.store.Writes++
	return nil
}

// MockWorkspaceRepository is a mock implementation of domain.WorkspaceRepository
type MockWorkspaceRepository struct {
	store *MemoryStore
	data  func() *storeData
}

// GetByID retrieves a workspace by ID
func (r *MockWorkspaceRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.ReadErr != nil {
		return nil, r.store.ReadErr
	}
	if w, ok := r.data().workspaces[id]; ok {
		c := *w
		return &c, nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// ListByMember returns the workspaces the user belongs to, ordered by creation
func (r *MockWorkspaceRepository) ListByMember(ctx context.Context, userID string) ([]*domain.Workspace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.ReadErr != nil {
		return nil, r.store.ReadErr
	}
	data := r.data()
	result := make([]*domain.Workspace, 0)
	for k := range data.members {
		if k.userID != userID {
			continue
		}
		if w, ok := data.workspaces[k.workspaceID]; ok {
			c := *w
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Upsert inserts a workspace or refreshes name, slug and image; owner is set on insert only
func (r *MockWorkspaceRepository) Upsert(ctx context.Context, workspace *domain.Workspace) (*domain.Workspace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.WorkspaceUpsertErr != nil {
		return nil, r.store.WorkspaceUpsertErr
	}
	data := r.data()
	if workspace.OwnerID != nil {
		if _, ok := data.users[*workspace.OwnerID]; !ok {
			return nil, fmt.Errorf("%w: workspaces_owner_id_fkey", domain.ErrReferenceNotFound)
		}
	}
	for _, w := range data.workspaces {
		if w.ID != workspace.ID && w.Slug == workspace.Slug {
			return nil, fmt.Errorf("%w: workspaces_slug_key", domain.ErrAlreadyExists)
		}
	}
	now := time.Now()
	stored, ok := data.workspaces[workspace.ID]
	if !ok {
		stored = &domain.Workspace{ID: workspace.ID, OwnerID: workspace.OwnerID, CreatedAt: now}
		data.workspaces[workspace.ID] = stored
	}
	stored.Name = workspace.Name
	stored.Slug = workspace.Slug
	stored.ImageURL = workspace.ImageURL
	stored.UpdatedAt = now
	r.store.Writes++
	c := *stored
	return &c, nil
}

// Update changes name, slug and image of an existing workspace
func (r *MockWorkspaceRepository) Update(ctx context.Context, workspace *domain.Workspace) (*domain.Workspace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.data().workspaces[workspace.ID]
	if !ok {
		return nil, domain.ErrWorkspaceNotFound
	}
	stored.Name = workspace.Name
	stored.Slug = workspace.Slug
	stored.ImageURL = workspace.ImageURL
	stored.UpdatedAt = time.Now()
	r.store.Writes++
	c := *stored
	return &c, nil
}

// Delete removes a workspace and cascades to memberships and projects
func (r *MockWorkspaceRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	data := r.data()
	if _, ok := data.workspaces[id]; !ok {
		return domain.ErrWorkspaceNotFound
	}
	delete(data.workspaces, id)
	delete(data.projects, id)
	for k := range data.members {
		if k.workspaceID == id {
			delete(data.members, k)
		}
	}
	r.store.Writes++
	return nil
}

// MockWorkspaceMemberRepository is a mock implementation of domain.WorkspaceMemberRepository
type MockWorkspaceMemberRepository struct {
	store *MemoryStore
	data  func() *storeData
}

// Get retrieves a membership by (userID, workspaceID)
func (r *MockWorkspaceMemberRepository) Get(ctx context.Context, userID, workspaceID string) (*domain.WorkspaceMember, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.ReadErr != nil {
		return nil, r.store.ReadErr
	}
	if m, ok := r.data().members[memberKey{userID, workspaceID}]; ok {
		c := *m
		return &c, nil
	}
	return nil, domain.ErrMemberNotFound
}

// ListByWorkspace returns the workspace's members with their users
func (r *MockWorkspaceMemberRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.WorkspaceMember, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.ReadErr != nil {
		return nil, r.store.ReadErr
	}
	data := r.data()
	result := make([]*domain.WorkspaceMember, 0)
	for k, m := range data.members {
		if k.workspaceID != workspaceID {
			continue
		}
		c := *m
		if u, ok := data.users[k.userID]; ok {
			uc := *u
			c.User = &uc
		}
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

// Upsert inserts or updates the (UserID, WorkspaceID) row; a nil Message keeps the stored one
func (r *MockWorkspaceMemberRepository) Upsert(ctx context.Context, member *domain.WorkspaceMember) (*domain.WorkspaceMember, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.MemberUpsertErr != nil {
		return nil, r.store.MemberUpsertErr
	}
	data := r.data()
	if _, ok := data.users[member.UserID]; !ok {
		return nil, fmt.Errorf("%w: workspace_members_user_id_fkey", domain.ErrReferenceNotFound)
	}
	if _, ok := data.workspaces[member.WorkspaceID]; !ok {
		return nil, fmt.Errorf("%w: workspace_members_workspace_id_fkey", domain.ErrReferenceNotFound)
	}
	now := time.Now()
	key := memberKey{member.UserID, member.WorkspaceID}
	stored, ok := data.members[key]
	if !ok {
		id := member.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		stored = &domain.WorkspaceMember{ID: id, UserID: member.UserID, WorkspaceID: member.WorkspaceID, CreatedAt: now}
		data.members[key] = stored
	}
	stored.Role = member.Role
	if member.Message != nil {
		msg := *member.Message
		stored.Message = &msg
	}
	stored.UpdatedAt = now
	r.store.Writes++
	c := *stored
	return &c, nil
}

// Delete removes a membership
func (r *MockWorkspaceMemberRepository) Delete(ctx context.Context, userID, workspaceID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	data := r.data()
	key := memberKey{userID, workspaceID}
	if _, ok := data.members[key]; !ok {
		return domain.ErrMemberNotFound
	}
	delete(data.members, key)
	r.store.Writes++
	return nil
}

// MockProjectRepository is a mock implementation of domain.ProjectRepository
type MockProjectRepository struct {
	store *MemoryStore
}

// ListByWorkspace returns the seeded project trees of a workspace
func (r *MockProjectRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.ReadErr != nil {
		return nil, r.store.ReadErr
	}
	projects := r.store.data.projects[workspaceID]
	if projects == nil {
		return []*domain.Project{}, nil
	}
	return projects, nil
}

// MockTransactor stages writes on a copy of the store and commits them only when fn succeeds
type MockTransactor struct {
	store *MemoryStore
	// Rollbacks counts transactions that were discarded
	Rollbacks int
}

type mockTxRepositories struct {
	workspaces *MockWorkspaceRepository
	members    *MockWorkspaceMemberRepository
}

func (r mockTxRepositories) Workspaces() domain.WorkspaceRepository { return r.workspaces }
func (r mockTxRepositories) Members() domain.WorkspaceMemberRepository { return r.members }

// WithTx runs fn against a staged copy; transactions are serialized
func (t *MockTransactor) WithTx(ctx context.Context, fn func(repos domain.WorkspaceTxRepositories) error) error {
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	t.store.mu.Lock()
	staged := t.store.data.clone()
	t.store.mu.Unlock()

	stagedData := func() *storeData { return staged }
	repos := mockTxRepositories{
		workspaces: &MockWorkspaceRepository{store: t.store, data: stagedData},
		members:    &MockWorkspaceMemberRepository{store: t.store, data: stagedData},
	}

	if err := fn(repos); err != nil {
		t.store.mu.Lock()
		t.Rollbacks++
		t.store.mu.Unlock()
		return err
	}

	t.store.mu.Lock()
	t.store.data = staged
	t.store.mu.Unlock()
	return nil
}

// MockDeliveryLog is an in-memory domain.DeliveryLog
type MockDeliveryLog struct {
	mu        sync.Mutex
	Processed map[string]bool
	SeenErr   error
}

// NewMockDeliveryLog creates a new MockDeliveryLog
func NewMockDeliveryLog() *MockDeliveryLog {
	return &MockDeliveryLog{Processed: make(map[string]bool)}
}

// Seen reports whether the delivery was marked
func (m *MockDeliveryLog) Seen(ctx context.Context, deliveryID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SeenErr != nil {
		return false, m.SeenErr
	}
	return m.Processed[deliveryID], nil
}

// MarkProcessed records the delivery
func (m *MockDeliveryLog) MarkProcessed(ctx context.Context, deliveryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Processed[deliveryID] = true
	return nil
}

// PublishedEvent is an event captured by MockEventPublisher
type PublishedEvent struct {
	WorkspaceID string
	Event       websocket.Event
}

// MockEventPublisher captures published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{Events: make([]PublishedEvent, 0)}
}

// Publish records the event
func (m *MockEventPublisher) Publish(workspaceID string, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{WorkspaceID: workspaceID, Event: event})
}

// Types returns the published event types in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}
