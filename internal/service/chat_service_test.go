package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-chat-be/internal/apperr"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/memory"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/internal/websocket"
	"ai-chat-be/pkg/lifecycle"
	"ai-chat-be/pkg/reply"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{}) {}
func (nopLogger) Warn(module, message string, details map[string]interface{}) {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error {
	return nil
}

// chatStore is the shared backing state for the in-memory repositories.
// createFailures makes the next N single-message writes fail, to exercise
// the pending-sync path.
type chatStore struct {
	mu             sync.Mutex
	tenant         *entity.Tenant
	sessions       []*entity.ChatSession
	messages       []*entity.ChatMessage
	createFailures int
}

type chatStoreFactory struct{ store *chatStore }

func (f *chatStoreFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &chatStoreUow{store: f.store}
}

type chatStoreUow struct{ store *chatStore }

func (u *chatStoreUow) Begin(ctx context.Context) error { return nil }
func (u *chatStoreUow) Commit() error                   { return nil }
func (u *chatStoreUow) Rollback() error                 { return nil }

func (u *chatStoreUow) UserRepository() contract.UserRepository {
	return &fakeUserRepo{}
}

func (u *chatStoreUow) TenantRepository() contract.TenantRepository {
	return &fakeTenantRepo{store: u.store}
}

func (u *chatStoreUow) ChatSessionRepository() contract.ChatSessionRepository {
	return &fakeSessionRepo{store: u.store}
}

func (u *chatStoreUow) ChatMessageRepository() contract.ChatMessageRepository {
	return &fakeMessageRepo{store: u.store}
}

type fakeUserRepo struct{}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	return nil, nil
}
func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeTenantRepo struct{ store *chatStore }

func (r *fakeTenantRepo) Create(ctx context.Context, tenant *entity.Tenant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.tenant = tenant
	return nil
}

func (r *fakeTenantRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.TenantStatus, errorMessage *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.tenant.Status = status
	r.store.tenant.ErrorMessage = errorMessage
	return nil
}

func (r *fakeTenantRepo) UpdateStorageFolder(ctx context.Context, id uuid.UUID, folder string) error {
	return nil
}

func (r *fakeTenantRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Tenant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.tenant, nil
}

func (r *fakeTenantRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Tenant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.tenant == nil {
		return nil, nil
	}
	return []*entity.Tenant{r.store.tenant}, nil
}

type fakeSessionRepo struct{ store *chatStore }

func sessionMatches(session *entity.ChatSession, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch s := sp.(type) {
		case specification.ByID:
			if session.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if session.UserId != s.UserID {
				return false
			}
		}
	}
	return true
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.sessions = append(r.store.sessions, session)
	return nil
}

func (r *fakeSessionRepo) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.sessions {
		if s.Id == id {
			s.Title = title
		}
	}
	return nil
}

func (r *fakeSessionRepo) Touch(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	for _, s := range r.store.sessions {
		if s.Id == id {
			s.UpdatedAt = &now
		}
	}
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.sessions[:0]
	for _, s := range r.store.sessions {
		if s.Id != id {
			kept = append(kept, s)
		}
	}
	r.store.sessions = kept
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.sessions {
		if sessionMatches(s, specs) {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.ChatSession
	for _, s := range r.store.sessions {
		if sessionMatches(s, specs) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, _ := r.FindAll(ctx, specs...)
	return int64(len(found)), nil
}

type fakeMessageRepo struct{ store *chatStore }

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.createFailures > 0 {
		r.store.createFailures--
		return errors.New("write refused")
	}
	r.store.messages = append(r.store.messages, message)
	return nil
}

func (r *fakeMessageRepo) CreateBulk(ctx context.Context, messages []*entity.ChatMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.messages = append(r.store.messages, messages...)
	return nil
}

func (r *fakeMessageRepo) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.messages[:0]
	for _, m := range r.store.messages {
		if m.ChatSessionId != sessionId {
			kept = append(kept, m)
		}
	}
	r.store.messages = kept
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.ChatMessage
	for _, m := range r.store.messages {
		match := true
		for _, sp := range specs {
			if s, ok := sp.(specification.ByChatSessionID); ok && m.ChatSessionId != s.ChatSessionID {
				match = false
			}
		}
		if match {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, _ := r.FindAll(ctx, specs...)
	return int64(len(found)), nil
}

// stuckGateway keeps a tracker in creating state forever.
type stuckGateway struct{}

func (stuckGateway) FetchStatus(ctx context.Context) (lifecycle.Status, string, error) {
	return lifecycle.StatusCreating, "", nil
}
func (stuckGateway) InvokeActivation(ctx context.Context) (*lifecycle.ActivationResult, error) {
	return &lifecycle.ActivationResult{Success: true}, nil
}
func (stuckGateway) MarkError(ctx context.Context, message string) error { return nil }

func activeTenant(userId uuid.UUID) *entity.Tenant {
	return &entity.Tenant{
		Id:     uuid.New(),
		UserId: userId,
		Status: entity.TenantStatusActive,
	}
}

func newChatServiceForTest(store *chatStore) (IChatService, *memory.TrackerRepository, *memory.ProcessingRepository) {
	trackers := memory.NewTrackerRepository()
	processing := memory.NewProcessingRepository()
	hub := websocket.NewHub(nil, nopLogger{})
	svc := NewChatService(
		&chatStoreFactory{store: store},
		trackers,
		processing,
		hub,
		nil,
		nopLogger{},
		time.Millisecond,   // typing step
		time.Millisecond,   // reply delay min
		2*time.Millisecond, // reply delay max
	)
	return svc, trackers, processing
}

func TestSendMessageSeedsNewSession(t *testing.T) {
	userId := uuid.New()
	store := &chatStore{tenant: activeTenant(userId)}
	svc, _, _ := newChatServiceForTest(store)

	res, err := svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		Content: "What should I cook tonight",
		Mode:    "personal",
	})
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.ChatSessionId)

	assert.Len(t, store.sessions, 1)
	assert.Equal(t, "What should I", store.sessions[0].Title)
	assert.Equal(t, "personal", store.sessions[0].Mode)

	// The seed is the welcome plus the first user message, then the
	// assistant reply lands after the reveal.
	assert.Len(t, store.messages, 3)
	assert.True(t, store.messages[0].IsAI, "welcome must be first")
	assert.Equal(t, reply.WelcomeMessage(reply.ModePersonal), store.messages[0].Content)
	assert.Equal(t, "What should I cook tonight", store.messages[1].Content)
	assert.True(t, store.messages[0].CreatedAt.Before(store.messages[1].CreatedAt),
		"welcome must sort before the first user message")

	assert.True(t, res.AiMessage.IsAI)
	assert.NotEmpty(t, res.AiMessage.Content)
	assert.Equal(t, res.ChatSessionId, res.AiMessage.ChatSessionId)
}

func TestSendMessageRejectsConcurrentReply(t *testing.T) {
	userId := uuid.New()
	sessionId := uuid.New()
	store := &chatStore{
		tenant: activeTenant(userId),
		sessions: []*entity.ChatSession{
			{Id: sessionId, UserId: userId, Title: "First", Mode: "personal", CreatedAt: time.Now()},
		},
	}
	svc, _, processing := newChatServiceForTest(store)

	assert.True(t, processing.TryAcquire(sessionId.String()))
	defer processing.Release(sessionId.String())

	_, err := svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ChatSessionId: &sessionId,
		Content:       "hello again",
	})
	assert.Error(t, err)
	assert.Equal(t, apperr.KindPersistenceConflict, apperr.KindOf(err))
	assert.Empty(t, store.messages, "rejected send must not persist anything")
}

func TestSendMessageRetriesPendingUserMessage(t *testing.T) {
	userId := uuid.New()
	sessionId := uuid.New()
	store := &chatStore{
		tenant: activeTenant(userId),
		sessions: []*entity.ChatSession{
			{Id: sessionId, UserId: userId, Title: "Flaky", Mode: "personal", CreatedAt: time.Now()},
		},
		createFailures: 1,
	}
	svc, _, _ := newChatServiceForTest(store)

	res, err := svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ChatSessionId: &sessionId,
		Content:       "flaky write",
	})
	assert.NoError(t, err)
	assert.False(t, res.UserMessage.PendingSync, "retried write should clear the marker")

	assert.Len(t, store.messages, 2)
	assert.Equal(t, "flaky write", store.messages[0].Content)
	assert.True(t, store.messages[1].IsAI)
}

func TestLoadSessionsSuppressedWhileProvisioning(t *testing.T) {
	userId := uuid.New()
	store := &chatStore{
		tenant: &entity.Tenant{Id: uuid.New(), UserId: userId, Status: entity.TenantStatusCreating},
		sessions: []*entity.ChatSession{
			{Id: uuid.New(), UserId: userId, Title: "Old", Mode: "personal", CreatedAt: time.Now()},
		},
	}
	svc, _, _ := newChatServiceForTest(store)

	res, err := svc.LoadSessions(context.Background(), userId)
	assert.NoError(t, err)
	assert.Empty(t, res.Sessions, "session list is cleared while the workspace is provisioning")

	store.tenant.Status = entity.TenantStatusError
	res, err = svc.LoadSessions(context.Background(), userId)
	assert.NoError(t, err)
	assert.Empty(t, res.Sessions)

	// Mutations are still rejected, not silently suppressed.
	_, err = svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{Content: "hi"})
	assert.Error(t, err)
	assert.Equal(t, apperr.KindActivationPartialFailure, apperr.KindOf(err))
}

func TestSendMessageAllowedAfterDismiss(t *testing.T) {
	userId := uuid.New()
	store := &chatStore{
		tenant: &entity.Tenant{Id: uuid.New(), UserId: userId, Status: entity.TenantStatusCreating},
	}
	svc, trackers, _ := newChatServiceForTest(store)

	tr := lifecycle.NewTracker(stuckGateway{}, nil)
	tr.Dismiss()
	trackers.Save(userId.String(), tr)

	res, err := svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		Content: "start anyway please",
		Mode:    "business",
	})
	assert.NoError(t, err)
	assert.NotNil(t, res)
	assert.Len(t, store.sessions, 1)
	assert.Equal(t, "business", store.sessions[0].Mode)
}

func TestLoadSessionsReturnsOwnedSessions(t *testing.T) {
	userId := uuid.New()
	otherUser := uuid.New()
	sessionId := uuid.New()
	store := &chatStore{
		tenant: activeTenant(userId),
		sessions: []*entity.ChatSession{
			{Id: sessionId, UserId: userId, Title: "Mine", Mode: "personal", CreatedAt: time.Now()},
			{Id: uuid.New(), UserId: otherUser, Title: "Theirs", Mode: "personal", CreatedAt: time.Now()},
		},
		messages: []*entity.ChatMessage{
			{Id: uuid.New(), ChatSessionId: sessionId, Content: "hello", SenderId: entity.MessageSenderUser, CreatedAt: time.Now()},
		},
	}
	svc, _, _ := newChatServiceForTest(store)

	res, err := svc.LoadSessions(context.Background(), userId)
	assert.NoError(t, err)
	assert.Len(t, res.Sessions, 1)
	assert.Equal(t, "Mine", res.Sessions[0].Title)
	assert.Len(t, res.Sessions[0].Messages, 1)
}
