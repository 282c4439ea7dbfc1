package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-chat-be/internal/apperr"
	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/memory"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/internal/websocket"
	"ai-chat-be/pkg/lifecycle"
	"ai-chat-be/pkg/llm"
	"ai-chat-be/pkg/reply"
	"ai-chat-be/pkg/typing"

	"github.com/google/uuid"
)

type IChatService interface {
	LoadSessions(ctx context.Context, userId uuid.UUID) (*dto.LoadSessionsResponse, error)
	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	DeleteChat(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	ClearAllChats(ctx context.Context, userId uuid.UUID) error
	ImproveMessage(ctx context.Context, userId uuid.UUID, req *dto.ImproveMessageRequest) (*dto.ImproveMessageResponse, error)
}

type chatService struct {
	uowFactory    unitofwork.RepositoryFactory
	trackers      *memory.TrackerRepository
	processing    *memory.ProcessingRepository
	hub           *websocket.Hub
	llmProvider   llm.LLMProvider
	logger        logger.ILogger
	typingStep    time.Duration
	replyDelayMin time.Duration
	replyDelayMax time.Duration
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	trackers *memory.TrackerRepository,
	processing *memory.ProcessingRepository,
	hub *websocket.Hub,
	llmProvider llm.LLMProvider,
	log logger.ILogger,
	typingStep time.Duration,
	replyDelayMin time.Duration,
	replyDelayMax time.Duration,
) IChatService {
	return &chatService{
		uowFactory:    uowFactory,
		trackers:      trackers,
		processing:    processing,
		hub:           hub,
		llmProvider:   llmProvider,
		logger:        log,
		typingStep:    typingStep,
		replyDelayMin: replyDelayMin,
		replyDelayMax: replyDelayMax,
	}
}

// findWorkspace returns the caller's tenant row.
func (s *chatService) findWorkspace(ctx context.Context, userId uuid.UUID) (*entity.Tenant, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	tenant, err := uow.TenantRepository().FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperr.New(apperr.KindValidationFailure, "no workspace exists for this account")
	}
	return tenant, nil
}

// workspaceUsable reports whether chat may run against the tenant:
// active, or still creating when the user chose to continue anyway.
func (s *chatService) workspaceUsable(tenant *entity.Tenant, userId uuid.UUID) bool {
	switch tenant.Status {
	case entity.TenantStatusActive:
		return true
	case entity.TenantStatusCreating:
		if tracker, ok := s.trackers.Get(userId.String()); ok {
			snap := tracker.Snapshot()
			return snap.Dismissed || snap.Status == lifecycle.StatusActive
		}
	}
	return false
}

// requireWorkspace gates the mutating chat operations.
func (s *chatService) requireWorkspace(ctx context.Context, userId uuid.UUID) (*entity.Tenant, error) {
	tenant, err := s.findWorkspace(ctx, userId)
	if err != nil {
		return nil, err
	}
	if s.workspaceUsable(tenant, userId) {
		return tenant, nil
	}
	if tenant.Status == entity.TenantStatusError {
		return nil, apperr.New(apperr.KindActivationPartialFailure, "workspace setup failed, retry it from the status screen")
	}
	return nil, apperr.New(apperr.KindValidationFailure, "workspace is still being set up")
}

func (s *chatService) LoadSessions(ctx context.Context, userId uuid.UUID) (*dto.LoadSessionsResponse, error) {
	tenant, err := s.findWorkspace(ctx, userId)
	if err != nil {
		return nil, err
	}
	if !s.workspaceUsable(tenant, userId) {
		// Reads are suppressed rather than rejected while the workspace
		// is not usable: the client gets an empty list, not an error.
		return &dto.LoadSessionsResponse{Sessions: []dto.ChatSessionResponse{}}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	resp := &dto.LoadSessionsResponse{Sessions: make([]dto.ChatSessionResponse, 0, len(sessions))}
	for _, session := range sessions {
		messages, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: session.Id},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
		if err != nil {
			return nil, err
		}
		resp.Sessions = append(resp.Sessions, sessionToDTO(session, messages))
	}
	return resp, nil
}

func (s *chatService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	tenant, err := s.requireWorkspace(ctx, userId)
	if err != nil {
		return nil, err
	}

	var session *entity.ChatSession
	userMsg := &entity.ChatMessage{
		Id:        uuid.New(),
		Content:   req.Content,
		SenderId:  entity.MessageSenderUser,
		IsAI:      false,
		CreatedAt: time.Now(),
	}
	if req.Attachment != nil {
		userMsg.Attachment = &entity.Attachment{
			Name: req.Attachment.Name,
			Type: req.Attachment.Type,
			URL:  req.Attachment.URL,
		}
	}

	if req.ChatSessionId == nil {
		session, err = s.createSession(ctx, userId, tenant.Id, req, userMsg)
		if err != nil {
			return nil, err
		}
	} else {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		session, err = uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: *req.ChatSessionId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, apperr.New(apperr.KindValidationFailure, "chat session not found")
		}
	}

	// One reply at a time per session. A second send while a reply is in
	// flight is rejected, the client keeps its draft.
	if !s.processing.TryAcquire(session.Id.String()) {
		return nil, apperr.New(apperr.KindPersistenceConflict, "a reply is already being prepared for this chat")
	}
	defer s.processing.Release(session.Id.String())

	if req.ChatSessionId != nil {
		userMsg.ChatSessionId = session.Id
		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.ChatMessageRepository().Create(ctx, userMsg); err != nil {
			// Optimistic append: the message stays in the conversation
			// with a pending-sync marker and is retried at finalize.
			s.logger.Warn("ChatService", "User message persist failed, continuing with pending sync", map[string]interface{}{
				"chat_session_id": session.Id, "error": err.Error(),
			})
			userMsg.PendingSync = true
		}
		if err := uow.ChatSessionRepository().Touch(ctx, session.Id); err != nil {
			s.logger.Warn("ChatService", "Session touch failed", map[string]interface{}{"chat_session_id": session.Id})
		}
	}

	// Simulated assistant latency before the reply starts revealing.
	select {
	case <-ctx.Done():
		return nil, apperr.Wrap(apperr.KindTransportUnavailable, "request cancelled", ctx.Err())
	case <-time.After(reply.ProcessingDelay(s.replyDelayMin, s.replyDelayMax)):
	}

	attachmentName := ""
	if req.Attachment != nil {
		attachmentName = req.Attachment.Name
	}
	replyText := reply.Pick(reply.ParseMode(session.Mode), attachmentName)

	aiMsg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		SenderId:      entity.MessageSenderAI,
		IsAI:          true,
		CreatedAt:     time.Now(),
	}

	// Reveal the reply a few characters at a time over the websocket.
	revealer := typing.NewRevealer(replyText)
	revealer.Run(ctx, s.typingStep, func(st typing.State) {
		s.hub.Send(userId, constant.PushEventTypingChunk, map[string]interface{}{
			"chat_session_id": session.Id,
			"message_id":      aiMsg.Id,
			"partial":         st.Partial,
			"progress":        st.Progress,
			"is_typing":       st.IsTyping,
		})
	})
	aiMsg.Content = replyText

	s.finalize(ctx, session.Id, userMsg, aiMsg)

	resp := &dto.SendMessageResponse{
		ChatSessionId: session.Id,
		UserMessage:   messageToDTO(userMsg),
		AiMessage:     messageToDTO(aiMsg),
	}
	s.hub.Send(userId, constant.PushEventChatMessage, resp.AiMessage)
	return resp, nil
}

// createSession seeds a new session with the welcome message and the first
// user message in one transaction: either all three rows exist or none do.
func (s *chatService) createSession(ctx context.Context, userId, tenantId uuid.UUID, req *dto.SendMessageRequest, userMsg *entity.ChatMessage) (*entity.ChatSession, error) {
	mode := reply.ParseMode(req.Mode)
	now := time.Now()

	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		TenantId:  tenantId,
		Title:     reply.DeriveTitle(req.Content),
		Mode:      string(mode),
		CreatedAt: now,
	}

	welcome := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Content:       reply.WelcomeMessage(mode),
		SenderId:      entity.MessageSenderAI,
		IsAI:          true,
		CreatedAt:     now,
	}
	// The welcome message must sort before the user's first message.
	userMsg.ChatSessionId = session.Id
	userMsg.CreatedAt = now.Add(time.Millisecond)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistenceConflict, "could not create chat session", err)
	}
	if err := uow.ChatMessageRepository().CreateBulk(ctx, []*entity.ChatMessage{welcome, userMsg}); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistenceConflict, "could not seed chat session", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistenceConflict, "could not create chat session", err)
	}
	return session, nil
}

// finalize persists the assistant reply and retries any message that was
// left pending. Failures here never drop the reply from the response.
func (s *chatService) finalize(ctx context.Context, sessionId uuid.UUID, userMsg, aiMsg *entity.ChatMessage) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if userMsg.PendingSync {
		if err := uow.ChatMessageRepository().Create(ctx, userMsg); err == nil {
			userMsg.PendingSync = false
		} else {
			s.logger.Warn("ChatService", "User message retry failed", map[string]interface{}{
				"chat_session_id": sessionId, "error": err.Error(),
			})
		}
	}

	if err := uow.ChatMessageRepository().Create(ctx, aiMsg); err != nil {
		s.logger.Warn("ChatService", "Assistant message persist failed, marking pending sync", map[string]interface{}{
			"chat_session_id": sessionId, "error": err.Error(),
		})
		aiMsg.PendingSync = true
	}

	if err := uow.ChatSessionRepository().Touch(ctx, sessionId); err != nil {
		s.logger.Warn("ChatService", "Session touch failed", map[string]interface{}{"chat_session_id": sessionId})
	}
}

// DeleteChat removes a session and its messages. Messages go first so a
// failure mid-way never leaves orphaned rows behind a missing session.
func (s *chatService) DeleteChat(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	if _, err := s.requireWorkspace(ctx, userId); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if session == nil {
		return apperr.New(apperr.KindValidationFailure, "chat session not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id); err != nil {
		return apperr.Wrap(apperr.KindPersistenceConflict, "could not delete chat messages", err)
	}
	if err := uow.ChatSessionRepository().Delete(ctx, session.Id); err != nil {
		return apperr.Wrap(apperr.KindPersistenceConflict, "could not delete chat session", err)
	}
	return uow.Commit()
}

func (s *chatService) ClearAllChats(ctx context.Context, userId uuid.UUID) error {
	if _, err := s.requireWorkspace(ctx, userId); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	for _, session := range sessions {
		if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id); err != nil {
			return apperr.Wrap(apperr.KindPersistenceConflict, "could not delete chat messages", err)
		}
		if err := uow.ChatSessionRepository().Delete(ctx, session.Id); err != nil {
			return apperr.Wrap(apperr.KindPersistenceConflict, "could not delete chat session", err)
		}
	}
	return uow.Commit()
}

// ImproveMessage rewrites a draft through the configured LLM. This is the
// one chat path that talks to a real model.
func (s *chatService) ImproveMessage(ctx context.Context, userId uuid.UUID, req *dto.ImproveMessageRequest) (*dto.ImproveMessageResponse, error) {
	if _, err := s.requireWorkspace(ctx, userId); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(constant.ImproveMessagePrompt, req.Content)
	improved, err := s.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.4))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransportUnavailable, "assistant unavailable, try again shortly", err)
	}
	return &dto.ImproveMessageResponse{Improved: strings.TrimSpace(improved)}, nil
}

func sessionToDTO(session *entity.ChatSession, messages []*entity.ChatMessage) dto.ChatSessionResponse {
	resp := dto.ChatSessionResponse{
		Id:        session.Id,
		Title:     session.Title,
		Mode:      session.Mode,
		Messages:  make([]dto.ChatMessageResponse, 0, len(messages)),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, messageToDTO(msg))
	}
	return resp
}

func messageToDTO(msg *entity.ChatMessage) dto.ChatMessageResponse {
	resp := dto.ChatMessageResponse{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Content:       msg.Content,
		IsAI:          msg.IsAI,
		PendingSync:   msg.PendingSync,
		CreatedAt:     msg.CreatedAt,
	}
	if msg.Attachment != nil {
		resp.Attachment = &dto.AttachmentPayload{
			Name: msg.Attachment.Name,
			Type: msg.Attachment.Type,
			URL:  msg.Attachment.URL,
		}
	}
	return resp
}
