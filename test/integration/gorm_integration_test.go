package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.TenantRepository())
	assert.NotNil(t, uow.ChatSessionRepository())
	assert.NotNil(t, uow.ChatMessageRepository())

	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	t.Run("Chat round trip keeps message order", func(t *testing.T) {
		ctx := context.Background()

		user := &entity.User{
			Id:           uuid.New(),
			Email:        "test-integration-" + uuid.New().String() + "@example.com",
			PasswordHash: "x",
			FullName:     "Integration Test",
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		tenant := &entity.Tenant{
			Id:         uuid.New(),
			UserId:     user.Id,
			SchemaName: "tenant_it_" + uuid.New().String()[:8],
			Status:     entity.TenantStatusActive,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}

		txUow := uowFactory.NewUnitOfWork(ctx)
		assert.NoError(t, txUow.Begin(ctx))
		defer txUow.Rollback()

		assert.NoError(t, txUow.UserRepository().Create(ctx, user))
		assert.NoError(t, txUow.TenantRepository().Create(ctx, tenant))

		now := time.Now()
		session := &entity.ChatSession{
			Id:        uuid.New(),
			UserId:    user.Id,
			TenantId:  tenant.Id,
			Title:     "Integration round trip",
			Mode:      "personal",
			CreatedAt: now,
		}
		assert.NoError(t, txUow.ChatSessionRepository().Create(ctx, session))

		welcome := &entity.ChatMessage{
			Id: uuid.New(), ChatSessionId: session.Id,
			Content: "welcome", SenderId: entity.MessageSenderAI, IsAI: true,
			CreatedAt: now,
		}
		first := &entity.ChatMessage{
			Id: uuid.New(), ChatSessionId: session.Id,
			Content: "hi there", SenderId: entity.MessageSenderUser,
			CreatedAt: now.Add(time.Millisecond),
		}
		assert.NoError(t, txUow.ChatMessageRepository().CreateBulk(ctx, []*entity.ChatMessage{welcome, first}))

		messages, err := txUow.ChatMessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: session.Id},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
		assert.NoError(t, err)
		if assert.Len(t, messages, 2) {
			assert.True(t, messages[0].IsAI, "welcome message must sort first")
			assert.Equal(t, "hi there", messages[1].Content)
		}

		// Delete ordering: messages first, then the session
		assert.NoError(t, txUow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id))
		assert.NoError(t, txUow.ChatSessionRepository().Delete(ctx, session.Id))

		gone, err := txUow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
		assert.NoError(t, err)
		assert.Nil(t, gone)
	})
}
