package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/events"
	"ai-chat-be/pkg/lifecycle"
	pktNats "ai-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IProvisionService interface {
	Consume(ctx context.Context) error
	// Provision runs the activation job for a tenant. Idempotent: calling
	// it against an already-active tenant reports success without side
	// effects. A non-nil error means the job itself could not run;
	// Success=false means it ran but did not complete.
	Provision(ctx context.Context, tenantId uuid.UUID) (*lifecycle.ActivationResult, error)
}

type provisionService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	db             *gorm.DB
	storageRoot    string
	eventPublisher *pktNats.Publisher
}

func NewProvisionService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	db *gorm.DB,
	storageRoot string,
	eventPublisher *pktNats.Publisher,
) IProvisionService {
	return &provisionService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		db:             db,
		storageRoot:    storageRoot,
		eventPublisher: eventPublisher,
	}
}

func (ps *provisionService) Consume(ctx context.Context) error {
	messages, err := ps.pubSub.Subscribe(ctx, ps.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ps.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (ps *provisionService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ProvisionTenantMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal provision message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Provisioning tenant %s", payload.TenantId)

	result, err := ps.Provision(ctx, payload.TenantId)
	if err != nil {
		log.Printf("[ERROR] Provisioning run failed for tenant %s: %v", payload.TenantId, err)
		msg.Nack() // Retriable: the job never ran
		return
	}
	if !result.Success {
		// The failure is recorded on the tenant row; retrying the same
		// message would just repeat it. The user retries explicitly.
		log.Printf("[ERROR] Provisioning incomplete for tenant %s: %s", payload.TenantId, result.Detail)
		msg.Ack()
		return
	}

	log.Printf("[SUCCESS] Tenant %s provisioned (folder: %s)", payload.TenantId, result.StorageFolder)
	msg.Ack()
}

func (ps *provisionService) Provision(ctx context.Context, tenantId uuid.UUID) (*lifecycle.ActivationResult, error) {
	uow := ps.uowFactory.NewUnitOfWork(ctx)

	tenant, err := uow.TenantRepository().FindOne(ctx, specification.ByID{ID: tenantId})
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return &lifecycle.ActivationResult{Success: false, Detail: "tenant record not found"}, nil
	}

	if tenant.Status == entity.TenantStatusActive {
		folder := ""
		if tenant.StorageFolder != nil {
			folder = *tenant.StorageFolder
		}
		return &lifecycle.ActivationResult{Success: true, StorageFolder: folder}, nil
	}

	// 1. Isolated schema for the tenant's data
	if err := ps.db.WithContext(ctx).Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %q`, tenant.SchemaName)).Error; err != nil {
		return ps.fail(ctx, tenant, fmt.Sprintf("schema creation failed: %v", err)), nil
	}

	// 2. Storage folder for uploads
	folder := filepath.Join(ps.storageRoot, tenant.SchemaName)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return ps.fail(ctx, tenant, fmt.Sprintf("storage folder creation failed: %v", err)), nil
	}

	// 3. Flip the row to active
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.TenantRepository().UpdateStorageFolder(ctx, tenant.Id, folder); err != nil {
		return nil, err
	}
	if err := uow.TenantRepository().UpdateStatus(ctx, tenant.Id, entity.TenantStatusActive, nil); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if ps.eventPublisher != nil {
		event := events.NewTenantProvisionedEvent(tenant.Id.String(), tenant.UserId.String(), folder)
		if err := ps.eventPublisher.Publish(ctx, event); err != nil {
			log.Printf("[WARN] Failed to publish provisioned event for tenant %s: %v", tenant.Id, err)
		}
	}

	return &lifecycle.ActivationResult{Success: true, StorageFolder: folder}, nil
}

// fail records the failure on the tenant row and reports a partial result.
func (ps *provisionService) fail(ctx context.Context, tenant *entity.Tenant, detail string) *lifecycle.ActivationResult {
	uow := ps.uowFactory.NewUnitOfWork(ctx)
	if err := uow.TenantRepository().UpdateStatus(ctx, tenant.Id, entity.TenantStatusError, &detail); err != nil {
		log.Printf("[WARN] Failed to persist error status for tenant %s: %v", tenant.Id, err)
	}

	if ps.eventPublisher != nil {
		event := events.NewTenantProvisionFailedEvent(tenant.Id.String(), tenant.UserId.String(), detail)
		if err := ps.eventPublisher.Publish(ctx, event); err != nil {
			log.Printf("[WARN] Failed to publish provision-failed event for tenant %s: %v", tenant.Id, err)
		}
	}

	return &lifecycle.ActivationResult{Success: false, Detail: detail}
}
