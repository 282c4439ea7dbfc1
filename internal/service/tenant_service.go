package service

import (
	"context"

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

	"github.com/google/uuid"
)

type ITenantService interface {
	// Status reports the provisioning snapshot for the caller's tenant.
	// Each poll advances the progress estimator by one tick.
	Status(ctx context.Context, userId uuid.UUID) (*dto.TenantStatusResponse, error)
	Retry(ctx context.Context, userId uuid.UUID) (*dto.RetryProvisionResponse, error)
	Dismiss(ctx context.Context, userId uuid.UUID) error
}

type tenantService struct {
	uowFactory unitofwork.RepositoryFactory
	trackers   *memory.TrackerRepository
	provision  IProvisionService
	hub        *websocket.Hub
	logger     logger.ILogger
}

func NewTenantService(
	uowFactory unitofwork.RepositoryFactory,
	trackers *memory.TrackerRepository,
	provision IProvisionService,
	hub *websocket.Hub,
	log logger.ILogger,
) ITenantService {
	return &tenantService{
		uowFactory: uowFactory,
		trackers:   trackers,
		provision:  provision,
		hub:        hub,
		logger:     log,
	}
}

// tenantGateway adapts the repositories and the provisioning job to the
// narrow surface the lifecycle tracker drives.
type tenantGateway struct {
	uowFactory unitofwork.RepositoryFactory
	provision  IProvisionService
	tenantId   uuid.UUID
}

func (g *tenantGateway) FetchStatus(ctx context.Context) (lifecycle.Status, string, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	tenant, err := uow.TenantRepository().FindOne(ctx, specification.ByID{ID: g.tenantId})
	if err != nil {
		return lifecycle.StatusCreating, "", err
	}
	if tenant == nil {
		return lifecycle.StatusError, "tenant record not found", nil
	}
	errMessage := ""
	if tenant.ErrorMessage != nil {
		errMessage = *tenant.ErrorMessage
	}
	return lifecycle.Status(tenant.Status), errMessage, nil
}

func (g *tenantGateway) InvokeActivation(ctx context.Context) (*lifecycle.ActivationResult, error) {
	return g.provision.Provision(ctx, g.tenantId)
}

func (g *tenantGateway) MarkError(ctx context.Context, message string) error {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	return uow.TenantRepository().UpdateStatus(ctx, g.tenantId, entity.TenantStatusError, &message)
}

func (s *tenantService) findTenant(ctx context.Context, userId uuid.UUID) (*entity.Tenant, error) {
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

func (s *tenantService) trackerFor(userId, tenantId uuid.UUID) (*lifecycle.Tracker, bool) {
	if tracker, ok := s.trackers.Get(userId.String()); ok {
		return tracker, false
	}
	gw := &tenantGateway{uowFactory: s.uowFactory, provision: s.provision, tenantId: tenantId}
	tracker := lifecycle.NewTracker(gw, nil)
	s.trackers.Save(userId.String(), tracker)
	return tracker, true
}

func (s *tenantService) Status(ctx context.Context, userId uuid.UUID) (*dto.TenantStatusResponse, error) {
	tenant, err := s.findTenant(ctx, userId)
	if err != nil {
		return nil, err
	}

	tracker, fresh := s.trackerFor(userId, tenant.Id)

	// Refresh from the row each poll so the flip to active is observed;
	// the very first observation also kicks the activation job.
	snap, err := tracker.Observe(ctx)
	if err != nil {
		s.logger.Warn("TenantService", "Status observation failed", map[string]interface{}{
			"user_id": userId, "error": err.Error(),
		})
		return nil, apperr.Wrap(apperr.KindTransportUnavailable, "could not read workspace status", err)
	}
	if !fresh && snap.Status == lifecycle.StatusCreating {
		snap = tracker.Tick()
	}

	resp := snapshotToDTO(tenant.Id, snap)
	s.hub.Send(userId, constant.PushEventTenantStatus, resp)
	return resp, nil
}

// Retry resets the tenant back to creating and starts a fresh tracker, so
// the next status poll re-invokes the provisioning job from scratch.
func (s *tenantService) Retry(ctx context.Context, userId uuid.UUID) (*dto.RetryProvisionResponse, error) {
	tenant, err := s.findTenant(ctx, userId)
	if err != nil {
		return nil, err
	}
	if tenant.Status == entity.TenantStatusActive {
		return &dto.RetryProvisionResponse{TenantId: tenant.Id, Status: string(entity.TenantStatusActive)}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.TenantRepository().UpdateStatus(ctx, tenant.Id, entity.TenantStatusCreating, nil); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistenceConflict, "could not reset workspace status", err)
	}

	s.trackers.Delete(userId.String())
	s.logger.Info("TenantService", "Provisioning retry requested", map[string]interface{}{
		"user_id": userId, "tenant_id": tenant.Id,
	})

	return &dto.RetryProvisionResponse{TenantId: tenant.Id, Status: string(entity.TenantStatusCreating)}, nil
}

// Dismiss records the "continue anyway" choice. Local to the tracker, no
// state transition on the tenant row.
func (s *tenantService) Dismiss(ctx context.Context, userId uuid.UUID) error {
	if tracker, ok := s.trackers.Get(userId.String()); ok {
		tracker.Dismiss()
	}
	return nil
}

func snapshotToDTO(tenantId uuid.UUID, snap lifecycle.Snapshot) *dto.TenantStatusResponse {
	return &dto.TenantStatusResponse{
		TenantId:         tenantId,
		Status:           string(snap.Status),
		Progress:         snap.Progress,
		ErrorKind:        string(snap.ErrorKind),
		ErrorMessage:     snap.ErrorMessage,
		CanProceedAnyway: snap.CanProceedAnyway,
		Dismissed:        snap.Dismissed,
	}
}
