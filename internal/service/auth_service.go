package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-chat-be/internal/apperr"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/mailer"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, userId uuid.UUID) error
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	emailService   mailer.IEmailService
	jobPublisher   *gochannel.GoChannel
	provisionTopic string
	jwtSecret      string
	jwtExpiry      time.Duration
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	jobPublisher *gochannel.GoChannel,
	provisionTopic string,
	jwtSecret string,
	jwtExpiryHours int,
) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		emailService:   emailService,
		jobPublisher:   jobPublisher,
		provisionTopic: provisionTopic,
		jwtSecret:      jwtSecret,
		jwtExpiry:      time.Duration(jwtExpiryHours) * time.Hour,
	}
}

// Register creates the user together with its tenant row in a single
// transaction. The tenant starts in creating state; the actual schema and
// storage work happens in the background provisioning job.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindValidationFailure, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	tenant := &entity.Tenant{
		Id:         uuid.New(),
		UserId:     user.Id,
		SchemaName: fmt.Sprintf("tenant_%s", strings.ReplaceAll(user.Id.String(), "-", "")),
		Status:     entity.TenantStatusCreating,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}
	if err := uow.TenantRepository().Create(ctx, tenant); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// Kick the provisioning job. The tracker will also invoke activation
	// on the first status poll, so a lost message here self-heals.
	payload, _ := json.Marshal(dto.ProvisionTenantMessage{TenantId: tenant.Id})
	if err := s.jobPublisher.Publish(s.provisionTopic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		fmt.Printf("Error publishing provision job for tenant %s: %v\n", tenant.Id, err)
	}

	go func() {
		if emailErr := s.emailService.SendWelcome(user.Email, user.FullName); emailErr != nil {
			fmt.Printf("Error sending welcome email: %v\n", emailErr)
		}
	}()

	return &dto.RegisterResponse{Id: user.Id, Email: user.Email, TenantId: tenant.Id}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.KindNotAuthorized, "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.New(apperr.KindNotAuthorized, "invalid email or password")
	}

	expiresAt := time.Now().Add(s.jwtExpiry)
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"exp":     expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User: dto.UserInfo{
			Id:       user.Id,
			Email:    user.Email,
			FullName: user.FullName,
		},
	}, nil
}

// Logout is a no-op server side: tokens are stateless and simply expire.
// The endpoint exists so the client has a single place to clear state.
func (s *authService) Logout(ctx context.Context, userId uuid.UUID) error {
	return nil
}
