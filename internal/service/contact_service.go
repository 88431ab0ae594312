package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/innouni-api/internal/models"
	appErrors "github.com/noah-isme/innouni-api/pkg/errors"
	"github.com/noah-isme/innouni-api/pkg/logger"
)

type contactStore interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
}

// ContactService records contact-form submissions. Delivery happens elsewhere.
type ContactService struct {
	repo      contactStore
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewContactService constructs the service.
func NewContactService(repo contactStore, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ContactService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{repo: repo, validator: validate, logger: logger, metrics: metrics}
}

// Submit validates and stores a message.
func (s *ContactService) Submit(ctx context.Context, req models.ContactRequest, ip string) (*models.ContactMessage, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err, "name, a valid email and message are required")
	}

	msg := &models.ContactMessage{Name: req.Name, Email: req.Email, Message: req.Message, IPAddress: ip}
	if err := s.repo.Create(ctx, msg); err != nil {
		logger.FromContext(ctx, s.logger).Error("failed to store contact message", zap.Error(err))
		return nil, appErrors.ErrInternal.Wrap(err, "failed to send message")
	}

	s.metrics.RecordEvent("contact_message")
	logger.FromContext(ctx, s.logger).Info("contact message received", zap.Int64("id", msg.ID), zap.String("email", msg.Email))
	return msg, nil
}
