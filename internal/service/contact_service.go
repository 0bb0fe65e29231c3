package service

import (
	"context"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/mail"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContactService defines the interface for contact messaging
type ContactService interface {
	Submit(ctx context.Context, name, email, subject, message string) (*domain.ContactMessage, error)
	List(ctx context.Context, actor Actor) ([]*domain.ContactMessage, error)
}

type contactService struct {
	contactRepo repository.ContactRepository
	mailer      mail.Mailer
	from        string
	opEmail     string
	logger      *zap.Logger
}

// NewContactService creates a new instance of ContactService
func NewContactService(
	contactRepo repository.ContactRepository,
	mailer mail.Mailer,
	smtp config.SMTPConfig,
	store config.StoreConfig,
	logger *zap.Logger,
) ContactService {
	return &contactService{
		contactRepo: contactRepo,
		mailer:      mailer,
		from:        smtp.From,
		opEmail:     store.OperatorEmail,
		logger:      logger,
	}
}

// Submit stores the message, then notifies the operator. The message is
// kept even when the notification fails.
func (s *contactService) Submit(ctx context.Context, name, email, subject, message string) (*domain.ContactMessage, error) {
	msg := &domain.ContactMessage{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   message,
		CreatedAt: time.Now(),
	}

	if err := s.contactRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.opEmail != "" {
		mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), NotificationTimeout)
		defer cancel()

		if err := s.mailer.Send(mctx, mail.ContactOperatorMessage(s.from, s.opEmail, msg)); err != nil {
			s.logger.Warn("Contact notification failed", zap.Error(err))
		}
	}

	return msg, nil
}

// List returns all contact messages; admin only.
func (s *contactService) List(ctx context.Context, actor Actor) ([]*domain.ContactMessage, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.contactRepo.List(ctx)
}
