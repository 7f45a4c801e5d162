package services

import (
	"context"
	"errors"
	"time"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/logger"
	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/repository"
	"github.com/example/rentify/internal/utils"
)

const msgMessageNotFound = "Message not found."

type ContactSender struct {
	FullName string `json:"full_name"`
}

type ContactView struct {
	ID        uint           `json:"id"`
	Subject   string         `json:"subject"`
	Message   string         `json:"message"`
	Status    string         `json:"status"`
	User      *ContactSender `json:"user,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type ContactPage struct {
	ContactMessages []ContactView `json:"contactMessages"`
	Total           int64         `json:"total"`
	CurrentPage     int           `json:"currentPage"`
	TotalPages      int           `json:"totalPages"`
}

type ContactService struct {
	messages repository.ContactRepository
	users    repository.UserRepository
	notifier Notifier
	log      logger.ILogger
}

func NewContactService(messages repository.ContactRepository, users repository.UserRepository, notifier Notifier, log logger.ILogger) *ContactService {
	return &ContactService{messages: messages, users: users, notifier: notifier, log: log}
}

func contactView(m *models.ContactUs) ContactView {
	view := ContactView{
		ID:        m.ID,
		Subject:   m.Subject,
		Message:   m.Message,
		Status:    m.Status.String(),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.User != nil {
		view.User = &ContactSender{FullName: m.User.FullName}
	}
	return view
}

// Create stores a message from an active user and pings the admins.
func (s *ContactService) Create(ctx context.Context, actor Actor, subject, message string) error {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperrors.Internal(err)
	}
	if user == nil || user.IsBlocked || user.AccountDisabled {
		return apperrors.NotFound("Sorry, this user can not send a message.")
	}

	entry := &models.ContactUs{
		UserID:  user.ID,
		Subject: subject,
		Message: message,
		Status:  models.ContactPending,
	}
	if err := s.messages.Create(ctx, entry); err != nil {
		s.log.Error("create contact message failed", logger.Uint("user_id", user.ID), logger.Error(err))
		return apperrors.Internal(err)
	}

	if err := s.notifier.NotifyContactMessage(user.FullName, subject); err != nil {
		s.log.Warning("contact notification failed", logger.Uint("message_id", entry.ID), logger.Error(err))
	}
	return nil
}

func (s *ContactService) FindAll(ctx context.Context, p utils.Pagination) (*ContactPage, error) {
	messages, total, err := s.messages.List(ctx, p.Offset, p.Limit)
	if err != nil {
		s.log.Error("list contact messages failed", logger.Error(err))
		return nil, apperrors.Internal(err)
	}

	views := make([]ContactView, 0, len(messages))
	for i := range messages {
		views = append(views, contactView(&messages[i]))
	}
	return &ContactPage{
		ContactMessages: views,
		Total:           total,
		CurrentPage:     p.Page,
		TotalPages:      p.TotalPages(total),
	}, nil
}

func (s *ContactService) FindOne(ctx context.Context, id uint) (*ContactView, error) {
	message, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "Message is not found.")
	}
	view := contactView(message)
	return &view, nil
}

func (s *ContactService) Resolve(ctx context.Context, id uint) error {
	if _, err := s.messages.FindByID(ctx, id); err != nil {
		return mapRepoErr(err, msgMessageNotFound)
	}
	if err := s.messages.Update(ctx, id, map[string]interface{}{"status": models.ContactResolved}); err != nil {
		return mapRepoErr(err, msgMessageNotFound)
	}
	return nil
}

func (s *ContactService) Remove(ctx context.Context, id uint) error {
	if err := s.messages.Delete(ctx, id); err != nil {
		return mapRepoErr(err, msgMessageNotFound)
	}
	return nil
}
