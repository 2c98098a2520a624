package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/sirupsen/logrus"
)

// ContactRepository определяет контракт для хранения экстренных контактов.
// Все операции ограничены владельцем: чужой контакт неотличим от отсутствующего
type ContactRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.EmergencyContact, error)
	ListNotifiable(ctx context.Context, userID uuid.UUID) ([]*models.EmergencyContact, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.EmergencyContact, error)
	Create(ctx context.Context, contact *models.EmergencyContact) error
	Update(ctx context.Context, contact *models.EmergencyContact) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// ContactService определяет контракт для управления экстренными контактами
type ContactService interface {
	ListContacts(ctx context.Context, actor models.Actor) ([]*models.EmergencyContact, error)
	CreateContact(ctx context.Context, actor models.Actor, contact *models.EmergencyContact) error
	UpdateContact(ctx context.Context, actor models.Actor, id uuid.UUID, patch models.ContactPatch) (*models.EmergencyContact, error)
	DeleteContact(ctx context.Context, actor models.Actor, id uuid.UUID) error
}

type contactService struct {
	repo   ContactRepository
	logger *logrus.Logger
}

func NewContactService(repo ContactRepository, logger *logrus.Logger) ContactService {
	return &contactService{repo: repo, logger: logger}
}

func (s *contactService) ListContacts(ctx context.Context, actor models.Actor) ([]*models.EmergencyContact, error) {
	contacts, err := s.repo.ListByUser(ctx, actor.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", actor.UserID).Error("Failed to list emergency contacts")
		return nil, fmt.Errorf("service: could not list contacts: %w", err)
	}
	return contacts, nil
}

func (s *contactService) CreateContact(ctx context.Context, actor models.Actor, contact *models.EmergencyContact) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "contact",
		"method":  "CreateContact",
		"user_id": actor.UserID,
	})

	contact.UserID = actor.UserID
	contact.Name = strings.TrimSpace(contact.Name)
	contact.Phone = strings.TrimSpace(contact.Phone)
	if contact.Name == "" || contact.Phone == "" {
		return fmt.Errorf("service: name and phone are required: %w", models.ErrInvalidInput)
	}
	contact.Email = normalizeEmail(contact.Email)

	if err := s.repo.Create(ctx, contact); err != nil {
		log.WithError(err).Error("Failed to create emergency contact")
		return fmt.Errorf("service: could not create contact: %w", err)
	}

	log.WithField("contact_id", contact.ID).Info("Emergency contact created")
	return nil
}

func (s *contactService) UpdateContact(ctx context.Context, actor models.Actor, id uuid.UUID, patch models.ContactPatch) (*models.EmergencyContact, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "contact",
		"method":     "UpdateContact",
		"contact_id": id,
	})

	contact, err := s.repo.GetByID(ctx, id, actor.UserID)
	if err != nil {
		log.WithError(err).Warn("Emergency contact not found for update")
		return nil, fmt.Errorf("service: could not get contact: %w", err)
	}

	if patch.Name != nil {
		contact.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Phone != nil {
		contact.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Email != nil {
		contact.Email = normalizeEmail(patch.Email)
	}
	if patch.Relationship != nil {
		contact.Relationship = *patch.Relationship
	}
	if patch.IsPrimary != nil {
		contact.IsPrimary = *patch.IsPrimary
	}
	if patch.NotifyOnSOS != nil {
		contact.NotifyOnSOS = *patch.NotifyOnSOS
	}
	if contact.Name == "" || contact.Phone == "" {
		return nil, fmt.Errorf("service: name and phone are required: %w", models.ErrInvalidInput)
	}

	if err := s.repo.Update(ctx, contact); err != nil {
		log.WithError(err).Error("Failed to update emergency contact")
		return nil, fmt.Errorf("service: could not update contact: %w", err)
	}

	log.Info("Emergency contact updated")
	return contact, nil
}

func (s *contactService) DeleteContact(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, actor.UserID); err != nil {
		s.logger.WithError(err).WithField("contact_id", id).Warn("Failed to delete emergency contact")
		return fmt.Errorf("service: could not delete contact: %w", err)
	}
	return nil
}

// normalizeEmail приводит адрес к нижнему регистру, пустая строка означает "нет адреса"
func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*email))
	if v == "" {
		return nil
	}
	return &v
}
