package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"contactbook/internal/models"
	"contactbook/internal/repositories"

	"github.com/rs/zerolog/log"
)

// Routing keys for contact lifecycle events.
const (
	EventContactCreated = "contact.created"
	EventContactUpdated = "contact.updated"
	EventContactDeleted = "contact.deleted"
)

// EventPublisher delivers contact lifecycle events to a broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ContactEvent is the payload published for every contact change.
type ContactEvent struct {
	Type       string    `json:"type"`
	ContactID  string    `json:"contact_id"`
	OwnerID    string    `json:"owner_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ContactService handles business logic related to contacts. All operations
// act on the contacts of the given owner only.
type ContactService struct {
	repo       repositories.ContactRepository
	publisher  EventPublisher
	windowDays int
	now        func() time.Time
}

// NewContactService creates a new ContactService. publisher may be nil.
func NewContactService(repo repositories.ContactRepository, publisher EventPublisher, birthdayWindowDays int) *ContactService {
	return &ContactService{
		repo:       repo,
		publisher:  publisher,
		windowDays: birthdayWindowDays,
		now:        time.Now,
	}
}

// WithClock replaces the time source used to determine today.
func (s *ContactService) WithClock(now func() time.Time) *ContactService {
	s.now = now
	return s
}

// CreateContact stores a new contact owned by owner.
func (s *ContactService) CreateContact(ctx context.Context, owner *models.User, in models.ContactCreate) (*models.Contact, error) {
	contact := &models.Contact{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Phone:          in.Phone,
		Birthday:       in.Birthday,
		AdditionalInfo: in.AdditionalInfo,
		OwnerID:        owner.ID,
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, translate(err)
	}
	s.publish(EventContactCreated, contact.ID, owner.ID)
	return contact, nil
}

// ListContacts returns the owner's contacts matching filter.
func (s *ContactService) ListContacts(ctx context.Context, owner *models.User, filter repositories.ContactFilter) ([]models.Contact, error) {
	contacts, err := s.repo.List(ctx, owner.ID, filter)
	if err != nil {
		return nil, translate(err)
	}
	return contacts, nil
}

// UpcomingBirthdays returns the owner's contacts with a birthday in the
// configured window starting today.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, owner *models.User) ([]models.Contact, error) {
	contacts, err := s.repo.ListWithBirthday(ctx, owner.ID)
	if err != nil {
		return nil, translate(err)
	}
	return UpcomingBirthdays(contacts, s.now(), s.windowDays), nil
}

// GetContact returns one of the owner's contacts.
func (s *ContactService) GetContact(ctx context.Context, owner *models.User, id string) (*models.Contact, error) {
	contact, err := s.repo.GetByID(ctx, owner.ID, id)
	if err != nil {
		return nil, translate(err)
	}
	return contact, nil
}

// UpdateContact merges the fields present in update into the contact.
func (s *ContactService) UpdateContact(ctx context.Context, owner *models.User, id string, update models.ContactUpdate) (*models.Contact, error) {
	contact, err := s.repo.Update(ctx, owner.ID, id, update.Changes())
	if err != nil {
		return nil, translate(err)
	}
	s.publish(EventContactUpdated, contact.ID, owner.ID)
	return contact, nil
}

// DeleteContact removes one of the owner's contacts.
func (s *ContactService) DeleteContact(ctx context.Context, owner *models.User, id string) error {
	if err := s.repo.Delete(ctx, owner.ID, id); err != nil {
		return translate(err)
	}
	s.publish(EventContactDeleted, id, owner.ID)
	return nil
}

// publish is best effort; a broker failure never fails the request.
func (s *ContactService) publish(eventType, contactID, ownerID string) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(ContactEvent{
		Type:       eventType,
		ContactID:  contactID,
		OwnerID:    ownerID,
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("contact_id", contactID).Msg("failed to marshal contact event")
		return
	}
	if err := s.publisher.Publish(eventType, body); err != nil {
		log.Warn().Err(err).Str("event", eventType).Str("contact_id", contactID).Msg("failed to publish contact event")
	}
}

// translate maps repository errors onto service errors.
func translate(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("contact %w", ErrNotFound)
	case errors.Is(err, repositories.ErrDuplicate):
		return fmt.Errorf("contact with this email %w: %w", ErrConflict, err)
	default:
		return err
	}
}
