package repositories

import (
	"context"

	"contactbook/internal/models"
)

// ContactFilter narrows a contact listing. Query is matched case-insensitively
// as a substring of first name, last name or email.
type ContactFilter struct {
	Query string
	Skip  int
	Limit int
}

// ContactRepository defines the interface for contact data access. Every
// method is scoped to the owning user.
type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	List(ctx context.Context, ownerID string, filter ContactFilter) ([]models.Contact, error)
	ListWithBirthday(ctx context.Context, ownerID string) ([]models.Contact, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.Contact, error)
	Update(ctx context.Context, ownerID, id string, changes map[string]interface{}) (*models.Contact, error)
	Delete(ctx context.Context, ownerID, id string) error
}
