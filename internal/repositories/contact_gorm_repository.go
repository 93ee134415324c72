package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"contactbook/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GORMContactRepository is a GORM implementation of ContactRepository.
type GORMContactRepository struct {
	db *gorm.DB
}

// NewGORMContactRepository creates a new instance of GORMContactRepository.
func NewGORMContactRepository(db *gorm.DB) *GORMContactRepository {
	return &GORMContactRepository{
		db: db,
	}
}

// owned starts a query restricted to the contacts of ownerID.
func (r *GORMContactRepository) owned(ctx context.Context, ownerID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Contact{}).Where("owner_id = ?", ownerID)
}

// Create creates a new contact in the database.
func (r *GORMContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Owner").Create(contact).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("contact with email %s: %w", contact.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// List returns the owner's contacts matching filter in insertion order.
func (r *GORMContactRepository) List(ctx context.Context, ownerID string, filter ContactFilter) ([]models.Contact, error) {
	query := r.owned(ctx, ownerID)
	if filter.Query != "" {
		query = r.search(query, filter.Query)
	}
	if filter.Skip > 0 {
		query = query.Offset(filter.Skip)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	contacts := []models.Contact{}
	if err := query.Order("created_at, id").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// search adds a case-insensitive substring match on first name, last name
// and email. PostgreSQL folds case for any script via ILIKE. SQLite's LIKE
// only folds ASCII letters, so other scripts match with their stored case.
func (r *GORMContactRepository) search(query *gorm.DB, q string) *gorm.DB {
	pattern := "%" + likeEscaper.Replace(q) + "%"
	op := "LIKE"
	if r.db.Dialector.Name() == "postgres" {
		op = "ILIKE"
	}
	return query.Where(
		fmt.Sprintf(`(first_name %[1]s ? ESCAPE '\' OR last_name %[1]s ? ESCAPE '\' OR email %[1]s ? ESCAPE '\')`, op),
		pattern, pattern, pattern,
	)
}

// ListWithBirthday returns every contact of the owner that has a birthday set.
func (r *GORMContactRepository) ListWithBirthday(ctx context.Context, ownerID string) ([]models.Contact, error) {
	contacts := []models.Contact{}
	err := r.owned(ctx, ownerID).
		Where("birthday IS NOT NULL").
		Order("created_at, id").
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts with birthdays: %w", err)
	}
	return contacts, nil
}

// GetByID retrieves a single contact of the owner.
func (r *GORMContactRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Contact, error) {
	var contact models.Contact
	if err := r.owned(ctx, ownerID).Where("id = ?", id).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contact with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contact by ID %s: %w", id, err)
	}
	return &contact, nil
}

// Update writes only the given columns and returns the stored contact.
func (r *GORMContactRepository) Update(ctx context.Context, ownerID, id string, changes map[string]interface{}) (*models.Contact, error) {
	contact, err := r.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return contact, nil
	}

	res := r.owned(ctx, ownerID).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("contact with email %v: %w", changes["email"], ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update contact %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// Deleted between the read and the write.
		return nil, fmt.Errorf("contact with ID %s: %w", id, ErrNotFound)
	}
	return r.GetByID(ctx, ownerID, id)
}

// Delete removes a contact of the owner.
func (r *GORMContactRepository) Delete(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Contact{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete contact %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contact with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
