package handlers

import (
	"contactbook/internal/middleware"
	"contactbook/internal/models"
	"contactbook/internal/repositories"
	"contactbook/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const defaultListLimit = 100

// ContactHandler handles HTTP requests for the caller's contacts. Its routes
// must sit behind middleware.AuthRequired.
type ContactHandler struct {
	service  *services.ContactService
	validate *validator.Validate
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the contact routes. /birthdays is registered
// before /:id so it is not captured as an id.
func (h *ContactHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/", h.HandleCreateContact)
	router.Get("/", h.HandleListContacts)
	router.Get("/birthdays", h.HandleUpcomingBirthdays)
	router.Get("/:id", h.HandleGetContact)
	router.Put("/:id", h.HandleUpdateContact)
	router.Delete("/:id", h.HandleDeleteContact)
}

// ListQuery holds the query parameters of GET /contacts/.
type ListQuery struct {
	Skip  int    `query:"skip" validate:"gte=0"`
	Limit int    `query:"limit" validate:"gte=1,lte=1000"`
	Q     string `query:"q"`
}

// HandleCreateContact creates a contact owned by the caller.
func (h *ContactHandler) HandleCreateContact(c *fiber.Ctx) error {
	var req models.ContactCreate
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	contact, err := h.service.CreateContact(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return serviceError(c, err, "create contact")
	}
	return c.Status(fiber.StatusCreated).JSON(contact)
}

// HandleListContacts lists the caller's contacts with optional search and
// offset/limit paging.
//
//	GET /contacts/?q=jane&skip=0&limit=20
func (h *ContactHandler) HandleListContacts(c *fiber.Ctx) error {
	query := ListQuery{Limit: defaultListLimit}
	if err := c.QueryParser(&query); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(query); err != nil {
		return validationFailed(c, err)
	}

	contacts, err := h.service.ListContacts(c.UserContext(), middleware.CurrentUser(c), repositories.ContactFilter{
		Query: query.Q,
		Skip:  query.Skip,
		Limit: query.Limit,
	})
	if err != nil {
		return serviceError(c, err, "retrieve contacts")
	}
	return c.JSON(contacts)
}

// HandleUpcomingBirthdays lists the caller's contacts whose birthday falls
// within the configured window starting today.
func (h *ContactHandler) HandleUpcomingBirthdays(c *fiber.Ctx) error {
	contacts, err := h.service.UpcomingBirthdays(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return serviceError(c, err, "retrieve birthdays")
	}
	return c.JSON(contacts)
}

// HandleGetContact retrieves a single contact by its ID.
func (h *ContactHandler) HandleGetContact(c *fiber.Ctx) error {
	contact, err := h.service.GetContact(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return serviceError(c, err, "retrieve contact")
	}
	return c.JSON(contact)
}

// HandleUpdateContact applies a partial update. Fields missing from the body
// keep their stored values.
func (h *ContactHandler) HandleUpdateContact(c *fiber.Ctx) error {
	var req models.ContactUpdate
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	contact, err := h.service.UpdateContact(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), req)
	if err != nil {
		return serviceError(c, err, "update contact")
	}
	return c.JSON(contact)
}

// HandleDeleteContact deletes a contact by its ID.
func (h *ContactHandler) HandleDeleteContact(c *fiber.Ctx) error {
	if err := h.service.DeleteContact(c.UserContext(), middleware.CurrentUser(c), c.Params("id")); err != nil {
		return serviceError(c, err, "delete contact")
	}
	return c.JSON(fiber.Map{
		"message": "Contact deleted",
	})
}
