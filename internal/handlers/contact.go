package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/middleware"
	"github.com/example/rentify/internal/services"
	"github.com/example/rentify/internal/utils"
)

type ContactHandler struct {
	messages *services.ContactService
}

func NewContactHandler(messages *services.ContactService) *ContactHandler {
	return &ContactHandler{messages: messages}
}

type contactRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=800"`
}

func (h *ContactHandler) Create(c *fiber.Ctx) error {
	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.BadRequest("Invalid request body")
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if err := validateStruct(&req); err != nil {
		return err
	}

	actor, _ := middleware.CurrentActor(c)
	if err := h.messages.Create(c.UserContext(), actor, req.Subject, req.Message); err != nil {
		return err
	}
	return middleware.Created(c, "Your Message sent successfully.", nil)
}

// FindAll defaults to 20 messages per page.
func (h *ContactHandler) FindAll(c *fiber.Ctx) error {
	page, err := h.messages.FindAll(c.UserContext(), utils.ParsePaginationWithLimit(c, 20))
	if err != nil {
		return err
	}
	return middleware.OK(c, "Messages retrieved successfully.", page)
}

func (h *ContactHandler) FindOne(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	message, err := h.messages.FindOne(c.UserContext(), id)
	if err != nil {
		return err
	}
	return middleware.OK(c, "Message retrieved successfully.", message)
}

func (h *ContactHandler) Resolve(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.messages.Resolve(c.UserContext(), id); err != nil {
		return err
	}
	return middleware.OK(c, "Message resolved successfully.", nil)
}

func (h *ContactHandler) Remove(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.messages.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return middleware.OK(c, "Message removed successfully.", nil)
}
