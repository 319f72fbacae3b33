package handler

import (
	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/remake/auth"
	"github.com/krishkalaria12/remake/middleware"
	"github.com/krishkalaria12/remake/models"
	"go.uber.org/zap"
)

var userValidator = validator.New()

type newUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	FullName string `json:"name"`
	Password string `json:"password" validate:"required,min=8"`
}

// CreateUser registers a local account.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	type NewUser struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		FullName string `json:"name"`
	}

	input := new(newUserInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Wrong Input Data Format", "data": nil})
	}
	if err := userValidator.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Email, username and a password of at least 8 characters are required", "data": nil})
	}

	var existing models.User
	if err := h.db.Where("email = ? OR username = ?", input.Email, input.Username).Limit(1).Find(&existing).Error; err != nil {
		h.log.Error("user lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "data": nil})
	}
	if existing.ID != 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "error", "message": "Email or username already taken", "data": nil})
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to hash password", "data": nil})
	}

	user := models.User{
		Email:    input.Email,
		Username: input.Username,
		FullName: input.FullName,
		Password: hash,
	}
	if err := h.db.Create(&user).Error; err != nil {
		h.log.Error("failed to create user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create user", "data": nil})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "message": "User created successfully", "data": NewUser{
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
	}})
}

// GetCurrentUser returns the identity resolved from the caller's token.
func (h *Handler) GetCurrentUser(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	return c.JSON(fiber.Map{"status": "success", "message": "User found", "data": fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	}})
}
