package handlers

import (
	"strings"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AvailabilityHandler struct {
	service *services.AvailabilityService
}

func NewAvailabilityHandler(service *services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// AvailableSlots returns the bookable hour labels for a mentor on a date.
func (h *AvailabilityHandler) AvailableSlots(c *fiber.Ctx) error {
	mentorID, err := parseIDParam(c, "mentorId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor id"})
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(c.Query("date")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	hours := c.QueryInt("hours", 1)
	if hours <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hours must be greater than 0"})
	}

	slots, err := h.service.AvailableSlots(c.Context(), mentorID, date, hours)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load availability"})
	}
	return c.JSON(fiber.Map{"slots": slots})
}
