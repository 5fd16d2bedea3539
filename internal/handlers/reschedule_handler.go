package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type RescheduleHandler struct {
	service *services.RescheduleService
}

func NewRescheduleHandler(service *services.RescheduleService) *RescheduleHandler {
	return &RescheduleHandler{service: service}
}

type proposalRequest struct {
	Date      string  `json:"date"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Message   *string `json:"message"`
}

func (r proposalRequest) toInput() (services.ProposalInput, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(r.Date))
	if err != nil {
		return services.ProposalInput{}, err
	}
	return services.ProposalInput{
		Date:      date,
		StartTime: strings.TrimSpace(r.StartTime),
		EndTime:   strings.TrimSpace(r.EndTime),
		Message:   r.Message,
	}, nil
}

func (h *RescheduleHandler) Propose(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req proposalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	input, err := req.toInput()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	request, err := h.service.Propose(c.Context(), actorID, sessionID, input)
	if err != nil {
		return mapRescheduleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"reschedule": request})
}

func (h *RescheduleHandler) Counter(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req proposalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	input, err := req.toInput()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	request, err := h.service.Counter(c.Context(), actorID, sessionID, input)
	if err != nil {
		return mapRescheduleError(c, err)
	}
	return c.JSON(fiber.Map{"reschedule": request})
}

type resolveRescheduleRequest struct {
	Action     string `json:"action"`
	UseCounter bool   `json:"use_counter"`
}

func (h *RescheduleHandler) Resolve(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req resolveRescheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "accept":
		request, err := h.service.Accept(c.Context(), actorID, sessionID, req.UseCounter)
		if err != nil {
			return mapRescheduleError(c, err)
		}
		return c.JSON(fiber.Map{"reschedule": request})
	case "reject":
		request, err := h.service.Reject(c.Context(), actorID, sessionID)
		if err != nil {
			return mapRescheduleError(c, err)
		}
		return c.JSON(fiber.Map{"reschedule": request})
	case "cancel":
		request, err := h.service.Cancel(c.Context(), actorID, sessionID)
		if err != nil {
			return mapRescheduleError(c, err)
		}
		return c.JSON(fiber.Map{"reschedule": request})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "action must be accept, reject, or cancel"})
	}
}

func (h *RescheduleHandler) GetForSession(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	request, err := h.service.GetForSession(c.Context(), actorID, sessionID)
	if err != nil {
		return mapRescheduleError(c, err)
	}
	return c.JSON(fiber.Map{"reschedule": request})
}

func mapRescheduleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid proposal"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrDuplicateReschedule):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A reschedule request is already pending for this session"})
	case errors.Is(err, services.ErrNotYourTurn):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Waiting on the other party to respond"})
	case errors.Is(err, services.ErrNoopProposal):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Proposal matches the current session time"})
	case errors.Is(err, services.ErrNoCounterProposal):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "No counter proposal to accept"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No active reschedule request"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process reschedule request"})
	}
}
