package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/repository"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type sessionApplicationService interface {
	RequestSession(ctx context.Context, userID int64, input services.RequestSessionInput) (*models.SessionDetail, error)
	ListSessions(ctx context.Context, actorID int64, role string, filter repository.SessionListFilter) ([]models.SessionDetail, error)
	GetSession(ctx context.Context, actorID int64, role string, sessionID int64) (*models.SessionDetail, error)
	Approve(ctx context.Context, mentorID int64, sessionID int64) (*models.SessionDetail, error)
	Reject(ctx context.Context, mentorID int64, sessionID int64, reason string) (*models.SessionDetail, error)
	Start(ctx context.Context, mentorID int64, sessionID int64) (*models.SessionDetail, error)
	Complete(ctx context.Context, mentorID int64, sessionID int64) (*models.SessionDetail, error)
	CancelByMentee(ctx context.Context, userID int64, sessionID int64, reason string) (*models.SessionDetail, error)
	CancelByMentor(ctx context.Context, mentorID int64, sessionID int64, reason string) (*models.SessionDetail, error)
	ConfirmPayment(ctx context.Context, userID int64, sessionID int64) (*models.SessionDetail, error)
}

type SessionHandler struct {
	service sessionApplicationService
}

func NewSessionHandler(service *services.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

type requestSessionRequest struct {
	MentorID         int64   `json:"mentor_id"`
	Topic            string  `json:"topic"`
	Format           string  `json:"format"`
	Date             string  `json:"date"`
	StartTime        string  `json:"start_time"`
	DurationHours    int     `json:"duration_hours"`
	Message          *string `json:"message"`
	CoParticipantIDs []int64 `json:"co_participant_ids"`
}

type sessionActionRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

func (h *SessionHandler) RequestSession(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "user" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req requestSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}
	if req.DurationHours <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration_hours must be greater than 0"})
	}

	detail, err := h.service.RequestSession(c.Context(), userID, services.RequestSessionInput{
		MentorID:         req.MentorID,
		Topic:            req.Topic,
		Format:           req.Format,
		Date:             date,
		StartTime:        strings.TrimSpace(req.StartTime),
		DurationHours:    req.DurationHours,
		Message:          req.Message,
		CoParticipantIDs: req.CoParticipantIDs,
	})
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": detail})
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || (role != "user" && role != "mentor") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	timeframe := strings.TrimSpace(c.Query("timeframe"))
	if timeframe != "" && timeframe != "upcoming" && timeframe != "past" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "timeframe must be upcoming or past"})
	}

	sessions, err := h.service.ListSessions(c.Context(), actorID, role, repository.SessionListFilter{
		Status:    strings.TrimSpace(c.Query("status")),
		Timeframe: timeframe,
	})
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || (role != "user" && role != "mentor") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	detail, err := h.service.GetSession(c.Context(), actorID, role, sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"session": detail})
}

func (h *SessionHandler) UpdateStatus(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || (role != "user" && role != "mentor") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req sessionActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var detail *models.SessionDetail
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "approve":
		if role != "mentor" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}
		detail, err = h.service.Approve(c.Context(), actorID, sessionID)
	case "reject":
		if role != "mentor" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}
		detail, err = h.service.Reject(c.Context(), actorID, sessionID, req.Reason)
	case "start":
		if role != "mentor" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}
		detail, err = h.service.Start(c.Context(), actorID, sessionID)
	case "complete":
		if role != "mentor" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}
		detail, err = h.service.Complete(c.Context(), actorID, sessionID)
	case "cancel":
		if role == "mentor" {
			detail, err = h.service.CancelByMentor(c.Context(), actorID, sessionID, req.Reason)
		} else {
			detail, err = h.service.CancelByMentee(c.Context(), actorID, sessionID, req.Reason)
		}
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "action must be approve, reject, start, complete, or cancel"})
	}
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"session": detail})
}

func (h *SessionHandler) ConfirmPayment(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "user" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	detail, err := h.service.ConfirmPayment(c.Context(), userID, sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"session": detail})
}

func mapSessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrRejectReasonRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrSlotTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Requested slot is already booked"})
	case errors.Is(err, services.ErrInvalidStateTransition),
		errors.Is(err, services.ErrMentorMustReject),
		errors.Is(err, services.ErrCancelCutoff),
		errors.Is(err, services.ErrPaymentWindowClosed):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInsufficientBalance):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrMentorNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mentor not found"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process session request"})
	}
}

func parseActorID(c *fiber.Ctx) (int64, error) {
	actorIDValue := c.Locals("user_id")
	actorIDStr, ok := actorIDValue.(string)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(actorIDStr, 10, 64)
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
