package handlers

import (
	"errors"
	"strings"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub000/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// walletRole maps an authenticated role onto the wallet it owns. Admins hold
// no wallet of their own.
func walletRole(role string) (models.WalletRole, bool) {
	switch role {
	case "user":
		return models.RoleUser, true
	case "mentor":
		return models.RoleMentor, true
	default:
		return "", false
	}
}

type WalletHandler struct {
	service *services.WalletService
}

func NewWalletHandler(service *services.WalletService) *WalletHandler {
	return &WalletHandler{service: service}
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	roleStr, _ := c.Locals("role").(string)
	role, ok := walletRole(roleStr)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	wallet, err := h.service.GetWallet(c.Context(), actorID, role)
	if err != nil {
		return mapWalletError(c, err)
	}
	return c.JSON(fiber.Map{"wallet": wallet})
}

func (h *WalletHandler) Transactions(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	transactions, err := h.service.Transactions(c.Context(), actorID, limit)
	if err != nil {
		return mapWalletError(c, err)
	}
	return c.JSON(fiber.Map{"transactions": transactions})
}

type amountRequest struct {
	Amount string `json:"amount"`
}

func (r amountRequest) parse() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(r.Amount))
}

func (h *WalletHandler) TopUp(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	roleStr, _ := c.Locals("role").(string)
	role, ok := walletRole(roleStr)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	amount, err := req.parse()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be a decimal number"})
	}

	result, err := h.service.TopUp(c.Context(), actorID, role, amount)
	if err != nil {
		return mapWalletError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"wallet": result.Wallet, "order": result.Order})
}

func (h *WalletHandler) RequestWithdrawal(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	roleStr, _ := c.Locals("role").(string)
	role, ok := walletRole(roleStr)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	amount, err := req.parse()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be a decimal number"})
	}

	request, err := h.service.RequestWithdrawal(c.Context(), actorID, role, amount)
	if err != nil {
		return mapWalletError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"withdrawal": request})
}

func (h *WalletHandler) Withdrawals(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	requests, err := h.service.Withdrawals(c.Context(), actorID)
	if err != nil {
		return mapWalletError(c, err)
	}
	return c.JSON(fiber.Map{"withdrawals": requests})
}

type resolveWithdrawalRequest struct {
	Action string `json:"action"`
}

// ResolveWithdrawal approves or rejects a pending withdrawal. Admin only.
func (h *WalletHandler) ResolveWithdrawal(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	withdrawalID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid withdrawal id"})
	}

	var req resolveWithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "approve":
		request, err := h.service.ApproveWithdrawal(c.Context(), withdrawalID)
		if err != nil {
			return mapWalletError(c, err)
		}
		return c.JSON(fiber.Map{"withdrawal": request})
	case "reject":
		request, err := h.service.RejectWithdrawal(c.Context(), withdrawalID)
		if err != nil {
			return mapWalletError(c, err)
		}
		return c.JSON(fiber.Map{"withdrawal": request})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "action must be approve or reject"})
	}
}

func mapWalletError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Amount must be greater than 0"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInsufficientBalance):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "Insufficient wallet balance"})
	case errors.Is(err, services.ErrWithdrawalPending):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A withdrawal request is already pending"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process wallet request"})
	}
}
