package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/page"
	"github.com/arturoeanton/controle-estoque/internal/service"
)

const movementsPage = "movimentacoes"

var movementMessages = page.Messages{
	Created:      "Movimentação registrada com sucesso!",
	Updated:      "Movimentação atualizada com sucesso!",
	Deleted:      "Movimentação excluída com sucesso!",
	LoadFailed:   "Erro ao carregar movimentações.",
	SaveFailed:   "Erro ao registrar movimentação. Tente novamente.",
	DeleteFailed: "Erro ao excluir movimentação.",
}

// movementPageService binds the acting user to movement creation.
type movementPageService struct {
	*service.MovementService
	userID string
}

func (s movementPageService) Create(ctx context.Context, in domain.MovementInput) (*domain.Movement, error) {
	return s.MovementService.Create(ctx, s.userID, in)
}

// MovementHandler serves the movement list and forms.
type MovementHandler struct {
	movements *service.MovementService
	products  *service.ProductService
	flash     *Flash
	opts      Options
}

// NewMovementHandler creates the movement handler.
func NewMovementHandler(movements *service.MovementService, products *service.ProductService, flash *Flash, opts Options) *MovementHandler {
	return &MovementHandler{movements: movements, products: products, flash: flash, opts: opts}
}

func (h *MovementHandler) controller(c fiber.Ctx) *page.ListController[domain.Movement, domain.MovementInput] {
	var userID string
	if uc := userContext(c); uc != nil {
		userID = uc.UserID
	}
	svc := movementPageService{MovementService: h.movements, userID: userID}
	return page.NewListController[domain.Movement, domain.MovementInput](svc, page.Options[domain.Movement]{
		SkipFetch: h.opts.SkipFetch,
		IDOf:      func(m domain.Movement) string { return m.ID },
		NameOf: func(m domain.Movement) string {
			return "a movimentação de " + m.ProductNome
		},
		Messages: movementMessages,
	})
}

// List shows every movement, newest first.
func (h *MovementHandler) List(c fiber.Ctx) error {
	ctrl := h.controller(c)
	_ = ctrl.Mount(c.Context())
	ctrl.SetMessage(h.flash.Get(c, movementsPage))
	return c.JSON(ctrl.View())
}

// NewPage lists the products a movement can target.
func (h *MovementHandler) NewPage(c fiber.Ctx) error {
	products, err := h.products.List(c.Context())
	if err != nil {
		return respondError(c, err, "Erro ao carregar produtos.")
	}
	return c.JSON(fiber.Map{
		"produtos": nonNil(products),
		"tipos":    []domain.MovementType{domain.MovementEntrada, domain.MovementSaida},
	})
}

// Create records a movement for the signed-in user.
func (h *MovementHandler) Create(c fiber.Ctx) error {
	var in domain.MovementInput
	if err := c.Bind().JSON(&in); err != nil {
		return badBody(c)
	}

	ctrl := h.controller(c)
	m, err := ctrl.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err, movementMessages.SaveFailed)
	}
	h.flash.Set(c, movementsPage, ctrl.Message())
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"movimentacao": m,
		"message":      ctrl.Message(),
		"redirect":     "/" + movementsPage,
	})
}

// EditPage returns the movement and the product list.
func (h *MovementHandler) EditPage(c fiber.Ctx) error {
	m, err := h.movements.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Movimentação não encontrada.")
	}
	products, err := h.products.List(c.Context())
	if err != nil {
		return respondError(c, err, "Erro ao carregar produtos.")
	}
	return c.JSON(fiber.Map{"movimentacao": m, "produtos": nonNil(products)})
}

// Update saves the movement edit form.
func (h *MovementHandler) Update(c fiber.Ctx) error {
	var in domain.MovementInput
	if err := c.Bind().JSON(&in); err != nil {
		return badBody(c)
	}

	ctrl := h.controller(c)
	m, err := ctrl.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err, "Erro ao atualizar movimentação. Tente novamente.")
	}
	h.flash.Set(c, movementsPage, ctrl.Message())
	return c.JSON(fiber.Map{
		"movimentacao": m,
		"message":      ctrl.Message(),
		"redirect":     "/" + movementsPage,
	})
}

// Delete removes a movement and reverts its stock change.
func (h *MovementHandler) Delete(c fiber.Ctx) error {
	ctrl := h.controller(c)
	id := c.Params("id")
	if !confirmed(c) {
		m, err := h.movements.Get(c.Context(), id)
		if err != nil {
			return respondError(c, err, movementMessages.LoadFailed)
		}
		ctrl.Seed(*m)
	}
	if err := ctrl.Delete(c.Context(), id, confirmed(c)); err != nil {
		return respondError(c, err, movementMessages.DeleteFailed)
	}
	h.flash.Set(c, movementsPage, ctrl.Message())
	return c.JSON(fiber.Map{"message": ctrl.Message()})
}
