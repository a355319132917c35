package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/page"
	"github.com/arturoeanton/controle-estoque/internal/service"
)

const usersPage = "usuarios"

var userMessages = page.Messages{
	Updated:      "Usuário atualizado com sucesso!",
	Deleted:      "Usuário excluído com sucesso!",
	LoadFailed:   "Erro ao carregar usuários.",
	SaveFailed:   "Erro ao salvar alterações.",
	DeleteFailed: "Erro ao excluir usuário.",
}

// userPageService adapts UserService to the list controller. Users are never
// created from the admin pages.
type userPageService struct {
	users   *service.UserService
	actorID string
}

func (s userPageService) List(ctx context.Context) ([]domain.Profile, error) {
	return s.users.List(ctx)
}

func (s userPageService) Create(context.Context, domain.ProfileUpdate) (*domain.Profile, error) {
	return nil, errUnsupported
}

func (s userPageService) Update(ctx context.Context, id string, u domain.ProfileUpdate) (*domain.Profile, error) {
	return s.users.Update(ctx, id, u)
}

func (s userPageService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, s.actorID, id)
}

// UserHandler serves the admin user pages.
type UserHandler struct {
	users *service.UserService
	flash *Flash
	opts  Options
}

// NewUserHandler creates the user admin handler.
func NewUserHandler(users *service.UserService, flash *Flash, opts Options) *UserHandler {
	return &UserHandler{users: users, flash: flash, opts: opts}
}

func (h *UserHandler) controller(c fiber.Ctx) *page.ListController[domain.Profile, domain.ProfileUpdate] {
	var actorID string
	if uc := userContext(c); uc != nil {
		actorID = uc.UserID
	}
	return page.NewListController[domain.Profile, domain.ProfileUpdate](
		userPageService{users: h.users, actorID: actorID},
		page.Options[domain.Profile]{
			SkipFetch: h.opts.SkipFetch,
			IDOf:      func(p domain.Profile) string { return p.ID },
			NameOf:    func(p domain.Profile) string { return p.Nome },
			Messages:  userMessages,
		},
	)
}

// List shows every user.
func (h *UserHandler) List(c fiber.Ctx) error {
	ctrl := h.controller(c)
	_ = ctrl.Mount(c.Context())
	ctrl.SetMessage(h.flash.Get(c, usersPage))
	return c.JSON(ctrl.View())
}

// EditPage returns the user to edit and the selectable roles.
func (h *UserHandler) EditPage(c fiber.Ctx) error {
	p, err := h.users.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Usuário não encontrado.")
	}
	return c.JSON(fiber.Map{
		"usuario": p,
		"perfis":  []domain.Role{domain.RoleAdministrador, domain.RoleFuncionario},
	})
}

// Update saves the user edit form.
func (h *UserHandler) Update(c fiber.Ctx) error {
	var u domain.ProfileUpdate
	if err := c.Bind().JSON(&u); err != nil {
		return badBody(c)
	}
	if u.Empty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "nenhum campo para atualizar"})
	}

	ctrl := h.controller(c)
	p, err := ctrl.Update(c.Context(), c.Params("id"), u)
	if err != nil {
		return respondError(c, err, userMessages.SaveFailed)
	}
	h.flash.Set(c, usersPage, ctrl.Message())
	return c.JSON(fiber.Map{
		"usuario":  p,
		"message":  ctrl.Message(),
		"redirect": "/" + usersPage,
	})
}

// Delete removes a user once confirmed. Admins cannot delete themselves.
func (h *UserHandler) Delete(c fiber.Ctx) error {
	ctrl := h.controller(c)
	id := c.Params("id")
	if !confirmed(c) {
		p, err := h.users.Get(c.Context(), id)
		if err != nil {
			return respondError(c, err, userMessages.LoadFailed)
		}
		ctrl.Seed(*p)
	}
	if err := ctrl.Delete(c.Context(), id, confirmed(c)); err != nil {
		return respondError(c, err, userMessages.DeleteFailed)
	}
	h.flash.Set(c, usersPage, ctrl.Message())
	return c.JSON(fiber.Map{"message": ctrl.Message()})
}
