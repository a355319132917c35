package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/controle-estoque/internal/middleware"
)

// MenuItem is one entry of the home menu.
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

var (
	staffMenu = []MenuItem{
		{Label: "Cadastrar Produto", Path: "/cadastro-produto"},
		{Label: "Consultar Estoque", Path: "/consulta-estoque"},
		{Label: "Movimentações", Path: "/movimentacoes"},
		{Label: "Fornecedores", Path: "/fornecedores"},
		{Label: "Meu Perfil", Path: "/perfil"},
	}
	adminMenu = []MenuItem{
		{Label: "Usuários", Path: "/usuarios"},
		{Label: "Auditoria", Path: "/auditoria"},
	}
)

// SessionCounter reports how many sessions the server is tracking.
type SessionCounter interface {
	Len() int
}

// HomeHandler serves the home page, the not-found page and the health check.
type HomeHandler struct {
	appName  string
	started  time.Time
	sessions SessionCounter
}

// NewHomeHandler creates the home handler. sessions may be nil.
func NewHomeHandler(appName string, sessions SessionCounter) *HomeHandler {
	return &HomeHandler{appName: appName, started: time.Now(), sessions: sessions}
}

// Home greets the user and lists the menu. Admin entries are shown to
// administrators only.
func (h *HomeHandler) Home(c fiber.Ctx) error {
	st := middleware.GetSessionState(c)

	menu := append([]MenuItem{}, staffMenu...)
	if st.IsAdmin() {
		menu = append(menu, adminMenu...)
	}

	var perfil string
	if st.Profile != nil {
		perfil = string(st.Profile.Perfil)
	}
	return c.JSON(fiber.Map{
		"app":      h.appName,
		"greeting": "Olá, " + st.DisplayName(),
		"perfil":   perfil,
		"is_admin": st.IsAdmin(),
		"menu":     menu,
	})
}

// NotFound is the catch-all page.
func (h *HomeHandler) NotFound(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":    "Página não encontrada",
		"message":  "A página que você está procurando não existe.",
		"redirect": "/",
	})
}

// Health reports liveness and the number of tracked sessions.
func (h *HomeHandler) Health(c fiber.Ctx) error {
	body := fiber.Map{
		"status": "ok",
		"app":    h.appName,
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}
	if h.sessions != nil {
		body["sessions"] = h.sessions.Len()
	}
	return c.JSON(body)
}
