package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/middleware"
	"github.com/arturoeanton/controle-estoque/internal/session"
)

// AuthHandler serves the login, register, logout and profile pages.
type AuthHandler struct {
	sessions *session.Context
	opts     Options
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(sessions *session.Context, opts Options) *AuthHandler {
	return &AuthHandler{sessions: sessions, opts: opts}
}

// LoginPage describes the login form. An already signed-in user is pointed
// back to where they came from.
func (h *AuthHandler) LoginPage(c fiber.Ctx) error {
	st := middleware.GetSessionState(c)
	return c.JSON(fiber.Map{
		"page":          "login",
		"authenticated": st.Authenticated(),
		"from":          safeFrom(c.Query("from")),
	})
}

// Login signs in and sets the access-token cookie.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		From     string `json:"from"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badBody(c)
	}

	res, err := h.sessions.SignIn(c.Context(), body.Email, body.Password)
	if err != nil {
		return respondError(c, err, "Falha ao entrar. Tente novamente.")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    res.AccessToken,
		Path:     "/",
		Expires:  res.Session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"access_token": res.AccessToken,
		"token_type":   res.TokenType,
		"expires_in":   res.ExpiresIn,
		"profile":      res.Profile,
		"redirect":     safeFrom(body.From),
	})
}

// RegisterPage describes the registration form. The administrador option is
// offered to signed-in administrators only.
func (h *AuthHandler) RegisterPage(c fiber.Ctx) error {
	perfis := []domain.Role{domain.RoleFuncionario}
	if middleware.GetSessionState(c).IsAdmin() {
		perfis = append(perfis, domain.RoleAdministrador)
	}
	return c.JSON(fiber.Map{
		"page":   "register",
		"perfis": perfis,
	})
}

// Register creates an account. The user signs in afterwards.
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var in domain.SignUpInput
	if err := c.Bind().JSON(&in); err != nil {
		return badBody(c)
	}

	profile, err := h.sessions.SignUp(c.Context(), middleware.GetSessionState(c), in)
	if err != nil {
		return respondError(c, err, "Erro ao criar conta. Tente novamente.")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"profile":  profile,
		"message":  "Conta criada com sucesso!",
		"redirect": "/login",
	})
}

// Logout closes the session and clears the cookie.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	if err := h.sessions.SignOut(c.Context(), middleware.GetToken(c)); err != nil {
		return respondError(c, err, "Falha ao sair.")
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"redirect": "/login"})
}

// ProfilePage returns the caller's session and profile.
func (h *AuthHandler) ProfilePage(c fiber.Ctx) error {
	st := middleware.GetSessionState(c)
	return c.JSON(fiber.Map{
		"user":    st.User,
		"profile": st.Profile,
	})
}

// UpdateProfile applies a partial update to the caller's profile.
func (h *AuthHandler) UpdateProfile(c fiber.Ctx) error {
	var u domain.ProfileUpdate
	if err := c.Bind().JSON(&u); err != nil {
		return badBody(c)
	}
	if u.Empty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "nenhum campo para atualizar"})
	}

	profile, err := h.sessions.UpdateProfile(c.Context(), middleware.GetToken(c), u)
	if err != nil {
		return respondError(c, err, "Erro ao atualizar perfil.")
	}
	return c.JSON(fiber.Map{
		"profile": profile,
		"message": "Perfil atualizado com sucesso!",
	})
}

// safeFrom keeps post-login redirects on this site.
func safeFrom(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || from == "/login" {
		return "/"
	}
	return from
}
