package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/arturoeanton/controle-estoque/internal/adapter/store"
	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/service"
)

const emailFlag = "email"

var promoteFlags = withEnvFile(map[string]cobraflags.Flag{
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "",
		Usage: "Email of the registered user to promote to administrador (required)",
	},
})

func newPromoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Grant the administrador role to a registered user",
		Long: `Grant the administrador role to a registered user.

Public registration only creates funcionarios; use this command to create the
first administrador. Further administradores can be registered from the app.`,
		RunE: promoteCommand,
	}
	cobraflags.RegisterMap(cmd, promoteFlags)
	return cmd
}

func promoteCommand(cmd *cobra.Command, _ []string) error {
	email := strings.ToLower(strings.TrimSpace(promoteFlags[emailFlag].GetString()))
	if email == "" {
		return errors.New("--email is required")
	}

	cfg, err := loadConfig(promoteFlags)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database %s: %w", cfg.DSN(), err)
	}
	defer pgStore.Close()

	ident, err := pgStore.GetIdentityByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find %s: %w", email, err)
	}
	current, err := pgStore.GetProfile(ctx, ident.ID)
	if err != nil {
		return fmt.Errorf("load profile %s: %w", email, err)
	}

	admin := domain.RoleAdministrador
	u := domain.ProfileUpdate{Perfil: &admin}
	if err := service.ValidateProfileUpdate(&u, current.Perfil); err != nil {
		return err
	}
	if _, err := pgStore.UpdateProfile(ctx, ident.ID, u); err != nil {
		return fmt.Errorf("promote %s: %w", email, err)
	}
	slog.Info("user promoted", "user_id", ident.ID, "email", email, "previous", current.Perfil)
	return nil
}
