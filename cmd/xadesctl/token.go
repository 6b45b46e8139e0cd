package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/firma-xades/pkg/config"
	"github.com/jhoicas/firma-xades/pkg/jwt"
	"github.com/jhoicas/firma-xades/pkg/logger"
)

func newTokenCmd(newLogger func() *logger.Logger) *cobra.Command {
	var (
		clientID   string
		expMinutes int
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un token de cliente para la API (usa JWT_SECRET y JWT_ISSUER)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runToken(cmd, clientID, expMinutes, newLogger())
		},
	}
	cmd.Flags().StringVar(&clientID, "client-id", "", "identificador del cliente")
	cmd.Flags().IntVar(&expMinutes, "exp", 60, "minutos de validez")
	_ = cmd.MarkFlagRequired("client-id")
	return cmd
}

func runToken(cmd *cobra.Command, clientID string, expMinutes int, log *logger.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET vacío: la API no exige autenticación")
	}
	token, err := jwt.Generate(cfg.JWT.Secret, clientID, cfg.JWT.Issuer, expMinutes)
	if err != nil {
		return err
	}
	log.Info().Str("client_id", clientID).Int("exp_minutes", expMinutes).Msg("token emitido")
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
