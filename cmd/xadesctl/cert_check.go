package main

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/firma-xades/internal/infrastructure/xades/signer"
	"github.com/jhoicas/firma-xades/pkg/config"
	"github.com/jhoicas/firma-xades/pkg/logger"
)

type certCheckOptions struct {
	cert     string
	key      string
	password string
}

func newCertCheckCmd(newLogger func() *logger.Logger) *cobra.Command {
	var opts certCheckOptions
	cmd := &cobra.Command{
		Use:   "cert-check",
		Short: "Verifica que el certificado de firma se pueda cargar",
		Long: `Carga el certificado (.p12/.pfx o PEM) tal como lo hace el servicio y muestra
sujeto, emisor, serial y vigencia. Sin flags usa XADES_CERT_PATH, XADES_CERT_KEY_PATH
y XADES_CERT_PASSWORD.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCertCheck(cmd, opts, newLogger())
		},
	}
	cmd.Flags().StringVar(&opts.cert, "cert", "", "ruta al certificado")
	cmd.Flags().StringVar(&opts.key, "key", "", "ruta a la llave PEM (si va aparte)")
	cmd.Flags().StringVar(&opts.password, "password", "", "contraseña del .p12")
	return cmd
}

func runCertCheck(cmd *cobra.Command, opts certCheckOptions, log *logger.Logger) error {
	certPath, keyPath, password := opts.cert, opts.key, opts.password
	if certPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		certPath, keyPath, password = cfg.XAdES.CertPath, cfg.XAdES.CertKeyPath, cfg.XAdES.CertPassword
	}

	cert, err := signer.LoadCertificate(certPath, keyPath, password)
	if err != nil {
		log.Error().Err(err).Str("cert", certPath).Msg("cargar certificado")
		return err
	}
	leaf, err := signer.Leaf(cert)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Sujeto:   %s\n", leaf.Subject)
	fmt.Fprintf(out, "Emisor:   %s\n", leaf.Issuer)
	fmt.Fprintf(out, "Serial:   %s\n", leaf.SerialNumber)
	fmt.Fprintf(out, "Vigencia: %s - %s\n", leaf.NotBefore.Format(time.RFC3339), leaf.NotAfter.Format(time.RFC3339))

	if _, ok := cert.PrivateKey.(*rsa.PrivateKey); !ok {
		return fmt.Errorf("la llave privada no es RSA: el servicio firma con RSA-SHA256")
	}
	if now := time.Now(); now.Before(leaf.NotBefore) || now.After(leaf.NotAfter) {
		log.Warn().Time("not_after", leaf.NotAfter).Msg("certificado fuera de vigencia")
	}
	return nil
}
