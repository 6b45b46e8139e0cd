// xadesctl reúne utilidades de línea de comandos del servicio de firma:
// cálculo del SigPolicyHash, diagnóstico del certificado y emisión de tokens de cliente.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/firma-xades/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd arma el árbol de comandos. Cada llamada tiene sus propias flags.
func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:          "xadesctl",
		Short:        "Utilidades de firma XAdES",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "nivel de log (trace, debug, info, warn, error)")

	// El log va a stderr para no mezclarse con la salida del comando.
	newLogger := func() *logger.Logger {
		return logger.New(logger.Config{Env: "development", Level: logLevel, Output: os.Stderr})
	}
	root.AddCommand(
		newPolicyHashCmd(newLogger),
		newCertCheckCmd(newLogger),
		newTokenCmd(newLogger),
	)
	return root
}
