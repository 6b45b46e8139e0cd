package main

import (
	"context"
	"crypto/tls"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/firma-xades/internal/application/policy"
	"github.com/jhoicas/firma-xades/internal/application/usecase"
	"github.com/jhoicas/firma-xades/internal/domain/xades"
	"github.com/jhoicas/firma-xades/internal/infrastructure/xades/algorithms"
	"github.com/jhoicas/firma-xades/internal/infrastructure/xades/marshal"
	"github.com/jhoicas/firma-xades/internal/infrastructure/xades/signer"
	httpRouter "github.com/jhoicas/firma-xades/internal/interfaces/http"
	"github.com/jhoicas/firma-xades/pkg/config"
	"github.com/jhoicas/firma-xades/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	digests := algorithms.NewMessageDigestEngineProvider()
	generator := policy.NewDataGenerator(
		digests,
		algorithms.NewAlgorithmsProvider(cfg.XAdES.DigestAlgorithm),
		algorithms.NewParametersMarshaller(),
		algorithms.NewTransformExecutor(),
		log,
	)
	policyUC := usecase.NewPolicyUseCase(generator, marshal.NewSignaturePolicyConverter())

	// Política con la que firma el servicio: implícita salvo que se configure XADES_POLICY_ID.
	signingPolicy := xades.NewSignaturePolicyImplied()
	if !cfg.XAdES.PolicyImplied() {
		f, err := os.Open(cfg.XAdES.PolicyFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.XAdES.PolicyFile).Msg("abrir documento de política")
		}
		defer f.Close()
		signingPolicy, err = xades.NewSignaturePolicyFromReader(
			xades.NewObjectIdentifier(cfg.XAdES.PolicyID, xades.QualifierNone), f)
		if err != nil {
			log.Fatal().Err(err).Msg("política de firma")
		}
		signingPolicy.WithLocationURL(cfg.XAdES.PolicyURL)
	}

	// Sin certificado el endpoint de firma responde 503.
	var cert *tls.Certificate
	if cfg.XAdES.CertPath != "" {
		c, err := signer.LoadCertificate(cfg.XAdES.CertPath, cfg.XAdES.CertKeyPath, cfg.XAdES.CertPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("cargar certificado de firma")
		}
		cert = &c
	} else {
		log.Warn().Msg("XADES_CERT_PATH vacío: firma de documentos deshabilitada")
	}
	signerSvc := signer.NewDigitalSignatureService(signingPolicy, generator, digests, cfg.XAdES.DigestAlgorithm, log)
	signatureUC := usecase.NewSignatureUseCase(signerSvc, cert)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    8 * 1024 * 1024,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:     cfg.App.Name,
		PolicyUC:    policyUC,
		SignatureUC: signatureUC,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		Log:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
