package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/firma-xades/internal/application/policy"
	"github.com/jhoicas/firma-xades/internal/domain/xades"
	"github.com/jhoicas/firma-xades/internal/infrastructure/xades/algorithms"
	"github.com/jhoicas/firma-xades/internal/infrastructure/xades/marshal"
	"github.com/jhoicas/firma-xades/pkg/logger"
)

type policyHashOptions struct {
	file        string
	id          string
	qualifier   string
	description string
	url         string
	digest      string
	transforms  []string
}

func newPolicyHashCmd(newLogger func() *logger.Logger) *cobra.Command {
	var opts policyHashOptions
	cmd := &cobra.Command{
		Use:   "policy-hash",
		Short: "Calcula el SigPolicyHash y muestra el fragmento xades:SignaturePolicyIdentifier",
		Long: `Calcula el digest de un documento de política de firma, aplicando antes las
transformadas indicadas, y muestra el fragmento XML que iría en la firma.

Ejemplo:
  xadesctl policy-hash --file politica.xml --id urn:oid:2.16.170.1.1 \
      --url https://ejemplo.gov/politica.pdf \
      --transform http://www.w3.org/TR/2001/REC-xml-c14n-20010315

Sin --id la política es implícita y no se lee ningún documento.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPolicyHash(cmd, opts, newLogger())
		},
	}
	cmd.Flags().StringVar(&opts.file, "file", "", "ruta al documento de política")
	cmd.Flags().StringVar(&opts.id, "id", "", "identificador de la política (vacío = implícita)")
	cmd.Flags().StringVar(&opts.qualifier, "qualifier", "", "calificador del identificador: OIDAsURI u OIDAsURN")
	cmd.Flags().StringVar(&opts.description, "description", "", "descripción de la política")
	cmd.Flags().StringVar(&opts.url, "url", "", "URL pública de la política (SPURI)")
	cmd.Flags().StringVar(&opts.digest, "digest", xades.AlgSHA256, "URI del algoritmo de digest")
	cmd.Flags().StringArrayVar(&opts.transforms, "transform", nil, "URI de transformada; se puede repetir y se aplica en orden")
	return cmd
}

func runPolicyHash(cmd *cobra.Command, opts policyHashOptions, log *logger.Logger) error {
	prop, closeDoc, err := opts.buildPolicy()
	if err != nil {
		log.Error().Err(err).Msg("política inválida")
		return err
	}
	defer closeDoc()

	generator := policy.NewDataGenerator(
		algorithms.NewMessageDigestEngineProvider(),
		algorithms.NewAlgorithmsProvider(opts.digest),
		algorithms.NewParametersMarshaller(),
		algorithms.NewTransformExecutor(),
		log,
	)
	data, err := generator.GeneratePropertyData(prop)
	if err != nil {
		log.Error().Err(err).Str("file", opts.file).Msg("generar SigPolicyHash")
		return err
	}
	fragment, err := marshal.NewSignaturePolicyConverter().Fragment(data)
	if err != nil {
		log.Error().Err(err).Msg("codificar SignaturePolicyIdentifier")
		return err
	}

	out := cmd.OutOrStdout()
	if !data.Implied() {
		fmt.Fprintf(out, "DigestMethod: %s\n", data.DigestAlgorithm)
		fmt.Fprintf(out, "DigestValue:  %s\n\n", base64.StdEncoding.EncodeToString(data.DigestValue))
	}
	_, err = out.Write(fragment)
	return err
}

// buildPolicy arma la intención desde las flags. El archivo se lee una sola vez, al generar.
func (o policyHashOptions) buildPolicy() (*xades.SignaturePolicyIdentifier, func(), error) {
	if o.id == "" {
		if o.file != "" || len(o.transforms) > 0 {
			return nil, nil, fmt.Errorf("--file y --transform requieren --id")
		}
		return xades.NewSignaturePolicyImplied(), func() {}, nil
	}
	if o.file == "" {
		return nil, nil, fmt.Errorf("--id requiere --file")
	}

	qualifier := xades.IdentifierQualifier(o.qualifier)
	switch qualifier {
	case xades.QualifierNone, xades.QualifierOIDAsURI, xades.QualifierOIDAsURN:
	default:
		return nil, nil, fmt.Errorf("calificador desconocido %q", o.qualifier)
	}

	f, err := os.Open(o.file)
	if err != nil {
		return nil, nil, err
	}
	id := xades.NewObjectIdentifier(o.id, qualifier).WithDescription(o.description)
	prop, err := xades.NewSignaturePolicyFromReader(id, f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	prop.WithLocationURL(o.url)
	for _, uri := range o.transforms {
		if err := prop.WithTransform(xades.NewAlgorithm(uri)); err != nil {
			f.Close()
			return nil, nil, err
		}
	}
	return prop, func() { f.Close() }, nil
}
