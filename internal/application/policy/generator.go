// Package policy genera los datos de la propiedad XAdES SignaturePolicyIdentifier:
// digest del documento de política, con o sin transformadas previas.
package policy

import (
	"errors"

	"github.com/jhoicas/firma-xades/internal/domain/xades"
	"github.com/jhoicas/firma-xades/internal/infrastructure/xades/xmlsec"
	"github.com/jhoicas/firma-xades/pkg/logger"
)

// DataGenerator convierte una SignaturePolicyIdentifier en SignaturePolicyData.
// No guarda estado entre llamadas; se puede compartir entre goroutines.
type DataGenerator struct {
	digests    MessageDigestEngineProvider
	algorithms AlgorithmsProvider
	marshaller ParametersMarshaller
	executor   TransformExecutor
	log        *logger.Logger
}

// NewDataGenerator construye el generador con sus proveedores. log puede ser nil.
func NewDataGenerator(
	digests MessageDigestEngineProvider,
	algorithms AlgorithmsProvider,
	marshaller ParametersMarshaller,
	executor TransformExecutor,
	log *logger.Logger,
) *DataGenerator {
	return &DataGenerator{
		digests:    digests,
		algorithms: algorithms,
		marshaller: marshaller,
		executor:   executor,
		log:        logger.OrNop(log),
	}
}

// GeneratePropertyData calcula el digest de la política y arma el resultado.
// Cualquier falla sale como *xades.PropertyDataGenerationError; nunca hay resultado parcial.
// Para una política implícita el documento no se lee.
func (g *DataGenerator) GeneratePropertyData(prop *xades.SignaturePolicyIdentifier) (*xades.SignaturePolicyData, error) {
	if prop == nil {
		return nil, fail(xades.ErrInvalidPolicyData, nil)
	}
	prop.Seal()
	if prop.Implied() {
		return &xades.SignaturePolicyData{}, nil
	}

	digestURI := g.algorithms.DigestAlgorithmForReferenceProperties()
	md, err := g.digests.Engine(digestURI)
	if err != nil {
		return nil, fail(reasonFor(err, xades.ErrUnsupportedAlgorithm), err)
	}

	policyDoc, err := prop.DocumentBytes()
	if err != nil {
		return nil, fail(xades.ErrPolicyDocumentIO, err)
	}

	var realized []xades.TransformData
	toDigest := policyDoc
	if algs := prop.Transforms(); len(algs) > 0 {
		doc, err := xmlsec.Parse(policyDoc)
		if err != nil {
			return nil, fail(xades.ErrMalformedPolicyDocument, err)
		}
		realized = make([]xades.TransformData, 0, len(algs))
		for _, alg := range algs {
			params, err := g.marshaller.MarshalParameters(alg)
			if err != nil {
				return nil, fail(reasonFor(err, xades.ErrTransformFailed), err)
			}
			realized = append(realized, xades.TransformData{Algorithm: alg.URI(), Params: params})
		}
		// Se ejecuta lo mismo que se declarará en ds:Transforms.
		toDigest, err = g.executor.Execute(doc, realized)
		if err != nil {
			return nil, fail(reasonFor(err, xades.ErrTransformFailed), err)
		}
	}

	if _, err := md.Write(toDigest); err != nil {
		return nil, fail(xades.ErrDigestFailed, err)
	}
	digest := md.Sum(nil)

	g.log.Debug().
		Str("digest_alg", digestURI).
		Int("transforms", len(realized)).
		Int("document_bytes", len(policyDoc)).
		Int("digested_bytes", len(toDigest)).
		Msg("digest de política de firma calculado")

	return &xades.SignaturePolicyData{
		Identifier:      prop.Identifier(),
		DigestAlgorithm: digestURI,
		DigestValue:     digest,
		LocationURL:     prop.LocationURL(),
		Transforms:      realized,
	}, nil
}

// Orden de precedencia al clasificar una causa.
var knownReasons = []error{
	xades.ErrUnsupportedAlgorithm,
	xades.ErrPolicyDocumentIO,
	xades.ErrMalformedPolicyDocument,
	xades.ErrCanonicalizationFailed,
	xades.ErrTransformFailed,
	xades.ErrDigestFailed,
}

func reasonFor(err, fallback error) error {
	for _, r := range knownReasons {
		if errors.Is(err, r) {
			return r
		}
	}
	return fallback
}

func fail(reason, cause error) error {
	return &xades.PropertyDataGenerationError{
		Property: xades.PropertySignaturePolicyIdentifier,
		Reason:   reason,
		Err:      cause,
	}
}
