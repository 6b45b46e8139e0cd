package usecase

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/jhoicas/firma-xades/internal/application/dto"
	"github.com/jhoicas/firma-xades/internal/domain"
	"github.com/jhoicas/firma-xades/internal/domain/xades"
)

// PolicyDataGenerator genera los datos de SignaturePolicyIdentifier.
type PolicyDataGenerator interface {
	GeneratePropertyData(prop *xades.SignaturePolicyIdentifier) (*xades.SignaturePolicyData, error)
}

// PolicyEncoder serializa los datos como fragmento xades:SignaturePolicyIdentifier.
type PolicyEncoder interface {
	Fragment(data *xades.SignaturePolicyData) ([]byte, error)
}

// PolicyUseCase calcula el SigPolicyHash de un documento de política y arma el fragmento XML.
type PolicyUseCase struct {
	generator PolicyDataGenerator
	encoder   PolicyEncoder
}

// NewPolicyUseCase construye el caso de uso.
func NewPolicyUseCase(generator PolicyDataGenerator, encoder PolicyEncoder) *PolicyUseCase {
	return &PolicyUseCase{generator: generator, encoder: encoder}
}

// Identify construye la intención desde la petición, genera los datos y los codifica.
func (uc *PolicyUseCase) Identify(in dto.PolicyIdentifierRequest) (*dto.PolicyIdentifierResponse, error) {
	prop, err := buildPolicy(in)
	if err != nil {
		return nil, err
	}
	data, err := uc.generator.GeneratePropertyData(prop)
	if err != nil {
		return nil, err
	}
	fragment, err := uc.encoder.Fragment(data)
	if err != nil {
		return nil, err
	}

	out := &dto.PolicyIdentifierResponse{
		Implied:     data.Implied(),
		LocationURL: data.LocationURL,
		XML:         string(fragment),
	}
	if !data.Implied() {
		out.Identifier = data.Identifier.Value
		out.DigestAlgorithm = data.DigestAlgorithm
		out.DigestValue = base64.StdEncoding.EncodeToString(data.DigestValue)
	}
	for _, t := range data.Transforms {
		out.Transforms = append(out.Transforms, t.Algorithm)
	}
	return out, nil
}

func buildPolicy(in dto.PolicyIdentifierRequest) (*xades.SignaturePolicyIdentifier, error) {
	if in.Implied {
		if in.Identifier != "" || in.Document != "" || len(in.Transforms) > 0 {
			return nil, fmt.Errorf("%w: una política implícita no lleva identificador, documento ni transformadas", domain.ErrInvalidInput)
		}
		return xades.NewSignaturePolicyImplied(), nil
	}
	if strings.TrimSpace(in.Identifier) == "" {
		return nil, fmt.Errorf("%w: identifier es requerido", domain.ErrInvalidInput)
	}
	if in.Document == "" {
		return nil, fmt.Errorf("%w: document es requerido", domain.ErrInvalidInput)
	}
	qualifier, err := parseQualifier(in.Qualifier)
	if err != nil {
		return nil, err
	}
	doc, err := base64.StdEncoding.DecodeString(in.Document)
	if err != nil {
		return nil, fmt.Errorf("%w: document no es Base64 válido", domain.ErrInvalidInput)
	}

	id := xades.NewObjectIdentifier(in.Identifier, qualifier).
		WithDescription(in.Description).
		WithDocumentationReferences(in.DocumentationReferences...)
	prop, err := xades.NewSignaturePolicyFromBytes(id, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	prop.WithLocationURL(in.LocationURL)

	for i, tr := range in.Transforms {
		alg, err := toAlgorithm(tr)
		if err != nil {
			return nil, fmt.Errorf("transforms[%d]: %w", i, err)
		}
		if err := prop.WithTransform(alg); err != nil {
			return nil, fmt.Errorf("%w: transforms[%d]: %v", domain.ErrInvalidInput, i, err)
		}
	}
	return prop, nil
}

func parseQualifier(s string) (xades.IdentifierQualifier, error) {
	switch q := xades.IdentifierQualifier(s); q {
	case xades.QualifierNone, xades.QualifierOIDAsURI, xades.QualifierOIDAsURN:
		return q, nil
	default:
		return "", fmt.Errorf("%w: qualifier debe ser OIDAsURI u OIDAsURN", domain.ErrInvalidInput)
	}
}

// toAlgorithm traduce la transformada pedida. Los URIs desconocidos pasan como genéricos
// y el generador los rechaza como no soportados.
func toAlgorithm(tr dto.TransformRequest) (xades.Algorithm, error) {
	switch tr.Algorithm {
	case "":
		return nil, fmt.Errorf("%w: algorithm es requerido", domain.ErrInvalidInput)
	case xades.AlgExcC14N, xades.AlgExcC14NWithComments:
		return &xades.ExclusiveCanonicalXML{
			InclusiveNamespacePrefixes: tr.InclusiveNamespaces,
			WithComments:               tr.Algorithm == xades.AlgExcC14NWithComments,
		}, nil
	case xades.AlgXPath2Filter:
		if len(tr.Filters) == 0 {
			return nil, fmt.Errorf("%w: XPath Filter 2.0 requiere al menos un filtro", domain.ErrInvalidInput)
		}
		f := &xades.XPath2Filter{Namespaces: tr.Namespaces}
		for _, step := range tr.Filters {
			f.Filters = append(f.Filters, xades.XPathFilter{
				Type:       xades.XPathFilterType(step.Filter),
				Expression: step.XPath,
			})
		}
		return f, nil
	default:
		return xades.NewAlgorithm(tr.Algorithm), nil
	}
}
