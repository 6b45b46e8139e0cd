package algorithms

import (
	"fmt"
	"strings"

	"github.com/jhoicas/firma-xades/internal/domain/xades"
)

// Prefijos usados al serializar parámetros.
const (
	prefixExcC14N = "ec"
	prefixXPath2  = "dsig-xpath"
)

// ParametersMarshaller convierte cada Algorithm en los elementos hijos de su ds:Transform.
type ParametersMarshaller struct{}

// NewParametersMarshaller crea el serializador.
func NewParametersMarshaller() *ParametersMarshaller {
	return &ParametersMarshaller{}
}

// MarshalParameters devuelve los parámetros de alg (nil si no tiene).
func (m *ParametersMarshaller) MarshalParameters(alg xades.Algorithm) ([]xades.XMLNode, error) {
	switch a := alg.(type) {
	case *xades.CanonicalXML10, *xades.CanonicalXML11, *xades.Base64Transform:
		return nil, nil
	case *xades.ExclusiveCanonicalXML:
		return marshalExclusive(a), nil
	case *xades.XPath2Filter:
		return marshalXPath2(a)
	case *xades.GenericAlgorithm:
		if a.Algorithm == "" {
			return nil, fmt.Errorf("%w: transformada genérica sin URI", xades.ErrTransformFailed)
		}
		params := make([]xades.XMLNode, len(a.Params))
		copy(params, a.Params)
		return params, nil
	default:
		return nil, &xades.UnsupportedAlgorithmError{URI: alg.URI()}
	}
}

func marshalExclusive(a *xades.ExclusiveCanonicalXML) []xades.XMLNode {
	if len(a.InclusiveNamespacePrefixes) == 0 {
		return nil
	}
	return []xades.XMLNode{{
		Namespace: xades.NamespaceExcC14N,
		Prefix:    prefixExcC14N,
		Name:      "InclusiveNamespaces",
		Attrs: []xades.XMLAttr{
			{Name: "PrefixList", Value: strings.Join(a.InclusiveNamespacePrefixes, " ")},
		},
	}}
}

func marshalXPath2(a *xades.XPath2Filter) ([]xades.XMLNode, error) {
	if len(a.Filters) == 0 {
		return nil, fmt.Errorf("%w: filtro XPath 2.0 sin expresiones", xades.ErrTransformFailed)
	}
	out := make([]xades.XMLNode, 0, len(a.Filters))
	for _, f := range a.Filters {
		switch f.Type {
		case xades.FilterIntersect, xades.FilterSubtract, xades.FilterUnion:
		default:
			return nil, fmt.Errorf("%w: tipo de filtro XPath %q", xades.ErrTransformFailed, f.Type)
		}
		if strings.TrimSpace(f.Expression) == "" {
			return nil, fmt.Errorf("%w: expresión XPath vacía", xades.ErrTransformFailed)
		}
		var decls map[string]string
		if len(a.Namespaces) > 0 {
			decls = make(map[string]string, len(a.Namespaces))
			for p, uri := range a.Namespaces {
				decls[p] = uri
			}
		}
		out = append(out, xades.XMLNode{
			Namespace:      xades.NamespaceXPath2,
			Prefix:         prefixXPath2,
			Name:           "XPath",
			Attrs:          []xades.XMLAttr{{Name: "Filter", Value: string(f.Type)}},
			NamespaceDecls: decls,
			Text:           f.Expression,
		})
	}
	return out, nil
}
