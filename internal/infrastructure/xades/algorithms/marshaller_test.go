package algorithms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/firma-xades/internal/domain/xades"
	"github.com/jhoicas/firma-xades/internal/infrastructure/xades/algorithms"
)

func TestMarshalParameters_SinParametros(t *testing.T) {
	m := algorithms.NewParametersMarshaller()
	for _, alg := range []xades.Algorithm{
		&xades.CanonicalXML10{},
		&xades.CanonicalXML11{WithComments: true},
		&xades.ExclusiveCanonicalXML{},
		&xades.Base64Transform{},
	} {
		params, err := m.MarshalParameters(alg)
		require.NoError(t, err, alg.URI())
		assert.Empty(t, params, alg.URI())
	}
}

func TestMarshalParameters_InclusiveNamespaces(t *testing.T) {
	params, err := algorithms.NewParametersMarshaller().MarshalParameters(&xades.ExclusiveCanonicalXML{
		InclusiveNamespacePrefixes: []string{"ds", "xades"},
	})
	require.NoError(t, err)
	require.Len(t, params, 1)

	p := params[0]
	assert.Equal(t, xades.NamespaceExcC14N, p.Namespace)
	assert.Equal(t, "InclusiveNamespaces", p.Name)
	list, ok := p.Attr("PrefixList")
	require.True(t, ok)
	assert.Equal(t, "ds xades", list)
}

func TestMarshalParameters_XPath2(t *testing.T) {
	filter := xades.NewXPath2Filter(xades.FilterIntersect, "//p:cuerpo").
		Subtract("//p:anexo").
		WithNamespace("p", "urn:politica")

	params, err := algorithms.NewParametersMarshaller().MarshalParameters(filter)
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, xades.NamespaceXPath2, params[0].Namespace)
	assert.Equal(t, "XPath", params[0].Name)
	assert.Equal(t, "//p:cuerpo", params[0].Text)
	op, _ := params[0].Attr("Filter")
	assert.Equal(t, "intersect", op)
	op, _ = params[1].Attr("Filter")
	assert.Equal(t, "subtract", op)
	assert.Equal(t, map[string]string{"p": "urn:politica"}, params[1].NamespaceDecls)

	// Los parámetros no comparten el mapa del algoritmo.
	params[0].NamespaceDecls["q"] = "urn:otro"
	assert.NotContains(t, filter.Namespaces, "q")
}

func TestMarshalParameters_XPath2Invalido(t *testing.T) {
	m := algorithms.NewParametersMarshaller()

	_, err := m.MarshalParameters(&xades.XPath2Filter{})
	assert.ErrorIs(t, err, xades.ErrTransformFailed, "sin filtros")

	_, err = m.MarshalParameters(xades.NewXPath2Filter("xor", "//a"))
	assert.ErrorIs(t, err, xades.ErrTransformFailed, "tipo desconocido")

	_, err = m.MarshalParameters(xades.NewXPath2Filter(xades.FilterUnion, "  "))
	assert.ErrorIs(t, err, xades.ErrTransformFailed, "expresión vacía")
}

func TestMarshalParameters_Generica(t *testing.T) {
	node := xades.XMLNode{Namespace: "urn:t", Prefix: "t", Name: "Param", Text: "1"}
	params, err := algorithms.NewParametersMarshaller().MarshalParameters(xades.NewGenericAlgorithm("urn:t:transform", node))
	require.NoError(t, err)
	assert.Equal(t, []xades.XMLNode{node}, params)

	_, err = algorithms.NewParametersMarshaller().MarshalParameters(xades.NewGenericAlgorithm(""))
	assert.ErrorIs(t, err, xades.ErrTransformFailed)
}

type customAlgorithm struct{ _ byte }

func (*customAlgorithm) URI() string { return "urn:propio" }

func TestMarshalParameters_TipoDesconocido(t *testing.T) {
	_, err := algorithms.NewParametersMarshaller().MarshalParameters(&customAlgorithm{})
	assert.ErrorIs(t, err, xades.ErrUnsupportedAlgorithm)
}
