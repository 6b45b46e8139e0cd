package algorithms_test

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/firma-xades/internal/domain/xades"
	"github.com/jhoicas/firma-xades/internal/infrastructure/xades/algorithms"
	"github.com/jhoicas/firma-xades/internal/infrastructure/xades/xmlsec"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func mustParse(t *testing.T, s string) *etree.Document {
	t.Helper()
	doc, err := xmlsec.Parse([]byte(s))
	require.NoError(t, err)
	return doc
}

// realize serializa los algoritmos como lo hace el generador.
func realize(t *testing.T, algs ...xades.Algorithm) []xades.TransformData {
	t.Helper()
	m := algorithms.NewParametersMarshaller()
	out := make([]xades.TransformData, 0, len(algs))
	for _, a := range algs {
		params, err := m.MarshalParameters(a)
		require.NoError(t, err)
		out = append(out, xades.TransformData{Algorithm: a.URI(), Params: params})
	}
	return out
}

func execute(t *testing.T, xml string, algs ...xades.Algorithm) ([]byte, error) {
	t.Helper()
	return algorithms.NewTransformExecutor().Execute(mustParse(t, xml), realize(t, algs...))
}

// ──────────────────────────────────────────────────────────────────────────────
// Canonicalización
// ──────────────────────────────────────────────────────────────────────────────

func TestExecute_C14N10EtiquetasVacias(t *testing.T) {
	out, err := execute(t, "<a/>", &xades.CanonicalXML10{})
	require.NoError(t, err)
	assert.Equal(t, "<a></a>", string(out))
}

func TestExecute_SinTransformadasDevuelveC14N(t *testing.T) {
	out, err := execute(t, `<?xml version="1.0"?><a b="1"/>`)
	require.NoError(t, err)
	assert.Equal(t, `<a b="1"></a>`, string(out))
}

func TestExecute_C14NInclusivaConservaNamespaces(t *testing.T) {
	out, err := execute(t, `<r xmlns:v="urn:v"><a/></r>`, &xades.CanonicalXML11{})
	require.NoError(t, err)
	assert.Equal(t, `<r xmlns:v="urn:v"><a></a></r>`, string(out))
}

func TestExecute_C14NComentarios(t *testing.T) {
	const in = `<r><!--nota--><a/></r>`

	with, err := execute(t, in, &xades.CanonicalXML10{WithComments: true})
	require.NoError(t, err)
	assert.Contains(t, string(with), "<!--nota-->")

	without, err := execute(t, in, &xades.CanonicalXML10{})
	require.NoError(t, err)
	assert.NotContains(t, string(without), "nota")
}

func TestExecute_C14NExclusivaOmiteNamespacesNoUsados(t *testing.T) {
	out, err := execute(t, `<r xmlns:u="urn:u" xmlns:v="urn:v"><u:a/></r>`, &xades.ExclusiveCanonicalXML{})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "urn:v")
	assert.Contains(t, string(out), `<u:a xmlns:u="urn:u"></u:a>`)
}

func TestExecute_C14NExclusivaConPrefixList(t *testing.T) {
	out, err := execute(t, `<r xmlns:u="urn:u" xmlns:v="urn:v"><u:a/></r>`,
		&xades.ExclusiveCanonicalXML{InclusiveNamespacePrefixes: []string{"v"}})
	require.NoError(t, err)
	assert.Contains(t, string(out), `xmlns:v="urn:v"`, "los prefijos de InclusiveNamespaces se tratan como en C14N inclusiva")
}

func TestExecute_C14NInstruccionesFueraDelRaiz(t *testing.T) {
	out, err := execute(t, `<?xml-stylesheet href="p.xsl"?><a/>`, &xades.CanonicalXML10{})
	require.NoError(t, err)
	assert.Equal(t, "<?xml-stylesheet href=\"p.xsl\"?>\n<a></a>", string(out))
}

func TestExecute_C14NComentariosFueraDelRaiz(t *testing.T) {
	const in = `<!--c--><a/><!--fin-->`

	with, err := execute(t, in, &xades.CanonicalXML10{WithComments: true})
	require.NoError(t, err)
	assert.Equal(t, "<!--c-->\n<a></a>\n<!--fin-->", string(with))

	without, err := execute(t, in, &xades.CanonicalXML10{})
	require.NoError(t, err)
	assert.Equal(t, "<a></a>", string(without))
}

func TestExecute_NodosDelDocumentoEnTodasLasVariantes(t *testing.T) {
	const in = `<?xml version="1.0"?><?pi x?><!--c--><a/><?fin?>`
	cases := map[string]struct {
		alg  xades.Algorithm
		want string
	}{
		"C14N 1.1":                  {&xades.CanonicalXML11{}, "<?pi x?>\n<a></a>\n<?fin?>"},
		"C14N 1.1 con comentarios":  {&xades.CanonicalXML11{WithComments: true}, "<?pi x?>\n<!--c-->\n<a></a>\n<?fin?>"},
		"exclusiva":                 {&xades.ExclusiveCanonicalXML{}, "<?pi x?>\n<a></a>\n<?fin?>"},
		"exclusiva con comentarios": {&xades.ExclusiveCanonicalXML{WithComments: true}, "<?pi x?>\n<!--c-->\n<a></a>\n<?fin?>"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, in, tc.alg)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(out), "la declaración XML nunca se emite")
		})
	}
}

func TestExecute_C14NNormalizaEspaciosEnAtributos(t *testing.T) {
	out, err := execute(t, "<a b=\"x\ny\"/>", &xades.CanonicalXML10{})
	require.NoError(t, err)
	assert.Equal(t, `<a b="x y"></a>`, string(out))

	out, err = execute(t, `<a b="x&#xA;y"/>`, &xades.CanonicalXML10{})
	require.NoError(t, err)
	assert.Equal(t, `<a b="x&#xA;y"></a>`, string(out), "la referencia de carácter se conserva")
}

// ──────────────────────────────────────────────────────────────────────────────
// XPath Filter 2.0
// ──────────────────────────────────────────────────────────────────────────────

func TestExecute_XPath2Intersect(t *testing.T) {
	out, err := execute(t, `<r><a>1</a><b>2</b></r>`, xades.NewXPath2Filter(xades.FilterIntersect, "/r/a"))
	require.NoError(t, err)
	assert.Equal(t, `<a>1</a>`, string(out), "los ancestros excluidos no se emiten")

	out, err = execute(t, `<root><a>1</a><b>x</b></root>`, xades.NewXPath2Filter(xades.FilterIntersect, "/root/b"))
	require.NoError(t, err)
	assert.Equal(t, `<b>x</b>`, string(out))
}

func TestExecute_XPath2Subtract(t *testing.T) {
	out, err := execute(t, `<r><a>1</a><b>2<c>3</c></b></r>`, xades.NewXPath2Filter(xades.FilterSubtract, "//b"))
	require.NoError(t, err)
	assert.Equal(t, `<r><a>1</a></r>`, string(out))
}

func TestExecute_XPath2SubtractYUnion(t *testing.T) {
	filter := xades.NewXPath2Filter(xades.FilterSubtract, "//b").Union("//c")
	out, err := execute(t, `<r><a>1</a><b>2<c>3</c></b></r>`, filter)
	require.NoError(t, err)
	assert.Equal(t, `<r><a>1</a><c>3</c></r>`, string(out), "ni las etiquetas ni el texto de b se emiten")
}

func TestExecute_XPath2PrefijoPorNamespace(t *testing.T) {
	filter := xades.NewXPath2Filter(xades.FilterSubtract, "//p:sig").WithNamespace("p", "urn:x")
	out, err := execute(t, `<r xmlns:q="urn:x"><a>1</a><q:sig>S</q:sig></r>`, filter)
	require.NoError(t, err)
	assert.Equal(t, `<r xmlns:q="urn:x"><a>1</a></r>`, string(out), "p y q nombran el mismo namespace")
}

func TestExecute_XPath2NombreSinPrefijoSoloSinNamespace(t *testing.T) {
	out, err := execute(t, `<r xmlns:q="urn:x"><q:b>1</q:b><b>2</b></r>`, xades.NewXPath2Filter(xades.FilterSubtract, "//b"))
	require.NoError(t, err)
	assert.Equal(t, `<r xmlns:q="urn:x"><q:b>1</q:b></r>`, string(out))
}

func TestExecute_XPath2PrefijoSinDeclarar(t *testing.T) {
	_, err := execute(t, `<r xmlns:q="urn:x"><q:sig/></r>`, xades.NewXPath2Filter(xades.FilterSubtract, "//q:sig"))
	assert.ErrorIs(t, err, xades.ErrTransformFailed)
}

func TestExecute_XPath2ExpresionesNoSoportadas(t *testing.T) {
	for _, expr := range []string{"//a | //b", "//a/text()", "//@id", "//a[p:b]", "//a[b/c]"} {
		_, err := execute(t, `<r><a/></r>`, xades.NewXPath2Filter(xades.FilterSubtract, expr).WithNamespace("p", "urn:p"))
		assert.ErrorIs(t, err, xades.ErrTransformFailed, expr)
	}
}

func TestExecute_XPath2PredicadoAmbiguo(t *testing.T) {
	_, err := execute(t, `<r xmlns:q="urn:q"><a q:id="1"/></r>`, xades.NewXPath2Filter(xades.FilterSubtract, "//a[@id]"))
	assert.ErrorIs(t, err, xades.ErrTransformFailed, "[@id] no debe aceptar q:id")

	out, err := execute(t, `<r><a id="1"/><a/></r>`, xades.NewXPath2Filter(xades.FilterSubtract, "//a[@id]"))
	require.NoError(t, err)
	assert.Equal(t, `<r><a></a></r>`, string(out))
}

func TestExecute_XPath2HeredaNamespaces(t *testing.T) {
	filter := xades.NewXPath2Filter(xades.FilterIntersect, "//d:b").WithNamespace("d", "urn:d")
	out, err := execute(t, `<r xmlns="urn:d" xmlns:u="urn:u"><a/><b u:k="1"/></r>`, filter)
	require.NoError(t, err)
	assert.Equal(t, `<b xmlns="urn:d" xmlns:u="urn:u" u:k="1"></b>`, string(out))
}

func TestExecute_XPath2DescendienteDeUnExcluido(t *testing.T) {
	filter := xades.NewXPath2Filter(xades.FilterSubtract, "//b").Union("//p:c").WithNamespace("p", "urn:p")
	out, err := execute(t, `<r><b xmlns:p="urn:p">t<p:c>1</p:c></b></r>`, filter, &xades.CanonicalXML10{})
	require.NoError(t, err)
	assert.Equal(t, `<r><p:c xmlns:p="urn:p">1</p:c></r>`, string(out), "el namespace declarado en b sigue en el ámbito")
}

func TestExecute_XPath2AtributosXML(t *testing.T) {
	const in = `<r xml:lang="es"><a>1</a></r>`
	filter := func() *xades.XPath2Filter { return xades.NewXPath2Filter(xades.FilterIntersect, "//a") }

	out, err := execute(t, in, filter(), &xades.CanonicalXML10{})
	require.NoError(t, err)
	assert.Equal(t, `<a xml:lang="es">1</a>`, string(out), "C14N 1.0 hereda xml:* de los ancestros omitidos")

	out, err = execute(t, in, filter(), &xades.ExclusiveCanonicalXML{})
	require.NoError(t, err)
	assert.Equal(t, `<a>1</a>`, string(out))

	_, err = execute(t, `<r xml:base="http://x/"><a/></r>`, filter(), &xades.CanonicalXML11{})
	assert.ErrorIs(t, err, xades.ErrTransformFailed)
}

func TestExecute_XPath2NodosDelDocumento(t *testing.T) {
	const in = `<?pi x?><r><a/></r>`

	out, err := execute(t, in, xades.NewXPath2Filter(xades.FilterSubtract, "//a"))
	require.NoError(t, err)
	assert.Equal(t, "<?pi x?>\n<r></r>", string(out))

	out, err = execute(t, in, xades.NewXPath2Filter(xades.FilterIntersect, "//a"))
	require.NoError(t, err)
	assert.Equal(t, "<a></a>", string(out), "la instrucción de proceso no está en el subárbol de a")

	out, err = execute(t, in, xades.NewXPath2Filter(xades.FilterIntersect, "/"))
	require.NoError(t, err)
	assert.Equal(t, "<?pi x?>\n<r><a></a></r>", string(out))
}

func TestExecute_XPath2EncadenadosSeIntersectan(t *testing.T) {
	out, err := execute(t, `<r><a>1</a><b>2</b></r>`,
		xades.NewXPath2Filter(xades.FilterSubtract, "//b"),
		xades.NewXPath2Filter(xades.FilterUnion, "//b"))
	require.NoError(t, err)
	assert.Equal(t, `<r><a>1</a></r>`, string(out))
}

func TestExecute_XPath2ConjuntoVacio(t *testing.T) {
	out, err := execute(t, `<r><a/></r>`, xades.NewXPath2Filter(xades.FilterIntersect, "//noexiste"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExecute_XPath2ExpresionInvalida(t *testing.T) {
	_, err := execute(t, `<r/>`, xades.NewXPath2Filter(xades.FilterIntersect, "/r[@"))
	assert.ErrorIs(t, err, xades.ErrTransformFailed)
}

func TestExecute_XPath2LuegoBase64(t *testing.T) {
	out, err := execute(t, `<r><a>aGVs</a><b>AAAA</b><c>bG8=</c></r>`,
		xades.NewXPath2Filter(xades.FilterSubtract, "//b"), &xades.Base64Transform{})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out), "solo el texto del node-set")
}

// ──────────────────────────────────────────────────────────────────────────────
// Base64 y encadenamiento
// ──────────────────────────────────────────────────────────────────────────────

func TestExecute_Base64(t *testing.T) {
	out, err := execute(t, "<r>\n  aGVs\n  bG8=\n</r>", &xades.Base64Transform{})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestExecute_Base64LuegoC14N(t *testing.T) {
	// "<a/>" en Base64
	out, err := execute(t, `<r>PGEvPg==</r>`, &xades.Base64Transform{}, &xades.CanonicalXML10{})
	require.NoError(t, err)
	assert.Equal(t, "<a></a>", string(out))
}

func TestExecute_OrdenImporta(t *testing.T) {
	_, err := execute(t, `<r>PGEvPg==</r>`, &xades.CanonicalXML10{}, &xades.Base64Transform{})
	assert.ErrorIs(t, err, xades.ErrTransformFailed,
		"la forma canónica con etiquetas no es Base64 válido")
}

func TestExecute_OctetosNoXML(t *testing.T) {
	// "hola" en Base64: la salida no es XML y C14N no puede parsearla.
	_, err := execute(t, `<r>aG9sYQ==</r>`, &xades.Base64Transform{}, &xades.CanonicalXML10{})
	assert.ErrorIs(t, err, xades.ErrMalformedPolicyDocument)
}

func TestExecute_NoSoportada(t *testing.T) {
	_, err := execute(t, `<r/>`, xades.NewGenericAlgorithm("urn:transformada:propia"))
	assert.ErrorIs(t, err, xades.ErrUnsupportedAlgorithm)
}

func TestExecute_NoModificaElDocumento(t *testing.T) {
	doc := mustParse(t, `<r><a>1</a><b>2</b></r>`)
	_, err := algorithms.NewTransformExecutor().Execute(doc, realize(t, xades.NewXPath2Filter(xades.FilterSubtract, "//b")))
	require.NoError(t, err)

	s, err := doc.WriteToString()
	require.NoError(t, err)
	assert.Equal(t, `<r><a>1</a><b>2</b></r>`, s)
}

func TestSupports(t *testing.T) {
	e := algorithms.NewTransformExecutor()
	for _, uri := range []string{
		xades.AlgC14N10, xades.AlgC14N10WithComments, xades.AlgC14N11, xades.AlgC14N11WithComments,
		xades.AlgExcC14N, xades.AlgExcC14NWithComments, xades.AlgXPath2Filter, xades.AlgBase64,
	} {
		assert.True(t, e.Supports(uri), uri)
	}
	assert.False(t, e.Supports("urn:transformada:propia"))
}
