package algorithms

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/jhoicas/firma-xades/internal/domain/xades"
	"github.com/jhoicas/firma-xades/internal/infrastructure/xades/xmlsec"
)

// transformInput es lo que fluye entre transformadas: un node-set sobre doc u octetos.
// set nil significa el documento completo.
type transformInput struct {
	doc    *etree.Document
	set    *nodeSet
	octets []byte
}

// nodeSet es el subconjunto del documento que deja un filtro XPath. Los atributos, los
// namespaces y el texto de un elemento siguen su inclusión.
type nodeSet struct {
	elements map[*etree.Element]bool
	prolog   bool // instrucciones de proceso y comentarios fuera del raíz
}

func (s *nodeSet) has(el *etree.Element) bool {
	return s == nil || s.elements[el]
}

func (s *nodeSet) hasProlog() bool {
	return s == nil || s.prolog
}

// document devuelve el node-set; si la entrada son octetos los parsea con la configuración segura.
func (in *transformInput) document() (*etree.Document, error) {
	if in.doc != nil {
		return in.doc, nil
	}
	doc, err := xmlsec.Parse(in.octets)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", xades.ErrMalformedPolicyDocument, err)
	}
	in.doc = doc
	return doc, nil
}

// bytes devuelve los octetos; un node-set se convierte con C14N 1.0 inclusiva (regla XMLDSig).
func (in *transformInput) bytes() ([]byte, error) {
	if in.octets != nil {
		return in.octets, nil
	}
	return c14n10(false).canonicalize(in.doc, in.set)
}

// transformer ejecuta una transformada con sus parámetros ya serializados.
type transformer interface {
	transform(in *transformInput, params []xades.XMLNode) (*transformInput, error)
}

type transformerFunc func(in *transformInput, params []xades.XMLNode) (*transformInput, error)

func (f transformerFunc) transform(in *transformInput, params []xades.XMLNode) (*transformInput, error) {
	return f(in, params)
}

// TransformExecutor ejecuta cadenas de transformadas identificadas por URI.
// No guarda estado entre ejecuciones.
type TransformExecutor struct {
	transformers map[string]transformer
}

// NewTransformExecutor registra las transformadas soportadas.
func NewTransformExecutor() *TransformExecutor {
	return &TransformExecutor{
		transformers: map[string]transformer{
			xades.AlgC14N10:              c14nTransform(inclusive(c14n10, false)),
			xades.AlgC14N10WithComments:  c14nTransform(inclusive(c14n10, true)),
			xades.AlgC14N11:              c14nTransform(inclusive(c14n11, false)),
			xades.AlgC14N11WithComments:  c14nTransform(inclusive(c14n11, true)),
			xades.AlgExcC14N:             c14nTransform(exclusive(false)),
			xades.AlgExcC14NWithComments: c14nTransform(exclusive(true)),
			xades.AlgXPath2Filter:        transformerFunc(xpath2Transform),
			xades.AlgBase64:              transformerFunc(base64Transform),
		},
	}
}

// Supports indica si el URI tiene implementación.
func (e *TransformExecutor) Supports(uri string) bool {
	_, ok := e.transformers[uri]
	return ok
}

// Execute aplica las transformadas en orden sobre una copia de doc y devuelve los octetos
// resultantes. Se ejecuta exactamente lo declarado en transforms (URI + parámetros).
func (e *TransformExecutor) Execute(doc *etree.Document, transforms []xades.TransformData) ([]byte, error) {
	if doc == nil || doc.Root() == nil {
		return nil, fmt.Errorf("%w: documento vacío", xades.ErrMalformedPolicyDocument)
	}
	in := &transformInput{doc: doc.Copy()}
	for i, td := range transforms {
		t, ok := e.transformers[td.Algorithm]
		if !ok {
			return nil, &xades.UnsupportedAlgorithmError{URI: td.Algorithm}
		}
		out, err := t.transform(in, td.Params)
		if err != nil {
			return nil, fmt.Errorf("transformada %d (%s): %w", i+1, td.Algorithm, err)
		}
		in = out
	}
	out, err := in.bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", xades.ErrCanonicalizationFailed, err)
	}
	return out, nil
}
