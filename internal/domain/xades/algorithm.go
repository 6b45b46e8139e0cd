package xades

// Namespaces XMLDSig / XAdES.
const (
	NamespaceDS      = "http://www.w3.org/2000/09/xmldsig#"
	NamespaceXAdES   = "http://uri.etsi.org/01903/v1.3.2#"
	NamespaceExcC14N = "http://www.w3.org/2001/10/xml-exc-c14n#"
	NamespaceXPath2  = "http://www.w3.org/2002/06/xmldsig-filter2"
)

// URIs de transformadas.
const (
	AlgC14N10              = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	AlgC14N10WithComments  = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315#WithComments"
	AlgC14N11              = "http://www.w3.org/2006/12/xml-c14n11"
	AlgC14N11WithComments  = "http://www.w3.org/2006/12/xml-c14n11#WithComments"
	AlgExcC14N             = "http://www.w3.org/2001/10/xml-exc-c14n#"
	AlgExcC14NWithComments = "http://www.w3.org/2001/10/xml-exc-c14n#WithComments"
	AlgXPath2Filter        = "http://www.w3.org/2002/06/xmldsig-filter2"
	AlgBase64              = "http://www.w3.org/2000/09/xmldsig#base64"
)

// URIs de digest.
const (
	AlgSHA1      = "http://www.w3.org/2000/09/xmldsig#sha1"
	AlgSHA224    = "http://www.w3.org/2001/04/xmldsig-more#sha224"
	AlgSHA256    = "http://www.w3.org/2001/04/xmlenc#sha256"
	AlgSHA384    = "http://www.w3.org/2001/04/xmldsig-more#sha384"
	AlgSHA512    = "http://www.w3.org/2001/04/xmlenc#sha512"
	AlgSHA3_224  = "http://www.w3.org/2007/05/xmldsig-more#sha3-224"
	AlgSHA3_256  = "http://www.w3.org/2007/05/xmldsig-more#sha3-256"
	AlgSHA3_384  = "http://www.w3.org/2007/05/xmldsig-more#sha3-384"
	AlgSHA3_512  = "http://www.w3.org/2007/05/xmldsig-more#sha3-512"
	AlgRIPEMD160 = "http://www.w3.org/2001/04/xmlenc#ripemd160"
)

// Algorithm es una transformada declarada sobre el documento de política.
// Las implementaciones usan receptores puntero: dos instancias distintas nunca son iguales.
type Algorithm interface {
	URI() string
}

// CanonicalXML10 es C14N 1.0 inclusiva.
type CanonicalXML10 struct {
	WithComments bool
}

func (a *CanonicalXML10) URI() string {
	if a.WithComments {
		return AlgC14N10WithComments
	}
	return AlgC14N10
}

// CanonicalXML11 es C14N 1.1 inclusiva.
type CanonicalXML11 struct {
	WithComments bool
}

func (a *CanonicalXML11) URI() string {
	if a.WithComments {
		return AlgC14N11WithComments
	}
	return AlgC14N11
}

// ExclusiveCanonicalXML es C14N exclusiva; InclusiveNamespacePrefixes se declara
// como ec:InclusiveNamespaces/@PrefixList.
type ExclusiveCanonicalXML struct {
	InclusiveNamespacePrefixes []string
	WithComments               bool
}

func (a *ExclusiveCanonicalXML) URI() string {
	if a.WithComments {
		return AlgExcC14NWithComments
	}
	return AlgExcC14N
}

// XPathFilterType es la operación de un filtro XPath 2.0.
type XPathFilterType string

const (
	FilterIntersect XPathFilterType = "intersect"
	FilterSubtract  XPathFilterType = "subtract"
	FilterUnion     XPathFilterType = "union"
)

// XPathFilter es un paso del filtro: operación + expresión.
type XPathFilter struct {
	Type       XPathFilterType
	Expression string
}

// XPath2Filter es la transformada XML-Signature XPath Filter 2.0.
// Namespaces asocia prefijos usados en las expresiones con su URI.
type XPath2Filter struct {
	Filters    []XPathFilter
	Namespaces map[string]string
}

// NewXPath2Filter crea el filtro con un primer paso.
func NewXPath2Filter(t XPathFilterType, expr string) *XPath2Filter {
	return &XPath2Filter{Filters: []XPathFilter{{Type: t, Expression: expr}}}
}

// Intersect agrega un paso intersect.
func (a *XPath2Filter) Intersect(expr string) *XPath2Filter {
	a.Filters = append(a.Filters, XPathFilter{Type: FilterIntersect, Expression: expr})
	return a
}

// Subtract agrega un paso subtract.
func (a *XPath2Filter) Subtract(expr string) *XPath2Filter {
	a.Filters = append(a.Filters, XPathFilter{Type: FilterSubtract, Expression: expr})
	return a
}

// Union agrega un paso union.
func (a *XPath2Filter) Union(expr string) *XPath2Filter {
	a.Filters = append(a.Filters, XPathFilter{Type: FilterUnion, Expression: expr})
	return a
}

// WithNamespace registra un prefijo usado en las expresiones.
func (a *XPath2Filter) WithNamespace(prefix, uri string) *XPath2Filter {
	if a.Namespaces == nil {
		a.Namespaces = map[string]string{}
	}
	a.Namespaces[prefix] = uri
	return a
}

func (*XPath2Filter) URI() string { return AlgXPath2Filter }

// Base64Transform decodifica el contenido de texto del documento.
type Base64Transform struct {
	_ byte // tamaño no nulo: cada instancia debe tener dirección propia
}

func (*Base64Transform) URI() string { return AlgBase64 }

// GenericAlgorithm permite declarar cualquier URI con parámetros ya construidos.
type GenericAlgorithm struct {
	Algorithm string
	Params    []XMLNode
}

// NewGenericAlgorithm crea una transformada genérica.
func NewGenericAlgorithm(uri string, params ...XMLNode) *GenericAlgorithm {
	return &GenericAlgorithm{Algorithm: uri, Params: params}
}

func (a *GenericAlgorithm) URI() string { return a.Algorithm }

// NewAlgorithm crea una transformada sin parámetros a partir de su URI.
// XPath Filter 2.0 y los URIs desconocidos quedan como GenericAlgorithm.
func NewAlgorithm(uri string) Algorithm {
	switch uri {
	case AlgC14N10, AlgC14N10WithComments:
		return &CanonicalXML10{WithComments: uri == AlgC14N10WithComments}
	case AlgC14N11, AlgC14N11WithComments:
		return &CanonicalXML11{WithComments: uri == AlgC14N11WithComments}
	case AlgExcC14N, AlgExcC14NWithComments:
		return &ExclusiveCanonicalXML{WithComments: uri == AlgExcC14NWithComments}
	case AlgBase64:
		return &Base64Transform{}
	default:
		return NewGenericAlgorithm(uri)
	}
}
