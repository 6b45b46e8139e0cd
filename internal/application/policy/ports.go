package policy

import (
	"hash"

	"github.com/beevik/etree"
	"github.com/jhoicas/firma-xades/internal/domain/xades"
)

// AlgorithmsProvider elige el algoritmo de digest global de la sesión de firma.
type AlgorithmsProvider interface {
	DigestAlgorithmForReferenceProperties() string
}

// MessageDigestEngineProvider entrega un motor de digest para un URI.
// Retorna *xades.UnsupportedAlgorithmError si el URI no se reconoce.
type MessageDigestEngineProvider interface {
	Engine(uri string) (hash.Hash, error)
}

// ParametersMarshaller serializa los parámetros de una transformada (p. ej. un filtro XPath).
type ParametersMarshaller interface {
	MarshalParameters(alg xades.Algorithm) ([]xades.XMLNode, error)
}

// TransformExecutor aplica, en orden, las transformadas ya serializadas sobre el documento
// y devuelve los octetos a digerir.
type TransformExecutor interface {
	Execute(doc *etree.Document, transforms []xades.TransformData) ([]byte, error)
}
