// Package algorithms implementa los proveedores de algoritmos XMLDSig: motores de digest,
// selección del algoritmo por defecto, serialización de parámetros y ejecución de transformadas.
package algorithms

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"sort"

	"github.com/jhoicas/firma-xades/internal/domain/xades"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
)

// MessageDigestEngineProvider entrega motores de digest identificados por su URI XMLDSig.
type MessageDigestEngineProvider struct {
	engines map[string]func() hash.Hash
}

// NewMessageDigestEngineProvider crea el proveedor con SHA-1/2, SHA-3 y RIPEMD-160.
func NewMessageDigestEngineProvider() *MessageDigestEngineProvider {
	return &MessageDigestEngineProvider{
		engines: map[string]func() hash.Hash{
			xades.AlgSHA1:      sha1.New,
			xades.AlgSHA224:    sha256.New224,
			xades.AlgSHA256:    sha256.New,
			xades.AlgSHA384:    sha512.New384,
			xades.AlgSHA512:    sha512.New,
			xades.AlgSHA3_224:  sha3.New224,
			xades.AlgSHA3_256:  sha3.New256,
			xades.AlgSHA3_384:  sha3.New384,
			xades.AlgSHA3_512:  sha3.New512,
			xades.AlgRIPEMD160: ripemd160.New,
		},
	}
}

// Engine devuelve un hash nuevo para el URI. Cada llamada entrega una instancia
// independiente, por lo que el proveedor se puede compartir entre goroutines.
func (p *MessageDigestEngineProvider) Engine(uri string) (hash.Hash, error) {
	newHash, ok := p.engines[uri]
	if !ok {
		return nil, &xades.UnsupportedAlgorithmError{URI: uri}
	}
	return newHash(), nil
}

// Supported lista los URIs soportados, ordenados.
func (p *MessageDigestEngineProvider) Supported() []string {
	out := make([]string, 0, len(p.engines))
	for uri := range p.engines {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}
