package xades

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// PropertySignaturePolicyIdentifier es el nombre de la propiedad en los errores de generación.
const PropertySignaturePolicyIdentifier = "SignaturePolicyIdentifier"

// documentSource indica cuál de las fuentes del documento es la autoritativa.
type documentSource int

const (
	sourceNone documentSource = iota
	sourceBytes
	sourceStream
	sourceCachedStream
)

// SignaturePolicyIdentifier es la intención del firmante sobre la política de firma:
// política implícita (sin identificador) o identificador + documento de política.
// Se construye una vez antes de firmar; tras Seal las transformadas quedan congeladas.
type SignaturePolicyIdentifier struct {
	identifier  *ObjectIdentifier
	locationURL string

	mu     sync.Mutex
	source documentSource
	data   []byte
	stream io.Reader

	transforms []Algorithm
	sealed     bool
}

// NewSignaturePolicyImplied crea una política implícita (xades:SignaturePolicyImplied).
func NewSignaturePolicyImplied() *SignaturePolicyIdentifier {
	return &SignaturePolicyIdentifier{source: sourceNone}
}

// NewSignaturePolicyFromBytes crea una política explícita con el contenido del documento.
func NewSignaturePolicyFromBytes(id *ObjectIdentifier, data []byte) (*SignaturePolicyIdentifier, error) {
	if data == nil {
		return nil, ErrNilPolicyDocument
	}
	return &SignaturePolicyIdentifier{identifier: id, source: sourceBytes, data: data}, nil
}

// NewSignaturePolicyFromReader crea una política explícita a partir de un stream.
// El stream se consume una sola vez, la primera vez que se piden los bytes.
func NewSignaturePolicyFromReader(id *ObjectIdentifier, r io.Reader) (*SignaturePolicyIdentifier, error) {
	if r == nil {
		return nil, ErrNilPolicyDocument
	}
	return &SignaturePolicyIdentifier{identifier: id, source: sourceStream, stream: r}, nil
}

// Identifier devuelve el identificador de la política; nil indica política implícita.
func (p *SignaturePolicyIdentifier) Identifier() *ObjectIdentifier {
	return p.identifier
}

// Implied indica si la política es implícita.
func (p *SignaturePolicyIdentifier) Implied() bool {
	return p.identifier == nil
}

// WithLocationURL agrega la URL donde se puede obtener la política (calificador SPURI).
func (p *SignaturePolicyIdentifier) WithLocationURL(url string) *SignaturePolicyIdentifier {
	p.locationURL = url
	return p
}

// LocationURL devuelve la URL de la política ("" si no se definió).
func (p *SignaturePolicyIdentifier) LocationURL() string {
	return p.locationURL
}

// WithTransform registra una transformada a aplicar antes del digest.
// Cada transformada produce un ds:Transform dentro de xades:SignaturePolicyId.
// La misma instancia no puede agregarse dos veces.
func (p *SignaturePolicyIdentifier) WithTransform(alg Algorithm) error {
	if alg == nil {
		return ErrNilTransform
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sealed {
		return ErrPolicySealed
	}
	for _, t := range p.transforms {
		if t == alg {
			return fmt.Errorf("%w: %s", ErrTransformAlreadyAdded, alg.URI())
		}
	}
	p.transforms = append(p.transforms, alg)
	return nil
}

// MustWithTransform es WithTransform para construcción estática; un duplicado es un error de programación.
func (p *SignaturePolicyIdentifier) MustWithTransform(algs ...Algorithm) *SignaturePolicyIdentifier {
	for _, a := range algs {
		if err := p.WithTransform(a); err != nil {
			panic(err)
		}
	}
	return p
}

// Transforms devuelve una copia de las transformadas en orden de registro.
func (p *SignaturePolicyIdentifier) Transforms() []Algorithm {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Algorithm, len(p.transforms))
	copy(out, p.transforms)
	return out
}

// Seal congela la lista de transformadas. Lo invoca el generador al consumir la política.
func (p *SignaturePolicyIdentifier) Seal() {
	p.mu.Lock()
	p.sealed = true
	p.mu.Unlock()
}

// Sealed indica si la política ya fue consumida.
func (p *SignaturePolicyIdentifier) Sealed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sealed
}

// DocumentBytes devuelve el contenido del documento de política.
// Si se construyó desde un stream, lo lee completo la primera vez y guarda el resultado.
func (p *SignaturePolicyIdentifier) DocumentBytes() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.source {
	case sourceBytes, sourceCachedStream:
		return p.data, nil
	case sourceStream:
		data, err := io.ReadAll(p.stream)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPolicyDocumentIO, err)
		}
		p.data = data
		p.stream = nil
		p.source = sourceCachedStream
		return p.data, nil
	default:
		return nil, ErrNilPolicyDocument
	}
}

// DocumentReader devuelve un lector posicionado al inicio del documento.
// Construida desde bytes: un lector nuevo en cada llamada. Construida desde un stream:
// el stream original la primera vez; para releer, llamar antes a DocumentBytes.
func (p *SignaturePolicyIdentifier) DocumentReader() io.Reader {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.source {
	case sourceBytes, sourceCachedStream:
		return bytes.NewReader(p.data)
	case sourceStream:
		return p.stream
	default:
		return nil
	}
}
