// Package xmlsec parsea XML no confiable (documentos de política descargados de terceros).
package xmlsec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/beevik/etree"
)

var (
	// ErrDoctypeNotAllowed se retorna si el documento trae una declaración DOCTYPE.
	ErrDoctypeNotAllowed = errors.New("xmlsec: declaración DOCTYPE/DTD no permitida")
	// ErrNoRoot se retorna si el documento no tiene elemento raíz.
	ErrNoRoot = errors.New("xmlsec: documento sin elemento raíz")
)

// Parse lee data como documento XML con namespaces.
// Modo estricto, sin mapa de entidades (solo las cinco predefinidas) y sin DOCTYPE:
// ninguna entidad externa ni de parámetro llega a resolverse. Los documentos declarados
// en ISO-8859-1 o Windows-1252 se decodifican a UTF-8. Los espacios literales en valores
// de atributo se normalizan como exige XML 1.0.
func Parse(data []byte) (*etree.Document, error) {
	if len(data) == 0 {
		return nil, ErrNoRoot
	}
	data = normalizeAttrWhitespace(data)
	if err := checkWellFormed(data); err != nil {
		return nil, fmt.Errorf("xmlsec: XML mal formado: %w", err)
	}
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = false
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("xmlsec: parsear XML: %w", err)
	}
	if hasDirective(doc.Child) {
		return nil, ErrDoctypeNotAllowed
	}
	if doc.Root() == nil {
		return nil, ErrNoRoot
	}
	return doc, nil
}

// hasDirective busca cualquier declaración <!...> (DOCTYPE, ENTITY, ELEMENT) en el árbol.
func hasDirective(tokens []etree.Token) bool {
	for _, t := range tokens {
		switch v := t.(type) {
		case *etree.Directive:
			return true
		case *etree.Element:
			if hasDirective(v.Child) {
				return true
			}
		}
	}
	return false
}

// checkWellFormed recorre los tokens con xml.Decoder en modo estricto (valida el cierre de etiquetas).
func checkWellFormed(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.CharsetReader = charsetReader
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if _, ok := tok.(xml.Directive); ok {
			return ErrDoctypeNotAllowed
		}
	}
}
