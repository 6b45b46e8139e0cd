package xmlsec

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Codificaciones de un byte habituales en documentos de política publicados por entes
// públicos. UTF-8 lo resuelve encoding/xml sin pasar por aquí.
var charsets = map[string]encoding.Encoding{
	"iso-8859-1":   charmap.ISO8859_1,
	"iso8859-1":    charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"iso8859-15":   charmap.ISO8859_15,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

// ErrUnsupportedCharset se retorna si la declaración XML pide una codificación desconocida.
var ErrUnsupportedCharset = fmt.Errorf("xmlsec: codificación no soportada")

// charsetReader decodifica a UTF-8 la entrada declarada con otra codificación.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(charset))
	if name == "us-ascii" || name == "ascii" {
		return input, nil
	}
	enc, ok := charsets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCharset, charset)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}
