package xmlsec

import "bytes"

var (
	markComment   = []byte("<!--")
	markCDATA     = []byte("<![CDATA[")
	markProcInst  = []byte("<?")
	markDirective = []byte("<!")
)

// normalizeAttrWhitespace convierte en espacio cada tabulador, salto de línea o retorno
// de carro literal dentro de un valor de atributo ("\r\n" cuenta como uno solo).
// encoding/xml no normaliza valores de atributo y además decodifica igual "&#xA;" que un
// salto literal, por eso se hace sobre los bytes antes de parsear: las referencias de
// carácter siguen intactas.
func normalizeAttrWhitespace(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if data[i] != '<' {
			out = append(out, data[i])
			i++
			continue
		}
		var end int
		switch rest := data[i:]; {
		case bytes.HasPrefix(rest, markComment):
			end = skipPast(data, i+len(markComment), "-->")
		case bytes.HasPrefix(rest, markCDATA):
			end = skipPast(data, i+len(markCDATA), "]]>")
		case bytes.HasPrefix(rest, markProcInst):
			end = skipPast(data, i+len(markProcInst), "?>")
		case bytes.HasPrefix(rest, markDirective):
			// DOCTYPE y compañía se rechazan después; solo hay que no tocarlos.
			end = skipPast(data, i+len(markDirective), ">")
		default:
			out, i = copyTag(out, data, i)
			continue
		}
		out = append(out, data[i:end]...)
		i = end
	}
	return out
}

// copyTag copia una etiqueta desde data[i] hasta su '>' normalizando los valores entre comillas.
func copyTag(out, data []byte, i int) ([]byte, int) {
	var quote byte
	for ; i < len(data); i++ {
		b := data[i]
		if quote == 0 {
			out = append(out, b)
			switch b {
			case '"', '\'':
				quote = b
			case '>':
				return out, i + 1
			}
			continue
		}
		switch b {
		case quote:
			quote = 0
			out = append(out, b)
		case '\r':
			out = append(out, ' ')
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
		case '\n', '\t':
			out = append(out, ' ')
		default:
			out = append(out, b)
		}
	}
	return out, i
}

func skipPast(data []byte, from int, term string) int {
	if from > len(data) {
		return len(data)
	}
	if k := bytes.Index(data[from:], []byte(term)); k >= 0 {
		return from + k + len(term)
	}
	return len(data)
}
