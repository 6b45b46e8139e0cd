package algorithms

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/jhoicas/firma-xades/internal/domain/xades"
)

// base64Transform decodifica los octetos de entrada o, con un node-set, sus nodos de texto
// en orden de documento.
func base64Transform(in *transformInput, _ []xades.XMLNode) (*transformInput, error) {
	var text string
	if in.octets != nil {
		text = string(in.octets)
	} else {
		var sb strings.Builder
		collectText(in.doc.Root(), in.set, &sb)
		text = sb.String()
	}
	out, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(text), ""))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %w", xades.ErrTransformFailed, err)
	}
	return &transformInput{octets: out}, nil
}

func collectText(el *etree.Element, set *nodeSet, sb *strings.Builder) {
	if el == nil {
		return
	}
	included := set.has(el)
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if included {
				sb.WriteString(t.Data)
			}
		case *etree.Element:
			collectText(t, set, sb)
		}
	}
}
