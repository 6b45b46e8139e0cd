package algorithms

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/jhoicas/firma-xades/internal/domain/xades"
	dsig "github.com/russellhaering/goxmldsig"
	"github.com/ucarion/c14n"
)

var (
	errEmptyDocument = errors.New("documento sin elemento raíz")
	// errNodeSetShape marca un node-set que no se puede canonicalizar byte a byte.
	errNodeSetShape = fmt.Errorf("%w: node-set no canonicalizable", xades.ErrTransformFailed)
)

// xmlAttrRule indica qué atributos xml:* hereda un elemento cuyo padre queda fuera del node-set.
type xmlAttrRule int

const (
	inheritXMLAll xmlAttrRule = iota // C14N 1.0
	inheritXML11                     // C14N 1.1: xml:id no se hereda, xml:base no se admite
	inheritXMLNone                   // exclusiva
)

// c14nMethod es una variante de canonicalización sobre un node-set.
// Cada URI tiene un único canonicalizador de goxmldsig.
type c14nMethod struct {
	canonicalizer func() dsig.Canonicalizer
	comments      bool
	xmlAttrs      xmlAttrRule
}

func c14n10(comments bool) c14nMethod {
	m := c14nMethod{canonicalizer: dsig.MakeC14N10RecCanonicalizer, comments: comments, xmlAttrs: inheritXMLAll}
	if comments {
		m.canonicalizer = dsig.MakeC14N10WithCommentsCanonicalizer
	}
	return m
}

func c14n11(comments bool) c14nMethod {
	m := c14nMethod{canonicalizer: dsig.MakeC14N11Canonicalizer, comments: comments, xmlAttrs: inheritXML11}
	if comments {
		m.canonicalizer = dsig.MakeC14N11WithCommentsCanonicalizer
	}
	return m
}

func excC14N(prefixes string, comments bool) c14nMethod {
	return c14nMethod{
		canonicalizer: func() dsig.Canonicalizer {
			if comments {
				return dsig.MakeC14N10ExclusiveWithCommentsCanonicalizerWithPrefixList(prefixes)
			}
			return dsig.MakeC14N10ExclusiveCanonicalizerWithPrefixList(prefixes)
		},
		comments: comments,
		xmlAttrs: inheritXMLNone,
	}
}

// canonicalize serializa el node-set (nil = documento completo) en forma canónica.
// Las instrucciones de proceso y comentarios fuera del raíz se emiten con el salto de
// línea que exige C14N; la declaración XML nunca forma parte de la salida.
func (m c14nMethod) canonicalize(doc *etree.Document, set *nodeSet) ([]byte, error) {
	if doc == nil || doc.Root() == nil {
		return nil, errEmptyDocument
	}
	var buf bytes.Buffer
	afterRoot := false
	outside := func(node string) {
		if afterRoot {
			buf.WriteByte('\n')
		}
		buf.WriteString(node)
		if !afterRoot {
			buf.WriteByte('\n')
		}
	}
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			if err := m.writeElement(&buf, t, set); err != nil {
				return nil, err
			}
			afterRoot = true
		case *etree.ProcInst:
			if t.Target != "xml" && set.hasProlog() {
				outside(procInst(t))
			}
		case *etree.Comment:
			if m.comments && set.hasProlog() {
				outside("<!--" + t.Data + "-->")
			}
		}
	}
	return buf.Bytes(), nil
}

func procInst(p *etree.ProcInst) string {
	if p.Inst == "" {
		return "<?" + p.Target + "?>"
	}
	return "<?" + p.Target + " " + p.Inst + "?>"
}

// writeElement canonicaliza cada elemento incluido cuyo padre no lo está, en orden de documento.
func (m c14nMethod) writeElement(buf *bytes.Buffer, el *etree.Element, set *nodeSet) error {
	if !set.has(el) {
		for _, c := range el.ChildElements() {
			if err := m.writeElement(buf, c, set); err != nil {
				return err
			}
		}
		return nil
	}
	cp, err := m.detach(el, nil, set)
	if err != nil {
		return err
	}
	out, err := m.canonicalizer().Canonicalize(cp)
	if err != nil {
		return err
	}
	buf.Write(out)
	return nil
}

// detach copia el elemento incluido el con lo que hereda de sus ancestros hasta anchor
// (nil = hasta el documento): declaraciones de namespace y, según el método, xml:*.
func (m c14nMethod) detach(el, anchor *etree.Element, set *nodeSet) (*etree.Element, error) {
	cp := shallowCopy(el)
	for p := el.Parent(); p != nil && p != anchor && p.Parent() != nil; p = p.Parent() {
		for _, a := range p.Attr {
			switch {
			case isNamespaceDecl(a):
				if !(a.Space == "xmlns" && a.Key == "xml") && !hasAttr(cp, a.Space, a.Key) {
					cp.CreateAttr(a.FullKey(), a.Value)
				}
			case a.Space == "xml":
				if err := m.inheritXMLAttr(cp, a, anchor != nil); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := m.fill(cp, el, set); err != nil {
		return nil, err
	}
	return cp, nil
}

func (m c14nMethod) inheritXMLAttr(cp *etree.Element, a etree.Attr, island bool) error {
	switch m.xmlAttrs {
	case inheritXMLNone:
		return nil
	case inheritXML11:
		if a.Key == "id" {
			return nil
		}
		if a.Key == "base" {
			return fmt.Errorf("%w: xml:base en un ancestro excluido", errNodeSetShape)
		}
	}
	if island {
		return fmt.Errorf("%w: %s en un elemento excluido con descendientes incluidos", errNodeSetShape, a.FullKey())
	}
	if !hasAttr(cp, a.Space, a.Key) {
		cp.CreateAttr(a.FullKey(), a.Value)
	}
	return nil
}

// fill copia en cp los hijos incluidos de el; los comentarios los descarta el canonicalizador.
func (m c14nMethod) fill(cp, el *etree.Element, set *nodeSet) error {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			if set.has(t) {
				child := shallowCopy(t)
				if err := m.fill(child, t, set); err != nil {
					return err
				}
				cp.AddChild(child)
				continue
			}
			if err := m.islands(cp, el, t, set); err != nil {
				return err
			}
		case *etree.CharData:
			cp.AddChild(etree.NewText(t.Data))
		case *etree.Comment:
			cp.AddChild(etree.NewComment(t.Data))
		case *etree.ProcInst:
			cp.AddChild(etree.NewProcInst(t.Target, t.Inst))
		}
	}
	return nil
}

// islands agrega a cp los descendientes incluidos de un elemento excluido. Sus etiquetas
// y su texto no aparecen, pero los namespaces que declaraba siguen en el ámbito.
func (m c14nMethod) islands(cp, anchor, excluded *etree.Element, set *nodeSet) error {
	for _, c := range excluded.ChildElements() {
		if !set.has(c) {
			if err := m.islands(cp, anchor, c, set); err != nil {
				return err
			}
			continue
		}
		child, err := m.detach(c, anchor, set)
		if err != nil {
			return err
		}
		cp.AddChild(child)
	}
	return nil
}

func shallowCopy(el *etree.Element) *etree.Element {
	cp := etree.NewElement(el.Tag)
	cp.Space = el.Space
	for _, a := range el.Attr {
		cp.CreateAttr(a.FullKey(), a.Value)
	}
	return cp
}

func isNamespaceDecl(a etree.Attr) bool {
	return a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns")
}

func hasAttr(el *etree.Element, space, key string) bool {
	for _, a := range el.Attr {
		if a.Space == space && a.Key == key {
			return true
		}
	}
	return false
}

// CanonicalizeExclusive aplica C14N exclusiva (sin comentarios) con ucarion/c14n.
// La usa el signer para SignedInfo y SignedProperties, que construye él mismo.
func CanonicalizeExclusive(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

func c14nTransform(method func(params []xades.XMLNode) (c14nMethod, error)) transformer {
	return transformerFunc(func(in *transformInput, params []xades.XMLNode) (*transformInput, error) {
		m, err := method(params)
		if err != nil {
			return nil, err
		}
		doc, err := in.document()
		if err != nil {
			return nil, err
		}
		out, err := m.canonicalize(doc, in.set)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", xades.ErrCanonicalizationFailed, err)
		}
		return &transformInput{octets: out}, nil
	})
}

func inclusive(method func(comments bool) c14nMethod, comments bool) func([]xades.XMLNode) (c14nMethod, error) {
	return func([]xades.XMLNode) (c14nMethod, error) {
		return method(comments), nil
	}
}

func exclusive(comments bool) func([]xades.XMLNode) (c14nMethod, error) {
	return func(params []xades.XMLNode) (c14nMethod, error) {
		prefixes, err := inclusivePrefixList(params)
		if err != nil {
			return c14nMethod{}, err
		}
		return excC14N(prefixes, comments), nil
	}
}

// inclusivePrefixList lee ec:InclusiveNamespaces/@PrefixList de los parámetros.
func inclusivePrefixList(params []xades.XMLNode) (string, error) {
	for _, p := range params {
		if p.Name != "InclusiveNamespaces" || p.Namespace != xades.NamespaceExcC14N {
			return "", fmt.Errorf("%w: parámetro inesperado %s", xades.ErrTransformFailed, p.Name)
		}
		list, _ := p.Attr("PrefixList")
		return strings.Join(strings.Fields(list), " "), nil
	}
	return "", nil
}
