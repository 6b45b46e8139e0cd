// Package marshal materializa los datos de propiedades XAdES como elementos XML (etree).
package marshal

import (
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/beevik/etree"
	"github.com/jhoicas/firma-xades/internal/domain/xades"
)

// Prefijos por defecto cuando el padre no declara los namespaces.
const (
	PrefixDS    = "ds"
	PrefixXAdES = "xades"
)

// SignaturePolicyConverter genera xades:SignaturePolicyIdentifier dentro de
// xades:SignedSignatureProperties.
type SignaturePolicyConverter struct{}

// NewSignaturePolicyConverter crea el conversor.
func NewSignaturePolicyConverter() *SignaturePolicyConverter {
	return &SignaturePolicyConverter{}
}

// ConvertIntoObjectTree agrega el subárbol SignaturePolicyIdentifier como último hijo de
// signedSigProps y lo devuelve. No modifica data.
//
//	SignaturePolicyIdentifier := SignaturePolicyImplied
//	  | SignaturePolicyId { SigPolicyId, ds:Transforms?, SigPolicyHash, SigPolicyQualifiers? }
func (c *SignaturePolicyConverter) ConvertIntoObjectTree(data *xades.SignaturePolicyData, signedSigProps *etree.Element) (*etree.Element, error) {
	if data == nil || signedSigProps == nil {
		return nil, fmt.Errorf("%w: datos o elemento padre nulos", xades.ErrInvalidPolicyData)
	}
	if !data.Implied() && (data.DigestAlgorithm == "" || len(data.DigestValue) == 0) {
		return nil, fmt.Errorf("%w: política identificada sin digest", xades.ErrInvalidPolicyData)
	}

	xp, declareXAdES := resolvePrefix(signedSigProps, xades.NamespaceXAdES, PrefixXAdES)
	spi := signedSigProps.CreateElement(qname(xp, "SignaturePolicyIdentifier"))
	if declareXAdES {
		declareNamespace(spi, xp, xades.NamespaceXAdES)
	}

	if data.Implied() {
		spi.CreateElement(qname(xp, "SignaturePolicyImplied"))
		return spi, nil
	}

	dp, declareDS := resolvePrefix(spi, xades.NamespaceDS, PrefixDS)
	if declareDS {
		declareNamespace(spi, dp, xades.NamespaceDS)
	}

	spid := spi.CreateElement(qname(xp, "SignaturePolicyId"))

	// Identificador
	writeObjectIdentifier(spid.CreateElement(qname(xp, "SigPolicyId")), data.Identifier, xp)

	// Transformadas
	if len(data.Transforms) > 0 {
		trs := spid.CreateElement(qname(dp, "Transforms"))
		for _, td := range data.Transforms {
			tr := trs.CreateElement(qname(dp, "Transform"))
			tr.CreateAttr("Algorithm", td.Algorithm)
			for _, p := range td.Params {
				renderNode(tr, p)
			}
		}
	}

	// Hash
	hash := spid.CreateElement(qname(xp, "SigPolicyHash"))
	hash.CreateElement(qname(dp, "DigestMethod")).CreateAttr("Algorithm", data.DigestAlgorithm)
	hash.CreateElement(qname(dp, "DigestValue")).SetText(base64.StdEncoding.EncodeToString(data.DigestValue))

	// Calificadores
	if data.LocationURL != "" {
		qualifiers := spid.CreateElement(qname(xp, "SigPolicyQualifiers"))
		qualifier := qualifiers.CreateElement(qname(xp, "SigPolicyQualifier"))
		qualifier.CreateElement(qname(xp, "SPURI")).SetText(data.LocationURL)
	}
	return spi, nil
}

// Fragment serializa el subárbol como documento independiente (namespaces declarados en la raíz).
func (c *SignaturePolicyConverter) Fragment(data *xades.SignaturePolicyData) ([]byte, error) {
	holder := etree.NewElement("SignedSignatureProperties")
	spi, err := c.ConvertIntoObjectTree(data, holder)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	doc.SetRoot(spi)
	doc.Indent(2)
	return doc.WriteToBytes()
}

// writeObjectIdentifier codifica xades:ObjectIdentifierType.
func writeObjectIdentifier(parent *etree.Element, id *xades.ObjectIdentifier, xp string) {
	ident := parent.CreateElement(qname(xp, "Identifier"))
	if id.Qualifier != xades.QualifierNone {
		ident.CreateAttr("Qualifier", string(id.Qualifier))
	}
	ident.SetText(id.Value)
	if id.Description != "" {
		parent.CreateElement(qname(xp, "Description")).SetText(id.Description)
	}
	if len(id.DocumentationReferences) > 0 {
		refs := parent.CreateElement(qname(xp, "DocumentationReferences"))
		for _, r := range id.DocumentationReferences {
			refs.CreateElement(qname(xp, "DocumentationReference")).SetText(r)
		}
	}
}

// renderNode crea en parent el elemento descrito por n (y sus hijos).
func renderNode(parent *etree.Element, n xades.XMLNode) *etree.Element {
	prefix, declare := n.Prefix, false
	if n.Namespace != "" {
		prefix, declare = resolvePrefix(parent, n.Namespace, n.Prefix)
	}
	el := parent.CreateElement(qname(prefix, n.Name))
	if declare {
		declareNamespace(el, prefix, n.Namespace)
	}

	extra := make([]string, 0, len(n.NamespaceDecls))
	for p := range n.NamespaceDecls {
		extra = append(extra, p)
	}
	sort.Strings(extra)
	for _, p := range extra {
		if uri, ok := lookupNamespace(el, p); ok && uri == n.NamespaceDecls[p] {
			continue
		}
		declareNamespace(el, p, n.NamespaceDecls[p])
	}

	for _, a := range n.Attrs {
		el.CreateAttr(qname(a.Prefix, a.Name), a.Value)
	}
	if n.Text != "" {
		el.SetText(n.Text)
	}
	for _, child := range n.Children {
		renderNode(el, child)
	}
	return el
}

// resolvePrefix busca el prefijo ligado a uri en el ámbito de el. Si no hay, devuelve
// preferred e indica que se debe declarar.
func resolvePrefix(el *etree.Element, uri, preferred string) (string, bool) {
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if a.Space == "xmlns" && a.Value == uri {
				if bound, ok := lookupNamespace(el, a.Key); ok && bound == uri {
					return a.Key, false
				}
			}
			if a.Space == "" && a.Key == "xmlns" && a.Value == uri {
				if bound, ok := lookupNamespace(el, ""); ok && bound == uri {
					return "", false
				}
			}
		}
	}
	return preferred, true
}

// lookupNamespace devuelve el URI ligado a prefix en el ámbito de el.
func lookupNamespace(el *etree.Element, prefix string) (string, bool) {
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if prefix == "" && a.Space == "" && a.Key == "xmlns" {
				return a.Value, true
			}
			if prefix != "" && a.Space == "xmlns" && a.Key == prefix {
				return a.Value, true
			}
		}
	}
	return "", false
}

func declareNamespace(el *etree.Element, prefix, uri string) {
	if prefix == "" {
		el.CreateAttr("xmlns", uri)
		return
	}
	el.CreateAttr("xmlns:"+prefix, uri)
}

func qname(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}
