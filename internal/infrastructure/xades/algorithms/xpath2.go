package algorithms

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/jhoicas/firma-xades/internal/domain/xades"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

type xpathStep struct {
	op       xades.XPathFilterType
	document bool // "/" selecciona el nodo documento
	path     etree.Path
	guards   []nameGuard
}

// nameGuard es un predicado sin prefijo ([@a] o [hijo]). Las rutas etree lo aceptan con
// cualquier prefijo, así que solo es válido si el documento no tiene nombres que lo confundan.
type nameGuard struct {
	attr bool
	name string
}

// xpath2Transform implementa XPath Filter 2.0 con rutas etree (subconjunto de XPath).
// Cada expresión selecciona subárboles completos, se combinan en orden sobre el documento
// entero y la salida es el node-set de entrada restringido a ese resultado. Un elemento
// excluido no aparece aunque algún descendiente siga incluido.
func xpath2Transform(in *transformInput, params []xades.XMLNode) (*transformInput, error) {
	steps, err := parseXPath2Params(params)
	if err != nil {
		return nil, err
	}
	doc, err := in.document()
	if err != nil {
		return nil, err
	}

	filter := wholeDocument(doc)
	for _, s := range steps {
		selected, err := s.evaluate(doc)
		if err != nil {
			return nil, err
		}
		switch s.op {
		case xades.FilterIntersect:
			for el := range filter.elements {
				if !selected.elements[el] {
					delete(filter.elements, el)
				}
			}
			filter.prolog = filter.prolog && selected.prolog
		case xades.FilterSubtract:
			for el := range selected.elements {
				delete(filter.elements, el)
			}
			filter.prolog = filter.prolog && !selected.prolog
		case xades.FilterUnion:
			for el := range selected.elements {
				filter.elements[el] = true
			}
			filter.prolog = filter.prolog || selected.prolog
		}
	}

	if in.set != nil {
		for el := range filter.elements {
			if !in.set.elements[el] {
				delete(filter.elements, el)
			}
		}
		filter.prolog = filter.prolog && in.set.prolog
	}
	return &transformInput{doc: doc, set: filter}, nil
}

func wholeDocument(doc *etree.Document) *nodeSet {
	s := &nodeSet{elements: map[*etree.Element]bool{}, prolog: true}
	markSubtree(doc.Root(), s.elements)
	return s
}

func (s xpathStep) evaluate(doc *etree.Document) (*nodeSet, error) {
	for _, g := range s.guards {
		if err := g.check(doc.Root()); err != nil {
			return nil, err
		}
	}
	if s.document {
		return wholeDocument(doc), nil
	}
	selected := &nodeSet{elements: map[*etree.Element]bool{}}
	for _, el := range doc.FindElementsPath(s.path) {
		if el.Parent() == nil {
			// nodo documento
			return wholeDocument(doc), nil
		}
		markSubtree(el, selected.elements)
	}
	return selected, nil
}

func (g nameGuard) check(el *etree.Element) error {
	if g.attr {
		for _, a := range el.Attr {
			if a.Space != "" && a.Key == g.name {
				return fmt.Errorf("%w: predicado [@%s] ambiguo con %s", xades.ErrTransformFailed, g.name, a.FullKey())
			}
		}
	} else if el.Tag == g.name && el.NamespaceURI() != "" {
		return fmt.Errorf("%w: predicado [%s] ambiguo con %s", xades.ErrTransformFailed, g.name, el.FullTag())
	}
	for _, c := range el.ChildElements() {
		if err := g.check(c); err != nil {
			return err
		}
	}
	return nil
}

func parseXPath2Params(params []xades.XMLNode) ([]xpathStep, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: filtro XPath 2.0 sin parámetros", xades.ErrTransformFailed)
	}
	steps := make([]xpathStep, 0, len(params))
	for _, p := range params {
		if p.Name != "XPath" || p.Namespace != xades.NamespaceXPath2 {
			return nil, fmt.Errorf("%w: parámetro inesperado %s", xades.ErrTransformFailed, p.Name)
		}
		filter, _ := p.Attr("Filter")
		op := xades.XPathFilterType(filter)
		switch op {
		case xades.FilterIntersect, xades.FilterSubtract, xades.FilterUnion:
		default:
			return nil, fmt.Errorf("%w: tipo de filtro XPath %q", xades.ErrTransformFailed, filter)
		}
		expr := strings.TrimSpace(p.Text)
		if expr == "/" {
			steps = append(steps, xpathStep{op: op, document: true})
			continue
		}
		rewritten, guards, err := resolveNames(expr, p.NamespaceDecls)
		if err != nil {
			return nil, fmt.Errorf("%w: expresión XPath %q: %w", xades.ErrTransformFailed, p.Text, err)
		}
		path, err := etree.CompilePath(rewritten)
		if err != nil {
			return nil, fmt.Errorf("%w: expresión XPath %q: %w", xades.ErrTransformFailed, p.Text, err)
		}
		steps = append(steps, xpathStep{op: op, path: path, guards: guards})
	}
	return steps, nil
}

// resolveNames traduce los nombres de la expresión a filtros por namespace URI. Un nombre
// con prefijo se busca en las declaraciones del filtro y uno sin prefijo solo acepta
// elementos sin namespace, como en XPath 1.0.
func resolveNames(expr string, namespaces map[string]string) (string, []nameGuard, error) {
	segments, err := splitSteps(expr)
	if err != nil {
		return "", nil, err
	}
	var guards []nameGuard
	for i, seg := range segments {
		sel, preds := splitPredicates(seg)
		name, err := resolveSelector(sel, namespaces)
		if err != nil {
			return "", nil, err
		}
		g, err := checkPredicates(preds)
		if err != nil {
			return "", nil, err
		}
		guards = append(guards, g...)
		segments[i] = name + preds
	}
	return strings.Join(segments, "/"), guards, nil
}

// splitSteps separa la expresión por '/' fuera de comillas y corchetes.
func splitSteps(expr string) ([]string, error) {
	var (
		out   []string
		quote byte
		depth int
		start int
	)
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth < 0 {
				return nil, errors.New("corchetes desbalanceados")
			}
		case c == '|':
			return nil, errors.New("unión con '|' no soportada")
		case c == '/':
			if depth > 0 {
				return nil, errors.New("ruta dentro de un predicado no soportada")
			}
			out = append(out, expr[start:i])
			start = i + 1
		}
	}
	if quote != 0 || depth != 0 {
		return nil, errors.New("comillas o corchetes sin cerrar")
	}
	return append(out, expr[start:]), nil
}

func splitPredicates(seg string) (string, string) {
	if i := strings.IndexByte(seg, '['); i >= 0 {
		return seg[:i], seg[i:]
	}
	return seg, ""
}

func resolveSelector(sel string, namespaces map[string]string) (string, error) {
	switch sel {
	case "", ".", "..", "*":
		return sel, nil
	}
	if strings.ContainsAny(sel, "()@$ \t") || strings.Contains(sel, "::") {
		return "", fmt.Errorf("paso %q no soportado", sel)
	}
	prefix, local, ok := strings.Cut(sel, ":")
	if !ok {
		return sel + "[namespace-uri()='']", nil
	}
	uri, err := lookupPrefix(prefix, namespaces)
	if err != nil {
		return "", err
	}
	lit, err := literal(uri)
	if err != nil {
		return "", err
	}
	if local == "*" {
		return "*[namespace-uri()=" + lit + "]", nil
	}
	return "*[local-name()='" + local + "'][namespace-uri()=" + lit + "]", nil
}

func lookupPrefix(prefix string, namespaces map[string]string) (string, error) {
	if uri, ok := namespaces[prefix]; ok && uri != "" {
		return uri, nil
	}
	if prefix == "xml" {
		return xmlNamespace, nil
	}
	return "", fmt.Errorf("prefijo %q sin declarar en el filtro", prefix)
}

func literal(v string) (string, error) {
	if strings.ContainsAny(v, "[]") {
		return "", fmt.Errorf("namespace %q no representable en la ruta", v)
	}
	if !strings.Contains(v, "'") {
		return "'" + v + "'", nil
	}
	if !strings.Contains(v, `"`) {
		return `"` + v + `"`, nil
	}
	return "", fmt.Errorf("namespace %q no representable en la ruta", v)
}

// checkPredicates valida los [predicados] de un paso. Los nombres con prefijo no se
// admiten; los de atributo o hijo sin prefijo quedan como nameGuard.
func checkPredicates(preds string) ([]nameGuard, error) {
	var guards []nameGuard
	for preds != "" {
		end := closingBracket(preds)
		if !strings.HasPrefix(preds, "[") || end < 0 {
			return nil, fmt.Errorf("predicado mal formado %q", preds)
		}
		body := preds[1:end]
		preds = preds[end+1:]

		key, _, _ := strings.Cut(body, "=")
		key = strings.TrimSpace(key)
		if strings.Contains(key, ":") {
			return nil, fmt.Errorf("prefijo en el predicado [%s] no soportado", body)
		}
		switch {
		case key == "":
			return nil, errors.New("predicado vacío")
		case strings.HasSuffix(key, "()"):
		case strings.HasPrefix(key, "@"):
			if key == "@xmlns" {
				return nil, fmt.Errorf("predicado [%s] no soportado", body)
			}
			guards = append(guards, nameGuard{attr: true, name: key[1:]})
		default:
			if _, err := strconv.Atoi(key); err != nil {
				guards = append(guards, nameGuard{name: key})
			}
		}
	}
	return guards, nil
}

// closingBracket devuelve la posición del ']' que cierra el primer predicado.
func closingBracket(s string) int {
	var quote byte
	for i := 1; i < len(s); i++ {
		switch c := s[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ']':
			return i
		}
	}
	return -1
}

func markSubtree(el *etree.Element, set map[*etree.Element]bool) {
	set[el] = true
	for _, c := range el.ChildElements() {
		markSubtree(c, set)
	}
}
