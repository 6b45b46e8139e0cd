package xades

// XMLAttr atributo de un XMLNode. Prefix vacío indica atributo sin namespace.
type XMLAttr struct {
	Prefix string
	Name   string
	Value  string
}

// XMLNode describe un elemento XML independiente de cualquier documento.
// Los parámetros de las transformadas se construyen así al serializarlos y el
// codificador los materializa en el árbol destino.
type XMLNode struct {
	Namespace string // URI del namespace del elemento
	Prefix    string
	Name      string
	Attrs     []XMLAttr
	// Declaraciones de namespace adicionales (prefijo -> URI), p. ej. las usadas en expresiones XPath.
	NamespaceDecls map[string]string
	Text           string
	Children       []XMLNode
}

// Attr devuelve el valor del atributo sin prefijo con el nombre dado.
func (n XMLNode) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Prefix == "" && a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// TransformData es una transformada ya realizada: URI + parámetros serializables.
type TransformData struct {
	Algorithm string
	Params    []XMLNode
}

// SignaturePolicyData es el resultado de generar los datos de la propiedad
// SignaturePolicyIdentifier. Identifier nil indica política implícita.
// Transforms es nil si y solo si la intención no declaró transformadas.
type SignaturePolicyData struct {
	Identifier      *ObjectIdentifier
	DigestAlgorithm string
	DigestValue     []byte
	LocationURL     string
	Transforms      []TransformData
}

// Implied indica si los datos corresponden a una política implícita.
func (d *SignaturePolicyData) Implied() bool {
	return d.Identifier == nil
}
