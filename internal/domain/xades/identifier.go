package xades

// IdentifierQualifier indica cómo se expresa un OID en xades:Identifier.
type IdentifierQualifier string

const (
	QualifierNone     IdentifierQualifier = ""
	QualifierOIDAsURI IdentifierQualifier = "OIDAsURI"
	QualifierOIDAsURN IdentifierQualifier = "OIDAsURN"
)

// ObjectIdentifier corresponde a xades:ObjectIdentifierType (SigPolicyId).
type ObjectIdentifier struct {
	Value                   string
	Qualifier               IdentifierQualifier
	Description             string
	DocumentationReferences []string
}

// NewObjectIdentifier crea un identificador con el calificador dado.
func NewObjectIdentifier(value string, qualifier IdentifierQualifier) *ObjectIdentifier {
	return &ObjectIdentifier{Value: value, Qualifier: qualifier}
}

// WithDescription agrega la descripción opcional.
func (o *ObjectIdentifier) WithDescription(d string) *ObjectIdentifier {
	o.Description = d
	return o
}

// WithDocumentationReferences agrega URIs de documentación.
func (o *ObjectIdentifier) WithDocumentationReferences(refs ...string) *ObjectIdentifier {
	o.DocumentationReferences = append(o.DocumentationReferences, refs...)
	return o
}
