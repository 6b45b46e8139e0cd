package dto

// XPathFilterRequest paso de un filtro XPath 2.0.
type XPathFilterRequest struct {
	Filter string `json:"filter"` // intersect | subtract | union
	XPath  string `json:"xpath"`
}

// TransformRequest transformada a aplicar al documento de política antes del digest.
type TransformRequest struct {
	Algorithm           string               `json:"algorithm"` // URI
	InclusiveNamespaces []string             `json:"inclusive_namespaces,omitempty"`
	Filters             []XPathFilterRequest `json:"filters,omitempty"`
	Namespaces          map[string]string    `json:"namespaces,omitempty"`
}

// PolicyIdentifierRequest entrada de POST /api/signature-policy/identifier.
// Document es el documento de política en Base64.
type PolicyIdentifierRequest struct {
	Implied                 bool               `json:"implied"`
	Identifier              string             `json:"identifier"`
	Qualifier               string             `json:"qualifier,omitempty"` // OIDAsURI | OIDAsURN
	Description             string             `json:"description,omitempty"`
	DocumentationReferences []string           `json:"documentation_references,omitempty"`
	Document                string             `json:"document"`
	LocationURL             string             `json:"location_url,omitempty"`
	Transforms              []TransformRequest `json:"transforms,omitempty"`
}

// PolicyIdentifierResponse datos generados y fragmento xades:SignaturePolicyIdentifier.
type PolicyIdentifierResponse struct {
	Implied         bool     `json:"implied"`
	Identifier      string   `json:"identifier,omitempty"`
	DigestAlgorithm string   `json:"digest_algorithm,omitempty"`
	DigestValue     string   `json:"digest_value,omitempty"` // Base64
	LocationURL     string   `json:"location_url,omitempty"`
	Transforms      []string `json:"transforms,omitempty"`
	XML             string   `json:"xml"`
}

// SignRequest entrada de POST /api/signatures (XML en Base64).
type SignRequest struct {
	Document string `json:"document"`
}

// SignResponse XML firmado en Base64.
type SignResponse struct {
	SignedDocument string `json:"signed_document"`
}
