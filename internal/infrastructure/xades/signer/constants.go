// Constantes para firma XAdES-EPES enveloped.

package signer

// Algoritmos propios de la firma (los de digest/transformadas viven en el dominio).
const (
	AlgRSASHA256       = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	TransformEnveloped = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"
	TypeSignedProps    = "http://uri.etsi.org/01903#SignedProperties"
)

// Formato de xades:SigningTime (UTC con milisegundos).
const signingTimeLayout = "2006-01-02T15:04:05.000Z"
