// Servicio de firma digital XAdES-EPES enveloped.
// Inyecta <ds:Signature> al final de la raíz, o en el primer ext:ExtensionContent vacío
// cuando el documento es UBL.

package signer

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"hash"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/jhoicas/firma-xades/internal/domain/xades"
	"github.com/jhoicas/firma-xades/internal/infrastructure/xades/algorithms"
	"github.com/jhoicas/firma-xades/internal/infrastructure/xades/marshal"
	"github.com/jhoicas/firma-xades/internal/infrastructure/xades/xmlsec"
	"github.com/jhoicas/firma-xades/pkg/logger"
	pkgxades "github.com/jhoicas/firma-xades/pkg/xades"
)

// PolicyDataGenerator produce los datos de SignaturePolicyIdentifier para la firma.
type PolicyDataGenerator interface {
	GeneratePropertyData(prop *xades.SignaturePolicyIdentifier) (*xades.SignaturePolicyData, error)
}

// DigestEngineProvider entrega motores de digest por URI.
type DigestEngineProvider interface {
	Engine(uri string) (hash.Hash, error)
}

// DigitalSignatureService implementa la firma XAdES-EPES e inyecta el nodo en el XML.
type DigitalSignatureService struct {
	policy    *xades.SignaturePolicyIdentifier
	generator PolicyDataGenerator
	converter *marshal.SignaturePolicyConverter
	digests   DigestEngineProvider
	digestURI string
	now       func() time.Time
	log       *logger.Logger
}

// NewDigitalSignatureService crea el servicio. policy nil = política implícita.
// digestURI aplica a las referencias y a CertDigest.
func NewDigitalSignatureService(
	policy *xades.SignaturePolicyIdentifier,
	generator PolicyDataGenerator,
	digests DigestEngineProvider,
	digestURI string,
	log *logger.Logger,
) *DigitalSignatureService {
	if policy == nil {
		policy = xades.NewSignaturePolicyImplied()
	}
	if digestURI == "" {
		digestURI = xades.AlgSHA256
	}
	return &DigitalSignatureService{
		policy:    policy,
		generator: generator,
		converter: marshal.NewSignaturePolicyConverter(),
		digests:   digests,
		digestURI: digestURI,
		now:       time.Now,
		log:       logger.OrNop(log),
	}
}

// Sign implementa pkg/xades.Signer.
func (s *DigitalSignatureService) Sign(xmlBytes []byte, cert tls.Certificate) ([]byte, error) {
	if len(xmlBytes) == 0 {
		return nil, fmt.Errorf("%w: XML vacío", pkgxades.ErrInvalidDocument)
	}
	priv, ok := cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("xades: el certificado debe incluir llave privada RSA")
	}
	x509Cert, err := Leaf(cert)
	if err != nil {
		return nil, err
	}
	doc, err := xmlsec.Parse(xmlBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkgxades.ErrInvalidDocument, err)
	}
	md, err := s.digests.Engine(s.digestURI)
	if err != nil {
		return nil, fmt.Errorf("xades: digest de referencias: %w", err)
	}
	policyData, err := s.generator.GeneratePropertyData(s.policy)
	if err != nil {
		return nil, fmt.Errorf("xades: %w", err)
	}

	sigID := "xmldsig-" + uuid.NewString()
	propsID := sigID + "-signedprops"

	// 1) Digest del documento. La firma aún no está en el árbol (transformada enveloped).
	canonicalDoc, err := canonicalElement(doc.Root())
	if err != nil {
		return nil, fmt.Errorf("xades: canonicalizar documento: %w", err)
	}
	docDigestB64 := digestB64(md, canonicalDoc)

	// 2) QualifyingProperties: SigningTime, SigningCertificate, SignaturePolicyIdentifier
	qp, signedProps, err := s.buildQualifyingProperties(sigID, propsID, x509Cert, md, policyData)
	if err != nil {
		return nil, err
	}
	canonicalProps, err := canonicalElement(signedProps)
	if err != nil {
		return nil, fmt.Errorf("xades: canonicalizar SignedProperties: %w", err)
	}
	propsDigestB64 := digestB64(md, canonicalProps)

	// 3) SignedInfo (C14N exclusiva, RSA-SHA256)
	signedInfo := s.buildSignedInfo(sigID, propsID, docDigestB64, propsDigestB64)
	canonicalSignedInfo, err := canonicalElement(signedInfo)
	if err != nil {
		return nil, fmt.Errorf("xades: canonicalizar SignedInfo: %w", err)
	}
	signHash := sha256.Sum256(canonicalSignedInfo)
	signatureValue, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, signHash[:])
	if err != nil {
		return nil, fmt.Errorf("xades: firmar SignedInfo: %w", err)
	}

	// 4) ds:Signature
	sig := etree.NewElement("ds:Signature")
	sig.CreateAttr("xmlns:ds", xades.NamespaceDS)
	sig.CreateAttr("Id", sigID)
	sig.AddChild(signedInfo)
	sig.CreateElement("ds:SignatureValue").SetText(base64.StdEncoding.EncodeToString(signatureValue))
	sig.CreateElement("ds:KeyInfo").
		CreateElement("ds:X509Data").
		CreateElement("ds:X509Certificate").
		SetText(base64.StdEncoding.EncodeToString(x509Cert.Raw))
	sig.CreateElement("ds:Object").AddChild(qp)

	// 5) Inyectar
	signatureParent(doc.Root()).AddChild(sig)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xades: serializar XML firmado: %w", err)
	}

	s.log.Info().
		Str("signature_id", sigID).
		Str("digest_alg", s.digestURI).
		Bool("policy_implied", policyData.Implied()).
		Msg("documento firmado")
	return out, nil
}

func (s *DigitalSignatureService) buildQualifyingProperties(
	sigID, propsID string,
	cert *x509.Certificate,
	md hash.Hash,
	policyData *xades.SignaturePolicyData,
) (*etree.Element, *etree.Element, error) {
	qp := etree.NewElement("xades:QualifyingProperties")
	qp.CreateAttr("xmlns:xades", xades.NamespaceXAdES)
	qp.CreateAttr("Target", "#"+sigID)

	// SignedProperties declara sus propios namespaces: se canonicaliza fuera de contexto.
	sp := qp.CreateElement("xades:SignedProperties")
	sp.CreateAttr("xmlns:ds", xades.NamespaceDS)
	sp.CreateAttr("xmlns:xades", xades.NamespaceXAdES)
	sp.CreateAttr("Id", propsID)

	ssp := sp.CreateElement("xades:SignedSignatureProperties")
	ssp.CreateElement("xades:SigningTime").SetText(s.now().UTC().Format(signingTimeLayout))

	certDigestB64, issuerName, serial := certDigestAndIssuerSerial(cert, md)
	c := ssp.CreateElement("xades:SigningCertificate").CreateElement("xades:Cert")
	certDigest := c.CreateElement("xades:CertDigest")
	certDigest.CreateElement("ds:DigestMethod").CreateAttr("Algorithm", s.digestURI)
	certDigest.CreateElement("ds:DigestValue").SetText(certDigestB64)
	issuerSerial := c.CreateElement("xades:IssuerSerial")
	issuerSerial.CreateElement("ds:X509IssuerName").SetText(issuerName)
	issuerSerial.CreateElement("ds:X509SerialNumber").SetText(serial)

	if _, err := s.converter.ConvertIntoObjectTree(policyData, ssp); err != nil {
		return nil, nil, fmt.Errorf("xades: SignaturePolicyIdentifier: %w", err)
	}
	return qp, sp, nil
}

func (s *DigitalSignatureService) buildSignedInfo(sigID, propsID, docDigestB64, propsDigestB64 string) *etree.Element {
	si := etree.NewElement("ds:SignedInfo")
	si.CreateAttr("xmlns:ds", xades.NamespaceDS)
	si.CreateElement("ds:CanonicalizationMethod").CreateAttr("Algorithm", xades.AlgExcC14N)
	si.CreateElement("ds:SignatureMethod").CreateAttr("Algorithm", AlgRSASHA256)

	ref := si.CreateElement("ds:Reference")
	ref.CreateAttr("Id", sigID+"-ref0")
	ref.CreateAttr("URI", "")
	trs := ref.CreateElement("ds:Transforms")
	trs.CreateElement("ds:Transform").CreateAttr("Algorithm", TransformEnveloped)
	trs.CreateElement("ds:Transform").CreateAttr("Algorithm", xades.AlgExcC14N)
	ref.CreateElement("ds:DigestMethod").CreateAttr("Algorithm", s.digestURI)
	ref.CreateElement("ds:DigestValue").SetText(docDigestB64)

	propsRef := si.CreateElement("ds:Reference")
	propsRef.CreateAttr("Type", TypeSignedProps)
	propsRef.CreateAttr("URI", "#"+propsID)
	propsRef.CreateElement("ds:Transforms").
		CreateElement("ds:Transform").
		CreateAttr("Algorithm", xades.AlgExcC14N)
	propsRef.CreateElement("ds:DigestMethod").CreateAttr("Algorithm", s.digestURI)
	propsRef.CreateElement("ds:DigestValue").SetText(propsDigestB64)
	return si
}

// canonicalElement aplica C14N exclusiva a una copia de el, fuera de su documento.
func canonicalElement(el *etree.Element) ([]byte, error) {
	tmp := etree.NewDocument()
	tmp.SetRoot(el.Copy())
	raw, err := tmp.WriteToBytes()
	if err != nil {
		return nil, err
	}
	return algorithms.CanonicalizeExclusive(raw)
}

func digestB64(md hash.Hash, data []byte) string {
	md.Reset()
	md.Write(data)
	return base64.StdEncoding.EncodeToString(md.Sum(nil))
}

// signatureParent busca ext:UBLExtensions/ext:UBLExtension/ext:ExtensionContent vacío
// (el que el emisor deja para la firma). Si no existe, la firma va en la raíz.
func signatureParent(root *etree.Element) *etree.Element {
	for _, child := range root.ChildElements() {
		if child.Tag != "UBLExtensions" {
			continue
		}
		for _, ext := range child.ChildElements() {
			if ext.Tag != "UBLExtension" {
				continue
			}
			for _, ec := range ext.ChildElements() {
				if ec.Tag == "ExtensionContent" && len(ec.ChildElements()) == 0 {
					return ec
				}
			}
		}
	}
	return root
}

var _ pkgxades.Signer = (*DigitalSignatureService)(nil)
