package usecase

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"

	"github.com/jhoicas/firma-xades/internal/application/dto"
	"github.com/jhoicas/firma-xades/internal/domain"
	pkgxades "github.com/jhoicas/firma-xades/pkg/xades"
)

// SignatureUseCase firma documentos XML con el certificado de la aplicación.
type SignatureUseCase struct {
	signer pkgxades.Signer
	cert   *tls.Certificate
}

// NewSignatureUseCase construye el caso de uso. cert nil deja la firma deshabilitada.
func NewSignatureUseCase(signer pkgxades.Signer, cert *tls.Certificate) *SignatureUseCase {
	return &SignatureUseCase{signer: signer, cert: cert}
}

// Sign decodifica el XML, lo firma y devuelve el resultado en Base64.
func (uc *SignatureUseCase) Sign(in dto.SignRequest) (*dto.SignResponse, error) {
	if uc.signer == nil || uc.cert == nil {
		return nil, domain.ErrSignerNotConfigured
	}
	if in.Document == "" {
		return nil, fmt.Errorf("%w: document es requerido", domain.ErrInvalidInput)
	}
	xmlBytes, err := base64.StdEncoding.DecodeString(in.Document)
	if err != nil {
		return nil, fmt.Errorf("%w: document no es Base64 válido", domain.ErrInvalidInput)
	}
	signed, err := uc.signer.Sign(xmlBytes, *uc.cert)
	if err != nil {
		return nil, err
	}
	return &dto.SignResponse{SignedDocument: base64.StdEncoding.EncodeToString(signed)}, nil
}
