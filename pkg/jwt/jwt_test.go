package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/firma-xades/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "cliente-1", "firma-xades", 5)
	require.NoError(t, err)

	clientID, err := pkgjwt.Parse(testSecret, "firma-xades", tok)
	require.NoError(t, err)
	assert.Equal(t, "cliente-1", clientID)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "cliente-1", "firma-xades", 5)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret", "firma-xades", tok)
	assert.Error(t, err, "la firma HMAC no debe validar con otro secret")
}

func TestParse_EmisorDistinto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "cliente-1", "otro-emisor", 5)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, "firma-xades", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "cliente-1", "firma-xades", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, "firma-xades", tok)
	assert.Error(t, err, "un token expirado debe rechazarse")
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "cliente-1", "firma-xades", 5)
	assert.Error(t, err)
}
