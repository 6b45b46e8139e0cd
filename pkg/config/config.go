package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// URI por defecto del digest (SHA-256, XML Encryption).
const defaultDigestAlgorithm = "http://www.w3.org/2001/04/xmlenc#sha256"

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App   AppConfig
	JWT   JWTConfig
	HTTP  HTTPConfig
	XAdES XAdESConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// JWTConfig configuración de JWT. Secret vacío = API sin autenticación.
type JWTConfig struct {
	Secret string
	Issuer string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// XAdESConfig configuración de la firma y de la política de firma.
type XAdESConfig struct {
	DigestAlgorithm string // URI del digest para SigPolicyHash, CertDigest y referencias
	CertPath        string // Ruta al certificado .pem o .p12 (vacío = POST /api/signatures deshabilitado)
	CertKeyPath     string // Ruta a la llave privada .pem (si CertPath es solo el certificado)
	CertPassword    string // Contraseña del .p12
	PolicyID        string // Identificador de la política (vacío = política implícita)
	PolicyURL       string // SPURI
	PolicyFile      string // Ruta local del documento de política
}

// PolicyImplied indica si la firma usa xades:SignaturePolicyImplied.
func (c XAdESConfig) PolicyImplied() bool {
	return c.PolicyID == ""
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, HTTP_PORT, XADES_POLICY_ID, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "firma-xades"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", "firma-xades"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		XAdES: XAdESConfig{
			DigestAlgorithm: getString(v, "XADES_DIGEST_ALGORITHM", defaultDigestAlgorithm),
			CertPath:        getString(v, "XADES_CERT_PATH", ""),
			CertKeyPath:     getString(v, "XADES_CERT_KEY_PATH", ""),
			CertPassword:    getString(v, "XADES_CERT_PASSWORD", ""),
			PolicyID:        getString(v, "XADES_POLICY_ID", ""),
			PolicyURL:       getString(v, "XADES_POLICY_URL", ""),
			PolicyFile:      getString(v, "XADES_POLICY_FILE", ""),
		},
	}

	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return nil, fmt.Errorf("config: HTTP_PORT inválido: %d", cfg.HTTP.Port)
	}
	if !cfg.XAdES.PolicyImplied() && cfg.XAdES.PolicyFile == "" {
		return nil, fmt.Errorf("config: XADES_POLICY_ID requiere XADES_POLICY_FILE")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
