package traefik

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

type certEntry struct {
	Certificate string `json:"certificate"`
	Key         string `json:"key"`
}

// GetCertFromTraefik extracts the certificate for domain from a traefik
// acme.json file.
func GetCertFromTraefik(file, domain string) (cert tls.Certificate, err error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("reading acme file: %w", err)
	}
	return certificateForDomain(string(data), domain)
}

func certificateForDomain(jsonData, domain string) (tls.Certificate, error) {
	certData, keyData, err := getCertData(jsonData, domain)
	if err != nil {
		return tls.Certificate{}, err
	}
	decodedCertData, err := base64.StdEncoding.DecodeString(certData)
	if err != nil {
		return tls.Certificate{}, err
	}
	decodedKeyData, err := base64.StdEncoding.DecodeString(keyData)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.X509KeyPair(decodedCertData, decodedKeyData)
}

// the resolver name is unknown, so search all of them for the domain
func getCertData(jsonData, domain string) (cert, key string, err error) {
	obj, err := oj.ParseString(jsonData)
	if err != nil {
		return "", "", err
	}

	jPath := fmt.Sprintf(`$..Certificates[?(@.domain.main == %q)]`, domain)
	path, err := jp.ParseString(jPath)
	if err != nil {
		return "", "", err
	}
	res := path.Get(obj)
	if res == nil {
		return "", "", fmt.Errorf("domain not found")
	}

	entry := certEntry{}
	if err = oj.Unmarshal([]byte(oj.JSON(res[0])), &entry); err != nil {
		return "", "", err
	}
	return entry.Certificate, entry.Key, nil
}
