// Copyright (C) 2025 cipherboard <dev@cipherboard.io>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"
)

const (
	identityKeyBits = 2048
	// Certificates are valid for ten years. Expiry is not enforced
	// anywhere; the window exists so the certificate parses as valid
	// for the lifetime of an account.
	identityValidity = 10 * 365 * 24 * time.Hour
)

// IssueIdentity generates a fresh RSA key pair and a self-signed
// certificate binding the public key to userID. The private key must stay
// inside the owning user's trust boundary (see Keystore); the certificate
// is safe to publish into the shared user record.
//
// Any fault here is fatal to account creation. There is no partial
// identity state to clean up.
func IssueIdentity(userID string) (*rsa.PrivateKey, []byte, error) {
	priv, err := rsa.GenerateKey(rand.Reader, identityKeyBits)
	if err != nil {
		return nil, nil, fmt.Errorf("generate identity key pair: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, fmt.Errorf("generate certificate serial: %w", err)
	}

	now := time.Now()
	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   userID,
			Organization: []string{"cipherboard"},
		},
		NotBefore:             now,
		NotAfter:              now.Add(identityValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, fmt.Errorf("create certificate: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	return priv, certPEM, nil
}

// PublicKeyFromCertificate parses a PEM certificate from the shared
// directory and returns the RSA public key it binds.
func PublicKeyFromCertificate(certPEM []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("failed to decode PEM block containing certificate")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("certificate does not carry an RSA public key")
	}
	return pub, nil
}
