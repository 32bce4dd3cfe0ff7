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
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"
)

func TestIssueIdentity(t *testing.T) {
	priv, certPEM, err := IssueIdentity("user-123")
	if err != nil {
		t.Fatalf("IssueIdentity failed: %v", err)
	}

	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		t.Fatal("Expected a PEM certificate block")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("ParseCertificate failed: %v", err)
	}

	if cert.Subject.CommonName != "user-123" {
		t.Errorf("Expected CN user-123, got %q", cert.Subject.CommonName)
	}

	validity := cert.NotAfter.Sub(cert.NotBefore)
	if validity < 9*365*24*time.Hour {
		t.Errorf("Expected a multi-year validity window, got %v", validity)
	}

	pub, err := PublicKeyFromCertificate(certPEM)
	if err != nil {
		t.Fatalf("PublicKeyFromCertificate failed: %v", err)
	}
	if pub.N.Cmp(priv.PublicKey.N) != 0 {
		t.Error("Certificate public key does not match the issued private key")
	}
}

func TestPublicKeyFromCertificateRejectsGarbage(t *testing.T) {
	if _, err := PublicKeyFromCertificate([]byte("not a certificate")); err == nil {
		t.Error("Expected an error for malformed PEM")
	}
}

func TestKeystoreRoundTrip(t *testing.T) {
	ks := NewKeystore(t.TempDir())

	priv, _, err := IssueIdentity("user-456")
	if err != nil {
		t.Fatalf("IssueIdentity failed: %v", err)
	}

	if err := ks.Save("user-456", priv); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := ks.Load("user-456")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.D.Cmp(priv.D) != 0 {
		t.Error("Loaded key does not match saved key")
	}
}

func TestKeystoreMissingKey(t *testing.T) {
	ks := NewKeystore(t.TempDir())
	if _, err := ks.Load("nobody"); err == nil {
		t.Error("Expected an error for a missing key")
	}
}
