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
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
)

// Keystore holds private keys on local disk, one PKCS#8 PEM file per
// user id. This is the trust boundary the shared store never crosses:
// nothing under the keystore directory is ever written to the database.
type Keystore struct {
	dir string
}

func NewKeystore(dir string) *Keystore {
	return &Keystore{dir: dir}
}

func (k *Keystore) path(userID string) string {
	return filepath.Join(k.dir, userID+".pem")
}

// Save writes the private key for userID, creating the keystore
// directory if needed. Files are owner-only.
func (k *Keystore) Save(userID string, priv *rsa.PrivateKey) error {
	if err := os.MkdirAll(k.dir, 0700); err != nil {
		return fmt.Errorf("create keystore directory %s: %w", k.dir, err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return fmt.Errorf("marshal private key: %w", err)
	}
	data := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	if err := os.WriteFile(k.path(userID), data, 0600); err != nil {
		return fmt.Errorf("write private key for %s: %w", userID, err)
	}
	return nil
}

// Load reads the private key for userID from disk.
func (k *Keystore) Load(userID string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(k.path(userID))
	if err != nil {
		return nil, fmt.Errorf("read private key for %s: %w", userID, err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("failed to decode PEM block containing private key")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key for %s: %w", userID, err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA private key")
	}
	return priv, nil
}
