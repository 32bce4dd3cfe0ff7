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
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/cipherboard/cipherboard/backend/models"
)

// contentKeySize selects AES-256 for the per-post content key.
const contentKeySize = 32

// KeyWrapError is a fault while wrapping the content key for one recipient.
type KeyWrapError struct {
	UserID string
	Err    error
}

func (e *KeyWrapError) Error() string {
	return fmt.Sprintf("wrap content key for %s: %v", e.UserID, e.Err)
}

func (e *KeyWrapError) Unwrap() error { return e.Err }

// DecryptionError is a cryptographic verification failure: corrupt data,
// a wrong key, or bad padding. It is not an authorization outcome; see
// models.ErrAccessDenied for that.
type DecryptionError struct {
	Stage string // "unwrap" or "open"
	Err   error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decrypt (%s): %v", e.Stage, e.Err)
}

func (e *DecryptionError) Unwrap() error { return e.Err }

// Seal encrypts plaintext once under a fresh AES-256-GCM content key and
// wraps that key with RSA-OAEP (SHA-256, no label) for every recipient.
// The nonce is prepended to the ciphertext. Adding a recipient costs one
// asymmetric encryption, never a symmetric re-encryption.
//
// Output is non-deterministic: every call draws a new key and nonce.
func Seal(plaintext []byte, recipients map[string]*rsa.PublicKey) (models.Envelope, error) {
	key := make([]byte, contentKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return models.Envelope{}, fmt.Errorf("generate content key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("init content cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("init gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return models.Envelope{}, fmt.Errorf("generate nonce: %w", err)
	}
	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)

	wrapped := make(map[string][]byte, len(recipients))
	for userID, pub := range recipients {
		wk, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, key, nil)
		if err != nil {
			return models.Envelope{}, &KeyWrapError{UserID: userID, Err: err}
		}
		wrapped[userID] = wk
	}

	return models.Envelope{Ciphertext: ciphertext, WrappedKeys: wrapped}, nil
}

// Open unwraps the content key for userID with their private key and
// decrypts the envelope. Returns models.ErrAccessDenied when the envelope
// carries no wrapped key for userID, and a *DecryptionError when
// cryptographic verification fails.
func Open(env models.Envelope, userID string, priv *rsa.PrivateKey) ([]byte, error) {
	wrappedKey, ok := env.WrappedKeys[userID]
	if !ok {
		return nil, models.ErrAccessDenied
	}

	key, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, wrappedKey, nil)
	if err != nil {
		return nil, &DecryptionError{Stage: "unwrap", Err: err}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &DecryptionError{Stage: "open", Err: err}
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, &DecryptionError{Stage: "open", Err: err}
	}
	if len(env.Ciphertext) < gcm.NonceSize() {
		return nil, &DecryptionError{Stage: "open", Err: fmt.Errorf("ciphertext shorter than nonce")}
	}
	nonce := env.Ciphertext[:gcm.NonceSize()]
	plaintext, err := gcm.Open(nil, nonce, env.Ciphertext[gcm.NonceSize():], nil)
	if err != nil {
		return nil, &DecryptionError{Stage: "open", Err: err}
	}
	return plaintext, nil
}
