// Package cryptox derives vault keys from a master password and seals
// individual string fields with AES-256-GCM.
//
// Blob wire format (base64, standard alphabet, padded):
//
//	nonce[12] || ciphertext || tag[16]
//
// There is no version byte; changing the algorithm requires migrating every
// stored blob.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/acctkeeper/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the number of random bytes in a vault salt.
	SaltSize = 32
	// KeySize is the derived key length (AES-256).
	KeySize = 32
	// NonceSize is the GCM nonce length.
	NonceSize = 12
	// TagSize is the GCM authentication tag length.
	TagSize = 16
	// Iterations is the PBKDF2-HMAC-SHA256 work factor.
	Iterations = 310_000
)

var (
	// ErrKeyDerivation means a key could not be derived at all, e.g. the
	// stored salt is not valid base64. It is not a wrong-password signal.
	ErrKeyDerivation = errors.New("key derivation failed")
	// ErrAuthentication means the GCM tag did not verify: wrong key,
	// tampering and corruption are reported identically.
	ErrAuthentication = errors.New("ciphertext authentication failed")
	// ErrMalformedCiphertext means the blob is not decodable or is shorter
	// than a nonce.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
)

// GenerateSalt returns SaltSize random bytes encoded as base64.
func GenerateSalt() (string, error) {
	salt, err := common.GenerateRandByteArray(SaltSize)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// DeriveKey stretches password with the base64-encoded salt using
// PBKDF2-HMAC-SHA256 and Iterations rounds, producing a KeySize key.
//
// The call is deliberately slow (tens to hundreds of milliseconds). Run it
// off any latency-sensitive goroutine.
//
// The returned key should be wiped with common.WipeByteArray when the
// caller is done with it.
func DeriveKey(password []byte, salt string) ([]byte, error) {
	return DeriveKeyWithIterations(password, salt, Iterations)
}

// DeriveKeyWithIterations is DeriveKey with an explicit work factor.
func DeriveKeyWithIterations(password []byte, salt string, iterations int) ([]byte, error) {
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return nil, fmt.Errorf("%w: decode salt: %v", ErrKeyDerivation, err)
	}
	if iterations < 1 {
		return nil, fmt.Errorf("%w: iterations must be positive", ErrKeyDerivation)
	}
	return pbkdf2.Key(password, rawSalt, iterations, KeySize, sha256.New), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext under key with a fresh random nonce and returns
// base64(nonce || ciphertext || tag). Encrypting the same plaintext twice
// yields different blobs.
//
// Example:
//
//	blob, err := cryptox.Encrypt(key, "hunter2")
//	if err != nil {
//	    return err
//	}
//	plain, err := cryptox.Decrypt(key, blob) // "hunter2"
func Encrypt(key []byte, plaintext string) (string, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	nonce, err := common.GenerateRandByteArray(NonceSize)
	if err != nil {
		return "", err
	}

	// Seal appends to nonce, giving nonce || ciphertext || tag in one slice.
	sealed := aesgcm.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It returns ErrMalformedCiphertext when blob is
// not valid base64 or is shorter than a nonce, and ErrAuthentication for any
// tag mismatch. Corrupted plaintext is never returned.
func Decrypt(key []byte, blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	if len(raw) < NonceSize {
		return "", fmt.Errorf("%w: %d bytes is shorter than nonce", ErrMalformedCiphertext, len(raw))
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		// A key of the wrong size cannot have produced this blob.
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	nonce, sealed := raw[:NonceSize], raw[NonceSize:]
	plaintext, err := aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrAuthentication
	}

	return string(plaintext), nil
}

// Check reports why blob does not open under key, or nil if it does. The
// decrypted value is discarded.
func Check(key []byte, blob string) error {
	_, err := Decrypt(key, blob)
	return err
}

// VerifyPassword reports whether key opens testBlob. Every failure mode maps
// to false.
func VerifyPassword(key []byte, testBlob string) bool {
	return Check(key, testBlob) == nil
}
