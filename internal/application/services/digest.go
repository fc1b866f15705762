package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// PasswordDigester turns passwords into fixed-length hex digests
type PasswordDigester struct {
	algorithm string
	newHash   func() hash.Hash
}

// NewPasswordDigester returns a digester for one of sha256, sha3-256 or
// blake2b-256. All produce 64 hex characters.
func NewPasswordDigester(algorithm string) (*PasswordDigester, error) {
	var newHash func() hash.Hash

	switch algorithm {
	case "", "sha256":
		algorithm = "sha256"
		newHash = sha256.New
	case "sha3-256":
		newHash = sha3.New256
	case "blake2b-256":
		newHash = func() hash.Hash {
			// New256 only fails for keys longer than 64 bytes
			h, _ := blake2b.New256(nil)
			return h
		}
	default:
		return nil, fmt.Errorf("unsupported password digest: %s", algorithm)
	}

	return &PasswordDigester{algorithm: algorithm, newHash: newHash}, nil
}

// Algorithm returns the configured algorithm name
func (d *PasswordDigester) Algorithm() string {
	return d.algorithm
}

// Digest hashes the UTF-8 bytes of password
func (d *PasswordDigester) Digest(password string) string {
	h := d.newHash()
	h.Write([]byte(password))
	return hex.EncodeToString(h.Sum(nil))
}

// Matches reports whether password hashes to digest
func (d *PasswordDigester) Matches(password, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(d.Digest(password)), []byte(digest)) == 1
}
