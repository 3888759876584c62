// Package crypto implements server-side credential hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Params are the Argon2id cost settings used for every stored credential.
type Params struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultParams is what accounts are hashed with.
var DefaultParams = Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 1,
	KeyLen:  32,
	SaltLen: 16,
}

// ErrEmptyPassword is returned when asked to hash an empty password.
var ErrEmptyPassword = errors.New("crypto: empty password")

// Credential is a stored password: Argon2id(password, Salt).
type Credential struct {
	Hash []byte
	Salt []byte
}

// NewCredential draws a fresh salt and hashes password with DefaultParams.
func NewCredential(password string) (Credential, error) {
	return DefaultParams.NewCredential(password)
}

// NewCredential draws a fresh salt and hashes password with p.
func (p Params) NewCredential(password string) (Credential, error) {
	if password == "" {
		return Credential{}, ErrEmptyPassword
	}
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return Credential{}, fmt.Errorf("crypto: read salt: %w", err)
	}
	return Credential{Hash: p.derive(password, salt), Salt: salt}, nil
}

// Verify reports whether password matches c under DefaultParams.
func (c Credential) Verify(password string) bool {
	return DefaultParams.Verify(c, password)
}

// Verify reports whether password matches c under p. Comparison is constant time.
func (p Params) Verify(c Credential, password string) bool {
	if len(c.Hash) == 0 || len(c.Salt) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(p.derive(password, c.Salt), c.Hash) == 1
}

func (p Params) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}
