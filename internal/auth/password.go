// internal/auth/password.go
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ErrInvalidHash indicates that a stored digest is not in the expected format.
var ErrInvalidHash = errors.New("the encoded digest is not in the correct format")

// KeySize is the length of the secret key mixed into every digest.
const KeySize = 32

// PasswordHasher turns room passwords into keyed BLAKE2b-256 digests.
//
// The digest is deterministic for one hasher so a guest can find a room by
// password alone. The key never leaves the process, so digests are useless
// to anyone who reads them without it.
type PasswordHasher struct {
	key []byte
}

// NewPasswordHasher builds a hasher with the given key. An empty key gets a
// fresh random one.
func NewPasswordHasher(key []byte) (*PasswordHasher, error) {
	if len(key) == 0 {
		key = make([]byte, KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating password key: %w", err)
		}
	}
	if len(key) > blake2b.Size {
		return nil, fmt.Errorf("password key longer than %d bytes", blake2b.Size)
	}
	return &PasswordHasher{key: append([]byte(nil), key...)}, nil
}

// Digest returns the hex-encoded digest of password.
func (h *PasswordHasher) Digest(password string) string {
	mac, err := blake2b.New256(h.key)
	if err != nil {
		// Key length is checked in NewPasswordHasher.
		panic(err)
	}
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}

// Compare reports whether password matches the encoded digest.
func (h *PasswordHasher) Compare(password, encoded string) (bool, error) {
	want, err := hex.DecodeString(encoded)
	if err != nil || len(want) != blake2b.Size256 {
		return false, ErrInvalidHash
	}
	got, _ := hex.DecodeString(h.Digest(password))
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}
