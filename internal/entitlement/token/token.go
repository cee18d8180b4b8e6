// Package token issues opaque subscription tokens and derives the digest that is stored
// in their place.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	Prefix      = "zs_"
	SecretBytes = 32
	// Length of a plain token: prefix plus hex encoded secret.
	Length = len(Prefix) + SecretBytes*2
)

var (
	ErrMalformed     = errors.New("malformed_token")
	ErrPepperTooLong = errors.New("token_pepper_too_long")
)

// Generator creates tokens and digests them with an optional server-side pepper.
type Generator struct {
	pepper []byte
}

// NewGenerator rejects peppers beyond the BLAKE2b key limit of 64 bytes.
func NewGenerator(pepper string) (*Generator, error) {
	if len(pepper) > blake2b.Size {
		return nil, fmt.Errorf("%w: %d bytes, at most %d", ErrPepperTooLong, len(pepper), blake2b.Size)
	}
	return &Generator{pepper: []byte(pepper)}, nil
}

// New returns a fresh plain token and its digest.
func (g *Generator) New() (plain string, digest string, err error) {
	secret := make([]byte, SecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", "", err
	}

	plain = Prefix + hex.EncodeToString(secret)
	return plain, g.digest(plain), nil
}

// Digest normalizes user input and digests it. Anything that cannot be a token we issued
// reports ErrMalformed so callers can short-circuit before touching storage.
func (g *Generator) Digest(plain string) (string, error) {
	plain = strings.TrimSpace(plain)
	if plain == "" {
		return "", ErrMalformed
	}
	return g.digest(plain), nil
}

// WellFormed reports whether value has the shape of an issued token.
func WellFormed(value string) bool {
	if len(value) != Length || !strings.HasPrefix(value, Prefix) {
		return false
	}
	_, err := hex.DecodeString(value[len(Prefix):])
	return err == nil
}

func (g *Generator) digest(plain string) string {
	h, err := blake2b.New256(g.pepper)
	if err != nil {
		// only reachable with an oversized key, rejected in NewGenerator
		panic(err)
	}
	h.Write([]byte(plain))
	return hex.EncodeToString(h.Sum(nil))
}
