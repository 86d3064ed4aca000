// Package passhash hashes and verifies passwords across two hash families.
//
// Verify accepts both argon2id hashes (PHC string format) and bcrypt hashes,
// so a store populated by an earlier bcrypt deployment keeps working while
// new hashes use the configured algorithm. When a password verifies against
// anything but the current target format, Verify also returns a fresh hash
// for the caller to persist, upgrading accounts one login at a time.
//
// A malformed or unrecognised stored hash is a non-match, never an error.
package passhash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Algorithm selects the hash family used for new hashes.
type Algorithm string

const (
	Argon2id Algorithm = "argon2id"
	Bcrypt   Algorithm = "bcrypt"
)

const argon2Prefix = "$argon2id$"

// Params controls hashing of new passwords. Verification always uses the
// parameters embedded in the stored hash.
type Params struct {
	Algorithm Algorithm

	// Argon2id parameters. Memory is in KiB.
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	// BcryptCost applies when Algorithm is Bcrypt.
	BcryptCost int
}

// DefaultParams returns the production defaults: argon2id with 19 MiB of
// memory, 2 iterations and 1 lane.
func DefaultParams() Params {
	return Params{
		Algorithm:   Argon2id,
		Memory:      19 * 1024,
		Iterations:  2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
		BcryptCost:  bcrypt.DefaultCost,
	}
}

// Hasher hashes and verifies passwords. It is safe for concurrent use.
type Hasher struct {
	p Params
}

// New builds a Hasher, filling zero-valued fields from DefaultParams.
func New(p Params) (*Hasher, error) {
	def := DefaultParams()
	if p.Algorithm == "" {
		p.Algorithm = def.Algorithm
	}
	if p.Algorithm != Argon2id && p.Algorithm != Bcrypt {
		return nil, fmt.Errorf("passhash: unknown algorithm %q", p.Algorithm)
	}
	if p.Memory == 0 {
		p.Memory = def.Memory
	}
	if p.Iterations == 0 {
		p.Iterations = def.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = def.Parallelism
	}
	if p.SaltLength == 0 {
		p.SaltLength = def.SaltLength
	}
	if p.KeyLength == 0 {
		p.KeyLength = def.KeyLength
	}
	if p.BcryptCost < bcrypt.MinCost || p.BcryptCost > bcrypt.MaxCost {
		p.BcryptCost = def.BcryptCost
	}
	return &Hasher{p: p}, nil
}

// Hash encodes password with the configured algorithm.
func (h *Hasher) Hash(password string) (string, error) {
	switch h.p.Algorithm {
	case Bcrypt:
		out, err := bcrypt.GenerateFromPassword([]byte(password), h.p.BcryptCost)
		if err != nil {
			return "", fmt.Errorf("passhash: bcrypt: %w", err)
		}
		return string(out), nil
	default:
		return h.hashArgon2id(password)
	}
}

// Verify reports whether password matches the stored hash. When it matches
// but the stored hash is not in the current target format (different family,
// or same family with weaker parameters), upgraded carries a replacement
// hash the caller should persist; otherwise upgraded is empty.
func (h *Hasher) Verify(password, encoded string) (ok bool, upgraded string) {
	var outdated bool

	switch {
	case strings.HasPrefix(encoded, argon2Prefix):
		ok, outdated = h.verifyArgon2id(password, encoded)
	case strings.HasPrefix(encoded, "$2a$"), strings.HasPrefix(encoded, "$2b$"), strings.HasPrefix(encoded, "$2y$"):
		ok = bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
		outdated = h.bcryptOutdated(encoded)
	default:
		return false, ""
	}

	if !ok || !outdated {
		return ok, ""
	}
	// Best effort: a failed rehash just postpones the upgrade to the next login.
	next, err := h.Hash(password)
	if err != nil {
		return true, ""
	}
	return true, next
}

func (h *Hasher) hashArgon2id(password string) (string, error) {
	salt := make([]byte, h.p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("passhash: salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, h.p.Iterations, h.p.Memory, h.p.Parallelism, h.p.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.p.Memory,
		h.p.Iterations,
		h.p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// verifyArgon2id checks password against a PHC-encoded argon2id hash using
// the parameters embedded in the hash itself. outdated is true when those
// parameters differ from the hasher's current target.
func (h *Hasher) verifyArgon2id(password, encoded string) (ok, outdated bool) {
	mem, iters, par, salt, key, err := parseArgon2id(encoded)
	if err != nil {
		return false, false
	}

	computed := argon2.IDKey([]byte(password), salt, iters, mem, par, uint32(len(key)))
	if subtle.ConstantTimeCompare(computed, key) != 1 {
		return false, false
	}

	if h.p.Algorithm != Argon2id {
		return true, true
	}
	outdated = mem != h.p.Memory ||
		iters != h.p.Iterations ||
		par != h.p.Parallelism ||
		uint32(len(key)) != h.p.KeyLength ||
		uint32(len(salt)) != h.p.SaltLength
	return true, outdated
}

func (h *Hasher) bcryptOutdated(encoded string) bool {
	if h.p.Algorithm != Bcrypt {
		return true
	}
	cost, err := bcrypt.Cost([]byte(encoded))
	if err != nil {
		return false
	}
	return cost < h.p.BcryptCost
}

// parseArgon2id splits a PHC string of the form
// $argon2id$v=19$m=X,t=Y,p=Z$<salt>$<key> into its components.
func parseArgon2id(encoded string) (mem, iters uint32, par uint8, salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, errors.New("passhash: malformed argon2id hash")
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return 0, 0, 0, nil, nil, errors.New("passhash: unsupported argon2 version")
	}
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return 0, 0, 0, nil, nil, errors.New("passhash: malformed argon2id parameters")
	}
	if mem == 0 || iters == 0 || par == 0 {
		return 0, 0, 0, nil, nil, errors.New("passhash: zero argon2id parameter")
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return 0, 0, 0, nil, nil, errors.New("passhash: malformed salt")
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(key) == 0 {
		return 0, 0, 0, nil, nil, errors.New("passhash: malformed key")
	}
	return mem, iters, par, salt, key, nil
}
