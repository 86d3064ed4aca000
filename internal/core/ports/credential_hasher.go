package ports

// CredentialHasher hashes and verifies stored password credentials.
type CredentialHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches the stored hash. A malformed
	// stored hash is a non-match, never an error. When the hash matches but
	// is not in the current target format, upgraded carries a replacement
	// hash for the caller to persist.
	Verify(password, encoded string) (ok bool, upgraded string)
}
