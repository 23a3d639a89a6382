package store

import (
	"fmt"
	"hash/fnv"
)

// PasswordHasher turns a plaintext password into the opaque digest the
// store keeps and compares. The only property the store relies on is
// determinism: the same password must always produce the same digest.
// The concrete algorithm is a replaceable collaborator, not part of the
// store's contract.
type PasswordHasher interface {
	Hash(password string) string
}

// saltedHasher is the default digest: FNV-1a over the salted password,
// rendered as a fixed-width hex string. Not a cryptographic KDF; swap
// in a real one via Options.Hasher where that matters.
type saltedHasher struct {
	salt string
}

// DefaultHasher returns the store's default password hasher.
func DefaultHasher() PasswordHasher {
	return saltedHasher{salt: "salt_value"}
}

func (h saltedHasher) Hash(password string) string {
	f := fnv.New64a()
	f.Write([]byte(password + h.salt))
	return fmt.Sprintf("%016x", f.Sum64())
}
