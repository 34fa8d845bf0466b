// Package canonicalize provides RFC 8785 (JSON Canonicalization Scheme)
// serialization and content digests for deterministic hashing of contract
// documents. Two encodings of the same document always produce the same
// digest; merkleized-continuation verification depends on this.
package canonicalize

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gowebpki/jcs"
	"golang.org/x/crypto/blake2b"
)

// DigestPrefix identifies the digest algorithm in rendered hashes.
const DigestPrefix = "blake2b:"

// Canonical returns the RFC 8785 canonical JSON form of v.
//
// Numbers in canonical JSON are IEEE-754 doubles, so integers above 2^53
// do not survive the transform. Document encodings that need exact
// arbitrary-precision integers must carry them as decimal strings, as the
// contract wire format does.
func Canonical(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: pre-marshal failed: %w", err)
	}
	return CanonicalBytes(raw)
}

// CanonicalBytes canonicalizes an already-encoded JSON document.
func CanonicalBytes(raw []byte) ([]byte, error) {
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: jcs transform failed: %w", err)
	}
	return out, nil
}

// Digest computes the BLAKE2b-256 digest of raw bytes, rendered as
// "blake2b:<hex>".
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return DigestPrefix + hex.EncodeToString(sum[:])
}

// CanonicalDigest canonicalizes v and digests the result.
func CanonicalDigest(v interface{}) (string, error) {
	b, err := Canonical(v)
	if err != nil {
		return "", err
	}
	return Digest(b), nil
}

// ValidDigest reports whether s is a well-formed rendered digest.
func ValidDigest(s string) bool {
	if !strings.HasPrefix(s, DigestPrefix) {
		return false
	}
	hexPart := strings.TrimPrefix(s, DigestPrefix)
	if len(hexPart) != blake2b.Size256*2 {
		return false
	}
	_, err := hex.DecodeString(hexPart)
	return err == nil
}
