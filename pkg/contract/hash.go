package contract

import (
	"github.com/Mindburn-Labs/accord/pkg/canonicalize"
)

// Hash computes the content address of a contract: the BLAKE2b-256 digest of
// the RFC 8785 canonical form of its wire encoding. This is the hash recorded
// in a merkleized Case and verified when a continuation is disclosed.
//
// The algorithm and encoding must match the ledger validator exactly; this
// function is the single place either is defined. Golden tests pin both.
func Hash(c Contract) (string, error) {
	raw, err := Marshal(c)
	if err != nil {
		return "", err
	}
	canonical, err := canonicalize.CanonicalBytes(raw)
	if err != nil {
		return "", err
	}
	return canonicalize.Digest(canonical), nil
}

// MerkleizeCase replaces a case's inline continuation with its content hash,
// returning the rewritten case and the detached continuation. Inverse of the
// disclosure carried by a merkleized Input.
func MerkleizeCase(c Case) (Case, Contract, error) {
	if c.IsMerkleized() {
		return c, nil, nil
	}
	h, err := Hash(c.Then)
	if err != nil {
		return Case{}, nil, err
	}
	detached := c.Then
	return Case{Action: c.Action, MerkleizedThen: h}, detached, nil
}
