// Package contract defines the data model of the Accord contract language:
// a small, total, recursive algebra of time-bounded, multi-party, multi-asset
// payment agreements. Every type here is an immutable value; operations on
// contracts always return new values.
package contract

import (
	"fmt"
	"math/big"
	"strings"
)

// Token identifies an asset: a minting policy plus an asset name.
// The zero Token (empty currency and name) is the native currency.
type Token struct {
	Currency string `json:"currency"`
	Name     string `json:"name"`
}

// NativeToken returns the distinguished native-currency token.
func NativeToken() Token { return Token{} }

// IsNative reports whether t is the native-currency token.
func (t Token) IsNative() bool { return t.Currency == "" && t.Name == "" }

func (t Token) String() string {
	if t.IsNative() {
		return "native"
	}
	return t.Currency + "." + t.Name
}

// Compare orders tokens lexicographically by currency then name.
func (t Token) Compare(o Token) int {
	if c := strings.Compare(t.Currency, o.Currency); c != 0 {
		return c
	}
	return strings.Compare(t.Name, o.Name)
}

// Party is a contract participant: either an externally-addressed participant
// or a role-named participant. Exactly one of Address and Role is set.
// Role resolution to a concrete address happens at the ledger boundary, not here.
// Party is comparable and may appear inside map keys.
type Party struct {
	Address string `json:"address,omitempty"`
	Role    string `json:"role,omitempty"`
}

// AddressParty builds a party identified by a ledger address.
func AddressParty(addr string) Party { return Party{Address: addr} }

// RoleParty builds a party identified by a role token name.
func RoleParty(role string) Party { return Party{Role: role} }

// IsRole reports whether the party is role-named.
func (p Party) IsRole() bool { return p.Role != "" }

func (p Party) String() string {
	if p.IsRole() {
		return "role:" + p.Role
	}
	return "addr:" + p.Address
}

// Compare orders parties deterministically: addresses before roles,
// then lexicographic. Used for canonical account iteration during Close.
func (p Party) Compare(o Party) int {
	if p.IsRole() != o.IsRole() {
		if o.IsRole() {
			return -1
		}
		return 1
	}
	if c := strings.Compare(p.Address, o.Address); c != 0 {
		return c
	}
	return strings.Compare(p.Role, o.Role)
}

// Payee is the destination of a payment: either another contract-internal
// account, or a party receiving funds outside the contract's custody.
// Exactly one field is set.
type Payee struct {
	Account *Party `json:"account,omitempty"`
	Party   *Party `json:"party,omitempty"`
}

// PayToAccount builds an internal payee: funds move into p's account.
func PayToAccount(p Party) Payee { return Payee{Account: &p} }

// PayToParty builds an external payee: funds leave the contract.
func PayToParty(p Party) Payee { return Payee{Party: &p} }

// IsAccount reports whether the payee keeps funds inside the contract.
func (p Payee) IsAccount() bool { return p.Account != nil }

func (p Payee) String() string {
	if p.IsAccount() {
		return "account " + p.Account.String()
	}
	return "party " + p.Party.String()
}

// ChoiceID names a choice: a label plus the party entitled to make it.
// Comparable; used as a map key in interpreter state.
type ChoiceID struct {
	Name  string `json:"name"`
	Owner Party  `json:"owner"`
}

func (c ChoiceID) String() string {
	return fmt.Sprintf("%s by %s", c.Name, c.Owner)
}

// ValueID names a Let-bound value.
type ValueID string

// Bound is a closed integer interval constraining a choice.
// A chosen number is valid for a Choice action if it falls within
// at least one of the action's bounds.
type Bound struct {
	From *big.Int
	To   *big.Int
}

// NewBound builds a bound over int64 endpoints.
func NewBound(from, to int64) Bound {
	return Bound{From: big.NewInt(from), To: big.NewInt(to)}
}

// Contains reports whether n lies within [From, To].
func (b Bound) Contains(n *big.Int) bool {
	return b.From.Cmp(n) <= 0 && n.Cmp(b.To) <= 0
}
