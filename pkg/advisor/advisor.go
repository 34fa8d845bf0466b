// Package advisor enumerates the actions currently applicable to a contract:
// which deposits, choices, and notifications would match a waiting When under
// a given environment, and the timeout after which the contract advances on
// its own. Clients use it to offer participants their valid next moves before
// building a transaction.
package advisor

import (
	"math/big"

	"github.com/Mindburn-Labs/accord/pkg/contract"
	"github.com/Mindburn-Labs/accord/pkg/semantics"
)

// ActionKind labels an available action.
type ActionKind string

const (
	ActionDeposit ActionKind = "deposit"
	ActionChoice  ActionKind = "choice"
	ActionNotify  ActionKind = "notify"
)

// AvailableAction describes one currently-matchable case of a waiting When.
// Kind-specific fields are populated per the kind; CaseIndex is the position
// in the When's declared case order, which is also matching priority.
type AvailableAction struct {
	Kind       ActionKind
	CaseIndex  int
	Merkleized bool

	// Deposit fields: the exact quantity a matching input must declare.
	IntoAccount contract.Party
	Party       contract.Party
	Token       contract.Token
	Quantity    *big.Int

	// Choice fields.
	For    contract.ChoiceID
	Bounds []contract.Bound
}

// Advice is the advisory view of a contract after quiescence reduction.
type Advice struct {
	// Closed reports the contract reached Close with empty accounts: no
	// further actions exist.
	Closed bool
	// Timeout is the waiting When's timeout; meaningful only when !Closed.
	// An interval at or past it advances the contract with no inputs at all.
	Timeout int64
	// Actions lists the currently-matchable cases, in case order.
	Actions []AvailableAction
}

// Available reduces the contract to quiescence and enumerates the applicable
// external actions. Deposit amounts are evaluated against the post-reduction
// state, since that is the state a matching input will be checked against.
func Available(env semantics.Environment, state semantics.State, c contract.Contract, opts ...semantics.Option) (Advice, error) {
	reduced, err := semantics.ReduceContractUntilQuiescent(env, state, c, opts...)
	if err != nil {
		return Advice{}, err
	}

	when, ok := reduced.Contract.(contract.When)
	if !ok {
		return Advice{Closed: true}, nil
	}

	advice := Advice{Timeout: when.Timeout}
	for i, cs := range when.Cases {
		switch act := cs.Action.(type) {
		case contract.Deposit:
			advice.Actions = append(advice.Actions, AvailableAction{
				Kind:        ActionDeposit,
				CaseIndex:   i,
				Merkleized:  cs.IsMerkleized(),
				IntoAccount: act.IntoAccount,
				Party:       act.Party,
				Token:       act.Token,
				Quantity:    semantics.EvalValue(env, reduced.State, act.Amount),
			})
		case contract.Choice:
			bounds := make([]contract.Bound, len(act.Bounds))
			copy(bounds, act.Bounds)
			advice.Actions = append(advice.Actions, AvailableAction{
				Kind:       ActionChoice,
				CaseIndex:  i,
				Merkleized: cs.IsMerkleized(),
				For:        act.For,
				Bounds:     bounds,
			})
		case contract.Notify:
			// Notifications cannot be forced; list only those that would
			// match right now.
			if semantics.EvalObservation(env, reduced.State, act.If) {
				advice.Actions = append(advice.Actions, AvailableAction{
					Kind:       ActionNotify,
					CaseIndex:  i,
					Merkleized: cs.IsMerkleized(),
				})
			}
		}
	}
	return advice, nil
}
