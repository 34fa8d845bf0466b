package semantics

import (
	"fmt"
	"math/big"

	"github.com/Mindburn-Labs/accord/pkg/contract"
)

// ApplyResult is the outcome of applying one external input: the matched
// continuation already reduced back to quiescence.
type ApplyResult struct {
	Warnings []TransactionWarning
	Payments []Payment
	State    State
	Contract contract.Contract
}

// TransactionOutput is the outcome of applying a whole transaction: a batch
// of inputs against a contract and state.
type TransactionOutput struct {
	// Reduced reports whether the transaction had any effect: an internal
	// step taken or an input applied.
	Reduced  bool
	Warnings []TransactionWarning
	Payments []Payment
	State    State
	Contract contract.Contract
}

// actionMatch describes a successful match of an input against a case action.
type actionMatch struct {
	warning TransactionWarning
}

// matchAction reports whether the input content matches the case action under
// the current environment and state, applying the action's state effect in
// place when it does.
func matchAction(env Environment, state State, input contract.InputContent, action contract.Action) (actionMatch, bool) {
	switch act := action.(type) {
	case contract.Deposit:
		dep, ok := input.(contract.DepositInput)
		if !ok {
			return actionMatch{}, false
		}
		if dep.IntoAccount != act.IntoAccount || dep.Party != act.Party || dep.Token != act.Token {
			return actionMatch{}, false
		}
		expected := EvalValue(env, state, act.Amount)
		if dep.Quantity == nil || expected.Cmp(dep.Quantity) != 0 {
			return actionMatch{}, false
		}
		if dep.Quantity.Sign() <= 0 {
			return actionMatch{warning: NonPositiveDeposit{
				Party:       dep.Party,
				IntoAccount: dep.IntoAccount,
				Token:       dep.Token,
				Amount:      new(big.Int).Set(dep.Quantity),
			}}, true
		}
		state.creditAccount(AccountID{Party: dep.IntoAccount, Token: dep.Token}, dep.Quantity)
		return actionMatch{}, true

	case contract.Choice:
		ch, ok := input.(contract.ChoiceInput)
		if !ok {
			return actionMatch{}, false
		}
		if ch.For != act.For || ch.Value == nil {
			return actionMatch{}, false
		}
		inBounds := false
		for _, b := range act.Bounds {
			if b.Contains(ch.Value) {
				inBounds = true
				break
			}
		}
		if !inBounds {
			return actionMatch{}, false
		}
		state.Choices[ch.For] = new(big.Int).Set(ch.Value)
		return actionMatch{}, true

	case contract.Notify:
		if _, ok := input.(contract.NotifyInput); !ok {
			return actionMatch{}, false
		}
		// A notify cannot be forced: it matches only while the condition holds.
		if !EvalObservation(env, state, act.If) {
			return actionMatch{}, false
		}
		return actionMatch{}, true
	}
	panic(fmt.Sprintf("semantics: unhandled action variant %T", action))
}

// continuationFor resolves the continuation of a matched case, verifying the
// disclosed contract against the recorded hash for merkleized cases.
func continuationFor(c contract.Case, input contract.Input) (contract.Contract, error) {
	if !c.IsMerkleized() {
		return c.Then, nil
	}
	if input.Continuation == nil || input.Continuation.Contract == nil {
		return nil, fmt.Errorf("%w (recorded %s)", ErrMissingContinuation, c.MerkleizedThen)
	}
	computed, err := contract.Hash(input.Continuation.Contract)
	if err != nil {
		return nil, fmt.Errorf("semantics: hashing disclosed continuation: %w", err)
	}
	if computed != c.MerkleizedThen {
		return nil, fmt.Errorf("%w: disclosed %s, recorded %s", ErrHashMismatch, computed, c.MerkleizedThen)
	}
	return input.Continuation.Contract, nil
}

// ApplyInput applies one external input to a quiescent When contract: the
// input is matched against the case list in declared order, the first
// matching case wins, its state effect is applied, and the continuation is
// reduced back to quiescence. A contract that is not a waiting When is a
// caller contract violation (ErrMalformedCall).
func ApplyInput(env Environment, state State, c contract.Contract, input contract.Input, opts ...Option) (ApplyResult, error) {
	when, ok := c.(contract.When)
	if !ok {
		return ApplyResult{}, fmt.Errorf("%w: got %T", ErrMalformedCall, c)
	}

	working := state.Clone()
	for _, cs := range when.Cases {
		match, matched := matchAction(env, working, input.Content, cs.Action)
		if !matched {
			continue
		}
		continuation, err := continuationFor(cs, input)
		if err != nil {
			return ApplyResult{}, err
		}
		reduced, err := ReduceContractUntilQuiescent(env, working, continuation, opts...)
		if err != nil {
			return ApplyResult{}, err
		}
		out := ApplyResult{
			Payments: reduced.Payments,
			State:    reduced.State,
			Contract: reduced.Contract,
		}
		if match.warning != nil {
			out.Warnings = append(out.Warnings, match.warning)
		}
		out.Warnings = append(out.Warnings, reduced.Warnings...)
		return out, nil
	}
	return ApplyResult{}, ErrNoMatch
}

// ApplyAllInputs folds a batch of inputs over a contract and state: the
// contract is reduced to quiescence before the first input (surfacing any
// pending timeout) and after each input, threading state and concatenating
// warnings and payments in order. Any single failure aborts the whole batch;
// the caller's state and contract are unaffected.
func ApplyAllInputs(env Environment, state State, c contract.Contract, inputs []contract.Input, opts ...Option) (TransactionOutput, error) {
	reduced, err := ReduceContractUntilQuiescent(env, state, c, opts...)
	if err != nil {
		return TransactionOutput{}, err
	}

	out := TransactionOutput{
		Reduced:  reduced.Reduced,
		Warnings: reduced.Warnings,
		Payments: reduced.Payments,
		State:    reduced.State,
		Contract: reduced.Contract,
	}

	for i, input := range inputs {
		applied, err := ApplyInput(env, out.State, out.Contract, input, opts...)
		if err != nil {
			return TransactionOutput{}, fmt.Errorf("input %d: %w", i, err)
		}
		out.Reduced = true
		out.Warnings = append(out.Warnings, applied.Warnings...)
		out.Payments = append(out.Payments, applied.Payments...)
		out.State = applied.State
		out.Contract = applied.Contract
	}
	return out, nil
}

// ComputeTransaction is the transaction boundary: it validates and fixes the
// declared interval against the state's minimum time, applies all inputs, and
// rejects transactions with no effect.
func ComputeTransaction(interval TimeInterval, state State, c contract.Contract, inputs []contract.Input, opts ...Option) (TransactionOutput, error) {
	env, fixed, err := FixInterval(interval, state)
	if err != nil {
		return TransactionOutput{}, err
	}
	out, err := ApplyAllInputs(env, fixed, c, inputs, opts...)
	if err != nil {
		return TransactionOutput{}, err
	}
	if !out.Reduced {
		return TransactionOutput{}, ErrUselessTransaction
	}
	return out, nil
}
