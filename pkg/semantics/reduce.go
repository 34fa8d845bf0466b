package semantics

import (
	"fmt"
	"math/big"

	"github.com/Mindburn-Labs/accord/pkg/contract"
)

// DefaultStepBound caps internal reduction steps per call. Reduction of any
// well-formed contract terminates in a step count bounded by the contract's
// static size, so this guard only trips on pathological inputs.
const DefaultStepBound = 1 << 20

// Option tunes an interpreter entry point.
type Option func(*options)

type options struct {
	stepBound int
}

// WithStepBound overrides the defensive reduction step bound. Values <= 0
// keep the default.
func WithStepBound(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.stepBound = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{stepBound: DefaultStepBound}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ReduceResult is the outcome of driving a contract to quiescence: the
// contract either reached Close or is a When genuinely waiting for input or
// a later time.
type ReduceResult struct {
	// Reduced reports whether at least one internal step was taken.
	Reduced  bool
	Warnings []TransactionWarning
	Payments []Payment
	State    State
	Contract contract.Contract
}

// stepResult is the outcome of one internal reduction step. Warning and
// payment are optional; state mutation happens in place on the working copy.
type stepResult struct {
	warning      TransactionWarning
	payment      *Payment
	continuation contract.Contract
}

// reduceStep takes one internal step, mutating state in place. It returns
// (result, true) when a step applied, (zero, false) when the contract is
// quiescent for this phase, or an error when the environment interval
// straddles a When timeout.
func reduceStep(env Environment, state State, c contract.Contract) (stepResult, bool, error) {
	switch node := c.(type) {
	case contract.Close:
		// Drain one account per step; quiescent once empty.
		ids := state.sortedAccounts()
		if len(ids) == 0 {
			return stepResult{}, false, nil
		}
		id := ids[0]
		amount := state.Accounts[id]
		delete(state.Accounts, id)
		res := stepResult{continuation: contract.Close{}}
		if amount.Sign() > 0 {
			res.payment = &Payment{
				Account: id.Party,
				Payee:   contract.PayToParty(id.Party),
				Token:   id.Token,
				Amount:  amount,
			}
		}
		return res, true, nil

	case contract.Pay:
		amount := EvalValue(env, state, node.Amount)
		if amount.Sign() <= 0 {
			return stepResult{
				warning: NonPositivePay{
					Account: node.FromAccount,
					Payee:   node.To,
					Token:   node.Token,
					Amount:  amount,
				},
				continuation: node.Then,
			}, true, nil
		}
		source := AccountID{Party: node.FromAccount, Token: node.Token}
		available := state.balance(source)
		paid := amount
		var warning TransactionWarning
		if available.Cmp(amount) < 0 {
			paid = available
			warning = PartialPay{
				Account:  node.FromAccount,
				Payee:    node.To,
				Token:    node.Token,
				Paid:     new(big.Int).Set(paid),
				Expected: amount,
			}
		}
		state.setBalance(source, new(big.Int).Sub(available, paid))
		res := stepResult{warning: warning, continuation: node.Then}
		if paid.Sign() > 0 {
			if node.To.IsAccount() {
				// Internal transfer: funds stay in the contract's custody.
				state.creditAccount(AccountID{Party: *node.To.Account, Token: node.Token}, paid)
			} else {
				res.payment = &Payment{
					Account: node.FromAccount,
					Payee:   node.To,
					Token:   node.Token,
					Amount:  new(big.Int).Set(paid),
				}
			}
		}
		return res, true, nil

	case contract.If:
		if EvalObservation(env, state, node.Condition) {
			return stepResult{continuation: node.Then}, true, nil
		}
		return stepResult{continuation: node.Else}, true, nil

	case contract.When:
		// Inclusive timeout: the contract times out once the whole interval
		// is at or past the timeout.
		if env.Interval.To < node.Timeout {
			return stepResult{}, false, nil
		}
		if env.Interval.From >= node.Timeout {
			return stepResult{continuation: node.Then}, true, nil
		}
		return stepResult{}, false, fmt.Errorf("%w: interval [%d, %d], timeout %d",
			ErrAmbiguousTimeInterval, env.Interval.From, env.Interval.To, node.Timeout)

	case contract.Let:
		value := EvalValue(env, state, node.Value)
		var warning TransactionWarning
		if old, ok := state.BoundValues[node.Name]; ok && old.Cmp(value) != 0 {
			warning = Shadowing{Name: node.Name, Old: new(big.Int).Set(old), New: new(big.Int).Set(value)}
		}
		state.BoundValues[node.Name] = value
		return stepResult{warning: warning, continuation: node.Then}, true, nil

	case contract.Assert:
		var warning TransactionWarning
		if !EvalObservation(env, state, node.Condition) {
			warning = AssertionFailed{}
		}
		return stepResult{warning: warning, continuation: node.Then}, true, nil
	}
	panic(fmt.Sprintf("semantics: unhandled contract variant %T", c))
}

// ReduceContractUntilQuiescent exhausts internal reduction steps, accumulating
// warnings and payments in order, until the contract is quiescent: Close with
// empty accounts, or a When genuinely waiting. An ambiguous time interval
// aborts the whole call; no partial results are returned with an error.
func ReduceContractUntilQuiescent(env Environment, state State, c contract.Contract, opts ...Option) (ReduceResult, error) {
	o := buildOptions(opts)
	working := state.Clone()
	result := ReduceResult{Contract: c}

	for steps := 0; ; steps++ {
		if steps >= o.stepBound {
			return ReduceResult{}, fmt.Errorf("%w: %d steps", ErrTooManySteps, steps)
		}
		step, reduced, err := reduceStep(env, working, result.Contract)
		if err != nil {
			return ReduceResult{}, err
		}
		if !reduced {
			break
		}
		result.Reduced = true
		if step.warning != nil {
			result.Warnings = append(result.Warnings, step.warning)
		}
		if step.payment != nil {
			result.Payments = append(result.Payments, *step.payment)
		}
		result.Contract = step.continuation
	}

	result.State = working
	return result, nil
}
