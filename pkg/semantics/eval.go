package semantics

import (
	"fmt"
	"math/big"

	"github.com/Mindburn-Labs/accord/pkg/contract"
)

// EvalValue evaluates a value expression against the environment and state.
// Evaluation is total: every well-formed expression yields an integer.
// Unbound identifiers and absent accounts or choices evaluate to 0.
func EvalValue(env Environment, state State, v contract.Value) *big.Int {
	switch val := v.(type) {
	case contract.Constant:
		if val.Value == nil {
			return big.NewInt(0)
		}
		return new(big.Int).Set(val.Value)
	case contract.AvailableMoney:
		return new(big.Int).Set(state.balance(AccountID{Party: val.Party, Token: val.Token}))
	case contract.NegValue:
		return new(big.Int).Neg(EvalValue(env, state, val.V))
	case contract.AddValue:
		return new(big.Int).Add(EvalValue(env, state, val.Lhs), EvalValue(env, state, val.Rhs))
	case contract.SubValue:
		return new(big.Int).Sub(EvalValue(env, state, val.Lhs), EvalValue(env, state, val.Rhs))
	case contract.MulValue:
		return new(big.Int).Mul(EvalValue(env, state, val.Lhs), EvalValue(env, state, val.Rhs))
	case contract.DivValue:
		return divRoundHalfAway(EvalValue(env, state, val.Lhs), EvalValue(env, state, val.Rhs))
	case contract.ChoiceValue:
		if n, ok := state.Choices[val.Choice]; ok {
			return new(big.Int).Set(n)
		}
		return big.NewInt(0)
	case contract.TimeIntervalStart:
		return big.NewInt(env.Interval.From)
	case contract.TimeIntervalEnd:
		return big.NewInt(env.Interval.To)
	case contract.UseValue:
		if n, ok := state.BoundValues[val.Name]; ok {
			return new(big.Int).Set(n)
		}
		return big.NewInt(0)
	case contract.Cond:
		if EvalObservation(env, state, val.If) {
			return EvalValue(env, state, val.Then)
		}
		return EvalValue(env, state, val.Else)
	}
	panic(fmt.Sprintf("semantics: unhandled value variant %T", v))
}

// divRoundHalfAway divides n by d, rounding to the nearest integer with ties
// away from zero. Division by zero yields 0. The rounding rule is pinned to
// the on-chain validator; see the division property tests.
func divRoundHalfAway(n, d *big.Int) *big.Int {
	if d.Sign() == 0 {
		return big.NewInt(0)
	}
	q, r := new(big.Int).QuoRem(n, d, new(big.Int))
	if r.Sign() == 0 {
		return q
	}
	// |2r| vs |d| decides whether the truncated quotient is adjusted
	// toward the next integer away from zero.
	twoR := new(big.Int).Lsh(new(big.Int).Abs(r), 1)
	if twoR.Cmp(new(big.Int).Abs(d)) < 0 {
		return q
	}
	if (n.Sign() < 0) != (d.Sign() < 0) {
		return q.Sub(q, big.NewInt(1))
	}
	return q.Add(q, big.NewInt(1))
}

// EvalObservation evaluates a boolean expression against the environment and
// state. Total, like EvalValue.
func EvalObservation(env Environment, state State, o contract.Observation) bool {
	switch obs := o.(type) {
	case contract.AndObs:
		return EvalObservation(env, state, obs.Lhs) && EvalObservation(env, state, obs.Rhs)
	case contract.OrObs:
		return EvalObservation(env, state, obs.Lhs) || EvalObservation(env, state, obs.Rhs)
	case contract.NotObs:
		return !EvalObservation(env, state, obs.O)
	case contract.ChoseSomething:
		_, ok := state.Choices[obs.Choice]
		return ok
	case contract.ValueGE:
		return EvalValue(env, state, obs.Lhs).Cmp(EvalValue(env, state, obs.Rhs)) >= 0
	case contract.ValueGT:
		return EvalValue(env, state, obs.Lhs).Cmp(EvalValue(env, state, obs.Rhs)) > 0
	case contract.ValueLT:
		return EvalValue(env, state, obs.Lhs).Cmp(EvalValue(env, state, obs.Rhs)) < 0
	case contract.ValueLE:
		return EvalValue(env, state, obs.Lhs).Cmp(EvalValue(env, state, obs.Rhs)) <= 0
	case contract.ValueEQ:
		return EvalValue(env, state, obs.Lhs).Cmp(EvalValue(env, state, obs.Rhs)) == 0
	case contract.TrueObs:
		return true
	case contract.FalseObs:
		return false
	}
	panic(fmt.Sprintf("semantics: unhandled observation variant %T", o))
}
