// Property-based tests for the pinned interpreter invariants: determinism,
// the exact division rounding rule, value conservation, and idempotence of
// quiescence reduction.
package semantics_test

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Mindburn-Labs/accord/pkg/contract"
	"github.com/Mindburn-Labs/accord/pkg/semantics"
)

func testParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	return parameters
}

// genValueTree generates closed value expressions of bounded depth.
func genValueTree(depth int) gopter.Gen {
	leaf := gen.Int64().Map(func(n int64) contract.Value { return contract.ConstantOf(n) })
	if depth == 0 {
		return leaf
	}
	sub := genValueTree(depth - 1)
	binary := func(build func(l, r contract.Value) contract.Value) gopter.Gen {
		return gopter.CombineGens(sub, sub).Map(func(vs []interface{}) contract.Value {
			return build(vs[0].(contract.Value), vs[1].(contract.Value))
		})
	}
	return gen.OneGenOf(
		leaf,
		sub.Map(func(v contract.Value) contract.Value { return contract.NegValue{V: v} }),
		binary(func(l, r contract.Value) contract.Value { return contract.AddValue{Lhs: l, Rhs: r} }),
		binary(func(l, r contract.Value) contract.Value { return contract.SubValue{Lhs: l, Rhs: r} }),
		binary(func(l, r contract.Value) contract.Value { return contract.MulValue{Lhs: l, Rhs: r} }),
		binary(func(l, r contract.Value) contract.Value { return contract.DivValue{Lhs: l, Rhs: r} }),
	)
}

// TestProperty_EvalDeterminism: evaluating the same expression twice against
// the same environment and state yields the same integer.
func TestProperty_EvalDeterminism(t *testing.T) {
	properties := gopter.NewProperties(testParameters())

	e := env(0, 1000)
	s := semantics.NewState()

	properties.Property("EvalValue is deterministic", prop.ForAll(
		func(v contract.Value) bool {
			a := semantics.EvalValue(e, s, v)
			b := semantics.EvalValue(e, s, v)
			return a.Cmp(b) == 0
		},
		genValueTree(4),
	))

	properties.TestingRun(t)
}

// TestProperty_DivisionRounding pins the division rule algebraically:
// the result q satisfies |2(n - qd)| <= |d| (nearest integer) and, on a tie,
// |qd| >= |n| (away from zero).
func TestProperty_DivisionRounding(t *testing.T) {
	properties := gopter.NewProperties(testParameters())

	e := env(0, 1000)
	s := semantics.NewState()

	properties.Property("DivValue rounds to nearest, ties away from zero", prop.ForAll(
		func(n int64, d int64) bool {
			if d == 0 {
				return true
			}
			q := semantics.EvalValue(e, s, contract.DivValue{
				Lhs: contract.ConstantOf(n),
				Rhs: contract.ConstantOf(d),
			})
			bn, bd := big.NewInt(n), big.NewInt(d)
			qd := new(big.Int).Mul(q, bd)
			remainder := new(big.Int).Sub(bn, qd)
			twoRem := new(big.Int).Abs(new(big.Int).Lsh(remainder, 1))
			absD := new(big.Int).Abs(bd)

			if twoRem.Cmp(absD) > 0 {
				return false // not the nearest integer
			}
			if twoRem.Cmp(absD) == 0 {
				// Tie: |qd| >= |n| means q went away from zero.
				return new(big.Int).Abs(qd).Cmp(new(big.Int).Abs(bn)) >= 0
			}
			return true
		},
		gen.Int64(),
		gen.Int64(),
	))

	properties.Property("division by zero yields zero", prop.ForAll(
		func(n int64) bool {
			q := semantics.EvalValue(e, s, contract.DivValue{
				Lhs: contract.ConstantOf(n),
				Rhs: contract.ConstantOf(0),
			})
			return q.Sign() == 0
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}

type payStep struct {
	from   int
	to     int
	amount int64
}

func genPayChain() gopter.Gen {
	step := gopter.CombineGens(
		gen.IntRange(0, 2),
		gen.IntRange(0, 2),
		gen.Int64Range(-50, 200),
	).Map(func(vs []interface{}) payStep {
		return payStep{from: vs[0].(int), to: vs[1].(int), amount: vs[2].(int64)}
	})
	return gen.SliceOfN(6, step)
}

func buildPayChain(steps []payStep) contract.Contract {
	parties := []contract.Party{alice, bob, carol}
	var c contract.Contract = contract.Close{}
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		payee := contract.PayToAccount(parties[s.to])
		if s.to == s.from {
			payee = contract.PayToParty(parties[s.to])
		}
		c = contract.Pay{
			FromAccount: parties[s.from],
			To:          payee,
			Token:       contract.NativeToken(),
			Amount:      contract.ConstantOf(s.amount),
			Then:        c,
		}
	}
	return c
}

// TestProperty_Conservation: over any chain of pays ending in Close, total
// initial balances equal external payments plus remaining balances (which
// are empty after Close drains).
func TestProperty_Conservation(t *testing.T) {
	properties := gopter.NewProperties(testParameters())

	tok := contract.NativeToken()

	properties.Property("pay chains conserve value", prop.ForAll(
		func(steps []payStep, balA int64, balB int64) bool {
			s := semantics.NewState()
			if balA > 0 {
				s.Accounts[semantics.AccountID{Party: alice, Token: tok}] = big.NewInt(balA)
			}
			if balB > 0 {
				s.Accounts[semantics.AccountID{Party: bob, Token: tok}] = big.NewInt(balB)
			}
			before := s.TotalBalance(tok)

			res, err := semantics.ReduceContractUntilQuiescent(env(0, 10), s, buildPayChain(steps))
			if err != nil {
				return false
			}
			paid := big.NewInt(0)
			for _, p := range res.Payments {
				paid.Add(paid, p.Amount)
			}
			total := new(big.Int).Add(paid, res.State.TotalBalance(tok))
			return before.Cmp(total) == 0
		},
		genPayChain(),
		gen.Int64Range(0, 500),
		gen.Int64Range(0, 500),
	))

	properties.TestingRun(t)
}

// TestProperty_QuiescenceIdempotent: reducing an already-quiescent result is
// a no-op.
func TestProperty_QuiescenceIdempotent(t *testing.T) {
	properties := gopter.NewProperties(testParameters())

	tok := contract.NativeToken()

	properties.Property("second reduction adds nothing", prop.ForAll(
		func(steps []payStep, bal int64) bool {
			s := semantics.NewState()
			if bal > 0 {
				s.Accounts[semantics.AccountID{Party: alice, Token: tok}] = big.NewInt(bal)
			}
			first, err := semantics.ReduceContractUntilQuiescent(env(0, 10), s, buildPayChain(steps))
			if err != nil {
				return false
			}
			second, err := semantics.ReduceContractUntilQuiescent(env(0, 10), first.State, first.Contract)
			if err != nil {
				return false
			}
			return !second.Reduced && len(second.Warnings) == 0 && len(second.Payments) == 0
		},
		genPayChain(),
		gen.Int64Range(0, 500),
	))

	properties.TestingRun(t)
}
