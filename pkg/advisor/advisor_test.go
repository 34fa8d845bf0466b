package advisor_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindburn-Labs/accord/pkg/advisor"
	"github.com/Mindburn-Labs/accord/pkg/contract"
	"github.com/Mindburn-Labs/accord/pkg/semantics"
)

var (
	alice = contract.AddressParty("addr_alice")
	bob   = contract.RoleParty("buyer")
)

func env(from, to int64) semantics.Environment {
	return semantics.Environment{Interval: semantics.TimeInterval{From: from, To: to}}
}

func waitingContract() contract.Contract {
	priceID := contract.ChoiceID{Name: "price", Owner: bob}
	return contract.When{
		Cases: []contract.Case{
			{
				Action: contract.Deposit{
					IntoAccount: alice,
					Party:       alice,
					Token:       contract.NativeToken(),
					// Depends on a binding made during reduction.
					Amount: contract.AddValue{Lhs: contract.UseValue{Name: "base"}, Rhs: contract.ConstantOf(5)},
				},
				Then: contract.Close{},
			},
			{
				Action: contract.Choice{For: priceID, Bounds: []contract.Bound{contract.NewBound(1, 10)}},
				Then:   contract.Close{},
			},
			{
				Action: contract.Notify{If: contract.FalseObs{}},
				Then:   contract.Close{},
			},
			{
				Action: contract.Notify{If: contract.TrueObs{}},
				Then:   contract.Close{},
			},
		},
		Timeout: 1000,
		Then:    contract.Close{},
	}
}

func TestAvailable_EnumeratesMatchableCases(t *testing.T) {
	c := contract.Let{Name: "base", Value: contract.ConstantOf(95), Then: waitingContract()}

	advice, err := advisor.Available(env(0, 10), semantics.NewState(), c)
	require.NoError(t, err)

	assert.False(t, advice.Closed)
	assert.Equal(t, int64(1000), advice.Timeout)
	require.Len(t, advice.Actions, 3, "the false notify is not offered")

	dep := advice.Actions[0]
	assert.Equal(t, advisor.ActionDeposit, dep.Kind)
	assert.Equal(t, 0, dep.CaseIndex)
	assert.Equal(t, alice, dep.IntoAccount)
	assert.Zero(t, dep.Quantity.Cmp(big.NewInt(100)), "deposit amount evaluated on post-reduction state")

	choice := advice.Actions[1]
	assert.Equal(t, advisor.ActionChoice, choice.Kind)
	assert.Equal(t, 1, choice.CaseIndex)
	assert.Equal(t, contract.ChoiceID{Name: "price", Owner: bob}, choice.For)
	assert.Equal(t, []contract.Bound{contract.NewBound(1, 10)}, choice.Bounds)

	notify := advice.Actions[2]
	assert.Equal(t, advisor.ActionNotify, notify.Kind)
	assert.Equal(t, 3, notify.CaseIndex)
}

func TestAvailable_ClosedContract(t *testing.T) {
	advice, err := advisor.Available(env(0, 10), semantics.NewState(), contract.Close{})
	require.NoError(t, err)
	assert.True(t, advice.Closed)
	assert.Empty(t, advice.Actions)
}

func TestAvailable_TimedOutWhenAdvances(t *testing.T) {
	c := contract.When{Timeout: 100, Then: contract.Close{}}

	advice, err := advisor.Available(env(100, 200), semantics.NewState(), c)
	require.NoError(t, err)
	assert.True(t, advice.Closed, "past the timeout, reduction falls through to Close")
}

func TestAvailable_MerkleizedCaseFlagged(t *testing.T) {
	inline := contract.Case{
		Action: contract.Notify{If: contract.TrueObs{}},
		Then:   contract.Close{},
	}
	merk, _, err := contract.MerkleizeCase(inline)
	require.NoError(t, err)

	c := contract.When{Cases: []contract.Case{merk}, Timeout: 1000, Then: contract.Close{}}
	advice, err := advisor.Available(env(0, 10), semantics.NewState(), c)
	require.NoError(t, err)
	require.Len(t, advice.Actions, 1)
	assert.True(t, advice.Actions[0].Merkleized)
}

func TestAvailable_AmbiguousIntervalErrors(t *testing.T) {
	c := contract.When{Timeout: 100, Then: contract.Close{}}
	_, err := advisor.Available(env(50, 150), semantics.NewState(), c)
	require.ErrorIs(t, err, semantics.ErrAmbiguousTimeInterval)
}
