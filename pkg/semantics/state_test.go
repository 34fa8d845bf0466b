package semantics_test

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindburn-Labs/accord/pkg/contract"
	"github.com/Mindburn-Labs/accord/pkg/semantics"
)

func TestState_CloneIsDeep(t *testing.T) {
	tok := contract.NativeToken()
	s := semantics.NewState()
	s.Accounts[semantics.AccountID{Party: alice, Token: tok}] = big.NewInt(10)
	s.Choices[contract.ChoiceID{Name: "c", Owner: bob}] = big.NewInt(1)
	s.BoundValues["x"] = big.NewInt(2)
	s.MinTime = 99

	c := s.Clone()
	c.Accounts[semantics.AccountID{Party: alice, Token: tok}].SetInt64(777)
	c.BoundValues["x"].SetInt64(888)
	delete(c.Choices, contract.ChoiceID{Name: "c", Owner: bob})

	assert.Equal(t, int64(10), s.Accounts[semantics.AccountID{Party: alice, Token: tok}].Int64())
	assert.Equal(t, int64(2), s.BoundValues["x"].Int64())
	assert.Contains(t, s.Choices, contract.ChoiceID{Name: "c", Owner: bob})
}

func TestState_JSONRoundTrip(t *testing.T) {
	tok := contract.Token{Currency: "abc123", Name: "seal"}
	s := semantics.NewState()
	s.Accounts[semantics.AccountID{Party: alice, Token: tok}] = big.NewInt(42)
	s.Accounts[semantics.AccountID{Party: carol, Token: contract.NativeToken()}] = big.NewInt(7)
	s.Choices[contract.ChoiceID{Name: "price", Owner: bob}] = big.NewInt(-3)
	s.BoundValues["limit"] = big.NewInt(1000000)
	s.MinTime = 1234

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var back semantics.State
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)
}

func TestState_JSONIsDeterministic(t *testing.T) {
	tok := contract.NativeToken()
	s := semantics.NewState()
	s.Accounts[semantics.AccountID{Party: bob, Token: tok}] = big.NewInt(1)
	s.Accounts[semantics.AccountID{Party: alice, Token: tok}] = big.NewInt(2)
	s.Accounts[semantics.AccountID{Party: carol, Token: tok}] = big.NewInt(3)

	a, err := json.Marshal(s)
	require.NoError(t, err)
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "map iteration order must not leak into encoding")
}

func TestState_JSONRejectsNegativeBalance(t *testing.T) {
	doc := `{"accounts":[{"party":{"address":"a"},"token":{"currency":"","name":""},"amount":"-5"}],
	         "choices":[],"bound_values":[],"min_time":0}`
	var s semantics.State
	err := json.Unmarshal([]byte(doc), &s)
	require.Error(t, err, "accounts never hold a negative balance")
}

func TestFixInterval(t *testing.T) {
	s := semantics.NewState()
	s.MinTime = 100

	e, fixed, err := semantics.FixInterval(semantics.TimeInterval{From: 50, To: 200}, s)
	require.NoError(t, err)
	assert.Equal(t, int64(100), e.Interval.From, "start clamps to min-time")
	assert.Equal(t, int64(200), e.Interval.To)
	assert.Equal(t, int64(100), fixed.MinTime)

	_, _, err = semantics.FixInterval(semantics.TimeInterval{From: 300, To: 200}, s)
	require.ErrorIs(t, err, semantics.ErrInvalidInterval)

	_, _, err = semantics.FixInterval(semantics.TimeInterval{From: 0, To: 99}, s)
	require.ErrorIs(t, err, semantics.ErrIntervalInPast)
}
