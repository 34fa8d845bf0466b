package store_test

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindburn-Labs/accord/pkg/contract"
	"github.com/Mindburn-Labs/accord/pkg/semantics"
	"github.com/Mindburn-Labs/accord/pkg/store"
)

var (
	alice = contract.AddressParty("addr_alice")
	bob   = contract.RoleParty("buyer")
)

func sampleContinuation() contract.Contract {
	return contract.Pay{
		FromAccount: alice,
		To:          contract.PayToParty(bob),
		Token:       contract.NativeToken(),
		Amount:      contract.ConstantOf(25),
		Then:        contract.Close{},
	}
}

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	c := sampleContinuation()

	hash, err := s.Put(ctx, c)
	require.NoError(t, err)

	want, err := contract.Hash(c)
	require.NoError(t, err)
	assert.Equal(t, want, hash, "continuations are keyed by content hash")

	got, err := s.Get(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := store.NewMemoryStore()
	_, err := s.Get(context.Background(), "blake2b:deadbeef")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSQLiteStore_ContinuationRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenSQLiteStore("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	c := sampleContinuation()
	hash, err := s.Put(ctx, c)
	require.NoError(t, err)

	// Re-putting the same contract is idempotent.
	again, err := s.Put(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	got, err := s.Get(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	_, err = s.Get(ctx, "blake2b:0000")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSQLiteStore_InstanceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenSQLiteStore(filepath.Join(t.TempDir(), "accord.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	st := semantics.NewState()
	st.Accounts[semantics.AccountID{Party: alice, Token: contract.NativeToken()}] = big.NewInt(500)
	st.BoundValues["price"] = big.NewInt(42)
	st.MinTime = 1234

	id, err := s.SaveInstance(ctx, store.Instance{
		Contract: contract.When{Timeout: 99, Then: contract.Close{}},
		State:    st,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id, "save assigns an ID when absent")

	inst, err := s.LoadInstance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, inst.ID)
	assert.Equal(t, contract.When{Timeout: 99, Then: contract.Close{}}, inst.Contract)
	assert.Equal(t, st, inst.State)

	// Upsert: saving under the same ID replaces the snapshot.
	inst.Contract = contract.Close{}
	sameID, err := s.SaveInstance(ctx, inst)
	require.NoError(t, err)
	assert.Equal(t, id, sameID)

	reloaded, err := s.LoadInstance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, contract.Close{}, reloaded.Contract)

	_, err = s.LoadInstance(ctx, "no-such-instance")
	require.ErrorIs(t, err, store.ErrNotFound)
}
