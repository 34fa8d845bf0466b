package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindburn-Labs/accord/pkg/contract"
)

func TestSchema_AcceptsEncodedContracts(t *testing.T) {
	for name, c := range map[string]contract.Contract{
		"close":  contract.Close{},
		"sample": sampleContract(),
		"when with merkleized case": contract.When{
			Cases: []contract.Case{{
				Action:         contract.Notify{If: contract.TrueObs{}},
				MerkleizedThen: "blake2b:" + repeatHex(64),
			}},
			Timeout: 42,
			Then:    contract.Close{},
		},
	} {
		data, err := contract.Marshal(c)
		require.NoError(t, err, name)
		assert.NoError(t, contract.ValidateDocument(data), name)
	}
}

func TestSchema_RejectsMalformedDocuments(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown tag":        `{"closeish":{}}`,
		"bare number close":  `42`,
		"constant as number": `{"let":{"name":"x","value":{"constant":12},"then":"close"}}`,
		"constant non-digit": `{"let":{"name":"x","value":{"constant":"12x"},"then":"close"}}`,
		"bad merkle hash": `{"when":{"cases":[{"action":"notify","merkleized_then":"sha256:00"}],
			"timeout":1,"then":"close"}}`,
		"missing timeout": `{"when":{"cases":[],"then":"close"}}`,
		"party with both fields": `{"pay":{"from_account":{"address":"a","role":"r"},
			"to":{"party":{"role":"r"}},"token":{"currency":"","name":""},
			"amount":{"constant":"1"},"then":"close"}}`,
	} {
		assert.Error(t, contract.ValidateDocument([]byte(doc)), name)
	}
}

func TestDecodeValidated(t *testing.T) {
	data, err := contract.Marshal(sampleContract())
	require.NoError(t, err)

	c, err := contract.DecodeValidated(data)
	require.NoError(t, err)
	assert.Equal(t, sampleContract(), c)

	_, err = contract.DecodeValidated([]byte(`{"closeish":{}}`))
	require.Error(t, err)
}

func repeatHex(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = "0123456789abcdef"[i%16]
	}
	return string(b)
}
