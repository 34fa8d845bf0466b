package canonicalize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindburn-Labs/accord/pkg/canonicalize"
)

func TestCanonicalBytes_SortsKeysAndStripsWhitespace(t *testing.T) {
	out, err := canonicalize.CanonicalBytes([]byte(`{ "b": 1, "a": { "z": true, "y": "s" } }`))
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"y":"s","z":true},"b":1}`, string(out))
}

func TestCanonicalBytes_EquivalentDocumentsConverge(t *testing.T) {
	a, err := canonicalize.CanonicalBytes([]byte(`{"x": [1, 2], "y": "v"}`))
	require.NoError(t, err)
	b, err := canonicalize.CanonicalBytes([]byte("{\"y\":\"v\",\n  \"x\":[1,2]}"))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestCanonicalBytes_RejectsInvalidJSON(t *testing.T) {
	_, err := canonicalize.CanonicalBytes([]byte(`{"unterminated":`))
	require.Error(t, err)
}

func TestDigest_Format(t *testing.T) {
	d := canonicalize.Digest([]byte("payload"))
	assert.True(t, strings.HasPrefix(d, canonicalize.DigestPrefix))
	assert.Len(t, d, len(canonicalize.DigestPrefix)+64)

	assert.Equal(t, d, canonicalize.Digest([]byte("payload")))
	assert.NotEqual(t, d, canonicalize.Digest([]byte("payload2")))
}

func TestCanonicalDigest_InsensitiveToKeyOrder(t *testing.T) {
	a, err := canonicalize.CanonicalDigest(map[string]interface{}{"k1": "v", "k2": 2})
	require.NoError(t, err)
	b, err := canonicalize.CanonicalDigest(map[string]interface{}{"k2": 2, "k1": "v"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestValidDigest(t *testing.T) {
	good := canonicalize.Digest([]byte("x"))
	assert.True(t, canonicalize.ValidDigest(good))

	assert.False(t, canonicalize.ValidDigest("sha256:"+strings.Repeat("ab", 32)))
	assert.False(t, canonicalize.ValidDigest("blake2b:abc"))
	assert.False(t, canonicalize.ValidDigest("blake2b:"+strings.Repeat("zz", 32)))
	assert.False(t, canonicalize.ValidDigest(""))
}
