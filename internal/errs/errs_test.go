package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDealError_Unwrap_PreservesOriginalError(t *testing.T) {
	originalErr := errors.New("original error")

	dealErr := New(ErrCodeInputMalformed, "malformed offer payload", originalErr)

	require.NotNil(t, dealErr)
	assert.Equal(t, originalErr, errors.Unwrap(dealErr))
	assert.True(t, errors.Is(dealErr, originalErr))
}

func TestDealError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "input malformed",
			code:     ErrCodeInputMalformed,
			message:  "offers.json is not valid JSON",
			expected: "[ERR_101_INPUT_MALFORMED] offers.json is not valid JSON",
		},
		{
			name:     "embedding unavailable",
			code:     ErrCodeEmbeddingUnavailable,
			message:  "model backend unreachable",
			expected: "[ERR_201_EMBEDDING_UNAVAILABLE] model backend unreachable",
		},
		{
			name:     "cache hash mismatch",
			code:     ErrCodeCacheHashMismatch,
			message:  "cache stale",
			expected: "[ERR_301_CACHE_HASH_MISMATCH] cache stale",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestDealError_Is_MatchesByCode(t *testing.T) {
	a := New(ErrCodeInputMalformed, "a", nil)
	b := New(ErrCodeInputMalformed, "different message", nil)
	c := New(ErrCodeCacheCorrupt, "a", nil)

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestDealError_WithDetail_Chains(t *testing.T) {
	err := New(ErrCodeOfferFieldMissing, "missing field", nil).
		WithDetail("field", "offer_id").
		WithDetail("offer_index", "3")

	require.Len(t, err.Details, 2)
	assert.Equal(t, "offer_id", err.Details["field"])
	assert.Equal(t, "3", err.Details["offer_index"])
}

func TestLoadError_IsFatal(t *testing.T) {
	err := LoadError("bad input", nil)
	assert.True(t, IsFatal(err))
	assert.False(t, IsRetryable(err))
}

func TestCacheIntegrityError_IsRetryable(t *testing.T) {
	err := CacheIntegrityError("hash mismatch", nil)
	assert.True(t, IsRetryable(err))
	assert.False(t, IsFatal(err))
}

func TestMissingOfferField_SetsDetails(t *testing.T) {
	err := MissingOfferField("name", 7)
	assert.Equal(t, ErrCodeOfferFieldMissing, Code(err))
	assert.Equal(t, "name", err.Details["field"])
	assert.Equal(t, "7", err.Details["offer_index"])
}

func TestIsRetryable_NonDealError(t *testing.T) {
	assert.False(t, IsRetryable(errors.New("plain error")))
	assert.False(t, IsFatal(errors.New("plain error")))
	assert.Equal(t, "", Code(errors.New("plain error")))
}
