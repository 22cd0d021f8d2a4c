package otpcode

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Format(t *testing.T) {
	for i := 0; i < 10000; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range []byte(code) {
			require.True(t, c >= '0' && c <= '9', "non-digit in %q", code)
		}
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, Min)
		require.LessOrEqual(t, n, Max)
	}
}

func TestGenerate_ReaderFailure(t *testing.T) {
	_, err := generate(bytes.NewReader(nil))
	assert.ErrorContains(t, err, "generate otp")
}
