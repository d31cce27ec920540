package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	t.Parallel()

	for _, length := range []int{6, 8, 10} {
		code, err := GenerateCode(length)
		require.NoError(t, err)
		assert.Len(t, code, length)
		assert.Regexp(t, `^[0-9]+$`, code)
	}
}

func TestGenerateCode_InvalidLength(t *testing.T) {
	t.Parallel()

	for _, length := range []int{0, 5, 11} {
		_, err := GenerateCode(length)
		assert.Error(t, err, "length %d", length)
	}
}

func TestGenerateCode_NotConstant(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := GenerateCode(DefaultCodeLength)
		require.NoError(t, err)
		seen[code] = struct{}{}
	}

	assert.Greater(t, len(seen), 1)
}

func TestMessageBody(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Your verification code is 482913", MessageBody("482913"))
}
