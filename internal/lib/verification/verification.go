package verification

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	DefaultCodeLength = 6
	MinCodeLength     = 6
	MaxCodeLength     = 10

	DefaultSubject = "[Wander] Your verification code has arrived"
)

// GenerateCode returns a numeric one-time code of the given length drawn from
// crypto/rand.
func GenerateCode(length int) (string, error) {
	const op = "verification.GenerateCode"

	if length < MinCodeLength || length > MaxCodeLength {
		return "", fmt.Errorf("%s: invalid code length %d", op, length)
	}

	var b strings.Builder
	b.Grow(length)

	max := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}

func MessageBody(code string) string {
	return "Your verification code is " + code
}
