package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateSecureID produces a public identifier of the form "<prefix>_<random>",
// where the random part is `length` characters drawn from [a-z0-9] using
// crypto/rand.
func GenerateSecureID(prefix string, length int) (string, error) {
	if strings.TrimSpace(prefix) == "" {
		return "", fmt.Errorf("id prefix cannot be empty")
	}
	if length <= 0 {
		return "", fmt.Errorf("id length must be positive, got %d", length)
	}

	var builder strings.Builder
	builder.Grow(len(prefix) + 1 + length)
	builder.WriteString(prefix)
	builder.WriteByte('_')

	max := big.NewInt(int64(len(idAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate random id: %w", err)
		}
		builder.WriteByte(idAlphabet[n.Int64()])
	}

	return builder.String(), nil
}
