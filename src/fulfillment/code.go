package fulfillment

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const CodeLength = 4

var codeSpace = big.NewInt(10000)

// Random 4 digit code, leading zeros included
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate delivery code: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

func IsWellFormed(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
