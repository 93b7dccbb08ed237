package utils

import (
	"crypto/rand"
	"math/big"
)

// GenerateOTP returns a uniformly random numeric code of the given length.
// Codes may carry leading zeros, so they are handled as strings end to end.
func GenerateOTP(length int) string {
	if length <= 0 {
		return ""
	}
	const digits = "0123456789"
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			// crypto/rand only fails when the platform entropy source is broken
			panic(err)
		}
		b[i] = digits[n.Int64()]
	}
	return string(b)
}
