package random

import (
	"crypto/rand"
	"math/big"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand does not fail on supported platforms
		return 0
	}
	return int(result.Int64())
}

// String draws length characters uniformly from alphabet. Random bytes are
// read in batches and values past the largest multiple of len(alphabet) are
// rejected so every character is equally likely.
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	if len(alphabet) > 256 {
		return r.slowString(length, alphabet)
	}

	limit := 256 - 256%len(alphabet)
	result := make([]byte, 0, length)
	batch := make([]byte, length*2)

	for len(result) < length {
		if _, err := rand.Read(batch); err != nil {
			return r.slowString(length, alphabet)
		}
		for _, b := range batch {
			if int(b) >= limit {
				continue
			}
			result = append(result, alphabet[int(b)%len(alphabet)])
			if len(result) == length {
				break
			}
		}
	}
	return string(result)
}

func (r *CryptoRandom) slowString(length int, alphabet string) string {
	result := make([]byte, length)
	for i := range result {
		result[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(result)
}
