// Package joincode generates the short codes users type to join a board.
package joincode

import (
	"crypto/rand"
	"math/big"
)

const (
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	Length   = 6
)

// Source yields uniformly distributed integers in [0, n).
type Source interface {
	IntN(n int) int
}

// Generate builds a code of Length characters drawn from Alphabet.
func Generate(src Source) string {
	b := make([]byte, Length)
	for i := range b {
		b[i] = Alphabet[src.IntN(len(Alphabet))]
	}
	return string(b)
}

// Valid reports whether code has the shape Generate produces.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// CryptoSource draws from crypto/rand.
type CryptoSource struct{}

func (CryptoSource) IntN(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic("joincode: crypto/rand failed: " + err.Error())
	}
	return int(v.Int64())
}
