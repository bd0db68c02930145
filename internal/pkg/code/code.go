package code

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// Length is the number of digits in a login code.
const Length = 6

var codeSpace = big.NewInt(1_000_000) // 10^Length

// Generator produces fixed-length numeric login codes. The random source
// is injectable so tests can make generation deterministic.
type Generator struct {
	src io.Reader
}

// NewGenerator returns a Generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{src: rand.Reader}
}

// NewGeneratorWithSource returns a Generator reading randomness from src.
func NewGeneratorWithSource(src io.Reader) *Generator {
	return &Generator{src: src}
}

// Generate returns a string of exactly Length digits, each uniformly
// distributed over 0-9. rand.Int is rejection-sampled, so zero-padding a
// uniform draw from [0, 10^Length) keeps every digit unbiased.
func (g *Generator) Generate() (string, error) {
	n, err := rand.Int(g.src, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
