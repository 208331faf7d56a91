package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

const (
	// MinLength is the shortest code the generator produces.
	MinLength = 4
	// MaxLength is the longest code the generator produces.
	MaxLength = 10
)

// ErrInvalidLength is returned when the requested length is outside [MinLength, MaxLength].
var ErrInvalidLength = errors.New("otp: code length out of range")

// Generator produces numeric codes.
type Generator interface {
	// Generate returns a decimal string of exactly length digits.
	Generate(length int) (string, error)
}

// Numeric implements Generator on top of a cryptographically secure source.
type Numeric struct {
	rand io.Reader
}

// NewNumeric returns a generator backed by crypto/rand.
func NewNumeric() *Numeric {
	return &Numeric{rand: rand.Reader}
}

// Generate returns a uniformly distributed, zero-padded code of the given length.
func (n *Numeric) Generate(length int) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", ErrInvalidLength
	}

	upper := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	v, err := rand.Int(n.rand, upper)
	if err != nil {
		return "", fmt.Errorf("otp: read random: %w", err)
	}

	return fmt.Sprintf("%0*d", length, v), nil
}
