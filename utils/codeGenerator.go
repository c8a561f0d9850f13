package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	PromoCodeLength   = 10
	PromoCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// CodeSource yields a random index in [0, n). Injected so promo-code
// generation stays testable with a seeded source; production uses crypto/rand
// because the codes gate real discounts.
type CodeSource interface {
	Intn(n int) (int, error)
}

type secureCodeSource struct{}

func (secureCodeSource) Intn(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

func NewSecureCodeSource() CodeSource {
	return secureCodeSource{}
}

type CodeGenerator struct {
	source CodeSource
}

func NewCodeGenerator(source CodeSource) *CodeGenerator {
	if source == nil {
		source = NewSecureCodeSource()
	}
	return &CodeGenerator{source: source}
}

// Generate produces one fixed-length code from [0-9A-Z]. Codes are
// independent per call; duplicates across sales are an accepted outcome
// and carry no uniqueness constraint in the store.
func (g *CodeGenerator) Generate() (string, error) {
	code := make([]byte, PromoCodeLength)
	for i := range code {
		idx, err := g.source.Intn(len(PromoCodeAlphabet))
		if err != nil {
			return "", err
		}
		code[i] = PromoCodeAlphabet[idx]
	}
	return string(code), nil
}
