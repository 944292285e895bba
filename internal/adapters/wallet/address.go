package wallet

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"

	"communityhub/internal/domain"
)

type randomAddressGenerator struct {
	entropy io.Reader
}

// NewRandomAddressGenerator returns an AddressGenerator that draws 20 random bytes
// per address and formats them as an EIP-55 checksummed hex string. A nil entropy
// source uses crypto/rand.
func NewRandomAddressGenerator(entropy io.Reader) domain.AddressGenerator {
	if entropy == nil {
		entropy = rand.Reader
	}
	return &randomAddressGenerator{entropy: entropy}
}

func (g *randomAddressGenerator) NewAddress() (string, error) {
	var b [common.AddressLength]byte
	if _, err := io.ReadFull(g.entropy, b[:]); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}
	return common.BytesToAddress(b[:]).Hex(), nil
}
