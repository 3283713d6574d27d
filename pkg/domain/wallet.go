package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	dErrors "surety/pkg/domain-errors"
)

// WalletAddress is a lowercase, 0x-prefixed 20-byte hex address. It is the
// primary key of every worker record.
type WalletAddress string

// ParseWallet validates an address and normalizes it to lowercase.
func ParseWallet(s string) (WalletAddress, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "wallet address is required")
	}
	if !common.IsHexAddress(s) {
		return "", dErrors.New(dErrors.CodeValidation, "wallet address must be a 20-byte hex address")
	}
	return WalletAddress(strings.ToLower(common.HexToAddress(s).Hex())), nil
}

// MustParseWallet is for tests and static configuration.
func MustParseWallet(s string) WalletAddress {
	w, err := ParseWallet(s)
	if err != nil {
		panic(err)
	}
	return w
}

func (w WalletAddress) String() string { return string(w) }

func (w WalletAddress) IsZero() bool { return w == "" }

// Short returns a log-friendly prefix of the address.
func (w WalletAddress) Short() string {
	if len(w) <= 10 {
		return string(w)
	}
	return string(w[:10])
}
