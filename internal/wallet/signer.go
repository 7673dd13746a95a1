package wallet

import (
	"crypto/ecdsa"
	"math/big"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountLocked   = errors.New("account is locked")
	ErrInvalidKey      = errors.New("invalid private key")
)

// Signer signs transactions for one address.
type Signer interface {
	Address() common.Address
	SignTransaction(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// KeySigner holds an unlocked private key in memory.
type KeySigner struct {
	// mu keeps signing from racing with Lock, which zeroes the key.
	mu      sync.RWMutex
	address common.Address
	key     *ecdsa.PrivateKey // nil when locked
}

func newKeySigner(key *ecdsa.PrivateKey) *KeySigner {
	return &KeySigner{address: crypto.PubkeyToAddress(key.PublicKey), key: key}
}

// NewKeySigner parses a hex private key, with or without 0x.
func NewKeySigner(privateKeyHex string) (*KeySigner, error) {
	key, err := parseKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	return newKeySigner(key), nil
}

func parseKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	s := strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	key, err := crypto.HexToECDSA(s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidKey, "%v", err)
	}
	return key, nil
}

// Address returns the address of the signer
func (s *KeySigner) Address() common.Address {
	return s.address
}

// SignTransaction signs tx with the latest signer for chainID.
func (s *KeySigner) SignTransaction(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.key == nil {
		return nil, ErrAccountLocked
	}
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}

// Lock zeroes the key. Signing afterwards fails with ErrAccountLocked. Safe
// to call more than once.
func (s *KeySigner) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		s.key.D.SetInt64(0)
		s.key = nil
	}
}
