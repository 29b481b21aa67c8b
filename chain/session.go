package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"code.pegvault.io/pegclient/types"
)

// KeySigner signs with a local private key.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewKeySigner parses a hex private key, with or without 0x prefix.
func NewKeySigner(privateKey string) (*KeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key hash into ECDSA: %w", err)
	}

	publicKeyECDSA, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("cannot assert type: publicKey is not of type *ecdsa.PublicKey")
	}

	return &KeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(*publicKeyECDSA),
	}, nil
}

// Address returns the signer's account.
func (s *KeySigner) Address() common.Address {
	return s.address
}

// SignTx signs tx for chainID.
func (s *KeySigner) SignTx(_ context.Context, tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	return ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(chainID), s.key)
}

// KeySession is a wallet session backed by a Signer. A nil signer means no wallet
// is connected.
type KeySession struct {
	signer  Signer
	chainID *big.Int
}

// NewKeySession returns a session for signer on chainID.
func NewKeySession(signer Signer, chainID *big.Int) *KeySession {
	return &KeySession{signer: signer, chainID: chainID}
}

// Session implements types.WalletSession.
func (k *KeySession) Session() (types.Session, bool) {
	if k == nil || k.signer == nil || k.chainID == nil {
		return types.Session{}, false
	}
	return types.Session{
		Address: k.signer.Address(),
		ChainID: new(big.Int).Set(k.chainID),
	}, true
}
