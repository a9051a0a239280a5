// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package verifier checks that launchpad authorizations were signed by a
// trusted off-chain key.
//
// Payloads are hashed with keccak256 and signed as Ethereum personal
// messages, so signatures produced by existing EVM wallets and signing
// scripts verify unchanged.
package verifier

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
)

const (
	// SignatureLen is the length of an r || s || v encoded signature.
	SignatureLen = 65

	personalPrefix = "\x19Ethereum Signed Message:\n32"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")

	errWrongSignatureLen = errors.New("wrong signature length")
)

// Signature is an ECDSA signature split the way EVM contracts receive it.
// V is accepted either as 27/28 or as the raw recovery id 0/1.
type Signature struct {
	V uint8    `json:"v"`
	R [32]byte `json:"r"`
	S [32]byte `json:"s"`
}

// SignatureFromBytes parses r || s || v.
func SignatureFromBytes(b []byte) (Signature, error) {
	if len(b) != SignatureLen {
		return Signature{}, fmt.Errorf("%w: %d", errWrongSignatureLen, len(b))
	}
	var sig Signature
	copy(sig.R[:], b[:32])
	copy(sig.S[:], b[32:64])
	sig.V = b[64]
	return sig, nil
}

// Bytes returns r || s || v with v normalized to 27/28.
func (s Signature) Bytes() []byte {
	b := make([]byte, SignatureLen)
	copy(b[:32], s.R[:])
	copy(b[32:64], s.S[:])
	b[64] = s.V
	if b[64] < 27 {
		b[64] += 27
	}
	return b
}

// recoveryID returns the 0/1 recovery id or false if V is malformed.
func (s Signature) recoveryID() (byte, bool) {
	switch s.V {
	case 0, 1:
		return s.V, true
	case 27, 28:
		return s.V - 27, true
	default:
		return 0, false
	}
}

// Digest returns the hash a trusted key signs for payload:
// keccak256("\x19Ethereum Signed Message:\n32" || keccak256(payload)).
func Digest(payload []byte) common.Hash {
	return common.Hash(crypto.Keccak256Hash([]byte(personalPrefix), crypto.Keccak256(payload)))
}

// Recover returns the address that signed payload.
func Recover(payload []byte, sig Signature) (common.Address, error) {
	recID, ok := sig.recoveryID()
	if !ok {
		return common.Address{}, fmt.Errorf("%w: bad recovery id %d", ErrInvalidSignature, sig.V)
	}
	r := new(big.Int).SetBytes(sig.R[:])
	s := new(big.Int).SetBytes(sig.S[:])
	if !crypto.ValidateSignatureValues(recID, r, s, true) {
		return common.Address{}, fmt.Errorf("%w: malformed signature values", ErrInvalidSignature)
	}

	raw := make([]byte, SignatureLen)
	copy(raw[:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	raw[64] = recID

	digest := Digest(payload)
	pub, err := crypto.SigToPub(digest[:], raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return common.Address(crypto.PubkeyToAddress(*pub)), nil
}

// Verifier checks signatures against one trusted address.
type Verifier struct {
	trusted common.Address
}

// New returns a verifier trusting addr.
func New(addr common.Address) Verifier {
	return Verifier{trusted: addr}
}

// Address returns the trusted signer.
func (v Verifier) Address() common.Address {
	return v.trusted
}

// Verify returns ErrInvalidSignature unless sig over payload was produced by
// the trusted key.
func (v Verifier) Verify(payload []byte, sig Signature) error {
	signer, err := Recover(payload, sig)
	if err != nil {
		return err
	}
	if signer != v.trusted {
		return fmt.Errorf("%w: signed by %s, expected %s", ErrInvalidSignature, signer, v.trusted)
	}
	return nil
}

// Signer produces signatures a Verifier trusting its address accepts.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner wraps key.
func NewSigner(key *ecdsa.PrivateKey) *Signer {
	return &Signer{
		key:     key,
		address: common.Address(crypto.PubkeyToAddress(key.PublicKey)),
	}
}

// NewSignerFromHex parses a hex encoded secp256k1 private key.
func NewSignerFromHex(hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(trimHexPrefix(hexKey))
	if err != nil {
		return nil, err
	}
	return NewSigner(key), nil
}

// Address returns the address derived from the signing key.
func (s *Signer) Address() common.Address {
	return s.address
}

// Sign signs payload. The returned V is 27 or 28.
func (s *Signer) Sign(payload []byte) (Signature, error) {
	digest := Digest(payload)
	raw, err := crypto.Sign(digest[:], s.key)
	if err != nil {
		return Signature{}, err
	}
	sig, err := SignatureFromBytes(raw)
	if err != nil {
		return Signature{}, err
	}
	sig.V += 27
	return sig, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
