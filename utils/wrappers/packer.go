// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wrappers provides the byte packer used for signed payloads and
// stored records.
package wrappers

import (
	"encoding/binary"
	"errors"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// Encoded widths.
const (
	ByteLen    = 1
	LongLen    = 8
	BoolLen    = 1
	AddressLen = 20
	Uint256Len = 32
)

var (
	ErrInsufficientLength = errors.New("packer has insufficient length for input")
	errNegativeOffset     = errors.New("negative offset")
	errInvalidInput       = errors.New("input does not match expected format")
	errBadBool            = errors.New("unexpected value when unpacking bool")
)

// Packer packs and unpacks a byte array from/to standard values.
//
// Integers are big-endian. Addresses and 256-bit words are written the way
// Solidity's abi.encodePacked writes them, so a packer can build payloads
// that an existing EVM signer also hashes.
//
// The first failure is kept in Err and turns every later call into a no-op,
// so a sequence of packs needs one check at the end.
type Packer struct {
	Err error

	// The largest allowed size of expanding the byte array
	MaxSize int
	// The current byte array
	Bytes []byte
	// The offset that is being written to in the byte array
	Offset int
}

// Errored reports whether a pack or unpack has failed.
func (p *Packer) Errored() bool {
	return p.Err != nil
}

// fail records err unless an earlier failure is already recorded.
func (p *Packer) fail(err error) {
	if p.Err == nil {
		p.Err = err
	}
}

// NewPacker returns a packer that grows up to maxSize bytes.
func NewPacker(maxSize int) *Packer {
	return &Packer{MaxSize: maxSize}
}

// NewUnpacker returns a packer reading from bytes.
func NewUnpacker(bytes []byte) *Packer {
	return &Packer{Bytes: bytes, MaxSize: len(bytes)}
}

// PackByte appends a byte to the byte array
func (p *Packer) PackByte(val byte) {
	p.expand(ByteLen)
	if p.Errored() {
		return
	}

	p.Bytes[p.Offset] = val
	p.Offset++
}

// UnpackByte unpacks a byte from the byte array
func (p *Packer) UnpackByte() byte {
	p.checkSpace(ByteLen)
	if p.Errored() {
		return 0
	}

	val := p.Bytes[p.Offset]
	p.Offset += ByteLen
	return val
}

// PackLong appends a long to the byte array
func (p *Packer) PackLong(val uint64) {
	p.expand(LongLen)
	if p.Errored() {
		return
	}

	binary.BigEndian.PutUint64(p.Bytes[p.Offset:], val)
	p.Offset += LongLen
}

// UnpackLong unpacks a long from the byte array
func (p *Packer) UnpackLong() uint64 {
	p.checkSpace(LongLen)
	if p.Errored() {
		return 0
	}

	val := binary.BigEndian.Uint64(p.Bytes[p.Offset:])
	p.Offset += LongLen
	return val
}

// PackBool packs a bool into the byte array
func (p *Packer) PackBool(b bool) {
	if b {
		p.PackByte(1)
	} else {
		p.PackByte(0)
	}
}

// UnpackBool unpacks a bool from the byte array
func (p *Packer) UnpackBool() bool {
	b := p.UnpackByte()
	switch b {
	case 0:
		return false
	case 1:
		return true
	default:
		p.fail(errBadBool)
		return false
	}
}

// PackFixedBytes appends a byte slice with no length descriptor to the byte array
func (p *Packer) PackFixedBytes(bytes []byte) {
	p.expand(len(bytes))
	if p.Errored() {
		return
	}

	copy(p.Bytes[p.Offset:], bytes)
	p.Offset += len(bytes)
}

// UnpackFixedBytes unpacks a byte slice with no length descriptor from the byte array
func (p *Packer) UnpackFixedBytes(size int) []byte {
	p.checkSpace(size)
	if p.Errored() {
		return nil
	}

	bytes := p.Bytes[p.Offset : p.Offset+size]
	p.Offset += size
	return bytes
}

// PackAddress appends the 20 raw address bytes.
func (p *Packer) PackAddress(addr common.Address) {
	p.PackFixedBytes(addr[:])
}

// UnpackAddress unpacks a 20 byte address.
func (p *Packer) UnpackAddress() common.Address {
	return common.BytesToAddress(p.UnpackFixedBytes(AddressLen))
}

// PackUint256 appends val as a 32 byte big-endian word. A nil value packs as
// zero.
func (p *Packer) PackUint256(val *uint256.Int) {
	if val == nil {
		val = new(uint256.Int)
	}
	word := val.Bytes32()
	p.PackFixedBytes(word[:])
}

// PackUint64Word appends val widened to a 32 byte word.
func (p *Packer) PackUint64Word(val uint64) {
	p.PackUint256(uint256.NewInt(val))
}

// UnpackUint256 unpacks a 32 byte big-endian word.
func (p *Packer) UnpackUint256() *uint256.Int {
	return new(uint256.Int).SetBytes(p.UnpackFixedBytes(Uint256Len))
}

// checkSpace requires that there is at least bytes of write space left in the
// byte array. If this is not true, an error is added to the packer.
func (p *Packer) checkSpace(bytes int) {
	switch {
	case p.Offset < 0:
		p.fail(errNegativeOffset)
	case bytes < 0:
		p.fail(errInvalidInput)
	case len(p.Bytes)-p.Offset < bytes:
		p.fail(ErrInsufficientLength)
	}
}

// expand ensures that there is bytes bytes left of space in the byte slice.
// If this is not allowed due to the maximum size, an error is added to the packer.
func (p *Packer) expand(bytes int) {
	neededSize := bytes + p.Offset
	switch {
	case neededSize <= len(p.Bytes):
		return
	case neededSize > p.MaxSize:
		p.fail(ErrInsufficientLength)
		return
	case neededSize <= cap(p.Bytes):
		p.Bytes = p.Bytes[:neededSize]
		return
	default:
		p.Bytes = append(p.Bytes[:cap(p.Bytes)], make([]byte, neededSize-cap(p.Bytes))...)
	}
}
