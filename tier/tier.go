// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tier

import (
	"fmt"

	"github.com/luxfi/launchpad/utils/wrappers"
)

const (
	// MaxLevel is the highest claimable level.
	MaxLevel uint8 = 3
	// NumLevels is the number of claimable levels, 0 through MaxLevel.
	NumLevels = int(MaxLevel) + 1

	badgeLen = wrappers.ByteLen + wrappers.LongLen + wrappers.BoolLen
)

// Badge is a user's tier credential. A badge whose nonce is zero has never
// been claimed; its level is meaningless until the first claim.
type Badge struct {
	Level  uint8  `json:"level"`
	Nonce  uint64 `json:"nonce"`
	Usable bool   `json:"usable"`
}

// Claimed reports whether the badge was ever claimed.
func (b Badge) Claimed() bool {
	return b.Nonce > 0
}

// CanClaim reports whether level may be claimed next: level 0 as the first
// claim, the next level up, or the current level once it has been used.
func (b Badge) CanClaim(level uint8) bool {
	switch {
	case level > MaxLevel:
		return false
	case !b.Claimed():
		return level == 0
	case level == b.Level+1:
		return true
	default:
		return level == b.Level && !b.Usable
	}
}

// Holds reports whether the badge carries an unspent credential of at least
// level.
func (b Badge) Holds(level uint8) bool {
	return b.Claimed() && b.Usable && b.Level >= level
}

func (b Badge) String() string {
	return fmt.Sprintf("level=%d nonce=%d usable=%t", b.Level, b.Nonce, b.Usable)
}

func (b Badge) bytes() []byte {
	p := wrappers.NewPacker(badgeLen)
	p.PackByte(b.Level)
	p.PackLong(b.Nonce)
	p.PackBool(b.Usable)
	return p.Bytes
}

func parseBadge(b []byte) (Badge, error) {
	p := wrappers.NewUnpacker(b)
	badge := Badge{
		Level:  p.UnpackByte(),
		Nonce:  p.UnpackLong(),
		Usable: p.UnpackBool(),
	}
	return badge, p.Err
}
