// Package gameid generates session identifiers: a UUIDv7 encoded as 26
// characters of Crockford base32, so identifiers sort by creation time.
package gameid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

const encodedLen = 26

// RandSource supplies random bytes. *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
}

// Generate creates an identifier for a session started at now using
// crypto/rand.
func Generate(now time.Time) string {
	return GenerateWithRandSource(now, nil)
}

// GenerateWithRandSource creates an identifier drawing its random bits from
// rs. A nil rs uses crypto/rand.
func GenerateWithRandSource(now time.Time, rs RandSource) string {
	return encodeBase32(newUUIDv7(now, rs))
}

// newUUIDv7 lays out a 48-bit millisecond timestamp, version 7, variant 10
// and 74 random bits.
func newUUIDv7(now time.Time, rs RandSource) [16]byte {
	var uuid [16]byte

	ms := now.UnixMilli()
	for i := range 6 {
		uuid[i] = byte(ms >> (40 - 8*i))
	}

	if rs != nil {
		for i := 6; i < 16; i++ {
			uuid[i] = byte(rs.IntN(256))
		}
	} else if _, err := rand.Read(uuid[6:]); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x70
	uuid[8] = (uuid[8] & 0x3f) | 0x80
	return uuid
}

// bit returns bit k of the 130-bit value formed by two zero bits followed
// by data, most significant first.
func bit(data *[16]byte, k int) uint8 {
	k -= 2
	if k < 0 {
		return 0
	}
	return (data[k/8] >> (7 - k%8)) & 1
}

func encodeBase32(data [16]byte) string {
	var out [encodedLen]byte
	for i := range encodedLen {
		var v uint8
		for j := range 5 {
			v = v<<1 | bit(&data, i*5+j)
		}
		out[i] = alphabet[v]
	}
	return string(out[:])
}

func decodeBase32(id string) ([16]byte, error) {
	var data [16]byte
	if err := Validate(id); err != nil {
		return data, err
	}
	for i := range encodedLen {
		v := strings.IndexByte(alphabet, id[i])
		for j := range 5 {
			k := i*5 + j - 2
			if k < 0 {
				continue
			}
			if v>>(4-j)&1 == 1 {
				data[k/8] |= 1 << (7 - k%8)
			}
		}
	}
	return data, nil
}

// Timestamp returns the creation time encoded in id, to the millisecond.
func Timestamp(id string) (time.Time, error) {
	data, err := decodeBase32(id)
	if err != nil {
		return time.Time{}, err
	}
	var ms int64
	for i := range 6 {
		ms = ms<<8 | int64(data[i])
	}
	return time.UnixMilli(ms), nil
}

// Validate checks if an identifier is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != encodedLen {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", encodedLen, len(id))
	}

	// The two leading pad bits are zero, so the first character is at most 7
	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}

	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
