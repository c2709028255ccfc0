// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package encoding

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidHex = errors.New("Invalid hex string")

// Decodes a hexidecimal string in the formats: 0xFFFF, xFFFF, 0xFF, xFF
func DecodeHex(s string) (uint16, error) {
	result, err := decodeHex(s, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Decodes a 32-bit RGBA colour in the formats: 0xRRGGBBAA, xRRGGBBAA
func DecodeColor(s string) (uint32, error) {
	result, err := decodeHex(s, 32)

	if err != nil {
		return 0, err
	}

	return uint32(result), nil
}

func decodeHex(s string, bits int) (uint64, error) {
	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 {
		return 0, ErrInvalidHex
	}

	return strconv.ParseUint(s, 0, bits)
}

// Decodes a base-10 string in the formats: #123, 123
func DecodeInt(s string) (int16, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	result, err := strconv.ParseInt(s, 10, 16)

	if err != nil {
		return 0, err
	}

	return int16(result), nil
}

// Decodes an address given either as hex (0x200) or decimal (#512, 512)
func DecodeAddress(s string) (uint16, error) {
	if strings.ContainsAny(s, "xX") {
		return DecodeHex(s)
	}

	value, err := DecodeInt(s)

	if err != nil {
		return 0, err
	}

	if value < 0 {
		return 0, errors.New("Negative address")
	}

	return uint16(value), nil
}

// Word joins two bytes, most significant first
func Word(hi, lo uint8) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

// Nibble returns the 4-bit field at position i, counting from the least
// significant nibble.
func Nibble(value uint16, i uint) uint8 {
	return uint8((value >> (4 * i)) & 0xF)
}

func Bool(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
