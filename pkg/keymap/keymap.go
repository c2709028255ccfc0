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

package keymap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lassandro/gochip8/pkg/encoding"
)

var ErrInvalidDigit = errors.New("Invalid keypad digit")

// Keymap maps host key names onto hex keypad indices. Names are compared
// without regard to case.
type Keymap map[string]uint8

// The 4x4 block under 1234 on a QWERTY keyboard, laid out like the keypad:
//
//	1 2 3 C     1 2 3 4
//	4 5 6 D  <  Q W E R
//	7 8 9 E     A S D F
//	A 0 B F     Z X C V
var layout = [...]struct {
	Name string
	Key  uint8
}{
	{"1", 0x1}, {"2", 0x2}, {"3", 0x3}, {"4", 0xC},
	{"q", 0x4}, {"w", 0x5}, {"e", 0x6}, {"r", 0xD},
	{"a", 0x7}, {"s", 0x8}, {"d", 0x9}, {"f", 0xE},
	{"z", 0xA}, {"x", 0x0}, {"c", 0xB}, {"v", 0xF},
}

func Default() Keymap {
	km := make(Keymap, len(layout))
	for _, entry := range layout {
		km[entry.Name] = entry.Key
	}
	return km
}

// Parse applies overrides of the form name -> digit on top of the default
// layout. Digits are a single hex character or a 0x prefixed value.
func Parse(overrides map[string]string) (Keymap, error) {
	km := Default()

	for name, value := range overrides {
		key, err := ParseDigit(value)
		if err != nil {
			return nil, fmt.Errorf("keymap %q: %w", name, err)
		}

		km[strings.ToLower(name)] = key
	}

	return km, nil
}

func ParseDigit(s string) (uint8, error) {
	var value uint64

	if strings.ContainsAny(s, "xX") {
		hex, err := encoding.DecodeHex(s)
		if err != nil {
			return 0, ErrInvalidDigit
		}
		value = uint64(hex)
	} else {
		var err error
		if value, err = strconv.ParseUint(s, 16, 8); err != nil {
			return 0, ErrInvalidDigit
		}
	}

	if value > 0xF {
		return 0, ErrInvalidDigit
	}

	return uint8(value), nil
}

func (km Keymap) Lookup(name string) (uint8, bool) {
	key, ok := km[strings.ToLower(name)]
	return key, ok
}
