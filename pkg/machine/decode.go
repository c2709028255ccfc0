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

package machine

import (
	"github.com/lassandro/gochip8/pkg/encoding"
)

// Op identifies a concrete operation after both levels of dispatch.
type Op uint8

const (
	OpUnknown Op = iota
	OpCLS
	OpRET
	OpJP
	OpCALL
	OpSEImm
	OpSNEImm
	OpSEReg
	OpLDImm
	OpADDImm
	OpMOV
	OpOR
	OpAND
	OpXOR
	OpADD
	OpSUB
	OpSHR
	OpSUBN
	OpSHL
	OpSNEReg
	OpLDI
	OpJPV0
	OpRND
	OpDRW
	OpSKP
	OpSKNP
	OpLDDT
	OpWAITK
	OpSETDT
	OpSETST
	OpADDI
	OpFONT
	OpBCD
	OpSTORE
	OpLOAD
)

var opNames = [...]string{
	OpUnknown: "???",
	OpCLS:     "CLS",
	OpRET:     "RET",
	OpJP:      "JP",
	OpCALL:    "CALL",
	OpSEImm:   "SE",
	OpSNEImm:  "SNE",
	OpSEReg:   "SE",
	OpLDImm:   "LD",
	OpADDImm:  "ADD",
	OpMOV:     "LD",
	OpOR:      "OR",
	OpAND:     "AND",
	OpXOR:     "XOR",
	OpADD:     "ADD",
	OpSUB:     "SUB",
	OpSHR:     "SHR",
	OpSUBN:    "SUBN",
	OpSHL:     "SHL",
	OpSNEReg:  "SNE",
	OpLDI:     "LD I",
	OpJPV0:    "JP V0",
	OpRND:     "RND",
	OpDRW:     "DRW",
	OpSKP:     "SKP",
	OpSKNP:    "SKNP",
	OpLDDT:    "LD DT",
	OpWAITK:   "LD K",
	OpSETDT:   "SET DT",
	OpSETST:   "SET ST",
	OpADDI:    "ADD I",
	OpFONT:    "LD F",
	OpBCD:     "LD B",
	OpSTORE:   "LD [I]",
	OpLOAD:    "LD Vx [I]",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return opNames[OpUnknown]
}

// Instruction is an opcode word along with every bit field projection of it.
// Which fields are meaningful depends on Op.
type Instruction struct {
	Opcode uint16
	Op     Op
	NNN    uint16
	NN     uint8
	N      uint8
	X      uint8
	Y      uint8
}

// Decode maps a raw instruction word onto the operation it encodes. Words that
// match no operation decode to OpUnknown and execute as no-ops.
func Decode(opcode uint16) Instruction {
	inst := Instruction{
		Opcode: opcode,
		NNN:    opcode & 0x0FFF,
		NN:     uint8(opcode & 0x00FF),
		N:      encoding.Nibble(opcode, 0),
		X:      encoding.Nibble(opcode, 2),
		Y:      encoding.Nibble(opcode, 1),
	}

	switch opcode >> 12 {
	// CLS  |0000|....|1110|0000|
	// RET  |0000|....|1110|1110|
	case OP_SYS:
		switch inst.NN {
		case 0xE0:
			inst.Op = OpCLS
		case 0xEE:
			inst.Op = OpRET
		}

	// JP   |0001|NNN           |
	case OP_JP:
		inst.Op = OpJP

	// CALL |0010|NNN           |
	case OP_CALL:
		inst.Op = OpCALL

	// SE   |0011|X   |NN       |
	case OP_SE:
		inst.Op = OpSEImm

	// SNE  |0100|X   |NN       |
	case OP_SNE:
		inst.Op = OpSNEImm

	// SE   |0101|X   |Y   |0000|
	case OP_SER:
		inst.Op = OpSEReg

	// LD   |0110|X   |NN       |
	case OP_LD:
		inst.Op = OpLDImm

	// ADD  |0111|X   |NN       |
	case OP_ADD:
		inst.Op = OpADDImm

	// ALU  |1000|X   |Y   |N   |
	case OP_ALU:
		switch inst.N {
		case 0x0:
			inst.Op = OpMOV
		case 0x1:
			inst.Op = OpOR
		case 0x2:
			inst.Op = OpAND
		case 0x3:
			inst.Op = OpXOR
		case 0x4:
			inst.Op = OpADD
		case 0x5:
			inst.Op = OpSUB
		case 0x6:
			inst.Op = OpSHR
		case 0x7:
			inst.Op = OpSUBN
		case 0xE:
			inst.Op = OpSHL
		}

	// SNE  |1001|X   |Y   |0000|
	case OP_SNER:
		inst.Op = OpSNEReg

	// LD I |1010|NNN           |
	case OP_LDI:
		inst.Op = OpLDI

	// JP V0|1011|NNN           |
	case OP_JPV0:
		inst.Op = OpJPV0

	// RND  |1100|X   |NN       |
	case OP_RND:
		inst.Op = OpRND

	// DRW  |1101|X   |Y   |N   |
	case OP_DRW:
		inst.Op = OpDRW

	// SKP  |1110|X   |1001|1110|
	// SKNP |1110|X   |1010|0001|
	case OP_SKP:
		switch inst.NN {
		case 0x9E:
			inst.Op = OpSKP
		case 0xA1:
			inst.Op = OpSKNP
		}

	// MISC |1111|X   |NN       |
	case OP_MISC:
		switch inst.NN {
		case 0x07:
			inst.Op = OpLDDT
		case 0x0A:
			inst.Op = OpWAITK
		case 0x15:
			inst.Op = OpSETDT
		case 0x18:
			inst.Op = OpSETST
		case 0x1E:
			inst.Op = OpADDI
		case 0x29:
			inst.Op = OpFONT
		case 0x33:
			inst.Op = OpBCD
		case 0x55:
			inst.Op = OpSTORE
		case 0x65:
			inst.Op = OpLOAD
		}
	}

	return inst
}
