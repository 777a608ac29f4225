package z80

// aluOp selects the operation the ALU performs on its two operand latches.
// The selector is part of the decoded control vector.
type aluOp uint8

const (
	aluNone aluOp = iota
	aluAdd
	aluAdc
	aluSub
	aluSbc
	aluAnd
	aluXor
	aluOr
	aluCp

	// Rotate and shift group (CB table and the RLCA/RRCA/RLA/RRA forms).
	aluRlc
	aluRrc
	aluRl
	aluRr
	aluSla
	aluSra
	aluSll // undocumented shift, bit 0 set
	aluSrl

	aluInc
	aluDec
)

// alu mirrors the arithmetic/logic unit: two operand latches, a carry in,
// and a combinational result. The operand latches are loaded by the bus
// routing network; op comes from the decode table.
type alu struct {
	a, b  byte
	carry bool
}

// run computes the selected operation and returns the result byte together
// with the full flag byte. The incoming flags are needed because a few
// operations preserve individual bits.
func (u *alu) run(op aluOp, f flags) (byte, flags) {
	switch op {
	case aluAdd, aluAdc:
		carry := uint16(0)
		if op == aluAdc && u.carry {
			carry = 1
		}
		result := byte(uint16(u.a) + uint16(u.b) + carry)
		f.updateAdd(u.a, u.b, result)
		return result, f
	case aluSub, aluSbc, aluCp:
		carry := uint16(0)
		if op == aluSbc && u.carry {
			carry = 1
		}
		result := byte(uint16(u.a) - uint16(u.b) - carry)
		f.updateSub(u.a, u.b, result)
		if op == aluCp {
			// CP is a subtraction whose undocumented bits come from the
			// operand, not the discarded result.
			f.setUndoc(u.b)
		}
		return result, f
	case aluAnd:
		result := u.a & u.b
		f.updateLogic(result, true)
		return result, f
	case aluXor:
		result := u.a ^ u.b
		f.updateLogic(result, false)
		return result, f
	case aluOr:
		result := u.a | u.b
		f.updateLogic(result, false)
		return result, f
	case aluInc:
		result := u.b + 1
		f.updateInc(result)
		return result, f
	case aluDec:
		result := u.b - 1
		f.updateDec(result)
		return result, f
	case aluRlc, aluRrc, aluRl, aluRr, aluSla, aluSra, aluSll, aluSrl:
		return u.shift(op, f)
	}
	return u.b, f
}

// shift performs the rotate/shift group on operand b, producing the full
// flag byte of the CB-prefixed forms. The accumulator-only forms (RLCA and
// friends) reuse the result but overwrite the flags themselves.
func (u *alu) shift(op aluOp, f flags) (byte, flags) {
	v := u.b
	var result byte
	var carryOut bool
	carryIn := byte(0)
	if u.carry {
		carryIn = 1
	}

	switch op {
	case aluRlc:
		carryOut = v&0x80 != 0
		result = v<<1 | v>>7
	case aluRrc:
		carryOut = v&1 != 0
		result = v>>1 | v<<7
	case aluRl:
		carryOut = v&0x80 != 0
		result = v<<1 | carryIn
	case aluRr:
		carryOut = v&1 != 0
		result = v>>1 | carryIn<<7
	case aluSla:
		carryOut = v&0x80 != 0
		result = v << 1
	case aluSra:
		carryOut = v&1 != 0
		result = v>>1 | v&0x80
	case aluSll:
		carryOut = v&0x80 != 0
		result = v<<1 | 1
	case aluSrl:
		carryOut = v&1 != 0
		result = v >> 1
	}

	f = 0
	f.updateSZP(result)
	f.set(flagC, carryOut)
	return result, f
}

// daa applies the BCD adjustment to the accumulator given the current flags.
func daa(a byte, f flags) (byte, flags) {
	adjust := byte(0)
	carry := f.c()
	if f.h() || a&0x0F > 9 {
		adjust |= 0x06
	}
	if carry || a > 0x99 {
		adjust |= 0x60
		carry = true
	}

	var result byte
	halfAfter := false
	if f.n() {
		result = a - adjust
		halfAfter = f.h() && a&0x0F < 6
	} else {
		result = a + adjust
		halfAfter = a&0x0F > 9
	}

	out := f & flagN
	out.set(flagC, carry)
	out.set(flagH, halfAfter)
	out.updateSZP(result)
	return result, out
}

// bitTest produces the flag byte of BIT b,r. The undocumented bits come
// from a donor byte: the operand itself for register forms, the high byte
// of the internal address temporary for the (HL) and indexed forms.
func bitTest(v byte, bit uint8, donor byte, f flags) flags {
	masked := v & (1 << bit)
	out := f & flagC
	out |= flagH
	out.set(flagZ, masked == 0)
	out.set(flagPV, masked == 0)
	out.set(flagS, masked&0x80 != 0)
	out.setUndoc(donor)
	return out
}
