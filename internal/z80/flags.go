package z80

// The flag register. Six architectural bits plus the two undocumented bits
// (5 and 3) which mirror residual internal bus state after most operations.
// More info: http://www.zilog.com/docs/z80/um0080.pdf page 76.
type flags byte

const (
	flagC flags = 1 << iota // carry
	flagN                   // add/subtract
	flagPV                  // parity/overflow
	flagX3                  // undocumented, copy of result bit 3
	flagH                   // half carry
	flagX5                  // undocumented, copy of result bit 5
	flagZ                   // zero
	flagS                   // sign

	flagsUndoc = flagX3 | flagX5
)

// Look-up table for sign, carry and overflow after an addition. Indexed by
// bit 7/3 residue of operands and result, packed by updateAdd.
var addSCOTable = [8]flags{
	0,
	flagPV | flagS,
	flagC,
	flagS,
	flagC,
	flagS,
	flagC | flagPV,
	flagC | flagS,
}

// Half-carry after an addition, indexed the same way by bit 4/0 residue.
var addHalfTable = [8]flags{0, 0, flagH, 0, flagH, 0, flagH, flagH}

// Sign, carry and overflow after a subtraction.
var subSCOTable = [8]flags{
	0,
	flagC | flagS,
	flagC,
	flagPV | flagC | flagS,
	flagPV,
	flagS,
	0,
	flagC | flagS,
}

// Half-carry after a subtraction.
var subHalfTable = [8]flags{0, flagH, flagH, flagH, 0, 0, 0, flagH}

// parityTable[v] is 1 when v has even parity.
var parityTable [256]byte

func init() {
	for v := 0; v < 256; v++ {
		ones := 0
		for b := 0; b < 8; b++ {
			if v&(1<<b) != 0 {
				ones++
			}
		}
		if ones%2 == 0 {
			parityTable[v] = 1
		}
	}
}

func (f flags) c() bool  { return f&flagC != 0 }
func (f flags) n() bool  { return f&flagN != 0 }
func (f flags) pv() bool { return f&flagPV != 0 }
func (f flags) h() bool  { return f&flagH != 0 }
func (f flags) z() bool  { return f&flagZ != 0 }
func (f flags) s() bool  { return f&flagS != 0 }

func (f *flags) set(mask flags, on bool) {
	if on {
		*f |= mask
	} else {
		*f &^= mask
	}
}

// setUndoc copies bits 5 and 3 of the donor byte into the undocumented flag
// positions. Which byte donates depends on the operation class; for most it
// is the 8-bit result.
func (f *flags) setUndoc(donor byte) {
	*f = (*f &^ flagsUndoc) | (flags(donor) & flagsUndoc)
}

// updateSZP sets sign, zero, parity and the undocumented bits from a result
// byte. Carry, half-carry and subtract are untouched.
func (f *flags) updateSZP(result byte) {
	f.set(flagS, result&0x80 != 0)
	f.set(flagZ, result == 0)
	f.set(flagPV, parityTable[result] == 1)
	f.setUndoc(result)
}

// updateAdd sets every flag after result = a + b (+ carry, already folded
// into result).
func (f *flags) updateAdd(a, b, result byte) {
	index := (a&0x88)>>1 | (b&0x88)>>2 | (result&0x88)>>3
	*f = addHalfTable[index&7] | addSCOTable[index>>4] | flags(result)&flagsUndoc
	if result == 0 {
		*f |= flagZ
	}
}

// updateSub sets every flag after result = a - b (- carry).
func (f *flags) updateSub(a, b, result byte) {
	index := (a&0x88)>>1 | (b&0x88)>>2 | (result&0x88)>>3
	*f = flagN | subHalfTable[index&7] | subSCOTable[index>>4] | flags(result)&flagsUndoc
	if result == 0 {
		*f |= flagZ
	}
}

// updateAdd16 sets carry, half-carry and the undocumented bits after a
// 16-bit addition; sign, zero and overflow survive from before (ADD HL,ss).
func (f *flags) updateAdd16(a, b, result uint16) {
	index := (a&0x8800)>>9 | (b&0x8800)>>10 | (result&0x8800)>>11
	*f = addHalfTable[index&7] |
		(addSCOTable[index>>4] & flagC) |
		(*f & (flagZ | flagPV | flagS)) |
		flags(result>>8)&flagsUndoc
}

// updateAdc16 sets every flag after a 16-bit add with carry (ADC HL,ss).
func (f *flags) updateAdc16(a, b, result uint16) {
	index := (a&0x8800)>>9 | (b&0x8800)>>10 | (result&0x8800)>>11
	*f = addHalfTable[index&7] | addSCOTable[index>>4] | flags(result>>8)&flagsUndoc
	if result == 0 {
		*f |= flagZ
	}
}

// updateSbc16 sets every flag after a 16-bit subtract with carry (SBC HL,ss).
func (f *flags) updateSbc16(a, b, result uint16) {
	index := (a&0x8800)>>9 | (b&0x8800)>>10 | (result&0x8800)>>11
	*f = flagN | subHalfTable[index&7] | subSCOTable[index>>4] | flags(result>>8)&flagsUndoc
	if result == 0 {
		*f |= flagZ
	}
}

// updateLogic sets every flag after AND/OR/XOR. AND sets half-carry, the
// others clear it; carry and subtract always clear.
func (f *flags) updateLogic(result byte, isAnd bool) {
	if isAnd {
		*f = flagH
	} else {
		*f = 0
	}
	*f |= flags(parityTable[result]) << 2 // PV position
	f.set(flagZ, result == 0)
	f.set(flagS, result&0x80 != 0)
	f.setUndoc(result)
}

// updateInc sets flags after an 8-bit increment. Carry survives.
func (f *flags) updateInc(result byte) {
	*f &= flagC
	f.set(flagPV, result == 0x80)
	f.set(flagH, result&0x0F == 0)
	f.set(flagZ, result == 0)
	f.set(flagS, result&0x80 != 0)
	f.setUndoc(result)
}

// updateDec sets flags after an 8-bit decrement. Carry survives.
func (f *flags) updateDec(result byte) {
	*f = (*f & flagC) | flagN
	if result == 0x7F {
		*f |= flagPV
	}
	if result&0x0F == 0x0F {
		*f |= flagH
	}
	f.set(flagZ, result == 0)
	f.set(flagS, result&0x80 != 0)
	f.setUndoc(result)
}
