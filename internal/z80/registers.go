package z80

// Register pair identifiers. The register file resolves banked pairs (AF,
// BC, DE, HL) through the active-bank selectors; the rest are single.
type regPair uint8

const (
	regAF regPair = iota
	regBC
	regDE
	regHL
	regIX
	regIY
	regSP
	regPC
	regWZ // internal address temporary (MEMPTR)
	regIR // I in the high byte, refresh counter in the low byte
)

// halfMode selects which half of a pair an 8-bit access targets.
type halfMode uint8

const (
	halfLow halfMode = iota
	halfHigh
)

// registerFile holds every architectural register, including the shadow
// bank. Exactly one bank of AF and one of BC/DE/HL is active at a time; the
// exchange instructions flip the selectors rather than moving data, the way
// the silicon does it.
type registerFile struct {
	af [2]uint16
	bc [2]uint16
	de [2]uint16
	hl [2]uint16
	ix uint16
	iy uint16
	sp uint16
	pc uint16
	wz uint16
	i  byte
	r  byte

	afBank   uint8 // selected by EX AF,AF'
	mainBank uint8 // selected by EXX
}

// read16 returns the value of a register pair through the bank selectors.
func (rf *registerFile) read16(p regPair) uint16 {
	switch p {
	case regAF:
		return rf.af[rf.afBank]
	case regBC:
		return rf.bc[rf.mainBank]
	case regDE:
		return rf.de[rf.mainBank]
	case regHL:
		return rf.hl[rf.mainBank]
	case regIX:
		return rf.ix
	case regIY:
		return rf.iy
	case regSP:
		return rf.sp
	case regPC:
		return rf.pc
	case regWZ:
		return rf.wz
	case regIR:
		return uint16(rf.i)<<8 | uint16(rf.r)
	}
	return 0
}

// write16 stores a full pair. The register file has a single write port;
// the execute matrix guarantees at most one write per sub-cycle.
func (rf *registerFile) write16(p regPair, v uint16) {
	switch p {
	case regAF:
		rf.af[rf.afBank] = v
	case regBC:
		rf.bc[rf.mainBank] = v
	case regDE:
		rf.de[rf.mainBank] = v
	case regHL:
		rf.hl[rf.mainBank] = v
	case regIX:
		rf.ix = v
	case regIY:
		rf.iy = v
	case regSP:
		rf.sp = v
	case regPC:
		rf.pc = v
	case regWZ:
		rf.wz = v
	case regIR:
		rf.i = byte(v >> 8)
		rf.r = byte(v)
	}
}

// read8 returns one half of a pair.
func (rf *registerFile) read8(p regPair, h halfMode) byte {
	v := rf.read16(p)
	if h == halfHigh {
		return byte(v >> 8)
	}
	return byte(v)
}

// write8 stores one half of a pair, leaving the other half alone.
func (rf *registerFile) write8(p regPair, h halfMode, b byte) {
	v := rf.read16(p)
	if h == halfHigh {
		v = v&0x00FF | uint16(b)<<8
	} else {
		v = v&0xFF00 | uint16(b)
	}
	rf.write16(p, v)
}

func (rf *registerFile) a() byte      { return rf.read8(regAF, halfHigh) }
func (rf *registerFile) setA(b byte)  { rf.write8(regAF, halfHigh, b) }
func (rf *registerFile) f() flags     { return flags(rf.read8(regAF, halfLow)) }
func (rf *registerFile) setF(f flags) { rf.write8(regAF, halfLow, byte(f)) }

// swapAF flips the AF bank selector (EX AF,AF').
func (rf *registerFile) swapAF() { rf.afBank ^= 1 }

// swapMain flips the BC/DE/HL bank selector (EXX).
func (rf *registerFile) swapMain() { rf.mainBank ^= 1 }

// swapDEHL exchanges DE and HL within the active bank (EX DE,HL).
func (rf *registerFile) swapDEHL() {
	d := rf.read16(regDE)
	h := rf.read16(regHL)
	rf.write16(regDE, h)
	rf.write16(regHL, d)
}

// bumpR increments the refresh counter within its 7-bit window; bit 7 is
// software-owned and preserved.
func (rf *registerFile) bumpR() {
	rf.r = rf.r&0x80 | (rf.r+1)&0x7F
}

// addressLatch is the only path to the external address pins. It takes a
// 16-bit load and can step by one in either direction.
type addressLatch struct {
	value uint16
}

func (l *addressLatch) load(v uint16) { l.value = v }
func (l *addressLatch) inc()          { l.value++ }
func (l *addressLatch) dec()          { l.value-- }
