package z80

import "testing"

// testBus is a flat 64K memory plus an IO space, clocked against the pins
// the way the board does it: respond to the strobes after every period.
type testBus struct {
	mem    [65536]byte
	ioIn   map[uint16]byte
	ioOut  map[uint16]byte
	vector byte // byte driven during an interrupt acknowledge
}

func newTestBus(program ...byte) *testBus {
	b := &testBus{ioIn: map[uint16]byte{}, ioOut: map[uint16]byte{}}
	copy(b.mem[:], program)
	return b
}

func (b *testBus) service(p *Pins) {
	switch {
	case p.M1 && p.IORQ:
		p.DataIn = b.vector
	case p.MREQ && p.RD:
		p.DataIn = b.mem[p.Addr]
	case p.MREQ && p.WR && p.DataDriven:
		b.mem[p.Addr] = p.Data
	case p.IORQ && p.RD:
		p.DataIn = b.ioIn[p.Addr]
	case p.IORQ && p.WR && p.DataDriven:
		b.ioOut[p.Addr] = p.Data
	}
}

func step(c *CPU, b *testBus) {
	c.Clock()
	b.service(c.Pins())
}

// exec clocks the core through one complete instruction and returns the
// T-state count it took.
func exec(t *testing.T, c *CPU, b *testBus) int {
	t.Helper()
	n := 0
	for {
		step(c, b)
		n++
		if c.bus.conflict {
			t.Fatalf("bus segment double-driven")
		}
		if m, ts := c.Sequence(); m == 1 && ts == 1 {
			return n
		}
		if n > 200 {
			t.Fatalf("instruction did not complete within 200 T states")
		}
	}
}

func newCore(program ...byte) (*CPU, *testBus) {
	s := DefaultPowerOn()
	s.SP = 0xFFF0
	return New(s), newTestBus(program...)
}

func TestInstructionTimings(t *testing.T) {
	cases := []struct {
		name    string
		program []byte
		prep    func(s *State)
		tStates int
	}{
		{"NOP", []byte{0x00}, nil, 4},
		{"LD A,n", []byte{0x3E, 0x42}, nil, 7},
		{"LD B,C", []byte{0x41}, nil, 4},
		{"LD A,(HL)", []byte{0x7E}, nil, 7},
		{"LD (HL),n", []byte{0x36, 0x99}, func(s *State) { s.HL = 0x4000 }, 10},
		{"LD A,(nn)", []byte{0x3A, 0x00, 0x40}, nil, 13},
		{"LD (nn),A", []byte{0x32, 0x00, 0x40}, nil, 13},
		{"LD HL,(nn)", []byte{0x2A, 0x00, 0x40}, nil, 16},
		{"LD (nn),HL", []byte{0x22, 0x00, 0x40}, nil, 16},
		{"LD BC,nn", []byte{0x01, 0x34, 0x12}, nil, 10},
		{"INC BC", []byte{0x03}, nil, 6},
		{"INC A", []byte{0x3C}, nil, 4},
		{"INC (HL)", []byte{0x34}, func(s *State) { s.HL = 0x4000 }, 11},
		{"ADD A,B", []byte{0x80}, nil, 4},
		{"ADD A,n", []byte{0xC6, 0x01}, nil, 7},
		{"ADD A,(HL)", []byte{0x86}, nil, 7},
		{"ADD HL,BC", []byte{0x09}, nil, 11},
		{"PUSH BC", []byte{0xC5}, nil, 11},
		{"POP BC", []byte{0xC1}, nil, 10},
		{"EX (SP),HL", []byte{0xE3}, nil, 19},
		{"EXX", []byte{0xD9}, nil, 4},
		{"JP nn", []byte{0xC3, 0x00, 0x10}, nil, 10},
		{"JP Z,nn not taken", []byte{0xCA, 0x00, 0x10}, func(s *State) { s.AF = 0xFF00 }, 10},
		{"JP (HL)", []byte{0xE9}, nil, 4},
		{"JR", []byte{0x18, 0x10}, nil, 12},
		{"JR Z taken", []byte{0x28, 0x10}, func(s *State) { s.AF = 0x0040 }, 12},
		{"JR Z not taken", []byte{0x28, 0x10}, func(s *State) { s.AF = 0x0000 }, 7},
		{"DJNZ taken", []byte{0x10, 0x10}, func(s *State) { s.BC = 0x0200 }, 13},
		{"DJNZ not taken", []byte{0x10, 0x10}, func(s *State) { s.BC = 0x0100 }, 8},
		{"CALL nn", []byte{0xCD, 0x00, 0x10}, nil, 17},
		{"CALL Z taken", []byte{0xCC, 0x00, 0x10}, func(s *State) { s.AF = 0x0040 }, 17},
		{"CALL Z not taken", []byte{0xCC, 0x00, 0x10}, func(s *State) { s.AF = 0x0000 }, 10},
		{"RET", []byte{0xC9}, nil, 10},
		{"RET Z taken", []byte{0xC8}, func(s *State) { s.AF = 0x0040 }, 11},
		{"RET Z not taken", []byte{0xC8}, func(s *State) { s.AF = 0x0000 }, 5},
		{"RST 10h", []byte{0xD7}, nil, 11},
		{"OUT (n),A", []byte{0xD3, 0x80}, nil, 11},
		{"IN A,(n)", []byte{0xDB, 0x80}, nil, 11},
		{"RLC B", []byte{0xCB, 0x00}, nil, 8},
		{"BIT 0,B", []byte{0xCB, 0x40}, nil, 8},
		{"BIT 0,(HL)", []byte{0xCB, 0x46}, nil, 12},
		{"SET 0,(HL)", []byte{0xCB, 0xC6}, func(s *State) { s.HL = 0x4000 }, 15},
		{"NEG", []byte{0xED, 0x44}, nil, 8},
		{"RETI", []byte{0xED, 0x4D}, nil, 14},
		{"IN B,(C)", []byte{0xED, 0x40}, nil, 12},
		{"OUT (C),B", []byte{0xED, 0x41}, nil, 12},
		{"ADC HL,BC", []byte{0xED, 0x4A}, nil, 15},
		{"LD (nn),BC", []byte{0xED, 0x43, 0x00, 0x40}, nil, 20},
		{"LD A,I", []byte{0xED, 0x57}, nil, 9},
		{"RRD", []byte{0xED, 0x67}, func(s *State) { s.HL = 0x4000 }, 18},
		{"LDI", []byte{0xED, 0xA0}, func(s *State) { s.HL, s.DE, s.BC = 0x4000, 0x5000, 2 }, 16},
		{"CPI", []byte{0xED, 0xA1}, func(s *State) { s.HL, s.BC = 0x4000, 2 }, 16},
		{"INI", []byte{0xED, 0xA2}, func(s *State) { s.HL, s.BC = 0x4000, 0x0280 }, 16},
		{"OUTI", []byte{0xED, 0xA3}, func(s *State) { s.HL, s.BC = 0x4000, 0x0280 }, 16},
		{"LD IX,nn", []byte{0xDD, 0x21, 0x34, 0x12}, nil, 14},
		{"INC IX", []byte{0xDD, 0x23}, nil, 10},
		{"ADD IX,BC", []byte{0xDD, 0x09}, nil, 15},
		{"JP (IX)", []byte{0xDD, 0xE9}, nil, 8},
		{"LD A,(IX+d)", []byte{0xDD, 0x7E, 0x05}, func(s *State) { s.IX = 0x4000 }, 19},
		{"LD (IX+d),n", []byte{0xDD, 0x36, 0x05, 0x42}, func(s *State) { s.IX = 0x4000 }, 19},
		{"INC (IX+d)", []byte{0xDD, 0x34, 0x05}, func(s *State) { s.IX = 0x4000 }, 23},
		{"EX (SP),IX", []byte{0xDD, 0xE3}, nil, 23},
		{"BIT 0,(IX+d)", []byte{0xDD, 0xCB, 0x05, 0x46}, func(s *State) { s.IX = 0x4000 }, 20},
		{"RLC (IX+d)", []byte{0xDD, 0xCB, 0x05, 0x06}, func(s *State) { s.IX = 0x4000 }, 23},
	}

	for _, tc := range cases {
		s := DefaultPowerOn()
		s.SP = 0xFFF0
		s.HL = 0x4000
		if tc.prep != nil {
			tc.prep(&s)
		}
		c := New(s)
		b := newTestBus(tc.program...)
		if got := exec(t, c, b); got != tc.tStates {
			t.Errorf("%s: %d T states, want %d", tc.name, got, tc.tStates)
		}
	}
}

func TestFetchMachineCycleShape(t *testing.T) {
	// LD A,n is the canonical two machine-cycle instruction: a 4T fetch
	// and a 3T operand read.
	c, b := newCore(0x3E, 0x42)

	// T1: PC on the address bus, M1 with the read strobes
	step(c, b)
	p := c.Pins()
	if !p.M1 || !p.MREQ || !p.RD || p.Addr != 0x0000 {
		t.Fatalf("fetch T1: M1=%v MREQ=%v RD=%v addr=%04X", p.M1, p.MREQ, p.RD, p.Addr)
	}

	// T2: incremented latch written back to PC
	step(c, b)
	if pc := c.Snapshot().PC; pc != 0x0001 {
		t.Fatalf("fetch T2: PC=%04X want 0001", pc)
	}

	// T3: refresh address, M1 released
	step(c, b)
	if p.M1 || !p.RFSH || !p.MREQ {
		t.Fatalf("fetch T3: M1=%v RFSH=%v MREQ=%v", p.M1, p.RFSH, p.MREQ)
	}

	// T4: refresh counter stepped
	step(c, b)
	if r := c.Snapshot().R; r != 1 {
		t.Fatalf("fetch T4: R=%d want 1", r)
	}

	// operand read delivers the byte into A at instruction end
	step(c, b)
	step(c, b)
	step(c, b)
	if a := c.Snapshot().AF >> 8; a != 0x42 {
		t.Fatalf("LD A,n: A=%02X want 42", a)
	}
	if m, ts := c.Sequence(); m != 1 || ts != 1 {
		t.Fatalf("boundary: at M%d T%d", m, ts)
	}
}

func TestRefreshCounterWindow(t *testing.T) {
	s := DefaultPowerOn()
	s.R = 0xFF
	c := New(s)
	b := newTestBus(0x00)
	exec(t, c, b)
	// bit 7 is software-owned; the counter wraps within the low
	// seven bits
	if r := c.Snapshot().R; r != 0x80 {
		t.Fatalf("R=%02X want 80", r)
	}
}

func TestWaitStretchesTheCycle(t *testing.T) {
	c, b := newCore(0x00)
	step(c, b) // T1
	c.Pins().WAIT = true
	step(c, b) // T2, held
	step(c, b) // still T2
	if _, ts := c.Sequence(); ts != 2 {
		t.Fatalf("WAIT: at T%d want T2", ts)
	}
	c.Pins().WAIT = false
	n := 0
	for {
		step(c, b)
		n++
		if m, ts := c.Sequence(); m == 1 && ts == 1 {
			break
		}
	}
	if n != 3 { // the resumed T2 completes, then T3 and T4
		t.Fatalf("WAIT release: %d T states to finish, want 3", n)
	}
}

func TestBusRequestReleasesTheBus(t *testing.T) {
	c, b := newCore(0x00, 0x00)
	exec(t, c, b)

	c.Pins().BUSRQ = true
	step(c, b)
	p := c.Pins()
	if !p.BUSAK || !p.TriState {
		t.Fatalf("BUSRQ: BUSAK=%v TriState=%v", p.BUSAK, p.TriState)
	}
	pc := c.Snapshot().PC
	for i := 0; i < 8; i++ {
		step(c, b)
	}
	if c.Snapshot().PC != pc {
		t.Fatalf("core advanced while off the bus")
	}

	c.Pins().BUSRQ = false
	exec(t, c, b)
	if p.BUSAK || p.TriState {
		t.Fatalf("BUSRQ release: BUSAK=%v TriState=%v", p.BUSAK, p.TriState)
	}
	if got := c.Snapshot().PC; got != pc+1 {
		t.Fatalf("PC=%04X want %04X", got, pc+1)
	}
}

func TestResetSinglePeriod(t *testing.T) {
	s := DefaultPowerOn()
	s.PC = 0x1234
	s.I, s.R = 0x56, 0x78
	s.BC = 0xABCD
	c := New(s)
	b := newTestBus(0x00)

	// One clock period with RESET held covers both update points: PC on
	// the rising sub-step, the IR pair on the falling one.
	c.Pins().RESET = true
	step(c, b)
	snap := c.Snapshot()
	if snap.PC != 0 {
		t.Fatalf("one-period reset left PC=%04X", snap.PC)
	}
	if snap.I != 0 || snap.R != 0 {
		t.Fatalf("IR not cleared by one-period reset: I=%02X R=%02X", snap.I, snap.R)
	}
	// everything else is left alone
	if snap.BC != 0xABCD {
		t.Fatalf("reset touched BC: %04X", snap.BC)
	}

	c.Pins().RESET = false
	exec(t, c, b)
	if pc := c.Snapshot().PC; pc != 1 {
		t.Fatalf("post-reset fetch: PC=%04X want 0001", pc)
	}
}

func TestExchangeInstructions(t *testing.T) {
	s := DefaultPowerOn()
	s.AF, s.AF2 = 0x1111, 0x2222
	s.BC, s.BC2 = 0x3333, 0x4444
	s.DE, s.DE2 = 0x5555, 0x6666
	s.HL, s.HL2 = 0x7777, 0x8888
	c := New(s)
	b := newTestBus(0x08, 0xD9, 0xEB) // EX AF,AF' / EXX / EX DE,HL

	exec(t, c, b)
	if snap := c.Snapshot(); snap.AF != 0x2222 || snap.BC != 0x3333 {
		t.Fatalf("EX AF,AF': AF=%04X BC=%04X", snap.AF, snap.BC)
	}
	exec(t, c, b)
	if snap := c.Snapshot(); snap.BC != 0x4444 || snap.DE != 0x6666 || snap.HL != 0x8888 || snap.AF != 0x2222 {
		t.Fatalf("EXX: %+v", snap)
	}
	exec(t, c, b)
	if snap := c.Snapshot(); snap.DE != 0x8888 || snap.HL != 0x6666 {
		t.Fatalf("EX DE,HL: DE=%04X HL=%04X", snap.DE, snap.HL)
	}
}

func TestCallPushesTheReturnAddress(t *testing.T) {
	c, b := newCore(0xCD, 0x00, 0x10) // CALL 1000h
	exec(t, c, b)
	snap := c.Snapshot()
	if snap.PC != 0x1000 {
		t.Fatalf("CALL: PC=%04X", snap.PC)
	}
	if snap.SP != 0xFFEE {
		t.Fatalf("CALL: SP=%04X", snap.SP)
	}
	if b.mem[0xFFEE] != 0x03 || b.mem[0xFFEF] != 0x00 {
		t.Fatalf("CALL: stack %02X %02X", b.mem[0xFFEE], b.mem[0xFFEF])
	}

	b.mem[0x1000] = 0xC9 // RET
	exec(t, c, b)
	if pc := c.Snapshot().PC; pc != 0x0003 {
		t.Fatalf("RET: PC=%04X", pc)
	}
}

func TestIndexedAddressing(t *testing.T) {
	s := DefaultPowerOn()
	s.IX = 0x4005
	c := New(s)
	b := newTestBus(0xDD, 0x7E, 0xFB) // LD A,(IX-5)
	b.mem[0x4000] = 0x77
	exec(t, c, b)
	if a := c.Snapshot().AF >> 8; a != 0x77 {
		t.Fatalf("LD A,(IX-5): A=%02X", a)
	}
}

func TestUndocumentedIndexHalves(t *testing.T) {
	s := DefaultPowerOn()
	s.IX = 0x1234
	c := New(s)
	b := newTestBus(
		0xDD, 0x26, 0x9A, // LD IXH,n
		0xDD, 0x7D, // LD A,IXL
	)
	exec(t, c, b)
	if ix := c.Snapshot().IX; ix != 0x9A34 {
		t.Fatalf("LD IXH,n: IX=%04X", ix)
	}
	exec(t, c, b)
	if a := c.Snapshot().AF >> 8; a != 0x34 {
		t.Fatalf("LD A,IXL: A=%02X", a)
	}
}

func TestDDCBRegisterCopy(t *testing.T) {
	s := DefaultPowerOn()
	s.IX = 0x4000
	c := New(s)
	b := newTestBus(0xDD, 0xCB, 0x00, 0x00) // RLC (IX+0),B (undocumented)
	b.mem[0x4000] = 0x81
	exec(t, c, b)
	snap := c.Snapshot()
	if b.mem[0x4000] != 0x03 {
		t.Fatalf("DDCB RLC: mem=%02X", b.mem[0x4000])
	}
	if snap.BC>>8 != 0x03 {
		t.Fatalf("DDCB RLC: B=%02X want copy of result", snap.BC>>8)
	}
	if snap.AF&uint16(flagC) == 0 {
		t.Fatalf("DDCB RLC: carry not set")
	}
}

func TestRedundantPrefixRestartsCycleCount(t *testing.T) {
	s := DefaultPowerOn()
	s.IX = 0x4000
	c := New(s)
	// The first DD is thrown away; the second restarts the instruction, so
	// the machine cycle count begins over and never passes M6.
	b := newTestBus(0xDD, 0xDD, 0xCB, 0x00, 0xC6) // SET 0,(IX+0)
	b.mem[0x4000] = 0x00

	// The restart makes (M1,T1) reappear mid-stream, so run until the
	// write has landed and the sequencer sits at a boundary again.
	var maxM uint8
	for n := 0; ; n++ {
		step(c, b)
		m, ts := c.Sequence()
		if m > maxM {
			maxM = m
		}
		if m == 1 && ts == 1 && b.mem[0x4000] == 0x01 {
			break
		}
		if n > 200 {
			t.Fatalf("instruction did not complete within 200 T states")
		}
	}
	if maxM > 6 {
		t.Fatalf("machine cycle counter reached M%d", maxM)
	}
}

func TestBlockTransfer(t *testing.T) {
	s := DefaultPowerOn()
	s.HL, s.DE, s.BC = 0x4000, 0x5000, 0x0003
	s.AF = 0x0000
	c := New(s)
	b := newTestBus(0xED, 0xB0) // LDIR
	copy(b.mem[0x4000:], []byte{0x11, 0x22, 0x33})

	total := 0
	for i := 0; i < 3; i++ {
		total += exec(t, c, b)
	}
	if total != 21+21+16 {
		t.Fatalf("LDIR: %d T states, want 58", total)
	}
	snap := c.Snapshot()
	if b.mem[0x5000] != 0x11 || b.mem[0x5002] != 0x33 {
		t.Fatalf("LDIR: copy wrong: % X", b.mem[0x5000:0x5003])
	}
	if snap.BC != 0 || snap.HL != 0x4003 || snap.DE != 0x5003 {
		t.Fatalf("LDIR: BC=%04X HL=%04X DE=%04X", snap.BC, snap.HL, snap.DE)
	}
	if snap.PC != 0x0002 {
		t.Fatalf("LDIR: PC=%04X", snap.PC)
	}
	if snap.AF&uint16(flagPV) != 0 {
		t.Fatalf("LDIR: PV set with BC=0")
	}
}

func TestBlockTransferUndocBits(t *testing.T) {
	s := DefaultPowerOn()
	s.HL, s.DE, s.BC = 0x4000, 0x5000, 0x0001
	s.AF = 0x1200
	c := New(s)
	b := newTestBus(0xED, 0xA0) // LDI
	b.mem[0x4000] = 0x34
	exec(t, c, b)
	// bits 5/3 mirror (byte+A): 0x46 has bit 1 set, bit 3 clear
	f := flags(c.Snapshot().AF)
	if f&flagX5 == 0 || f&flagX3 != 0 {
		t.Fatalf("LDI undocumented bits: %08b", f)
	}
}

func TestIOPortAddressing(t *testing.T) {
	s := DefaultPowerOn()
	s.AF = 0x7F00
	c := New(s)
	b := newTestBus(0xD3, 0x80, 0xDB, 0x80) // OUT (n),A / IN A,(n)
	b.ioIn[0x7F80] = 0x5A
	exec(t, c, b)
	if got := b.ioOut[0x7F80]; got != 0x7F {
		t.Fatalf("OUT (n),A: port write %02X, map %v", got, b.ioOut)
	}
	exec(t, c, b)
	if a := c.Snapshot().AF >> 8; a != 0x5A {
		t.Fatalf("IN A,(n): A=%02X", a)
	}
}

func TestInRCFlagsOnly(t *testing.T) {
	s := DefaultPowerOn()
	s.BC = 0x1240
	c := New(s)
	b := newTestBus(0xED, 0x70) // IN (C): flags, no register
	b.ioIn[0x1240] = 0x00
	exec(t, c, b)
	snap := c.Snapshot()
	f := flags(snap.AF)
	if !f.z() || !f.pv() || f.n() || f.h() {
		t.Fatalf("IN (C): flags %08b", f)
	}
	if snap.BC != 0x1240 {
		t.Fatalf("IN (C): BC clobbered: %04X", snap.BC)
	}
}

func TestHaltLoopsUntilInterrupt(t *testing.T) {
	c, b := newCore(0x76) // HALT
	exec(t, c, b)
	if !c.Halted() {
		t.Fatalf("HALT not entered")
	}
	pc := c.Snapshot().PC
	for i := 0; i < 12; i++ {
		step(c, b)
	}
	if got := c.Snapshot().PC; got != pc {
		t.Fatalf("PC advanced while halted: %04X -> %04X", pc, got)
	}
	if !c.Pins().HALT {
		t.Fatalf("HALT pin dropped while halted")
	}
}
