package z80

import "testing"

func TestNMIEntry(t *testing.T) {
	s := DefaultPowerOn()
	s.SP = 0xFFF0
	s.IFF1, s.IFF2 = true, true
	c := New(s)
	b := newTestBus(0x00, 0x00)

	c.Pins().NMI = true
	exec(t, c, b) // NOP; the edge is latched during it
	c.Pins().NMI = false

	if n := exec(t, c, b); n != 11 {
		t.Fatalf("NMI entry: %d T states, want 11", n)
	}
	snap := c.Snapshot()
	if snap.PC != 0x0066 {
		t.Fatalf("NMI entry: PC=%04X", snap.PC)
	}
	if b.mem[0xFFEE] != 0x01 || b.mem[0xFFEF] != 0x00 {
		t.Fatalf("NMI entry: return address %02X%02X", b.mem[0xFFEF], b.mem[0xFFEE])
	}
	if snap.IFF1 || !snap.IFF2 {
		t.Fatalf("NMI entry: IFF1=%v IFF2=%v", snap.IFF1, snap.IFF2)
	}
}

func TestRETNRestoresIFF1(t *testing.T) {
	s := DefaultPowerOn()
	s.SP = 0xFFEE
	s.IFF2 = true
	c := New(s)
	b := newTestBus(0xED, 0x45) // RETN
	b.mem[0xFFEE] = 0x34
	b.mem[0xFFEF] = 0x12
	exec(t, c, b)
	snap := c.Snapshot()
	if snap.PC != 0x1234 || !snap.IFF1 {
		t.Fatalf("RETN: PC=%04X IFF1=%v", snap.PC, snap.IFF1)
	}
}

func TestIM1Entry(t *testing.T) {
	s := DefaultPowerOn()
	s.SP = 0xFFF0
	s.IFF1, s.IFF2 = true, true
	s.IM = 1
	c := New(s)
	b := newTestBus(0x00, 0x00)

	c.Pins().INT = true
	exec(t, c, b) // NOP completes first
	if n := exec(t, c, b); n != 13 {
		t.Fatalf("IM1 entry: %d T states, want 13", n)
	}
	snap := c.Snapshot()
	if snap.PC != 0x0038 {
		t.Fatalf("IM1 entry: PC=%04X", snap.PC)
	}
	if b.mem[0xFFEE] != 0x01 {
		t.Fatalf("IM1 entry: return address low %02X", b.mem[0xFFEE])
	}
	if snap.IFF1 || snap.IFF2 {
		t.Fatalf("IM1 entry: flip-flops not cleared")
	}

	// INT still asserted: with IFF1 clear the core keeps executing
	if n := exec(t, c, b); n != 4 {
		t.Fatalf("masked INT was honoured: %d T states", n)
	}
}

func TestIM2VectorFetch(t *testing.T) {
	s := DefaultPowerOn()
	s.SP = 0xFFF0
	s.IFF1, s.IFF2 = true, true
	s.IM = 2
	s.I = 0x80
	c := New(s)
	b := newTestBus(0x00)
	b.vector = 0xF4
	b.mem[0x80F4] = 0x34
	b.mem[0x80F5] = 0x12

	c.Pins().INT = true
	exec(t, c, b)
	if n := exec(t, c, b); n != 19 {
		t.Fatalf("IM2 entry: %d T states, want 19", n)
	}
	snap := c.Snapshot()
	if snap.PC != 0x1234 {
		t.Fatalf("IM2 entry: PC=%04X", snap.PC)
	}
	if b.mem[0xFFEE] != 0x01 || b.mem[0xFFEF] != 0x00 {
		t.Fatalf("IM2 entry: return address %02X%02X", b.mem[0xFFEF], b.mem[0xFFEE])
	}
}

func TestIM0ExecutesTheDrivenOpcode(t *testing.T) {
	s := DefaultPowerOn()
	s.SP = 0xFFF0
	s.IFF1, s.IFF2 = true, true
	c := New(s)
	b := newTestBus(0x00)
	b.vector = 0xF7 // RST 30h

	c.Pins().INT = true
	exec(t, c, b)
	if n := exec(t, c, b); n != 13 {
		t.Fatalf("IM0 entry: %d T states, want 13", n)
	}
	if pc := c.Snapshot().PC; pc != 0x0030 {
		t.Fatalf("IM0 entry: PC=%04X", pc)
	}
}

func TestEIDelaysAcceptanceByOneInstruction(t *testing.T) {
	s := DefaultPowerOn()
	s.SP = 0xFFF0
	s.IM = 1
	c := New(s)
	b := newTestBus(0xF3, 0xFB, 0x00, 0x00) // DI / EI / NOP / NOP

	exec(t, c, b) // DI
	c.Pins().INT = true
	exec(t, c, b) // EI
	if n := exec(t, c, b); n != 4 {
		t.Fatalf("instruction after EI pre-empted: %d T states", n)
	}
	if n := exec(t, c, b); n != 13 {
		t.Fatalf("INT not honoured after the EI shadow: %d T states", n)
	}
}

func TestNMIWakesHaltedCore(t *testing.T) {
	s := DefaultPowerOn()
	s.SP = 0xFFF0
	c := New(s)
	b := newTestBus(0x76) // HALT
	exec(t, c, b)
	for i := 0; i < 8; i++ {
		step(c, b)
	}

	c.Pins().NMI = true
	step(c, b)
	c.Pins().NMI = false
	n := 0
	for {
		step(c, b)
		n++
		if m, ts := c.Sequence(); m == 1 && ts == 1 {
			break
		}
		if n > 40 {
			t.Fatalf("halted core never serviced NMI")
		}
	}
	snap := c.Snapshot()
	if snap.PC != 0x0066 || snap.Halted {
		t.Fatalf("NMI wake: PC=%04X halted=%v", snap.PC, snap.Halted)
	}
	// the stacked address is the one after HALT
	if b.mem[0xFFEE] != 0x01 {
		t.Fatalf("NMI wake: return address low %02X", b.mem[0xFFEE])
	}
}

func TestNMIEdgeLatchedNotLevel(t *testing.T) {
	s := DefaultPowerOn()
	s.SP = 0xFFF0
	c := New(s)
	b := newTestBus(0x00, 0x00, 0x00)
	b.mem[0x0066] = 0xED // RETN
	b.mem[0x0067] = 0x45

	c.Pins().NMI = true // held high the whole time
	exec(t, c, b)       // NOP
	exec(t, c, b)       // NMI entry
	if pc := c.Snapshot().PC; pc != 0x0066 {
		t.Fatalf("NMI not taken: PC=%04X", pc)
	}
	exec(t, c, b) // RETN
	// level held: no second edge, no re-entry
	if n := exec(t, c, b); n != 4 {
		t.Fatalf("NMI re-entered on level: %d T states", n)
	}
}
