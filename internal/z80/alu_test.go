package z80

import "testing"

func TestAluAddFlags(t *testing.T) {
	cases := []struct {
		a, b byte
		op   aluOp
		cy   bool
		r    byte
		f    flags
	}{
		{0x44, 0x11, aluAdd, false, 0x55, 0x00},
		{0x0F, 0x01, aluAdd, false, 0x10, flagH},
		{0x7F, 0x01, aluAdd, false, 0x80, flagS | flagH | flagPV},
		{0xFF, 0x01, aluAdd, false, 0x00, flagZ | flagH | flagC},
		{0x3C, 0x3C, aluAdd, false, 0x78, flagH | flagX5 | flagX3},
		{0xFF, 0x00, aluAdc, true, 0x00, flagZ | flagH | flagC},
		{0x00, 0x00, aluAdc, true, 0x01, 0x00},
	}
	for _, c := range cases {
		u := alu{a: c.a, b: c.b, carry: c.cy}
		r, f := u.run(c.op, 0)
		if r != c.r || f != c.f {
			t.Errorf("add %02X+%02X cy=%v: got %02X/%08b want %02X/%08b",
				c.a, c.b, c.cy, r, f, c.r, c.f)
		}
	}
}

func TestAluSubFlags(t *testing.T) {
	cases := []struct {
		a, b byte
		op   aluOp
		cy   bool
		r    byte
		f    flags
	}{
		{0x00, 0x01, aluSub, false, 0xFF, flagS | flagH | flagN | flagC | flagX5 | flagX3},
		{0x10, 0x10, aluSub, false, 0x00, flagZ | flagN},
		{0x80, 0x01, aluSub, false, 0x7F, flagH | flagPV | flagN | flagX5 | flagX3},
		{0x00, 0x00, aluSbc, true, 0xFF, flagS | flagH | flagN | flagC | flagX5 | flagX3},
	}
	for _, c := range cases {
		u := alu{a: c.a, b: c.b, carry: c.cy}
		r, f := u.run(c.op, 0)
		if r != c.r || f != c.f {
			t.Errorf("sub %02X-%02X cy=%v: got %02X/%08b want %02X/%08b",
				c.a, c.b, c.cy, r, f, c.r, c.f)
		}
	}
}

// CP keeps the subtraction result off the accumulator and donates the
// undocumented bits from the operand instead of the result.
func TestAluCompareUndocBits(t *testing.T) {
	u := alu{a: 0x00, b: 0x28}
	_, f := u.run(aluCp, 0)
	want := flagS | flagH | flagN | flagC | flagX5 | flagX3
	if f != want {
		t.Fatalf("CP 0x28: flags %08b want %08b", f, want)
	}
}

func TestAluLogicFlags(t *testing.T) {
	cases := []struct {
		a, b byte
		op   aluOp
		r    byte
		f    flags
	}{
		{0xF0, 0x0F, aluAnd, 0x00, flagZ | flagH | flagPV},
		{0xFF, 0xFF, aluAnd, 0xFF, flagS | flagH | flagPV | flagX5 | flagX3},
		{0x5A, 0x5A, aluXor, 0x00, flagZ | flagPV},
		{0x80, 0x01, aluOr, 0x81, flagS | flagPV},
	}
	for _, c := range cases {
		u := alu{a: c.a, b: c.b}
		r, f := u.run(c.op, 0)
		if r != c.r || f != c.f {
			t.Errorf("logic %02X op %02X: got %02X/%08b want %02X/%08b",
				c.a, c.b, r, f, c.r, c.f)
		}
	}
}

func TestAluIncDecPreserveCarry(t *testing.T) {
	u := alu{b: 0x7F}
	r, f := u.run(aluInc, flagC)
	if r != 0x80 || f != flagC|flagS|flagH|flagPV {
		t.Fatalf("INC 0x7F: got %02X/%08b", r, f)
	}
	u.b = 0x80
	r, f = u.run(aluDec, flagC)
	if r != 0x7F || f != flagC|flagH|flagPV|flagN|flagX5|flagX3 {
		t.Fatalf("DEC 0x80: got %02X/%08b", r, f)
	}
}

func TestAluShifts(t *testing.T) {
	cases := []struct {
		v  byte
		op aluOp
		cy bool
		r  byte
		c  bool
	}{
		{0x81, aluRlc, false, 0x03, true},
		{0x81, aluRrc, false, 0xC0, true},
		{0x80, aluRl, true, 0x01, true},
		{0x01, aluRr, true, 0x80, true},
		{0xC0, aluSla, false, 0x80, true},
		{0xC0, aluSra, false, 0xE0, false},
		{0x80, aluSll, false, 0x01, true}, // undocumented: bit 0 fills with 1
		{0x81, aluSrl, false, 0x40, true},
	}
	for _, c := range cases {
		u := alu{b: c.v, carry: c.cy}
		r, f := u.shift(c.op, 0)
		if r != c.r || f.c() != c.c {
			t.Errorf("shift op=%d v=%02X: got %02X carry=%v want %02X carry=%v",
				c.op, c.v, r, f.c(), c.r, c.c)
		}
	}
}

func TestDaa(t *testing.T) {
	cases := []struct {
		a    byte
		f    flags
		r    byte
		want flags
	}{
		{0x0A, 0, 0x10, flagH},
		{0x9A, 0, 0x00, flagZ | flagH | flagPV | flagC},
		{0x15, flagN, 0x15, flagN},
		{0x42, flagH | flagN, 0x3C, flagN | flagH | flagPV | flagX5 | flagX3},
	}
	for _, c := range cases {
		r, f := daa(c.a, c.f)
		if r != c.r || f != c.want {
			t.Errorf("DAA %02X/%08b: got %02X/%08b want %02X/%08b",
				c.a, c.f, r, f, c.r, c.want)
		}
	}
}

func TestBitTestDonor(t *testing.T) {
	// register form: donor is the operand
	f := bitTest(0xA8, 7, 0xA8, 0)
	if !f.s() || f.z() || f&flagH == 0 || f&flagX5 == 0 || f&flagX3 == 0 {
		t.Fatalf("BIT 7,0xA8: flags %08b", f)
	}
	// memory form: donor is the high byte of the address temporary
	f = bitTest(0x00, 0, 0x28, flagC)
	if !f.z() || !f.pv() || !f.c() || f&flagX5 == 0 || f&flagX3 == 0 {
		t.Fatalf("BIT 0,(mem) donor 0x28: flags %08b", f)
	}
}

func TestFlags16BitArithmetic(t *testing.T) {
	var f flags
	f.updateAdd16(0x0FFF, 0x0001, 0x1000)
	if f != flagH {
		t.Fatalf("ADD16 half carry: %08b", f)
	}

	f = 0
	f.updateSbc16(0x0000, 0x0001, 0xFFFF)
	want := flagS | flagH | flagN | flagC | flagX5 | flagX3
	if f != want {
		t.Fatalf("SBC16 borrow: %08b want %08b", f, want)
	}

	f = 0
	f.updateAdc16(0x7FFF, 0x0000, 0x8000)
	if f != flagS|flagH|flagPV {
		t.Fatalf("ADC16 overflow: %08b", f)
	}
}
