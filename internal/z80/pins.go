package z80

// Pins is the external bus contract of the core. Everything outside the CPU
// (memory, IO, the monitor) interacts with the core exclusively through this
// structure, one exchange per clock phase.
type Pins struct {
	// Address and data buses. Addr is driven continuously between loads of
	// the address latch. Data is driven only while DataDriven is set (write
	// cycles); otherwise the data bus belongs to the collaborators, which
	// respond by setting DataIn.
	Addr       uint16
	Data       uint8
	DataDriven bool
	DataIn     uint8

	// Control outputs, active when true.
	M1    bool // opcode fetch in progress
	MREQ  bool // memory request
	IORQ  bool // IO request (also interrupt acknowledge with M1)
	RD    bool // read enable
	WR    bool // write enable
	RFSH  bool // refresh cycle
	HALT  bool // halt state
	BUSAK bool // bus acknowledge

	// Control inputs, sampled by the core.
	RESET bool
	WAIT  bool
	BUSRQ bool
	INT   bool
	NMI   bool

	// TriState is set while the core has released the bus in response to
	// BUSRQ. Address, data and control outputs are not valid while set.
	TriState bool
}

// clearOutputs deasserts every control strobe ahead of a sub-cycle. The
// address bus is deliberately left alone: the address latch drives it
// continuously.
func (p *Pins) clearOutputs() {
	p.M1 = false
	p.MREQ = false
	p.IORQ = false
	p.RD = false
	p.WR = false
	p.RFSH = false
	p.DataDriven = false
}
