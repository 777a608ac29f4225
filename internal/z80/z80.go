// Package z80 is a cycle-accurate Z80 core. The external world sees only
// the pin structure: callers toggle the clock one period at a time and
// respond to the address, data and control pins between calls, exactly as
// memory and IO devices on a real bus would.
package z80

// State is an architectural register snapshot. It doubles as the power-on
// configuration: the silicon leaves everything except PC and IR undefined
// after reset, so a deterministic core makes the initial values explicit.
type State struct {
	AF, BC, DE, HL     uint16
	AF2, BC2, DE2, HL2 uint16 // shadow bank
	IX, IY, SP, PC, WZ uint16
	I, R               byte
	IM                 uint8
	IFF1, IFF2         bool
	Halted             bool
}

// DefaultPowerOn is the conventional post-power state: every undefined
// register holds 0xFFFF, PC and IR are clear, interrupts are disabled in
// mode 0.
func DefaultPowerOn() State {
	return State{
		AF: 0xFFFF, BC: 0xFFFF, DE: 0xFFFF, HL: 0xFFFF,
		AF2: 0xFFFF, BC2: 0xFFFF, DE2: 0xFFFF, HL2: 0xFFFF,
		IX: 0xFFFF, IY: 0xFFFF, SP: 0xFFFF, WZ: 0xFFFF,
	}
}

// CPU is the core: register file, address latch, ALU, bus routing network,
// interrupt controller and the sequencer, wired together by the execute
// matrix and exposed through the pins.
type CPU struct {
	regs  registerFile
	latch addressLatch
	alu   alu
	bus   busNet
	intc  interruptController
	seq   sequencer
	cur   instr
	pins  Pins

	dataLatch byte // input latch feeding the instruction register

	halted      bool
	busReleased bool
	tStates     uint64

	powerOn State
}

// New builds a core holding the given power-on state. The first Clock call
// starts the opcode fetch at PC.
func New(powerOn State) *CPU {
	c := &CPU{powerOn: powerOn}
	c.apply(powerOn)
	c.seq.reset()
	return c
}

// apply loads an architectural snapshot into the register file and the
// interrupt controller.
func (c *CPU) apply(s State) {
	rf := &c.regs
	rf.afBank, rf.mainBank = 0, 0
	rf.af[0], rf.bc[0], rf.de[0], rf.hl[0] = s.AF, s.BC, s.DE, s.HL
	rf.af[1], rf.bc[1], rf.de[1], rf.hl[1] = s.AF2, s.BC2, s.DE2, s.HL2
	rf.ix, rf.iy, rf.sp, rf.pc, rf.wz = s.IX, s.IY, s.SP, s.PC, s.WZ
	rf.i, rf.r = s.I, s.R
	c.intc.iff1, c.intc.iff2 = s.IFF1, s.IFF2
	c.intc.mode = s.IM
	c.halted = s.Halted
}

// Pins exposes the external bus. Collaborators read the outputs after a
// Clock call and set the inputs before the next one.
func (c *CPU) Pins() *Pins { return &c.pins }

// Clock advances the core by one full clock period: a driving sub-step and
// a sampling sub-step. RESET and BUSRQ preempt normal sequencing.
func (c *CPU) Clock() {
	p := &c.pins
	c.intc.observe(p)

	if p.RESET {
		c.resetStep()
		return
	}

	if c.busHandshake() {
		return
	}

	c.tStates++
	c.tRise()
	c.tFall()
}

// resetStep runs every clock period the RESET pin is held, with the two
// update points the shared register-file port requires kept on opposite
// phases: PC clears on the rising sub-step, the IR pair and the data latch
// on the falling sub-step. The rest of the register file keeps whatever it
// held, as the silicon does.
func (c *CPU) resetStep() {
	p := &c.pins

	// rising sub-step
	p.clearOutputs()
	p.BUSAK, p.TriState = false, false
	c.regs.pc = 0
	c.latch.load(0)
	p.Addr = 0
	c.intc.reset()
	c.halted = false
	c.busReleased = false
	c.seq.reset()
	c.cur = instr{}

	// falling sub-step
	c.regs.i, c.regs.r = 0, 0
	c.dataLatch = 0
}

// busHandshake grants the bus at a machine-cycle boundary while BUSRQ is
// asserted and reclaims it when the request drops. Reports whether the
// core is off the bus this period.
func (c *CPU) busHandshake() bool {
	p := &c.pins
	if c.busReleased {
		if p.BUSRQ {
			return true
		}
		c.busReleased = false
		p.BUSAK, p.TriState = false, false
		return false
	}
	if p.BUSRQ && c.seq.t == 1 && !c.seq.waitHeld {
		c.busReleased = true
		p.clearOutputs()
		p.BUSAK, p.TriState = true, true
		return true
	}
	return false
}

// Snapshot returns the architectural state as of the last completed clock
// period.
func (c *CPU) Snapshot() State {
	rf := &c.regs
	return State{
		AF: rf.af[rf.afBank], BC: rf.bc[rf.mainBank],
		DE: rf.de[rf.mainBank], HL: rf.hl[rf.mainBank],
		AF2: rf.af[rf.afBank^1], BC2: rf.bc[rf.mainBank^1],
		DE2: rf.de[rf.mainBank^1], HL2: rf.hl[rf.mainBank^1],
		IX: rf.ix, IY: rf.iy, SP: rf.sp, PC: rf.pc, WZ: rf.wz,
		I: rf.i, R: rf.r,
		IM: c.intc.mode, IFF1: c.intc.iff1, IFF2: c.intc.iff2,
		Halted: c.halted,
	}
}

// Sequence reports the machine cycle and T state the core is in, for the
// monitor's cycle display.
func (c *CPU) Sequence() (m, t uint8) { return c.seq.m, c.seq.t }

// CurrentOp names the instruction in flight, empty until the first decode
// of the instruction has happened.
func (c *CPU) CurrentOp() string {
	if c.cur.ctrl == nil {
		return ""
	}
	return c.cur.ctrl.name
}

// Halted reports whether the core is in the HALT state.
func (c *CPU) Halted() bool { return c.halted }

// TStates is the number of clock periods executed since power-on.
func (c *CPU) TStates() uint64 { return c.tStates }
