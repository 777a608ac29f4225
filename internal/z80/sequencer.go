package z80

// The sequencer owns the machine-cycle/T-state position. It advances once
// per clock period under two continuation signals computed by the execute
// matrix: "continue this M" (more T states in the current machine cycle)
// and "continue with next M" (another machine cycle follows). When neither
// holds, the instruction is over and the position restarts at (M1,T1) with
// a fresh fetch.

type phase uint8

const (
	phFetch phase = iota // an M1 opcode fetch (one per prefix byte)
	phDisp               // displacement read of the DDCB/FDCB form
	phSubOp              // trailing opcode read of the DDCB/FDCB form
	phPlan               // decoded machine-cycle plan
)

type sequencer struct {
	m uint8 // machine cycle, 1..6
	t uint8 // T state within the cycle, 1..6

	phase   phase
	planIdx int8

	// waitHeld is set while the WAIT input freezes the current T state.
	waitHeld bool
}

func (s *sequencer) reset() {
	s.m, s.t = 1, 1
	s.phase = phFetch
	s.planIdx = 0
	s.waitHeld = false
}

// instr is the state of the instruction currently moving through the
// sequencer: the latched opcode, accumulated prefix context, operand
// latches and staged write data.
type instr struct {
	ctrl   *control
	prefix prefixState
	opcode byte
	mode   fetchMode

	ddcb    bool
	memRef  bool // instruction references (HL) and is subject to displacement
	disp    int8
	hasDisp bool

	vector byte // IM2 vector byte sampled during the acknowledge cycle

	// operand latches, filled by the plan's read cycles in order
	z, w  byte
	reads uint8

	// staged bytes for the plan's write cycles, consumed in order
	stores uint8

	wzLoaded bool

	plan []mcycle // effective plan after index substitution
}

// fetchLen is the length of the current M1 fetch: four T states, stretched
// by the decode table's hint on the final fetch and by the two forced wait
// states of an interrupt acknowledge.
func (c *CPU) fetchLen() uint8 {
	n := uint8(4)
	if c.cur.ctrl != nil && c.seqIsFinalFetch() {
		n += c.cur.ctrl.fetchExtra
	}
	if c.ackFetch() {
		n += 2
	}
	return n
}

// seqIsFinalFetch reports whether the fetch in progress carries the actual
// opcode rather than a prefix byte.
func (c *CPU) seqIsFinalFetch() bool {
	if c.cur.ctrl == nil {
		return false
	}
	switch c.cur.ctrl.class {
	case clPrefixCB, clPrefixED, clPrefixDD, clPrefixFD:
		return false
	}
	return true
}

// ackFetch reports whether the current M1 is an interrupt acknowledge
// cycle (IORQ instead of MREQ, two forced wait states).
func (c *CPU) ackFetch() bool {
	switch c.cur.mode {
	case fetchIM0, fetchIM1, fetchIM2:
		return c.seq.phase == phFetch && c.seq.m == 1
	}
	return false
}

// currentLen is the effective T-state length of the machine cycle in
// progress, including the conditional stretch (the "continue this M"
// signal holding one T longer when a taken condition reuses the cycle).
func (c *CPU) currentLen() uint8 {
	switch c.seq.phase {
	case phFetch:
		return c.fetchLen()
	case phDisp:
		return 3
	case phSubOp:
		return 5
	}
	mc := c.cur.plan[c.seq.planIdx]
	n := mc.len
	ctrl := c.cur.ctrl
	if ctrl.condFrom >= 0 && c.seq.planIdx == ctrl.condFrom-1 && ctrl.condStretch > 0 && c.condHolds() {
		n += ctrl.condStretch
	}
	return n
}

// advance applies the transition rule at the end of a T state: stay within
// the machine cycle, move to the next machine cycle, or restart at (M1,T1)
// with a fresh fetch.
func (c *CPU) advance() {
	if c.seq.waitHeld {
		return
	}

	continueThisM := c.seq.t < c.currentLen()
	if continueThisM {
		c.seq.t++
		return
	}

	if c.endCycle() { // "continue with next M"
		c.seq.m++
		c.seq.t = 1
		return
	}

	c.finish()
	c.beginInstruction()
}

// endCycle closes the machine cycle that just finished and reports whether
// another one follows. Phase bookkeeping lives here; the data-path side
// effects of the cycle have already run in the clock phases.
func (c *CPU) endCycle() bool {
	switch c.seq.phase {
	case phFetch:
		return c.endFetch()
	case phDisp:
		c.seq.phase = phSubOp
		return true
	case phSubOp:
		c.decodeSubOp()
		return len(c.cur.plan) > 0
	case phPlan:
		c.endPlanCycle(c.seq.planIdx)
		next := c.seq.planIdx + 1
		if int(next) >= len(c.cur.plan) {
			return false
		}
		if c.cur.ctrl.condFrom >= 0 && next == c.cur.ctrl.condFrom && !c.condHolds() {
			return false
		}
		c.seq.planIdx = next
		return true
	}
	return false
}

// beginInstruction resets the per-instruction state and decides how the
// next M1 fetch acquires its opcode (interrupt arbitration happens here,
// once per instruction boundary).
func (c *CPU) beginInstruction() {
	mode := c.intc.sample(&c.pins)
	c.cur = instr{mode: mode}
	c.seq.reset()
	if mode != fetchNormal {
		c.halted = false
	}
}
