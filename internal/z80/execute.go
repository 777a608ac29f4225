package z80

// The execute matrix. For every (phase, machine-cycle kind, T state) it
// drives the pins and the internal buses on the rising sub-step and samples
// them on the falling sub-step, then retires the instruction class once the
// plan has delivered its operands. Addresses go out through the address
// latch only; data moves segment by segment through the bus network.

// aPCDisp marks the displacement read of an indexed form: a PC-relative
// byte routed to the displacement latch instead of the operand latches.
const aPCDisp addrSrc = 0x80

// Synthetic classes for interrupt service. These never appear in the
// decode tables; decodeFetched substitutes their control vectors when the
// acknowledge arbitration selected them.
const (
	clNMISvc opClass = 0xF0
	clIM2Svc opClass = 0xF1
)

var ctrlNMI = &control{
	class: clNMISvc, src: opdNone, dst: opdNone, cond: condNone, condFrom: -1,
	fetchExtra: 1,
	plan:       plan(wr(3, aSPPush), wr(3, aSPPush)),
	name:       "NMI",
}

var ctrlIM2 = &control{
	class: clIM2Svc, src: opdNone, dst: opdNone, cond: condNone, condFrom: -1,
	fetchExtra: 1,
	plan:       plan(wr(3, aSPPush), wr(3, aSPPush), rd(3, aWZBump), rd(3, aWZBump)),
	name:       "INT ack",
}

// tRise is the driving sub-step of one T state.
func (c *CPU) tRise() {
	c.bus.reset()
	if c.seq.waitHeld {
		return // strobes stay asserted while the WAIT input holds T2
	}
	switch c.seq.phase {
	case phFetch:
		c.fetchRise()
	case phDisp, phSubOp:
		c.operandFetchRise()
	case phPlan:
		c.planRise()
	}
	c.pins.HALT = c.halted
}

// tFall is the sampling sub-step: WAIT arbitration, data capture, decode,
// then the sequencer transition.
func (c *CPU) tFall() {
	switch c.seq.phase {
	case phFetch:
		c.fetchFall()
	case phDisp, phSubOp:
		c.operandFetchFall()
	case phPlan:
		c.planFall()
	}
	c.advance()
}

// fetchT maps the raw T counter of an acknowledge fetch onto the canonical
// fetch positions: the two forced wait states sit between T2 and T3.
func (c *CPU) fetchT() (t uint8, forcedWait bool) {
	t = c.seq.t
	if !c.ackFetch() {
		return t, false
	}
	switch {
	case t <= 2:
		return t, false
	case t <= 4:
		return 2, true
	default:
		return t - 2, false
	}
}

func (c *CPU) fetchRise() {
	p := &c.pins
	t, forcedWait := c.fetchT()
	if forcedWait {
		return // IORQ held through the forced wait states
	}
	ack := c.ackFetch()
	switch t {
	case 1:
		p.clearOutputs()
		c.latch.load(c.regs.pc)
		p.Addr = c.latch.value
		p.M1 = true
		if !ack {
			p.MREQ, p.RD = true, true
		}
	case 2:
		if ack {
			p.IORQ = true
			break
		}
		// latch+1 writes back to PC; suppressed while halted and during
		// interrupt entry, where the pre-service PC must survive to the
		// stack push.
		if !c.halted && c.cur.mode == fetchNormal {
			c.latch.inc()
			c.regs.pc = c.latch.value
			p.Addr = c.latch.value
		}
	case 3:
		// refresh: IR pair on the address bus, M1 released
		p.clearOutputs()
		c.latch.load(c.regs.read16(regIR))
		p.Addr = c.latch.value
		p.MREQ, p.RFSH = true, true
	case 4:
		p.clearOutputs()
		p.RFSH = true
	default:
		p.clearOutputs()
	}
}

func (c *CPU) fetchFall() {
	p := &c.pins
	t, forcedWait := c.fetchT()

	if forcedWait {
		// the byte arrives at the tail of the forced wait states
		if c.seq.t == 4 {
			c.sampleOpcode()
		}
		return
	}
	if t == 2 && !c.ackFetch() {
		if p.WAIT {
			c.seq.waitHeld = true
			return
		}
		c.seq.waitHeld = false
		c.sampleOpcode()
		return
	}

	switch t {
	case 3:
		c.decodeFetched()
	case 4:
		c.regs.bumpR()
	}
}

// sampleOpcode captures the byte feeding the instruction register. The
// interrupt modes override the sampled value with their forced byte; IM2
// additionally keeps the sampled byte as the vector.
func (c *CPU) sampleOpcode() {
	b, who := c.pins.DataIn, drivePins
	switch c.cur.mode {
	case fetchIM1:
		b, who = 0xFF, driveInternal
	case fetchIM2:
		c.cur.vector = c.pins.DataIn
		b, who = 0x00, driveInternal
	case fetchNMI:
		b, who = 0x00, driveInternal
	default:
		if c.halted {
			b, who = 0x00, driveInternal
		}
	}
	c.bus.drive(segPins, who, b)
	c.bus.join(segPins, segALU)
	c.dataLatch = c.bus.read(segPins)
}

// decodeFetched loads the instruction register and runs the decode table,
// or substitutes the service control vector during interrupt entry. The
// previous accumulator/flags pair lands on the ALU operand latches, the
// quirk the silicon shows at every fetch T3.
func (c *CPU) decodeFetched() {
	c.alu.a = c.regs.a()
	c.alu.b = byte(c.regs.f())
	c.alu.carry = c.regs.f().c()

	// the instruction register feeds the decode plane over the ALU segment
	// during fetch T3
	c.bus.drive(segALU, driveIR, c.dataLatch)
	op := c.bus.read(segALU)
	c.cur.opcode = op
	switch c.cur.mode {
	case fetchNMI:
		c.cur.ctrl = ctrlNMI
		return
	case fetchIM2:
		c.cur.ctrl = ctrlIM2
		return
	}
	c.cur.ctrl = lookup(op, c.cur.prefix)
}

// endFetch closes an M1 cycle: prefix accumulation, fetch-tail register
// work, and the handoff to the plan. Returns true when another machine
// cycle follows.
func (c *CPU) endFetch() bool {
	ctrl := c.cur.ctrl
	switch ctrl.class {
	case clPrefixCB:
		if c.cur.prefix.idx != 0 {
			c.cur.ddcb = true
			c.seq.phase = phDisp
			return true
		}
		c.cur.prefix.table = tabCB
		return true
	case clPrefixED:
		c.restartPrefix()
		c.cur.prefix = prefixState{table: tabED}
		return true
	case clPrefixDD:
		c.restartPrefix()
		c.cur.prefix = prefixState{idx: 1}
		return true
	case clPrefixFD:
		c.restartPrefix()
		c.cur.prefix = prefixState{idx: 2}
		return true
	}

	// register work the silicon does in the fetch tail
	switch ctrl.class {
	case clDjnz, clBlockOUT:
		c.regs.write8(regBC, halfHigh, c.regs.read8(regBC, halfHigh)-1)
	}

	c.buildEffectivePlan()
	if len(c.cur.plan) == 0 {
		return false
	}
	if ctrl.condFrom == 0 && !c.condHolds() {
		return false
	}
	c.seq.phase = phPlan
	c.seq.planIdx = 0
	return true
}

// restartPrefix rewinds the machine-cycle count when a DD/FD/ED byte
// throws away index context accumulated by an earlier prefix. The dropped
// prefix was a no-op and the new byte begins the instruction over, so its
// fetch is numbered M1 again. This keeps the count within 1..6 for any
// run of redundant prefixes.
func (c *CPU) restartPrefix() {
	if c.cur.prefix.idx != 0 {
		c.seq.m = 0 // advance bumps it to 1 for the fetch that follows
	}
}

// buildEffectivePlan applies index substitution to the decoded plan: a
// displacement read and a five-T address add are inserted ahead of the
// first (HL) cycle, and the cycle addresses switch to the computed WZ.
func (c *CPU) buildEffectivePlan() {
	ctrl := c.cur.ctrl
	c.cur.memRef = ctrl.src == opdIndHL || ctrl.dst == opdIndHL
	if c.cur.prefix.idx == 0 || !c.cur.memRef {
		c.cur.plan = ctrl.plan
		return
	}

	// LD (ii+d),n overlaps the displacement add with the immediate read.
	if ctrl.class == clLd8 && ctrl.src == opdImm {
		c.cur.plan = plan(rd(3, aPCDisp), rd(5, aPC), wr(3, aWZ))
		return
	}

	out := make([]mcycle, 0, len(ctrl.plan)+2)
	out = append(out, rd(3, aPCDisp), internal(5))
	for _, mc := range ctrl.plan {
		if mc.addr == aHL {
			mc.addr = aWZ
		}
		out = append(out, mc)
	}
	c.cur.plan = out
}

func (c *CPU) operandFetchRise() {
	p := &c.pins
	switch c.seq.t {
	case 1:
		p.clearOutputs()
		c.latch.load(c.regs.pc)
		p.Addr = c.latch.value
		p.MREQ, p.RD = true, true
	case 2:
		c.latch.inc()
		c.regs.pc = c.latch.value
	case 4:
		p.clearOutputs()
	}
}

func (c *CPU) operandFetchFall() {
	p := &c.pins
	if c.seq.t == 2 {
		if p.WAIT {
			c.seq.waitHeld = true
			return
		}
		c.seq.waitHeld = false
	}
	if c.seq.t != 3 {
		return
	}
	c.bus.drive(segPins, drivePins, p.DataIn)
	if c.seq.phase == phDisp {
		c.cur.disp = int8(c.bus.read(segPins))
		c.cur.hasDisp = true
	} else {
		c.bus.join(segPins, segALU)
		c.dataLatch = c.bus.read(segPins)
	}
}

// decodeSubOp decodes the trailing opcode of a DDCB/FDCB form. The decode
// always takes the (HL) shape of the entry; the undocumented register-copy
// variants additionally retire the result into the encoded register.
func (c *CPU) decodeSubOp() {
	c.bus.drive(segALU, driveIR, c.dataLatch)
	op := c.bus.read(segALU)
	c.cur.opcode = op
	c.cur.ctrl = lookup(op&^0x07|0x06, prefixState{table: tabCB})
	c.cur.memRef = true

	eff := make([]mcycle, len(c.cur.ctrl.plan))
	for i, mc := range c.cur.ctrl.plan {
		if mc.addr == aHL {
			mc.addr = aWZ
		}
		eff[i] = mc
	}
	c.cur.plan = eff
	c.regs.wz = c.indexedAddr()
	c.cur.wzLoaded = true
	c.seq.phase = phPlan
	c.seq.planIdx = 0
}

func (c *CPU) planRise() {
	p := &c.pins
	mc := c.cur.plan[c.seq.planIdx]
	switch mc.kind {
	case mcInternal:
		if c.seq.t == 1 {
			p.clearOutputs()
		}
	case mcRead:
		switch c.seq.t {
		case 1:
			p.clearOutputs()
			c.latch.load(c.planAddr(mc))
			p.Addr = c.latch.value
			p.MREQ, p.RD = true, true
		case 2:
			if mc.addr == aPC || mc.addr == aPCDisp {
				c.latch.inc()
				c.regs.pc = c.latch.value
			}
		}
	case mcWrite:
		switch c.seq.t {
		case 1:
			p.clearOutputs()
			c.latch.load(c.planAddr(mc))
			if mc.addr == aSPPush {
				// the pre-decrement steps the latch, then writes back to SP
				c.latch.dec()
				c.regs.sp = c.latch.value
			}
			p.Addr = c.latch.value
			p.MREQ = true
			c.driveData(c.stageStore())
		case 2:
			p.WR = true
		}
	case mcIORead:
		switch c.seq.t {
		case 1:
			p.clearOutputs()
			c.latch.load(c.planAddr(mc))
			p.Addr = c.latch.value
		case 2:
			p.IORQ, p.RD = true, true
		}
	case mcIOWrite:
		switch c.seq.t {
		case 1:
			p.clearOutputs()
			c.latch.load(c.planAddr(mc))
			p.Addr = c.latch.value
			c.driveData(c.stageStore())
		case 2:
			p.IORQ, p.WR = true, true
		}
	}
}

// driveData routes a staged byte out to the data pins. Register-file bytes
// cross all three segments; ALU results enter at the ALU segment.
func (c *CPU) driveData(v byte, who segDriver) {
	if who == driveALU {
		c.bus.drive(segALU, who, v)
	} else {
		c.bus.drive(segReg, who, v)
		c.bus.join(segReg, segALU)
	}
	c.bus.join(segALU, segPins)
	c.pins.Data = c.bus.read(segPins)
	c.pins.DataDriven = true
}

func (c *CPU) planFall() {
	p := &c.pins
	mc := c.cur.plan[c.seq.planIdx]
	if mc.kind == mcInternal {
		return
	}
	if c.seq.t == 2 {
		if p.WAIT {
			c.seq.waitHeld = true
			return
		}
		c.seq.waitHeld = false
	}
	if (mc.kind == mcRead || mc.kind == mcIORead) && c.seq.t == mc.len {
		c.routeRead(p.DataIn)
	}
}

// routeRead latches a sampled byte into the operand latches in plan order.
// After a 16-bit address has been consumed into WZ the latches are reused
// for the data that follows.
func (c *CPU) routeRead(b byte) {
	c.bus.drive(segPins, drivePins, b)
	c.bus.join(segPins, segALU)
	b = c.bus.read(segALU)

	if c.cur.plan[c.seq.planIdx].addr == aPCDisp {
		c.cur.disp = int8(b)
		c.cur.hasDisp = true
		return
	}
	if c.cur.reads%2 == 0 {
		c.cur.z = b
	} else {
		c.cur.w = b
	}
	c.cur.reads++
}

// planAddr resolves a plan cycle's address source. The push pre-decrement
// happens in the latch after the load; post-increments happen at cycle end.
func (c *CPU) planAddr(mc mcycle) uint16 {
	rf := &c.regs
	switch mc.addr {
	case aPC, aPCDisp:
		return rf.pc
	case aHL:
		return rf.read16(regHL)
	case aBC:
		return rf.read16(regBC)
	case aDE:
		return rf.read16(regDE)
	case aWZ, aWZBump, aIOWZ:
		c.loadWZ()
		return rf.wz
	case aSPPush:
		return rf.sp
	case aSPPop:
		return rf.sp
	case aIOBC:
		return rf.read16(regBC)
	}
	return rf.pc
}

// loadWZ assembles the internal address temporary the first time a plan
// cycle needs it: the operand word for the (nn) forms, accumulator page
// plus port for the immediate IO forms, interrupt vector table slot for
// IM2 entry. Indexed forms load it from the displacement add instead.
func (c *CPU) loadWZ() {
	if c.cur.wzLoaded {
		return
	}
	rf := &c.regs
	switch c.cur.ctrl.class {
	case clInAN, clOutNA:
		rf.wz = uint16(rf.a())<<8 | uint16(c.cur.z)
	case clIM2Svc:
		rf.wz = uint16(rf.i)<<8 | uint16(c.cur.vector)
	default:
		rf.wz = c.word()
	}
	c.cur.wzLoaded = true
}

func (c *CPU) indexedAddr() uint16 {
	base := c.regs.ix
	if c.cur.prefix.idx == 2 {
		base = c.regs.iy
	}
	return base + uint16(int16(c.cur.disp))
}

// endPlanCycle applies the end-of-cycle register traffic: address source
// post-increments, the displacement add, and block-instruction stepping
// ahead of the repeat decision.
func (c *CPU) endPlanCycle(i int8) {
	mc := c.cur.plan[i]
	switch mc.addr {
	case aSPPop:
		c.regs.sp++
	case aWZBump:
		c.regs.wz++
	}
	if c.cur.hasDisp && !c.cur.wzLoaded {
		c.regs.wz = c.indexedAddr()
		c.cur.wzLoaded = true
	}

	switch c.cur.ctrl.class {
	case clBlockLD:
		if i == 1 {
			c.blockLDStep()
		}
	case clBlockCP:
		if i == 1 {
			c.blockCPStep()
		}
	case clBlockIN:
		switch i {
		case 0:
			c.blockINStep()
		case 1:
			c.stepHL()
		}
	case clBlockOUT:
		switch i {
		case 0:
			c.stepHL()
		case 1:
			c.blockOUTStep()
		}
	}
}

// condHolds evaluates the conditional-continuation input of the sequencer:
// flag conditions for the jump/call/return groups, register state for DJNZ
// and the block repeats.
func (c *CPU) condHolds() bool {
	ctrl := c.cur.ctrl
	switch ctrl.class {
	case clDjnz:
		return c.regs.read8(regBC, halfHigh) != 0
	case clBlockLD:
		return c.regs.read16(regBC) != 0
	case clBlockCP:
		return c.regs.read16(regBC) != 0 && !c.regs.f().z()
	case clBlockIN, clBlockOUT:
		return c.regs.read8(regBC, halfHigh) != 0
	}
	return ctrl.cond.holds(c.regs.f())
}

// stageStore produces the byte for the next write cycle of the plan, in
// plan order, tagged with the bus driver it originates from.
func (c *CPU) stageStore() (byte, segDriver) {
	ctrl := c.cur.ctrl
	rf := &c.regs
	n := c.cur.stores
	c.cur.stores++

	switch ctrl.class {
	case clLd8:
		if ctrl.src == opdImm {
			return c.cur.z, driveRegFile
		}
		return c.resolve8(ctrl.src), driveRegFile
	case clLd16Store:
		v := rf.read16(c.pairSel(ctrl.pair))
		if n == 0 {
			return byte(v), driveRegFile
		}
		return byte(v >> 8), driveRegFile
	case clPush:
		v := rf.read16(c.pairSel(ctrl.pair))
		if n == 0 {
			return byte(v >> 8), driveRegFile
		}
		return byte(v), driveRegFile
	case clCallNN, clCallCC, clRst, clNMISvc, clIM2Svc:
		if n == 0 {
			return byte(rf.pc >> 8), driveRegFile
		}
		return byte(rf.pc), driveRegFile
	case clExSPHL:
		v := rf.read16(c.pairSel(regHL))
		if n == 0 {
			return byte(v >> 8), driveRegFile
		}
		return byte(v), driveRegFile
	case clIncDec8:
		c.alu.b = c.cur.z
		v, _ := c.alu.run(ctrl.alu, 0)
		return v, driveALU
	case clRot:
		c.alu.b, c.alu.carry = c.cur.z, rf.f().c()
		v, _ := c.alu.shift(ctrl.alu, 0)
		return v, driveALU
	case clRes:
		return c.cur.z &^ (1 << ctrl.num), driveALU
	case clSet:
		return c.cur.z | 1<<ctrl.num, driveALU
	case clOutNA:
		return rf.a(), driveRegFile
	case clOutCR:
		if ctrl.src == opdIndHL {
			return 0, driveInternal
		}
		return c.resolve8(ctrl.src), driveRegFile
	case clRrd:
		return rf.a()&0x0F<<4 | c.cur.z>>4, driveALU
	case clRld:
		return c.cur.z<<4 | rf.a()&0x0F, driveALU
	}
	return c.cur.z, driveRegFile
}

// operandReg maps the encoding's register field onto the register file.
func operandReg(o operand) (regPair, halfMode) {
	switch o {
	case opdB:
		return regBC, halfHigh
	case opdC:
		return regBC, halfLow
	case opdD:
		return regDE, halfHigh
	case opdE:
		return regDE, halfLow
	case opdH:
		return regHL, halfHigh
	case opdL:
		return regHL, halfLow
	}
	return regAF, halfHigh
}

// resolve8 reads an 8-bit register operand. H and L substitute to the
// index register halves under a DD/FD prefix, except when the instruction
// references memory through the index (the silicon routes only one of the
// two per instruction).
func (c *CPU) resolve8(o operand) byte {
	if o > opdA || o == opdIndHL {
		return 0
	}
	p, h := operandReg(o)
	if p == regHL && c.cur.prefix.idx != 0 && !c.cur.memRef {
		p = c.idxPair()
	}
	return c.regs.read8(p, h)
}

func (c *CPU) writeReg8(o operand, v byte) {
	if o > opdA || o == opdIndHL {
		return
	}
	p, h := operandReg(o)
	if p == regHL && c.cur.prefix.idx != 0 && !c.cur.memRef {
		p = c.idxPair()
	}
	c.regs.write8(p, h, v)
}

func (c *CPU) idxPair() regPair {
	if c.cur.prefix.idx == 2 {
		return regIY
	}
	return regIX
}

// pairSel substitutes HL with the selected index register for the 16-bit
// classes under a DD/FD prefix.
func (c *CPU) pairSel(p regPair) regPair {
	if p == regHL && c.cur.prefix.idx != 0 && !c.cur.memRef {
		return c.idxPair()
	}
	return p
}

func (c *CPU) word() uint16 {
	return uint16(c.cur.w)<<8 | uint16(c.cur.z)
}

func (c *CPU) blockDir() uint16 {
	if c.cur.ctrl.num == 1 {
		return 1
	}
	return 0xFFFF
}

func (c *CPU) stepHL() {
	c.regs.write16(regHL, c.regs.read16(regHL)+c.blockDir())
}

func (c *CPU) blockLDStep() {
	rf := &c.regs
	d := c.blockDir()
	rf.write16(regHL, rf.read16(regHL)+d)
	rf.write16(regDE, rf.read16(regDE)+d)
	bc := rf.read16(regBC) - 1
	rf.write16(regBC, bc)

	// S, Z, C survive; the undocumented bits mirror transferred byte + A
	n := c.cur.z + rf.a()
	f := rf.f() & (flagS | flagZ | flagC)
	f.set(flagPV, bc != 0)
	f.set(flagX3, n&0x08 != 0)
	f.set(flagX5, n&0x02 != 0)
	rf.setF(f)
}

func (c *CPU) blockCPStep() {
	rf := &c.regs
	rf.write16(regHL, rf.read16(regHL)+c.blockDir())
	bc := rf.read16(regBC) - 1
	rf.write16(regBC, bc)

	a := rf.a()
	r := a - c.cur.z
	half := a&0x0F < c.cur.z&0x0F
	f := (rf.f() & flagC) | flagN
	f.set(flagS, r&0x80 != 0)
	f.set(flagZ, r == 0)
	f.set(flagH, half)
	f.set(flagPV, bc != 0)
	n := r
	if half {
		n--
	}
	f.set(flagX3, n&0x08 != 0)
	f.set(flagX5, n&0x02 != 0)
	rf.setF(f)
}

func (c *CPU) blockINStep() {
	rf := &c.regs
	b := rf.read8(regBC, halfHigh) - 1
	rf.write8(regBC, halfHigh, b)

	port := rf.read8(regBC, halfLow) + byte(c.blockDir())
	k := uint16(c.cur.z) + uint16(port)
	f := flags(0)
	f.set(flagN, c.cur.z&0x80 != 0)
	f.set(flagC, k > 0xFF)
	f.set(flagH, k > 0xFF)
	f.set(flagPV, parityTable[byte(k&7)^b] == 1)
	f.set(flagZ, b == 0)
	f.set(flagS, b&0x80 != 0)
	f.setUndoc(b)
	rf.setF(f)
}

func (c *CPU) blockOUTStep() {
	rf := &c.regs
	b := rf.read8(regBC, halfHigh) // decremented in the fetch tail
	k := uint16(c.cur.z) + uint16(rf.read8(regHL, halfLow))
	f := flags(0)
	f.set(flagN, c.cur.z&0x80 != 0)
	f.set(flagC, k > 0xFF)
	f.set(flagH, k > 0xFF)
	f.set(flagPV, parityTable[byte(k&7)^b] == 1)
	f.set(flagZ, b == 0)
	f.set(flagS, b&0x80 != 0)
	f.setUndoc(b)
	rf.setF(f)
}

// finish retires the instruction: register writebacks, flag results and
// control transfers that are not bus traffic.
func (c *CPU) finish() {
	ctrl := c.cur.ctrl
	if ctrl == nil {
		return
	}
	rf := &c.regs
	f := rf.f()

	switch ctrl.class {
	case clNop, clNONI, clOutNA, clOutCR, clLd16Store, clPush, clNMISvc:
		// bus traffic only; NMI entry lands below
	case clHalt:
		c.halted = true
	case clDI:
		c.intc.iff1, c.intc.iff2 = false, false
	case clEI:
		c.intc.iff1, c.intc.iff2 = true, true
		c.intc.eiDelay = true
	case clIM:
		c.intc.mode = ctrl.num

	case clLd8:
		switch ctrl.dst {
		case opdIndHL, opdIndBC, opdIndDE, opdIndNN:
			break // store form, written during the plan
		default:
			v := c.cur.z
			switch ctrl.src {
			case opdImm, opdIndBC, opdIndDE, opdIndNN, opdIndHL:
			default:
				v = c.resolve8(ctrl.src)
			}
			c.writeReg8(ctrl.dst, v)
		}
	case clLdAIR:
		v := rf.i
		if ctrl.num == 1 {
			v = rf.r
		}
		rf.setA(v)
		f &= flagC
		f.set(flagS, v&0x80 != 0)
		f.set(flagZ, v == 0)
		f.set(flagPV, c.intc.iff2)
		f.setUndoc(v)
		rf.setF(f)
	case clLdIRA:
		if ctrl.num == 0 {
			rf.i = rf.a()
		} else {
			rf.r = rf.a()
		}

	case clLd16Imm, clLd16Load:
		rf.write16(c.pairSel(ctrl.pair), c.word())
	case clLdSPHL:
		rf.sp = rf.read16(c.pairSel(regHL))
	case clPop:
		rf.write16(c.pairSel(ctrl.pair), c.word())

	case clExAF:
		rf.swapAF()
	case clExx:
		rf.swapMain()
	case clExDEHL:
		rf.swapDEHL()
	case clExSPHL:
		rf.write16(c.pairSel(regHL), c.word())
		rf.wz = c.word()

	case clAlu:
		c.alu.a = rf.a()
		c.alu.carry = f.c()
		if ctrl.src == opdImm || ctrl.src == opdIndHL {
			c.alu.b = c.cur.z
		} else {
			c.alu.b = c.resolve8(ctrl.src)
		}
		r, nf := c.alu.run(ctrl.alu, f)
		if ctrl.alu != aluCp {
			rf.setA(r)
		}
		rf.setF(nf)
	case clIncDec8:
		if ctrl.dst == opdIndHL {
			c.alu.b = c.cur.z
			_, nf := c.alu.run(ctrl.alu, f)
			rf.setF(nf)
		} else {
			c.alu.b = c.resolve8(ctrl.dst)
			r, nf := c.alu.run(ctrl.alu, f)
			c.writeReg8(ctrl.dst, r)
			rf.setF(nf)
		}

	case clAdd16:
		dp := c.pairSel(regHL)
		a, b := rf.read16(dp), rf.read16(c.pairSel(ctrl.pair))
		r := a + b
		f.updateAdd16(a, b, r)
		rf.write16(dp, r)
		rf.setF(f)
		rf.wz = a + 1
	case clAdc16:
		a, b := rf.read16(regHL), rf.read16(ctrl.pair)
		cy := uint16(0)
		if f.c() {
			cy = 1
		}
		r := a + b + cy
		f.updateAdc16(a, b, r)
		rf.write16(regHL, r)
		rf.setF(f)
		rf.wz = a + 1
	case clSbc16:
		a, b := rf.read16(regHL), rf.read16(ctrl.pair)
		cy := uint16(0)
		if f.c() {
			cy = 1
		}
		r := a - b - cy
		f.updateSbc16(a, b, r)
		rf.write16(regHL, r)
		rf.setF(f)
		rf.wz = a + 1
	case clInc16:
		p := c.pairSel(ctrl.pair)
		rf.write16(p, rf.read16(p)+1)
	case clDec16:
		p := c.pairSel(ctrl.pair)
		rf.write16(p, rf.read16(p)-1)

	case clRotA:
		c.alu.b, c.alu.carry = rf.a(), f.c()
		r, sf := c.alu.shift(ctrl.alu, f)
		nf := f&(flagS|flagZ|flagPV) | sf&flagC
		nf.setUndoc(r)
		rf.setA(r)
		rf.setF(nf)
	case clDaa:
		r, nf := daa(rf.a(), f)
		rf.setA(r)
		rf.setF(nf)
	case clCpl:
		r := ^rf.a()
		rf.setA(r)
		f |= flagH | flagN
		f.setUndoc(r)
		rf.setF(f)
	case clScf:
		f |= flagC
		f &^= flagH | flagN
		f.setUndoc(rf.a())
		rf.setF(f)
	case clCcf:
		was := f.c()
		f.set(flagH, was)
		f.set(flagC, !was)
		f &^= flagN
		f.setUndoc(rf.a())
		rf.setF(f)
	case clNeg:
		c.alu.a, c.alu.b = 0, rf.a()
		r, nf := c.alu.run(aluSub, f)
		rf.setA(r)
		rf.setF(nf)
	case clRrd:
		r := rf.a()&0xF0 | c.cur.z&0x0F
		rf.setA(r)
		f &= flagC
		f.updateSZP(r)
		rf.setF(f)
		rf.wz = rf.read16(regHL) + 1
	case clRld:
		r := rf.a()&0xF0 | c.cur.z>>4
		rf.setA(r)
		f &= flagC
		f.updateSZP(r)
		rf.setF(f)
		rf.wz = rf.read16(regHL) + 1

	case clRot:
		if ctrl.dst == opdIndHL {
			c.alu.b, c.alu.carry = c.cur.z, f.c()
			r, nf := c.alu.shift(ctrl.alu, f)
			rf.setF(nf)
			c.ddcbCopy(r)
		} else {
			c.alu.b, c.alu.carry = c.resolve8(ctrl.dst), f.c()
			r, nf := c.alu.shift(ctrl.alu, f)
			c.writeReg8(ctrl.dst, r)
			rf.setF(nf)
		}
	case clBit:
		if ctrl.dst == opdIndHL {
			rf.setF(bitTest(c.cur.z, ctrl.num, byte(rf.wz>>8), f))
		} else {
			v := c.resolve8(ctrl.dst)
			rf.setF(bitTest(v, ctrl.num, v, f))
		}
	case clRes:
		mask := byte(1) << ctrl.num
		if ctrl.dst == opdIndHL {
			c.ddcbCopy(c.cur.z &^ mask)
		} else {
			c.writeReg8(ctrl.dst, c.resolve8(ctrl.dst)&^mask)
		}
	case clSet:
		mask := byte(1) << ctrl.num
		if ctrl.dst == opdIndHL {
			c.ddcbCopy(c.cur.z | mask)
		} else {
			c.writeReg8(ctrl.dst, c.resolve8(ctrl.dst)|mask)
		}

	case clJpNN:
		rf.pc = c.word()
		rf.wz = rf.pc
	case clJpCC:
		rf.wz = c.word()
		if ctrl.cond.holds(f) {
			rf.pc = rf.wz
		}
	case clJpHL:
		rf.pc = rf.read16(c.pairSel(regHL))
	case clJr:
		rf.pc += uint16(int16(int8(c.cur.z)))
		rf.wz = rf.pc
	case clJrCC:
		if ctrl.cond.holds(f) {
			rf.pc += uint16(int16(int8(c.cur.z)))
			rf.wz = rf.pc
		}
	case clDjnz:
		if rf.read8(regBC, halfHigh) != 0 {
			rf.pc += uint16(int16(int8(c.cur.z)))
			rf.wz = rf.pc
		}
	case clCallNN:
		rf.pc = c.word()
		rf.wz = rf.pc
	case clCallCC:
		rf.wz = c.word()
		if ctrl.cond.holds(f) {
			rf.pc = rf.wz
		}
	case clRet:
		rf.pc = c.word()
		rf.wz = rf.pc
	case clRetCC:
		if ctrl.cond.holds(f) {
			rf.pc = c.word()
			rf.wz = rf.pc
		}
	case clRetN:
		rf.pc = c.word()
		rf.wz = rf.pc
		c.intc.iff1 = c.intc.iff2
	case clRst:
		rf.pc = uint16(ctrl.num)
		rf.wz = rf.pc

	case clInAN:
		rf.wz = (uint16(rf.a())<<8 | uint16(c.cur.z)) + 1
		rf.setA(c.cur.w)
	case clInRC:
		f &= flagC
		f.updateSZP(c.cur.z)
		rf.setF(f)
		if ctrl.dst != opdIndHL {
			c.writeReg8(ctrl.dst, c.cur.z)
		}
		rf.wz = rf.read16(regBC) + 1

	case clBlockLD, clBlockCP, clBlockIN, clBlockOUT:
		if ctrl.rep && c.condHolds() {
			rf.pc -= 2
			rf.wz = rf.pc + 1
		}

	case clIM2Svc:
		rf.pc = c.word()
		rf.wz = rf.pc
	}

	if ctrl.class == clNMISvc {
		rf.pc = 0x0066
		rf.wz = rf.pc
	}
}

// ddcbCopy retires the undocumented register-copy variant of the DDCB
// forms: the memory result also lands in the encoded register, except for
// the pure (HL) encoding.
func (c *CPU) ddcbCopy(v byte) {
	if !c.cur.ddcb {
		return
	}
	if reg := operand(c.cur.opcode & 7); reg != opdIndHL {
		p, h := operandReg(reg)
		c.regs.write8(p, h, v)
	}
}
