package z80

// The decode table (the PLA of the original chip). Pure mapping from
// (opcode byte, prefix state) to a control vector: instruction class, ALU
// operation selector, operand selectors, machine-cycle plan and timing
// hints. The tables are total: every one of the 256 entries of every table
// decodes to a defined vector, with undefined patterns mapped to their
// documented near-neighbour behaviour.
//
// Opcode decomposition follows the instruction encoding itself:
// x = op>>6, y = (op>>3)&7, z = op&7, p = y>>1, q = y&1.

// prefixState is the sticky decode context accumulated across the
// multi-byte fetch of one instruction. Cleared at instruction boundary.
type prefixState struct {
	// index substitution: 0 none, 1 IX, 2 IY (DD/FD)
	idx uint8
	// alternate table selection (CB/ED)
	table uint8
}

const (
	tabMain uint8 = iota
	tabCB
	tabED
)

// opClass names what an instruction does; the execute matrix dispatches on
// it once the plan's bus cycles have delivered the operands.
type opClass uint8

const (
	clNop opClass = iota
	clNONI // undefined ED pattern, behaves as an 8T NOP
	clHalt
	clDI
	clEI
	clIM

	clLd8    // every 8-bit load: register, immediate, (HL), (BC), (DE), (nn)
	clLdAIR  // LD A,I / LD A,R (flag side effects)
	clLdIRA  // LD I,A / LD R,A

	clLd16Imm   // LD rp,nn
	clLd16Load  // LD rp,(nn)
	clLd16Store // LD (nn),rp
	clLdSPHL
	clPush
	clPop

	clExAF
	clExx
	clExDEHL
	clExSPHL

	clAlu     // 8-bit ALU group, accumulator destination
	clIncDec8 // INC r / DEC r, including (HL) and indexed forms
	clAdd16
	clAdc16
	clSbc16
	clInc16
	clDec16

	clRotA // RLCA/RRCA/RLA/RRA
	clDaa
	clCpl
	clScf
	clCcf
	clNeg
	clRrd
	clRld

	clRot // CB rotate/shift group
	clBit
	clRes
	clSet

	clJpNN
	clJpCC
	clJpHL
	clJr
	clJrCC
	clDjnz
	clCallNN
	clCallCC
	clRet
	clRetCC
	clRetN // RETN and RETI
	clRst

	clInAN
	clOutNA
	clInRC  // IN r,(C)
	clOutCR // OUT (C),r

	clBlockLD  // LDI/LDD/LDIR/LDDR
	clBlockCP  // CPI/CPD/CPIR/CPDR
	clBlockIN  // INI/IND/INIR/INDR
	clBlockOUT // OUTI/OUTD/OTIR/OTDR

	clPrefixCB
	clPrefixED
	clPrefixDD
	clPrefixFD
)

// operand selects a source or destination for 8-bit transfers. Values 0..7
// are the instruction encoding's register field, with 6 meaning (HL).
type operand uint8

const (
	opdB operand = iota
	opdC
	opdD
	opdE
	opdH
	opdL
	opdIndHL
	opdA

	opdNone
	opdImm   // immediate byte fetched from PC
	opdIndBC // (BC)
	opdIndDE // (DE)
	opdIndNN // (nn)
)

// condition codes in instruction-encoding order.
type condition uint8

const (
	condNZ condition = iota
	condZ
	condNC
	condC
	condPO
	condPE
	condP
	condM
	condNone
)

func (c condition) holds(f flags) bool {
	switch c {
	case condNZ:
		return !f.z()
	case condZ:
		return f.z()
	case condNC:
		return !f.c()
	case condC:
		return f.c()
	case condPO:
		return !f.pv()
	case condPE:
		return f.pv()
	case condP:
		return !f.s()
	case condM:
		return f.s()
	}
	return true
}

// Machine-cycle kinds. Fetch cycles are not part of the plan; the sequencer
// issues them while the prefix tracker accumulates the instruction.
type mcKind uint8

const (
	mcRead mcKind = iota
	mcWrite
	mcIORead
	mcIOWrite
	mcInternal
)

// addrSrc selects what the address latch is loaded with for a plan cycle.
type addrSrc uint8

const (
	aNone   addrSrc = iota
	aPC             // program counter, incremented at T2
	aHL             // HL (or IX/IY under index substitution of the operand)
	aBC             // BC
	aDE             // DE
	aWZ             // internal address temporary
	aWZBump         // WZ, then WZ+1 (16-bit transfers)
	aSPPush         // SP pre-decremented, then write
	aSPPop          // SP, then post-incremented
	aIOBC           // IO address from BC
	aIOWZ           // IO address from WZ (IN A,(n) / OUT (n),A)
)

type mcycle struct {
	kind mcKind
	len  uint8
	addr addrSrc
}

// control is the decoded vector: one per (table, opcode).
type control struct {
	class opClass
	alu   aluOp
	src   operand
	dst   operand
	pair  regPair   // 16-bit operand where the class uses one
	cond  condition // conditional continuation, condNone otherwise
	num   uint8     // bit index, RST target, IM number
	rep   bool      // block instruction repeats

	fetchExtra uint8 // T states appended to the final fetch M beyond 4

	plan []mcycle
	// condFrom: plan cycles from this index run only when cond holds; -1
	// when the plan is unconditional. condStretch extends the preceding
	// cycle by that many T states when the condition holds (the silicon
	// reuses the operand-read cycle to compute the target).
	condFrom    int8
	condStretch uint8

	name string
}

var (
	mainTable [256]control
	cbTable   [256]control
	edTable   [256]control
)

// Shorthand plan constructors.
func rd(len uint8, a addrSrc) mcycle { return mcycle{kind: mcRead, len: len, addr: a} }
func wr(len uint8, a addrSrc) mcycle { return mcycle{kind: mcWrite, len: len, addr: a} }
func ird(a addrSrc) mcycle           { return mcycle{kind: mcIORead, len: 4, addr: a} }
func iwr(a addrSrc) mcycle           { return mcycle{kind: mcIOWrite, len: 4, addr: a} }
func internal(len uint8) mcycle      { return mcycle{kind: mcInternal, len: len, addr: aNone} }
func plan(cycles ...mcycle) []mcycle { return cycles }

var regNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
var pairNames = [4]string{"BC", "DE", "HL", "SP"}
var pairNames2 = [4]string{"BC", "DE", "HL", "AF"}
var condNames = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
var aluNames = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}
var rotNames = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}

// pairRP maps the instruction encoding's rp field.
var pairRP = [4]regPair{regBC, regDE, regHL, regSP}

// pairRP2 maps the rp2 field used by PUSH/POP.
var pairRP2 = [4]regPair{regBC, regDE, regHL, regAF}

var aluOps = [8]aluOp{aluAdd, aluAdc, aluSub, aluSbc, aluAnd, aluXor, aluOr, aluCp}
var rotOps = [8]aluOp{aluRlc, aluRrc, aluRl, aluRr, aluSla, aluSra, aluSll, aluSrl}

func init() {
	buildMainTable()
	buildCBTable()
	buildEDTable()
}

// lookup is the PLA proper: combinational, total, no side effects.
func lookup(opcode byte, prefix prefixState) *control {
	switch prefix.table {
	case tabCB:
		return &cbTable[opcode]
	case tabED:
		return &edTable[opcode]
	}
	return &mainTable[opcode]
}

func buildMainTable() {
	for op := 0; op < 256; op++ {
		x := op >> 6
		y := (op >> 3) & 7
		z := op & 7
		p := y >> 1
		q := y & 1
		c := control{condFrom: -1, cond: condNone, src: opdNone, dst: opdNone}

		switch x {
		case 0:
			switch z {
			case 0:
				switch y {
				case 0:
					c.class, c.name = clNop, "NOP"
				case 1:
					c.class, c.name = clExAF, "EX AF,AF'"
				case 2:
					c.class, c.name = clDjnz, "DJNZ"
					c.fetchExtra = 1
					c.plan = plan(rd(3, aPC), internal(5))
					c.condFrom = 1
				case 3:
					c.class, c.name = clJr, "JR"
					c.plan = plan(rd(3, aPC), internal(5))
				default: // 4..7
					c.class, c.name = clJrCC, "JR "+condNames[y-4]+","
					c.cond = condition(y - 4)
					c.plan = plan(rd(3, aPC), internal(5))
					c.condFrom = 1
				}
			case 1:
				if q == 0 {
					c.class, c.name = clLd16Imm, "LD "+pairNames[p]+",nn"
					c.pair = pairRP[p]
					c.plan = plan(rd(3, aPC), rd(3, aPC))
				} else {
					c.class, c.name = clAdd16, "ADD HL,"+pairNames[p]
					c.pair = pairRP[p]
					c.plan = plan(internal(4), internal(3))
				}
			case 2:
				switch {
				case q == 0 && p == 0:
					c.class, c.name = clLd8, "LD (BC),A"
					c.src, c.dst = opdA, opdIndBC
					c.plan = plan(wr(3, aBC))
				case q == 0 && p == 1:
					c.class, c.name = clLd8, "LD (DE),A"
					c.src, c.dst = opdA, opdIndDE
					c.plan = plan(wr(3, aDE))
				case q == 0 && p == 2:
					c.class, c.name = clLd16Store, "LD (nn),HL"
					c.pair = regHL
					c.plan = plan(rd(3, aPC), rd(3, aPC), wr(3, aWZBump), wr(3, aWZBump))
				case q == 0 && p == 3:
					c.class, c.name = clLd8, "LD (nn),A"
					c.src, c.dst = opdA, opdIndNN
					c.plan = plan(rd(3, aPC), rd(3, aPC), wr(3, aWZ))
				case q == 1 && p == 0:
					c.class, c.name = clLd8, "LD A,(BC)"
					c.src, c.dst = opdIndBC, opdA
					c.plan = plan(rd(3, aBC))
				case q == 1 && p == 1:
					c.class, c.name = clLd8, "LD A,(DE)"
					c.src, c.dst = opdIndDE, opdA
					c.plan = plan(rd(3, aDE))
				case q == 1 && p == 2:
					c.class, c.name = clLd16Load, "LD HL,(nn)"
					c.pair = regHL
					c.plan = plan(rd(3, aPC), rd(3, aPC), rd(3, aWZBump), rd(3, aWZBump))
				default:
					c.class, c.name = clLd8, "LD A,(nn)"
					c.src, c.dst = opdIndNN, opdA
					c.plan = plan(rd(3, aPC), rd(3, aPC), rd(3, aWZ))
				}
			case 3:
				c.pair = pairRP[p]
				c.fetchExtra = 2
				if q == 0 {
					c.class, c.name = clInc16, "INC "+pairNames[p]
				} else {
					c.class, c.name = clDec16, "DEC "+pairNames[p]
				}
			case 4, 5:
				c.class = clIncDec8
				c.dst = operand(y)
				if z == 4 {
					c.alu, c.name = aluInc, "INC "+regNames[y]
				} else {
					c.alu, c.name = aluDec, "DEC "+regNames[y]
				}
				if c.dst == opdIndHL {
					c.plan = plan(rd(4, aHL), wr(3, aHL))
				}
			case 6:
				c.class, c.name = clLd8, "LD "+regNames[y]+",n"
				c.src, c.dst = opdImm, operand(y)
				if c.dst == opdIndHL {
					c.plan = plan(rd(3, aPC), wr(3, aHL))
				} else {
					c.plan = plan(rd(3, aPC))
				}
			case 7:
				switch y {
				case 0, 1, 2, 3:
					c.class, c.alu = clRotA, rotOps[y]
					c.name = [4]string{"RLCA", "RRCA", "RLA", "RRA"}[y]
				case 4:
					c.class, c.name = clDaa, "DAA"
				case 5:
					c.class, c.name = clCpl, "CPL"
				case 6:
					c.class, c.name = clScf, "SCF"
				case 7:
					c.class, c.name = clCcf, "CCF"
				}
			}
		case 1:
			if y == 6 && z == 6 {
				c.class, c.name = clHalt, "HALT"
			} else {
				c.class = clLd8
				c.src, c.dst = operand(z), operand(y)
				c.name = "LD " + regNames[y] + "," + regNames[z]
				if c.src == opdIndHL {
					c.plan = plan(rd(3, aHL))
				} else if c.dst == opdIndHL {
					c.plan = plan(wr(3, aHL))
				}
			}
		case 2:
			c.class, c.alu = clAlu, aluOps[y]
			c.src = operand(z)
			c.name = aluNames[y] + regNames[z]
			if c.src == opdIndHL {
				c.plan = plan(rd(3, aHL))
			}
		case 3:
			switch z {
			case 0:
				c.class, c.name = clRetCC, "RET "+condNames[y]
				c.cond = condition(y)
				c.fetchExtra = 1
				c.plan = plan(rd(3, aSPPop), rd(3, aSPPop))
				c.condFrom = 0
			case 1:
				if q == 0 {
					c.class, c.name = clPop, "POP "+pairNames2[p]
					c.pair = pairRP2[p]
					c.plan = plan(rd(3, aSPPop), rd(3, aSPPop))
				} else {
					switch p {
					case 0:
						c.class, c.name = clRet, "RET"
						c.plan = plan(rd(3, aSPPop), rd(3, aSPPop))
					case 1:
						c.class, c.name = clExx, "EXX"
					case 2:
						c.class, c.name = clJpHL, "JP (HL)"
					case 3:
						c.class, c.name = clLdSPHL, "LD SP,HL"
						c.fetchExtra = 2
					}
				}
			case 2:
				c.class, c.name = clJpCC, "JP "+condNames[y]+",nn"
				c.cond = condition(y)
				c.plan = plan(rd(3, aPC), rd(3, aPC))
			case 3:
				switch y {
				case 0:
					c.class, c.name = clJpNN, "JP nn"
					c.plan = plan(rd(3, aPC), rd(3, aPC))
				case 1:
					c.class, c.name = clPrefixCB, "prefix CB"
				case 2:
					c.class, c.name = clOutNA, "OUT (n),A"
					c.plan = plan(rd(3, aPC), iwr(aIOWZ))
				case 3:
					c.class, c.name = clInAN, "IN A,(n)"
					c.plan = plan(rd(3, aPC), ird(aIOWZ))
				case 4:
					c.class, c.name = clExSPHL, "EX (SP),HL"
					c.plan = plan(rd(3, aSPPop), rd(4, aSPPop), wr(3, aSPPush), wr(5, aSPPush))
				case 5:
					c.class, c.name = clExDEHL, "EX DE,HL"
				case 6:
					c.class, c.name = clDI, "DI"
				case 7:
					c.class, c.name = clEI, "EI"
				}
			case 4:
				c.class, c.name = clCallCC, "CALL "+condNames[y]+",nn"
				c.cond = condition(y)
				c.plan = plan(rd(3, aPC), rd(3, aPC), wr(3, aSPPush), wr(3, aSPPush))
				c.condFrom = 2
				c.condStretch = 1
			case 5:
				if q == 0 {
					c.class, c.name = clPush, "PUSH "+pairNames2[p]
					c.pair = pairRP2[p]
					c.fetchExtra = 1
					c.plan = plan(wr(3, aSPPush), wr(3, aSPPush))
				} else {
					switch p {
					case 0:
						c.class, c.name = clCallNN, "CALL nn"
						c.plan = plan(rd(3, aPC), rd(4, aPC), wr(3, aSPPush), wr(3, aSPPush))
					case 1:
						c.class, c.name = clPrefixDD, "prefix DD"
					case 2:
						c.class, c.name = clPrefixED, "prefix ED"
					case 3:
						c.class, c.name = clPrefixFD, "prefix FD"
					}
				}
			case 6:
				c.class, c.alu = clAlu, aluOps[y]
				c.src = opdImm
				c.name = aluNames[y] + "n"
				c.plan = plan(rd(3, aPC))
			case 7:
				c.class, c.name = clRst, "RST"
				c.num = uint8(y * 8)
				c.fetchExtra = 1
				c.plan = plan(wr(3, aSPPush), wr(3, aSPPush))
			}
		}
		mainTable[op] = c
	}
}

func buildCBTable() {
	for op := 0; op < 256; op++ {
		x := op >> 6
		y := (op >> 3) & 7
		z := op & 7
		c := control{condFrom: -1, cond: condNone, src: operand(z), dst: operand(z)}
		c.num = uint8(y)

		switch x {
		case 0:
			c.class, c.alu = clRot, rotOps[y]
			c.name = rotNames[y] + " " + regNames[z]
			if operand(z) == opdIndHL {
				c.plan = plan(rd(4, aHL), wr(3, aHL))
			}
		case 1:
			c.class, c.name = clBit, "BIT"
			if operand(z) == opdIndHL {
				c.plan = plan(rd(4, aHL))
			}
		case 2:
			c.class, c.name = clRes, "RES"
			if operand(z) == opdIndHL {
				c.plan = plan(rd(4, aHL), wr(3, aHL))
			}
		case 3:
			c.class, c.name = clSet, "SET"
			if operand(z) == opdIndHL {
				c.plan = plan(rd(4, aHL), wr(3, aHL))
			}
		}
		cbTable[op] = c
	}
}

func buildEDTable() {
	for op := 0; op < 256; op++ {
		x := op >> 6
		y := (op >> 3) & 7
		z := op & 7
		p := y >> 1
		q := y & 1
		// Undefined ED patterns behave as two-fetch NOPs.
		c := control{condFrom: -1, cond: condNone, src: opdNone, dst: opdNone,
			class: clNONI, name: "NONI"}

		switch {
		case x == 1:
			switch z {
			case 0:
				c.class, c.name = clInRC, "IN "+regNames[y]+",(C)"
				c.dst = operand(y) // y==6: flags only, nothing stored
				c.plan = plan(ird(aIOBC))
			case 1:
				c.class, c.name = clOutCR, "OUT (C),"+regNames[y]
				c.src = operand(y) // y==6: outputs zero
				c.plan = plan(iwr(aIOBC))
			case 2:
				c.pair = pairRP[p]
				if q == 0 {
					c.class, c.name = clSbc16, "SBC HL,"+pairNames[p]
				} else {
					c.class, c.name = clAdc16, "ADC HL,"+pairNames[p]
				}
				c.plan = plan(internal(4), internal(3))
			case 3:
				c.pair = pairRP[p]
				if q == 0 {
					c.class, c.name = clLd16Store, "LD (nn),"+pairNames[p]
					c.plan = plan(rd(3, aPC), rd(3, aPC), wr(3, aWZBump), wr(3, aWZBump))
				} else {
					c.class, c.name = clLd16Load, "LD "+pairNames[p]+",(nn)"
					c.plan = plan(rd(3, aPC), rd(3, aPC), rd(3, aWZBump), rd(3, aWZBump))
				}
			case 4:
				c.class, c.name = clNeg, "NEG"
			case 5:
				c.class, c.name = clRetN, "RETN"
				if y == 1 {
					c.name = "RETI"
				}
				c.plan = plan(rd(3, aSPPop), rd(3, aSPPop))
			case 6:
				c.class, c.name = clIM, "IM"
				c.num = [8]uint8{0, 0, 1, 2, 0, 0, 1, 2}[y]
			case 7:
				switch y {
				case 0:
					c.class, c.name, c.num = clLdIRA, "LD I,A", 0
					c.fetchExtra = 1
				case 1:
					c.class, c.name, c.num = clLdIRA, "LD R,A", 1
					c.fetchExtra = 1
				case 2:
					c.class, c.name, c.num = clLdAIR, "LD A,I", 0
					c.fetchExtra = 1
				case 3:
					c.class, c.name, c.num = clLdAIR, "LD A,R", 1
					c.fetchExtra = 1
				case 4:
					c.class, c.name = clRrd, "RRD"
					c.plan = plan(rd(3, aHL), internal(4), wr(3, aHL))
				case 5:
					c.class, c.name = clRld, "RLD"
					c.plan = plan(rd(3, aHL), internal(4), wr(3, aHL))
				default:
					c.class, c.name = clNop, "NOP"
				}
			}
		case x == 2 && z <= 3 && y >= 4:
			dir := uint8(1) // +1 for the I variants, -1 encoded as 0
			if y == 5 || y == 7 {
				dir = 0
			}
			rep := y >= 6
			c.num, c.rep = dir, rep
			switch z {
			case 0:
				c.class = clBlockLD
				c.name = [4]string{"LDI", "LDD", "LDIR", "LDDR"}[y-4]
				c.plan = plan(rd(3, aHL), wr(5, aDE), internal(5))
				c.condFrom = 2
			case 1:
				c.class = clBlockCP
				c.name = [4]string{"CPI", "CPD", "CPIR", "CPDR"}[y-4]
				c.plan = plan(rd(3, aHL), internal(5), internal(5))
				c.condFrom = 2
			case 2:
				c.class = clBlockIN
				c.name = [4]string{"INI", "IND", "INIR", "INDR"}[y-4]
				c.fetchExtra = 1
				c.plan = plan(ird(aIOBC), wr(3, aHL), internal(5))
				c.condFrom = 2
			case 3:
				c.class = clBlockOUT
				c.name = [4]string{"OUTI", "OUTD", "OTIR", "OTDR"}[y-4]
				c.fetchExtra = 1
				c.plan = plan(rd(3, aHL), iwr(aIOBC), internal(5))
				c.condFrom = 2
			}
			if !rep {
				// Non-repeating forms stop before the PC rewind cycle.
				c.plan = c.plan[:2]
				c.condFrom = -1
			}
		}
		edTable[op] = c
	}
}
