package z80

// The internal data path is three logical segments, inherited from the
// silicon's segmented bus: one facing the data pins, one facing the ALU
// latches, one facing the register file. The original chip reused a single
// physical path by switching pass gates; here each segment is a slot that
// accepts exactly one driver per sub-cycle, and transfers are a
// propose-then-commit pass so a value becomes visible on a segment before
// any same-sub-cycle consumer reads it.

type segID uint8

const (
	segPins segID = iota // between the data pins and the instruction register
	segALU               // between the instruction register and the ALU
	segReg               // between the ALU and the register file
	segCount
)

type segDriver uint8

const (
	driveNone segDriver = iota
	drivePins
	driveIR
	driveALU
	driveRegFile
	driveInternal
)

type busSegment struct {
	driver segDriver
	value  byte
}

// busNet is the routing network for one sub-cycle. It is cleared before the
// combinational plane is evaluated and checked after it has settled.
type busNet struct {
	seg [segCount]busSegment

	// conflict latches a double-drive. A decode/execute combination that
	// trips this is a design-time fault; the exhaustive table tests assert
	// it never fires, and the clocked path never branches on it.
	conflict bool
}

func (b *busNet) reset() {
	for i := range b.seg {
		b.seg[i] = busSegment{}
	}
}

// drive proposes a value onto a segment. The first driver wins the slot;
// a second driver in the same sub-cycle records the conflict.
func (b *busNet) drive(id segID, who segDriver, v byte) {
	s := &b.seg[id]
	if s.driver != driveNone && s.driver != who {
		b.conflict = true
		return
	}
	s.driver = who
	s.value = v
}

// join commits a segment's value across a closed switch onto its neighbour,
// preserving the silicon's visibility ordering: the source segment must
// already have settled when join runs.
func (b *busNet) join(from, to segID) {
	src := &b.seg[from]
	if src.driver == driveNone {
		return
	}
	b.drive(to, src.driver, src.value)
}

// read returns the settled value of a segment. An undriven segment floats
// high, matching the pulled-up data bus of the reference board.
func (b *busNet) read(id segID) byte {
	if b.seg[id].driver == driveNone {
		return 0xFF
	}
	return b.seg[id].value
}

func (b *busNet) driven(id segID) bool { return b.seg[id].driver != driveNone }
