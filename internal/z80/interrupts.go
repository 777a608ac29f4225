package z80

// fetchMode is how the next M1 cycle acquires its opcode byte. Normal
// fetches read the data pins; interrupt service overrides the opcode latch
// with a fixed value per mode.
type fetchMode uint8

const (
	fetchNormal fetchMode = iota
	fetchNMI              // forced internal 0x00, control overridden to call 0x0066
	fetchIM0              // acknowledge cycle, opcode driven by the peripheral
	fetchIM1              // acknowledge cycle, forced 0xFF (RST 38h)
	fetchIM2              // acknowledge cycle, forced 0x00, vector byte sampled
)

// interruptController arbitrates reset, NMI and INT against the sequencer.
// NMI is an edge-sensitive latch with priority over the level-sampled INT.
type interruptController struct {
	iff1 bool
	iff2 bool
	mode uint8 // 0, 1 or 2

	nmiPending bool
	nmiLast    bool // previous NMI pin level, for edge detection

	// EI enables interrupts with a one-instruction delay so that the
	// instruction after EI always executes (RETI patterns rely on it).
	eiDelay bool
}

// observe runs every clock period, keeping the edge latch current.
func (ic *interruptController) observe(pins *Pins) {
	if pins.NMI && !ic.nmiLast {
		ic.nmiPending = true
	}
	ic.nmiLast = pins.NMI
}

// sample decides, at the instruction boundary, how the next M1 fetch runs.
// The decision consumes the NMI latch; the INT line is level-sampled and
// stays asserted under peripheral control.
func (ic *interruptController) sample(pins *Pins) fetchMode {
	if ic.nmiPending {
		ic.nmiPending = false
		ic.iff2 = ic.iff1
		ic.iff1 = false
		return fetchNMI
	}
	if pins.INT && ic.iff1 && !ic.eiDelay {
		ic.iff1 = false
		ic.iff2 = false
		switch ic.mode {
		case 1:
			return fetchIM1
		case 2:
			return fetchIM2
		default:
			return fetchIM0
		}
	}
	ic.eiDelay = false
	return fetchNormal
}

func (ic *interruptController) reset() {
	ic.iff1 = false
	ic.iff2 = false
	ic.mode = 0
	ic.nmiPending = false
	ic.eiDelay = false
}
