package board

import (
	"fmt"
	"github.com/LoesterFranco/A-Z80/internal/config"
	"github.com/LoesterFranco/A-Z80/internal/services/common"
	"github.com/LoesterFranco/A-Z80/internal/services/display"
	"github.com/LoesterFranco/A-Z80/internal/services/logging"
	"github.com/LoesterFranco/A-Z80/internal/services/memory"
	"github.com/LoesterFranco/A-Z80/internal/services/status"
	"github.com/LoesterFranco/A-Z80/internal/z80"
	"os"
)

const (
	instrLimit = 1000    // clock periods allowed per instruction step
	runLimit   = 5000000 // clock periods allowed per free run
)

// Board is a Z80 wired to 64K of memory on a breadboard, with the monitor
// around it. It owns the clock: every advance goes through clockPeriod so
// the input lines and the bus are serviced consistently.
type Board struct {
	cpu      *z80.CPU
	terminal *display.Terminal
	log      *logging.Log
	memory   *memory.Memory
	flags    *status.Flags
	steps    *status.Steps
	clock    *status.Clock
	intLine  *status.Int
	nmiLine  *status.Nmi
	resetLn  *status.Reset
	waitLine *status.Wait
	busrq    *status.Busrq
	strobes  *status.Strobes
	help     *HelpPage

	activeUI common.UI // overlay page, nil while the board screen is up
	opTrace  []string
	curName  string
}

func New() (*Board, error) {
	t, err := display.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	b := &Board{terminal: t}
	b.log = logging.New(b.redraw)
	b.memory = memory.New(b.log, t, b.redraw)
	b.flags = status.NewFlags(b.log)
	b.steps = status.NewSteps(b.log)
	b.clock = status.NewClock(b.log)
	b.intLine = status.NewInt(b.log, b.redraw)
	b.nmiLine = status.NewNmi(b.log, b.redraw)
	b.resetLn = status.NewReset(b.log, b.redraw, b.reload)
	b.waitLine = status.NewWait(b.log, b.redraw)
	b.busrq = status.NewBusrq(b.log, b.redraw)
	b.strobes = status.NewStrobes(b.log)
	b.help = NewHelpPage()

	b.cpu = z80.New(config.CLIConfig.PowerOnState())
	b.memory.SetVector(byte(config.CLIConfig.Board.Vector))
	if config.CLIConfig.RomFile != "" {
		if !b.memory.LoadRom(config.CLIConfig.RomFile, uint16(config.CLIConfig.Board.RomBase)) {
			return nil, fmt.Errorf("failed to load %s", config.CLIConfig.RomFile)
		}
	}
	return b, nil
}

func (b *Board) reload() {
	if config.CLIConfig.RomFile != "" {
		b.memory.LoadRom(config.CLIConfig.RomFile, uint16(config.CLIConfig.Board.RomBase))
	}
}

func (b *Board) redraw(initialize bool) {
	if b.activeUI != nil {
		b.activeUI.Draw(b.terminal, initialize)
	} else {
		b.draw(initialize)
	}
}

// clockPeriod advances the core one full clock period: present the input
// lines, clock, then let the memory answer the strobes so the data is on
// the bus before the next sampling edge.
func (b *Board) clockPeriod() {
	p := b.cpu.Pins()
	p.INT = b.intLine.Asserted()
	p.NMI = b.nmiLine.Asserted()
	p.WAIT = b.waitLine.Asserted()
	p.BUSRQ = b.busrq.Asserted()
	p.RESET = b.resetLn.Asserted()

	b.cpu.Clock()
	b.memory.Service(p)

	m, t := b.cpu.Sequence()
	if m == 1 && t == 1 {
		b.traceOp()
	} else if op := b.cpu.CurrentOp(); op != "" {
		b.curName = op
	}
	b.steps.SetStep(m, t)
	b.flags.SetFlags(uint8(b.cpu.Snapshot().AF))
	b.strobes.SetPins(p)
	b.clock.SetCycles(b.cpu.TStates())
}

// traceOp records the instruction that just retired. The name is captured
// while the instruction is in flight because the decode state is already
// cleared at the boundary.
func (b *Board) traceOp() {
	if b.curName == "" {
		return
	}
	b.opTrace = append(b.opTrace, b.curName)
	b.curName = ""
	if len(b.opTrace) > traceLines {
		b.opTrace = b.opTrace[1:]
	}
}

// stepInstruction clocks the core to the next instruction boundary.
func (b *Board) stepInstruction() {
	for i := 0; ; i++ {
		b.clockPeriod()
		if m, t := b.cpu.Sequence(); m == 1 && t == 1 {
			return
		}
		if i >= instrLimit {
			b.log.Warn("Instruction did not complete; WAIT or BUSRQ held?")
			return
		}
	}
}

// run free-runs until a breakpoint, the HALT state, or the period cap.
func (b *Board) run() {
	start := b.cpu.TStates()
	for {
		b.stepInstruction()
		pc := b.cpu.Snapshot().PC
		if b.memory.HasBreakPoint(pc) {
			b.log.Infof("Breakpoint at %s", display.HexAddress(pc))
			return
		}
		if b.cpu.Halted() {
			b.log.Info("Core halted")
			return
		}
		if b.cpu.TStates()-start > runLimit {
			b.log.Warn("Run limit reached")
			return
		}
	}
}

func (b *Board) pulseNmi() {
	b.nmiLine.Assert()
	b.clockPeriod()
	b.nmiLine.Release()
}

func (b *Board) pulseReset() {
	b.resetLn.Assert()
	b.clockPeriod()
	b.clockPeriod()
	b.resetLn.Release()
	b.opTrace = nil
	b.curName = ""
}

func (b *Board) Run() {
	b.redraw(true)
	for {
		a, k, e := b.terminal.ReadChar()
		if e != nil {
			b.terminal.Restore()
			fmt.Printf("Unexpected error: %v\n", e)
			os.Exit(1)
		}
		input := common.Input{Ascii: a, KeyCode: k}

		if b.activeUI != nil {
			if b.activeUI.Process(input) {
				b.activeUI = nil
				b.redraw(true)
			}
			continue
		}

		if b.memory.KeyIntercept(input) {
			continue
		}

		switch a {
		case 'q':
			b.terminal.Restore()
			b.terminal.Cls()
			return
		case 'c':
			b.clockPeriod()
			b.redraw(false)
		case 's':
			b.stepInstruction()
			b.redraw(false)
		case 'g':
			b.run()
			b.redraw(false)
		case 'i':
			b.intLine.Toggle()
		case 'n':
			b.pulseNmi()
			b.redraw(false)
		case 'r':
			b.pulseReset()
			b.redraw(false)
		case 'w':
			b.waitLine.Toggle()
		case 'u':
			b.busrq.Toggle()
		case 'd':
			b.log.SetDebug(true)
		case 'D':
			b.log.SetDebug(false)
		case 'l':
			b.activeUI = b.log.HistoryViewer()
			b.redraw(true)
		case 'h':
			b.activeUI = b.help.Help()
			b.redraw(true)
		default:
			b.log.Warnf("Unmapped key: [%c]", a)
		}
	}
}
