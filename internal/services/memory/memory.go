package memory

import (
	"encoding/hex"
	"fmt"
	"github.com/LoesterFranco/A-Z80/internal/services/common"
	"github.com/LoesterFranco/A-Z80/internal/services/display"
	"github.com/LoesterFranco/A-Z80/internal/services/logging"
	"github.com/LoesterFranco/A-Z80/internal/z80"
	"io/ioutil"
	"strings"
)

const (
	read    = common.BrightYellow
	written = common.BrightRed
	normal  = common.Blue
	current = common.BrightGreen
)

type memoryEntry struct {
	data       byte
	rom        bool
	breakpoint bool
}

// Memory is the 64K address space plus the IO port latches hanging off the
// bus. The core talks to it through its pins only; the rest of the methods
// exist for the monitor's hex editor.
type Memory struct {
	filename       string
	memory         [65536]*memoryEntry
	ioIn           [256]byte
	ioOut          [256]byte
	vector         byte
	lastAction     string
	lastAddress    uint16
	log            *logging.Log
	baseAddress    uint16
	displayAddress uint16
	terminal       *display.Terminal
	xOffset        []int
	yOffset        []int
	cursor         common.Coord
	redraw         func(bool)
	inputMode      bool
	input          string
	lastInput      byte
	undoAddress    uint16
	hasLastInput   bool
}

func New(log *logging.Log, terminal *display.Terminal, redraw func(bool)) *Memory {
	m := &Memory{
		lastAction: normal,
		log:        log,
		terminal:   terminal,
		xOffset:    []int{5, 6},
		yOffset:    []int{2, 3},
		cursor:     common.Coord{X: 0, Y: 0},
		input:      "xx",
		redraw:     redraw,
	}
	for i := range m.ioIn {
		m.ioIn[i] = 0xFF
	}
	return m
}

func (m *Memory) LoadRom(filename string, baseAddress uint16) bool {
	m.baseAddress = baseAddress
	m.filename = filename
	if bs, err := ioutil.ReadFile(filename); err != nil {
		m.log.Errorf("Failed to read ROM: %s", err)
		return false
	} else {
		for i := 0; i < len(bs) && int(baseAddress)+i < 65536; i++ {
			m.memory[baseAddress+uint16(i)] = &memoryEntry{data: bs[i], rom: true}
		}
		m.log.Infof("%d byte(s) read.", len(bs))
		return true
	}
}

func (m *Memory) getEntry(address uint16) *memoryEntry {
	if entry := m.memory[address]; entry != nil {
		return entry
	}
	m.memory[address] = &memoryEntry{}
	return m.memory[address]
}

// SetVector sets the byte placed on the data bus during an interrupt
// acknowledge: the restart opcode in mode 0, the table index in mode 2.
func (m *Memory) SetVector(vector byte) {
	m.vector = vector
}
func (m *Memory) Vector() byte {
	return m.vector
}

// Service answers the bus strobes for one clock period.
func (m *Memory) Service(p *z80.Pins) {
	switch {
	case p.M1 && p.IORQ:
		p.DataIn = m.vector
	case p.MREQ && p.RD:
		p.DataIn = m.getEntry(p.Addr).data
		m.lastAction = read
		m.lastAddress = p.Addr
	case p.MREQ && p.WR && p.DataDriven:
		me := m.getEntry(p.Addr)
		if me.rom {
			m.log.Warnf("Write to ROM at %s ignored", display.HexAddress(p.Addr))
			return
		}
		me.data = p.Data
		m.lastAction = written
		m.lastAddress = p.Addr
	case p.IORQ && p.RD:
		p.DataIn = m.ioIn[p.Addr&0xFF]
	case p.IORQ && p.WR && p.DataDriven:
		m.ioOut[p.Addr&0xFF] = p.Data
	}
}

func (m *Memory) ReadMemory(address uint16) byte {
	return m.getEntry(address).data
}
func (m *Memory) WriteMemory(address uint16, data byte) bool {
	me := m.getEntry(address)
	if me.rom {
		m.log.Errorf("Memory[%s] is ROM and cannot be changed", display.HexAddress(address))
		return false
	}
	me.data = data
	m.log.Infof("Memory[%s] set to %s", display.HexAddress(address), display.HexData(me.data))
	return true
}
func (m *Memory) SetPort(port, data byte) {
	m.ioIn[port] = data
}
func (m *Memory) Port(port byte) byte {
	return m.ioOut[port]
}

func (m *Memory) ToggleBreakPoint(address uint16) {
	me := m.getEntry(address)
	me.breakpoint = !me.breakpoint
	m.redraw(false)
}
func (m *Memory) HasBreakPoint(address uint16) bool {
	if me := m.memory[address]; me != nil {
		return me.breakpoint
	}
	return false
}

func (m *Memory) MemoryBlock(address uint16) (lines []string) {
	// Round down to nearest block
	start := address - address%256
	if m.displayAddress != start {
		m.hasLastInput = false
		m.displayAddress = start
	}
	lines = append(lines, common.Yellow+"     0  1  2  3  4  5  6  7   8  9  A  B  C  D  E  F"+common.Reset)

	colour, lastColour, line := normal, "", ""
	for i := 0; i < 16; i++ {
		line = fmt.Sprintf("%s%s%s%s ", common.Yellow, display.HEX[start>>12], display.HEX[start>>8&15], display.HEX[start>>4&15])
		for j := 0; j < 16; j++ {
			me := m.getEntry(start)
			colour = normal
			if address == start {
				colour = current
			} else if m.lastAddress == start {
				colour = m.lastAction
			}
			if colour == lastColour {
				colour = ""
			} else {
				lastColour = colour
			}
			value := display.HexData(me.data)
			if m.inputMode && m.cursor.X == j && m.cursor.Y == i {
				lastColour = common.BrightRed
				colour = common.BrightRed
				value = (m.input + "__")[:2]
			} else if me.breakpoint {
				lastColour = lastColour + common.BGRed
				value = common.BGRed + value + common.Reset
			}

			line += fmt.Sprintf("%s%s ", colour, value)
			if j == 7 {
				line += " "
			}
			start++
		}
		lastColour = ""
		lines = append(lines, fmt.Sprintf("%s%s", line, common.Reset))
		if i == 7 {
			lines = append(lines, "")
		}
	}
	return lines
}

func (m *Memory) Up(n int) {
	if m.cursor.Y-n >= 0 {
		m.cursor.Y -= n
		m.PositionCursor()
		m.redraw(false)
	} else {
		m.terminal.Bell()
	}
}
func (m *Memory) Down(n int) {
	if m.cursor.Y+n <= 15 {
		m.cursor.Y += n
		m.PositionCursor()
		m.redraw(false)
	} else {
		m.terminal.Bell()
	}
}
func (m *Memory) Left(n int) {
	if m.cursor.X-n >= 0 {
		m.cursor.X -= n
		m.PositionCursor()
		m.redraw(false)
	} else {
		m.terminal.Bell()
	}
}
func (m *Memory) Right(n int) {
	if m.cursor.X+n <= 15 {
		m.cursor.X += n
		m.PositionCursor()
		m.redraw(false)
	} else {
		m.terminal.Bell()
	}
}
func (m *Memory) PositionCursor() {
	m.terminal.At(m.cursor.X*3+m.xOffset[(m.cursor.X)/8]+len(m.input), m.cursor.Y+m.yOffset[(m.cursor.Y)/8])
}
func (m *Memory) CursorAddress() uint16 {
	return m.displayAddress + uint16(m.cursor.X) + uint16(m.cursor.Y*16)
}
func (m *Memory) CursorPosition() string {
	address := m.CursorAddress()
	return display.HexAddress(address) + "->" + display.HexData(m.getEntry(address).data)
}

func (m *Memory) KeyIntercept(input common.Input) bool {
	if input.KeyCode != 0 && !m.inputMode {
		switch input.KeyCode {
		case display.CursorUp:
			m.Up(1)
		case display.CursorDown:
			m.Down(1)
		case display.CursorLeft:
			m.Left(1)
		case display.CursorRight:
			m.Right(1)
		default:
			// keycode not processed
			return false
		}
		return true
	} else {
		switch input.Ascii {
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f', 'A', 'B', 'C', 'D', 'E', 'F':
			if m.inputMode {
				m.input += strings.ToUpper(string(rune(input.Ascii)))
				if len(m.input) == 2 {
					bs, _ := hex.DecodeString(m.input)
					m.undoAddress = m.CursorAddress()
					me := m.getEntry(m.undoAddress)
					m.lastInput = me.data
					me.data = bs[0]
					m.inputMode = false
					m.hasLastInput = true
				}
				m.redraw(true)
			} else if input.Ascii == 'b' {
				m.ToggleBreakPoint(m.CursorAddress())
			} else {
				return false
			}

		case 13, 127:
			if !m.inputMode {
				m.input = ""
				m.inputMode = true
				m.redraw(false)
			}
		case 26:
			if m.hasLastInput {
				m.getEntry(m.undoAddress).data = m.lastInput
				m.hasLastInput = false
				m.redraw(false)
			}
		case 27:
			m.inputMode = false
			m.input = ""
			m.redraw(false)
		default:
			// key not processed
			return false
		}
	}
	// Key processed
	return true
}
