package board

import (
	"fmt"
	"github.com/LoesterFranco/A-Z80/internal/services/common"
	"github.com/LoesterFranco/A-Z80/internal/services/display"
)

const traceLines = 11

// draw paints the main board screen: the memory page on the left, the
// machine state in the right hand column, notifications at the bottom.
func (b *Board) draw(initialize bool) {
	t := b.terminal
	if initialize {
		t.Cls()
	}

	s := b.cpu.Snapshot()

	lines := b.memory.MemoryBlock(s.PC)
	for row, line := range lines {
		if ok := t.PrintAt(1, row+1, line); !ok {
			break
		}
	}
	x := len(display.StripFormatting(lines[0])) + 3

	t.PrintAtf(x+8, 1, "%sRegisters%s", common.Yellow, common.Reset)
	for n, line := range b.registersBlock() {
		t.PrintAt(x, 2+n, line)
	}

	t.PrintAtf(x+9, 9, "%sFlags%s", common.Yellow, common.Reset)
	t.PrintAt(x+3, 10, b.flags.FlagsBlock())

	t.PrintAtf(x+9, 12, "%sCycle%s", common.Yellow, common.Reset)
	t.PrintAt(x, 13, b.steps.MBlock())
	t.PrintAt(x, 14, b.steps.TBlock())
	t.PrintAt(x, 15, b.clock.Block())

	t.PrintAtf(x+5, 17, "%sControl lines%s", common.Yellow, common.Reset)
	t.PrintAt(x, 18, b.strobes.StrobesBlock())
	t.PrintAtf(x, 19,
		"%sINT %s %sNMI %s %sRES %s %sWAIT %s %sBUSRQ %s%s",
		common.Yellow, b.intLine.Block(),
		common.Yellow, b.nmiLine.Block(),
		common.Yellow, b.resetLn.Block(),
		common.Yellow, b.waitLine.Block(),
		common.Yellow, b.busrq.Block(), common.Reset)

	x2 := x + 30
	t.PrintAtf(x2+4, 1, "%sInstructions%s", common.Yellow, common.Reset)
	for i := 0; i < traceLines; i++ {
		line := "                    "
		colour := common.Magenta
		if i < len(b.opTrace) {
			line = b.opTrace[i]
			if i == len(b.opTrace)-1 {
				colour = common.BrightMagenta
			}
		}
		t.PrintAtf(x2, 2+i, "%s%-20s%s", colour, line, common.Reset)
	}
	inFlight := b.curName
	if inFlight == "" {
		inFlight = "-"
	}
	t.PrintAtf(x2, 14, "%sNext %s%-20s%s", common.Yellow, common.BrightWhite, inFlight, common.Reset)

	t.PrintAtf(1, 20, "%s%s%s", common.Grey, b.memory.CursorPosition(), common.Reset)

	for n, line := range b.log.LogBlock() {
		row := t.Rows() - n
		if row <= 21 {
			break
		}
		t.PrintAt(1, row, line)
	}

	b.memory.PositionCursor()
}

func (b *Board) registersBlock() []string {
	s := b.cpu.Snapshot()
	pair := func(label string, v uint16, label2 string, v2 uint16) string {
		return fmt.Sprintf("%s%s %s%s  %s%s %s%s",
			common.Yellow, label, common.BrightWhite, display.HexAddress(v),
			common.Yellow, label2, common.BrightWhite, display.HexAddress(v2)) + common.Reset
	}
	iff := func(v bool) string {
		if v {
			return common.BrightGreen + "1"
		}
		return common.Grey + "0"
	}
	return []string{
		pair("AF ", s.AF, "AF'", s.AF2),
		pair("BC ", s.BC, "BC'", s.BC2),
		pair("DE ", s.DE, "DE'", s.DE2),
		pair("HL ", s.HL, "HL'", s.HL2),
		pair("IX ", s.IX, "IY ", s.IY),
		pair("SP ", s.SP, "PC ", s.PC),
		fmt.Sprintf("%sWZ %s%s  %sI %s%s %sR %s%s",
			common.Yellow, common.BrightWhite, display.HexAddress(s.WZ),
			common.Yellow, common.BrightWhite, display.HexData(s.I),
			common.Yellow, common.BrightWhite, display.HexData(s.R)) + common.Reset,
		fmt.Sprintf("%sIM %s%d  %sIFF1 %s %sIFF2 %s%s",
			common.Yellow, common.BrightWhite, s.IM,
			common.Yellow, iff(s.IFF1),
			common.Yellow, iff(s.IFF2), common.Reset),
	}
}
