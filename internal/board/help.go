package board

import (
	"github.com/LoesterFranco/A-Z80/internal/services/common"
	"github.com/LoesterFranco/A-Z80/internal/services/display"
)

type HelpPage struct {
}

func NewHelpPage() *HelpPage {
	return &HelpPage{}
}
func (h *HelpPage) Help() common.UI {
	return h
}
func (h *HelpPage) Draw(t *display.Terminal, initialize bool) {
	if initialize {
		t.Cls()
	}

	t.PrintAtf(1, 1, "%sClocking%s", common.Yellow, common.Reset)
	t.PrintAtf(1, 2, "%sc%s Single clock period%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(1, 3, "%ss%s Step one instruction%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(1, 4, "%sg%s Run to breakpoint or HALT%s", common.Yellow, common.White, common.Reset)

	t.PrintAtf(31, 1, "%sInput lines%s", common.Yellow, common.Reset)
	t.PrintAtf(31, 2, "%si%s Toggle INT%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(31, 3, "%sn%s Pulse NMI%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(31, 4, "%sr%s Pulse RESET%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(31, 5, "%sw%s Toggle WAIT%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(31, 6, "%su%s Toggle BUSRQ%s", common.Yellow, common.White, common.Reset)

	t.PrintAtf(61, 1, "%sMemory editor%s", common.Yellow, common.Reset)
	t.PrintAtf(61, 2, "%sarrows%s Move cursor%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(61, 3, "%senter%s Edit byte under cursor%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(61, 4, "%sb%s Toggle breakpoint%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(61, 5, "%sctrl-z%s Undo last edit%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(61, 6, "%sesc%s Cancel edit%s", common.Yellow, common.White, common.Reset)

	t.PrintAtf(1, 8, "%sOther%s", common.Yellow, common.Reset)
	t.PrintAtf(1, 9, "%sl%s Show log history%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(1, 10, "%sd/D%s Debug output on/off%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(1, 11, "%sh%s Show this page%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(1, 12, "%sq%s Quit%s", common.Yellow, common.White, common.Reset)

	t.PrintAtf(1, t.Rows(), "%sPress any key to exit%s", common.Yellow, common.Reset)
}
func (h *HelpPage) Process(input common.Input) bool {
	return true
}
