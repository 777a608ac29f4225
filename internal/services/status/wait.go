package status

import (
	"fmt"
	"github.com/LoesterFranco/A-Z80/internal/services/common"
	"github.com/LoesterFranco/A-Z80/internal/services/logging"
)

// The wait line. While asserted the core freezes in T2 of the current
// machine cycle, which is visible on the step widget.
type Wait struct {
	asserted bool
	log      *logging.Log
	redraw   func(bool)
}

func NewWait(log *logging.Log, redraw func(bool)) *Wait {
	return &Wait{
		log:    log,
		redraw: redraw,
	}
}

func (w *Wait) Toggle() {
	w.asserted = !w.asserted
	w.redraw(false)
}
func (w *Wait) Asserted() bool {
	return w.asserted
}

func (w *Wait) Block() string {
	if w.asserted {
		return fmt.Sprintf("%s0%s", common.BrightRed, common.Reset)
	}
	return fmt.Sprintf("%s1%s", common.BrightGreen, common.Reset)
}
