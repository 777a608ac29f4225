package status

import (
	"fmt"
	"github.com/LoesterFranco/A-Z80/internal/services/common"
	"github.com/LoesterFranco/A-Z80/internal/services/logging"
)

// The non maskable interrupt line. The core latches the falling edge, so
// the monitor pulses it rather than holding it.
type Nmi struct {
	asserted bool
	log      *logging.Log
	redraw   func(bool)
}

func NewNmi(log *logging.Log, redraw func(bool)) *Nmi {
	return &Nmi{
		log:    log,
		redraw: redraw,
	}
}

func (n *Nmi) Assert() {
	n.asserted = true
	n.redraw(false)
}
func (n *Nmi) Release() {
	n.asserted = false
	n.redraw(false)
}
func (n *Nmi) Asserted() bool {
	return n.asserted
}

func (n *Nmi) Block() string {
	if n.asserted {
		return fmt.Sprintf("%s0%s", common.BrightRed, common.Reset)
	}
	return fmt.Sprintf("%s1%s", common.BrightGreen, common.Reset)
}
