package status

import (
	"fmt"
	"github.com/LoesterFranco/A-Z80/internal/services/common"
	"github.com/LoesterFranco/A-Z80/internal/services/logging"
)

// The maskable interrupt line. Asserted means pulled low, so the block
// renders a red 0 while a device is requesting service.
type Int struct {
	asserted bool
	log      *logging.Log
	redraw   func(bool)
}

func NewInt(log *logging.Log, redraw func(bool)) *Int {
	return &Int{
		log:    log,
		redraw: redraw,
	}
}

func (i *Int) Assert() {
	i.asserted = true
	i.redraw(false)
}
func (i *Int) Release() {
	i.asserted = false
	i.redraw(false)
}
func (i *Int) Toggle() {
	i.asserted = !i.asserted
	i.redraw(false)
}
func (i *Int) Asserted() bool {
	return i.asserted
}

func (i *Int) Block() string {
	if i.asserted {
		return fmt.Sprintf("%s0%s", common.BrightRed, common.Reset)
	}
	return fmt.Sprintf("%s1%s", common.BrightGreen, common.Reset)
}
