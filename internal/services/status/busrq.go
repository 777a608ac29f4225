package status

import (
	"fmt"
	"github.com/LoesterFranco/A-Z80/internal/services/common"
	"github.com/LoesterFranco/A-Z80/internal/services/logging"
)

// The bus request line. The core grants at the next machine cycle
// boundary and floats its buses until the line is released.
type Busrq struct {
	asserted bool
	log      *logging.Log
	redraw   func(bool)
}

func NewBusrq(log *logging.Log, redraw func(bool)) *Busrq {
	return &Busrq{
		log:    log,
		redraw: redraw,
	}
}

func (b *Busrq) Toggle() {
	b.asserted = !b.asserted
	b.redraw(false)
}
func (b *Busrq) Asserted() bool {
	return b.asserted
}

func (b *Busrq) Block() string {
	if b.asserted {
		return fmt.Sprintf("%s0%s", common.BrightRed, common.Reset)
	}
	return fmt.Sprintf("%s1%s", common.BrightGreen, common.Reset)
}
