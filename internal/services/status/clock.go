package status

import (
	"fmt"
	"github.com/LoesterFranco/A-Z80/internal/services/common"
	"github.com/LoesterFranco/A-Z80/internal/services/logging"
)

const (
	clockHigh = common.BrightGreen
	clockLow  = common.Red
)

// Clock shows the phase of the single phase system clock. The monitor
// advances the core one full period at a time, so the phase simply
// alternates with the T state counter.
type Clock struct {
	state  uint8
	cycles uint64
	log    *logging.Log
}

func NewClock(log *logging.Log) *Clock {
	return &Clock{
		log: log,
	}
}

func (c *Clock) SetCycles(cycles uint64) {
	c.cycles = cycles
	c.state = uint8(cycles & 1)
}
func (c *Clock) Cycles() uint64 {
	return c.cycles
}

func (c *Clock) Block() string {
	str := clockLow
	if c.state == 1 {
		str = clockHigh
	}
	return fmt.Sprintf("%sΦ%d%s %s%d%s", str, c.state, common.Reset, common.White, c.cycles, common.Reset)
}
