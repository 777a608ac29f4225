package status

import (
	"fmt"
	"github.com/LoesterFranco/A-Z80/internal/services/common"
	"github.com/LoesterFranco/A-Z80/internal/services/logging"
)

type Reset struct {
	asserted bool
	log      *logging.Log
	reload   func()
	redraw   func(bool)
}

func NewReset(log *logging.Log, redraw func(bool), reload func()) *Reset {
	return &Reset{
		log:    log,
		reload: reload,
		redraw: redraw,
	}
}

func (r *Reset) Assert() {
	r.asserted = true
	r.reload()
	r.redraw(false)
}
func (r *Reset) Release() {
	r.asserted = false
	r.redraw(false)
}
func (r *Reset) Asserted() bool {
	return r.asserted
}

func (r *Reset) Block() string {
	if r.asserted {
		return fmt.Sprintf("%s0%s", common.BrightRed, common.Reset)
	}
	return fmt.Sprintf("%s1%s", common.BrightGreen, common.Reset)
}
