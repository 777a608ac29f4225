package status

import (
	"fmt"
	"github.com/LoesterFranco/A-Z80/internal/services/common"
	"github.com/LoesterFranco/A-Z80/internal/services/logging"
)

// Steps tracks the machine cycle and T state the core is sitting in.
type Steps struct {
	m   uint8
	t   uint8
	log *logging.Log
}

func NewSteps(log *logging.Log) *Steps {
	return &Steps{
		m:   1,
		t:   1,
		log: log,
	}
}

func (s *Steps) SetStep(m, t uint8) bool {
	changed := m != s.m || t != s.t
	s.m = m
	s.t = t
	return changed
}
func (s *Steps) CurrentStep() (uint8, uint8) {
	return s.m, s.t
}

func (s *Steps) MBlock() string {
	return s.block("M", s.m)
}
func (s *Steps) TBlock() string {
	return s.block("T", s.t)
}
func (s *Steps) block(prefix string, active uint8) string {
	colour, lastColour := "", ""
	str := ""
	for i := uint8(1); i <= 6; i++ {
		colour = step
		if i == active {
			colour = currentStep
		}
		if colour == lastColour {
			colour = ""
		} else {
			lastColour = colour
		}
		str = fmt.Sprintf("%s%s%s%d ", str, colour, prefix, i)
	}
	return str + common.Reset
}
