package status

import (
	"fmt"
	"github.com/LoesterFranco/A-Z80/internal/services/common"
	"github.com/LoesterFranco/A-Z80/internal/services/logging"
	"github.com/LoesterFranco/A-Z80/internal/z80"
)

var strobeLabels = [...]string{"M1", "MREQ", "IORQ", "RD", "WR", "RFSH", "HALT", "BUSAK"}

// Strobes renders the control outputs of the core after the last clock
// period, in the order they appear on the package pinout.
type Strobes struct {
	current uint8
	last    uint8
	log     *logging.Log
}

func NewStrobes(log *logging.Log) *Strobes {
	return &Strobes{
		log: log,
	}
}

func (s *Strobes) SetPins(p *z80.Pins) {
	s.current = pack(p)
}

func pack(p *z80.Pins) uint8 {
	v := uint8(0)
	for n, set := range [...]bool{p.M1, p.MREQ, p.IORQ, p.RD, p.WR, p.RFSH, p.HALT, p.BUSAK} {
		if set {
			v |= 1 << uint(n)
		}
	}
	return v
}

func (s *Strobes) StrobesBlock() string {
	str := ""
	lastColour := ""
	for n, label := range strobeLabels {
		isSet := s.current&(1<<uint(n)) > 0
		wasSet := s.last&(1<<uint(n)) > 0
		colour := off
		if isSet && !wasSet {
			colour = turnedOn
		} else if isSet && wasSet {
			colour = on
		} else if !isSet && wasSet {
			colour = turnedOff
		}
		if colour == lastColour {
			colour = ""
		} else {
			lastColour = colour
		}
		str = fmt.Sprintf("%s%s%s ", str, colour, label)
	}
	s.last = s.current
	return fmt.Sprintf("%s%s", str, common.Reset)
}
