package status

import (
	"fmt"
	"github.com/LoesterFranco/A-Z80/internal/services/common"
	"github.com/LoesterFranco/A-Z80/internal/services/logging"
)

var (
	labels = [...]string{"S", "Z", "5", "H", "3", "P", "N", "C"}
	bit    = [...]uint8{128, 64, 32, 16, 8, 4, 2, 1}
)

// Flags renders the F register. Bits that changed since the previous draw
// are brightened so single stepping shows what an instruction touched.
type Flags struct {
	flags     uint8
	lastFlags uint8
	log       *logging.Log
}

func NewFlags(log *logging.Log) *Flags {
	return &Flags{
		log: log,
	}
}

func (f *Flags) SetFlags(flags uint8) {
	f.flags = flags
}
func (f *Flags) CurrentFlags() uint8 {
	return f.flags
}

func (f *Flags) FlagsBlock() string {
	str := ""
	lastColour := ""
	for n, label := range labels {
		isSet := f.flags&bit[n] > 0
		wasSet := f.lastFlags&bit[n] > 0
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
		str = fmt.Sprintf("%s%s %s ", str, colour, label)
	}
	f.lastFlags = f.flags
	return fmt.Sprintf("%s%s", str, common.Reset)
}
