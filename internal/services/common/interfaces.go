package common

import (
	"github.com/LoesterFranco/A-Z80/internal/services/display"
)

type UI interface {
	Draw(t *display.Terminal, initialize bool)
	Process(input Input) bool
}

type Intercept interface {
	KeyIntercept(input Input) bool
}
