package main

import (
	"github.com/LoesterFranco/A-Z80/internal/cmd"
	"github.com/LoesterFranco/A-Z80/internal/log"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
