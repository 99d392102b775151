package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/saraf/clean-whiteboard-images/cmd/wbclean/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		if !errors.Is(err, commands.ErrRunFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
