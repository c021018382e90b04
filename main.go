package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/agentwire/agentwire/cmd"
)

var (
	version   string
	commit    string
	date      string
	buildType string = "unclassified"
)

func main() {
	err := cmd.Execute(os.Args, cmd.BuildArgs{
		Version:   version,
		Commit:    commit,
		Date:      date,
		BuildType: buildType,
	})
	if err != nil {
		var reported *cmd.ExitError
		if !errors.As(err, &reported) {
			fmt.Printf("agentwire: %s\n", err.Error())
		}
		os.Exit(1)
	}
}
