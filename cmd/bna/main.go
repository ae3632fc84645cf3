package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/tebeka/atexit"
	"github.com/zurustar/bna/pkg/app"
)

//go:embed examples
var embeddedExamples embed.FS

func main() {
	application := app.New(embeddedExamples)
	// Files a script left open are flushed and closed on every exit path.
	atexit.Register(application.Close)

	err := application.Run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	atexit.Exit(app.ExitCode(err))
}
