package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/jesperkha/koi/internal/build"
)

var (
	red  = color.New(color.FgRed).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
)

// main is a thin smoke driver over internal/build.Orchestrator: it loads
// a project (and optional library set) descriptor and runs the pipeline
// end to end. It is NOT the CLI front end spec.md leaves out of scope
// (project-file format, directory conventions, flag surface are all
// driver concerns, not core ones) -- this exists only to exercise the
// core from the command line.
func main() {
	var (
		projectFlag = flag.String("project", "", "path to a project YAML file")
		libsFlag    = flag.String("libs", "", "path to a library set YAML file")
		verboseFlag = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verboseFlag {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *projectFlag == "" {
		fmt.Fprintf(os.Stderr, "%s: missing -project flag\n", red("error"))
		flag.Usage()
		os.Exit(1)
	}

	project, err := build.LoadProject(*projectFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", red("error"), err)
		os.Exit(1)
	}

	var libs *build.LibrarySet
	if *libsFlag != "" {
		libs, err = build.LoadLibrarySet(*libsFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", red("error"), err)
			os.Exit(1)
		}
	}

	orch := build.New(log)
	res, bag, err := orch.Build(project, libs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", red("error"), err)
		os.Exit(1)
	}
	if bag != nil && !bag.Empty() {
		fmt.Fprint(os.Stderr, bag.Render(res.SourceMap))
		os.Exit(1)
	}

	fmt.Printf("%s %s\n", bold("built"), project.Out)
}
