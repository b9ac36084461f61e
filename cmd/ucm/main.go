// Package main provides the ucm CLI: it reads diagram text on stdin,
// parses it, runs the structural validator, and prints the findings.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ucmflow/ucmflow/pkg/ucm"
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("ucm %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
		return
	}

	// Optional .env for UCM_* settings; absence is fine.
	_ = godotenv.Load()

	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalf("failed to read stdin: %v", err)
	}

	rt := ucm.NewRuntime()
	res := rt.ParseText(string(text))
	for _, issue := range res.Errors {
		fmt.Fprintf(os.Stderr, "parse error: %s\n", issue)
	}
	for _, issue := range res.Warnings {
		fmt.Fprintf(os.Stderr, "parse warning: %s\n", issue)
	}
	if !res.Success {
		os.Exit(1)
	}

	report := rt.Validate()
	for _, issue := range report.Errors {
		fmt.Fprintf(os.Stderr, "%s\n", issue)
	}
	if verbose() {
		for _, issue := range report.Warnings {
			fmt.Fprintf(os.Stderr, "%s\n", issue)
		}
		for _, issue := range report.Info {
			fmt.Fprintf(os.Stderr, "%s\n", issue)
		}
	}
	if !report.Valid {
		os.Exit(1)
	}

	fmt.Printf("ok: %d nodes, %d edges, %d components\n",
		len(rt.Store().Nodes()), len(rt.Store().Edges()), len(rt.Store().Components()))
}

func verbose() bool {
	return os.Getenv("UCM_VERBOSE") != ""
}
