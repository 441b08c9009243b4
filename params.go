package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/kwdb/playground-e2e-tests/framework"
)

type commandParams struct {
	serviceURL string
	configPath string
	filters    framework.RegexFilters
	debug      bool
	debugAll   bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.serviceURL, "url", "", "playground service URL (overrides the config file)")
	fs.StringVar(&c.configPath, "config", "", "path to a YAML suite configuration file")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if c.serviceURL == "" && c.configPath == "" {
		fmt.Fprintln(os.Stderr, "either -url or -config is required")
		fs.Usage()
		return false
	}
	return true
}

// rerunFailedCommand builds a shell command line that reruns exactly the
// failed tests, for pasting after a partially red run.
func (c commandParams) rerunFailedCommand(results framework.Results) string {
	var b commandBuilder
	b.add(os.Args[0])
	if c.configPath != "" {
		b.add("-config", c.configPath)
	}
	if c.serviceURL != "" {
		b.add("-url", c.serviceURL)
	}
	b.add("-debug")
	for _, f := range results.Failures {
		b.add("-run", "^"+regexp.QuoteMeta(f.TestID.String())+"$")
	}
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
