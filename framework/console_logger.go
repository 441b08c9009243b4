package framework

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const debugTimestampFormat = "2006-01-02 15:04:05.000"

var (
	passColor = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
	skipColor = color.New(color.FgYellow)
)

// ConsoleTestLogger prints per-test progress to stdout as the suite runs.
type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c ConsoleTestLogger) TestStarted(id TestID) {
	fmt.Printf("[%s]\n", id)
}

func (c ConsoleTestLogger) TestError(id TestID, err error) {
	for _, line := range errorLines(err) {
		failColor.Printf("  %s\n", line)
	}
}

func (c ConsoleTestLogger) TestFinished(id TestID, failed bool, debugOutput CapturedOutput) {
	if failed {
		failColor.Printf("  FAILED: %s\n", id)
	} else {
		passColor.Printf("  PASSED: %s\n", id)
	}
	if (failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess) {
		for _, m := range debugOutput {
			fmt.Printf("    DEBUG [%s] %s\n", m.Time.Format(debugTimestampFormat), m.Message)
		}
	}
}

func (c ConsoleTestLogger) TestSkipped(id TestID, reason string) {
	if reason == "" {
		skipColor.Printf("  SKIPPED: %s\n", id)
	} else {
		skipColor.Printf("  SKIPPED: %s (%s)\n", id, reason)
	}
}

// PrintResults prints the end-of-run summary that follows the per-test
// progress output.
func PrintResults(results Results) {
	if results.OK() {
		passColor.Printf("All tests passed (%d total)\n", len(results.Tests))
		return
	}
	failColor.Printf("FAILED TESTS (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		fmt.Printf("  * %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range errorLines(err) {
				failColor.Printf("    - %s\n", line)
			}
		}
	}
}

func errorLines(err error) []string {
	return strings.Split(err.Error(), "\n")
}
