// Package e2etests is the scenario suite that exercises a live playground
// service end to end: control API behavior, port conflict bookkeeping, the
// interactive terminal stream, and race-freedom under concurrent requests.
package e2etests

import (
	"github.com/kwdb/playground-e2e-tests/config"
	"github.com/kwdb/playground-e2e-tests/framework"
)

// RunTestSuite runs every scenario against the service described by cfg and
// returns the accumulated results.
func RunTestSuite(cfg config.SuiteConfig, filter framework.Filter, testLogger framework.TestLogger) framework.Results {
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newTestScope(c, cfg)
		t.Run("control API", DoAPITests)
		t.Run("port conflict handling", DoPortConflictTests)
		t.Run("terminal", DoTerminalTests)
		t.Run("concurrency", DoConcurrencyTests)
	})
}
