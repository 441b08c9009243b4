package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kwdb/playground-e2e-tests/config"
	"github.com/kwdb/playground-e2e-tests/control"
	"github.com/kwdb/playground-e2e-tests/e2etests"
	"github.com/kwdb/playground-e2e-tests/framework"
)

const startupAttempts = 10

var errServiceNotReady = errors.New("service health check did not succeed")

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	cfg := config.Default()
	if params.configPath != "" {
		loaded, err := config.Load(params.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %s\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if params.serviceURL != "" {
		cfg.ServiceURL = params.serviceURL
	}
	if cfg.ServiceURL == "" {
		fmt.Fprintln(os.Stderr, "no service URL: pass -url or set serviceUrl in the config file")
		os.Exit(1)
	}

	mainDebugLogger := framework.Logger(framework.NullLogger())
	if params.debugAll {
		mainDebugLogger = logrus.New()
	}

	fmt.Printf("Connecting to playground service at %s\n", cfg.ServiceURL)
	preflight := control.NewClient(cfg.ServiceURL, mainDebugLogger)
	err := framework.Retry(func() error {
		if !preflight.HealthCheck() {
			return errServiceNotReady
		}
		return nil
	}, startupAttempts, framework.ConstantBackoff(time.Second))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service at %s is not responding: %s\n", cfg.ServiceURL, err)
		os.Exit(1)
	}

	fmt.Println()
	framework.PrintFilterDescription(params.filters)
	fmt.Println("Running test suite")

	testLogger := framework.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := e2etests.RunTestSuite(cfg, params.filters.AsFilter, testLogger)

	fmt.Println()
	framework.PrintResults(results)
	if !results.OK() {
		fmt.Println()
		fmt.Printf("To rerun only the failed tests:\n  %s\n", params.rerunFailedCommand(results))
		os.Exit(1)
	}
}
