package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/restlog/request-log-recorder/framework"
)

const (
	configEnvVar    = "RESTLOG_CONFIG"
	outputDirEnvVar = "RESTLOG_OUTPUT_DIR"
)

type commandParams struct {
	configPath    string
	env           string
	outputDir     string
	allureResults string
	filters       framework.RegexFilters
	debug         bool
	debugAll      bool
	jsonLog       bool

	suitePath  string
	targetTest string
}

// Read parses the command line. Defaults for -config and -output come from the
// environment, which may have been populated from a .env file.
func (c *commandParams) Read(args []string, errOut io.Writer) bool {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(errOut, "Usage: %s [flags] <suite.yaml>[:<test name>]\n", fs.Name())
		fs.PrintDefaults()
	}
	fs.StringVar(&c.configPath, "config", os.Getenv(configEnvVar), "recorder configuration file (YAML)")
	fs.StringVar(&c.env, "env", "", "name of the environment the tests run against")
	fs.StringVar(&c.outputDir, "output", os.Getenv(outputDirEnvVar), "directory for request logs (overrides the configuration)")
	fs.StringVar(&c.allureResults, "allure-results", "", "directory for Allure results; empty disables them")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debug, "d", false, "shorthand for -debug")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.BoolVar(&c.jsonLog, "json-log", false, "write log messages as JSON")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "exactly one suite file is required")
		fs.Usage()
		return false
	}
	c.suitePath, c.targetTest = splitTarget(fs.Arg(0))
	return true
}

// splitTarget separates "<file>:<test name>" at the first colon, which may not be
// part of a Windows drive letter.
func splitTarget(arg string) (path, test string) {
	start := 0
	if len(arg) > 1 && arg[1] == ':' {
		start = 2
	}
	i := strings.Index(arg[start:], ":")
	if i < 0 {
		return arg, ""
	}
	i += start
	return arg[:i], arg[i+1:]
}
