package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/restlog/request-log-recorder/allure"
	"github.com/restlog/request-log-recorder/framework"
	"github.com/restlog/request-log-recorder/logging"
	"github.com/restlog/request-log-recorder/restclient"
	"github.com/restlog/request-log-recorder/restlog"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Could not read .env file: %s\n", err)
		os.Exit(1)
	}
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	var params commandParams
	if !params.Read(args, errOut) {
		return 1
	}

	config, err := restlog.LoadConfig(params.configPath)
	if err != nil {
		fmt.Fprintf(errOut, "Invalid configuration: %s\n", err)
		return 1
	}
	if params.outputDir != "" {
		config.OutputDir = params.outputDir
	}

	var mainLogger framework.Logger = log.New(out, "", log.LstdFlags)
	if params.jsonLog {
		zl, err := logging.NewZapLogger(zap.String("suite", params.suitePath))
		if err != nil {
			fmt.Fprintf(errOut, "Could not create logger: %s\n", err)
			return 1
		}
		defer zl.Sync()
		mainLogger = zl
	}

	suite, err := LoadSuite(params.suitePath)
	if err != nil {
		fmt.Fprintf(errOut, "Invalid suite: %s\n", err)
		return 1
	}
	client := restclient.New(suite.BaseURL, nil)
	for name, value := range suite.Headers {
		client.SetHeader(name, value)
	}

	events := framework.NewEventBus()
	var attacher restlog.Attacher
	if params.allureResults != "" {
		writer, err := allure.NewWriter(params.allureResults,
			allure.WithLogger(framework.PrefixedLogger(mainLogger, "[allure] ")))
		if err != nil {
			fmt.Fprintf(errOut, "%s\n", err)
			return 1
		}
		writer.Register(events)
		attacher = writer
	}
	recorder, err := restlog.NewRecorder(config, client, nil, attacher,
		restlog.WithLogger(framework.PrefixedLogger(mainLogger, "[request-log] ")))
	if err != nil {
		fmt.Fprintf(errOut, "Invalid configuration: %s\n", err)
		return 1
	}
	recorder.Register(events)

	framework.PrintFilterDescription(params.filters)
	fmt.Fprintf(out, "Running suite %s\n", suite.Name)

	var env ldvalue.OptionalString
	if params.env != "" {
		env = ldvalue.NewOptionalString(params.env)
	}
	results := framework.Run(framework.RunOptions{
		Filter: framework.AllFilters(params.filters.AsFilter(suiteTestDepth), targetFilter(params.targetTest)),
		TestLogger: &ConsoleTestLogger{
			Out:                  out,
			DebugOutputOnFailure: params.debug || params.debugAll,
			DebugOutputOnSuccess: params.debugAll,
		},
		Events: events,
		Env:    env,
	}, func(c *framework.Context) {
		RunSuite(c, suite, client)
	})

	fmt.Fprintln(out)
	framework.PrintResults(results)
	if !results.OK() {
		return 1
	}
	return 0
}
