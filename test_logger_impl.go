package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/restlog/request-log-recorder/framework"

	"github.com/fatih/color"
)

var (
	failedLabel     = color.New(color.FgRed, color.Bold).SprintFunc()
	skippedLabel    = color.New(color.FgYellow).SprintFunc()
	incompleteLabel = color.New(color.FgCyan).SprintFunc()
)

// ConsoleTestLogger prints test progress. Debug output captured during a test is
// dumped after it, depending on the outcome.
type ConsoleTestLogger struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	fmt.Fprintf(c.Out, "[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.Out, "  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, status framework.Status, debugOutput framework.CapturedOutput) {
	failed := status == framework.StatusFailed || status == framework.StatusError
	if failed {
		fmt.Fprintf(c.Out, "  %s: %s\n", failedLabel(strings.ToUpper(status.String())), id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Out, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	c.printWithReason(skippedLabel("SKIPPED"), id, reason)
}

func (c *ConsoleTestLogger) TestIncomplete(id framework.TestID, reason string) {
	c.printWithReason(incompleteLabel("INCOMPLETE"), id, reason)
}

func (c *ConsoleTestLogger) printWithReason(label string, id framework.TestID, reason string) {
	if reason == "" {
		fmt.Fprintf(c.Out, "  %s: %s\n", label, id)
	} else {
		fmt.Fprintf(c.Out, "  %s: %s (%s)\n", label, id, reason)
	}
}
