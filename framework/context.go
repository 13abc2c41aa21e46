package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// RunOptions controls a test run started with Run. All fields are optional.
type RunOptions struct {
	Filter     Filter
	TestLogger TestLogger
	// Events receives the lifecycle events of every test in the run.
	Events *EventBus
	// Env is the execution environment name reported in TestInfo.
	Env ldvalue.OptionalString
}

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
	events     *EventBus
	env        ldvalue.OptionalString
}

type Context struct {
	env         *environment
	id          TestID
	file        string
	debugLogger CapturingLogger
	failed      bool
	errored     bool
	skipped     bool
	incomplete  bool
	reason      string
	errors      []error
}

func Run(opts RunOptions, action func(*Context)) Results {
	testLogger := opts.TestLogger
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     opts.Filter,
		testLogger: testLogger,
		events:     opts.Events,
		env:        opts.Env,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			if !c.skipped && !c.incomplete {
				c.failed = true
				var addError error
				if _, ok := r.(*Context); ok {
					if len(c.errors) == 0 {
						addError = errors.New("test failed with no failure message")
					}
				} else {
					c.errored = true
					addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
				}
				if addError != nil {
					c.errors = append(c.errors, addError)
					c.env.testLogger.TestError(c.id, addError)
				}
			}
		}
		result := TestResult{TestID: c.id, Errors: c.errors, Status: c.status()}
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
	}()

	action(c)
}

func (c *Context) status() Status {
	switch {
	case c.skipped:
		return StatusSkipped
	case c.incomplete:
		return StatusIncomplete
	case c.errored:
		return StatusError
	case c.failed:
		return StatusFailed
	default:
		return StatusPassed
	}
}

// failureMessage is the text passed with outcome events: the accumulated errors for a
// failed test, or the reason for a skipped or incomplete one.
func (c *Context) failureMessage() string {
	if c.skipped || c.incomplete {
		return c.reason
	}
	msgs := make([]string, 0, len(c.errors))
	for _, err := range c.errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

func (c *Context) ID() TestID {
	return c.id
}

// Info returns the description of this test that is passed to event handlers.
func (c *Context) Info() TestInfo {
	return TestInfo{
		ID:   c.id,
		Name: c.id.Name(),
		File: c.file,
		Env:  c.env.env,
	}
}

// SetFile records the source file of this test. Subtests started afterward inherit it.
func (c *Context) SetFile(path string) {
	c.file = path
}

func (c *Context) Run(name string, action func(*Context)) {
	id := c.id.plus(name)

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	c1 := &Context{
		id:   id,
		env:  c.env,
		file: c.file,
	}
	c.env.events.Dispatch(Event{Name: EventTestStart, Test: c1.Info()})
	c1.run(action)
	c1.finish()
}

func (c *Context) finish() {
	status := c.status()
	info := c.Info()
	message := c.failureMessage()
	if name, ok := outcomeEvents[status]; ok {
		c.env.events.Dispatch(Event{Name: name, Test: info, Failure: message})
	}
	c.env.events.Dispatch(Event{Name: EventTestEnd, Test: info, Failure: message, Status: status})

	switch status {
	case StatusSkipped:
		c.env.testLogger.TestSkipped(c.id, c.reason)
	case StatusIncomplete:
		c.env.testLogger.TestIncomplete(c.id, c.reason)
	default:
		c.env.testLogger.TestFinished(c.id, status, c.debugLogger.Output())
	}
}

// Step runs one step of the test. The step.after event is dispatched when the step
// returns, including when it fails and exits the test.
func (c *Context) Step(name string, action func()) {
	defer c.env.events.Dispatch(Event{Name: EventStepAfter, Test: c.Info(), Step: name})
	c.Debug("step: %s", name)
	action()
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, reformatError(err))
}

// Failed reports whether the test has recorded a failure so far.
func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.reason = reason
	c.Skip()
}

// Incomplete stops the test and marks it as not finished, for tests that cannot run to
// completion yet.
func (c *Context) Incomplete(reason string) {
	c.incomplete = true
	c.reason = reason
	panic(c)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}

// reformatError strips the leading blank line and indentation that testify puts in
// front of its multi-line failure messages.
func reformatError(err error) error {
	s := err.Error()
	trimmed := strings.TrimLeft(s, "\n")
	lines := strings.Split(trimmed, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, "\t")
	}
	out := strings.Join(lines, "\n")
	if out == s {
		return err
	}
	return errors.New(out)
}
