package restlog

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/restlog/request-log-recorder/framework"
)

const AttachmentMIMEType = "text/html"

// Recorder collects the REST requests made during a test and, if the test does not
// pass, writes them to an HTML file that is attached to the test report.
//
// A Recorder holds the log of one test at a time; the log is cleared when a test
// starts. It is not safe for concurrent use.
type Recorder struct {
	config   Config
	renderer Renderer
	source   TransactionSource
	output   OutputDir
	attacher Attacher
	logger   framework.Logger
	now      func() time.Time
	log      TestLog
}

type RecorderOption func(*Recorder)

// WithLogger sets the logger for capture misses and publishing errors.
func WithLogger(logger framework.Logger) RecorderOption {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock replaces time.Now for log file names.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		r.now = now
	}
}

// NewRecorder creates a Recorder. The attacher may be nil, in which case logs are
// written but not attached anywhere.
func NewRecorder(
	config Config,
	source TransactionSource,
	output OutputDir,
	attacher Attacher,
	options ...RecorderOption,
) (*Recorder, error) {
	if output == nil {
		output = DirResolver{Dir: config.OutputDir}
	}
	renderer, err := config.Renderer()
	if err != nil {
		return nil, err
	}
	r := &Recorder{
		config:   config,
		renderer: renderer,
		source:   source,
		output:   output,
		attacher: attacher,
		logger:   framework.NullLogger(),
		now:      time.Now,
	}
	for _, o := range options {
		o(r)
	}
	return r, nil
}

// Register subscribes the recorder to the lifecycle events it handles.
func (r *Recorder) Register(events framework.Subscriber) {
	events.Subscribe(framework.EventTestStart, func(framework.Event) { r.TestStarted() })
	events.Subscribe(framework.EventStepAfter, func(framework.Event) { r.StepCompleted() })
	for _, name := range []string{
		framework.EventTestFail,
		framework.EventTestIncomplete,
		framework.EventTestSkipped,
		framework.EventTestError,
	} {
		events.Subscribe(name, r.publishEvent)
	}
}

func (r *Recorder) publishEvent(e framework.Event) {
	path, err := r.Publish(e.Test, e.Failure)
	if err != nil {
		r.logger.Printf("Could not publish request log for %s: %s", e.Test.ID, err)
		return
	}
	if path != "" {
		r.logger.Printf("Request log for %s (%s) written to %s", e.Test.ID, e.Name, path)
	}
}

// TestStarted clears the log.
func (r *Recorder) TestStarted() {
	r.log.Reset()
}

// StepCompleted captures the REST client's last transaction, unless it is the same as
// the previously captured one. A missing transaction or a failing source is ignored.
func (r *Recorder) StepCompleted() {
	if entry, ok := r.capture(); ok {
		r.log.Add(entry)
	}
}

func (r *Recorder) capture() (entry LogEntry, ok bool) {
	if r.source == nil {
		return LogEntry{}, false
	}
	defer func() {
		if p := recover(); p != nil {
			r.logger.Printf("Ignoring panic while reading last transaction: %v", p)
			entry, ok = LogEntry{}, false
		}
	}()
	tx, err := r.source.LastTransaction()
	if err != nil {
		r.logger.Printf("No transaction captured: %s", err)
		return LogEntry{}, false
	}
	if tx == nil {
		return LogEntry{}, false
	}
	date := tx.Header.Get("Date")
	if date == "" && !tx.Received.IsZero() {
		date = tx.Received.UTC().Format(http.TimeFormat)
	}
	return LogEntry{
		Date:         date,
		URL:          tx.URL,
		Params:       tx.Params,
		StatusCode:   tx.StatusCode,
		ResponseBody: tx.ResponseBody,
	}, true
}

// Entries returns a copy of the entries captured so far in the current test.
func (r *Recorder) Entries() []LogEntry {
	return append([]LogEntry(nil), r.log...)
}

func (r *Recorder) TestFailed(test framework.TestInfo, message string) (string, error) {
	return r.Publish(test, message)
}

func (r *Recorder) TestIncomplete(test framework.TestInfo, message string) (string, error) {
	return r.Publish(test, message)
}

func (r *Recorder) TestSkipped(test framework.TestInfo, message string) (string, error) {
	return r.Publish(test, message)
}

func (r *Recorder) TestError(test framework.TestInfo, message string) (string, error) {
	return r.Publish(test, message)
}

// Publish renders the log of the current test followed by the failure message, writes
// it to the output directory and attaches it. It returns the path of the written
// file, or "" if nothing was written because the log was empty and SkipEmpty is set.
// The log is cleared afterward.
func (r *Recorder) Publish(test framework.TestInfo, failure string) (string, error) {
	entries := r.log
	r.log.Reset()

	if len(entries) == 0 && r.config.SkipEmpty {
		return "", nil
	}

	doc := r.renderer.RenderDocument(r.config.runHeader(test), entries, failure)
	path, err := r.output.Path(logFileName(r.now(), test.Name))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("writing request log: %w", err)
	}
	if r.attacher != nil {
		if err := r.attacher.Attach(path, r.config.AttachmentLabel, AttachmentMIMEType); err != nil {
			return path, fmt.Errorf("attaching request log: %w", err)
		}
	}
	return path, nil
}
