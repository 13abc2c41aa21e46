// Package allure writes test results in the Allure results format, so that a run can
// be viewed with the Allure report tools. It also acts as the attachment sink for
// request logs.
package allure

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/restlog/request-log-recorder/framework"

	"github.com/google/uuid"
)

var errNoActiveTest = errors.New("no test is running")

type Result struct {
	UUID          string        `json:"uuid"`
	HistoryID     string        `json:"historyId"`
	Name          string        `json:"name"`
	FullName      string        `json:"fullName"`
	Status        string        `json:"status"`
	StatusDetails StatusDetails `json:"statusDetails"`
	Stage         string        `json:"stage"`
	Start         int64         `json:"start"`
	Stop          int64         `json:"stop"`
	Labels        []Label       `json:"labels,omitempty"`
	Parameters    []Parameter   `json:"parameters,omitempty"`
	Attachments   []Attachment  `json:"attachments,omitempty"`
}

type StatusDetails struct {
	Message string `json:"message,omitempty"`
}

type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Attachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// Writer collects results for the tests of a run and writes one result file per
// test when it ends. Only tests that have no subtests are reported; groups such as a
// suite only contribute the suite label.
type Writer struct {
	dir    string
	logger framework.Logger
	now    func() time.Time
	active []*activeTest
	lock   sync.Mutex
}

type activeTest struct {
	result      Result
	hasSubtests bool
}

type Option func(*Writer)

func WithLogger(logger framework.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		w.now = now
	}
}

// NewWriter creates a Writer for the given results directory, creating it if needed.
func NewWriter(dir string, options ...Option) (*Writer, error) {
	if dir == "" {
		return nil, errors.New("allure results directory is not set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating allure results directory: %w", err)
	}
	w := &Writer{
		dir:    dir,
		logger: framework.NullLogger(),
		now:    time.Now,
	}
	for _, o := range options {
		o(w)
	}
	return w, nil
}

// Register subscribes the writer to test.start and test.end.
func (w *Writer) Register(events framework.Subscriber) {
	events.Subscribe(framework.EventTestStart, w.testStarted)
	events.Subscribe(framework.EventTestEnd, w.testEnded)
}

func (w *Writer) testStarted(e framework.Event) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if n := len(w.active); n > 0 {
		w.active[n-1].hasSubtests = true
	}
	fullName := e.Test.ID.String()
	r := Result{
		UUID:      uuid.NewString(),
		HistoryID: uuid.NewSHA1(uuid.NameSpaceURL, []byte(fullName)).String(),
		Name:      e.Test.Name,
		FullName:  fullName,
		Stage:     "running",
		Start:     w.now().UnixMilli(),
	}
	if path := e.Test.ID.Path; len(path) > 1 {
		r.Labels = append(r.Labels, Label{Name: "suite", Value: path[0]})
	}
	if env := e.Test.Env.StringValue(); e.Test.Env.IsDefined() && env != "" {
		r.Parameters = append(r.Parameters, Parameter{Name: "env", Value: env})
	}
	w.active = append(w.active, &activeTest{result: r})
}

func (w *Writer) testEnded(e framework.Event) {
	w.lock.Lock()
	n := len(w.active)
	if n == 0 {
		w.lock.Unlock()
		return
	}
	t := w.active[n-1]
	w.active = w.active[:n-1]
	w.lock.Unlock()

	if t.hasSubtests {
		return
	}
	t.result.Status = statusName(e.Status)
	t.result.StatusDetails.Message = e.Failure
	t.result.Stage = "finished"
	t.result.Stop = w.now().UnixMilli()
	if err := w.writeResult(t.result); err != nil {
		w.logger.Printf("Could not write allure result for %s: %s", e.Test.ID, err)
	}
}

// Attach copies the file at path into the results directory and lists it in the
// result of the test that is currently running.
func (w *Writer) Attach(path, label, mimeType string) error {
	w.lock.Lock()
	defer w.lock.Unlock()

	n := len(w.active)
	if n == 0 {
		return errNoActiveTest
	}
	source := uuid.NewString() + "-attachment" + filepath.Ext(path)
	if err := copyFile(path, filepath.Join(w.dir, source)); err != nil {
		return err
	}
	t := w.active[n-1]
	t.result.Attachments = append(t.result.Attachments, Attachment{Name: label, Source: source, Type: mimeType})
	return nil
}

func (w *Writer) writeResult(r Result) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(w.dir, r.UUID+"-result.json"), data, 0o644)
}

func statusName(s framework.Status) string {
	switch s {
	case framework.StatusPassed:
		return "passed"
	case framework.StatusFailed:
		return "failed"
	case framework.StatusError:
		return "broken"
	case framework.StatusSkipped, framework.StatusIncomplete:
		return "skipped"
	default:
		return s.String()
	}
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("opening attachment: %w", err)
	}
	defer in.Close()
	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("creating attachment: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying attachment: %w", err)
	}
	return out.Close()
}
