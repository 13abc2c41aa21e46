package framework

import (
	"fmt"
	"strings"
)

// Status is the outcome of a single test.
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusError
	StatusIncomplete
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusError:
		return "error"
	case StatusIncomplete:
		return "incomplete"
	case StatusSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID TestID
	Errors []error
	Status Status
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Name returns the last path element, or "" for the root.
func (t TestID) Name() string {
	if len(t.Path) == 0 {
		return ""
	}
	return t.Path[len(t.Path)-1]
}

func (t TestID) plus(name string) TestID {
	path := make([]string, 0, len(t.Path)+1)
	path = append(path, t.Path...)
	return TestID{Path: append(path, name)}
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

// PrintResults writes a summary of the failed tests to standard output.
func PrintResults(results Results) {
	if results.OK() {
		fmt.Printf("All tests passed (%d)\n", countTests(results))
		return
	}
	fmt.Printf("FAILED TESTS (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		fmt.Printf("  * %s (%s)\n", f.TestID, f.Status)
	}
}

func countTests(results Results) int {
	n := 0
	for _, t := range results.Tests {
		if len(t.TestID.Path) > 0 {
			n++
		}
	}
	return n
}
