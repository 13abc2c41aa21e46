// Package framework contains the test harness infrastructure that hosts request logging.
//
// The general model is:
//
// 1. There is a notion of a test context which is similar to Go's *testing.T, allowing
// pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results. A context can be used with the assert and require packages.
//
// 2. A test is made of steps. Every test start, step completion and test outcome is
// published as a named event on an EventBus, so that extensions can observe the run
// without the tests knowing about them.
//
// 3. A test ends in exactly one of the statuses passed, failed, error, incomplete or
// skipped. Every status other than passed has its own event, which fires after all of
// the test's steps and before the final test.end event.
package framework
