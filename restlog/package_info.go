// Package restlog records the REST requests made by a test and, when the test does not
// pass, publishes them as an HTML request log attached to the test report.
//
// A Recorder is driven by the lifecycle events of a framework test run: it clears its
// log when a test starts, captures the REST client's last transaction after every
// step, and on test.fail, test.error, test.incomplete or test.skipped renders the log
// with a Renderer, writes it to an OutputDir and hands it to an Attacher. Passing
// tests leave nothing behind.
package restlog
