package main

import (
	"github.com/restlog/request-log-recorder/framework"
	"github.com/restlog/request-log-recorder/restlog"
)

// suiteTestDepth is the path length of a test inside a suite: the suite group, then
// the test.
const suiteTestDepth = 2

// targetFilter selects the tests named on the command line with <file>:<test name>.
// Every data set of a test matches its base name. An empty name selects everything.
func targetFilter(name string) framework.Filter {
	if name == "" {
		return nil
	}
	return func(id framework.TestID) bool {
		return len(id.Path) < suiteTestDepth || restlog.BaseTestName(id.Name()) == name
	}
}
