package restlog

import (
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alessio/shellescape"

	"github.com/restlog/request-log-recorder/framework"
)

var dataSetSuffix = regexp.MustCompile(`\s+with data set .*$`)

// BaseTestName removes the " with data set ..." suffix that parameterized tests have.
func BaseTestName(name string) string {
	return dataSetSuffix.ReplaceAllString(name, "")
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// RunCommand returns the command line that runs the given test again.
func (c Config) RunCommand(test framework.TestInfo) string {
	var cmd commandBuilder
	cmd.add(strings.Fields(c.Command)...)
	if env := test.Env.StringValue(); test.Env.IsDefined() && env != "" {
		cmd.add("--env", env)
	}
	target := BaseTestName(test.Name)
	if test.File != "" {
		target = testPath(test.File, c.TestRoot) + ":" + target
	}
	cmd.add("-d", target)
	return cmd.String()
}

func (c Config) runHeader(test framework.TestInfo) string {
	return "<pre>" + html.EscapeString(c.RunCommand(test)) + "</pre>"
}

// testPath returns the part of file starting at the path segment named root, or file
// itself if there is no such segment.
func testPath(file, root string) string {
	file = filepath.ToSlash(file)
	if root == "" {
		return file
	}
	segments := strings.Split(file, "/")
	for i, s := range segments {
		if s == root {
			return strings.Join(segments[i:], "/")
		}
	}
	return file
}

func logFileName(t time.Time, testName string) string {
	return fmt.Sprintf("requestLog%d%s.html", t.Unix(), sanitizeFileName(BaseTestName(testName)))
}

func sanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}
