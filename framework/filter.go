package framework

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// AllFilters returns a Filter that accepts a test only if every non-nil filter does.
func AllFilters(filters ...Filter) Filter {
	return func(id TestID) bool {
		for _, f := range filters {
			if f != nil && !f(id) {
				return false
			}
		}
		return true
	}
}

type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

// AsFilter applies the patterns to the full ID of a test. Tests that are only groups
// of other tests, which have fewer path elements than minDepth, are never excluded by
// MustMatch, so that a pattern naming a nested test does not skip its parent.
func (r RegexFilters) AsFilter(minDepth int) Filter {
	return func(id TestID) bool {
		name := id.String()
		if r.MustNotMatch.AnyMatch(name) {
			return false
		}
		return len(id.Path) < minDepth || !r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(name)
	}
}

type RegexList struct {
	patterns []*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	r.patterns = append(r.patterns, rx)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func PrintFilterDescription(filters RegexFilters) {
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() {
		fmt.Println("Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Printf("  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Printf("  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Println()
	}
}
