package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Suite is a YAML file describing REST tests against one service.
type Suite struct {
	Name    string            `yaml:"name"`
	BaseURL string            `yaml:"base_url"`
	Headers map[string]string `yaml:"headers"`
	Tests   []SuiteTest       `yaml:"tests"`

	// File is the absolute path the suite was loaded from.
	File string `yaml:"-"`
}

type SuiteTest struct {
	Name string `yaml:"name"`
	// Data is a list of variable sets. If present, the test runs once per set.
	Data       []map[string]string `yaml:"data"`
	Skip       string              `yaml:"skip"`
	Incomplete string              `yaml:"incomplete"`
	// Steps is kept as a node so that variables can be substituted before decoding.
	Steps yaml.Node `yaml:"steps"`
}

type Step struct {
	Name    string      `yaml:"name"`
	Request StepRequest `yaml:"request"`
	Expect  StepExpect  `yaml:"expect"`
}

type StepRequest struct {
	Method string    `yaml:"method"`
	Path   string    `yaml:"path"`
	Params yaml.Node `yaml:"params"`
}

type StepExpect struct {
	Status       int                    `yaml:"status"`
	BodyContains string                 `yaml:"body_contains"`
	JSON         map[string]interface{} `yaml:"json"`
}

// TestCase is one runnable instance of a SuiteTest.
type TestCase struct {
	Name       string
	Skip       string
	Incomplete string
	Steps      []Step
}

var variablePattern = regexp.MustCompile(`\$\{(\w+)\}`)

func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite: %w", err)
	}
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing suite %s: %w", path, err)
	}
	if s.File, err = filepath.Abs(path); err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	for i, t := range s.Tests {
		if t.Name == "" {
			return nil, fmt.Errorf("suite %s: test #%d has no name", path, i)
		}
	}
	return &s, nil
}

// Cases expands the test into one case per data set. Without data sets there is a
// single case named after the test.
func (t SuiteTest) Cases() ([]TestCase, error) {
	if len(t.Data) == 0 {
		steps, err := t.decodeSteps(nil)
		if err != nil {
			return nil, err
		}
		return []TestCase{{Name: t.Name, Skip: t.Skip, Incomplete: t.Incomplete, Steps: steps}}, nil
	}
	ret := make([]TestCase, 0, len(t.Data))
	for i, vars := range t.Data {
		steps, err := t.decodeSteps(vars)
		if err != nil {
			return nil, fmt.Errorf("data set #%d: %w", i, err)
		}
		ret = append(ret, TestCase{
			Name:       fmt.Sprintf("%s with data set #%d", t.Name, i),
			Skip:       t.Skip,
			Incomplete: t.Incomplete,
			Steps:      steps,
		})
	}
	return ret, nil
}

func (t SuiteTest) decodeSteps(vars map[string]string) ([]Step, error) {
	if t.Steps.Kind == 0 {
		return nil, nil
	}
	node := substitute(&t.Steps, vars)
	var steps []Step
	if err := node.Decode(&steps); err != nil {
		return nil, fmt.Errorf("test %q: %w", t.Name, err)
	}
	for i := range steps {
		if steps[i].Request.Method == "" {
			steps[i].Request.Method = "GET"
		}
		steps[i].Request.Method = strings.ToUpper(steps[i].Request.Method)
		if steps[i].Name == "" {
			steps[i].Name = steps[i].Request.Method + " " + steps[i].Request.Path
		}
	}
	return steps, nil
}

// substitute returns a copy of node with ${name} replaced in every scalar. Unknown
// variables are left as they are. A plain scalar that changed is resolved again, so
// that "${id}" can become an integer.
func substitute(node *yaml.Node, vars map[string]string) *yaml.Node {
	out := *node
	if node.Alias != nil {
		out.Alias = substitute(node.Alias, vars)
	}
	if len(node.Content) > 0 {
		out.Content = make([]*yaml.Node, len(node.Content))
		for i, child := range node.Content {
			out.Content[i] = substitute(child, vars)
		}
	}
	if node.Kind == yaml.ScalarNode && len(vars) > 0 {
		value := variablePattern.ReplaceAllStringFunc(node.Value, func(m string) string {
			if v, ok := vars[variablePattern.FindStringSubmatch(m)[1]]; ok {
				return v
			}
			return m
		})
		if value != node.Value {
			out.Value = value
			if node.Style == 0 {
				out.Tag = ""
				out.Tag = out.ShortTag()
			}
		}
	}
	return &out
}
