package main

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"

	"github.com/restlog/request-log-recorder/restlog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSuite(t *testing.T, content string) *Suite {
	path := filepath.Join(t.TempDir(), "orders.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	s, err := LoadSuite(path)
	require.NoError(t, err)
	return s
}

func TestLoadSuiteDefaultsNameToFile(t *testing.T) {
	s := parseSuite(t, "base_url: http://localhost\ntests: []\n")
	assert.Equal(t, "orders", s.Name)
	assert.True(t, filepath.IsAbs(s.File))
}

func TestLoadSuiteRequiresTestNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tests:\n  - steps: []\n"), 0o644))
	_, err := LoadSuite(path)
	assert.Error(t, err)
}

func TestCasesWithoutData(t *testing.T) {
	s := parseSuite(t, `
tests:
  - name: list orders
    steps:
      - request: {path: /orders}
      - name: create
        request:
          method: post
          path: /orders
          params: '{"qty":1}'
`)
	cases, err := s.Tests[0].Cases()
	require.NoError(t, err)
	require.Len(t, cases, 1)
	c := cases[0]
	assert.Equal(t, "list orders", c.Name)
	require.Len(t, c.Steps, 2)
	assert.Equal(t, "GET /orders", c.Steps[0].Name)
	assert.Equal(t, "create", c.Steps[1].Name)
	assert.Equal(t, "POST", c.Steps[1].Request.Method)

	params, err := restlog.ParamsFromYAML(&c.Steps[1].Request.Params)
	require.NoError(t, err)
	assert.Equal(t, restlog.RawParams, params.Kind())
	assert.Equal(t, `{"qty":1}`, params.RawString())
}

func TestCasesSubstituteDataSets(t *testing.T) {
	s := parseSuite(t, `
tests:
  - name: get order
    data:
      - {id: "7", state: open}
      - {id: "8", state: closed}
    steps:
      - request:
          path: /orders/${id}
          params:
            filter:
              state: ${state}
            id: ${id}
            literal: "${id}"
            unknown: ${nope}
        expect:
          status: 200
          json:
            id: ${id}
`)
	cases, err := s.Tests[0].Cases()
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "get order with data set #0", cases[0].Name)
	assert.Equal(t, "get order with data set #1", cases[1].Name)

	step := cases[1].Steps[0]
	assert.Equal(t, "/orders/8", step.Request.Path)
	assert.Equal(t, 8, step.Expect.JSON["id"])

	params, err := restlog.ParamsFromYAML(&step.Request.Params)
	require.NoError(t, err)
	expected := restlog.Structured(
		restlog.Group("filter", restlog.Field("state", ldvalue.String("closed"))),
		restlog.Field("id", ldvalue.Int(8)),
		restlog.Field("literal", ldvalue.String("8")),
		restlog.Field("unknown", ldvalue.String("${nope}")),
	)
	assert.True(t, expected.Equal(params), "got %s", params.Text())

	first, err := restlog.ParamsFromYAML(&cases[0].Steps[0].Request.Params)
	require.NoError(t, err)
	assert.Contains(t, first.Text(), "state: open")
}

func TestSubstituteLeavesOriginalUntouched(t *testing.T) {
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("path: /a/${id}\n"), &node))
	out := substitute(&node, map[string]string{"id": "1"})

	var before, after map[string]string
	require.NoError(t, node.Decode(&before))
	require.NoError(t, out.Decode(&after))
	assert.Equal(t, "/a/${id}", before["path"])
	assert.Equal(t, "/a/1", after["path"])
}

func TestCasesReportInvalidSteps(t *testing.T) {
	s := parseSuite(t, `
tests:
  - name: broken
    steps:
      - request: [not, a, mapping]
`)
	_, err := s.Tests[0].Cases()
	assert.Error(t, err)
}
