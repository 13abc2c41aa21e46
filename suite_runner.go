package main

import (
	"context"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/restlog/request-log-recorder/framework"
	"github.com/restlog/request-log-recorder/restclient"
	"github.com/restlog/request-log-recorder/restlog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSuite runs every test of the suite as a subtest of a group named after the suite.
func RunSuite(c *framework.Context, suite *Suite, client *restclient.Client) {
	c.SetFile(suite.File)
	c.Run(suite.Name, func(c *framework.Context) {
		for _, t := range suite.Tests {
			cases, err := t.Cases()
			if err != nil {
				c.Run(t.Name, func(c *framework.Context) {
					c.Errorf("invalid test definition: %s", err)
				})
				continue
			}
			for _, tc := range cases {
				tc := tc
				c.Run(tc.Name, func(c *framework.Context) { runCase(c, tc, client) })
			}
		}
	})
}

func runCase(c *framework.Context, tc TestCase, client *restclient.Client) {
	if tc.Skip != "" {
		c.SkipWithReason(tc.Skip)
	}
	if tc.Incomplete != "" {
		c.Incomplete(tc.Incomplete)
	}
	for _, step := range tc.Steps {
		step := step
		c.Step(step.Name, func() { runStep(c, step, client) })
	}
}

func runStep(c *framework.Context, step Step, client *restclient.Client) {
	params, err := restlog.ParamsFromYAML(&step.Request.Params)
	require.NoError(c, err, "invalid params")

	c.Debug("%s %s", step.Request.Method, step.Request.Path)
	resp, err := client.Send(context.Background(), step.Request.Method, step.Request.Path, params)
	require.NoError(c, err)
	c.Debug("response status %d, %d bytes", resp.StatusCode, len(resp.Body))

	expect := step.Expect
	if expect.Status != 0 {
		assert.Equal(c, expect.Status, resp.StatusCode, "unexpected status for %s", step.Name)
	}
	if expect.BodyContains != "" {
		assert.True(c, strings.Contains(string(resp.Body), expect.BodyContains),
			"response body does not contain %q", expect.BodyContains)
	}
	if len(expect.JSON) > 0 {
		actual := ldvalue.Parse(resp.Body)
		require.Equal(c, ldvalue.ObjectType, actual.Type(), "response body is not a JSON object")
		for key, want := range expect.JSON {
			expected := ldvalue.CopyArbitraryValue(want)
			got := actual.GetByKey(key)
			assert.True(c, expected.Equal(got), "field %q: expected %s, got %s",
				key, expected.JSONString(), got.JSONString())
		}
	}
	if c.Failed() {
		c.FailNow()
	}
}
