package restclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/restlog/request-log-recorder/restlog"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonHandler(status int, body string) http.Handler {
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	return httphelpers.HandlerWithResponse(status, headers, []byte(body))
}

func TestNoTransactionBeforeFirstRequest(t *testing.T) {
	c := New("http://localhost", nil)
	tx, err := c.LastTransaction()
	assert.NoError(t, err)
	assert.Nil(t, tx)
}

func TestGetSendsStructuredParamsInQuery(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(jsonHandler(200, `{"ok":true}`))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := New(server.URL+"/", nil)
		params := restlog.Structured(
			restlog.Field("id", ldvalue.Int(1)),
			restlog.Group("filter", restlog.Field("active", ldvalue.Bool(true))),
		)

		resp, err := c.Send(context.Background(), "GET", "/api/users", params)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, `{"ok":true}`, string(resp.Body))

		req := <-requestsCh
		assert.Equal(t, "/api/users", req.Request.URL.Path)
		assert.Equal(t, "1", req.Request.URL.Query().Get("id"))
		assert.Equal(t, "true", req.Request.URL.Query().Get("filter[active]"))

		tx, err := c.LastTransaction()
		require.NoError(t, err)
		require.NotNil(t, tx)
		u, err := url.Parse(tx.URL)
		require.NoError(t, err)
		assert.Equal(t, "/api/users", u.Path)
		assert.Equal(t, "1", u.Query().Get("id"))
		assert.Equal(t, 200, tx.StatusCode)
		assert.Equal(t, `{"ok":true}`, tx.ResponseBody)
		assert.True(t, params.Equal(tx.Params))
		assert.NotEmpty(t, tx.Header.Get("Date"))
	})
}

func TestPostSendsStructuredParamsAsForm(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(jsonHandler(201, `{}`))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := New(server.URL, nil)
		c.SetHeader("Authorization", "Bearer abc")
		params := restlog.Structured(restlog.Field("name", ldvalue.String("Zoë")))

		_, err := c.Send(context.Background(), "POST", "users", params)
		require.NoError(t, err)

		req := <-requestsCh
		assert.Equal(t, "POST", req.Request.Method)
		assert.Equal(t, "", req.Request.URL.RawQuery)
		assert.Equal(t, "application/x-www-form-urlencoded", req.Request.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer abc", req.Request.Header.Get("Authorization"))
		assert.Equal(t, url.Values{"name": {"Zoë"}}.Encode(), string(req.Body))
	})
}

func TestRawParamsAreSentAsBody(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(jsonHandler(200, `{}`))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := New(server.URL, nil)

		_, err := c.Send(context.Background(), "PUT", "/doc", restlog.Raw(`{"a":1}`))
		require.NoError(t, err)
		req := <-requestsCh
		assert.Equal(t, "application/json", req.Request.Header.Get("Content-Type"))
		assert.Equal(t, `{"a":1}`, string(req.Body))

		_, err = c.Send(context.Background(), "PUT", "/doc", restlog.Raw("plain words"))
		require.NoError(t, err)
		req = <-requestsCh
		assert.Equal(t, "text/plain; charset=utf-8", req.Request.Header.Get("Content-Type"))
		assert.Equal(t, "plain words", string(req.Body))
	})
}

func TestFailedRequestClearsLastTransaction(t *testing.T) {
	var closedURL string
	httphelpers.WithServer(jsonHandler(200, `{}`), func(server *httptest.Server) {
		closedURL = server.URL
	})

	handler := jsonHandler(404, `{"error":"missing"}`)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := New(server.URL, nil)
		_, err := c.Send(context.Background(), "GET", "/missing", restlog.Params{})
		require.NoError(t, err)
		tx, _ := c.LastTransaction()
		require.NotNil(t, tx)
		assert.Equal(t, 404, tx.StatusCode)

		_, err = c.Send(context.Background(), "GET", closedURL+"/gone", restlog.Params{})
		assert.Error(t, err)
		tx, err = c.LastTransaction()
		assert.NoError(t, err)
		assert.Nil(t, tx)
	})
}

func TestTransactionKeepsReceiveTime(t *testing.T) {
	httphelpers.WithServer(jsonHandler(200, `{}`), func(server *httptest.Server) {
		c := New(server.URL, nil)
		received := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return received }

		_, err := c.Send(context.Background(), "GET", "/", restlog.Params{})
		require.NoError(t, err)

		c.now = func() time.Time { return received.Add(time.Minute) }
		first, err := c.LastTransaction()
		require.NoError(t, err)
		second, err := c.LastTransaction()
		require.NoError(t, err)
		assert.Equal(t, received, first.Received)
		assert.Equal(t, first.Received, second.Received)
	})
}

func TestRelativePathRequiresBaseURL(t *testing.T) {
	c := New("", nil)
	_, err := c.Send(context.Background(), "GET", "/api", restlog.Params{})
	assert.Error(t, err)
}
