// Package restclient is a small HTTP client for REST tests that remembers the last
// transaction it made, so that extensions can inspect it after each test step.
package restclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/restlog/request-log-recorder/restlog"
)

const defaultTimeout = time.Second * 30

// Response is the result of Send.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client sends requests relative to a base URL. It implements
// restlog.TransactionSource.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
	last       *restlog.Transaction
	now        func() time.Time
	lock       sync.Mutex
}

// New creates a Client. If httpClient is nil, a client with a 30-second timeout is used.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		headers:    make(http.Header),
		now:        time.Now,
	}
}

// SetHeader sets a header that is sent with every subsequent request.
func (c *Client) SetHeader(name, value string) {
	c.lock.Lock()
	c.headers.Set(name, value)
	c.lock.Unlock()
}

// Send makes a request. Structured params are sent in the query string for GET, HEAD
// and DELETE, and as a form body otherwise; raw params are sent as the body.
//
// The transaction is remembered only if a response was received. If the request
// fails, there is no last transaction until the next successful one.
func (c *Client) Send(ctx context.Context, method, path string, params restlog.Params) (*Response, error) {
	c.lock.Lock()
	c.last = nil
	headers := c.headers.Clone()
	c.lock.Unlock()

	u, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	var contentType string
	switch params.Kind() {
	case restlog.StructuredParams:
		values := encodeParams(params)
		if sendsParamsInQuery(method) {
			q := u.Query()
			for k, vs := range values {
				for _, v := range vs {
					q.Add(k, v)
				}
			}
			u.RawQuery = q.Encode()
		} else {
			body = strings.NewReader(values.Encode())
			contentType = "application/x-www-form-urlencoded"
		}
	case restlog.RawParams:
		body = strings.NewReader(params.RawString())
		if json.Valid([]byte(params.RawString())) {
			contentType = "application/json"
		} else {
			contentType = "text/plain; charset=utf-8"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range headers {
		req.Header[k] = vs
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending %s %s: %w", method, u, err)
	}
	received := c.now()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", u, err)
	}

	c.lock.Lock()
	c.last = &restlog.Transaction{
		URL:          u.String(),
		StatusCode:   resp.StatusCode,
		Header:       resp.Header.Clone(),
		Params:       params,
		ResponseBody: string(data),
		Received:     received,
	}
	c.lock.Unlock()

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// LastTransaction returns a copy of the last transaction, or nil if there is none.
func (c *Client) LastTransaction() (*restlog.Transaction, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.last == nil {
		return nil, nil
	}
	tx := *c.last
	tx.Header = c.last.Header.Clone()
	return &tx, nil
}

func (c *Client) resolve(path string) (*url.URL, error) {
	target := path
	if u, err := url.Parse(path); err != nil || !u.IsAbs() {
		if c.baseURL == "" {
			return nil, fmt.Errorf("relative path %q requires a base URL", path)
		}
		target = c.baseURL + "/" + strings.TrimPrefix(path, "/")
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", target, err)
	}
	return u, nil
}

func sendsParamsInQuery(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return true
	}
	return false
}

// encodeParams flattens structured params into form values, with nested keys
// written as outer[inner].
func encodeParams(params restlog.Params) url.Values {
	values := make(url.Values)
	for _, p := range params.Pairs() {
		values.Add(p.Key, p.Value)
	}
	return values
}
