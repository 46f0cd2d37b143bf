// Package fetch is the transport boundary: it turns a page request into raw
// bytes and nothing else. Status codes and network failures surface as
// *TransportError.
package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"alamos-extract/internal/components/assert"
	"alamos-extract/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
)

const (
	report_client_fetch = "client.fetch"
)

const (
	MethodGet  = http.MethodGet
	MethodPost = http.MethodPost
)

// Request is a single page request. Form is only sent with MethodPost.
type Request struct {
	Url    string
	Method string
	Form   map[string]string
}

// Fetcher retrieves the raw body of a page.
//
// note: fault injection point
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

type TransportError struct {
	Method string
	Url    string
	// zero if the request never got a response
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport: %s %s: status %d", e.Method, e.Url, e.Status)
	}
	return fmt.Sprintf("transport: %s %s: %v", e.Method, e.Url, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type Options struct {
	// relative request urls are resolved against BaseUrl
	BaseUrl string
	Timeout time.Duration
	// the target site has historically served an incomplete certificate chain
	InsecureSkipVerify bool
	UserAgent          string
	// retries on network errors and 5xx statuses, 0 disables retrying
	RetryCount int
}

type Client struct {
	http *resty.Client
	tel  telemetry.API
}

func NewClient(opts Options, tel telemetry.API) *Client {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("fetch", tel)

	client := resty.New()
	if opts.BaseUrl != "" {
		client.SetBaseURL(opts.BaseUrl)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		client.SetHeader("user-agent", opts.UserAgent)
	}
	if opts.InsecureSkipVerify {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	if opts.RetryCount > 0 {
		client.SetRetryCount(opts.RetryCount).
			SetRetryWaitTime(time.Second).
			SetRetryMaxWaitTime(10 * time.Second).
			AddRetryCondition(func(res *resty.Response, err error) bool {
				return err != nil || res.StatusCode() >= 500
			})
	}

	telemetry.InstrumentResty(client, tel)

	return &Client{http: client, tel: tel}
}

func (c *Client) Fetch(ctx context.Context, req Request) ([]byte, error) {
	method := req.Method
	if method == "" {
		method = MethodGet
	}

	r := c.http.R().SetContext(ctx)
	switch method {
	case MethodGet:
	case MethodPost:
		r.SetFormData(req.Form)
	default:
		err := &TransportError{Method: method, Url: req.Url, Err: fmt.Errorf("unsupported method")}
		c.tel.ReportBroken(report_client_fetch, err)
		return nil, err
	}

	res, err := r.Execute(method, req.Url)
	if err != nil {
		err = &TransportError{Method: method, Url: req.Url, Err: err}
		c.tel.ReportBroken(report_client_fetch, err)
		return nil, err
	}
	if res.IsError() {
		err = &TransportError{
			Method: method,
			Url:    req.Url,
			Status: res.StatusCode(),
			Err:    fmt.Errorf("%s", res.Status()),
		}
		c.tel.ReportBroken(report_client_fetch, err)
		return nil, err
	}

	return res.Body(), nil
}
