package github

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/inovacc/rael/internal/provider"
	"golang.org/x/oauth2"
)

const (
	retryMax     = 3
	retryWaitMin = 200 * time.Millisecond
	retryWaitMax = 2 * time.Second
)

// idempotentRetry sends GET and HEAD requests through a retrying round
// tripper and everything else straight to the base transport.
type idempotentRetry struct {
	retry  http.RoundTripper
	direct http.RoundTripper
}

func (t *idempotentRetry) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		return t.retry.RoundTrip(req)
	}

	return t.direct.RoundTrip(req)
}

// newHTTPClient returns an authenticated client with a bounded timeout that
// retries idempotent reads on transient failures.
func newHTTPClient(opts provider.Options) *http.Client {
	base := opts.BaseTransport()

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: base}
	rc.RetryMax = retryMax
	rc.RetryWaitMin = retryWaitMin
	rc.RetryWaitMax = retryWaitMax
	rc.Logger = opts.Log()
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &http.Client{
		Timeout: opts.RequestTimeout(),
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
			Base: &idempotentRetry{
				retry:  &retryablehttp.RoundTripper{Client: rc},
				direct: base,
			},
		},
	}
}
