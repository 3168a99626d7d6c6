package metrics

import (
	"net/http"
	"path"
	"strconv"
	"time"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Transport instruments outgoing requests. The endpoint label is the last
// segment of the request path.
func Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()

		HTTPRequestInFlight.Inc()
		defer HTTPRequestInFlight.Dec()

		endpoint := path.Base(r.URL.Path)
		resp, err := next.RoundTrip(r)

		status := "error"
		if err == nil {
			status = strconv.Itoa(resp.StatusCode)
		}

		HTTPRequestTotals.WithLabelValues(endpoint, status).Inc()
		HTTPRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

		return resp, err
	})
}
