// Package circuitbreaker shields outbound collaborator calls behind a
// breaker installed at the http transport level.
package circuitbreaker

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Transport trips after repeated connection failures and rejects calls
// outright while the collaborator is down. HTTP error statuses pass
// through untouched; only transport errors count against the breaker.
type Transport struct {
	base    http.RoundTripper
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

func NewTransport(name string) *Transport {
	return &Transport{
		base: http.DefaultTransport,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.breaker.Execute(func() (*http.Response, error) {
		return t.base.RoundTrip(req)
	})
}
