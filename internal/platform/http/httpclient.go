// Package http provides the outbound HTTP client used by the market-data adapters,
// plus request validation and health endpoints for the inbound side.
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient returns a client tuned for a single upstream market-data host.
//
// http.DefaultClient has no timeout, so adapters must always go through here.
// timeout bounds the whole request including reading the body.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
