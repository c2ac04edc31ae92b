package zoo

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rs/dnscache"
)

const (
	dialTimeout   = 10 * time.Second
	dialKeepAlive = 30 * time.Second
)

// dnsResolver is shared by every client built with NewHTTPClient.
var dnsResolver = &dnscache.Resolver{}

// NewHTTPClient returns a client whose transport caches DNS lookups.
// Detectors are called once per frame, so host resolution would otherwise
// dominate short requests.
func NewHTTPClient() *http.Client {
	trans := http.DefaultTransport.(*http.Transport).Clone()
	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: dialKeepAlive,
	}

	trans.DialContext = func(ctx context.Context, network string, addr string) (conn net.Conn, err error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		ips, err := dnsResolver.LookupHost(ctx, host)
		if err != nil {
			return nil, err
		}

		for _, ip := range ips {
			conn, err = dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
			if err == nil {
				break
			}
		}

		return
	}

	return &http.Client{Transport: trans}
}
