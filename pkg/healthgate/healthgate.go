// Package healthgate probes the configured external inference services at
// boot, retrying with a fixed delay before giving up and letting the engine
// start anyway (SPEC_FULL §4.7 Health Gate, grounded on
// bootstrap/lifecycle.rs + health_check.rs).
package healthgate

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lokutor-ai/lingua-engine/pkg/engine"
)

const (
	maxRetries     = 15
	retryDelay     = 1000 * time.Millisecond
	probeTimeout   = 5 * time.Second
	healthEndpoint = "health"
)

// ServiceHealth reports the outcome of probing one service's /health
// endpoint.
type ServiceHealth struct {
	ServiceName string
	URL         string
	Healthy     bool
	Err         error
}

// Gate probes a set of named base URLs and waits (bounded) for them to
// report healthy before returning.
type Gate struct {
	http *http.Client
	log  engine.Logger
}

func New(log engine.Logger) *Gate {
	if log == nil {
		log = &engine.NoOpLogger{}
	}
	return &Gate{
		http: &http.Client{Timeout: probeTimeout},
		log:  log,
	}
}

// Probe issues one GET against baseURL's /health endpoint.
func (g *Gate) Probe(ctx context.Context, serviceName, baseURL string) ServiceHealth {
	healthURL, err := healthURLFor(baseURL)
	if err != nil {
		return ServiceHealth{ServiceName: serviceName, URL: baseURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return ServiceHealth{ServiceName: serviceName, URL: baseURL, Err: err}
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return ServiceHealth{ServiceName: serviceName, URL: baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ServiceHealth{ServiceName: serviceName, URL: baseURL, Healthy: false}
	}
	return ServiceHealth{ServiceName: serviceName, URL: baseURL, Healthy: true}
}

// Services names a service to probe by its base URL (scheme+host, any
// request path is stripped).
type Services map[string]string

// AwaitReady retries Probe against every entry in services up to 15 times,
// 1 second apart, stopping early once all are healthy. It never returns an
// error: services that remain unhealthy are logged as warnings and the
// caller proceeds regardless, matching the reference's boot() behavior of
// never blocking startup on a downstream health check.
func (g *Gate) AwaitReady(ctx context.Context, services Services) map[string]ServiceHealth {
	results := make(map[string]ServiceHealth, len(services))
	if len(services) == 0 {
		return results
	}

	g.log.Info("healthgate: waiting for services to be ready", "count", len(services))

	attempt := 0
	for attempt = 1; attempt <= maxRetries; attempt++ {
		allHealthy := true
		for name, base := range services {
			h := g.Probe(ctx, name, base)
			results[name] = h
			if !h.Healthy {
				allHealthy = false
			}
		}
		if allHealthy {
			break
		}
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				attempt = maxRetries
			case <-time.After(retryDelay):
			}
		}
	}

	for name, h := range results {
		if h.Healthy {
			g.log.Info("healthgate: service healthy", "service", name, "url", h.URL, "attempt", attempt)
		} else {
			errMsg := ""
			if h.Err != nil {
				errMsg = h.Err.Error()
			}
			g.log.Warn("healthgate: service not healthy after retries, proceeding anyway",
				"service", name, "url", h.URL, "attempts", attempt, "error", errMsg)
		}
	}

	return results
}

// healthURLFor strips any path from baseURL and appends /health, mirroring
// the reference's manual "://" + first "/" scan.
func healthURLFor(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	base := u.Scheme + "://" + u.Host
	return strings.TrimSuffix(base, "/") + "/" + healthEndpoint, nil
}
