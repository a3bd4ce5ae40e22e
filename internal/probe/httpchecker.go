package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/hamed0406/deploysmoke/internal/report"
)

// DefaultHTTPTimeout bounds the whole request, body included.
const DefaultHTTPTimeout = 10 * time.Second

// cap on how much of the body is read before the response is closed
const maxDrainBytes = 64 << 10

// HTTPDoer is the subset of *http.Client the HTTP probe needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient builds the probe client. Keep-alives are off, so no
// connection outlives the request that opened it. insecure disables
// certificate verification; only use it against infrastructure you already trust.
func NewHTTPClient(timeout time.Duration, insecure bool) *http.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ExpectContinueTimeout: 1 * time.Second,
		DisableKeepAlives:     true,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: insecure,
			MinVersion:         tls.VersionTLS12,
		},
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// HTTPChecker issues one GET and passes on any 2xx status.
type HTTPChecker struct {
	Label    string
	URL      string
	Client   HTTPDoer
	Out      *report.Reporter
	Diagnose func(ctx context.Context, host string) DNSStatus
}

type HTTPOption func(*HTTPChecker)

func WithHTTPClient(c HTTPDoer) HTTPOption {
	return func(h *HTTPChecker) { h.Client = c }
}

// WithDNSDiagnosis replaces the resolver used to annotate transport failures.
// Passing nil turns the annotation off.
func WithDNSDiagnosis(fn func(ctx context.Context, host string) DNSStatus) HTTPOption {
	return func(h *HTTPChecker) { h.Diagnose = fn }
}

func NewHTTPChecker(label, target string, out *report.Reporter, opts ...HTTPOption) *HTTPChecker {
	h := &HTTPChecker{
		Label:    label,
		URL:      target,
		Out:      reporterOr(out),
		Diagnose: DiagnoseDNS,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.Client == nil {
		h.Client = NewHTTPClient(DefaultHTTPTimeout, false)
	}
	return h
}

func (h *HTTPChecker) Check(ctx context.Context) Result {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return h.transportFailure(ctx, start, fmt.Errorf("build request: %w", err))
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return h.transportFailure(ctx, start, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("unexpected status %s", statusLine(resp))
		msg := fmt.Sprintf("%s returned error status code: %s for url: %s", h.Label, statusLine(resp), h.URL)
		h.Out.Error(msg)
		res := failed(h.Label, msg, err, start)
		res.StatusCode = resp.StatusCode
		return res
	}

	resolved := h.URL
	if resp.Request != nil && resp.Request.URL != nil {
		resolved = resp.Request.URL.String()
	}
	msg := fmt.Sprintf("%s is accessible at %s", h.Label, resolved)
	h.Out.Success(msg)
	res := passed(h.Label, msg, start)
	res.StatusCode = resp.StatusCode
	return res
}

func (h *HTTPChecker) transportFailure(ctx context.Context, start time.Time, err error) Result {
	msg := fmt.Sprintf("Error connecting to %s: %v", h.Label, err)
	if h.Diagnose != nil {
		if host := hostOf(h.URL); host != "" {
			// the request context may be the one that just expired
			dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dnsTimeout)
			defer cancel()
			msg += " " + h.Diagnose(dctx, host).Detail()
		}
	}
	h.Out.Error(msg)
	return failed(h.Label, msg, err, start)
}

func statusLine(resp *http.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
