package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NordCoder/Marketus/internal/apperr"
	domainauth "github.com/NordCoder/Marketus/internal/domain/auth"
	"github.com/NordCoder/Marketus/internal/httpx"
	"github.com/NordCoder/Marketus/internal/obs"
)

// Registry maps a logical service name to its base URL. Supplied at
// startup and read-only for the process lifetime.
type Registry map[string]string

// Only these inbound headers cross the proxy; everything else, the
// caller's Authorization included, is dropped.
var requestHeaderAllowlist = map[string]struct{}{
	"content-type":    {},
	"content-length":  {},
	"accept":          {},
	"accept-encoding": {},
	"user-agent":      {},
	"cache-control":   {},
	"x-request-id":    {},
}

// Hop-by-hop and session headers stripped from upstream responses.
var responseHeaderBlocklist = map[string]struct{}{
	"set-cookie":        {},
	"connection":        {},
	"transfer-encoding": {},
}

// Forwarder relays requests to registered backends over one shared
// pooling client. One attempt per request; transport failures map to
// ServiceUnavailable.
type Forwarder struct {
	client   *http.Client
	registry Registry
	log      *zap.Logger
}

func NewForwarder(client *http.Client, registry Registry, log *zap.Logger) *Forwarder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Forwarder{client: client, registry: registry, log: log}
}

// Result is a fully buffered upstream response.
type Result struct {
	Status int
	Header http.Header
	Body   []byte
}

// Forward relays r to the named service. A non-nil identity was verified
// by the caller and is propagated via the X-Auth-* headers.
func (f *Forwarder) Forward(ctx context.Context, service, path string, r *http.Request, ident *domainauth.AccessClaims) (*Result, error) {
	base, ok := f.registry[service]
	if !ok {
		return nil, apperr.New(apperr.ServiceNotFound, fmt.Sprintf("Service %s not found", service))
	}

	url := strings.TrimRight(base, "/") + "/" + path
	if q := r.URL.RawQuery; q != "" {
		url += "?" + q
	}

	out, err := http.NewRequestWithContext(ctx, r.Method, url, r.Body)
	if err != nil {
		return nil, fmt.Errorf("build proxy request: %w", err)
	}
	out.Header = filterRequestHeaders(r.Header)
	// net/http frames the outbound body from ContentLength, not from
	// the header map. Without this the relayed body goes chunked.
	out.ContentLength = r.ContentLength
	if ident != nil {
		out.Header.Set(httpx.HeaderUserID, strconv.FormatInt(ident.Sub, 10))
		out.Header.Set(httpx.HeaderUserRole, ident.Role)
	}

	start := time.Now()
	resp, err := f.client.Do(out)
	if err != nil {
		f.log.Warn("upstream unreachable", zap.String("service", service), zap.Error(err))
		obs.ObserveProxy(service, 0, time.Since(start))
		return nil, apperr.New(apperr.ServiceUnavailable, fmt.Sprintf("Service %s is unavailable", service))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		obs.ObserveProxy(service, resp.StatusCode, time.Since(start))
		if isTransport(err) {
			return nil, apperr.New(apperr.ServiceUnavailable, fmt.Sprintf("Service %s is unavailable", service))
		}
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	obs.ObserveProxy(service, resp.StatusCode, time.Since(start))

	return &Result{
		Status: resp.StatusCode,
		Header: filterResponseHeaders(resp.Header),
		Body:   body,
	}, nil
}

func filterRequestHeaders(in http.Header) http.Header {
	out := make(http.Header, len(requestHeaderAllowlist))
	for k, vv := range in {
		if _, ok := requestHeaderAllowlist[strings.ToLower(k)]; !ok {
			continue
		}
		for _, v := range vv {
			out.Add(k, v)
		}
	}
	return out
}

func filterResponseHeaders(in http.Header) http.Header {
	out := make(http.Header, len(in))
	for k, vv := range in {
		if _, ok := responseHeaderBlocklist[strings.ToLower(k)]; ok {
			continue
		}
		for _, v := range vv {
			out.Add(k, v)
		}
	}
	return out
}

func isTransport(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF)
}
