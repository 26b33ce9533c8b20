package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// MaxResponseSize caps a single response body.
const MaxResponseSize = 10 * 1024 * 1024 // 10MB

const acceptHeader = "application/rss+xml, application/atom+xml, application/feed+json, application/json, text/plain, */*"

// Result is a successfully retrieved payload. ContentType is a detection
// hint only; upstream labels are routinely wrong. Via names the strategy
// that produced the payload.
type Result struct {
	Body        string
	ContentType string
	Via         string
}

// envelope is the JSON wrapper some CORS proxies put around the upstream
// body (allorigins-style).
type envelope struct {
	Contents string          `json:"contents"`
	Status   *envelopeStatus `json:"status"`
}

type envelopeStatus struct {
	HTTPCode    int    `json:"http_code"`
	ContentType string `json:"content_type"`
}

// strategy is one way to reach a source URL. Strategies run in fixed
// order; the first success wins. Proxied strategies may wrap the body in
// a JSON envelope, which gets unwrapped opportunistically.
type strategy struct {
	name    string
	prefix  string // the encoded source URL is appended; empty means direct
	proxied bool
}

func (s strategy) requestURL(sourceURL string) string {
	if s.prefix == "" {
		return sourceURL
	}
	return s.prefix + url.QueryEscape(sourceURL)
}

type Fetcher struct {
	httpClient *http.Client
	strategies []strategy
	userAgent  string
	timeout    time.Duration
}

// NewFetcher builds the strategy chain: primary proxy, fallback proxy,
// then a direct origin fetch. Empty proxy prefixes drop out of the chain;
// the direct strategy is always last.
func NewFetcher(httpClient *http.Client, primaryProxy, fallbackProxy, userAgent string, timeout time.Duration) *Fetcher {
	var strategies []strategy
	if primaryProxy != "" {
		strategies = append(strategies, strategy{name: "proxy", prefix: primaryProxy, proxied: true})
	}
	if fallbackProxy != "" {
		strategies = append(strategies, strategy{name: "proxy-fallback", prefix: fallbackProxy, proxied: true})
	}
	strategies = append(strategies, strategy{name: "direct"})

	return &Fetcher{
		httpClient: httpClient,
		strategies: strategies,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// Run retrieves the raw payload for a source URL, trying each strategy
// in order. A strategy fails on network error, timeout, non-2xx status,
// oversize or empty body, or a malformed proxy envelope; only exhaustion
// of the whole chain surfaces as an error.
func (f *Fetcher) Run(ctx context.Context, sourceURL string) (*Result, error) {
	var failures []string
	for _, s := range f.strategies {
		result, err := f.attempt(ctx, s, sourceURL)
		if err != nil {
			slog.Debug("Fetch attempt failed", "strategy", s.name, "url", sourceURL, "error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", s.name, err))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		return result, nil
	}

	return nil, fmt.Errorf("all fetch strategies failed for %s: %s", sourceURL, strings.Join(failures, "; "))
}

func (f *Fetcher) attempt(ctx context.Context, s strategy, sourceURL string) (*Result, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", s.requestURL(sourceURL), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	limited := io.LimitReader(resp.Body, MaxResponseSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("response too large (exceeds %d bytes)", MaxResponseSize)
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := decodeBody(data, contentType)
	if err != nil {
		return nil, err
	}

	if s.proxied {
		if unwrapped, ok, err := unwrapEnvelope(body); err != nil {
			return nil, err
		} else if ok {
			return &Result{Body: unwrapped.Body, ContentType: unwrapped.ContentType, Via: s.name}, nil
		}
	}

	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("empty response body")
	}

	return &Result{Body: body, ContentType: contentType, Via: s.name}, nil
}

// unwrapEnvelope extracts the upstream body from a proxy's JSON
// envelope. A proxied body that is not an envelope passes through
// untouched (raw-text proxy backends); an envelope without contents or
// with an upstream error status fails the attempt.
func unwrapEnvelope(body string) (*Result, bool, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || trimmed[0] != '{' {
		return nil, false, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		return nil, false, nil
	}
	if env.Contents == "" {
		return nil, false, nil
	}

	contentType := ""
	if env.Status != nil {
		if env.Status.HTTPCode != 0 && (env.Status.HTTPCode < 200 || env.Status.HTTPCode > 299) {
			return nil, false, fmt.Errorf("proxy reported upstream HTTP error: %d", env.Status.HTTPCode)
		}
		contentType = env.Status.ContentType
	}

	if strings.TrimSpace(env.Contents) == "" {
		return nil, false, fmt.Errorf("proxy envelope has empty contents")
	}

	return &Result{Body: env.Contents, ContentType: contentType}, true, nil
}

// decodeBody transcodes a body declared with a non-UTF-8 charset.
func decodeBody(data []byte, contentType string) (string, error) {
	if contentType == "" {
		return string(data), nil
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(data), nil
	}

	name := strings.ToLower(params["charset"])
	if name == "" || name == "utf-8" || name == "utf8" {
		return string(data), nil
	}

	encoding, err := htmlindex.Get(name)
	if err != nil || encoding == nil {
		return string(data), nil
	}

	decoded, _, err := transform.Bytes(encoding.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s body: %w", name, err)
	}

	return string(decoded), nil
}
