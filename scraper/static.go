package scraper

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-scrape-fbref/config"
)

// StaticFactory fetches raw server markup with a colly collector, without
// running page scripts. Tables the site ships inside HTML comments are
// still found by the parser.
type StaticFactory struct {
	cfg       *config.Config
	transport http.RoundTripper
}

// NewStaticFactory builds a factory from cfg.
func NewStaticFactory(cfg *config.Config) *StaticFactory {
	return &StaticFactory{cfg: cfg}
}

// WithTransport replaces the HTTP transport of sessions opened afterwards.
func (f *StaticFactory) WithTransport(rt http.RoundTripper) *StaticFactory {
	f.transport = rt
	return f
}

// Name identifies the fetcher in logs and metrics.
func (f *StaticFactory) Name() string {
	return config.FetcherStatic
}

// Open prepares a collector restricted to the configured host.
func (f *StaticFactory) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := url.Parse(f.cfg.BaseURL)
	if err != nil {
		return nil, ErrSession{Err: fmt.Errorf("parse base url: %w", err)}
	}
	if parsed.Hostname() == "" {
		return nil, ErrSession{Err: fmt.Errorf("base url must include a host")}
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(f.cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(f.cfg.PageLoadTimeout)
	collector.IgnoreRobotsTxt = true

	transport := f.transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   f.cfg.PageLoadTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}
	collector.WithTransport(transport)

	s := &staticSession{
		collector: collector,
		minSettle: f.cfg.MinSettle,
	}
	collector.OnResponse(func(r *colly.Response) {
		s.status = r.StatusCode
		s.body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			s.status = r.StatusCode
		}
		s.err = err
	})
	return s, nil
}

type staticSession struct {
	collector *colly.Collector
	minSettle time.Duration

	// last response, reset by every Fetch
	status int
	body   []byte
	err    error
}

func (s *staticSession) Fetch(ctx context.Context, target, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()
	s.status, s.body, s.err = 0, nil, nil

	visitErr := s.collector.Visit(target)
	if s.err == nil {
		s.err = visitErr
	}
	if s.err != nil || s.status >= http.StatusBadRequest {
		return "", classifyError(wrapVisit(target, s.err), s.status)
	}

	if err := settle(ctx, start, s.minSettle); err != nil {
		return "", err
	}
	return string(s.body), nil
}

func (s *staticSession) Close() error {
	return nil
}

func wrapVisit(target string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("visit %s: %w", target, err)
}
