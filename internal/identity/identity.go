// Package identity derives a best-effort device identity for a vote attempt:
// a stable fingerprint, a client IP and an incognito flag. Every signal is
// weak on its own; the vote ledger treats a match on either fingerprint or
// IP as the same voter.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"ballot/internal/voting/models"
)

// ErrNoFingerprintSignal is returned when the client sent no visitor id.
var ErrNoFingerprintSignal = errors.New("no fingerprint signal")

// Signals are the raw inputs reported by the client and observed by the server.
type Signals struct {
	// VisitorID is the client-side device fingerprint. Required for votes.
	VisitorID      string
	ServerIP       string
	ReportedIP     string
	UserAgent      string
	AcceptLanguage string
	LocalStorage   bool
	IndexedDB      bool
}

// Incognito reports the private-browsing heuristic: either storage check failing.
func (s Signals) Incognito() bool {
	return !s.LocalStorage || !s.IndexedDB
}

// IPLookup resolves the caller's public IP through an external service.
type IPLookup interface {
	LookupIP(ctx context.Context) (string, error)
}

// Collector turns Signals into an Identity.
type Collector struct {
	lookup IPLookup
	logger *slog.Logger
}

type Option func(*Collector)

// WithIPLookup adds an external lookup as the last IP source.
func WithIPLookup(l IPLookup) Option {
	return func(c *Collector) {
		c.lookup = l
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

func NewCollector(opts ...Option) *Collector {
	c := &Collector{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect derives the fingerprint and resolves the IP concurrently. IP
// failures resolve to models.UnknownIP and never fail the collection.
func (c *Collector) Collect(ctx context.Context, sig Signals) (models.Identity, error) {
	var fingerprint, ip string
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fp, err := Fingerprint(sig)
		if err != nil {
			return err
		}
		fingerprint = fp
		return nil
	})

	g.Go(func() error {
		ip = c.resolveIP(gctx, sig)
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.Identity{}, err
	}
	return models.Identity{
		Fingerprint:    fingerprint,
		IP:             ip,
		Incognito:      sig.Incognito(),
		UserAgent:      sig.UserAgent,
		AgentSignature: AgentSignature(sig),
	}, nil
}

func (c *Collector) resolveIP(ctx context.Context, sig Signals) string {
	if ip := NormalizeIP(sig.ServerIP); ip != models.UnknownIP {
		return ip
	}
	if ip := NormalizeIP(sig.ReportedIP); ip != models.UnknownIP {
		return ip
	}
	if c.lookup == nil {
		return models.UnknownIP
	}
	ip, err := c.lookup.LookupIP(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "external ip lookup failed", "error", err)
		return models.UnknownIP
	}
	return NormalizeIP(ip)
}

// NormalizeIP trims raw and maps empty or unparsable input to models.UnknownIP.
func NormalizeIP(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, models.UnknownIP) {
		return models.UnknownIP
	}
	addr, ok := parseAddr(raw)
	if !ok {
		return models.UnknownIP
	}
	return addr
}
