package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"ballot/internal/voting/models"
)

// DefaultIPifyURL is the public IP echo service.
const DefaultIPifyURL = "https://api.ipify.org?format=json"

// IPify looks up the caller's public IP with a per-attempt timeout and a
// bounded number of retries.
type IPify struct {
	client     *http.Client
	url        string
	timeout    time.Duration
	maxRetries uint64
}

type IPifyOption func(*IPify)

func WithIPifyURL(url string) IPifyOption {
	return func(i *IPify) {
		i.url = url
	}
}

func WithIPifyTimeout(d time.Duration) IPifyOption {
	return func(i *IPify) {
		i.timeout = d
	}
}

func WithIPifyRetries(n uint64) IPifyOption {
	return func(i *IPify) {
		i.maxRetries = n
	}
}

func WithHTTPClient(c *http.Client) IPifyOption {
	return func(i *IPify) {
		i.client = c
	}
}

func NewIPify(opts ...IPifyOption) *IPify {
	i := &IPify{
		client:     http.DefaultClient,
		url:        DefaultIPifyURL,
		timeout:    3 * time.Second,
		maxRetries: 2,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

type ipifyResponse struct {
	IP string `json:"ip"`
}

// LookupIP returns the public IP. Client errors (4xx) are not retried.
func (i *IPify) LookupIP(ctx context.Context) (string, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = time.Second
	b := backoff.WithContext(backoff.WithMaxRetries(policy, i.maxRetries), ctx)

	var ip string
	err := backoff.Retry(func() error {
		got, err := i.lookupOnce(ctx)
		if err != nil {
			return err
		}
		ip = got
		return nil
	}, b)
	if err != nil {
		return "", fmt.Errorf("ipify lookup: %w", err)
	}
	return ip, nil
}

func (i *IPify) lookupOnce(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.url, nil)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return "", backoff.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var body ipifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode ipify response: %w", err)
	}
	ip := NormalizeIP(body.IP)
	if ip == models.UnknownIP {
		return "", backoff.Permanent(fmt.Errorf("invalid ip %q", body.IP))
	}
	return ip, nil
}
