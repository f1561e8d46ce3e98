// Package requestcontext carries request-scoped values from HTTP middleware
// to services that must not import net/http.
package requestcontext

import (
	"context"
	"time"
)

type ctxKey int

const (
	clientKey ctxKey = iota
	requestIDKey
	requestTimeKey
)

// Client is what the edge knows about the caller before any body is read.
type Client struct {
	IP             string
	UserAgent      string
	AcceptLanguage string
}

// WithClient stores c on ctx, replacing any earlier value.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey, c)
}

// ClientFrom returns the stored client, or the zero Client.
func ClientFrom(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey).(Client)
	return c
}

func ClientIP(ctx context.Context) string { return ClientFrom(ctx).IP }

func UserAgent(ctx context.Context) string { return ClientFrom(ctx).UserAgent }

func AcceptLanguage(ctx context.Context) string { return ClientFrom(ctx).AcceptLanguage }

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID is empty outside an HTTP request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithTime pins the clock for everything downstream of ctx.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}

// Now returns the pinned request time, falling back to the wall clock for
// workers and the CLI.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey).(time.Time); ok {
		return t
	}
	return time.Now()
}
