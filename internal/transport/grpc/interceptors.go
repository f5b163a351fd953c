package grpc

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const requestIDHeader = "x-request-id"

func RequestTimeout(timeout time.Duration) grpc.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return handler(ctx, req)
	}
}

type requestIDKey struct{}

// RequestID reuses the caller's x-request-id or mints one, echoes it in the
// response header and stores it on the context for handler logs.
func RequestID(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := incomingRequestID(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, id))
		ctx = context.WithValue(ctx, requestIDKey{}, id)

		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug(
			"rpc finished",
			slog.String("request_id", id),
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return resp, err
	}
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(requestIDHeader)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// peerIdleTTL is how long a host's bucket is kept after its last call.
const peerIdleTTL = 10 * time.Minute

// PeerLimiter hands out one token bucket per remote host. Buckets of hosts
// that stay idle for the TTL are evicted.
type PeerLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters *gocache.Cache
}

func NewPeerLimiter(perSecond float64, burst int) *PeerLimiter {
	return newPeerLimiter(perSecond, burst, peerIdleTTL)
}

func newPeerLimiter(perSecond float64, burst int, idle time.Duration) *PeerLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &PeerLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: gocache.New(idle, idle),
	}
}

func (p *PeerLimiter) Allow(key string) bool {
	p.mu.Lock()
	var l *rate.Limiter
	if v, ok := p.limiters.Get(key); ok {
		l = v.(*rate.Limiter)
	} else {
		l = rate.NewLimiter(p.limit, p.burst)
	}
	p.limiters.SetDefault(key, l)
	p.mu.Unlock()
	return l.Allow()
}

// RateLimit rejects calls with ResourceExhausted once a peer runs out of
// tokens. A non-positive rate disables limiting.
func RateLimit(p *PeerLimiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if p == nil || p.limit <= 0 {
			return handler(ctx, req)
		}
		if !p.Allow(peerKey(ctx)) {
			return nil, status.Error(codes.ResourceExhausted, "too many requests")
		}
		return handler(ctx, req)
	}
}

func peerKey(ctx context.Context) string {
	pr, ok := peer.FromContext(ctx)
	if !ok || pr.Addr == nil {
		return "unknown"
	}
	addr := pr.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
