package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const staleAfter = 3 * time.Minute

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter hands out one token bucket per client address.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	r       rate.Limit
	burst   int
}

// NewRateLimiter starts a sweeper that drops idle clients every minute until
// ctx is done.
func NewRateLimiter(ctx context.Context, rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		r:       rate.Limit(rps),
		burst:   burst,
	}
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				rl.sweep(now)
			}
		}
	}()
	return rl
}

func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, c := range rl.clients {
		if now.Sub(c.seen) > staleAfter {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	c, ok := rl.clients[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(rl.r, rl.burst)}
		rl.clients[key] = c
	}
	c.seen = time.Now()
	rl.mu.Unlock()
	return c.lim.Allow()
}

// methods that change clinic data
var limited = map[string]bool{
	"/clinic.v1.ClinicService/AddPatient":        true,
	"/clinic.v1.ClinicService/UpdatePatient":     true,
	"/clinic.v1.ClinicService/TrashPatient":      true,
	"/clinic.v1.ClinicService/AddDoctor":         true,
	"/clinic.v1.ClinicService/UpdateDoctor":      true,
	"/clinic.v1.ClinicService/TrashDoctor":       true,
	"/clinic.v1.ClinicService/BookAppointment":   true,
	"/clinic.v1.ClinicService/RebookAppointment": true,
	"/clinic.v1.ClinicService/RemoveAppointment": true,
	"/clinic.v1.ClinicService/RestoreFromTrash":  true,
	"/clinic.v1.ClinicService/EmptyTrash":        true,
}

// RateLimit throttles mutating calls per client. Calls relayed by the
// grpc-web bridge are keyed by the browser address it forwards.
func RateLimit(rl *RateLimiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if !limited[info.FullMethod] {
			return next(ctx, req)
		}
		if !rl.Allow(clientKey(ctx)) {
			return nil, status.Error(codes.ResourceExhausted, "too many requests")
		}
		return next(ctx, req)
	}
}

// clientKey identifies the caller by peer host. The forwarded address is
// honored only from loopback peers, which is where the grpc-web bridge runs.
func clientKey(ctx context.Context) string {
	host := "unknown"
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		host = p.Addr.String()
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
	}
	if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
		return host
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("x-forwarded-for"); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return host
}

// RateLimitHTTP is the echo counterpart for gateway routes that write.
func RateLimitHTTP(rl *RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}
