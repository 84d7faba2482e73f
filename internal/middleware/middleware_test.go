package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

func peerCtx(addr string) context.Context {
	tcp, _ := net.ResolveTCPAddr("tcp", addr)
	return peer.NewContext(context.Background(), &peer.Peer{Addr: tcp})
}

func pass(context.Context, any) (any, error) { return "ok", nil }

func info(method string) *grpc.UnaryServerInfo {
	return &grpc.UnaryServerInfo{FullMethod: "/clinic.v1.ClinicService/" + method}
}

func TestRateLimitMutations(t *testing.T) {
	rl := NewRateLimiter(testContext(t), 0.001, 2)
	intercept := RateLimit(rl)
	ctx := peerCtx("10.0.0.1:5555")

	for i := 0; i < 2; i++ {
		if _, err := intercept(ctx, nil, info("BookAppointment"), pass); err != nil {
			t.Fatalf("call %d within burst: %v", i+1, err)
		}
	}
	_, err := intercept(ctx, nil, info("BookAppointment"), pass)
	if status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("expected ResourceExhausted, got %v", err)
	}

	// a new connection from the same host shares the bucket
	if _, err := intercept(peerCtx("10.0.0.1:6666"), nil, info("AddPatient"), pass); status.Code(err) != codes.ResourceExhausted {
		t.Errorf("expected ResourceExhausted for same host, got %v", err)
	}
	if _, err := intercept(peerCtx("10.0.0.2:5555"), nil, info("AddPatient"), pass); err != nil {
		t.Errorf("other host should have its own bucket: %v", err)
	}
}

func TestRateLimitSkipsReads(t *testing.T) {
	rl := NewRateLimiter(testContext(t), 0.001, 1)
	intercept := RateLimit(rl)
	ctx := peerCtx("10.0.0.1:5555")

	for i := 0; i < 5; i++ {
		if _, err := intercept(ctx, nil, info("ListAppointments"), pass); err != nil {
			t.Fatalf("read %d limited: %v", i+1, err)
		}
	}
}

func TestRateLimitUsesForwardedAddress(t *testing.T) {
	rl := NewRateLimiter(testContext(t), 0.001, 1)
	intercept := RateLimit(rl)
	bridge := peerCtx("127.0.0.1:40000")

	for _, browser := range []string{"203.0.113.7", "203.0.113.8"} {
		ctx := metadata.NewIncomingContext(bridge, metadata.Pairs("x-forwarded-for", browser))
		if _, err := intercept(ctx, nil, info("EmptyTrash"), pass); err != nil {
			t.Errorf("%s: first call should pass: %v", browser, err)
		}
	}
}

func TestRateLimitIgnoresForwardedAddressFromRemotePeer(t *testing.T) {
	rl := NewRateLimiter(testContext(t), 0.001, 1)
	intercept := RateLimit(rl)
	remote := peerCtx("198.51.100.9:5555")

	passed := 0
	for i := 0; i < 20; i++ {
		ctx := metadata.NewIncomingContext(remote, metadata.Pairs("x-forwarded-for", fmt.Sprintf("10.9.9.%d", i)))
		if _, err := intercept(ctx, nil, info("BookAppointment"), pass); err == nil {
			passed++
		}
	}
	if passed != 1 {
		t.Errorf("expected only the burst to pass, got %d of 20", passed)
	}
}

func TestClientKey(t *testing.T) {
	fwd := metadata.Pairs("x-forwarded-for", "203.0.113.7")
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"remote peer", peerCtx("198.51.100.9:5555"), "198.51.100.9"},
		{"remote peer with header", metadata.NewIncomingContext(peerCtx("198.51.100.9:5555"), fwd), "198.51.100.9"},
		{"loopback with header", metadata.NewIncomingContext(peerCtx("127.0.0.1:40000"), fwd), "203.0.113.7"},
		{"ipv6 loopback with header", metadata.NewIncomingContext(peerCtx("[::1]:40000"), fwd), "203.0.113.7"},
		{"loopback without header", peerCtx("127.0.0.1:40000"), "127.0.0.1"},
		{"no peer", context.Background(), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clientKey(tt.ctx); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSweepDropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(testContext(t), 1, 1)
	rl.Allow("a")
	rl.Allow("b")
	rl.clients["a"].seen = time.Now().Add(-2 * staleAfter)

	rl.sweep(time.Now())
	if _, ok := rl.clients["a"]; ok {
		t.Error("idle client not swept")
	}
	if _, ok := rl.clients["b"]; !ok {
		t.Error("active client swept")
	}
}

func TestRateLimitHTTP(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(testContext(t), 0.001, 1)
	h := RateLimitHTTP(rl)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedule/export", nil)
	if err := h(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("first request: %v", err)
	}
	err := h(e.NewContext(req, httptest.NewRecorder()))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %v", err)
	}
}

func TestUnaryRecovery(t *testing.T) {
	var buf bytes.Buffer
	intercept := UnaryRecovery(zerolog.New(&buf))
	_, err := intercept(context.Background(), nil, info("AddDoctor"), func(context.Context, any) (any, error) {
		panic("boom")
	})
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal, got %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("panic recovered")) {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestUnaryLoggingLevels(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level string
	}{
		{"ok", nil, "info"},
		{"caller error", status.Error(codes.AlreadyExists, "taken"), "warn"},
		{"server error", status.Error(codes.Unavailable, "disk"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			intercept := UnaryLogging(zerolog.New(&buf))
			intercept(peerCtx("10.0.0.1:1"), nil, info("BookAppointment"), func(context.Context, any) (any, error) {
				return nil, tt.err
			})

			var line map[string]any
			if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
				t.Fatalf("log line: %v (%s)", err, buf.String())
			}
			if line["level"] != tt.level {
				t.Errorf("level: got %v, want %s", line["level"], tt.level)
			}
			if line["method"] != "/clinic.v1.ClinicService/BookAppointment" || line["client"] != "10.0.0.1" {
				t.Errorf("unexpected fields %v", line)
			}
		})
	}
}

func TestEchoLoggerAndRecovery(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	e := echo.New()
	h := Logger(log)(Recovery(log)(func(c echo.Context) error {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("logger should hand the error to echo: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"path":"/api/v1/summary"`)) {
		t.Errorf("request not logged: %s", buf.String())
	}
}

// testContext returns a context canceled when the test finishes.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
