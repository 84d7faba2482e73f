package grpcweb

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const maxBody = 4 << 20

// ForwardedForKey carries the browser's address to the gRPC server so
// per-client limits see the caller rather than the bridge.
const ForwardedForKey = "x-forwarded-for"

// Bridge translates gRPC-Web (browser HTTP/1.1) → native gRPC.
type Bridge struct {
	conn *grpc.ClientConn
	log  zerolog.Logger
}

// New dials the gRPC server at addr (e.g. "localhost:50051").
func New(addr string, log zerolog.Logger) (*Bridge, error) {
	conn, err := grpc.NewClient(
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("grpcweb dial: %w", err)
	}
	return NewFromConn(conn, log), nil
}

func NewFromConn(conn *grpc.ClientConn, log zerolog.Logger) *Bridge {
	return &Bridge{conn: conn, log: log.With().Str("component", "grpcweb").Logger()}
}

func (b *Bridge) Close() error { return b.conn.Close() }

// corsHeaders lets browser grpc-web clients call the bridge. The service
// takes no credentials, so Authorization is not in the allow-list.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Methods":  "POST, OPTIONS",
	"Access-Control-Allow-Headers":  "Content-Type, X-Grpc-Web, X-User-Agent, x-grpc-web",
	"Access-Control-Expose-Headers": "Grpc-Status, Grpc-Message, Grpc-Status-Details-Bin, grpc-status, grpc-message",
	"Access-Control-Max-Age":        "86400",
}

func allowOrigin(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = "*"
	}
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	for k, v := range corsHeaders {
		h.Set(k, v)
	}
}

// Handler returns an http.Handler that translates gRPC-Web → gRPC.
func (b *Bridge) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowOrigin(w, r)
		switch {
		case r.Method == http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		case r.Method != http.MethodPost:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		case !strings.HasPrefix(r.Header.Get("Content-Type"), "application/grpc-web"):
			http.Error(w, "not grpc-web", http.StatusUnsupportedMediaType)
		default:
			b.log.Debug().Str("method", r.URL.Path).Msg("grpc-web call")
			b.forward(w, r)
		}
	})
}

func (b *Bridge) forward(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, codes.ResourceExhausted, "request body too large")
		return
	}
	payload, err := readFrame(body)
	if err != nil {
		writeError(w, codes.InvalidArgument, err.Error())
		return
	}

	md := metadata.MD{}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		md.Set(ForwardedForKey, host)
	}
	ctx := metadata.NewOutgoingContext(r.Context(), md)

	resp := &rawMsg{}
	err = b.conn.Invoke(ctx, r.URL.Path, &rawMsg{data: payload}, resp, grpc.ForceCodec(rawCodec{}))
	if err != nil {
		st, _ := status.FromError(err)
		b.log.Warn().Str("method", r.URL.Path).Str("code", st.Code().String()).Msg(st.Message())
		writeError(w, st.Code(), st.Message())
		return
	}

	writeSuccess(w, resp.data)
}

// readFrame returns the message of a single grpc-web data frame:
// 1-byte flag + 4-byte big-endian length + protobuf.
func readFrame(body []byte) ([]byte, error) {
	if len(body) < 5 {
		return nil, fmt.Errorf("body too short")
	}
	if body[0]&0x80 != 0 {
		return nil, fmt.Errorf("expected a data frame")
	}
	msgLen := binary.BigEndian.Uint32(body[1:5])
	if uint64(msgLen)+5 > uint64(len(body)) {
		return nil, fmt.Errorf("incomplete frame")
	}
	return body[5 : 5+msgLen], nil
}

// rawMsg wraps raw protobuf bytes.
type rawMsg struct{ data []byte }

// rawCodec passes bytes through without marshal/unmarshal. It reports the
// proto name because the bytes on the wire already are protobuf.
type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	return v.(*rawMsg).data, nil
}
func (rawCodec) Unmarshal(data []byte, v any) error {
	m := v.(*rawMsg)
	m.data = append([]byte(nil), data...)
	return nil
}
func (rawCodec) Name() string { return "proto" }

func frame(flag byte, data []byte) []byte {
	f := make([]byte, 5+len(data))
	f[0] = flag
	binary.BigEndian.PutUint32(f[1:5], uint32(len(data)))
	copy(f[5:], data)
	return f
}

func writeError(w http.ResponseWriter, code codes.Code, msg string) {
	w.Header().Set("Content-Type", "application/grpc-web+proto")
	w.WriteHeader(http.StatusOK)
	w.Write(frame(0x80, []byte(fmt.Sprintf("grpc-status:%d\r\ngrpc-message:%s\r\n", code, msg))))
}

func writeSuccess(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/grpc-web+proto")
	w.WriteHeader(http.StatusOK)
	w.Write(frame(0x00, data))
	w.Write(frame(0x80, []byte("grpc-status:0\r\n")))
}
