package grpcweb

import (
	"bytes"
	"context"
	"encoding/binary"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"clinic-scheduler/internal/clinic"
	"clinic-scheduler/internal/handler"
	"clinic-scheduler/internal/snapshot"
)

func newBridge(t *testing.T) *Bridge {
	t.Helper()
	repo := snapshot.NewFileRepo(filepath.Join(t.TempDir(), "hospital_data.json"))
	svc, err := clinic.Open(context.Background(), repo, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	handler.Register(srv, handler.New(svc))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	b := NewFromConn(conn, zerolog.Nop())
	t.Cleanup(func() { b.Close() })
	return b
}

func call(t *testing.T, b *Bridge, method string, in map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	msg, err := structpb.NewStruct(in)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, "/"+handler.ServiceName+"/"+method, bytes.NewReader(frame(0x00, data)))
	r.Header.Set("Content-Type", "application/grpc-web+proto")
	w := httptest.NewRecorder()
	b.Handler().ServeHTTP(w, r)
	return w
}

// frames splits a grpc-web response into its data message and trailer text.
func frames(t *testing.T, body []byte) (data []byte, trailer string) {
	t.Helper()
	for len(body) >= 5 {
		n := binary.BigEndian.Uint32(body[1:5])
		chunk := body[5 : 5+n]
		if body[0]&0x80 != 0 {
			trailer = string(chunk)
		} else {
			data = chunk
		}
		body = body[5+n:]
	}
	return data, trailer
}

func TestReadFrame(t *testing.T) {
	tests := []struct {
		name    string
		body    []byte
		want    string
		wantErr bool
	}{
		{"ok", frame(0x00, []byte("abc")), "abc", false},
		{"trailing bytes ignored", append(frame(0x00, []byte("ab")), 1, 2), "ab", false},
		{"too short", []byte{0, 0, 0}, "", true},
		{"length past end", []byte{0, 0, 0, 0, 9, 'a'}, "", true},
		{"trailer frame", frame(0x80, []byte("x")), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readFrame(tt.body)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBridgeForwardsCall(t *testing.T) {
	b := newBridge(t)

	w := call(t, b, "AddPatient", map[string]any{"name": "A", "age": 30})
	data, trailer := frames(t, w.Body.Bytes())
	if !strings.Contains(trailer, "grpc-status:0") {
		t.Fatalf("unexpected trailer %q", trailer)
	}
	out := new(structpb.Struct)
	if err := proto.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.GetFields()["index"].GetNumberValue() != 0 {
		t.Errorf("unexpected reply %v", out)
	}
}

func TestBridgeCarriesStatus(t *testing.T) {
	b := newBridge(t)

	w := call(t, b, "BookAppointment", map[string]any{"slot": "9am"})
	_, trailer := frames(t, w.Body.Bytes())
	if !strings.Contains(trailer, "grpc-status:3\r\n") {
		t.Errorf("expected InvalidArgument trailer, got %q", trailer)
	}
	if w.Code != http.StatusOK {
		t.Errorf("grpc-web errors travel in the trailer, got HTTP %d", w.Code)
	}
}

func TestBridgeRejectsNonGRPCWeb(t *testing.T) {
	b := newBridge(t)

	r := httptest.NewRequest(http.MethodPost, "/"+handler.ServiceName+"/ListPatients", strings.NewReader("{}"))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	b.Handler().ServeHTTP(w, r)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodOptions, "/"+handler.ServiceName+"/ListPatients", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	w = httptest.NewRecorder()
	b.Handler().ServeHTTP(w, r)
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("preflight: %d %q", w.Code, w.Header().Get("Access-Control-Allow-Origin"))
	}
	if allowed := w.Header().Get("Access-Control-Allow-Headers"); strings.Contains(allowed, "Authorization") {
		t.Errorf("preflight must not allow credentials, got %q", allowed)
	}
}
