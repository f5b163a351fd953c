package grpc

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

var testInfo = &grpc.UnaryServerInfo{FullMethod: FullMethod("BookMeeting")}

func noop(ctx context.Context, req any) (any, error) { return "ok", nil }

func peerCtx(ip string, port int) context.Context {
	return peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP(ip), Port: port}})
}

func TestRequestTimeout_AddsDeadline(t *testing.T) {
	interceptor := RequestTimeout(time.Second)

	_, err := interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req any) (any, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Fatalf("expected a deadline on the handler context")
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequestTimeout_KeepsCallerDeadline(t *testing.T) {
	want := time.Now().Add(time.Hour)
	ctx, cancel := context.WithDeadline(context.Background(), want)
	defer cancel()

	_, err := RequestTimeout(time.Second)(ctx, nil, testInfo, func(ctx context.Context, req any) (any, error) {
		if got, _ := ctx.Deadline(); !got.Equal(want) {
			t.Fatalf("deadline = %v, want %v", got, want)
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequestID_StoresCallerIDOnContext(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(requestIDHeader, " req-7 "))

	var got string
	_, err := RequestID(slog.Default())(ctx, nil, testInfo, func(ctx context.Context, req any) (any, error) {
		got = RequestIDFromContext(ctx)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "req-7" {
		t.Fatalf("request id = %q, want req-7", got)
	}
}

func TestRequestID_MintsIDWhenMissing(t *testing.T) {
	var got string
	_, err := RequestID(slog.Default())(context.Background(), nil, testInfo, func(ctx context.Context, req any) (any, error) {
		got = RequestIDFromContext(ctx)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 36 {
		t.Fatalf("request id = %q, want a uuid", got)
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Fatalf("bare context reported a request id")
	}
}

func TestRateLimit_PerPeer(t *testing.T) {
	interceptor := RateLimit(NewPeerLimiter(0.001, 1))

	if _, err := interceptor(peerCtx("10.0.0.1", 4000), nil, testInfo, noop); err != nil {
		t.Fatalf("first call rejected: %v", err)
	}
	_, err := interceptor(peerCtx("10.0.0.1", 4001), nil, testInfo, noop)
	if status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("same host on another port: code = %v, want ResourceExhausted", status.Code(err))
	}
	if _, err := interceptor(peerCtx("10.0.0.2", 4000), nil, testInfo, noop); err != nil {
		t.Fatalf("other host rejected: %v", err)
	}
}

func TestPeerLimiter_EvictsIdleHosts(t *testing.T) {
	p := newPeerLimiter(0.001, 1, 20*time.Millisecond)

	if !p.Allow("10.0.0.1") {
		t.Fatalf("first call rejected")
	}
	if p.Allow("10.0.0.1") {
		t.Fatalf("bucket not exhausted")
	}

	time.Sleep(60 * time.Millisecond)

	if !p.Allow("10.0.0.1") {
		t.Fatalf("idle host kept its exhausted bucket")
	}
}

func TestPeerLimiter_ActiveHostKeepsBucket(t *testing.T) {
	p := newPeerLimiter(0.001, 1, 200*time.Millisecond)

	if !p.Allow("10.0.0.1") {
		t.Fatalf("first call rejected")
	}
	for i := 0; i < 3; i++ {
		time.Sleep(20 * time.Millisecond)
		if p.Allow("10.0.0.1") {
			t.Fatalf("call %d allowed on an exhausted bucket", i)
		}
	}
}

func TestRateLimit_DisabledWhenRateNotPositive(t *testing.T) {
	interceptor := RateLimit(NewPeerLimiter(0, 1))
	for i := 0; i < 5; i++ {
		if _, err := interceptor(context.Background(), nil, testInfo, noop); err != nil {
			t.Fatalf("call %d rejected: %v", i, err)
		}
	}
}

func TestCodec_EmptyPayload(t *testing.T) {
	var e Empty
	if err := (Codec{}).Unmarshal(nil, &e); err != nil {
		t.Fatalf("Unmarshal(nil) error: %v", err)
	}

	b, err := Codec{}.Marshal(&CancelMeetingRequest{MeetingID: 7, PersonID: 2})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var got map[string]int64
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("output is not JSON: %s", b)
	}
	if len(got) != 2 || got["meeting_id"] != 7 || got["person_id"] != 2 {
		t.Fatalf("payload = %s", b)
	}
}
