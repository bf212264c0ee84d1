package interceptors

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestBearerUnary_SetsToken(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.New(map[string]string{
		"authorization": "Bearer token123",
	}))
	var seen string
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		seen, _ = GetBearerToken(ctx)
		return "success", nil
	}

	resp, err := BearerUnary()(ctx, "request", &grpc.UnaryServerInfo{FullMethod: "/auth.v1.AuthService/VerifySession"}, handler)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if resp != "success" {
		t.Errorf("response = %v, want success", resp)
	}
	if seen != "token123" {
		t.Errorf("token in context = %q, want token123", seen)
	}
}

func TestBearerUnary_NoTokenPassesThrough(t *testing.T) {
	called := false
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		called = true
		if _, ok := GetBearerToken(ctx); ok {
			t.Error("no token should be set")
		}
		return nil, nil
	}
	if _, err := BearerUnary()(context.Background(), "request", &grpc.UnaryServerInfo{FullMethod: "/x/Y"}, handler); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if !called {
		t.Error("handler should be called")
	}
}

func TestExtractBearer(t *testing.T) {
	testCases := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "Bearer token123", "token123"},
		{"case insensitive", "bearer token123", "token123"},
		{"invalid prefix", "Basic token123", ""},
		{"whitespace", "  Bearer   token123  ", "token123"},
		{"too short", "Bear", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := metadata.NewIncomingContext(context.Background(), metadata.New(map[string]string{
				"authorization": tc.header,
			}))
			if got := extractBearer(ctx); got != tc.want {
				t.Errorf("extractBearer = %q, want %q", got, tc.want)
			}
		})
	}
	if got := extractBearer(context.Background()); got != "" {
		t.Errorf("extractBearer without metadata = %q, want empty", got)
	}
}
