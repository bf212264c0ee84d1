package interceptors

import (
	"context"
	"testing"
)

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	got, ok := GetRequestID(ctx)
	if !ok || got != "req-1" {
		t.Errorf("GetRequestID = %q, %v; want req-1, true", got, ok)
	}
}

func TestGetRequestID_ReturnsFalseWhenNotSet(t *testing.T) {
	if _, ok := GetRequestID(context.Background()); ok {
		t.Error("GetRequestID should be false on a bare context")
	}
}

func TestBearerToken_RoundTrip(t *testing.T) {
	ctx := WithBearerToken(context.Background(), "tok")
	got, ok := GetBearerToken(ctx)
	if !ok || got != "tok" {
		t.Errorf("GetBearerToken = %q, %v; want tok, true", got, ok)
	}
}

func TestGetBearerToken_EmptyIsUnset(t *testing.T) {
	if _, ok := GetBearerToken(context.Background()); ok {
		t.Error("GetBearerToken should be false on a bare context")
	}
	if _, ok := GetBearerToken(WithBearerToken(context.Background(), "")); ok {
		t.Error("GetBearerToken should be false for an empty token")
	}
}

func TestContext_Isolation(t *testing.T) {
	parent := WithRequestID(context.Background(), "parent")
	child := WithRequestID(parent, "child")

	if got, _ := GetRequestID(parent); got != "parent" {
		t.Errorf("parent request id = %q, want parent", got)
	}
	if got, _ := GetRequestID(child); got != "child" {
		t.Errorf("child request id = %q, want child", got)
	}
}
