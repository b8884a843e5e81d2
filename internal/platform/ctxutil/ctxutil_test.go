package ctxutil

import (
	"context"
	"testing"
)

func TestRequestAndTraceData(t *testing.T) {
	ctx := context.Background()
	if CallerID(ctx) != "" || RequestID(ctx) != "" {
		t.Fatalf("expected empty identity on bare context")
	}
	ctx = WithRequestData(ctx, &RequestData{CallerID: "2016011000", SelfAccess: true})
	ctx = WithTraceData(ctx, &TraceData{TraceID: "t", RequestID: "r"})
	if got := CallerID(ctx); got != "2016011000" {
		t.Fatalf("CallerID: got %q", got)
	}
	if !GetRequestData(ctx).SelfAccess {
		t.Fatalf("expected self access flag")
	}
	if got := RequestID(ctx); got != "r" {
		t.Fatalf("RequestID: got %q", got)
	}
	var unset context.Context
	if Default(unset) == nil {
		t.Fatalf("Default(nil) returned nil")
	}
}
