package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestValues(t *testing.T) {
	ctx := WithOp(WithAccountID(WithRequestID(context.Background(), "r1"), "acc"), "login")
	if v, ok := RequestID(ctx); !ok || v != "r1" {
		t.Fatalf("RequestID = %q, %v", v, ok)
	}
	if v, ok := AccountID(ctx); !ok || v != "acc" {
		t.Fatalf("AccountID = %q, %v", v, ok)
	}
	if v, ok := Op(ctx); !ok || v != "login" {
		t.Fatalf("Op = %q, %v", v, ok)
	}
	if _, ok := Op(context.Background()); ok {
		t.Fatal("empty context must not carry op")
	}
}

func TestWithDBTimeout_RespectsParent(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	ctx, cancel2 := WithDBTimeout(parent)
	defer cancel2()
	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected deadline")
	}
	if time.Until(dl) > 200*time.Millisecond {
		t.Fatalf("deadline %v exceeds parent", time.Until(dl))
	}
}
