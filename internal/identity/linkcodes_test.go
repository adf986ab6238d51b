package identity

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLinkCodes_SingleUse(t *testing.T) {
	m := NewMemoryLinkCodes()
	ctx := context.Background()
	if err := m.Put(ctx, "AB12CD34", "acc-1", time.Minute); err != nil {
		t.Fatal(err)
	}
	got, err := m.Take(ctx, "AB12CD34")
	if err != nil || got != "acc-1" {
		t.Fatalf("first take: %q %v", got, err)
	}
	got, _ = m.Take(ctx, "AB12CD34")
	if got != "" {
		t.Fatalf("code reused: %q", got)
	}
}

func TestMemoryLinkCodes_Expired(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	m := NewMemoryLinkCodes()
	m.now = func() time.Time { return now }
	_ = m.Put(context.Background(), "X", "acc-1", time.Minute)

	now = now.Add(2 * time.Minute)
	if got, _ := m.Take(context.Background(), "X"); got != "" {
		t.Fatalf("expired code accepted: %q", got)
	}
}
