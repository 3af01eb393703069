package alias

import (
	"context"
	"testing"
)

func TestStaticManagerRoundTrip(t *testing.T) {
	m := NewStaticManager()
	ctx := context.Background()

	if _, ok, err := m.Resolve(ctx, "ortho"); ok || err != nil {
		t.Fatalf("expected miss before Put, got ok=%v err=%v", ok, err)
	}
	if err := m.Put(ctx, "ortho", "ORTHOPHOTO_2023"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	canonical, ok, err := m.Resolve(ctx, "ortho")
	if err != nil || !ok {
		t.Fatalf("Resolve after Put: canonical=%q ok=%v err=%v", canonical, ok, err)
	}
	if canonical != "ORTHOPHOTO_2023" {
		t.Fatalf("got %q, want ORTHOPHOTO_2023", canonical)
	}
}
