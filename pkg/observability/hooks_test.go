package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopRenderHooks{}
	r.OnRenderStart(ctx, []string{"png"})
	r.OnRenderComplete(ctx, []string{"png"}, 37, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "render")
	c.OnCacheMiss(ctx, "render")
	c.OnCacheSet(ctx, "render", 1024)

	s := NoopServerHooks{}
	s.OnRequest(ctx, "POST", "/api/v1/renders")
	s.OnResponse(ctx, "POST", "/api/v1/renders", 201, time.Millisecond)
}

type countingRenderHooks struct {
	NoopRenderHooks
	starts, completes int
}

func (h *countingRenderHooks) OnRenderStart(context.Context, []string) { h.starts++ }
func (h *countingRenderHooks) OnRenderComplete(context.Context, []string, int, time.Duration, error) {
	h.completes++
}

func TestSetAndResetHooks(t *testing.T) {
	defer Reset()

	h := &countingRenderHooks{}
	SetRenderHooks(h)

	Render().OnRenderStart(context.Background(), []string{"png"})
	Render().OnRenderComplete(context.Background(), []string{"png"}, 1, 0, nil)
	if h.starts != 1 || h.completes != 1 {
		t.Errorf("hooks not invoked: starts=%d completes=%d", h.starts, h.completes)
	}

	Reset()
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Reset should restore the no-op render hooks")
	}
}

func TestSetNilHooksKeepsCurrent(t *testing.T) {
	defer Reset()

	h := &countingRenderHooks{}
	SetRenderHooks(h)
	SetRenderHooks(nil)

	Render().OnRenderStart(context.Background(), nil)
	if h.starts != 1 {
		t.Error("nil registration should keep the existing hooks")
	}
}
