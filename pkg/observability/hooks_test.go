package observability

import (
	"context"
	"testing"
	"time"
)

type recordingPipelineHooks struct {
	NoopPipelineHooks
	renders int
	exports int
}

func (h *recordingPipelineHooks) OnRenderStart(ctx context.Context, page int) { h.renders++ }
func (h *recordingPipelineHooks) OnExportComplete(ctx context.Context, format string, size int, d time.Duration, err error) {
	h.exports++
}

type recordingCacheHooks struct {
	NoopCacheHooks
	hits, misses int
}

func (h *recordingCacheHooks) OnCacheHit(ctx context.Context, keyType string)  { h.hits++ }
func (h *recordingCacheHooks) OnCacheMiss(ctx context.Context, keyType string) { h.misses++ }

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	// Must not panic.
	Pipeline().OnRenderStart(ctx, 1)
	Pipeline().OnExportComplete(ctx, "png", 100, time.Second, nil)
	Cache().OnCacheHit(ctx, "page")
	HTTP().OnRequest(ctx, "GET", "example.com", "/api/products")
}

func TestSetPipelineHooks(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	h := &recordingPipelineHooks{}
	SetPipelineHooks(h)

	ctx := context.Background()
	Pipeline().OnRenderStart(ctx, 1)
	Pipeline().OnRenderStart(ctx, 2)
	Pipeline().OnExportComplete(ctx, "zip", 1024, time.Millisecond, nil)

	if h.renders != 2 {
		t.Errorf("renders = %d, want 2", h.renders)
	}
	if h.exports != 1 {
		t.Errorf("exports = %d, want 1", h.exports)
	}
}

func TestSetCacheHooks(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	h := &recordingCacheHooks{}
	SetCacheHooks(h)

	ctx := context.Background()
	Cache().OnCacheHit(ctx, "page")
	Cache().OnCacheMiss(ctx, "http")

	if h.hits != 1 || h.misses != 1 {
		t.Errorf("hits = %d, misses = %d, want 1 and 1", h.hits, h.misses)
	}
}

func TestSetNilIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	SetPipelineHooks(nil)
	SetCacheHooks(nil)
	SetHTTPHooks(nil)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("nil registration replaced the no-op pipeline hooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("nil registration replaced the no-op cache hooks")
	}
}
