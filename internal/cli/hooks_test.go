package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/famtree/pkg/observability"
)

var (
	_ observability.PipelineHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
)

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := logHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnLoadComplete(ctx, 4, time.Millisecond, nil)
	h.OnLoadComplete(ctx, 0, time.Millisecond, errors.New("bad json"))
	h.OnCacheHit(ctx, "frame")

	out := buf.String()
	for _, want := range []string{"load done", "members=4", "load failed", "bad json", "cache hit", "type=frame"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestEnableTracing(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	enableTracing(newLogger(&buf, log.DebugLevel))
	observability.Pipeline().OnRenderStart(context.Background(), []string{"svg"})

	if !strings.Contains(buf.String(), "render start") {
		t.Errorf("Pipeline() hooks not routed to logger, got %q", buf.String())
	}
}
