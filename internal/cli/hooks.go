package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/famtree/pkg/observability"
)

// logHooks reports pipeline and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnLoadStart(_ context.Context, size int) {
	h.logger.Debug("load start", "bytes", size)
}

func (h logHooks) OnLoadComplete(_ context.Context, members int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "error", err, "duration", d)
		return
	}
	h.logger.Debug("load done", "members", members, "duration", d)
}

func (h logHooks) OnLayoutStart(_ context.Context, rootID, nodes int) {
	h.logger.Debug("layout start", "root", rootID, "nodes", nodes)
}

func (h logHooks) OnLayoutComplete(_ context.Context, rootID int, d time.Duration) {
	h.logger.Debug("layout done", "root", rootID, "duration", d)
}

func (h logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render done", "formats", formats, "duration", d, "error", err)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

// enableTracing routes observability events to the logger.
func enableTracing(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
}
