package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/layout"
	"github.com/matzehuels/famtree/pkg/observability"
)

// ComputeLayout positions the subtree under root on the options' canvas.
func ComputeLayout(ctx context.Context, root *family.Member, opts Options) layout.Result {
	opts.SetLayoutDefaults()

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, root.ID, root.Size())
	res := layout.Compute(root, opts.Canvas())
	hooks.OnLayoutComplete(ctx, root.ID, time.Since(start))
	return res
}
