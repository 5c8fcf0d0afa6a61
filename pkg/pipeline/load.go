package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/observability"
)

// Load parses a tree document, reporting to the pipeline hooks.
func Load(ctx context.Context, raw []byte) (*family.Tree, error) {
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, len(raw))

	tree, err := family.Load(raw)
	if err != nil {
		hooks.OnLoadComplete(ctx, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnLoadComplete(ctx, tree.Len(), time.Since(start), nil)
	return tree, nil
}

// ResolveRoot returns the root option with the given ID, or a
// SELECTION_ERROR naming the valid choices.
func ResolveRoot(tree *family.Tree, id int) (*family.Member, error) {
	if !tree.IsRootOption(id) {
		return nil, errors.New(errors.ErrCodeSelection,
			"member %d is not a root option (choose one of %v)", id, rootIDs(tree))
	}
	m, _ := tree.Member(id)
	return m, nil
}

func rootIDs(tree *family.Tree) []int {
	opts := tree.RootOptions()
	ids := make([]int, len(opts))
	for i, m := range opts {
		ids[i] = m.ID
	}
	return ids
}
