package coarsening

import (
	"context"
	"sort"

	"github.com/hyperpart/internal/hypergraph"
	"github.com/hyperpart/pkg/parallel"
)

// Options configures a community-parallel coarsening pass.
type Options struct {
	// Pool configures the worker pool shared by all phases.
	Pool parallel.PoolConfig

	// RespectNodeOrder keeps local hypernode ids sorted by parent id.
	RespectNodeOrder bool

	// CommunityNodeLimit is the number of enabled community members each
	// community keeps after contraction.
	CommunityNodeLimit int
}

// DefaultOptions returns the default coarsening options.
func DefaultOptions() Options {
	return Options{
		Pool:               parallel.DefaultPoolConfig(),
		RespectNodeOrder:   true,
		CommunityNodeLimit: 2,
	}
}

// Result holds the outcome of one coarsening pass.
type Result struct {
	// Subs are the community subhypergraphs in ascending community order.
	Subs []*Subhypergraph

	// History is the global contraction history in parent ids.
	History []hypergraph.Memento

	// Communities lists the distinct community ids, ascending.
	Communities []int
}

// Coarsen runs one full community-parallel coarsening pass over h:
// extraction of every community, independent contraction inside each, and
// the three-phase merge-back. On return, h holds the coarsened state with
// its incidence array ready for uncontraction.
func Coarsen(ctx context.Context, h *hypergraph.Hypergraph, opts Options) (*Result, error) {
	communities := distinctCommunities(h)

	pool := parallel.NewWorkerPool[int, *Subhypergraph](opts.Pool)
	extracted := pool.ExecuteFunc(ctx, communities, func(ctx context.Context, c int) (*Subhypergraph, error) {
		return Extract(h, c, opts.RespectNodeOrder), nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	subs := make([]*Subhypergraph, len(extracted))
	for i, r := range extracted {
		subs[i] = r.Result
	}

	if err := parallel.ForEach(ctx, subs, opts.Pool, func(ctx context.Context, s *Subhypergraph) error {
		CoarsenCommunity(s, opts.CommunityNodeLimit)
		return ctx.Err()
	}); err != nil {
		return nil, err
	}

	// Global history: community-ascending order, local order preserved.
	var history []hypergraph.Memento
	for _, s := range subs {
		for _, m := range s.History {
			history = append(history, hypergraph.Memento{
				U: s.LocalToGlobalNode[m.U],
				V: s.LocalToGlobalNode[m.V],
			})
		}
	}

	Merge(ctx, opts.Pool, h, subs, history)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Result{
		Subs:        subs,
		History:     history,
		Communities: communities,
	}, nil
}

// distinctCommunities returns the community ids of the enabled hypernodes
// in ascending order.
func distinctCommunities(h *hypergraph.Hypergraph) []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, v := range h.Nodes() {
		c := h.CommunityID(v)
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			ids = append(ids, c)
		}
	}
	sort.Ints(ids)
	return ids
}
