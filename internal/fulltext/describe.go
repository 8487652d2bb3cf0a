package fulltext

import (
	"fmt"
	"strings"

	"quarry/internal/pathutil"
	"quarry/pkg/model"
)

// Describe renders a deterministic, human-readable explanation of an
// already-chosen plan. The index handle is re-acquired for the
// duration of the call; the plan was valid when built, so an
// unavailable index here is a fatal error, not a skip.
func (s *Selector) Describe(plan *IndexPlan) (string, error) {
	pr := plan.planResult()

	handle, err := s.registry.Acquire(pr.IndexPath, s.typeTag)
	if err != nil {
		return "", fmt.Errorf("acquiring %s for plan description: %w", pr.IndexPath, err)
	}
	if handle == nil {
		return "", fmt.Errorf("%w: the %s index at %s", ErrIndexUnavailable, s.typeTag, pr.IndexPath)
	}
	defer handle.Release()

	var b strings.Builder
	b.WriteString(s.typeTag)
	b.WriteString(":")
	b.WriteString(pathutil.Name(pr.IndexPath))
	b.WriteString("(")
	b.WriteString(pr.IndexPath)
	b.WriteString(") ")
	b.WriteString(handle.Searcher().RequestString(pr.Request))

	if len(plan.SortOrder) > 0 {
		b.WriteString(" ordering:")
		b.WriteString(formatOrder(plan.SortOrder))
	}
	if ft := plan.Filter.FullText; ft != nil {
		b.WriteString(" ft:(")
		b.WriteString(ft.String())
		b.WriteString(")")
	}
	appendSyncPlan(&b, plan, pr)
	return b.String(), nil
}

// appendSyncPlan adds the synchronous-restriction annotations: the
// resolved property restriction (with the original property name in
// brackets when the resolved name differs) and the node-type sync
// block.
func appendSyncPlan(b *strings.Builder, plan *IndexPlan, pr *PlanResult) {
	if res := pr.PropertyResult; res != nil {
		b.WriteString(" sync:(")
		b.WriteString(res.Name)
		if res.Name != res.Restriction.Property {
			b.WriteString("[")
			b.WriteString(res.Restriction.Property)
			b.WriteString("]")
		}
		b.WriteString(" ")
		b.WriteString(res.Restriction.String())
		b.WriteString(")")
	}

	if pr.SyncNodeTypes {
		b.WriteString(" sync:(nodeType")
		b.WriteString(" primaryTypes : ")
		b.WriteString(model.TypeSet(plan.Filter.PrimaryTypes))
		b.WriteString(" mixinTypes : ")
		b.WriteString(model.TypeSet(plan.Filter.MixinTypes))
		b.WriteString(")")
	}
}
