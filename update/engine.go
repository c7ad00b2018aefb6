package update

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/omtsf/omtsf-go/graph"
	"github.com/omtsf/omtsf-go/identity"
	"github.com/omtsf/omtsf-go/merge"
)

// Engine applies same-origin updates. Engines are safe for concurrent use;
// every run builds its own state.
type Engine struct {
	policy UnmatchedNodePolicy
	logger *slog.Logger
	tracer trace.Tracer
}

// NewEngine creates an update engine with PolicyRetain.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		policy: PolicyRetain,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Warning describes a match the engine declined to make.
type Warning struct {
	// ID is a unique identifier for this warning instance.
	ID string `json:"id"`

	// NodeID is the new-file node the warning concerns.
	NodeID string `json:"node_id"`

	Message string `json:"message"`
}

// Metadata summarizes one update run.
type Metadata struct {
	OperationID string    `json:"operation_id"`
	Operation   string    `json:"operation"`
	Timestamp   time.Time `json:"timestamp"`

	BaseFingerprint string              `json:"base_fingerprint"`
	NewFingerprint  string              `json:"new_fingerprint"`
	Policy          UnmatchedNodePolicy `json:"policy"`

	NodesMatched  int `json:"nodes_matched"`
	NodesInserted int `json:"nodes_inserted"`
	NodesRetained int `json:"nodes_retained"`
	NodesFlagged  int `json:"nodes_flagged"`
	NodesExpired  int `json:"nodes_expired"`
	EdgesOut      int `json:"edges_out"`
	ConflictCount int `json:"conflict_count"`
	WarningCount  int `json:"warning_count"`
}

// Update reconciles the next export against the base export from the same
// source system. Inputs are never mutated. Matched base nodes keep their
// file-local ids; the next export's property values win, with replaced values
// recorded under "_conflicts".
func (e *Engine) Update(ctx context.Context, base, next *graph.File) (*graph.File, *Metadata, []Warning, error) {
	if e.tracer != nil {
		var span trace.Span
		ctx, span = e.tracer.Start(ctx, "omtsf.update")
		defer span.End()
	}
	_ = ctx

	if base == nil || next == nil {
		return nil, nil, nil, ErrNilInput
	}
	if !e.policy.Valid() {
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, e.policy)
	}
	for _, f := range []*graph.File{base, next} {
		if err := f.Validate(); err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		for _, n := range f.Nodes {
			if err := identity.ValidateNodeIdentifiers(n); err != nil {
				return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
		}
	}
	if e.policy == PolicyExpire && next.SnapshotDate == nil {
		return nil, nil, nil, ErrMissingSnapshotDate
	}

	meta := &Metadata{
		OperationID:     uuid.NewString(),
		Operation:       "update",
		Timestamp:       time.Now().UTC(),
		BaseFingerprint: merge.Fingerprint(base),
		NewFingerprint:  merge.Fingerprint(next),
		Policy:          e.policy,
	}

	// Index base nodes by internal identifier. The same internal id on
	// several base nodes makes every match through it ambiguous.
	baseIndex := make(map[string][]int)
	for bi, n := range base.Nodes {
		for _, key := range internalKeys(n) {
			baseIndex[key] = append(baseIndex[key], bi)
		}
	}

	// Match each new node to at most one base node.
	var warnings []Warning
	// matchOf maps new node index to base node index; claimedBy is the
	// reverse, guarding the at-most-one-match rule.
	matchOf := make(map[int]int)
	claimedBy := make(map[int]int)
	for ni, n := range next.Nodes {
		candidates := make(map[int]struct{})
		for _, key := range internalKeys(n) {
			for _, bi := range baseIndex[key] {
				candidates[bi] = struct{}{}
			}
		}
		switch len(candidates) {
		case 0:
			continue
		case 1:
			var bi int
			for bi = range candidates {
			}
			if prev, taken := claimedBy[bi]; taken {
				warnings = append(warnings, Warning{
					ID:     uuid.NewString(),
					NodeID: n.ID,
					Message: fmt.Sprintf("base node %q already matched by %q; inserting %q as new",
						base.Nodes[bi].ID, next.Nodes[prev].ID, n.ID),
				})
				continue
			}
			matchOf[ni] = bi
			claimedBy[bi] = ni
		default:
			warnings = append(warnings, Warning{
				ID:     uuid.NewString(),
				NodeID: n.ID,
				Message: fmt.Sprintf("internal identifiers of node %q match %d base nodes; inserting as new",
					n.ID, len(candidates)),
			})
		}
	}

	// Assemble output nodes in base order, then inserts in new order.
	usedIDs := make(map[string]struct{}, len(base.Nodes))
	for _, n := range base.Nodes {
		usedIDs[n.ID] = struct{}{}
	}
	newToOut := make(map[string]string, len(next.Nodes))
	expired := make(map[string]struct{})

	var outNodes []graph.Node
	for bi, bn := range base.Nodes {
		if ni, ok := claimedBy[bi]; ok {
			merged, conflicts := reconcileNodes(bn, next.Nodes[ni])
			meta.NodesMatched++
			meta.ConflictCount += conflicts
			newToOut[next.Nodes[ni].ID] = merged.ID
			outNodes = append(outNodes, merged)
			continue
		}
		out := bn.Clone()
		switch e.policy {
		case PolicyRetain:
			meta.NodesRetained++
		case PolicyFlag:
			out.Labels = addLabel(out.Labels, FlagLabelKey, FlagLabelValue)
			meta.NodesFlagged++
		case PolicyExpire:
			if out.ValidTo == nil {
				d := *next.SnapshotDate
				out.ValidTo = &d
			}
			expired[out.ID] = struct{}{}
			meta.NodesExpired++
		}
		outNodes = append(outNodes, out)
	}

	insertSeq := 0
	for ni, n := range next.Nodes {
		if _, ok := matchOf[ni]; ok {
			continue
		}
		out := n.Clone()
		if _, taken := usedIDs[out.ID]; taken {
			for {
				id := fmt.Sprintf("u-%d", insertSeq)
				insertSeq++
				if _, dup := usedIDs[id]; !dup {
					out.ID = id
					break
				}
			}
		}
		usedIDs[out.ID] = struct{}{}
		newToOut[n.ID] = out.ID
		meta.NodesInserted++
		outNodes = append(outNodes, out)
	}

	// Edges: base edges carry over with their ids; new edges are remapped and
	// folded into matching base edges where the identity predicate agrees.
	nodeRep := make(map[string]int, len(outNodes))
	for i, n := range outNodes {
		nodeRep[n.ID] = i
	}

	var outEdges []graph.Edge
	usedEdgeIDs := make(map[string]struct{}, len(base.Edges))
	for _, be := range base.Edges {
		out := be.Clone()
		if _, gone := expired[out.Source]; gone && out.ValidTo == nil {
			d := *next.SnapshotDate
			out.ValidTo = &d
		}
		usedEdgeIDs[out.ID] = struct{}{}
		outEdges = append(outEdges, out)
	}

	edgeSeq := 0
	freeEdgeID := func(want string) string {
		if _, taken := usedEdgeIDs[want]; !taken {
			return want
		}
		for {
			id := fmt.Sprintf("eu-%d", edgeSeq)
			edgeSeq++
			if _, taken := usedEdgeIDs[id]; !taken {
				return id
			}
		}
	}

	for _, ne := range next.Edges {
		remapped := ne.Clone()
		remapped.Source = newToOut[ne.Source]
		remapped.Target = newToOut[ne.Target]

		if ne.Type == graph.EdgeSameAs {
			if sameAsPresent(outEdges, remapped) {
				continue
			}
			remapped.ID = freeEdgeID(remapped.ID)
			usedEdgeIDs[remapped.ID] = struct{}{}
			outEdges = append(outEdges, remapped)
			continue
		}

		folded := false
		for i := range outEdges {
			have := &outEdges[i]
			srcRep, tgtRep := nodeRep[have.Source], nodeRep[have.Target]
			nsRep, ntRep := nodeRep[remapped.Source], nodeRep[remapped.Target]
			if identity.EdgesMatch(srcRep, tgtRep, nsRep, ntRep, *have, remapped) {
				meta.ConflictCount += reconcileEdge(have, remapped)
				folded = true
				break
			}
		}
		if folded {
			continue
		}
		remapped.ID = freeEdgeID(remapped.ID)
		usedEdgeIDs[remapped.ID] = struct{}{}
		outEdges = append(outEdges, remapped)
	}

	out := &graph.File{
		SpecVersion:     pick(next.SpecVersion, base.SpecVersion),
		ReportingEntity: base.ReportingEntity,
		Nodes:           outNodes,
		Edges:           outEdges,
	}
	if next.SnapshotDate != nil {
		d := *next.SnapshotDate
		out.SnapshotDate = &d
	} else if base.SnapshotDate != nil {
		d := *base.SnapshotDate
		out.SnapshotDate = &d
	}
	out.DisclosureScope = pickScope(next.DisclosureScope, base.DisclosureScope)
	out.FileSalt = graph.FileSalt(pick(string(next.FileSalt), string(base.FileSalt)))
	if out.ReportingEntity == "" && next.ReportingEntity != "" {
		out.ReportingEntity = newToOut[next.ReportingEntity]
	}

	if err := out.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrPostUpdateValidation, err)
	}

	meta.EdgesOut = len(outEdges)
	meta.WarningCount = len(warnings)

	e.logger.Debug("update complete",
		"operation_id", meta.OperationID,
		"policy", meta.Policy,
		"matched", meta.NodesMatched,
		"inserted", meta.NodesInserted,
		"conflicts", meta.ConflictCount,
		"warnings", meta.WarningCount)

	return out, meta, warnings, nil
}

// internalKeys returns the match keys of a node's internal-scheme
// identifiers: authority lowered, value verbatim.
func internalKeys(n graph.Node) []string {
	var keys []string
	for _, id := range n.Identifiers {
		if id.Scheme != "internal" {
			continue
		}
		keys = append(keys, strings.ToLower(id.Authority)+"\x00"+id.Value)
	}
	return keys
}

type propertyCarrier interface {
	Properties() map[string]any
	SetProperty(key string, value any)
}

// overwriteProps applies the next export's property values over the base's,
// recording every replacement as a conflict sourced "base" and "new".
func overwriteProps(dst propertyCarrier, baseProps, nextProps map[string]any) []merge.Conflict {
	fields := make([]string, 0, len(nextProps))
	for k := range nextProps {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	var conflicts []merge.Conflict
	for _, field := range fields {
		nv := nextProps[field]
		dst.SetProperty(field, nv)
		bv, had := baseProps[field]
		if !had || fmt.Sprintf("%v", bv) == fmt.Sprintf("%v", nv) {
			continue
		}
		values := []merge.ConflictValue{
			{Value: bv, Sources: []string{"base"}},
			{Value: nv, Sources: []string{"new"}},
		}
		sort.Slice(values, func(i, j int) bool {
			return fmt.Sprintf("%v", values[i].Value) < fmt.Sprintf("%v", values[j].Value)
		})
		conflicts = append(conflicts, merge.Conflict{Field: field, Values: values})
	}
	return conflicts
}

func setConflicts(extra map[string]any, conflicts []merge.Conflict) map[string]any {
	v := merge.ConflictsValue(conflicts)
	if v == nil {
		return extra
	}
	if extra == nil {
		extra = make(map[string]any)
	}
	extra["_conflicts"] = v
	return extra
}

// reconcileNodes folds one matched new node into its base counterpart. The
// result keeps the base id; identifiers are additive.
func reconcileNodes(bn, nn graph.Node) (graph.Node, int) {
	out := bn.Clone()

	conflicts := overwriteProps(&out, bn.Properties(), nn.Properties())
	out.Extra = setConflicts(out.Extra, conflicts)

	seen := make(map[string]struct{}, len(out.Identifiers))
	for _, id := range out.Identifiers {
		seen[id.Key()] = struct{}{}
	}
	for _, id := range nn.Identifiers {
		if _, dup := seen[id.Key()]; dup {
			continue
		}
		seen[id.Key()] = struct{}{}
		out.Identifiers = append(out.Identifiers, id.Clone())
	}
	identity.SortIdentifiersCanonical(out.Identifiers)

	for _, l := range nn.Labels {
		out.Labels = addLabel(out.Labels, l.Key, l.Value)
	}

	nc := nn.Clone()
	if nc.ValidFrom != nil {
		out.ValidFrom = nc.ValidFrom
	}
	if nc.ValidTo != nil {
		out.ValidTo = nc.ValidTo
	}
	if nc.DataQuality != nil {
		out.DataQuality = nc.DataQuality
	}
	return out, len(conflicts)
}

// reconcileEdge folds one remapped new edge into a matching base edge
// in place, keeping the base edge's id.
func reconcileEdge(have *graph.Edge, next graph.Edge) int {
	conflicts := overwriteProps(have, have.Properties(), next.Properties())
	have.Extra = setConflicts(have.Extra, conflicts)

	seen := make(map[string]struct{}, len(have.Identifiers))
	for _, id := range have.Identifiers {
		seen[id.Key()] = struct{}{}
	}
	for _, id := range next.Identifiers {
		if _, dup := seen[id.Key()]; dup {
			continue
		}
		seen[id.Key()] = struct{}{}
		have.Identifiers = append(have.Identifiers, id.Clone())
	}
	identity.SortIdentifiersCanonical(have.Identifiers)

	for _, l := range next.Labels {
		have.Labels = addLabel(have.Labels, l.Key, l.Value)
	}
	if next.ValidFrom != nil {
		have.ValidFrom = next.ValidFrom
	}
	if next.ValidTo != nil {
		have.ValidTo = next.ValidTo
	}
	if next.DataQuality != nil {
		have.DataQuality = next.DataQuality
	}
	return len(conflicts)
}

// sameAsPresent reports whether an equivalent same_as assertion is already in
// the output: same endpoints, confidence, and scalar properties.
func sameAsPresent(edges []graph.Edge, candidate graph.Edge) bool {
	for _, have := range edges {
		if have.Type != graph.EdgeSameAs {
			continue
		}
		if have.Source != candidate.Source || have.Target != candidate.Target {
			continue
		}
		if reflect.DeepEqual(have.Properties(), candidate.Properties()) {
			return true
		}
	}
	return false
}

func addLabel(labels []graph.Label, key, value string) []graph.Label {
	for _, l := range labels {
		if l.Key == key && l.Value == value {
			return labels
		}
	}
	labels = append(labels, graph.Label{Key: key, Value: value})
	graph.SortLabels(labels)
	return labels
}

func pick(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func pickScope(a, b graph.DisclosureScope) graph.DisclosureScope {
	if a != "" {
		return a
	}
	return b
}
