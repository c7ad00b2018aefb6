package merge

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/omtsf/omtsf-go/graph"
	"github.com/omtsf/omtsf-go/identity"
	"github.com/omtsf/omtsf-go/resolve"
)

// Engine merges independently produced graph files. The zero-configuration
// engine from NewEngine uses the default resolver thresholds and no
// telemetry; engines are safe for concurrent use because every run builds
// its own state.
type Engine struct {
	resolver *resolve.Resolver
	logger   *slog.Logger
	tracer   trace.Tracer
	meter    metric.Meter
	metrics  *otelMetrics
}

// NewEngine creates a merge engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		resolver: resolve.NewResolver(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.meter != nil {
		metrics, err := newOTelMetrics(e.meter)
		if err != nil {
			e.logger.Warn("merge metrics disabled", "error", err)
		} else {
			e.metrics = metrics
		}
	}
	return e
}

// source is one fingerprint-sorted merge input.
type source struct {
	file  *graph.File
	fp    string
	label string
}

// Merge combines the input files into one. The result is commutative,
// associative, and idempotent up to file-local id renaming. Inputs are never
// mutated.
//
// Returned warnings describe oversized merge groups; they accompany a valid
// output. A non-nil error means no output was produced.
func (e *Engine) Merge(ctx context.Context, files ...*graph.File) (*graph.File, *Metadata, []resolve.Warning, error) {
	start := time.Now()
	if e.tracer != nil {
		var span trace.Span
		ctx, span = e.tracer.Start(ctx, "omtsf.merge",
			trace.WithAttributes(attribute.Int("merge.input_files", len(files))))
		defer span.End()
	}

	if len(files) == 0 {
		return nil, nil, nil, ErrNoInput
	}
	for _, f := range files {
		if err := f.Validate(); err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		for _, n := range f.Nodes {
			if err := identity.ValidateNodeIdentifiers(n); err != nil {
				return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
		}
	}

	sources := sortSources(files)

	// Step 1: concatenate nodes, keeping per-source ordinal maps so that
	// colliding file-local ids stay distinct.
	var nodes []graph.Node
	var nodeOrigin []int
	idMaps := make([]map[string]int, len(sources))
	for si, src := range sources {
		idMaps[si] = make(map[string]int, len(src.file.Nodes))
		for _, n := range src.file.Nodes {
			idMaps[si][n.ID] = len(nodes)
			nodes = append(nodes, n)
			nodeOrigin = append(nodeOrigin, si)
		}
	}

	// Step 2: candidate pairs via the shared-identifier index.
	pairs := candidatePairs(nodes)

	// Step 3: same_as edges meeting the confidence policy join groups too.
	for si, src := range sources {
		for _, edge := range src.file.Edges {
			if edge.Type != graph.EdgeSameAs || !e.resolver.AcceptsSameAs(edge.Confidence) {
				continue
			}
			srcOrd, okS := idMaps[si][edge.Source]
			tgtOrd, okT := idMaps[si][edge.Target]
			if okS && okT {
				pairs = append(pairs, resolve.Pair{A: srcOrd, B: tgtOrd, SameAs: true})
			}
		}
	}

	partition := e.resolver.Resolve(len(nodes), pairs)
	warnings, err := e.resolver.Warnings(partition, func(ord int) string {
		return sources[nodeOrigin[ord]].label + "/" + nodes[ord].ID
	})
	if err != nil {
		return nil, nil, nil, err
	}

	// Step 4: order groups by minimum member canonical id and merge.
	groups := orderGroups(partition.Groups(), nodes)

	conflictCount := 0
	newNodeID := make([]string, len(nodes))
	groupIndex := make([]int, len(nodes))
	outNodes := make([]graph.Node, 0, len(groups))
	for gi, group := range groups {
		id := fmt.Sprintf("n-%d", gi)
		for _, ord := range group {
			newNodeID[ord] = id
			groupIndex[ord] = gi
		}
		merged, conflicts := mergeNodeGroup(id, group, nodes, func(ord int) string {
			return sources[nodeOrigin[ord]].label
		})
		conflictCount += conflicts
		outNodes = append(outNodes, merged)
		if e.metrics != nil {
			e.metrics.groupSizeHistogram.Record(ctx, int64(len(group)))
		}
	}

	// Step 5: rewrite, partition, and merge edges.
	outEdges, edgeConflicts := e.mergeEdges(sources, idMaps, groupIndex, newNodeID, nodes)
	conflictCount += edgeConflicts

	out := &graph.File{
		SpecVersion:     sources[0].file.SpecVersion,
		SnapshotDate:    latestSnapshot(sources),
		DisclosureScope: sources[0].file.DisclosureScope,
		Extra:           copyHeaderExtra(sources[0].file.Extra),
		Nodes:           outNodes,
		Edges:           outEdges,
	}
	if re := sources[0].file.ReportingEntity; re != "" {
		if ord, ok := idMaps[0][re]; ok {
			out.ReportingEntity = newNodeID[ord]
		}
	}

	// Step 6: the output must satisfy every structural invariant; the id
	// assignment and identifier dedup above are the deterministic repairs,
	// anything still wrong aborts the merge.
	if err := out.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrPostMergeValidation, err)
	}

	meta := &Metadata{
		OperationID:   uuid.NewString(),
		Operation:     "merge",
		Timestamp:     time.Now().UTC(),
		NodesIn:       len(nodes),
		NodesOut:      len(outNodes),
		EdgesIn:       edgeCount(sources),
		EdgesOut:      len(outEdges),
		GroupsMerged:  countMergedGroups(groups),
		ConflictCount: conflictCount,
		WarningCount:  len(warnings),
	}
	for _, src := range sources {
		meta.Sources = append(meta.Sources, Source{
			Label:           src.label,
			Fingerprint:     src.fp,
			ReportingEntity: src.file.ReportingEntity,
		})
	}

	if e.metrics != nil {
		e.metrics.durationHistogram.Record(ctx, float64(time.Since(start).Milliseconds()))
		e.metrics.conflictCounter.Add(ctx, int64(conflictCount))
		e.metrics.runCounter.Add(ctx, 1)
	}
	e.logger.Debug("merge complete",
		"operation_id", meta.OperationID,
		"nodes_in", meta.NodesIn,
		"nodes_out", meta.NodesOut,
		"conflicts", conflictCount,
		"warnings", len(warnings))

	return out, meta, warnings, nil
}

func sortSources(files []*graph.File) []source {
	sources := make([]source, len(files))
	for i, f := range files {
		fp := Fingerprint(f)
		sources[i] = source{file: f, fp: fp, label: "src-" + fp[:12]}
	}
	sort.SliceStable(sources, func(i, j int) bool { return sources[i].fp < sources[j].fp })
	return sources
}

// candidatePairs indexes non-internal identifiers by canonical string and
// verifies each bucket pair with the full identity predicate.
func candidatePairs(nodes []graph.Node) []resolve.Pair {
	index := identity.BuildIdentifierIndex(nodes)
	var pairs []resolve.Pair
	for canonical, bucket := range index {
		if len(bucket) < 2 {
			continue
		}
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				if identity.NodesCandidate(nodes[bucket[i]], nodes[bucket[j]]) {
					pairs = append(pairs, resolve.Pair{
						A:       bucket[i],
						B:       bucket[j],
						Bridges: []string{canonical},
					})
				}
			}
		}
	}
	return pairs
}

// orderGroups sorts merge groups by the minimum canonical identifier of any
// member (internal identifiers and annulled LEIs excluded), breaking ties by
// first ordinal. This ordering drives output id assignment.
func orderGroups(groups [][]int, nodes []graph.Node) [][]int {
	type keyed struct {
		key   string
		group []int
	}
	keys := make([]keyed, 0, len(groups))
	for _, group := range groups {
		min := ""
		for _, ord := range group {
			for _, id := range nodes[ord].Identifiers {
				if id.Scheme == "internal" || identity.IsAnnulledLEI(id) {
					continue
				}
				c := identity.CanonicalString(id)
				if min == "" || c < min {
					min = c
				}
			}
		}
		keys = append(keys, keyed{key: min, group: group})
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].key != keys[j].key {
			return keys[i].key < keys[j].key
		}
		return keys[i].group[0] < keys[j].group[0]
	})
	out := make([][]int, len(keys))
	for i, k := range keys {
		out[i] = k.group
	}
	return out
}

// mergeNodeGroup unions one group into a single node.
func mergeNodeGroup(newID string, group []int, nodes []graph.Node, srcLabel func(int) string) (graph.Node, int) {
	first := nodes[group[0]]
	out := graph.Node{ID: newID, Type: first.Type}

	// Identifier array: union, deduplicated by (scheme, value, authority),
	// sorted by canonical string.
	seen := make(map[string]struct{})
	for _, ord := range group {
		for _, id := range nodes[ord].Identifiers {
			if _, dup := seen[id.Key()]; dup {
				continue
			}
			seen[id.Key()] = struct{}{}
			out.Identifiers = append(out.Identifiers, id.Clone())
		}
	}
	identity.SortIdentifiersCanonical(out.Identifiers)

	out.Labels = unionLabels(func(yield func([]graph.Label)) {
		for _, ord := range group {
			yield(nodes[ord].Labels)
		}
	})

	// Scalar properties: equal values collapse, divergent values keep the
	// first source's and go to the conflict record.
	fields, perMember := collectProps(group, func(ord int) map[string]any { return nodes[ord].Properties() })
	var conflicts []Conflict
	for _, field := range fields {
		inputs := make([]scalarInput, 0, len(group))
		for i, ord := range group {
			inputs = append(inputs, scalarInput{value: perMember[i][field], source: srcLabel(ord)})
		}
		winner, conflict := mergeScalar(field, inputs)
		if winner != nil {
			out.SetProperty(field, winner)
		}
		if conflict != nil {
			conflicts = append(conflicts, *conflict)
		}
	}

	out.ValidFrom = first.Clone().ValidFrom
	out.ValidTo = first.Clone().ValidTo
	if first.DataQuality != nil {
		out.DataQuality = first.Clone().DataQuality
	}

	if v := ConflictsValue(conflicts); v != nil {
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra["_conflicts"] = v
	}
	return out, len(conflicts)
}

// mergeEdges rewrites endpoints to merged node ids, groups duplicate edges
// with the edge identity predicate, and merges each group. same_as edges
// pass through individually.
func (e *Engine) mergeEdges(
	sources []source,
	idMaps []map[string]int,
	groupIndex []int,
	newNodeID []string,
	nodes []graph.Node,
) ([]graph.Edge, int) {
	type edgeRef struct {
		edge   graph.Edge
		origin int
		srcGrp int
		tgtGrp int
	}

	var edges []edgeRef
	for si, src := range sources {
		for _, edge := range src.file.Edges {
			srcOrd, okS := idMaps[si][edge.Source]
			tgtOrd, okT := idMaps[si][edge.Target]
			if !okS || !okT {
				continue
			}
			edges = append(edges, edgeRef{
				edge:   edge,
				origin: si,
				srcGrp: groupIndex[srcOrd],
				tgtGrp: groupIndex[tgtOrd],
			})
		}
	}

	// Bucket non-same_as edges by rewritten endpoints and type, then verify
	// pairs with the full predicate.
	buckets := make(map[string][]int)
	for i, ref := range edges {
		if ref.edge.Type == graph.EdgeSameAs {
			continue
		}
		key := fmt.Sprintf("%d|%d|%s", ref.srcGrp, ref.tgtGrp, ref.edge.Type)
		buckets[key] = append(buckets[key], i)
	}

	uf := resolve.NewUnionFind(len(edges))
	for _, bucket := range buckets {
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				a, b := edges[bucket[i]], edges[bucket[j]]
				if identity.EdgesMatch(a.srcGrp, a.tgtGrp, b.srcGrp, b.tgtGrp, a.edge, b.edge) {
					uf.Union(bucket[i], bucket[j])
				}
			}
		}
	}

	byRoot := make(map[int][]int)
	for i := range edges {
		byRoot[uf.Find(i)] = append(byRoot[uf.Find(i)], i)
	}

	type keyedGroup struct {
		srcGrp, tgtGrp int
		typ            string
		minCid         string
		firstOrd       int
		members        []int
	}
	keyedGroups := make([]keyedGroup, 0, len(byRoot))
	for _, members := range byRoot {
		sort.Ints(members)
		firstRef := edges[members[0]]
		minCid := ""
		for _, m := range members {
			for _, id := range edges[m].edge.Identifiers {
				if id.Scheme == "internal" || identity.IsAnnulledLEI(id) {
					continue
				}
				c := identity.CanonicalString(id)
				if minCid == "" || c < minCid {
					minCid = c
				}
			}
		}
		keyedGroups = append(keyedGroups, keyedGroup{
			srcGrp:   firstRef.srcGrp,
			tgtGrp:   firstRef.tgtGrp,
			typ:      string(firstRef.edge.Type),
			minCid:   minCid,
			firstOrd: members[0],
			members:  members,
		})
	}
	sort.Slice(keyedGroups, func(i, j int) bool {
		a, b := keyedGroups[i], keyedGroups[j]
		if a.srcGrp != b.srcGrp {
			return a.srcGrp < b.srcGrp
		}
		if a.tgtGrp != b.tgtGrp {
			return a.tgtGrp < b.tgtGrp
		}
		if a.typ != b.typ {
			return a.typ < b.typ
		}
		if a.minCid != b.minCid {
			return a.minCid < b.minCid
		}
		return a.firstOrd < b.firstOrd
	})

	var out []graph.Edge
	conflictCount := 0
	edgeID := 0
	nextID := func() string {
		id := fmt.Sprintf("e-%d", edgeID)
		edgeID++
		return id
	}

	lookupNewID := func(ref edgeRef, nodeID string) string {
		ord := idMaps[ref.origin][nodeID]
		return newNodeID[ord]
	}

	for _, kg := range keyedGroups {
		firstRef := edges[kg.members[0]]

		if firstRef.edge.Type == graph.EdgeSameAs {
			// Every same_as assertion survives as its own edge.
			for _, m := range kg.members {
				ref := edges[m]
				copied := ref.edge.Clone()
				copied.ID = nextID()
				copied.Source = lookupNewID(ref, ref.edge.Source)
				copied.Target = lookupNewID(ref, ref.edge.Target)
				out = append(out, copied)
			}
			continue
		}

		merged := graph.Edge{
			ID:     nextID(),
			Type:   firstRef.edge.Type,
			Source: lookupNewID(firstRef, firstRef.edge.Source),
			Target: lookupNewID(firstRef, firstRef.edge.Target),
		}

		seen := make(map[string]struct{})
		for _, m := range kg.members {
			for _, id := range edges[m].edge.Identifiers {
				if _, dup := seen[id.Key()]; dup {
					continue
				}
				seen[id.Key()] = struct{}{}
				merged.Identifiers = append(merged.Identifiers, id.Clone())
			}
		}
		identity.SortIdentifiersCanonical(merged.Identifiers)

		merged.Labels = unionLabels(func(yield func([]graph.Label)) {
			for _, m := range kg.members {
				yield(edges[m].edge.Labels)
			}
		})

		fields, perMember := collectProps(kg.members, func(m int) map[string]any { return edges[m].edge.Properties() })
		var conflicts []Conflict
		for _, field := range fields {
			inputs := make([]scalarInput, 0, len(kg.members))
			for i, m := range kg.members {
				inputs = append(inputs, scalarInput{value: perMember[i][field], source: sources[edges[m].origin].label})
			}
			winner, conflict := mergeScalar(field, inputs)
			if winner != nil {
				merged.SetProperty(field, winner)
			}
			if conflict != nil {
				conflicts = append(conflicts, *conflict)
			}
		}
		conflictCount += len(conflicts)

		// Temporal fields are excluded from edge identity and are not
		// separately reconciled; the first member's window is carried.
		firstClone := firstRef.edge.Clone()
		merged.ValidFrom = firstClone.ValidFrom
		merged.ValidTo = firstClone.ValidTo
		merged.DataQuality = firstClone.DataQuality

		if v := ConflictsValue(conflicts); v != nil {
			if merged.Extra == nil {
				merged.Extra = make(map[string]any)
			}
			merged.Extra["_conflicts"] = v
		}
		out = append(out, merged)
	}

	return out, conflictCount
}

// collectProps gathers each member's property map and the sorted union of
// field names.
func collectProps(members []int, props func(int) map[string]any) ([]string, []map[string]any) {
	perMember := make([]map[string]any, len(members))
	fieldSet := make(map[string]struct{})
	for i, m := range members {
		perMember[i] = props(m)
		for k := range perMember[i] {
			fieldSet[k] = struct{}{}
		}
	}
	fields := make([]string, 0, len(fieldSet))
	for k := range fieldSet {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields, perMember
}

// unionLabels set-unions label slices, sorted by key then value.
func unionLabels(each func(func([]graph.Label))) []graph.Label {
	seen := make(map[string]struct{})
	var out []graph.Label
	each(func(labels []graph.Label) {
		for _, l := range labels {
			key := l.Key + "\x00" + l.Value
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, graph.Label{Key: l.Key, Value: l.Value})
		}
	})
	graph.SortLabels(out)
	return out
}

// copyHeaderExtra copies the primary source's unknown header fields so the
// merged file round-trips them like spec_version and disclosure_scope.
func copyHeaderExtra(extra map[string]any) map[string]any {
	if extra == nil {
		return nil
	}
	out := make(map[string]any, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func latestSnapshot(sources []source) *graph.CalendarDate {
	var latest *graph.CalendarDate
	for _, src := range sources {
		d := src.file.SnapshotDate
		if d == nil {
			continue
		}
		if latest == nil || d.After(*latest) {
			c := *d
			latest = &c
		}
	}
	return latest
}

func edgeCount(sources []source) int {
	n := 0
	for _, src := range sources {
		n += len(src.file.Edges)
	}
	return n
}

func countMergedGroups(groups [][]int) int {
	n := 0
	for _, g := range groups {
		if len(g) > 1 {
			n++
		}
	}
	return n
}
