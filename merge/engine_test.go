package merge

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omtsf/omtsf-go/graph"
	"github.com/omtsf/omtsf-go/identity"
	"github.com/omtsf/omtsf-go/resolve"
)

const (
	leiBIS  = "5493006MHB84DD0ZWV18"
	leiDB   = "7LTWFZYICNSX8D621K86"
	leiAAPL = "HWUPKR0MPOU8FGXBT394"
)

func orgWithLEI(id, name, lei string) graph.Node {
	return graph.NewNode(id, graph.NodeOrganization).
		WithName(name).
		WithIdentifier(graph.NewIdentifier("lei", lei))
}

// signature renders a node in an id-free form for comparing files up to
// file-local id renaming.
func nodeSignature(n graph.Node) string {
	canonicals := make([]string, 0, len(n.Identifiers))
	for _, id := range n.Identifiers {
		canonicals = append(canonicals, identity.CanonicalString(id))
	}
	sort.Strings(canonicals)
	props := n.Properties()
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sig := string(n.Type) + "|" + fmt.Sprint(canonicals) + "|"
	for _, k := range keys {
		sig += fmt.Sprintf("%s=%v;", k, props[k])
	}
	return sig
}

func fileSignature(f *graph.File) []string {
	nodeSigByID := make(map[string]string, len(f.Nodes))
	var sigs []string
	for _, n := range f.Nodes {
		sig := nodeSignature(n)
		nodeSigByID[n.ID] = sig
		sigs = append(sigs, "node:"+sig)
	}
	for _, e := range f.Edges {
		props := e.Properties()
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sig := "edge:" + string(e.Type) + "|" + nodeSigByID[e.Source] + "->" + nodeSigByID[e.Target] + "|"
		for _, k := range keys {
			sig += fmt.Sprintf("%s=%v;", k, props[k])
		}
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)
	return sigs
}

func mustMerge(t *testing.T, e *Engine, files ...*graph.File) (*graph.File, *Metadata, []resolve.Warning) {
	t.Helper()
	out, meta, warnings, err := e.Merge(context.Background(), files...)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.NoError(t, out.Validate())
	return out, meta, warnings
}

func TestMerge_NoInput(t *testing.T) {
	_, _, _, err := NewEngine().Merge(context.Background())
	require.ErrorIs(t, err, ErrNoInput)
}

func TestMerge_RejectsInvalidInput(t *testing.T) {
	bad := graph.NewFile().WithNode(graph.NewNode("", graph.NodeOrganization))
	_, _, _, err := NewEngine().Merge(context.Background(), bad)
	require.ErrorIs(t, err, ErrInvalidInput)

	badLEI := graph.NewFile().WithNode(
		graph.NewNode("a", graph.NodeOrganization).
			WithIdentifier(graph.NewIdentifier("lei", "5493006MHB84DD0ZWV19")))
	_, _, _, err = NewEngine().Merge(context.Background(), badLEI)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestMerge_DisjointFiles(t *testing.T) {
	a := graph.NewFile().WithNode(orgWithLEI("x", "Alpha", leiBIS))
	b := graph.NewFile().WithNode(orgWithLEI("x", "Beta", leiDB)) // same file-local id

	out, meta, warnings := mustMerge(t, NewEngine(), a, b)

	assert.Len(t, out.Nodes, 2, "colliding file-local ids must stay distinct nodes")
	assert.Empty(t, warnings)
	assert.Equal(t, 0, meta.GroupsMerged)
	assert.Equal(t, 0, meta.ConflictCount)
}

func TestMerge_FullOverlapIdempotent(t *testing.T) {
	a := graph.NewFile().
		WithNode(
			orgWithLEI("n1", "Alpha", leiBIS),
			orgWithLEI("n2", "Beta", leiDB),
		).
		WithEdge(graph.NewEdge("e1", graph.EdgeSupplies, "n1", "n2").
			WithProperty("commodity", "coffee").
			WithProperty("contract_ref", "C-1"))

	out, meta, _ := mustMerge(t, NewEngine(), a, a.Clone())

	assert.Len(t, out.Nodes, 2)
	assert.Len(t, out.Edges, 1)
	assert.Equal(t, 0, meta.ConflictCount)
	assert.Equal(t, fileSignature(a), fileSignature(out))
}

func TestMerge_Commutative(t *testing.T) {
	a := graph.NewFile().WithNode(
		orgWithLEI("n1", "Alpha", leiBIS).WithProperty("jurisdiction", "DE"))
	b := graph.NewFile().WithNode(
		orgWithLEI("p9", "Alpha Corp", leiBIS).WithProperty("jurisdiction", "CH"),
		orgWithLEI("p2", "Gamma", leiAAPL),
	)

	ab, _, _ := mustMerge(t, NewEngine(), a, b)
	ba, _, _ := mustMerge(t, NewEngine(), b, a)

	assert.Equal(t, fileSignature(ab), fileSignature(ba))

	// Conflict attribution is part of the commutativity contract.
	var conflictsAB, conflictsBA any
	for _, n := range ab.Nodes {
		if v, ok := n.Extra["_conflicts"]; ok {
			conflictsAB = v
		}
	}
	for _, n := range ba.Nodes {
		if v, ok := n.Extra["_conflicts"]; ok {
			conflictsBA = v
		}
	}
	require.NotNil(t, conflictsAB)
	assert.Equal(t, conflictsAB, conflictsBA)
}

func TestMerge_Associative(t *testing.T) {
	a := graph.NewFile().WithNode(orgWithLEI("a", "Alpha", leiBIS))
	b := graph.NewFile().WithNode(
		orgWithLEI("b", "Alpha", leiBIS).
			WithIdentifier(graph.NewIdentifier("duns", "081466849")))
	c := graph.NewFile().WithNode(
		graph.NewNode("c", graph.NodeOrganization).
			WithName("Alpha").
			WithIdentifier(graph.NewIdentifier("duns", "081466849")))

	e := NewEngine()
	ab, _, _ := mustMerge(t, e, a, b)
	abc1, _, _ := mustMerge(t, e, ab, c)

	bc, _, _ := mustMerge(t, e, b, c)
	abc2, _, _ := mustMerge(t, e, a, bc)

	assert.Equal(t, fileSignature(abc1), fileSignature(abc2))
	assert.Len(t, abc1.Nodes, 1)
}

func TestMerge_TransitiveClosureAcrossThreeFiles(t *testing.T) {
	// X shares an LEI with Y, Y shares a DUNS with Z; X and Z share nothing
	// directly, yet all three must land in one merged node.
	x := graph.NewFile().WithNode(orgWithLEI("x", "Entity", leiBIS))
	y := graph.NewFile().WithNode(
		orgWithLEI("y", "Entity", leiBIS).
			WithIdentifier(graph.NewIdentifier("duns", "081466849")))
	z := graph.NewFile().WithNode(
		graph.NewNode("z", graph.NodeOrganization).
			WithName("Entity").
			WithIdentifier(graph.NewIdentifier("duns", "081466849")))

	out, meta, _ := mustMerge(t, NewEngine(), x, y, z)

	require.Len(t, out.Nodes, 1)
	assert.Equal(t, 1, meta.GroupsMerged)

	canonicals := make([]string, 0, len(out.Nodes[0].Identifiers))
	for _, id := range out.Nodes[0].Identifiers {
		canonicals = append(canonicals, identity.CanonicalString(id))
	}
	assert.Equal(t, []string{"duns:081466849", "lei:" + leiBIS}, canonicals,
		"identifier union must be sorted by canonical string")
}

func TestMerge_InternalIdentifiersNeverBridge(t *testing.T) {
	internal := graph.NewIdentifier("internal", "ERP-7").WithAuthority("sap")
	a := graph.NewFile().WithNode(
		graph.NewNode("a", graph.NodeOrganization).WithIdentifier(internal))
	b := graph.NewFile().WithNode(
		graph.NewNode("b", graph.NodeOrganization).WithIdentifier(internal))

	out, _, _ := mustMerge(t, NewEngine(), a, b)
	assert.Len(t, out.Nodes, 2)
}

func TestMerge_AnnulledLEIsNeverBridge(t *testing.T) {
	// GLEIF annuls an LEI when the registration was issued in error, so two
	// organizations sharing only an annulled LEI are not the same entity.
	annulled := graph.NewIdentifier("lei", leiBIS)
	annulled.Extra = map[string]any{"entity_status": "ANNULLED"}

	a := graph.NewFile().WithNode(
		graph.NewNode("a", graph.NodeOrganization).WithName("Alpha").WithIdentifier(annulled))
	b := graph.NewFile().WithNode(
		graph.NewNode("b", graph.NodeOrganization).WithName("Beta").WithIdentifier(annulled))

	out, meta, _ := mustMerge(t, NewEngine(), a, b)
	assert.Len(t, out.Nodes, 2)
	assert.Equal(t, 0, meta.GroupsMerged)

	// A live identifier still unions the nodes; the annulled LEI rides along
	// in the merged identifier array without contributing to identity.
	duns := graph.NewIdentifier("duns", "081466849")
	c := graph.NewFile().WithNode(
		graph.NewNode("c", graph.NodeOrganization).WithName("Alpha").WithIdentifier(annulled, duns))
	d := graph.NewFile().WithNode(
		graph.NewNode("d", graph.NodeOrganization).WithName("Alpha").WithIdentifier(duns))

	out2, _, _ := mustMerge(t, NewEngine(), c, d)
	require.Len(t, out2.Nodes, 1)
	assert.Len(t, out2.Nodes[0].Identifiers, 2)
}

func TestMerge_ConflictRecording(t *testing.T) {
	a := graph.NewFile().WithNode(orgWithLEI("a", "Alpha GmbH", leiBIS))
	b := graph.NewFile().WithNode(orgWithLEI("b", "Alpha Corp", leiBIS))

	out, meta, _ := mustMerge(t, NewEngine(), a, b)

	require.Len(t, out.Nodes, 1)
	merged := out.Nodes[0]
	assert.Equal(t, 1, meta.ConflictCount)

	// One name survives as the live value; both appear in _conflicts.
	assert.Contains(t, []string{"Alpha GmbH", "Alpha Corp"}, merged.Name)

	raw, ok := merged.Extra["_conflicts"]
	require.True(t, ok)
	records, ok := raw.([]any)
	require.True(t, ok)
	require.Len(t, records, 1)

	record, ok := records[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "name", record["field"])
	values, ok := record["values"].([]any)
	require.True(t, ok)
	require.Len(t, values, 2)

	var got []string
	for _, v := range values {
		entry := v.(map[string]any)
		got = append(got, entry["value"].(string))
		assert.NotEmpty(t, entry["sources"])
	}
	assert.ElementsMatch(t, []string{"Alpha GmbH", "Alpha Corp"}, got)
}

func TestMerge_EdgeRewritingAndDedup(t *testing.T) {
	build := func(supplier, buyer string) *graph.File {
		return graph.NewFile().
			WithNode(
				orgWithLEI(supplier, "Supplier", leiBIS),
				orgWithLEI(buyer, "Buyer", leiDB),
			).
			WithEdge(graph.NewEdge("e", graph.EdgeSupplies, supplier, buyer).
				WithProperty("commodity", "coffee").
				WithProperty("contract_ref", "C-1"))
	}

	out, _, _ := mustMerge(t, NewEngine(), build("s", "b"), build("x", "y"))

	require.Len(t, out.Nodes, 2)
	require.Len(t, out.Edges, 1, "equivalent edges must be deduplicated")

	edge := out.Edges[0]
	_, srcOK := out.Node(edge.Source)
	_, tgtOK := out.Node(edge.Target)
	assert.True(t, srcOK && tgtOK, "edge endpoints must reference merged node ids")

	src, _ := out.Node(edge.Source)
	assert.Equal(t, "Supplier", src.Name)
}

func TestMerge_SuppliesTierPerspectiveConflict(t *testing.T) {
	build := func(supplier, buyer string, tier int, reportingEntity string) *graph.File {
		f := graph.NewFile().
			WithNode(
				orgWithLEI(supplier, "Supplier", leiBIS),
				orgWithLEI(buyer, "Buyer", leiDB),
			).
			WithEdge(graph.NewEdge("e", graph.EdgeSupplies, supplier, buyer).
				WithProperty("commodity", "coffee").
				WithProperty("contract_ref", "C-1").
				WithTier(tier))
		f.ReportingEntity = reportingEntity
		return f
	}

	out, meta, _ := mustMerge(t, NewEngine(),
		build("s", "b", 1, "b"),
		build("s2", "b2", 3, "s2"))

	require.Len(t, out.Edges, 1)
	edge := out.Edges[0]
	require.NotNil(t, edge.Tier, "primary source's tier stays live")
	assert.Contains(t, []int{1, 3}, *edge.Tier)

	raw, ok := edge.Extra["_conflicts"]
	require.True(t, ok, "differing tiers must be recorded, not dropped")
	records := raw.([]any)
	require.Len(t, records, 1)
	assert.Equal(t, "tier", records[0].(map[string]any)["field"])

	// Both reporting entities are surfaced in provenance metadata.
	var entities []string
	for _, s := range meta.Sources {
		if s.ReportingEntity != "" {
			entities = append(entities, s.ReportingEntity)
		}
	}
	assert.Len(t, entities, 2)
}

func TestMerge_SameAsEdgesPreserved(t *testing.T) {
	f := graph.NewFile().
		WithNode(
			orgWithLEI("a", "Alpha", leiBIS),
			orgWithLEI("b", "Beta", leiDB),
		).
		WithEdge(graph.NewEdge("s1", graph.EdgeSameAs, "a", "b").
			WithConfidence(graph.ConfidencePossible))

	out, _, _ := mustMerge(t, NewEngine(), f)

	// possible confidence is below the default threshold: nodes stay
	// separate, the assertion itself survives.
	assert.Len(t, out.Nodes, 2)
	require.Len(t, out.Edges, 1)
	assert.Equal(t, graph.EdgeSameAs, out.Edges[0].Type)
}

func TestMerge_SameAsJoinsGroupsAtThreshold(t *testing.T) {
	f := graph.NewFile().
		WithNode(
			orgWithLEI("a", "Alpha", leiBIS),
			orgWithLEI("b", "Alpha", leiDB),
		).
		WithEdge(graph.NewEdge("s1", graph.EdgeSameAs, "a", "b").
			WithConfidence(graph.ConfidenceDefinite))

	out, _, _ := mustMerge(t, NewEngine(), f)
	assert.Len(t, out.Nodes, 1, "definite same_as must union the nodes")

	relaxed := NewEngine(WithResolver(resolve.NewResolver(
		resolve.WithSameAsThreshold(graph.ConfidencePossible))))
	g := f.Clone()
	g.Edges[0].Confidence = graph.ConfidencePossible
	out2, _, _ := mustMerge(t, relaxed, g)
	assert.Len(t, out2.Nodes, 1)

	ignoring := NewEngine(WithResolver(resolve.NewResolver(resolve.WithSameAsIgnored())))
	out3, _, _ := mustMerge(t, ignoring, f)
	assert.Len(t, out3.Nodes, 2)
}

func TestMerge_OversizedGroupWarnings(t *testing.T) {
	// Build n files whose nodes chain together via shared LEIs. Node i
	// carries bridge identifiers i-1 and i.
	chainFiles := func(n int) []*graph.File {
		bridges := make([]string, n)
		for i := range bridges {
			bridges[i] = fmt.Sprintf("BRIDGE-%03d", i)
		}
		files := make([]*graph.File, n)
		for i := 0; i < n; i++ {
			node := graph.NewNode(fmt.Sprintf("n%d", i), graph.NodeOrganization).
				WithName(fmt.Sprintf("Org %d", i))
			if i > 0 {
				node = node.WithIdentifier(graph.NewIdentifier("com.example.reg", bridges[i-1]))
			}
			if i < n-1 {
				node = node.WithIdentifier(graph.NewIdentifier("com.example.reg", bridges[i]))
			}
			files[i] = graph.NewFile().WithNode(node)
		}
		return files
	}

	t.Run("group of 3 silent", func(t *testing.T) {
		_, _, warnings := mustMerge(t, NewEngine(), chainFiles(3)...)
		assert.Empty(t, warnings)
	})
	t.Run("group of 4 warns", func(t *testing.T) {
		out, _, warnings := mustMerge(t, NewEngine(), chainFiles(4)...)
		assert.Len(t, out.Nodes, 1)
		require.Len(t, warnings, 1)
		assert.Equal(t, resolve.SeverityWarning, warnings[0].Severity)
		assert.Len(t, warnings[0].Members, 4)
		assert.NotEmpty(t, warnings[0].Bridges)
	})
	t.Run("group of 10 prominent", func(t *testing.T) {
		_, _, warnings := mustMerge(t, NewEngine(), chainFiles(10)...)
		require.Len(t, warnings, 1)
		assert.Equal(t, resolve.SeverityProminent, warnings[0].Severity)
	})
	t.Run("rejection policy aborts", func(t *testing.T) {
		e := NewEngine(WithResolver(resolve.NewResolver(resolve.WithOversizeRejection())))
		_, _, _, err := e.Merge(context.Background(), chainFiles(10)...)
		require.ErrorIs(t, err, resolve.ErrOversizedGroup)
	})
}

func TestMerge_MetadataCounts(t *testing.T) {
	a := graph.NewFile().WithNode(orgWithLEI("a", "Alpha", leiBIS))
	a.ReportingEntity = "a"
	b := graph.NewFile().WithNode(orgWithLEI("b", "Alpha", leiBIS))

	out, meta, _ := mustMerge(t, NewEngine(), a, b)

	assert.Equal(t, "merge", meta.Operation)
	assert.NotEmpty(t, meta.OperationID)
	assert.Equal(t, 2, meta.NodesIn)
	assert.Equal(t, 1, meta.NodesOut)
	require.Len(t, meta.Sources, 2)
	assert.NotEqual(t, meta.Sources[0].Fingerprint, meta.Sources[1].Fingerprint)

	// The primary source's reporting entity is remapped to a merged id.
	if out.ReportingEntity != "" {
		_, ok := out.Node(out.ReportingEntity)
		assert.True(t, ok)
	}
}

func TestMerge_CarriesHeaderExtras(t *testing.T) {
	a := graph.NewFile().WithNode(orgWithLEI("a", "Alpha", leiBIS))
	a.Extra = map[string]any{"generator": "acme-export/1.2"}

	out, _, _ := mustMerge(t, NewEngine(), a, a.Clone())

	require.NotNil(t, out.Extra)
	assert.Equal(t, "acme-export/1.2", out.Extra["generator"])

	out.Extra["generator"] = "other"
	assert.Equal(t, "acme-export/1.2", a.Extra["generator"], "inputs are never mutated")
}

func TestFingerprint_OrderIndependent(t *testing.T) {
	n1 := orgWithLEI("a", "Alpha", leiBIS)
	n2 := orgWithLEI("b", "Beta", leiDB)

	f1 := graph.NewFile().WithNode(n1, n2)
	f2 := graph.NewFile().WithNode(n2, n1)
	assert.Equal(t, Fingerprint(f1), Fingerprint(f2))

	f3 := graph.NewFile().WithNode(n1)
	assert.NotEqual(t, Fingerprint(f1), Fingerprint(f3))
}
