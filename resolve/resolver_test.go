package resolve

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omtsf/omtsf-go/graph"
)

func TestUnionFind_Basics(t *testing.T) {
	uf := NewUnionFind(5)
	for i := 0; i < 5; i++ {
		assert.Equal(t, i, uf.Find(i))
	}

	uf.Union(0, 1)
	assert.True(t, uf.Same(0, 1))
	assert.False(t, uf.Same(0, 2))

	// Union is idempotent.
	root := uf.Union(0, 1)
	assert.Equal(t, root, uf.Union(1, 0))
}

func TestUnionFind_LowerOrdinalWinsOnEqualRank(t *testing.T) {
	uf := NewUnionFind(4)
	assert.Equal(t, 0, uf.Union(1, 0))
	assert.Equal(t, 2, uf.Union(3, 2))
}

func TestUnionFind_PartitionIndependentOfOrder(t *testing.T) {
	pairs := [][2]int{{0, 1}, {1, 2}, {4, 5}, {2, 3}, {5, 6}}

	canonical := func(order [][2]int) []int {
		uf := NewUnionFind(8)
		for _, p := range order {
			uf.Union(p[0], p[1])
		}
		roots := make([]int, 8)
		for i := range roots {
			roots[i] = uf.Find(i)
		}
		return roots
	}

	want := canonical(pairs)
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		shuffled := append([][2]int(nil), pairs...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got := canonical(shuffled)
		// Partitions must agree even if representative choice differs.
		for a := 0; a < 8; a++ {
			for b := 0; b < 8; b++ {
				assert.Equal(t, want[a] == want[b], got[a] == got[b],
					"trial %d: ordinals %d,%d", trial, a, b)
			}
		}
	}
}

func chain(n int) []Pair {
	pairs := make([]Pair, 0, n-1)
	for i := 0; i < n-1; i++ {
		pairs = append(pairs, Pair{A: i, B: i + 1, Bridges: []string{fmt.Sprintf("lei:L%d", i)}})
	}
	return pairs
}

func ordinalName(i int) string { return fmt.Sprintf("n%d", i) }

func TestResolver_Thresholds(t *testing.T) {
	tests := []struct {
		name         string
		groupSize    int
		wantWarnings int
		wantSeverity string
	}{
		{"group of 3 is silent", 3, 0, ""},
		{"group of 4 warns", 4, 1, SeverityWarning},
		{"group of 9 warns", 9, 1, SeverityWarning},
		{"group of 10 is prominent", 10, 1, SeverityProminent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver()
			p := r.Resolve(tt.groupSize, chain(tt.groupSize))
			require.Len(t, p.Groups(), 1)

			warnings, err := r.Warnings(p, ordinalName)
			require.NoError(t, err)
			require.Len(t, warnings, tt.wantWarnings)
			if tt.wantWarnings > 0 {
				w := warnings[0]
				assert.Equal(t, tt.wantSeverity, w.Severity)
				assert.Len(t, w.Members, tt.groupSize)
				assert.NotEmpty(t, w.Bridges)
				assert.NotEmpty(t, w.ID)
			}
		})
	}
}

func TestResolver_ConfigurableThresholds(t *testing.T) {
	r := NewResolver(WithWarnThreshold(2), WithProminentThreshold(3))
	p := r.Resolve(3, chain(3))
	warnings, err := r.Warnings(p, ordinalName)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, SeverityProminent, warnings[0].Severity)
}

func TestResolver_OversizeRejection(t *testing.T) {
	r := NewResolver(WithOversizeRejection())
	p := r.Resolve(10, chain(10))
	_, err := r.Warnings(p, ordinalName)
	require.ErrorIs(t, err, ErrOversizedGroup)

	// Below the prominent tier the policy does not trigger.
	p = r.Resolve(5, chain(5))
	warnings, err := r.Warnings(p, ordinalName)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
}

func TestResolver_SameAsMembersExcludedFromTier(t *testing.T) {
	// Three externally linked members plus one joined only via same_as:
	// group size 4 but effective size 3, so no warning.
	pairs := append(chain(3), Pair{A: 2, B: 3, SameAs: true})
	r := NewResolver()
	p := r.Resolve(4, pairs)
	require.Len(t, p.Groups(), 1)
	assert.Len(t, p.Groups()[0], 4)

	warnings, err := r.Warnings(p, ordinalName)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestResolver_SameAsPolicy(t *testing.T) {
	r := NewResolver()
	assert.True(t, r.AcceptsSameAs(graph.ConfidenceDefinite))
	assert.False(t, r.AcceptsSameAs(graph.ConfidenceProbable))

	relaxed := NewResolver(WithSameAsThreshold(graph.ConfidencePossible))
	assert.True(t, relaxed.AcceptsSameAs(graph.ConfidencePossible))

	off := NewResolver(WithSameAsIgnored())
	assert.False(t, off.AcceptsSameAs(graph.ConfidenceDefinite))
}

func TestPartition_GroupsDeterministic(t *testing.T) {
	pairs := []Pair{
		{A: 5, B: 1, Bridges: []string{"lei:X"}},
		{A: 2, B: 4, Bridges: []string{"duns:Y"}},
	}
	r := NewResolver()
	p := r.Resolve(6, pairs)

	assert.Equal(t, [][]int{{0}, {1, 5}, {2, 4}, {3}}, p.Groups())
	assert.Equal(t, []string{"lei:X"}, p.Bridges(1))
	assert.Equal(t, []string{"duns:Y"}, p.Bridges(2))
}
