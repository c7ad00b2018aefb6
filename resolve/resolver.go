package resolve

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/omtsf/omtsf-go/graph"
)

// ErrOversizedGroup indicates that a merge group reached the prominent
// threshold while the resolver was configured to reject rather than warn.
var ErrOversizedGroup = errors.New("merge group exceeds configured size limit")

// Warning severities for oversized merge groups.
const (
	SeverityWarning   = "warning"
	SeverityProminent = "prominent"
)

// Pair is one pairwise candidate relation between two ordinals in the
// resolver's space. Bridges carries the canonical identifier strings that
// justified the pair; SameAs marks pairs contributed by same_as edges, which
// are excluded from warning-tier arithmetic.
type Pair struct {
	A, B    int
	Bridges []string
	SameAs  bool
}

// Warning describes an oversized merge group.
type Warning struct {
	// ID is a unique id for correlating the warning across logs and
	// metadata.
	ID string

	// Severity is SeverityWarning or SeverityProminent.
	Severity string

	// Members lists the display names (node ids) of the group.
	Members []string

	// Bridges lists the canonical identifiers that chained the group
	// together, deduplicated and sorted.
	Bridges []string

	Message string
}

// Resolver computes merge groups and their safety warnings.
type Resolver struct {
	warnAt       int
	prominentAt  int
	sameAsFloor  graph.Confidence
	ignoreSameAs bool
	rejectLarge  bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithWarnThreshold sets the group size at which SeverityWarning warnings
// start (default 4).
func WithWarnThreshold(n int) Option {
	return func(r *Resolver) { r.warnAt = n }
}

// WithProminentThreshold sets the group size at which warnings escalate to
// SeverityProminent (default 10).
func WithProminentThreshold(n int) Option {
	return func(r *Resolver) { r.prominentAt = n }
}

// WithSameAsThreshold sets the minimum same_as confidence that may join
// merge groups (default definite).
func WithSameAsThreshold(c graph.Confidence) Option {
	return func(r *Resolver) { r.sameAsFloor = c }
}

// WithSameAsIgnored disables same_as grouping entirely.
func WithSameAsIgnored() Option {
	return func(r *Resolver) { r.ignoreSameAs = true }
}

// WithOversizeRejection makes groups at the prominent threshold fail the
// operation instead of warning.
func WithOversizeRejection() Option {
	return func(r *Resolver) { r.rejectLarge = true }
}

// NewResolver creates a resolver with the default thresholds: warn at 4,
// prominent at 10, same_as honored at definite confidence only.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		warnAt:      4,
		prominentAt: 10,
		sameAsFloor: graph.ConfidenceDefinite,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AcceptsSameAs reports whether a same_as edge of the given confidence may
// join merge groups under the configured policy.
func (r *Resolver) AcceptsSameAs(c graph.Confidence) bool {
	return !r.ignoreSameAs && c.AtLeast(r.sameAsFloor)
}

// Partition is the transitive closure of a candidate relation: a partition
// of the ordinal space into merge groups.
type Partition struct {
	groups  [][]int
	bridges map[int][]string
	// external marks ordinals linked into their group by at least one
	// non-same_as pair; only these count toward warning tiers.
	external map[int]bool
}

// Resolve computes the partition of [0, total) induced by pairs. The result
// is independent of pair order.
func (r *Resolver) Resolve(total int, pairs []Pair) *Partition {
	uf := NewUnionFind(total)
	external := make(map[int]bool)
	for _, p := range pairs {
		uf.Union(p.A, p.B)
		if !p.SameAs {
			external[p.A] = true
			external[p.B] = true
		}
	}

	byRoot := make(map[int][]int)
	for i := 0; i < total; i++ {
		root := uf.Find(i)
		byRoot[root] = append(byRoot[root], i)
	}

	bridges := make(map[int][]string)
	for _, p := range pairs {
		root := uf.Find(p.A)
		bridges[root] = append(bridges[root], p.Bridges...)
	}

	groups := make([][]int, 0, len(byRoot))
	rootBridges := make(map[int][]string, len(byRoot))
	for root, members := range byRoot {
		sort.Ints(members)
		groups = append(groups, members)
		rootBridges[members[0]] = dedupeSorted(bridges[root])
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })

	return &Partition{groups: groups, bridges: rootBridges, external: external}
}

// Groups returns the merge groups, each sorted ascending, ordered by their
// first member.
func (p *Partition) Groups() [][]int { return p.groups }

// Bridges returns the canonical identifier strings that chained the group
// starting at the given first member together.
func (p *Partition) Bridges(firstMember int) []string { return p.bridges[firstMember] }

// Warnings evaluates the size thresholds over the partition. display maps an
// ordinal to the name surfaced in warnings (typically the node id). A nil
// error and the warning list are returned unless the resolver is configured
// to reject oversized groups and one exists.
func (r *Resolver) Warnings(p *Partition, display func(int) string) ([]Warning, error) {
	var warnings []Warning
	for _, group := range p.groups {
		effective := 0
		for _, member := range group {
			if p.external[member] {
				effective++
			}
		}
		if effective < r.warnAt {
			continue
		}

		members := make([]string, len(group))
		for i, member := range group {
			members[i] = display(member)
		}
		severity := SeverityWarning
		if effective >= r.prominentAt {
			severity = SeverityProminent
		}
		bridges := p.Bridges(group[0])

		if severity == SeverityProminent && r.rejectLarge {
			return nil, fmt.Errorf("%w: %d members [%s] bridged by [%s]",
				ErrOversizedGroup, len(group), strings.Join(members, ", "), strings.Join(bridges, ", "))
		}

		warnings = append(warnings, Warning{
			ID:       uuid.NewString(),
			Severity: severity,
			Members:  members,
			Bridges:  bridges,
			Message: fmt.Sprintf("merge group of %d nodes [%s] bridged by [%s]",
				len(group), strings.Join(members, ", "), strings.Join(bridges, ", ")),
		})
	}
	return warnings, nil
}

func dedupeSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	sort.Strings(in)
	out := in[:1]
	for _, s := range in[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
