package resolve

// UnionFind is a disjoint-set forest over the ordinals [0, n) with path
// halving and union by rank. Ties break toward the lower ordinal, so the
// chosen roots do not depend on union order beyond the partition itself.
type UnionFind struct {
	parent []int
	rank   []int
}

// NewUnionFind creates n singleton sets.
func NewUnionFind(n int) *UnionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &UnionFind{parent: parent, rank: make([]int, n)}
}

// Len returns the size of the ordinal space.
func (u *UnionFind) Len() int { return len(u.parent) }

// Find returns the root of x's set, halving the path on the way up.
func (u *UnionFind) Find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

// Union merges the sets containing a and b and returns the new root.
func (u *UnionFind) Union(a, b int) int {
	ra, rb := u.Find(a), u.Find(b)
	if ra == rb {
		return ra
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		ra, rb = rb, ra
	case u.rank[ra] == u.rank[rb]:
		if rb < ra {
			ra, rb = rb, ra
		}
		u.rank[ra]++
	}
	u.parent[rb] = ra
	return ra
}

// Same reports whether a and b are in one set.
func (u *UnionFind) Same(a, b int) bool {
	return u.Find(a) == u.Find(b)
}
