package organizer

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// forestGen draws a random forest with unique IDs n0..nk by generating a
// valid depth sequence and building it.
func forestGen(minNodes, maxNodes int) *rapid.Generator[[]domain.Item] {
	return rapid.Custom(func(t *rapid.T) []domain.Item {
		n := rapid.IntRange(minNodes, maxNodes).Draw(t, "nodes")
		flat := make([]domain.FlattenedItem, 0, n)
		prev := -1
		for i := 0; i < n; i++ {
			d := rapid.IntRange(0, prev+1).Draw(t, fmt.Sprintf("depth_%d", i))
			kind := domain.ItemGroup
			if rapid.Bool().Draw(t, fmt.Sprintf("leaf_%d", i)) {
				kind = domain.ItemLeaf
			}
			flat = append(flat, domain.FlattenedItem{
				ID:        fmt.Sprintf("n%d", i),
				Name:      fmt.Sprintf("Node %d", i),
				Kind:      kind,
				Collapsed: rapid.Bool().Draw(t, fmt.Sprintf("collapsed_%d", i)),
				Depth:     d,
			})
			prev = d
		}
		tree, err := Build(flat)
		if err != nil {
			t.Fatalf("generated invalid depths: %v", err)
		}
		return tree
	})
}

func sortedIDs(flat []domain.FlattenedItem) []string {
	ids := viewIDs(flat)
	slices.Sort(ids)
	return ids
}

func TestProperty_BuildInvertsFlatten(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree := forestGen(0, 20).Draw(t, "tree")

		got, err := Build(Flatten(tree))

		require.NoError(t, err)
		if diff := cmp.Diff(tree, got, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestProperty_FlattenParentsMatchDepths(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		flat := Flatten(forestGen(0, 20).Draw(t, "tree"))

		for i, f := range flat {
			if f.Depth == 0 {
				require.Nil(t, f.ParentID)
				continue
			}
			pi := indexOf(flat, f.ParentOrEmpty())
			require.GreaterOrEqual(t, pi, 0)
			require.Less(t, pi, i)
			require.Equal(t, f.Depth-1, flat[pi].Depth)
		}
	})
}

func TestProperty_ProjectionStaysInBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		flat := Flatten(forestGen(1, 15).Draw(t, "tree"))
		active := flat[rapid.IntRange(0, len(flat)-1).Draw(t, "active")].ID
		over := rapid.IntRange(-2, len(flat)+2).Draw(t, "over")
		offset := rapid.Float64Range(-400, 400).Draw(t, "offset")

		p, err := Project(flat, active, over, offset, 50)

		var cycle *CycleError
		var structure *StructureError
		switch {
		case err == nil:
			require.LessOrEqual(t, p.MinDepth, p.Depth)
			require.LessOrEqual(t, p.Depth, p.MaxDepth)
			if p.ParentID != nil {
				parent := p.ParentOrEmpty()
				require.NotEqual(t, active, parent)
				require.NotContains(t, DescendantIDs(flat, active), parent)
			} else {
				require.Zero(t, p.Depth)
			}
		case errors.As(err, &cycle), errors.As(err, &structure):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestProperty_ViewWithoutActiveSubtreeAlwaysProjects(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		flat := Flatten(forestGen(1, 15).Draw(t, "tree"))
		active := flat[rapid.IntRange(0, len(flat)-1).Draw(t, "active")].ID
		view := RemoveChildrenOf(flat, active)
		over := rapid.IntRange(0, len(view)).Draw(t, "over")
		offset := rapid.Float64Range(-400, 400).Draw(t, "offset")

		_, err := Project(view, active, over, offset, 50)

		require.NoError(t, err)
	})
}

func TestProperty_CommitPreservesItems(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree := forestGen(1, 15).Draw(t, "tree")
		o, err := New(tree, nil)
		require.NoError(t, err)
		view := o.FlattenedView()
		active := view[rapid.IntRange(0, len(view)-1).Draw(t, "active")].ID

		require.NoError(t, o.BeginDrag(active))
		steps := rapid.IntRange(1, 4).Draw(t, "updates")
		for i := 0; i < steps; i++ {
			over := rapid.IntRange(0, len(o.FlattenedView())).Draw(t, fmt.Sprintf("over_%d", i))
			offset := rapid.Float64Range(-300, 300).Draw(t, fmt.Sprintf("offset_%d", i))
			st, err := o.UpdateDrag(over, offset)
			require.NoError(t, err)
			require.True(t, st.Valid)
		}
		res, err := o.CommitDrag()
		require.NoError(t, err)

		before := sortedIDs(Flatten(tree))
		after := Flatten(res.Tree)
		require.Equal(t, before, sortedIDs(after))
		_, err = Build(after)
		require.NoError(t, err)

		// The moved item keeps its descendants.
		require.ElementsMatch(t, DescendantIDs(Flatten(tree), active), DescendantIDs(after, active))
	})
}

func TestProperty_GroupStoreMembershipIsExclusive(t *testing.T) {
	sections := []string{"s0", "s1", "s2", "s3", "s4", "s5"}
	groupIDs := []string{"g0", "g1", "g2", domain.HiddenGroupID, "zzz"}

	rapid.Check(t, func(t *rapid.T) {
		seed := []domain.Group{{ID: "g0", Name: "G0"}, {ID: "g1", Name: "G1"}, {ID: "g2", Name: "G2"}}
		for _, sid := range sections {
			gi := rapid.IntRange(0, len(seed)-1).Draw(t, "seed_"+sid)
			seed[gi].Sections = append(seed[gi].Sections, domain.PreparedSection{DataSectionID: sid})
		}
		s, err := NewGroupStore(seed)
		require.NoError(t, err)

		ops := rapid.IntRange(1, 25).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			sid := rapid.SampledFrom(sections).Draw(t, fmt.Sprintf("section_%d", i))
			gid := rapid.SampledFrom(groupIDs).Draw(t, fmt.Sprintf("group_%d", i))
			var res StoreResult
			switch rapid.IntRange(0, 4).Draw(t, fmt.Sprintf("op_%d", i)) {
			case 0:
				res, err = s.MoveSection(sid, gid)
			case 1:
				res, err = s.RemoveSection(sid)
			case 2:
				res, err = s.ToggleRowCount(sid, rapid.Bool().Draw(t, fmt.Sprintf("flag_%d", i)))
			case 3:
				res, err = s.DeleteGroup(gid)
				if gid == domain.HiddenGroupID {
					var pe *ProtectedGroupError
					require.True(t, errors.As(err, &pe))
				}
			case 4:
				res, err = s.CreateGroup(gid, "New "+gid)
			}
			if err == nil {
				s = res.Store
			}

			_, ok := s.Group(domain.HiddenGroupID)
			require.True(t, ok, "hidden group must survive every operation")
			seen := map[string]int{}
			for _, g := range s.Groups() {
				for _, ps := range g.Sections {
					seen[ps.DataSectionID]++
				}
			}
			require.Len(t, seen, len(sections))
			for sid, n := range seen {
				require.Equal(t, 1, n, "section %s appears %d times", sid, n)
			}
		}
	})
}
