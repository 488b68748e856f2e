package resolve

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relatixjs/relatix/internal/commit"
	"github.com/relatixjs/relatix/internal/ident"
	"github.com/relatixjs/relatix/internal/ir"
	"github.com/relatixjs/relatix/internal/materialize"
	"github.com/relatixjs/relatix/internal/population"
	"github.com/relatixjs/relatix/internal/schema"
	"github.com/relatixjs/relatix/internal/store"
	"github.com/relatixjs/relatix/internal/testutil"
)

func rec(id string, data ir.Object) ir.Record {
	return ir.Record{ID: id, Label: id, Data: data}
}

// chain is C -> B -> A.
func chain() *store.Store {
	s := store.New("A", "B", "C")
	s = s.WithTable("A", store.NewTable(rec("a1", ir.Object{"val": ir.String("leaf")})))
	s = s.WithTable("B", store.NewTable(rec("b1", ir.Object{"refA": ir.NewRef("A", "a1")})))
	s = s.WithTable("C", store.NewTable(rec("c1", ir.Object{"refB": ir.NewRef("B", "b1")})))
	return s
}

func TestDepthLaw(t *testing.T) {
	r := New()
	s := chain()

	got, err := r.ResolveDepth(s, "C", "c1", 0)
	require.NoError(t, err)
	assert.Equal(t, ir.Object{"refB": ir.NewRef("B", "b1")}, got)

	got, err = r.ResolveDepth(s, "C", "c1", 1)
	require.NoError(t, err)
	assert.Equal(t, ir.Object{"refB": ir.Object{"refA": ir.NewRef("A", "a1")}}, got)

	got, err = r.ResolveDepth(s, "C", "c1", 2)
	require.NoError(t, err)
	assert.Equal(t, ir.Object{"refB": ir.Object{"refA": ir.Object{"val": ir.String("leaf")}}}, got)

	got, err = r.Resolve(s, "C", "c1")
	require.NoError(t, err)
	assert.Equal(t, ir.Object{"refB": ir.Object{"refA": ir.Object{"val": ir.String("leaf")}}}, got)
}

func TestNegativeDepthReturnsRecord(t *testing.T) {
	got, err := New().ResolveDepth(chain(), "C", "c1", -1)
	require.NoError(t, err)
	assert.Equal(t, rec("c1", ir.Object{"refB": ir.NewRef("B", "b1")}), got)
}

func TestNestingDoesNotConsumeDepth(t *testing.T) {
	s := chain().WithTable("D", store.NewTable(rec("d1", ir.Object{
		"deep": ir.Object{"list": ir.Array{ir.Array{ir.Object{"to": ir.NewRef("A", "a1")}}}},
	})))

	got, err := New().ResolveDepth(s, "D", "d1", 1)
	require.NoError(t, err)
	assert.Equal(t, ir.Object{
		"deep": ir.Object{"list": ir.Array{ir.Array{ir.Object{"to": ir.Object{"val": ir.String("leaf")}}}}},
	}, got)
}

func TestCycleLaw(t *testing.T) {
	sch := schema.MustNew(schema.NewTable("People",
		schema.Scalar("name", schema.KindString),
		schema.Ref("favouriteCoWorker", schema.Self),
	))
	pop := population.New().
		Add("People", "alice", ir.Object{"name": ir.String("Alice"), "favouriteCoWorker": population.Ref("People", "bob")}).
		Add("People", "bob", ir.Object{"name": ir.String("Bob"), "favouriteCoWorker": ir.Null{}})
	s, index, err := materialize.Materialize(sch, pop, materialize.WithIDGenerator(ident.NewSequenceGenerator("p")))
	require.NoError(t, err)

	var diags []UnresolvedReference
	r := New(WithDiagnostics(func(u UnresolvedReference) { diags = append(diags, u) }))

	aliceID, _ := index.ID("People", "alice")
	bobID, _ := index.ID("People", "bob")
	got, err := r.Resolve(s, "People", aliceID)
	require.NoError(t, err)

	assert.Equal(t, ir.Object{
		"name":              ir.String("Alice"),
		"favouriteCoWorker": ir.NewRef("People", bobID),
	}, got)
	require.Len(t, diags, 1)
	assert.Equal(t, ReasonSameTable, diags[0].Reason)
	assert.Equal(t, "People", diags[0].From)
}

func TestCrossTableCycleIsBoundedByDepth(t *testing.T) {
	s := store.New("X", "Y")
	s = s.WithTable("X", store.NewTable(rec("x1", ir.Object{"y": ir.NewRef("Y", "y1")})))
	s = s.WithTable("Y", store.NewTable(rec("y1", ir.Object{"x": ir.NewRef("X", "x1")})))

	got, err := New().ResolveDepth(s, "X", "x1", 3)
	require.NoError(t, err)
	assert.Equal(t, ir.Object{
		"y": ir.Object{"x": ir.Object{"y": ir.Object{"x": ir.NewRef("X", "x1")}}},
	}, got)
}

func TestMissingReferenceLaw(t *testing.T) {
	logger, buf := testutil.NewLogger(slog.LevelInfo)
	var diags []UnresolvedReference
	r := New(
		WithLogger(logger),
		WithDiagnostics(func(u UnresolvedReference) { diags = append(diags, u) }),
	)

	s := chain().WithTable("C", store.NewTable(rec("c1", ir.Object{
		"refB":  ir.NewRef("B", "ghost"),
		"other": ir.NewRef("Nowhere", "x"),
	})))

	got, err := r.Resolve(s, "C", "c1")
	require.NoError(t, err)
	assert.Equal(t, ir.Object{
		"refB":  ir.NewRef("B", "ghost"),
		"other": ir.NewRef("Nowhere", "x"),
	}, got)

	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, ReasonMissingTarget, d.Reason)
	}
	assert.Contains(t, buf.String(), "could not resolve reference")
}

func TestRootNotFound(t *testing.T) {
	r := New()

	_, err := r.Resolve(chain(), "C", "nope")
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))

	_, err = r.Resolve(chain(), "Nope", "c1")
	assert.True(t, store.IsNotFound(err))
}

func TestWrappedRecordInDataIsUnwrapped(t *testing.T) {
	s := chain().WithTable("W", store.NewTable(rec("w1", ir.Object{
		"embedded": ir.Record{ID: "e", Label: "e", Data: ir.Object{"to": ir.NewRef("A", "a1")}},
	})))

	got, err := New().ResolveDepth(s, "W", "w1", 2)
	require.NoError(t, err)
	assert.Equal(t, ir.Object{"embedded": ir.Object{"to": ir.Object{"val": ir.String("leaf")}}}, got)

	got, err = New().ResolveDepth(s, "W", "w1", 1)
	require.NoError(t, err)
	assert.Equal(t, ir.Object{"embedded": ir.Object{"to": ir.NewRef("A", "a1")}}, got)
}

func TestAllAndEntities(t *testing.T) {
	s := chain()
	s = s.WithTable("B", store.NewTable(
		rec("b1", ir.Object{"refA": ir.NewRef("A", "a1")}),
		rec("b2", ir.Object{"refA": ir.Null{}}),
	))
	r := New(WithMaxDepth(1))
	assert.Equal(t, 1, r.MaxDepth())

	all := r.All(s, "B", 0)
	require.Len(t, all, 2)
	assert.Equal(t, ir.Object{"refA": ir.NewRef("A", "a1")}, all[0])
	assert.Equal(t, ir.Object{"refA": ir.Null{}}, all[1])

	entities := r.Entities(s, "B", r.MaxDepth())
	assert.Equal(t, ir.Object{"refA": ir.Object{"val": ir.String("leaf")}}, entities["b1"])

	assert.Nil(t, r.All(s, "Nope", 1))
	assert.Nil(t, r.Entities(s, "Nope", 1))
}

func TestResolveDoesNotModifyStore(t *testing.T) {
	s := chain()
	_, err := New().Resolve(s, "C", "c1")
	require.NoError(t, err)

	c1, _ := s.Get("C", "c1")
	assert.Equal(t, ir.NewRef("B", "b1"), c1.Data["refB"])
}

func TestEndToEndDanglingAfterRemove(t *testing.T) {
	sch := schema.MustNew(schema.NewTable("People", schema.Ref("favouriteCoWorker", schema.Self)))
	pop := population.New().
		Add("People", "alice", ir.Object{"favouriteCoWorker": population.Ref("People", "bob")}).
		Add("People", "bob", ir.Object{"favouriteCoWorker": ir.Null{}})
	s, index, err := materialize.Materialize(sch, pop)
	require.NoError(t, err)
	aliceID, _ := index.ID("People", "alice")
	bobID, _ := index.ID("People", "bob")

	s = commit.New().RemoveOne(s, "People", bobID)

	got, err := New().Resolve(s, "People", aliceID)
	require.NoError(t, err)
	assert.Equal(t, ir.Object{"favouriteCoWorker": ir.NewRef("People", bobID)}, got)
}

func TestWorkplaceDepths(t *testing.T) {
	s, index, err := materialize.Materialize(testutil.WorkplaceSchema(), testutil.WorkplacePopulation(),
		materialize.WithIDGenerator(ident.KeyGenerator{}),
		materialize.WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	docs, ok := index.ID("Tasks", "docs")
	require.True(t, ok)

	var diags []UnresolvedReference
	r := New(
		WithLogger(testutil.DiscardLogger()),
		WithDiagnostics(func(u UnresolvedReference) { diags = append(diags, u) }),
	)

	alice := ir.Object{"name": ir.String("Alice"), "favouriteCoWorker": ir.NewRef("People", "bob")}
	bob := ir.Object{"name": ir.String("Bob"), "favouriteCoWorker": ir.Null{}}

	got, err := r.ResolveDepth(s, "Tasks", docs, 2)
	require.NoError(t, err)
	assert.Equal(t, ir.Object{
		"title":     ir.String("Write docs"),
		"done":      ir.Bool(false),
		"project":   ir.Object{"title": ir.String("Relatix"), "lead": alice},
		"assignees": ir.Array{alice, bob},
	}, got)

	require.Len(t, diags, 1)
	assert.Equal(t, UnresolvedReference{Ref: ir.NewRef("People", "bob"), From: "People", Reason: ReasonSameTable}, diags[0])
}
