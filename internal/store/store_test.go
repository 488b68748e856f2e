package store

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relatixjs/relatix/internal/ir"
)

func rec(id, label string, data ir.Object) ir.Record {
	return ir.Record{ID: id, Label: label, Data: data}
}

func sampleStore() *Store {
	s := New("People", "Tasks")
	s = s.WithTable("People", NewTable(
		rec("p1", "alice", ir.Object{"name": ir.String("Alice"), "friend": ir.NewRef("People", "p2")}),
		rec("p2", "bob", ir.Object{"name": ir.String("Bob"), "friend": ir.Null{}}),
	))
	s = s.WithTable("Tasks", NewTable(
		rec("t1", "write", ir.Object{
			"assignee": ir.NewRef("People", "p1"),
			"done":     ir.Bool(false),
			"tags":     ir.Array{ir.String("docs")},
		}),
	))
	return s
}

func TestNewTableLastWins(t *testing.T) {
	tbl := NewTable(
		rec("a", "first", ir.Object{}),
		rec("b", "b", ir.Object{}),
		rec("a", "second", ir.Object{}),
	)

	assert.Equal(t, []string{"a", "b"}, tbl.IDs())
	got, ok := tbl.Get("a")
	require.True(t, ok)
	assert.Equal(t, "second", got.Label)
	assert.Equal(t, 2, tbl.Len())
	assert.Len(t, tbl.Entities(), 2)
}

func TestEditDoesNotTouchSource(t *testing.T) {
	src := NewTable(rec("a", "a", ir.Object{}), rec("b", "b", ir.Object{}))

	e := src.Edit()
	e.Put(rec("c", "c", ir.Object{}))
	assert.True(t, e.Delete("a"))
	assert.False(t, e.Delete("missing"))
	out := e.Table()

	assert.Equal(t, []string{"a", "b"}, src.IDs())
	assert.True(t, src.Has("a"))
	assert.Equal(t, []string{"b", "c"}, out.IDs())
	assert.False(t, out.Has("a"))
}

func TestEditDeleteThenPutAppends(t *testing.T) {
	e := NewTable(rec("a", "a", ir.Object{}), rec("b", "b", ir.Object{})).Edit()
	e.Delete("a")
	e.Put(rec("a", "again", ir.Object{}))

	out := e.Table()
	assert.Equal(t, []string{"b", "a"}, out.IDs())
	got, _ := out.Get("a")
	assert.Equal(t, "again", got.Label)
}

func TestRecordsFollowOrder(t *testing.T) {
	tbl := NewTable(rec("z", "z", ir.Object{}), rec("a", "a", ir.Object{}))
	recs := tbl.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "z", recs[0].ID)
	assert.Equal(t, "a", recs[1].ID)
}

func TestWithTableSharesUntouchedTables(t *testing.T) {
	s := sampleStore()
	people, _ := s.Table("People")
	tasks, _ := s.Table("Tasks")

	next := s.WithTable("Tasks", EmptyTable())

	nextPeople, _ := next.Table("People")
	nextTasks, _ := next.Table("Tasks")
	assert.Same(t, people, nextPeople)
	assert.NotSame(t, tasks, nextTasks)
	assert.Equal(t, 0, nextTasks.Len())

	oldTasks, _ := s.Table("Tasks")
	assert.Same(t, tasks, oldTasks, "source store must be unchanged")
}

func TestWithTableAppendsNewName(t *testing.T) {
	s := New("A")
	next := s.WithTable("B", EmptyTable())
	assert.Equal(t, []string{"A"}, s.Tables())
	assert.Equal(t, []string{"A", "B"}, next.Tables())
}

func TestNewIgnoresRepeatedNames(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, New("A", "B", "A").Tables())
}

func TestLookup(t *testing.T) {
	s := sampleStore()

	got, err := s.Lookup("People", "p1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Label)

	_, err = s.Lookup("People", "nope")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "People", nf.Table)
	assert.Equal(t, "nope", nf.ID)
	assert.Equal(t, ErrCodeNotFound, nf.Code())

	_, err = s.Lookup("Ghosts", "p1")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 3, s.Len())
}

func TestMarshalJSONGolden(t *testing.T) {
	data, err := sampleStore().MarshalJSON()
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "store_wire", data)
}

func TestJSONRoundTrip(t *testing.T) {
	s := sampleStore()
	data, err := s.MarshalJSON()
	require.NoError(t, err)

	var back Store
	require.NoError(t, back.UnmarshalJSON(data))

	assert.Equal(t, []string{"People", "Tasks"}, back.Tables())
	p1, ok := back.Get("People", "p1")
	require.True(t, ok)
	assert.Equal(t, ir.NewRef("People", "p2"), p1.Data["friend"])
	t1, _ := back.Get("Tasks", "t1")
	assert.Equal(t, ir.Array{ir.String("docs")}, t1.Data["tags"])

	again, err := back.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestUnmarshalJSONRejectsInconsistentShape(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing entity", `{"T":{"ids":["a"],"entities":{"b":{"id":"b","label":"","data":{}}}}}`},
		{"count mismatch", `{"T":{"ids":[],"entities":{"a":{"id":"a","label":"","data":{}}}}}`},
		{"duplicate id", `{"T":{"ids":["a","a"],"entities":{"a":{"id":"a","label":"","data":{}},"b":{"id":"b","label":"","data":{}}}}}`},
		{"id mismatch", `{"T":{"ids":["a"],"entities":{"a":{"id":"x","label":"","data":{}}}}}`},
		{"not json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Store
			assert.Error(t, s.UnmarshalJSON([]byte(tt.data)))
		})
	}
}

func TestMsgpackRoundTrip(t *testing.T) {
	when := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	s := sampleStore().WithTable("Events", NewTable(
		rec("e1", "launch", ir.Object{
			"at":     ir.NewTime(when),
			"weight": ir.Float(0.5),
			"count":  ir.Int(12),
			"nested": ir.Object{"by": ir.NewRef("People", "p1")},
		}),
	))

	data, err := s.MarshalMsgpack()
	require.NoError(t, err)

	var back Store
	require.NoError(t, back.UnmarshalMsgpack(data))

	e1, ok := back.Get("Events", "e1")
	require.True(t, ok)
	assert.Equal(t, "launch", e1.Label)
	assert.True(t, when.Equal(e1.Data["at"].(ir.Time).Time))
	assert.Equal(t, ir.Float(0.5), e1.Data["weight"])
	assert.Equal(t, ir.Int(12), e1.Data["count"])
	assert.Equal(t, ir.NewRef("People", "p1"), e1.Data["nested"].(ir.Object)["by"])

	wantDigest, err := sampleStore().Digest()
	require.NoError(t, err)
	people, _ := back.Table("People")
	tasks, _ := back.Table("Tasks")
	gotDigest, err := New().WithTable("People", people).WithTable("Tasks", tasks).Digest()
	require.NoError(t, err)
	assert.Equal(t, wantDigest, gotDigest)
}

func TestMsgpackDeterministic(t *testing.T) {
	a, err := sampleStore().MarshalMsgpack()
	require.NoError(t, err)
	b, err := sampleStore().MarshalMsgpack()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDigest(t *testing.T) {
	a, err := sampleStore().Digest()
	require.NoError(t, err)
	assert.Len(t, a, 64)

	reordered := New("Tasks", "People")
	for _, name := range []string{"People", "Tasks"} {
		tbl, _ := sampleStore().Table(name)
		reordered = reordered.WithTable(name, tbl)
	}
	b, err := reordered.Digest()
	require.NoError(t, err)
	assert.Equal(t, a, b, "digest ignores table declaration order")

	c, err := sampleStore().WithTable("Tasks", EmptyTable()).Digest()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
