package materialize

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relatixjs/relatix/internal/ident"
	"github.com/relatixjs/relatix/internal/ir"
	"github.com/relatixjs/relatix/internal/population"
	"github.com/relatixjs/relatix/internal/schema"
	"github.com/relatixjs/relatix/internal/testutil"
)

func peopleSchema() *schema.Schema {
	return schema.MustNew(
		schema.NewTable("People",
			schema.Scalar("name", schema.KindString),
			schema.Ref("favouriteCoWorker", schema.Self),
		),
		schema.NewTable("Projects", schema.Scalar("title", schema.KindString)),
		schema.NewTable("Tasks",
			schema.Ref("assignedTo", "People"),
			schema.RefMany("reviewers", "People"),
		),
	)
}

func peoplePopulation() *population.Population {
	return population.New().
		Add("People", "alice", ir.Object{
			"name":              ir.String("Alice"),
			"favouriteCoWorker": population.Ref("People", "bob"),
		}).
		Add("People", "bob", ir.Object{
			"name":              ir.String("Bob"),
			"favouriteCoWorker": ir.Null{},
		}).
		Add("Tasks", "t1", ir.Object{
			"title":      ir.String("Write docs"),
			"assignedTo": population.Ref("People", "alice"),
			"reviewers":  population.Refs("People", "alice", "bob"),
			"meta": ir.Object{
				"history": ir.Array{ir.Object{"by": population.Ref("People", "bob")}},
			},
		})
}

func TestMaterialize(t *testing.T) {
	st, index, err := Materialize(peopleSchema(), peoplePopulation(),
		WithIDGenerator(ident.NewSequenceGenerator("id")))
	require.NoError(t, err)

	assert.Equal(t, IDIndex{
		"People": {"alice": "id-1", "bob": "id-2"},
		"Tasks":  {"t1": "id-3"},
	}, index)
	assert.Equal(t, []string{"People", "Projects", "Tasks"}, st.Tables())

	people, ok := st.Table("People")
	require.True(t, ok)
	assert.Equal(t, []string{"id-1", "id-2"}, people.IDs())

	alice, _ := people.Get("id-1")
	assert.Equal(t, "alice", alice.Label)
	assert.Equal(t, ir.NewRef("People", "id-2"), alice.Data["favouriteCoWorker"])

	task, ok := st.Get("Tasks", "id-3")
	require.True(t, ok)
	assert.Equal(t, ir.NewRef("People", "id-1"), task.Data["assignedTo"])
	assert.Equal(t, ir.Array{ir.NewRef("People", "id-1"), ir.NewRef("People", "id-2")}, task.Data["reviewers"])
	history := task.Data["meta"].(ir.Object)["history"].(ir.Array)
	assert.Equal(t, ir.NewRef("People", "id-2"), history[0].(ir.Object)["by"])

	projects, ok := st.Table("Projects")
	require.True(t, ok, "declared but unpopulated tables exist")
	assert.Equal(t, 0, projects.Len())
}

func TestMaterializeDoesNotModifyPopulation(t *testing.T) {
	p := peoplePopulation()
	_, _, err := Materialize(peopleSchema(), p, WithIDGenerator(ident.KeyGenerator{}))
	require.NoError(t, err)

	assert.Equal(t, population.Ref("People", "bob"), p.Entries("People")[0].Data["favouriteCoWorker"])
}

func TestMaterializeDefaultGenerators(t *testing.T) {
	st, index, err := Materialize(peopleSchema(), peoplePopulation())
	require.NoError(t, err)

	id, ok := index.ID("People", "alice")
	require.True(t, ok)
	assert.Len(t, id, 36)
	rec, ok := st.Get("People", id)
	require.True(t, ok)
	assert.Equal(t, "alice", rec.Label)
}

func TestMaterializeLabelGenerator(t *testing.T) {
	st, _, err := Materialize(peopleSchema(), peoplePopulation(),
		WithIDGenerator(ident.KeyGenerator{}),
		WithLabelGenerator(strings.ToUpper))
	require.NoError(t, err)

	rec, ok := st.Get("People", "alice")
	require.True(t, ok)
	assert.Equal(t, "ALICE", rec.Label)
}

func TestMaterializeErrors(t *testing.T) {
	tests := []struct {
		name  string
		pop   *population.Population
		gen   ident.Generator
		code  ErrorCode
		field string
	}{
		{
			name: "dangling symbolic reference",
			pop: population.New().Add("People", "alice", ir.Object{
				"favouriteCoWorker": population.Ref("People", "carol"),
			}),
			gen:   ident.KeyGenerator{},
			code:  ErrCodeDanglingRef,
			field: "favouriteCoWorker",
		},
		{
			name: "dangling reference nested in a list",
			pop: population.New().
				Add("People", "alice", nil).
				Add("Tasks", "t1", ir.Object{"meta": ir.Object{"reviewers": population.Refs("People", "alice", "zed")}}),
			gen:   ident.KeyGenerator{},
			code:  ErrCodeDanglingRef,
			field: "meta.reviewers",
		},
		{
			name: "reference into unpopulated table",
			pop: population.New().Add("Tasks", "t1", ir.Object{
				"project": population.Ref("Projects", "p1"),
			}),
			gen:   ident.KeyGenerator{},
			code:  ErrCodeDanglingRef,
			field: "project",
		},
		{
			name: "unknown table",
			pop:  population.New().Add("Ghosts", "casper", nil),
			gen:  ident.KeyGenerator{},
			code: ErrCodeUnknownTable,
		},
		{
			name: "duplicate id",
			pop:  population.New().Add("People", "a", nil).Add("People", "b", nil),
			gen:  ident.GeneratorFunc(func(string) string { return "same" }),
			code: ErrCodeDuplicateID,
		},
		{
			name: "empty id",
			pop:  population.New().Add("People", "a", nil),
			gen:  ident.GeneratorFunc(func(string) string { return "" }),
			code: ErrCodeEmptyID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, index, err := Materialize(peopleSchema(), tt.pop, WithIDGenerator(tt.gen))
			require.Error(t, err)
			assert.Nil(t, st)
			assert.Nil(t, index)
			assert.True(t, IsMaterializationError(err))

			var me *Error
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tt.code, me.Code)
			assert.Equal(t, tt.field, me.Field)
			assert.Equal(t, tt.code == ErrCodeDanglingRef, IsDanglingRefError(err))
		})
	}
}

func TestMaterializeSameIDAcrossTablesIsAllowed(t *testing.T) {
	pop := population.New().Add("People", "x", nil).Add("Projects", "x", nil)
	st, _, err := Materialize(peopleSchema(), pop, WithIDGenerator(ident.KeyGenerator{}))
	require.NoError(t, err)

	_, ok := st.Get("People", "x")
	assert.True(t, ok)
	_, ok = st.Get("Projects", "x")
	assert.True(t, ok)
}

func TestMaterializeLogs(t *testing.T) {
	logger, buf := testutil.NewLogger(slog.LevelDebug)

	_, _, err := Materialize(peopleSchema(), peoplePopulation(), WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "materialized store")
	assert.Contains(t, buf.String(), "records=3")
}
