// Package relatix is an in-process normalized relational store.
//
// A model is declared as tables whose fields may reference records of other
// tables (or of their own table). Seed data is written with symbolic
// references by population key; Done materializes it into an immutable
// Store where every reference carries a generated record id. Commits produce
// new Stores, sharing untouched tables, and return the input Store itself
// when nothing changed. Deep selectors expand references into the data they
// point to, bounded by depth and never following same-table edges.
//
//	m, err := relatix.Tables().
//		AddTables(
//			relatix.NewTable("People", relatix.RefField("favouriteCoWorker", relatix.Self)),
//		).
//		Populate(relatix.NewPopulation().
//			Add("People", "alice", relatix.Object{"favouriteCoWorker": relatix.TableRef("People", "bob")}).
//			Add("People", "bob", relatix.Object{"favouriteCoWorker": relatix.Null{}})).
//		Done()
package relatix

import (
	"io"
	"sync"

	"github.com/relatixjs/relatix/internal/commit"
	"github.com/relatixjs/relatix/internal/ir"
	"github.com/relatixjs/relatix/internal/materialize"
	"github.com/relatixjs/relatix/internal/population"
	"github.com/relatixjs/relatix/internal/resolve"
	"github.com/relatixjs/relatix/internal/schema"
	"github.com/relatixjs/relatix/internal/selector"
	"github.com/relatixjs/relatix/internal/store"
)

// Value model.
type (
	Value       = ir.Value
	Object      = ir.Object
	Array       = ir.Array
	String      = ir.String
	Int         = ir.Int
	Float       = ir.Float
	Bool        = ir.Bool
	Null        = ir.Null
	Time        = ir.Time
	Pattern     = ir.Pattern
	Func        = ir.Func
	Ref         = ir.Ref
	SymbolicRef = ir.SymbolicRef
	Record      = ir.Record
)

// Schema, population and state.
type (
	Table               = schema.Table
	Field               = schema.Field
	Schema              = schema.Schema
	Population          = population.Population
	Store               = store.Store
	IDIndex             = materialize.IDIndex
	Update              = commit.Update
	UnresolvedReference = resolve.UnresolvedReference
	NotFoundError       = store.NotFoundError
	CreateOption        = materialize.CreateOption
	Refs                = materialize.Refs
	FieldKind           = schema.FieldKind
)

// Selectors.
type (
	ShallowSelector = selector.Shallow
	DeepSelector    = selector.Deep
)

// Field kinds accepted by ScalarField.
const (
	KindString  = schema.KindString
	KindInt     = schema.KindInt
	KindFloat   = schema.KindFloat
	KindBool    = schema.KindBool
	KindTime    = schema.KindTime
	KindPattern = schema.KindPattern
	KindFunc    = schema.KindFunc
	KindArray   = schema.KindArray
	KindObject  = schema.KindObject
	KindAny     = schema.KindAny
)

// Self marks a reference field pointing into its own table.
const Self = schema.Self

var (
	NewTable      = schema.NewTable
	ScalarField   = schema.Scalar
	RefField      = schema.Ref
	RefManyField  = schema.RefMany
	NewPopulation = population.New
	TableRef      = population.Ref
	TableRefs     = population.Refs
	FromGo        = ir.FromGo
	WithID        = materialize.WithID
	WithLabel     = materialize.WithLabel
	IsNotFound    = store.IsNotFound
)

// Builder accumulates a model declaration and its seed data.
// Each method returns a new Builder.
type Builder struct {
	cfg    config
	schema *schema.Schema
	pop    *population.Population
	err    error
}

// Tables starts a model declaration.
func Tables(opts ...Option) *Builder {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Builder{cfg: cfg, schema: schema.MustNew(), pop: population.New()}
}

// AddTables declares tables. Later calls may reference tables declared by
// earlier ones. Declaring tables drops any population given so far.
func (b *Builder) AddTables(tables ...schema.Table) *Builder {
	if b.err != nil {
		return b
	}
	s, err := b.schema.Extend(tables...)
	if err != nil {
		return &Builder{cfg: b.cfg, schema: b.schema, pop: b.pop, err: err}
	}
	return &Builder{cfg: b.cfg, schema: s, pop: population.New()}
}

// AddCUE declares the tables of a CUE schema source. See schema.LoadCUE for
// the expected shape.
func (b *Builder) AddCUE(src []byte, filename string) *Builder {
	if b.err != nil {
		return b
	}
	loaded, err := schema.LoadCUE(src, filename)
	if err != nil {
		return &Builder{cfg: b.cfg, schema: b.schema, pop: b.pop, err: err}
	}
	tables := make([]schema.Table, 0, len(loaded.Tables()))
	for _, name := range loaded.Tables() {
		t, _ := loaded.Table(name)
		tables = append(tables, t)
	}
	return b.AddTables(tables...)
}

// Populate sets the seed data.
func (b *Builder) Populate(p *population.Population) *Builder {
	if b.err != nil {
		return b
	}
	return &Builder{cfg: b.cfg, schema: b.schema, pop: p}
}

// PopulateYAML sets the seed data from a YAML document read against the
// tables declared so far. See population.LoadYAML for the document shape.
func (b *Builder) PopulateYAML(r io.Reader) *Builder {
	if b.err != nil {
		return b
	}
	p, err := population.LoadYAML(r, b.schema)
	if err != nil {
		return &Builder{cfg: b.cfg, schema: b.schema, pop: b.pop, err: err}
	}
	return b.Populate(p)
}

// PopulateYAMLFile is PopulateYAML reading the file at path.
func (b *Builder) PopulateYAMLFile(path string) *Builder {
	if b.err != nil {
		return b
	}
	p, err := population.LoadYAMLFile(path, b.schema)
	if err != nil {
		return &Builder{cfg: b.cfg, schema: b.schema, pop: b.pop, err: err}
	}
	return b.Populate(p)
}

// Schema returns the tables declared so far.
func (b *Builder) Schema() *schema.Schema {
	return b.schema
}

// Err returns the first declaration error, if any.
func (b *Builder) Err() error {
	return b.err
}

// Done materializes the seed data and returns the model handles.
func (b *Builder) Done() (*Model, error) {
	if b.err != nil {
		return nil, b.err
	}

	st, ids, err := materialize.Materialize(b.schema, b.pop,
		materialize.WithIDGenerator(b.cfg.ids),
		materialize.WithLabelGenerator(b.cfg.labels),
		materialize.WithLogger(b.cfg.logger))
	if err != nil {
		return nil, err
	}

	resolver := resolve.New(
		resolve.WithLogger(b.cfg.logger),
		resolve.WithMaxDepth(b.cfg.maxDepth),
		resolve.WithDiagnostics(b.cfg.diagnostics))

	return &Model{
		schema:    b.schema,
		initial:   st,
		ids:       ids,
		creator:   materialize.NewCreator(b.schema, materialize.WithIDGenerator(b.cfg.ids), materialize.WithLogger(b.cfg.logger)),
		committer: commit.New(commit.WithLogger(b.cfg.logger)),
		resolver:  resolver,
		selectors: selector.NewSet(b.schema.Tables(), resolver),
	}, nil
}

// Model holds the handles of a materialized model.
//
// Thread-safety: all handles are safe for concurrent use; Stores are
// immutable.
type Model struct {
	schema    *schema.Schema
	initial   *store.Store
	ids       materialize.IDIndex
	creator   *materialize.Creator
	committer *commit.Committer
	resolver  *resolve.Resolver
	selectors *selector.Set

	// Selectors of undeclared tables, created on first use.
	mu       sync.Mutex
	fallback map[string]*selector.Set
}

// Schema returns the model's tables.
func (m *Model) Schema() *schema.Schema {
	return m.schema
}

// Tables returns the materialized initial store.
func (m *Model) Tables() *store.Store {
	return m.initial
}

// InitIDs returns the population key -> id index built by Done.
func (m *Model) InitIDs() materialize.IDIndex {
	return m.ids
}

// Create builds a standalone record of table. Ids come from the same
// generator that materialized the model.
func (m *Model) Create(table string, build func(materialize.Refs) ir.Object, opts ...materialize.CreateOption) (ir.Record, error) {
	return m.creator.Create(table, build, opts...)
}

// Commit returns the commit operations of table.
func (m *Model) Commit(table string) TableCommit {
	return TableCommit{c: m.committer, table: table}
}

// Select returns the shallow selectors of table. An undeclared table gets
// selectors that always report it empty.
func (m *Model) Select(table string) *ShallowSelector {
	if sel, ok := m.selectors.Table(table); ok {
		return sel
	}
	sel, _ := m.undeclared(table).Table(table)
	return sel
}

// DeepSelect returns the deep selectors of table.
func (m *Model) DeepSelect(table string) *DeepSelector {
	if sel, ok := m.selectors.Deep(table); ok {
		return sel
	}
	sel, _ := m.undeclared(table).Deep(table)
	return sel
}

// undeclared returns the selector set of a table the schema does not
// declare. The same set is returned on every call so results stay memoized.
func (m *Model) undeclared(table string) *selector.Set {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fallback == nil {
		m.fallback = make(map[string]*selector.Set)
	}
	set, ok := m.fallback[table]
	if !ok {
		set = selector.NewSet([]string{table}, m.resolver)
		m.fallback[table] = set
	}
	return set
}

// Resolve expands record id of table with the configured depth.
func (m *Model) Resolve(s *store.Store, table, id string) (ir.Value, error) {
	return m.resolver.Resolve(s, table, id)
}

// ResolveDepth is Resolve with an explicit depth. Unlike DeepSelect it is
// not memoized, so diagnostics are reported on every call.
func (m *Model) ResolveDepth(s *store.Store, table, id string, depth int) (ir.Value, error) {
	return m.resolver.ResolveDepth(s, table, id, depth)
}

// TableCommit binds the commit operations to one table.
type TableCommit struct {
	c     *commit.Committer
	table string
}

// AddOne inserts rec unless its id is already present.
func (tc TableCommit) AddOne(s *store.Store, rec ir.Record) *store.Store {
	return tc.c.AddOne(s, tc.table, rec)
}

// AddMany inserts the records whose ids are absent. The first of duplicate ids wins.
func (tc TableCommit) AddMany(s *store.Store, recs []ir.Record) *store.Store {
	return tc.c.AddMany(s, tc.table, recs)
}

// UpsertOne inserts or replaces rec.
func (tc TableCommit) UpsertOne(s *store.Store, rec ir.Record) *store.Store {
	return tc.c.UpsertOne(s, tc.table, rec)
}

// UpsertMany applies UpsertOne for each record in order.
func (tc TableCommit) UpsertMany(s *store.Store, recs []ir.Record) *store.Store {
	return tc.c.UpsertMany(s, tc.table, recs)
}

// SetOne inserts or replaces rec.
func (tc TableCommit) SetOne(s *store.Store, rec ir.Record) *store.Store {
	return tc.c.SetOne(s, tc.table, rec)
}

// SetMany applies SetOne for each record in order.
func (tc TableCommit) SetMany(s *store.Store, recs []ir.Record) *store.Store {
	return tc.c.SetMany(s, tc.table, recs)
}

// SetAll replaces the whole table with recs.
func (tc TableCommit) SetAll(s *store.Store, recs []ir.Record) *store.Store {
	return tc.c.SetAll(s, tc.table, recs)
}

// UpdateOne merges changes into an existing record.
func (tc TableCommit) UpdateOne(s *store.Store, u commit.Update) *store.Store {
	return tc.c.UpdateOne(s, tc.table, u)
}

// UpdateMany applies UpdateOne for each update in order.
func (tc TableCommit) UpdateMany(s *store.Store, updates []commit.Update) *store.Store {
	return tc.c.UpdateMany(s, tc.table, updates)
}

// RemoveOne deletes record id.
func (tc TableCommit) RemoveOne(s *store.Store, id string) *store.Store {
	return tc.c.RemoveOne(s, tc.table, id)
}

// RemoveMany deletes every present id. Absent ids are ignored.
func (tc TableCommit) RemoveMany(s *store.Store, ids []string) *store.Store {
	return tc.c.RemoveMany(s, tc.table, ids)
}

// RemoveAll empties the table.
func (tc TableCommit) RemoveAll(s *store.Store) *store.Store {
	return tc.c.RemoveAll(s, tc.table)
}
