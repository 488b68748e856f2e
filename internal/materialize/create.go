package materialize

import (
	"log/slog"

	"github.com/relatixjs/relatix/internal/ident"
	"github.com/relatixjs/relatix/internal/ir"
	"github.com/relatixjs/relatix/internal/schema"
)

// Refs builds concrete references for record builders.
type Refs struct{}

// To returns a reference to the record id of table.
func (Refs) To(table, id string) ir.Ref {
	return ir.NewRef(table, id)
}

// Many returns a sequence of references into one table.
func (r Refs) Many(table string, ids ...string) ir.Array {
	arr := make(ir.Array, len(ids))
	for i, id := range ids {
		arr[i] = r.To(table, id)
	}
	return arr
}

// Creator constructs standalone records for the tables of a schema. The
// records are not attached to any store; commit them to add them.
//
// Thread-safety: safe for concurrent use if its id generator is.
type Creator struct {
	schema *schema.Schema
	ids    ident.Generator
	logger *slog.Logger
}

// NewCreator creates a Creator. Only WithIDGenerator and WithLogger apply.
// Pass the generator used for materialization so both paths draw ids from
// one source.
func NewCreator(s *schema.Schema, opts ...Option) *Creator {
	cfg := newConfig(opts)
	return &Creator{schema: s, ids: cfg.ids, logger: cfg.logger}
}

// CreateOption overrides the id or label of a created record.
type CreateOption func(*createOptions)

type createOptions struct {
	id       string
	label    string
	hasID    bool
	hasLabel bool
}

// WithID sets the record id instead of generating one.
func WithID(id string) CreateOption {
	return func(o *createOptions) {
		o.id = id
		o.hasID = true
	}
}

// WithLabel sets the record label. Default: "{table}_{id}".
func WithLabel(label string) CreateOption {
	return func(o *createOptions) {
		o.label = label
		o.hasLabel = true
	}
}

// Create builds a record of table with the data returned by build.
func (c *Creator) Create(table string, build func(Refs) ir.Object, opts ...CreateOption) (ir.Record, error) {
	if !c.schema.Has(table) {
		return ir.Record{}, &Error{
			Code:    ErrCodeUnknownTable,
			Table:   table,
			Message: "cannot create a record for a table the schema does not declare",
		}
	}

	var o createOptions
	for _, opt := range opts {
		opt(&o)
	}

	id := o.id
	if !o.hasID {
		id = c.ids.Generate("")
		if id == "" {
			// Generators keyed on population keys have nothing to work with here.
			id = ident.UUIDv7Generator{}.Generate("")
		}
	}
	if id == "" {
		return ir.Record{}, &Error{Code: ErrCodeEmptyID, Table: table, Message: "record id is empty"}
	}

	label := o.label
	if !o.hasLabel {
		label = ident.DefaultCreateLabel(table, id)
	}

	var data ir.Object
	if build != nil {
		data = build(Refs{})
	}
	if data == nil {
		data = ir.Object{}
	}

	// A symbolic reference has no population to resolve against here.
	w := rewriter{index: IDIndex{}, table: table, key: id}
	if _, err := w.object(data, ""); err != nil {
		return ir.Record{}, err
	}

	c.logger.Debug("created record", "table", table, "id", id)
	return ir.Record{ID: id, Label: label, Data: data}, nil
}
