package commit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/relatixjs/relatix/internal/ir"
)

func TestMerge(t *testing.T) {
	when := ir.NewTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name    string
		base    ir.Object
		changes ir.Object
		want    ir.Object
		changed bool
	}{
		{
			name:    "empty changes",
			base:    ir.Object{"a": ir.Int(1)},
			changes: ir.Object{},
			want:    ir.Object{"a": ir.Int(1)},
		},
		{
			name:    "arrays are replaced wholesale",
			base:    ir.Object{"name": ir.String("Alice"), "tags": ir.Array{ir.String("a"), ir.String("b")}},
			changes: ir.Object{"tags": ir.Array{ir.String("c")}},
			want:    ir.Object{"name": ir.String("Alice"), "tags": ir.Array{ir.String("c")}},
			changed: true,
		},
		{
			name:    "nested objects merge",
			base:    ir.Object{"address": ir.Object{"city": ir.String("Paris"), "zip": ir.String("75001")}},
			changes: ir.Object{"address": ir.Object{"city": ir.String("Lyon")}},
			want:    ir.Object{"address": ir.Object{"city": ir.String("Lyon"), "zip": ir.String("75001")}},
			changed: true,
		},
		{
			name:    "object change over a scalar starts from empty",
			base:    ir.Object{"address": ir.String("unknown")},
			changes: ir.Object{"address": ir.Object{"city": ir.String("Lyon")}},
			want:    ir.Object{"address": ir.Object{"city": ir.String("Lyon")}},
			changed: true,
		},
		{
			name:    "empty object change over a scalar",
			base:    ir.Object{"address": ir.String("unknown")},
			changes: ir.Object{"address": ir.Object{}},
			want:    ir.Object{"address": ir.Object{}},
			changed: true,
		},
		{
			name:    "scalar replaces an object",
			base:    ir.Object{"address": ir.Object{"city": ir.String("Paris")}},
			changes: ir.Object{"address": ir.Null{}},
			want:    ir.Object{"address": ir.Null{}},
			changed: true,
		},
		{
			name:    "reference replaces wholesale",
			base:    ir.Object{"owner": ir.NewRef("People", "a")},
			changes: ir.Object{"owner": ir.NewRef("People", "b")},
			want:    ir.Object{"owner": ir.NewRef("People", "b")},
			changed: true,
		},
		{
			name:    "dates are leaves",
			base:    ir.Object{"due": ir.Object{"y": ir.Int(2023)}},
			changes: ir.Object{"due": when},
			want:    ir.Object{"due": when},
			changed: true,
		},
		{
			name:    "equal values are not a change",
			base:    ir.Object{"a": ir.Int(1), "n": ir.Object{"b": ir.Array{ir.Int(2)}}},
			changes: ir.Object{"a": ir.Int(1), "n": ir.Object{"b": ir.Array{ir.Int(2)}}},
			want:    ir.Object{"a": ir.Int(1), "n": ir.Object{"b": ir.Array{ir.Int(2)}}},
		},
		{
			name:    "new key is added",
			base:    ir.Object{},
			changes: ir.Object{"x": ir.Bool(true)},
			want:    ir.Object{"x": ir.Bool(true)},
			changed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := Merge(tt.base, tt.changes)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	base := ir.Object{"n": ir.Object{"a": ir.Int(1)}}
	changes := ir.Object{"n": ir.Object{"b": ir.Int(2)}}

	got, changed := Merge(base, changes)

	assert.True(t, changed)
	assert.Equal(t, ir.Object{"n": ir.Object{"a": ir.Int(1)}}, base)
	assert.Equal(t, ir.Object{"n": ir.Object{"b": ir.Int(2)}}, changes)
	assert.Equal(t, ir.Object{"n": ir.Object{"a": ir.Int(1), "b": ir.Int(2)}}, got)
}
