package testutil

import (
	"github.com/relatixjs/relatix/internal/ir"
	"github.com/relatixjs/relatix/internal/population"
	"github.com/relatixjs/relatix/internal/schema"
)

// WorkplaceSchema declares three tables:
//
//	People:   name, favouriteCoWorker -> People (self)
//	Projects: title, lead -> People
//	Tasks:    title, done, project -> Projects, assignees -> [People]
func WorkplaceSchema() *schema.Schema {
	return schema.MustNew(
		schema.NewTable("People",
			schema.Scalar("name", schema.KindString),
			schema.Ref("favouriteCoWorker", schema.Self),
		),
		schema.NewTable("Projects",
			schema.Scalar("title", schema.KindString),
			schema.Ref("lead", "People"),
		),
		schema.NewTable("Tasks",
			schema.Scalar("title", schema.KindString),
			schema.Scalar("done", schema.KindBool),
			schema.Ref("project", "Projects"),
			schema.RefMany("assignees", "People"),
		),
	)
}

// WorkplacePopulation seeds WorkplaceSchema:
//
//	People:   alice (favouriteCoWorker bob), bob (no favourite)
//	Projects: relatix (lead alice)
//	Tasks:    docs (project relatix, assignees alice and bob)
func WorkplacePopulation() *population.Population {
	return population.New().
		Add("People", "alice", ir.Object{
			"name":              ir.String("Alice"),
			"favouriteCoWorker": population.Ref("People", "bob"),
		}).
		Add("People", "bob", ir.Object{
			"name":              ir.String("Bob"),
			"favouriteCoWorker": ir.Null{},
		}).
		Add("Projects", "relatix", ir.Object{
			"title": ir.String("Relatix"),
			"lead":  population.Ref("People", "alice"),
		}).
		Add("Tasks", "docs", ir.Object{
			"title":     ir.String("Write docs"),
			"done":      ir.Bool(false),
			"project":   population.Ref("Projects", "relatix"),
			"assignees": population.Refs("People", "alice", "bob"),
		})
}
