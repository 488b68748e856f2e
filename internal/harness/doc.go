// Package harness runs relatix scenarios as executable contract tests.
//
// A scenario declares a schema in CUE, seeds it with a YAML population,
// applies a list of commit steps and then asserts on the resulting stores.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	schema: |
//	  table: People: {
//	    fields: { name: string }
//	    ref: { friend: "self" }
//	  }
//	population:
//	  People:
//	    alice: { name: Alice, friend: bob }
//	    bob: { name: Bob, friend: null }
//	steps:
//	  - op: update_one
//	    table: People
//	    id: alice
//	    changes: { data: { name: Alicia } }
//	assertions:
//	  - type: table_ids
//	    table: People
//	    ids: [alice, bob]
//	  - type: store_unchanged
//	    step: 0
//
// Record ids default to the population keys (ids: key). With ids: sequence
// they are generated as id-1, id-2, ... in population order.
//
// # Step Operations
//
// Every commit operation has a step: add_one, add_many, set_one, set_many,
// upsert_one, upsert_many, set_all, update_one, update_many, remove_one,
// remove_many and remove_all. A create step builds a standalone record with
// Model.Create and adds it to the table.
//
// # Assertion Types
//
//   - resolves_to: deep-selects a record at a depth and compares the result
//   - unresolved: resolves a record and expects a diagnostic for a reference
//   - record: compares a stored record field by field
//   - table_ids: compares the ids of a table in order
//   - not_found: expects a record to be absent
//   - store_unchanged: expects a step to return its input store
//   - store_changed: expects a step to return a new store
//
// # Deterministic Testing
//
// Ids never come from a clock or random source, logs are discarded and the
// final store is serialized canonically, so RunWithGolden snapshots are
// byte-identical across runs.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/friends.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
