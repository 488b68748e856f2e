package ident

import "fmt"

// LabelFunc produces a record label from a population key.
type LabelFunc func(key string) string

// KeyLabel uses the population key as the label.
func KeyLabel(key string) string {
	return key
}

// DefaultCreateLabel is the label given to ad-hoc records: "{table}_{id}".
func DefaultCreateLabel(table, id string) string {
	return fmt.Sprintf("%s_%s", table, id)
}
