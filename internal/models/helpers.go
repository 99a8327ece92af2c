// Package models defines data structures for the Merf dream database.
package models

import (
	"fmt"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// RecordIDString extracts the string ID from a SurrealDB RecordID. Dream
// and deja vu IDs are minted as UUID strings at log time, so a non-string
// ID means the row did not come from merf; it is reported as an error
// rather than coerced.
func RecordIDString(id surrealmodels.RecordID) (string, error) {
	s, ok := id.ID.(string)
	if !ok {
		return "", fmt.Errorf("record %s has non-string ID %v (%T)", id.Table, id.ID, id.ID)
	}
	return s, nil
}

// MustRecordIDString extracts the string ID, panicking on a non-string.
// For records merf itself created, where the UUID invariant holds.
func MustRecordIDString(id surrealmodels.RecordID) string {
	s, err := RecordIDString(id)
	if err != nil {
		panic(err)
	}
	return s
}
