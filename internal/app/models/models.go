// Package models holds the row types scanned from the relational store.
// Columns map through `db` tags; wire names follow the `json` tags.
package models
