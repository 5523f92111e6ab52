// Package store persists jobs, batches and audios. Every repository call
// runs in its own unit of work over an injected *gorm.DB.
package store

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup or update matches no row.
var ErrNotFound = errors.New("store: record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
