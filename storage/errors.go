package storage

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("item not found in storage")
var ErrItemWithIDAlreadyExists = errors.New("item with this id already exists")

// isDuplicateKeyErr recognizes a storage-level uniqueness violation. The
// constraint is the final arbiter against concurrent submissions, so the
// race loser surfaces here rather than through the existence pre-check.
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate entry") || // MySQL 1062
		strings.Contains(s, "unique constraint") || // SQLite / Postgres
		strings.Contains(s, "constraint failed")
}
