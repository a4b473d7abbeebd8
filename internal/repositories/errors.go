package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned by writes that matched no row.
var ErrNotFound = errors.New("not found")

func expectOneRow(res sql.Result, entity, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s %s: %w", entity, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	return nil
}
