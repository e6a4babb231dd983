package data

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver, imported for its registration side effect
)

// InitDB opens the SQLite database at the given path and applies the schema.
// Foreign keys are switched on so that deleting a user cascades to its
// posts; _loc=auto lets the driver scan timestamps back into time.Time.
func InitDB(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", path+"?_foreign_keys=on&_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err = db.Exec(GetSchema()); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}
	return db, nil
}
