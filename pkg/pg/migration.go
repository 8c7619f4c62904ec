package pg

import (
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/nimasrn/banking-ledger/pkg/logger"
)

// Migrate applies the goose SQL migrations in dir. Migrations use
// if-not-exists semantics, so running them repeatedly is safe.
func Migrate(cfg Config, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		logger.Fatal(err)
	}

	db, err := newSqlConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err = goose.Up(db, dir); err != nil {
		logger.Fatal(err)
	}

	return nil
}
