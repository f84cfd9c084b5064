package main

import (
	"github.com/pkg/errors"

	"github.com/trezcool/getskill/storage/database"
)

var (
	openSQLFunc  = database.Open             // mockable
	gooseRunFunc = database.Run              // mockable
	createDBFunc = database.CreateIfNotExist // mockable
)

// migrate runs a goose command against the embedded migrations of the postgres store.
func (cli *commandLine) migrate(args []string) error {
	db, err := openSQLFunc(cli.conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	return gooseRunFunc(args[0], db, args[1:]...)
}
