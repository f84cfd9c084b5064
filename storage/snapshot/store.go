package snapshot

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/storage/database"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Open returns the store selected by conf.Storage.Driver. The postgres store creates the
// database if needed and applies the migrations.
func Open(conf *core.Config) (Store, error) {
	switch conf.Storage.Driver {
	case DriverMemory:
		return NewMemStore(), nil
	case DriverFile, "":
		return NewFileStore(conf.Storage.FilePath), nil
	case DriverPostgres:
		if err := database.CreateIfNotExist(context.Background(), conf); err != nil {
			return nil, errors.Wrap(err, "creating database")
		}
		db, err := database.OpenX(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		return NewPostgresStore(db), nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
}
