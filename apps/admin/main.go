package main

import (
	"log"
	"os"

	dig_container "github.com/trezcool/getskill/apps/api/di/dig"
	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/attendance"
	"github.com/trezcool/getskill/core/catalog"
	"github.com/trezcool/getskill/core/user"
	dummydb "github.com/trezcool/getskill/storage/database/dummy"
)

func main() {
	logger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	c := dig_container.New()

	var err error
	invokeErr := c.Invoke(func(
		conf *core.Config,
		appLogger core.Logger,
		db *dummydb.DB,
		usrRepo user.Repository,
		usrSvc user.Service,
		catalogSvc catalog.Service,
		attendanceSvc attendance.Service,
	) {
		defer func() { _ = db.Close() }()
		user.LoadCommonPasswords(appLogger)

		cli := commandLine{
			conf:          conf,
			db:            db,
			usrRepo:       usrRepo,
			usrSvc:        usrSvc,
			catalogSvc:    catalogSvc,
			attendanceSvc: attendanceSvc,
			out:           os.Stdout,
		}
		err = cli.run(os.Args)
	})
	if invokeErr != nil {
		logger.Fatal(invokeErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
