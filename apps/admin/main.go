package main

import (
	"log"
	"os"

	"github.com/trezcool/registrar/core"
	"github.com/trezcool/registrar/core/user"
	logsvc "github.com/trezcool/registrar/services/logger"
	"github.com/trezcool/registrar/storage/database"
	sqlxrepos "github.com/trezcool/registrar/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewConsoleLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile))

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	repoDB := sqlxrepos.NewDB(db, conf.Database.TxTimeout)

	// start CLI
	cli := commandLine{
		db:     db,
		usrSvc: user.NewService(sqlxrepos.NewUserRepository(repoDB), logger),
	}
	code := 0
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		code = 1
	}
	_ = db.Close()
	os.Exit(code)
}
