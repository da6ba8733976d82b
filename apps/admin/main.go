package main

import (
	"context"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/masomo-reports/core"
	"github.com/trezcool/masomo-reports/core/report"
	"github.com/trezcool/masomo-reports/services/logger"
	"github.com/trezcool/masomo-reports/services/pdf"
	"github.com/trezcool/masomo-reports/storage/database"
	"github.com/trezcool/masomo-reports/storage/database/inmem"
	"github.com/trezcool/masomo-reports/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	conf := core.NewConfig()
	logger = log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	cli := commandLine{
		conf:   conf,
		stdout: os.Stdout,
		renderer: report.NewRenderer(pdfsvc.NewCanvas, logsvc.NewRollbarLogger(logger, conf), report.Options{
			SampleSize: conf.Reports.SampleSize,
			Author:     conf.Reports.Author,
		}),
	}

	// set up storage
	if conf.Database.Engine == "postgres" {
		db := openDB(conf)
		defer db.Close()
		cli.db = db
		cli.repo = sqlxrepos.NewRecordRepository(db)
	} else {
		db, err := inmemdb.Load(conf.Database.FixturesDir)
		errAndDie(err)
		cli.repo = inmemdb.NewRecordRepository(db)
	}

	// start CLI
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func openDB(conf *core.Config) *sqlx.DB {
	ctx := context.Background()
	errAndDie(database.CreateIfNotExist(ctx, conf))
	db, err := database.Open(ctx, conf)
	errAndDie(err)
	return db
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
