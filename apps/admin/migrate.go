package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/masomo-reports/core/report"
	"github.com/trezcool/masomo-reports/storage/database"
	"github.com/trezcool/masomo-reports/storage/database/sqlx"
)

var (
	gooseRunFunc      = database.RunMigration     // mockable
	insertRecordsFunc = sqlxrepos.InsertRecords // mockable
)

func (cli *commandLine) migrate(args []string) error {
	var db *sql.DB
	if cli.db != nil {
		db = cli.db.DB
	} else if !cli.conf.TestMode {
		return errNoDB
	}
	return gooseRunFunc(args[0], db, args[1:]...)
}

var seedCollections = []string{
	report.CollectionUsers,
	report.CollectionFees,
	report.CollectionResults,
	report.CollectionNotices,
	report.CollectionTimetable,
}

// seed appends every `<collection>.json` file of dir to the database.
func (cli *commandLine) seed(ctx context.Context, dir string) error {
	var db *sqlx.DB
	if cli.db != nil {
		db = cli.db
	} else if !cli.conf.TestMode {
		return errNoDB
	}

	for _, collection := range seedCollections {
		path := filepath.Join(dir, collection+".json")
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		records, err := report.DecodeRecords(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err = insertRecordsFunc(ctx, db, collection, records); err != nil {
			return err
		}
		fmt.Fprintf(cli.stdout, "%s: %d records\n", collection, len(records))
	}
	return nil
}
