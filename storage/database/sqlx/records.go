package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-reports/core"
	"github.com/trezcool/masomo-reports/core/report"
)

const (
	parentField    = "parent"
	studentIDField = "studentId"
)

// recordRepository reads report records stored as JSON documents in the records table.
type recordRepository struct {
	db core.DBExecutor
}

var _ report.Repository = (*recordRepository)(nil)

func NewRecordRepository(db *sqlx.DB) *recordRepository {
	return &recordRepository{db: db}
}

func (repo recordRepository) selectDocs(ctx context.Context, query string, args ...interface{}) ([]report.Record, error) {
	var docs []null.JSON
	if err := repo.db.SelectContext(ctx, &docs, repo.db.Rebind(query), args...); err != nil {
		return nil, connError(err)
	}

	records := make([]report.Record, 0, len(docs))
	for i, doc := range docs {
		if !doc.Valid {
			continue
		}
		rec, err := report.DecodeRecord(doc.JSON)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding document %d", i)
		}
		records = append(records, rec)
	}
	return records, nil
}

// connError turns a lost database connection into a shutdown error.
func connError(err error) error {
	var pqErr *pq.Error
	if errors.Is(err, driver.ErrBadConn) || (errors.As(err, &pqErr) && pqErr.Code.Class() == "08") {
		return core.NewShutdownError("database connection lost: " + err.Error())
	}
	return err
}

func (repo recordRepository) QueryRecords(ctx context.Context, kind report.Kind) ([]report.Record, error) {
	var (
		records []report.Record
		err     error
	)
	if role := kind.Role(); role != "" {
		records, err = repo.selectDocs(ctx,
			"SELECT data FROM records WHERE collection = ? AND data->>'role' = ? ORDER BY position, id",
			kind.Collection(), role)
	} else {
		records, err = repo.selectDocs(ctx,
			"SELECT data FROM records WHERE collection = ? ORDER BY position, id",
			kind.Collection())
	}
	if err != nil {
		return nil, errors.Wrapf(err, "selecting %s", kind)
	}

	if kind == report.KindStudents {
		if err = repo.populateParents(ctx, records); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (repo recordRepository) populateParents(ctx context.Context, students []report.Record) error {
	ids := report.RefIDs(students, parentField)
	if len(ids) == 0 {
		return nil
	}

	parents, err := repo.selectDocs(ctx,
		"SELECT data FROM records WHERE collection = ? AND doc_id = ANY(?)",
		report.CollectionUsers, pq.Array(ids))
	if err != nil {
		return errors.Wrap(err, "selecting parents")
	}

	refs := make(map[string]report.Record, len(parents))
	for _, p := range parents {
		if id, ok := p.Get(report.IDField); ok {
			if s, ok := report.RefID(id); ok {
				refs[s] = p
			}
		}
	}
	report.Populate(students, parentField, refs)
	return nil
}

func (repo recordRepository) GetStudent(ctx context.Context, id string) (report.Record, error) {
	var doc null.JSON
	err := repo.db.GetContext(ctx, &doc, repo.db.Rebind(
		"SELECT data FROM records WHERE collection = ? AND doc_id = ? AND data->>'role' = ?"),
		report.CollectionUsers, id, report.RoleStudent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, report.ErrNotFound
		}
		return nil, errors.Wrap(connError(err), "selecting student")
	}

	student, err := report.DecodeRecord(doc.JSON)
	if err != nil {
		return nil, errors.Wrap(err, "decoding student")
	}
	students := []report.Record{student}
	if err = repo.populateParents(ctx, students); err != nil {
		return nil, err
	}
	return students[0], nil
}

func (repo recordRepository) QueryStudentResults(ctx context.Context, studentID string) ([]report.Record, error) {
	records, err := repo.selectDocs(ctx,
		"SELECT data FROM records WHERE collection = ? AND data->>'studentId' = ? ORDER BY position, id",
		report.CollectionResults, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting results")
	}
	return records, nil
}

// InsertRecords stores records at the end of collection, in order. Each record must carry an _id.
func InsertRecords(ctx context.Context, db *sqlx.DB, collection string, records []report.Record) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var next int
	if err = tx.GetContext(ctx, &next, tx.Rebind(
		"SELECT COALESCE(MAX(position), -1) + 1 FROM records WHERE collection = ?"), collection); err != nil {
		return errors.Wrap(err, "selecting position")
	}

	q := tx.Rebind("INSERT INTO records (collection, doc_id, position, data) VALUES (?, ?, ?, ?)")
	for i, rec := range records {
		v, _ := rec.Get(report.IDField)
		id, ok := report.RefID(v)
		if !ok {
			return errors.Errorf("%s record %d has no %s", collection, i, report.IDField)
		}
		data, err := rec.MarshalJSON()
		if err != nil {
			return errors.Wrapf(err, "encoding %s record %d", collection, i)
		}
		if _, err = tx.ExecContext(ctx, q, collection, id, next+i, null.JSONFrom(data)); err != nil {
			return errors.Wrapf(err, "inserting %s record %s", collection, id)
		}
	}
	return errors.Wrap(tx.Commit(), "committing records")
}
