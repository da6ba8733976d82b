package inmemdb

import (
	"context"

	"github.com/trezcool/masomo-reports/core/report"
)

type recordRepository struct {
	db *DB
}

var _ report.Repository = (*recordRepository)(nil)

func NewRecordRepository(db *DB) report.Repository {
	return &recordRepository{db: db}
}

func fieldEquals(key, want string) func(report.Record) bool {
	return func(rec report.Record) bool {
		v, _ := rec.Get(key)
		got, ok := report.RefID(v)
		return ok && got == want
	}
}

func (repo *recordRepository) QueryRecords(ctx context.Context, kind report.Kind) ([]report.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keep func(report.Record) bool
	if role := kind.Role(); role != "" {
		keep = fieldEquals("role", role)
	}
	records := repo.db.filter(kind.Collection(), keep)
	if kind == report.KindStudents {
		repo.populateParents(records)
	}
	return records, nil
}

func (repo *recordRepository) populateParents(students []report.Record) {
	refs := make(map[string]report.Record)
	for _, id := range report.RefIDs(students, "parent") {
		if found := repo.db.filter(report.CollectionUsers, fieldEquals(report.IDField, id)); len(found) > 0 {
			refs[id] = found[0]
		}
	}
	report.Populate(students, "parent", refs)
}

func (repo *recordRepository) GetStudent(ctx context.Context, id string) (report.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	isStudent := fieldEquals("role", report.RoleStudent)
	found := repo.db.filter(report.CollectionUsers, func(rec report.Record) bool {
		return fieldEquals(report.IDField, id)(rec) && isStudent(rec)
	})
	if len(found) == 0 {
		return nil, report.ErrNotFound
	}
	students := found[:1]
	repo.populateParents(students)
	return students[0], nil
}

func (repo *recordRepository) QueryStudentResults(ctx context.Context, studentID string) ([]report.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return repo.db.filter(report.CollectionResults, fieldEquals("studentId", studentID)), nil
}
