package inmemdb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-reports/core/report"
	"github.com/trezcool/masomo-reports/storage/database/inmem"
	"github.com/trezcool/masomo-reports/tests"
)

func names(records []report.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		v, _ := r.Get("name")
		out = append(out, report.RawValue(v))
	}
	return out
}

func TestRecordRepository_QueryRecords(t *testing.T) {
	repo := inmemdb.NewRecordRepository(testutil.LoadDB(t))
	ctx := context.Background()

	tests := []struct {
		kind  report.Kind
		count int
	}{
		{kind: report.KindStudents, count: 4},
		{kind: report.KindTeachers, count: 2},
		{kind: report.KindParents, count: 2},
		{kind: report.KindFees, count: 4},
		{kind: report.KindResults, count: 6},
		{kind: report.KindNotices, count: 3},
		{kind: report.KindTimetable, count: 4},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			records, err := repo.QueryRecords(ctx, tt.kind)
			require.NoError(t, err)
			assert.Len(t, records, tt.count)
		})
	}

	t.Run("students keep order and get their parent", func(t *testing.T) {
		students, err := repo.QueryRecords(ctx, report.KindStudents)
		require.NoError(t, err)
		assert.Equal(t, []string{"Amani Wanjiku", "Baraka Otieno", "Neema Wanjiku", "Juma Hassan"}, names(students))

		parent, _ := students[0].Get("parent")
		assert.Equal(t, testutil.Record("_id", "u-p1", "name", "Jane Wanjiku", "email", "jane.wanjiku@masomo.test"), parent)
		parent, _ = students[3].Get("parent")
		assert.Nil(t, parent)
	})

	t.Run("stored records are not modified", func(t *testing.T) {
		_, err := repo.QueryRecords(ctx, report.KindStudents)
		require.NoError(t, err)
		users, err := repo.QueryRecords(ctx, report.KindParents)
		require.NoError(t, err)
		assert.Equal(t, []string{"Jane Wanjiku", "Peter Otieno"}, names(users))

		db := testutil.LoadDB(t)
		before := db.Len(report.CollectionUsers)
		_, err = inmemdb.NewRecordRepository(db).QueryRecords(ctx, report.KindStudents)
		require.NoError(t, err)
		assert.Equal(t, before, db.Len(report.CollectionUsers))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := repo.QueryRecords(cctx, report.KindFees)
		assert.Equal(t, context.Canceled, err)
	})
}

func TestRecordRepository_GetStudent(t *testing.T) {
	repo := inmemdb.NewRecordRepository(testutil.LoadDB(t))
	ctx := context.Background()

	student, err := repo.GetStudent(ctx, "u-s2")
	require.NoError(t, err)
	name, _ := student.Get("name")
	assert.Equal(t, "Baraka Otieno", name)
	parent, _ := student.Get("parent")
	assert.Equal(t, "Peter Otieno", report.FormatValue(parent))

	for _, id := range []string{"missing", "u-t1"} {
		_, err = repo.GetStudent(ctx, id)
		assert.Equal(t, report.ErrNotFound, err, id)
	}
}

func TestRecordRepository_QueryStudentResults(t *testing.T) {
	repo := inmemdb.NewRecordRepository(testutil.LoadDB(t))
	ctx := context.Background()

	results, err := repo.QueryStudentResults(ctx, "u-s1")
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = repo.QueryStudentResults(ctx, "u-s4")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLoad_MissingDir(t *testing.T) {
	db, err := inmemdb.Load(t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, db.Len(report.CollectionUsers))
}

func TestDB_Add(t *testing.T) {
	db := inmemdb.Open()
	db.Add(report.CollectionNotices, testutil.Records("n", 3)...)

	records, err := inmemdb.NewRecordRepository(db).QueryRecords(context.Background(), report.KindNotices)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
