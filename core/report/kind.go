package report

import (
	"strings"

	"github.com/trezcool/masomo-reports/core"
)

// Kind names a report: which collection of records is exported.
type Kind string

const (
	KindStudents  Kind = "students"
	KindTeachers  Kind = "teachers"
	KindParents   Kind = "parents"
	KindFees      Kind = "fees"
	KindResults   Kind = "results"
	KindNotices   Kind = "notices"
	KindTimetable Kind = "timetable"
)

// Kinds lists every supported report, in menu order.
var Kinds = []Kind{KindStudents, KindTeachers, KindParents, KindFees, KindResults, KindNotices, KindTimetable}

// User roles stored on the users collection.
const (
	RoleStudent = "Student"
	RoleTeacher = "Teacher"
	RoleParent  = "Parent"
)

// Collections of the document store.
const (
	CollectionUsers     = "users"
	CollectionFees      = "fees"
	CollectionResults   = "results"
	CollectionNotices   = "notices"
	CollectionTimetable = "timetables"
)

func ParseKind(name string) (Kind, error) {
	k := Kind(core.CleanString(name, true /* lower */))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", ErrUnsupportedKind
}

// Collection is the document collection the report reads from.
func (k Kind) Collection() string {
	switch k {
	case KindStudents, KindTeachers, KindParents:
		return CollectionUsers
	case KindFees:
		return CollectionFees
	case KindResults:
		return CollectionResults
	case KindNotices:
		return CollectionNotices
	case KindTimetable:
		return CollectionTimetable
	}
	return ""
}

// Role is the users role a report is restricted to, or "" for non-user reports.
func (k Kind) Role() string {
	switch k {
	case KindStudents:
		return RoleStudent
	case KindTeachers:
		return RoleTeacher
	case KindParents:
		return RoleParent
	}
	return ""
}

// Title is the human readable report title: "students" -> "Students Report".
func (k Kind) Title() string {
	return Title(string(k))
}

// Title capitalises name and appends "Report".
func Title(name string) string {
	if name == "" {
		return "Report"
	}
	return strings.ToUpper(name[:1]) + name[1:] + " Report"
}

// Format is the output format of a report.
type Format int

const (
	PDF Format = iota
	CSV
)

// ParseFormat maps "csv" to CSV; everything else, including "", is PDF.
func ParseFormat(s string) Format {
	if core.CleanString(s, true /* lower */) == "csv" {
		return CSV
	}
	return PDF
}

func (f Format) String() string { return f.Ext() }

func (f Format) Ext() string {
	if f == CSV {
		return "csv"
	}
	return "pdf"
}

func (f Format) ContentType() string {
	if f == CSV {
		return "text/csv"
	}
	return "application/pdf"
}
