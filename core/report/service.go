package report

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// Repository fetches the records a report is made of. Implementations return records already
// filtered for the report and in display order; students come with their parent populated as
// a nested {_id, name, email} reference.
type Repository interface {
	QueryRecords(ctx context.Context, kind Kind) ([]Record, error)
	GetStudent(ctx context.Context, id string) (Record, error)
	QueryStudentResults(ctx context.Context, studentID string) ([]Record, error)
}

type Service interface {
	Export(ctx context.Context, w http.ResponseWriter, name string, format Format) error
	ResultSlip(ctx context.Context, w http.ResponseWriter, studentID string) error
}

type service struct {
	repo     Repository
	renderer *Renderer
}

var _ Service = (*service)(nil)

func NewService(repo Repository, renderer *Renderer) Service {
	return &service{repo: repo, renderer: renderer}
}

// Export fetches the named report and streams it to w.
func (svc *service) Export(ctx context.Context, w http.ResponseWriter, name string, format Format) error {
	kind, err := ParseKind(name)
	if err != nil {
		return err
	}
	records, err := svc.repo.QueryRecords(ctx, kind)
	if err != nil {
		return errors.Wrapf(err, "querying %s records", kind)
	}
	return svc.renderer.Render(w, string(kind), records, format)
}

// ResultSlip streams the result slip of a single student to w.
func (svc *service) ResultSlip(ctx context.Context, w http.ResponseWriter, studentID string) error {
	student, err := svc.repo.GetStudent(ctx, studentID)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	results, err := svc.repo.QueryStudentResults(ctx, studentID)
	if err != nil {
		return errors.Wrap(err, "querying student results")
	}
	return svc.renderer.RenderResultSlip(w, student, results)
}
