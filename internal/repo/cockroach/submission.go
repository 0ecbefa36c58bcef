package cockroach

import (
	"context"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/repo"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var submissionColumns = []string{
	"id", "first_name", "last_name", "email", "telephone", "class_enum",
	"subjects", "link", "description", "status", "created_at",
}

var submissionListing = tableListing{
	sortable:    columnSet("first_name", "last_name", "email", "telephone", "class_enum", "status", "created_at"),
	filterable:  []string{"email"},
	defaultSort: "created_at",
}

type Submission struct {
	db *sqlx.DB
}

func NewSubmission(db *sqlx.DB) repo.Submission {
	return &Submission{db: db}
}

func (s *Submission) ListSubmissions(ctx context.Context, query *entity.ListQuery) ([]*entity.Submission, error) {
	builder, err := submissionListing.apply(psql.Select(submissionColumns...).From("submission"), query)
	if err != nil {
		return nil, err
	}
	statement, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	submissions := make([]*entity.Submission, 0)
	if err := s.db.SelectContext(ctx, &submissions, statement, args...); err != nil {
		return nil, fmt.Errorf("select submission: %w", err)
	}
	return submissions, nil
}

func (s *Submission) GetSubmission(ctx context.Context, id string) (*entity.Submission, error) {
	statement, args, err := psql.Select(submissionColumns...).From("submission").Where("id = ?", id).ToSql()
	if err != nil {
		return nil, err
	}
	submission := &entity.Submission{}
	if err := s.db.GetContext(ctx, submission, statement, args...); err != nil {
		if isNotFound(err) {
			return nil, repo.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return submission, nil
}

func (s *Submission) DeleteSubmission(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM submission WHERE id = $1", id)
	if err != nil {
		if isNotFound(err) {
			return repo.ErrSubmissionNotFound
		}
		return fmt.Errorf("delete submission: %w", err)
	}
	return expectOneRow(result, repo.ErrSubmissionNotFound)
}
