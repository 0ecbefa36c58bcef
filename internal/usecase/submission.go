package usecase

import (
	"context"
	"ecourse-admin/internal/entity"
	"errors"
)

type Submission interface {
	GetSubmissions(ctx context.Context, query *entity.ListQuery) ([]*entity.Submission, error)
	GetSubmission(ctx context.Context, id string) (*entity.Submission, error)
	DeleteSubmission(ctx context.Context, id string) error
}

var ErrSubmissionNotFound = errors.New("submission not found")
