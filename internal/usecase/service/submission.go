package service

import (
	"context"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/repo"
	"ecourse-admin/internal/usecase"
	"errors"

	"github.com/google/uuid"
)

type Submission struct {
	submissionRepo repo.Submission
}

func NewSubmission(submissionRepo repo.Submission) usecase.Submission {
	return &Submission{submissionRepo: submissionRepo}
}

func (s *Submission) GetSubmissions(ctx context.Context, query *entity.ListQuery) ([]*entity.Submission, error) {
	submissions, err := s.submissionRepo.ListSubmissions(ctx, query)
	if errors.Is(err, repo.ErrUnknownColumn) {
		return nil, errors.Join(usecase.ErrInvalidQuery, err)
	}
	return submissions, err
}

func (s *Submission) GetSubmission(ctx context.Context, id string) (*entity.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, usecase.ErrSubmissionNotFound
	}
	submission, err := s.submissionRepo.GetSubmission(ctx, id)
	if errors.Is(err, repo.ErrSubmissionNotFound) {
		return nil, usecase.ErrSubmissionNotFound
	}
	return submission, err
}

func (s *Submission) DeleteSubmission(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return usecase.ErrSubmissionNotFound
	}
	err := s.submissionRepo.DeleteSubmission(ctx, id)
	if errors.Is(err, repo.ErrSubmissionNotFound) {
		return usecase.ErrSubmissionNotFound
	}
	return err
}
