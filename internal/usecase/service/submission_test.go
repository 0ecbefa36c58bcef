package service

import (
	"context"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/testutil"
	"ecourse-admin/internal/usecase"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissions(t *testing.T) {
	late := &entity.Submission{ID: uuid.New().String(), Email: "a@x.test", Status: entity.SubmissionLate}
	timely := &entity.Submission{ID: uuid.New().String(), Email: "b@x.test", Status: entity.SubmissionTimely}
	service := NewSubmission(testutil.NewSubmissionRepo(late, timely))
	ctx := context.Background()

	all, err := service.GetSubmissions(ctx, &entity.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := service.GetSubmissions(ctx, &entity.ListQuery{Filter: "b@"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, entity.SubmissionTimely, filtered[0].Status)

	got, err := service.GetSubmission(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.test", got.Email)

	require.NoError(t, service.DeleteSubmission(ctx, late.ID))
	_, err = service.GetSubmission(ctx, late.ID)
	assert.ErrorIs(t, err, usecase.ErrSubmissionNotFound)
	assert.ErrorIs(t, service.DeleteSubmission(ctx, late.ID), usecase.ErrSubmissionNotFound)
	assert.ErrorIs(t, service.DeleteSubmission(ctx, "42"), usecase.ErrSubmissionNotFound)
}

func TestMembersAlwaysList(t *testing.T) {
	service := NewMember(&testutil.MemberRepo{})

	members, err := service.GetMembers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, members)
	assert.Empty(t, members)

	service = NewMember(&testutil.MemberRepo{Rows: []map[string]any{{"id": "1", "name": "Ann"}}})
	members, err = service.GetMembers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ann", members[0]["name"])
}
