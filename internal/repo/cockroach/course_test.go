package cockroach

import (
	"context"
	"database/sql/driver"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/repo"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const courseID = "5f0c7c1e-2a4b-4d47-9a4e-0e7b7c1f2d3a"

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

func courseRows(courses ...*entity.Course) *sqlmock.Rows {
	rows := sqlmock.NewRows(courseColumns)
	for _, c := range courses {
		rows.AddRow(c.ID, c.Name, c.Author, c.LinkCourse, c.Description, c.PhotoLink, c.CreatedAt, c.UpdatedAt)
	}
	return rows
}

func TestListCoursesWithoutQueryReturnsAllRows(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, name, author, link_course, description, photo_link, created_at, updated_at FROM ecourse ORDER BY created_at ASC",
	)).WillReturnRows(courseRows(&entity.Course{
		ID: courseID, Name: "Intro", Author: "A", LinkCourse: "https://x", Description: "d",
		PhotoLink: "http://blob/ecourse-pictures/a.png", CreatedAt: now, UpdatedAt: now,
	}))

	courses, err := NewCourse(db).ListCourses(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Intro", courses[0].Name)
	assert.Equal(t, "http://blob/ecourse-pictures/a.png", courses[0].PhotoLink)
}

func TestListCoursesEmptyIsNotNil(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM ecourse").WillReturnRows(courseRows())

	courses, err := NewCourse(db).ListCourses(context.Background(), &entity.ListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
}

func TestListCoursesAppliesTableQuery(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM ecourse WHERE (name ILIKE $1 OR author ILIKE $2) ORDER BY name DESC LIMIT 10 OFFSET 5",
	)).WithArgs(`%go\_lang%`, `%go\_lang%`).WillReturnRows(courseRows())

	_, err := NewCourse(db).ListCourses(context.Background(), &entity.ListQuery{
		Sort: "name", Order: "desc", Filter: "go_lang", Limit: 10, Offset: 5,
	})
	require.NoError(t, err)
}

func TestListCoursesRejectsUnknownSortColumn(t *testing.T) {
	db, _ := newMockDB(t)

	_, err := NewCourse(db).ListCourses(context.Background(), &entity.ListQuery{Sort: "photo_link; DROP TABLE ecourse"})
	assert.ErrorIs(t, err, repo.ErrUnknownColumn)
}

func TestGetCourseNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM ecourse").WithArgs(courseID).WillReturnRows(courseRows())

	_, err := NewCourse(db).GetCourse(context.Background(), courseID)
	assert.ErrorIs(t, err, repo.ErrCourseNotFound)
}

func TestGetCourseMalformedIDIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM ecourse").WithArgs("unknown-id").WillReturnError(&pq.Error{Code: "22P02"})

	_, err := NewCourse(db).GetCourse(context.Background(), "unknown-id")
	assert.ErrorIs(t, err, repo.ErrCourseNotFound)
}

func TestAddCourseReturnsGeneratedID(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO ecourse (name, author, link_course, description, photo_link)")).
		WithArgs("Intro", "A", "https://x", "d", "http://blob/a.png").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(courseID))

	id, err := NewCourse(db).AddCourse(context.Background(), &entity.Course{
		Name: "Intro", Author: "A", LinkCourse: "https://x", Description: "d", PhotoLink: "http://blob/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, courseID, id)
}

func TestEditCourseMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("UPDATE ecourse").
		WithArgs("Intro", "A", "https://x", "d", courseID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewCourse(db).EditCourse(context.Background(), &entity.Course{
		ID: courseID, Name: "Intro", Author: "A", LinkCourse: "https://x", Description: "d", PhotoLink: "http://blob/a.png",
	}, nil)
	assert.ErrorIs(t, err, repo.ErrCourseNotFound)
}

func TestEditCourseWithoutPictureLeavesPhotoLink(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("SET name = $1, author = $2, link_course = $3, description = $4, updated_at = NOW()")).
		WithArgs("Intro", "A", "https://x", "d", courseID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewCourse(db).EditCourse(context.Background(), &entity.Course{
		ID: courseID, Name: "Intro", Author: "A", LinkCourse: "https://x", Description: "d", PhotoLink: "http://blob/stale.png",
	}, nil)
	require.NoError(t, err)
}

func TestEditCourseReplacesPictureOverPrevious(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $6 AND photo_link = $7")).
		WithArgs("Intro", "A", "https://x", "d", "http://blob/new.png", courseID, "http://blob/old.png").
		WillReturnResult(sqlmock.NewResult(0, 1))

	previous := "http://blob/old.png"
	err := NewCourse(db).EditCourse(context.Background(), &entity.Course{
		ID: courseID, Name: "Intro", Author: "A", LinkCourse: "https://x", Description: "d", PhotoLink: "http://blob/new.png",
	}, &previous)
	require.NoError(t, err)
}

func TestEditCoursePictureConflict(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $6 AND photo_link = $7")).
		WithArgs("Intro", "A", "https://x", "d", "http://blob/new.png", courseID, "http://blob/old.png").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM ecourse WHERE id = $1)")).
		WithArgs(courseID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	previous := "http://blob/old.png"
	err := NewCourse(db).EditCourse(context.Background(), &entity.Course{
		ID: courseID, Name: "Intro", Author: "A", LinkCourse: "https://x", Description: "d", PhotoLink: "http://blob/new.png",
	}, &previous)
	assert.ErrorIs(t, err, repo.ErrCourseConflict)
}

func TestEditCoursePictureOnDeletedRow(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("UPDATE ecourse").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(courseID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	previous := "http://blob/old.png"
	err := NewCourse(db).EditCourse(context.Background(), &entity.Course{
		ID: courseID, Name: "Intro", Author: "A", LinkCourse: "https://x", Description: "d", PhotoLink: "http://blob/new.png",
	}, &previous)
	assert.ErrorIs(t, err, repo.ErrCourseNotFound)
}

func TestDeleteCourse(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ecourse WHERE id = $1")).
		WithArgs(courseID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewCourse(db).DeleteCourse(context.Background(), courseID))
}

func TestListPhotoLinks(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT photo_link FROM ecourse").
		WillReturnRows(sqlmock.NewRows([]string{"photo_link"}).AddRow("http://blob/a.png").AddRow("http://blob/b.webp"))

	links, err := NewCourse(db).ListPhotoLinks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"http://blob/a.png", "http://blob/b.webp"}, links)
}

func TestListMembersConvertsBytesToStrings(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM member")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age"}).
			AddRow([]driver.Value{"m-1", []byte("Ann"), int64(31)}...))

	members, err := NewMember(db).ListMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Ann", members[0]["name"])
	assert.Equal(t, int64(31), members[0]["age"])
}

func TestDeleteSubmissionNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM submission").
		WithArgs(courseID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewSubmission(db).DeleteSubmission(context.Background(), courseID)
	assert.ErrorIs(t, err, repo.ErrSubmissionNotFound)
}

func TestListSubmissionsFiltersByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM submission WHERE (email ILIKE $1) ORDER BY created_at ASC")).
		WithArgs("%@example.com%").
		WillReturnRows(sqlmock.NewRows(submissionColumns).AddRow(
			courseID, "Ann", "Lee", "ann@example.com", "+100", "XI", "math", "https://x", "d",
			string(entity.SubmissionTimely), time.Now(),
		))

	submissions, err := NewSubmission(db).ListSubmissions(context.Background(), &entity.ListQuery{Filter: "@example.com"})
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	assert.Equal(t, entity.SubmissionTimely, submissions[0].Status)
}
