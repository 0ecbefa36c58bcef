package cockroach

import (
	"context"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/repo"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var courseColumns = []string{
	"id", "name", "author", "link_course", "description", "photo_link", "created_at", "updated_at",
}

var courseListing = tableListing{
	sortable:    columnSet("name", "author", "link_course", "created_at", "updated_at"),
	filterable:  []string{"name", "author"},
	defaultSort: "created_at",
}

type Course struct {
	db *sqlx.DB
}

func NewCourse(db *sqlx.DB) repo.Course {
	return &Course{db: db}
}

func (c *Course) ListCourses(ctx context.Context, query *entity.ListQuery) ([]*entity.Course, error) {
	builder, err := courseListing.apply(psql.Select(courseColumns...).From("ecourse"), query)
	if err != nil {
		return nil, err
	}
	statement, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	courses := make([]*entity.Course, 0)
	if err := c.db.SelectContext(ctx, &courses, statement, args...); err != nil {
		return nil, fmt.Errorf("select ecourse: %w", err)
	}
	return courses, nil
}

func (c *Course) GetCourse(ctx context.Context, id string) (*entity.Course, error) {
	course := &entity.Course{}
	err := c.db.GetContext(ctx, course, `
		SELECT id, name, author, link_course, description, photo_link, created_at, updated_at
		FROM ecourse
		WHERE id = $1`,
		id,
	)
	if err != nil {
		if isNotFound(err) {
			return nil, repo.ErrCourseNotFound
		}
		return nil, fmt.Errorf("get ecourse: %w", err)
	}
	return course, nil
}

func (c *Course) AddCourse(ctx context.Context, course *entity.Course) (string, error) {
	var id string
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO ecourse (name, author, link_course, description, photo_link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		course.Name, course.Author, course.LinkCourse, course.Description, course.PhotoLink,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert ecourse: %w", err)
	}
	return id, nil
}

func (c *Course) EditCourse(ctx context.Context, course *entity.Course, previousPhotoLink *string) error {
	if previousPhotoLink == nil {
		result, err := c.db.ExecContext(ctx, `
			UPDATE ecourse
			SET name = $1, author = $2, link_course = $3, description = $4, updated_at = NOW()
			WHERE id = $5`,
			course.Name, course.Author, course.LinkCourse, course.Description, course.ID,
		)
		if err != nil {
			if isNotFound(err) {
				return repo.ErrCourseNotFound
			}
			return fmt.Errorf("update ecourse: %w", err)
		}
		return expectOneRow(result, repo.ErrCourseNotFound)
	}

	// картинку меняем только поверх той, что была прочитана
	result, err := c.db.ExecContext(ctx, `
		UPDATE ecourse
		SET name = $1, author = $2, link_course = $3, description = $4, photo_link = $5, updated_at = NOW()
		WHERE id = $6 AND photo_link = $7`,
		course.Name, course.Author, course.LinkCourse, course.Description, course.PhotoLink, course.ID,
		*previousPhotoLink,
	)
	if err != nil {
		if isNotFound(err) {
			return repo.ErrCourseNotFound
		}
		return fmt.Errorf("update ecourse: %w", err)
	}
	if err := expectOneRow(result, repo.ErrCourseConflict); !errors.Is(err, repo.ErrCourseConflict) {
		return err
	}

	var exists bool
	if err := c.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM ecourse WHERE id = $1)", course.ID); err != nil {
		return fmt.Errorf("check ecourse: %w", err)
	}
	if !exists {
		return repo.ErrCourseNotFound
	}
	return repo.ErrCourseConflict
}

func (c *Course) DeleteCourse(ctx context.Context, id string) error {
	result, err := c.db.ExecContext(ctx, "DELETE FROM ecourse WHERE id = $1", id)
	if err != nil {
		if isNotFound(err) {
			return repo.ErrCourseNotFound
		}
		return fmt.Errorf("delete ecourse: %w", err)
	}
	return expectOneRow(result, repo.ErrCourseNotFound)
}

func (c *Course) ListPhotoLinks(ctx context.Context) ([]string, error) {
	links := make([]string, 0)
	err := c.db.SelectContext(ctx, &links, "SELECT photo_link FROM ecourse WHERE photo_link <> ''")
	if err != nil {
		return nil, fmt.Errorf("select photo links: %w", err)
	}
	return links, nil
}
