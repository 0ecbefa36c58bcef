package http

import (
	"ecourse-admin/internal/delivery/http/utils"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/usecase"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	msgUnexpected     = "An error occurred"
	msgPictureMissing = "No valid file provided"
)

type Course struct {
	courseUseCase usecase.Course
}

func NewCourse(courseUseCase usecase.Course) *Course {
	return &Course{
		courseUseCase: courseUseCase,
	}
}

func (co *Course) Configure(server *echo.Group) {
	server.GET("", co.List)
	server.POST("", co.Create)
	server.GET("/:id", co.Get)
	server.PUT("/:id", co.Edit)
	server.DELETE("/:id", co.Delete)
}

func (co *Course) List(c echo.Context) error {
	var query entity.ListQuery
	if err := utils.ReadQuery(c, &query); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": usecase.ErrInvalidQuery.Error(),
		})
	}

	courses, err := co.courseUseCase.GetCourses(c.Request().Context(), &query)
	if err != nil {
		return courseError(c, "Ошибка при получении курсов", err)
	}
	return c.JSON(http.StatusOK, courses)
}

func (co *Course) Get(c echo.Context) error {
	course, err := co.courseUseCase.GetCourse(c.Request().Context(), c.Param("id"))
	if err != nil {
		return courseError(c, "Ошибка при получении курса", err)
	}
	return c.JSON(http.StatusOK, course)
}

func (co *Course) Create(c echo.Context) error {
	picture, file, err := utils.ReadPicture(c, "picture")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": msgPictureMissing,
		})
	}
	if file != nil {
		defer func() { _ = file.Close() }()
	}

	request := &entity.AddCourseRequest{
		Name:        c.FormValue("name"),
		Author:      c.FormValue("author"),
		LinkCourse:  c.FormValue("link_course"),
		Description: c.FormValue("description"),
		Picture:     picture,
	}
	if _, err := co.courseUseCase.CreateCourse(c.Request().Context(), request); err != nil {
		return courseError(c, "Ошибка при создании курса", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Data and file uploaded successfully",
	})
}

func (co *Course) Edit(c echo.Context) error {
	picture, file, err := utils.ReadPicture(c, "picture")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": msgPictureMissing,
		})
	}
	if file != nil {
		defer func() { _ = file.Close() }()
	}

	request := &entity.EditCourseRequest{
		ID:          c.Param("id"),
		Name:        utils.FormValue(c, "name"),
		Author:      utils.FormValue(c, "author"),
		LinkCourse:  utils.FormValue(c, "link_course"),
		Description: utils.FormValue(c, "description"),
		Picture:     picture,
	}
	if err := co.courseUseCase.EditCourse(c.Request().Context(), request); err != nil {
		return courseError(c, "Ошибка при изменении курса", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Course updated successfully",
	})
}

func (co *Course) Delete(c echo.Context) error {
	err := co.courseUseCase.DeleteCourse(c.Request().Context(), c.Param("id"))
	if err != nil {
		return courseError(c, "Ошибка при удалении курса", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Course deleted successfully",
	})
}

// courseError переводит ошибку usecase в ответ. Подробности ошибок сервисов пишутся только в лог.
func courseError(c echo.Context, logMessage string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrCourseNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Course not found",
		})
	case errors.Is(err, usecase.ErrCourseConflict):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Course was modified concurrently, reload and retry",
		})
	case errors.Is(err, usecase.ErrPictureMissing):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": msgPictureMissing,
		})
	case errors.Is(err, usecase.ErrInvalidQuery):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": usecase.ErrInvalidQuery.Error(),
		})
	case errors.Is(err, usecase.ErrPictureType),
		errors.Is(err, usecase.ErrPictureTooLarge),
		errors.Is(err, usecase.ErrFieldRequired),
		errors.Is(err, usecase.ErrLinkInvalid):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": err.Error(),
		})
	}
	return internalError(c, logMessage, err)
}

func internalError(c echo.Context, logMessage string, err error) error {
	c.Logger().Errorf("%s: %v", logMessage, err)
	if errors.Is(err, usecase.ErrUpstreamTimeout) {
		return c.JSON(http.StatusGatewayTimeout, echo.Map{
			"message": msgUnexpected,
		})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"message": msgUnexpected,
	})
}
