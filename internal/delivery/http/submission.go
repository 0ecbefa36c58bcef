package http

import (
	"ecourse-admin/internal/delivery/http/utils"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/usecase"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Submission struct {
	submissionUseCase usecase.Submission
}

func NewSubmission(submissionUseCase usecase.Submission) *Submission {
	return &Submission{
		submissionUseCase: submissionUseCase,
	}
}

func (s *Submission) Configure(server *echo.Group) {
	server.GET("", s.List)
	server.GET("/:id", s.Get)
	server.DELETE("/:id", s.Delete)
}

func (s *Submission) List(c echo.Context) error {
	var query entity.ListQuery
	if err := utils.ReadQuery(c, &query); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": usecase.ErrInvalidQuery.Error(),
		})
	}

	submissions, err := s.submissionUseCase.GetSubmissions(c.Request().Context(), &query)
	if errors.Is(err, usecase.ErrInvalidQuery) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": usecase.ErrInvalidQuery.Error(),
		})
	}
	if err != nil {
		return internalError(c, "Ошибка при получении заявок", err)
	}
	return c.JSON(http.StatusOK, submissions)
}

func (s *Submission) Get(c echo.Context) error {
	submission, err := s.submissionUseCase.GetSubmission(c.Request().Context(), c.Param("id"))
	switch {
	case errors.Is(err, usecase.ErrSubmissionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Submission not found",
		})
	case err != nil:
		return internalError(c, "Ошибка при получении заявки", err)
	}
	return c.JSON(http.StatusOK, submission)
}

func (s *Submission) Delete(c echo.Context) error {
	err := s.submissionUseCase.DeleteSubmission(c.Request().Context(), c.Param("id"))
	switch {
	case errors.Is(err, usecase.ErrSubmissionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Submission not found",
		})
	case err != nil:
		return internalError(c, "Ошибка при удалении заявки", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Submission deleted successfully",
	})
}
