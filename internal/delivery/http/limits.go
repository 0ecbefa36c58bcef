package http

import (
	"ecourse-admin/internal/usecase"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// FormOverhead запас на текстовые поля формы сверх самой картинки
const FormOverhead = 1 << 20

// BodyLimit ограничивает тело запроса картинкой maxPictureBytes плюс FormOverhead.
// Лимит передается в байтах как есть: округленная запись вроде "1.24MB" теряет килобайты.
// Превышение отдается как 400, так же как слишком большая картинка.
func BodyLimit(maxPictureBytes int64) echo.MiddlewareFunc {
	limit := middleware.BodyLimit(strconv.FormatInt(maxPictureBytes+FormOverhead, 10) + "B")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		limited := limit(next)
		return func(c echo.Context) error {
			err := limited(c)
			if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"message": usecase.ErrPictureTooLarge.Error(),
				})
			}
			return err
		}
	}
}
