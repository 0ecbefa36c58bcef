package utils

import (
	"ecourse-admin/internal/entity"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ReadPicture открывает файл из multipart-поля. Если поля нет или тело не multipart, возвращает nil без ошибки;
// закрыть файл должен вызывающий.
func ReadPicture(c echo.Context, field string) (*entity.Picture, io.Closer, error) {
	file, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	raw, err := file.Open()
	if err != nil {
		return nil, nil, err
	}
	return &entity.Picture{
		Filename:    file.Filename,
		ContentType: file.Header.Get(echo.HeaderContentType),
		Size:        file.Size,
		RawBytes:    raw,
	}, raw, nil
}

// FormValue возвращает значение поля формы или nil, если поле не передано вовсе
func FormValue(c echo.Context, name string) *string {
	params, err := c.FormParams()
	if err != nil {
		return nil
	}
	values, ok := params[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
