package utils

import "github.com/labstack/echo/v4"

// ReadQuery читает только параметры строки запроса, тело и путь не трогает
func ReadQuery(c echo.Context, v any) error {
	err := (&echo.DefaultBinder{}).BindQueryParams(c, v)
	if err != nil {
		return err
	}
	return nil
}
