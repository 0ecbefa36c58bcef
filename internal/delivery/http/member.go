package http

import (
	"ecourse-admin/internal/usecase"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Member struct {
	memberUseCase usecase.Member
}

func NewMember(memberUseCase usecase.Member) *Member {
	return &Member{
		memberUseCase: memberUseCase,
	}
}

func (m *Member) Configure(server *echo.Group) {
	server.GET("", m.List)
}

func (m *Member) List(c echo.Context) error {
	members, err := m.memberUseCase.GetMembers(c.Request().Context())
	if err != nil {
		return internalError(c, "Ошибка при получении участников", err)
	}
	return c.JSON(http.StatusOK, members)
}
