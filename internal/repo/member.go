package repo

import "context"

type Member interface {
	// ListMembers возвращает все строки таблицы member как отображения "колонка -> значение"
	ListMembers(ctx context.Context) ([]map[string]any, error)
}
