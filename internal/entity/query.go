package entity

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListQuery описывает сортировку, фильтрацию и пагинацию табличного представления.
// Пустой запрос означает "вернуть все строки".
type ListQuery struct {
	Sort   string `query:"sort"`
	Order  string `query:"order"`
	Filter string `query:"filter"`
	Limit  uint64 `query:"limit"`
	Offset uint64 `query:"offset"`
}
