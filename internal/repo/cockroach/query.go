package cockroach

import (
	"database/sql"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/repo"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// tableListing описывает, какие колонки таблицы можно сортировать и по каким ищет фильтр
type tableListing struct {
	sortable    map[string]struct{}
	filterable  []string
	defaultSort string
}

// apply навешивает на запрос сортировку, фильтр и пагинацию из query
func (t tableListing) apply(builder sq.SelectBuilder, query *entity.ListQuery) (sq.SelectBuilder, error) {
	if query == nil {
		query = &entity.ListQuery{}
	}

	if query.Filter != "" {
		pattern := "%" + likeEscaper.Replace(query.Filter) + "%"
		or := sq.Or{}
		for _, column := range t.filterable {
			or = append(or, sq.ILike{column: pattern})
		}
		builder = builder.Where(or)
	}

	sortColumn := t.defaultSort
	if query.Sort != "" {
		if _, ok := t.sortable[query.Sort]; !ok {
			return builder, repo.ErrUnknownColumn
		}
		sortColumn = query.Sort
	}
	direction := "ASC"
	if strings.EqualFold(query.Order, entity.OrderDesc) {
		direction = "DESC"
	}
	// колонка взята из белого списка, поэтому ее можно подставить в ORDER BY
	builder = builder.OrderBy(sortColumn + " " + direction)

	if query.Limit > 0 {
		builder = builder.Limit(query.Limit)
	}
	if query.Offset > 0 {
		builder = builder.Offset(query.Offset)
	}
	return builder, nil
}

func columnSet(columns ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(columns))
	for _, column := range columns {
		set[column] = struct{}{}
	}
	return set
}

// isNotFound возвращает true и для отсутствующей строки, и для id, который не является UUID
func isNotFound(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code.Name() == "invalid_text_representation"
}
