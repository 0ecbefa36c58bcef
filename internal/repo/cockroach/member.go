package cockroach

import (
	"context"
	"ecourse-admin/internal/repo"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Member struct {
	db *sqlx.DB
}

func NewMember(db *sqlx.DB) repo.Member {
	return &Member{db: db}
}

// ListMembers не знает схему таблицы member и отдает строки как есть
func (m *Member) ListMembers(ctx context.Context) ([]map[string]any, error) {
	rows, err := m.db.QueryxContext(ctx, "SELECT * FROM member")
	if err != nil {
		return nil, fmt.Errorf("select member: %w", err)
	}
	defer func() { _ = rows.Close() }()

	members := make([]map[string]any, 0)
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		// драйвер отдает текстовые колонки как []byte, а в JSON они должны быть строками
		for column, value := range row {
			if raw, ok := value.([]byte); ok {
				row[column] = string(raw)
			}
		}
		members = append(members, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member: %w", err)
	}
	return members, nil
}
