package service

import (
	"context"
	"ecourse-admin/internal/repo"
	"ecourse-admin/internal/usecase"
)

type Member struct {
	memberRepo repo.Member
}

func NewMember(memberRepo repo.Member) usecase.Member {
	return &Member{memberRepo: memberRepo}
}

func (m *Member) GetMembers(ctx context.Context) ([]map[string]any, error) {
	return m.memberRepo.ListMembers(ctx)
}
