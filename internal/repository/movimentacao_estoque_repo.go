package repository

import (
	"context"

	"orcamento/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovimentacaoEstoqueRepository interface {
	Create(ctx context.Context, m *model.MovimentacaoEstoque) error
	ListByProduto(ctx context.Context, produtoID uuid.UUID, limit int) ([]model.MovimentacaoEstoque, error)
}

type movimentacaoEstoqueRepo struct{ db *gorm.DB }

func NewMovimentacaoEstoqueRepository(db *gorm.DB) MovimentacaoEstoqueRepository {
	return &movimentacaoEstoqueRepo{db: db}
}

func (r *movimentacaoEstoqueRepo) Create(ctx context.Context, m *model.MovimentacaoEstoque) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *movimentacaoEstoqueRepo) ListByProduto(ctx context.Context, produtoID uuid.UUID, limit int) ([]model.MovimentacaoEstoque, error) {
	if limit <= 0 {
		limit = 50
	}
	var movs []model.MovimentacaoEstoque
	err := r.db.WithContext(ctx).
		Where("produto_id = ?", produtoID).
		Order("created_at DESC").Limit(limit).Find(&movs).Error
	return movs, err
}
