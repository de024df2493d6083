package repository

import (
	"context"

	"orcamento/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HistoricoCustoRepository interface {
	Create(ctx context.Context, h *model.HistoricoCusto) error
	ListByProduto(ctx context.Context, produtoID uuid.UUID, limit int) ([]model.HistoricoCusto, error)
}

type historicoCustoRepo struct{ db *gorm.DB }

func NewHistoricoCustoRepository(db *gorm.DB) HistoricoCustoRepository {
	return &historicoCustoRepo{db: db}
}

func (r *historicoCustoRepo) Create(ctx context.Context, h *model.HistoricoCusto) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *historicoCustoRepo) ListByProduto(ctx context.Context, produtoID uuid.UUID, limit int) ([]model.HistoricoCusto, error) {
	if limit <= 0 {
		limit = 50
	}
	var hist []model.HistoricoCusto
	err := r.db.WithContext(ctx).
		Where("produto_id = ?", produtoID).
		Order("created_at DESC").Limit(limit).Find(&hist).Error
	return hist, err
}
