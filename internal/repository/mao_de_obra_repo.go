package repository

import (
	"context"

	"orcamento/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaoDeObraRepository interface {
	Create(ctx context.Context, m *model.MaoDeObra) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.MaoDeObra, error)
	List(ctx context.Context) ([]model.MaoDeObra, error)
	Update(ctx context.Context, m *model.MaoDeObra) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type maoDeObraRepo struct{ db *gorm.DB }

func NewMaoDeObraRepository(db *gorm.DB) MaoDeObraRepository { return &maoDeObraRepo{db: db} }

func (r *maoDeObraRepo) Create(ctx context.Context, m *model.MaoDeObra) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *maoDeObraRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.MaoDeObra, error) {
	var m model.MaoDeObra
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *maoDeObraRepo) List(ctx context.Context) ([]model.MaoDeObra, error) {
	var ms []model.MaoDeObra
	err := r.db.WithContext(ctx).Where("ativo = true").Order("tipo ASC").Find(&ms).Error
	return ms, err
}

func (r *maoDeObraRepo) Update(ctx context.Context, m *model.MaoDeObra) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *maoDeObraRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.MaoDeObra{}).Where("id = ?", id).Update("ativo", false).Error
}
