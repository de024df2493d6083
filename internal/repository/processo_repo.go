package repository

import (
	"context"

	"orcamento/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProcessoRepository interface {
	Create(ctx context.Context, p *model.Processo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Processo, error)
	List(ctx context.Context) ([]model.Processo, error)
	Update(ctx context.Context, p *model.Processo) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type processoRepo struct{ db *gorm.DB }

func NewProcessoRepository(db *gorm.DB) ProcessoRepository { return &processoRepo{db: db} }

func (r *processoRepo) Create(ctx context.Context, p *model.Processo) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *processoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Processo, error) {
	var p model.Processo
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *processoRepo) List(ctx context.Context) ([]model.Processo, error) {
	var procs []model.Processo
	err := r.db.WithContext(ctx).Where("ativo = true").Order("nome ASC").Find(&procs).Error
	return procs, err
}

func (r *processoRepo) Update(ctx context.Context, p *model.Processo) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *processoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Processo{}).Where("id = ?", id).Update("ativo", false).Error
}
