package repository

import (
	"context"

	"orcamento/internal/dto"
	"orcamento/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PedidoRepository is the data access contract for orders and their ordered
// child rows. Child collections are ALWAYS returned ordered by the ordem
// column — the tax chain compounds in that exact order.
type PedidoRepository interface {
	Create(ctx context.Context, p *model.Pedido) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error)
	List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error)
	Update(ctx context.Context, p *model.Pedido) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	// Ordered children — ordem is assigned from the current max + 1.
	AddItemExtra(ctx context.Context, item *model.ItemExtraPedido) error
	DeleteItemExtra(ctx context.Context, pedidoID, itemID uuid.UUID) error
	AddImposto(ctx context.Context, imposto *model.ImpostoPedido) error
	DeleteImposto(ctx context.Context, pedidoID, impostoID uuid.UUID) error
	ListImpostos(ctx context.Context, pedidoID uuid.UUID) ([]model.ImpostoPedido, error)

	DB() *gorm.DB
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) Create(ctx context.Context, p *model.Pedido) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pedidoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).
		Preload("Produto").
		Preload("Cliente").
		Preload("ItensExtras", func(db *gorm.DB) *gorm.DB { return db.Order("ordem ASC") }).
		Preload("Impostos", func(db *gorm.DB) *gorm.DB { return db.Order("ordem ASC") }).
		First(&p, id).Error
	return &p, err
}

func (r *pedidoRepo) List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var pedidos []model.Pedido
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Pedido{})
	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CriadoPor != "" {
		q = q.Where("criado_por = ?", filter.CriadoPor)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Cliente").Preload("Produto").
		Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&pedidos).Error
	return pedidos, total, err
}

func (r *pedidoRepo) Update(ctx context.Context, p *model.Pedido) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *pedidoRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Pedido{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *pedidoRepo) AddItemExtra(ctx context.Context, item *model.ItemExtraPedido) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxOrdem int
		if err := tx.Model(&model.ItemExtraPedido{}).
			Where("pedido_id = ?", item.PedidoID).
			Select("COALESCE(MAX(ordem), 0)").Scan(&maxOrdem).Error; err != nil {
			return err
		}
		item.Ordem = maxOrdem + 1
		return tx.Create(item).Error
	})
}

func (r *pedidoRepo) DeleteItemExtra(ctx context.Context, pedidoID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("pedido_id = ?", pedidoID).Delete(&model.ItemExtraPedido{}, itemID).Error
}

func (r *pedidoRepo) AddImposto(ctx context.Context, imposto *model.ImpostoPedido) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxOrdem int
		if err := tx.Model(&model.ImpostoPedido{}).
			Where("pedido_id = ?", imposto.PedidoID).
			Select("COALESCE(MAX(ordem), 0)").Scan(&maxOrdem).Error; err != nil {
			return err
		}
		imposto.Ordem = maxOrdem + 1
		return tx.Create(imposto).Error
	})
}

func (r *pedidoRepo) DeleteImposto(ctx context.Context, pedidoID, impostoID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("pedido_id = ?", pedidoID).Delete(&model.ImpostoPedido{}, impostoID).Error
}

func (r *pedidoRepo) ListImpostos(ctx context.Context, pedidoID uuid.UUID) ([]model.ImpostoPedido, error) {
	var impostos []model.ImpostoPedido
	err := r.db.WithContext(ctx).
		Where("pedido_id = ?", pedidoID).Order("ordem ASC").Find(&impostos).Error
	return impostos, err
}

func (r *pedidoRepo) DB() *gorm.DB { return r.db }
