package repository

import (
	"context"
	"time"

	"orcamento/internal/dto"
	"orcamento/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProdutoRepository is the data access contract for the catalog — products,
// BOM edges, and the process/labor attachments the cost resolver walks.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProdutoRepository interface {
	Create(ctx context.Context, p *model.Produto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error)
	List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error)
	Update(ctx context.Context, p *model.Produto) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// BOM edges
	CreateDependencia(ctx context.Context, d *model.DependenciaProduto) error
	FindDependenciaByID(ctx context.Context, id uuid.UUID) (*model.DependenciaProduto, error)
	ListDependencias(ctx context.Context, paiID uuid.UUID) ([]model.DependenciaProduto, error)
	ListDependenciasPorFilho(ctx context.Context, filhoID uuid.UUID) ([]model.DependenciaProduto, error)
	UpdateDependencia(ctx context.Context, d *model.DependenciaProduto) error
	DeleteDependencia(ctx context.Context, id uuid.UUID) error

	// Process / labor attachments
	CreateProdutoProcesso(ctx context.Context, pp *model.ProdutoProcesso) error
	ListProcessos(ctx context.Context, produtoID uuid.UUID) ([]model.ProdutoProcesso, error)
	DeleteProdutoProcesso(ctx context.Context, id uuid.UUID) error
	CreateProdutoMaoDeObra(ctx context.Context, pm *model.ProdutoMaoDeObra) error
	ListMaoDeObra(ctx context.Context, produtoID uuid.UUID) ([]model.ProdutoMaoDeObra, error)
	DeleteProdutoMaoDeObra(ctx context.Context, id uuid.UUID) error

	// Reverse lookups for cache invalidation when a catalog price changes.
	ListProdutoIDsPorProcesso(ctx context.Context, processoID uuid.UUID) ([]uuid.UUID, error)
	ListProdutoIDsPorMaoDeObra(ctx context.Context, maoDeObraID uuid.UUID) ([]uuid.UUID, error)

	// Cost cache
	PersistCusto(ctx context.Context, id uuid.UUID, total, materiais, processos, maoDeObra decimal.Decimal, quando time.Time) error
	InvalidateCusto(ctx context.Context, id uuid.UUID) error

	// Stock — delta applied atomically in SQL
	AjustarEstoque(ctx context.Context, id uuid.UUID, delta int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository { return &produtoRepo{db: db} }

func (r *produtoRepo) Create(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *produtoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *produtoRepo) List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error) {
	var produtos []model.Produto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Produto{})

	// Ativo filter: "false" = inativos, "all" = todos, anything else = ativos (default)
	switch filter.Ativo {
	case "false":
		q = q.Where("ativo = false")
	case "all":
		// no filter
	default:
		q = q.Where("ativo = true")
	}

	if filter.Nome != "" {
		q = q.Where("nome ILIKE ?", "%"+filter.Nome+"%")
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	switch filter.EhMateriaPrima {
	case "true":
		q = q.Where("eh_materia_prima = true")
	case "false":
		q = q.Where("eh_materia_prima = false")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nome ASC").Limit(filter.Limit).Offset(offset).Find(&produtos).Error
	return produtos, total, err
}

func (r *produtoRepo) Update(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *produtoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Produto{}).Where("id = ?", id).Update("ativo", false).Error
}

// ── BOM edges ────────────────────────────────────────────────────────────────

func (r *produtoRepo) CreateDependencia(ctx context.Context, d *model.DependenciaProduto) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *produtoRepo) FindDependenciaByID(ctx context.Context, id uuid.UUID) (*model.DependenciaProduto, error) {
	var d model.DependenciaProduto
	err := r.db.WithContext(ctx).First(&d, id).Error
	return &d, err
}

func (r *produtoRepo) ListDependencias(ctx context.Context, paiID uuid.UUID) ([]model.DependenciaProduto, error) {
	var deps []model.DependenciaProduto
	err := r.db.WithContext(ctx).Preload("Filho").
		Where("produto_pai_id = ?", paiID).Find(&deps).Error
	return deps, err
}

func (r *produtoRepo) ListDependenciasPorFilho(ctx context.Context, filhoID uuid.UUID) ([]model.DependenciaProduto, error) {
	var deps []model.DependenciaProduto
	err := r.db.WithContext(ctx).Where("produto_filho_id = ?", filhoID).Find(&deps).Error
	return deps, err
}

func (r *produtoRepo) UpdateDependencia(ctx context.Context, d *model.DependenciaProduto) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *produtoRepo) DeleteDependencia(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.DependenciaProduto{}, id).Error
}

// ── Process / labor attachments ──────────────────────────────────────────────

func (r *produtoRepo) CreateProdutoProcesso(ctx context.Context, pp *model.ProdutoProcesso) error {
	return r.db.WithContext(ctx).Create(pp).Error
}

func (r *produtoRepo) ListProcessos(ctx context.Context, produtoID uuid.UUID) ([]model.ProdutoProcesso, error) {
	var pps []model.ProdutoProcesso
	err := r.db.WithContext(ctx).Preload("Processo").
		Where("produto_id = ?", produtoID).Find(&pps).Error
	return pps, err
}

func (r *produtoRepo) DeleteProdutoProcesso(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ProdutoProcesso{}, id).Error
}

func (r *produtoRepo) CreateProdutoMaoDeObra(ctx context.Context, pm *model.ProdutoMaoDeObra) error {
	return r.db.WithContext(ctx).Create(pm).Error
}

func (r *produtoRepo) ListMaoDeObra(ctx context.Context, produtoID uuid.UUID) ([]model.ProdutoMaoDeObra, error) {
	var pms []model.ProdutoMaoDeObra
	err := r.db.WithContext(ctx).Preload("MaoDeObra").
		Where("produto_id = ?", produtoID).Find(&pms).Error
	return pms, err
}

func (r *produtoRepo) DeleteProdutoMaoDeObra(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ProdutoMaoDeObra{}, id).Error
}

func (r *produtoRepo) ListProdutoIDsPorProcesso(ctx context.Context, processoID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.ProdutoProcesso{}).
		Where("processo_id = ?", processoID).Pluck("produto_id", &ids).Error
	return ids, err
}

func (r *produtoRepo) ListProdutoIDsPorMaoDeObra(ctx context.Context, maoDeObraID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.ProdutoMaoDeObra{}).
		Where("mao_de_obra_id = ?", maoDeObraID).Pluck("produto_id", &ids).Error
	return ids, err
}

// ── Cost cache ───────────────────────────────────────────────────────────────

func (r *produtoRepo) PersistCusto(ctx context.Context, id uuid.UUID, total, materiais, processos, maoDeObra decimal.Decimal, quando time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Produto{}).Where("id = ?", id).Updates(map[string]interface{}{
		"custo_total":          total,
		"custo_materiais":      materiais,
		"custo_processos":      processos,
		"custo_mao_de_obra":    maoDeObra,
		"custos_calculados_em": quando,
	}).Error
}

func (r *produtoRepo) InvalidateCusto(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Produto{}).Where("id = ?", id).
		Update("custos_calculados_em", nil).Error
}

// ── Stock ────────────────────────────────────────────────────────────────────

func (r *produtoRepo) AjustarEstoque(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).Model(&model.Produto{}).
		Where("id = ? AND ativo = true", id).
		Update("estoque", gorm.Expr("estoque + ?", delta)).Error
}

func (r *produtoRepo) DB() *gorm.DB { return r.db }
