package infra

import (
	"fmt"

	"orcamento/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs AutoMigrate
// to create / update all tables.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations applies the schema. Also used by integration tests against a
// throwaway container database.
func RunMigrations(db *gorm.DB) error {
	// pgcrypto provides gen_random_uuid() on PostgreSQL < 13
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return err
	}
	return db.AutoMigrate(
		&model.Usuario{},
		&model.Produto{},
		&model.DependenciaProduto{},
		&model.Processo{},
		&model.ProdutoProcesso{},
		&model.MaoDeObra{},
		&model.ProdutoMaoDeObra{},
		&model.Cliente{},
		&model.Pedido{},
		&model.ItemExtraPedido{},
		&model.ImpostoPedido{},
		&model.HistoricoCusto{},
		&model.MovimentacaoEstoque{},
	)
}
