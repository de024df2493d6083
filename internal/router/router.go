package router

import (
	"time"

	"orcamento/internal/config"
	"orcamento/internal/handler"
	"orcamento/internal/infra"
	"orcamento/internal/middleware"
	"orcamento/internal/repository"
	"orcamento/internal/service"
	"orcamento/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)
	processoRepo := repository.NewProcessoRepository(db)
	maoDeObraRepo := repository.NewMaoDeObraRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	historicoRepo := repository.NewHistoricoCustoRepository(db)
	movimentacaoRepo := repository.NewMovimentacaoEstoqueRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	custoSvc := service.NewCustoService(produtoRepo, historicoRepo, rdb,
		time.Duration(cfg.CustoCacheTTLMin)*time.Minute)
	produtoSvc := service.NewProdutoService(produtoRepo, processoRepo, maoDeObraRepo,
		movimentacaoRepo, custoSvc, dispatcher)
	processoSvc := service.NewProcessoService(processoRepo, produtoRepo, custoSvc, dispatcher)
	maoDeObraSvc := service.NewMaoDeObraService(maoDeObraRepo, produtoRepo, custoSvc, dispatcher)
	clienteSvc := service.NewClienteService(clienteRepo,
		time.Duration(cfg.PrazoCancelamentoDias)*24*time.Hour)
	pedidoSvc := service.NewPedidoService(pedidoRepo, clienteRepo, produtoRepo)
	orcamentoSvc := service.NewOrcamentoService(pedidoRepo, custoSvc, dispatcher, mailer, smtpCB, cfg.PDFStoragePath)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	produtosH := handler.NewProdutosHandler(produtoSvc, custoSvc)
	processosH := handler.NewProcessosHandler(processoSvc)
	maoDeObraH := handler.NewMaoDeObraHandler(maoDeObraSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	pedidosH := handler.NewPedidosHandler(pedidoSvc)
	orcamentosH := handler.NewOrcamentosHandler(orcamentoSvc)
	healthH := handler.NewHealthHandler(db, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", healthH.Check)

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: orcamentista, supervisor, administrador — declared per-endpoint
		leitura := middleware.RequireRole("orcamentista", "supervisor", "administrador")
		gestao := middleware.RequireRole("supervisor", "administrador")
		admin := middleware.RequireRole("administrador")

		// Catálogo de produtos — leitura para todos, escrita para gestão
		v1.GET("/produtos", leitura, produtosH.Listar)
		v1.GET("/produtos/:id", leitura, produtosH.Buscar)
		v1.GET("/produtos/:id/custo", leitura, produtosH.Custo)
		v1.GET("/produtos/:id/historico-custos", leitura, produtosH.HistoricoCusto)
		v1.GET("/produtos/:id/dependencias", leitura, produtosH.ListarDependencias)
		v1.GET("/produtos/:id/processos", leitura, produtosH.ListarProcessos)
		v1.GET("/produtos/:id/mao-de-obra", leitura, produtosH.ListarMaoDeObra)
		v1.GET("/produtos/:id/movimentacoes", leitura, produtosH.Movimentacoes)
		prods := v1.Group("/produtos", gestao)
		{
			prods.POST("", produtosH.Criar)
			prods.PUT("/:id", produtosH.Atualizar)
			prods.DELETE("/:id", produtosH.Desativar)
			prods.POST("/:id/recalcular-custo", produtosH.RecalcularCusto)
			prods.POST("/:id/dependencias", produtosH.CriarDependencia)
			prods.PUT("/:id/dependencias/:depId", produtosH.AtualizarDependencia)
			prods.DELETE("/:id/dependencias/:depId", produtosH.RemoverDependencia)
			prods.POST("/:id/processos", produtosH.VincularProcesso)
			prods.DELETE("/:id/processos/:vinculoId", produtosH.DesvincularProcesso)
			prods.POST("/:id/mao-de-obra", produtosH.VincularMaoDeObra)
			prods.DELETE("/:id/mao-de-obra/:vinculoId", produtosH.DesvincularMaoDeObra)
			prods.PATCH("/:id/estoque", produtosH.AjustarEstoque)
		}

		// Processos e mão de obra — catálogos auxiliares
		v1.GET("/processos", leitura, processosH.Listar)
		v1.GET("/processos/:id", leitura, processosH.Buscar)
		procs := v1.Group("/processos", gestao)
		{
			procs.POST("", processosH.Criar)
			procs.PUT("/:id", processosH.Atualizar)
			procs.DELETE("/:id", processosH.Desativar)
		}

		v1.GET("/mao-de-obra", leitura, maoDeObraH.Listar)
		v1.GET("/mao-de-obra/:id", leitura, maoDeObraH.Buscar)
		maos := v1.Group("/mao-de-obra", gestao)
		{
			maos.POST("", maoDeObraH.Criar)
			maos.PUT("/:id", maoDeObraH.Atualizar)
			maos.DELETE("/:id", maoDeObraH.Desativar)
		}

		// Clientes
		v1.GET("/clientes", leitura, clientesH.Listar)
		v1.GET("/clientes/:id", leitura, clientesH.Buscar)
		v1.POST("/clientes", leitura, clientesH.Criar)
		v1.PUT("/clientes/:id", leitura, clientesH.Atualizar)
		v1.POST("/clientes/:id/confirmar", gestao, clientesH.Confirmar)
		v1.POST("/clientes/:id/cancelar", gestao, clientesH.Cancelar)
		v1.DELETE("/clientes/:id", admin, clientesH.Desativar)

		// Pedidos e orçamentos
		v1.POST("/pedidos", leitura, pedidosH.Criar)
		v1.GET("/pedidos", leitura, pedidosH.Listar)
		v1.GET("/pedidos/:id", leitura, pedidosH.Buscar)
		v1.PUT("/pedidos/:id", leitura, pedidosH.Atualizar)
		v1.PATCH("/pedidos/:id/status", gestao, pedidosH.AtualizarStatus)
		v1.POST("/pedidos/:id/itens-extras", leitura, pedidosH.AdicionarItemExtra)
		v1.DELETE("/pedidos/:id/itens-extras/:itemId", leitura, pedidosH.RemoverItemExtra)
		v1.POST("/pedidos/:id/impostos", leitura, pedidosH.AdicionarImposto)
		v1.DELETE("/pedidos/:id/impostos/:impostoId", leitura, pedidosH.RemoverImposto)

		v1.GET("/pedidos/:id/orcamento", leitura, orcamentosH.Gerar)
		v1.GET("/pedidos/:id/orcamento/pdf", leitura, orcamentosH.BaixarPDF)
		v1.POST("/pedidos/:id/orcamento/pdf", leitura, orcamentosH.SolicitarPDF)

		// Usuários — administrador only
		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", authH.CriarUsuario)
			usuarios.GET("", authH.ListarUsuarios)
			usuarios.PUT("/:id", authH.AtualizarUsuario)
			usuarios.DELETE("/:id", authH.DesativarUsuario)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
