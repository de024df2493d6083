package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"orcamento/internal/apierror"
	"orcamento/internal/dto"
	"orcamento/internal/service"
)

// ProdutosHandler exposes the product catalog, the BOM graph, process and
// labor attachments, stock and cost endpoints.
type ProdutosHandler struct {
	svc    service.ProdutoService
	custos service.CustoService
}

func NewProdutosHandler(svc service.ProdutoService, custos service.CustoService) *ProdutosHandler {
	return &ProdutosHandler{svc: svc, custos: custos}
}

func (h *ProdutosHandler) Criar(c *gin.Context) {
	var req dto.CriarProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProdutosHandler) Listar(c *gin.Context) {
	var filter dto.ProdutoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.FromErr(err))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao listar produtos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) Buscar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Buscar(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) Atualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AtualizarProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) Desativar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desativar(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ─── Custo ───────────────────────────────────────────────────────────────────

// Custo resolves the product's base cost. ?fresh=1 bypasses the cache and
// forces a full BOM traversal.
func (h *ProdutosHandler) Custo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fresh := c.Query("fresh") == "1" || c.Query("fresh") == "true"
	resp, err := h.custos.CalcularCusto(c.Request.Context(), id, fresh)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecalcularCusto forces synchronous recomputation and persists the result.
func (h *ProdutosHandler) RecalcularCusto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.custos.RecalcularEPersistir(c.Request.Context(), id, "recalculo manual")
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) HistoricoCusto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	resp, err := h.custos.Historico(c.Request.Context(), id, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ─── Dependencias (BOM) ──────────────────────────────────────────────────────

func (h *ProdutosHandler) CriarDependencia(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CriarDependenciaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CriarDependencia(c.Request.Context(), id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProdutosHandler) ListarDependencias(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarDependencias(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) AtualizarDependencia(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	depID, ok := parseID(c, "depId")
	if !ok {
		return
	}
	var req dto.AtualizarDependenciaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AtualizarDependencia(c.Request.Context(), id, depID, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) RemoverDependencia(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	depID, ok := parseID(c, "depId")
	if !ok {
		return
	}
	if err := h.svc.RemoverDependencia(c.Request.Context(), id, depID); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ─── Processos / mão de obra ─────────────────────────────────────────────────

func (h *ProdutosHandler) VincularProcesso(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.VincularProcessoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.VincularProcesso(c.Request.Context(), id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProdutosHandler) ListarProcessos(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarProcessos(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) DesvincularProcesso(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	vinculoID, ok := parseID(c, "vinculoId")
	if !ok {
		return
	}
	if err := h.svc.DesvincularProcesso(c.Request.Context(), id, vinculoID); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProdutosHandler) VincularMaoDeObra(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.VincularMaoDeObraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.VincularMaoDeObra(c.Request.Context(), id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProdutosHandler) ListarMaoDeObra(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarMaoDeObra(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) DesvincularMaoDeObra(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	vinculoID, ok := parseID(c, "vinculoId")
	if !ok {
		return
	}
	if err := h.svc.DesvincularMaoDeObra(c.Request.Context(), id, vinculoID); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ─── Estoque ─────────────────────────────────────────────────────────────────

func (h *ProdutosHandler) AjustarEstoque(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AjustarEstoqueRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarEstoque(c.Request.Context(), id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) Movimentacoes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	resp, err := h.svc.Movimentacoes(c.Request.Context(), id, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
