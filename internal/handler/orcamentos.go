package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"orcamento/internal/apierror"
	"orcamento/internal/service"
)

// OrcamentosHandler exposes the quote pipeline over orders.
type OrcamentosHandler struct {
	svc service.OrcamentoService
}

func NewOrcamentosHandler(svc service.OrcamentoService) *OrcamentosHandler {
	return &OrcamentosHandler{svc: svc}
}

// Gerar runs the full pipeline for a pedido and returns the breakdown.
// ?fresh=1 forces cost resolution to bypass the cache.
func (h *OrcamentosHandler) Gerar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fresh := c.Query("fresh") == "1" || c.Query("fresh") == "true"
	resp, err := h.svc.GerarOrcamento(c.Request.Context(), id, fresh)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SolicitarPDF enqueues async PDF generation and email delivery.
func (h *OrcamentosHandler) SolicitarPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.SolicitarPDF(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "enfileirado"})
}

// BaixarPDF renders the PDF synchronously and streams the file back.
func (h *OrcamentosHandler) BaixarPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.GerarEEnviarPDF(c.Request.Context(), id, "")
	if err != nil {
		respondErr(c, err)
		return
	}
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("PDF nao encontrado"))
		return
	}
	c.FileAttachment(path, "orcamento_"+id.String()+".pdf")
}
