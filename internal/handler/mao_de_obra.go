package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orcamento/internal/apierror"
	"orcamento/internal/dto"
	"orcamento/internal/service"
)

type MaoDeObraHandler struct{ svc service.MaoDeObraService }

func NewMaoDeObraHandler(svc service.MaoDeObraService) *MaoDeObraHandler {
	return &MaoDeObraHandler{svc: svc}
}

func (h *MaoDeObraHandler) Criar(c *gin.Context) {
	var req dto.CriarMaoDeObraRequest
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

func (h *MaoDeObraHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao listar mao de obra"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MaoDeObraHandler) Buscar(c *gin.Context) {
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

func (h *MaoDeObraHandler) Atualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AtualizarMaoDeObraRequest
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

func (h *MaoDeObraHandler) Desativar(c *gin.Context) {
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
