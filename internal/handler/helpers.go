package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"orcamento/internal/apierror"
	"orcamento/internal/pricing"
	"orcamento/internal/service"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, lt=100 work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondErr maps domain sentinel errors to HTTP status codes so every
// handler reports the taxonomy the same way.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProdutoNaoEncontrado),
		errors.Is(err, service.ErrPedidoNaoEncontrado),
		errors.Is(err, service.ErrClienteNaoEncontrado),
		errors.Is(err, service.ErrProcessoNaoEncontrado),
		errors.Is(err, service.ErrMaoDeObraNaoEncontrada):
		c.JSON(http.StatusNotFound, apierror.FromErr(err))
	case errors.Is(err, service.ErrDependenciaCiclica),
		errors.Is(err, service.ErrDependenciaDuplicada),
		errors.Is(err, service.ErrTransicaoInvalida),
		errors.Is(err, service.ErrPedidoNaoEditavel),
		errors.Is(err, service.ErrStatusClienteTerminal),
		errors.Is(err, service.ErrEstoqueInsuficiente):
		c.JSON(http.StatusConflict, apierror.FromErr(err))
	case errors.Is(err, pricing.ErrPercentualInvalido),
		errors.Is(err, pricing.ErrValorNegativo):
		c.JSON(http.StatusUnprocessableEntity, apierror.FromErr(err))
	case errors.Is(err, service.ErrFonteIndisponivel):
		c.JSON(http.StatusServiceUnavailable, apierror.FromErr(err))
	default:
		c.JSON(http.StatusBadRequest, apierror.FromErr(err))
	}
}

// parseID reads a UUID path param, writing the 400 itself on failure.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}
