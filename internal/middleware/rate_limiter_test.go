package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJanelaPermitirRespeitaLimite(t *testing.T) {
	j := novaJanela(3, time.Minute)
	agora := time.Now()

	for i := 0; i < 3; i++ {
		ok, _ := j.permitir("10.0.0.1", agora)
		require.True(t, ok)
	}
	ok, fim := j.permitir("10.0.0.1", agora)
	assert.False(t, ok)
	assert.True(t, fim.After(agora))

	// Other IPs carry their own counters.
	ok, _ = j.permitir("10.0.0.2", agora)
	assert.True(t, ok)
}

func TestJanelaReiniciaAposExpirar(t *testing.T) {
	j := novaJanela(1, time.Minute)
	agora := time.Now()

	ok, _ := j.permitir("10.0.0.1", agora)
	require.True(t, ok)
	ok, _ = j.permitir("10.0.0.1", agora)
	require.False(t, ok)

	ok, _ = j.permitir("10.0.0.1", agora.Add(2*time.Minute))
	assert.True(t, ok)
}

func TestJanelaLimparRemoveExpiradas(t *testing.T) {
	j := novaJanela(5, time.Minute)
	agora := time.Now()

	j.permitir("10.0.0.1", agora)
	j.permitir("10.0.0.2", agora.Add(30*time.Second))

	removidas, restantes := j.limpar(agora.Add(90 * time.Second))
	assert.Equal(t, 1, removidas)
	assert.Equal(t, 1, restantes)
}

func TestRateLimiterDevolve429ComRetryAfter(t *testing.T) {
	r := gin.New()
	r.GET("/ping", RateLimiter(2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	bater := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, bater().Code)
	assert.Equal(t, http.StatusOK, bater().Code)

	w := bater()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Muitas solicitacoes")
}

func TestLoginRateLimiterBloqueiaAposDezTentativas(t *testing.T) {
	r := gin.New()
	r.POST("/login", LoginRateLimiter(), func(c *gin.Context) {
		c.Status(http.StatusUnauthorized)
	})

	var ultimo *httptest.ResponseRecorder
	for i := 0; i < 11; i++ {
		ultimo = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.9:5000"
		r.ServeHTTP(ultimo, req)
	}
	assert.Equal(t, http.StatusTooManyRequests, ultimo.Code)
	assert.Contains(t, ultimo.Body.String(), "tentativas de login")
}
