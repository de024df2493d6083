package middleware

import (
	"net/http"
	"sync"
	"time"

	"orcamento/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// janela is a fixed-window per-IP request counter. Each limiter owns its own
// instance, so login abuse never evicts entries of the general API limiter.
type janela struct {
	mu      sync.Mutex
	porIP   map[string]*janelaEntrada
	limite  int
	duracao time.Duration
}

type janelaEntrada struct {
	contagem int
	fim      time.Time
}

func novaJanela(limite int, duracao time.Duration) *janela {
	return &janela{porIP: make(map[string]*janelaEntrada), limite: limite, duracao: duracao}
}

// permitir counts one request for ip and reports whether it stays within the
// limit, along with the instant the current window closes.
func (j *janela) permitir(ip string, agora time.Time) (bool, time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()

	e, ok := j.porIP[ip]
	if !ok || agora.After(e.fim) {
		e = &janelaEntrada{fim: agora.Add(j.duracao)}
		j.porIP[ip] = e
	}
	e.contagem++
	return e.contagem <= j.limite, e.fim
}

// limpar drops closed windows, returning how many were removed and how many
// remain.
func (j *janela) limpar(agora time.Time) (removidas, restantes int) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for ip, e := range j.porIP {
		if agora.After(e.fim) {
			delete(j.porIP, ip)
			removidas++
		}
	}
	return removidas, len(j.porIP)
}

const intervaloLimpeza = 5 * time.Minute

func (j *janela) limpezaPeriodica(nome string) {
	ticker := time.NewTicker(intervaloLimpeza)
	defer ticker.Stop()

	for range ticker.C {
		if removidas, restantes := j.limpar(time.Now()); removidas > 0 {
			log.Debug().
				Str("limiter", nome).
				Int("removed", removidas).
				Int("remaining", restantes).
				Msg("rate limiter entries purged")
		}
	}
}

// RateLimiter returns a per-IP limiter for the general API surface.
func RateLimiter(limite int, duracao time.Duration) gin.HandlerFunc {
	j := novaJanela(limite, duracao)
	go j.limpezaPeriodica("api")

	return func(c *gin.Context) {
		ok, fim := j.permitir(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", fim.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Muitas solicitacoes. Aguarde e tente novamente."))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 10 per minute per IP. The API
// serves an internal back office, so legitimate traffic stays far below this.
func LoginRateLimiter() gin.HandlerFunc {
	j := novaJanela(10, time.Minute)
	go j.limpezaPeriodica("login")

	return func(c *gin.Context) {
		ok, _ := j.permitir(c.ClientIP(), time.Now())
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Muitas tentativas de login. Tente novamente em 1 minuto."))
			return
		}
		c.Next()
	}
}
