//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"orcamento/internal/config"
	"orcamento/internal/infra"
	"orcamento/internal/model"
	"orcamento/internal/router"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("orcamento_test"),
		tcPostgres.WithUsername("orcamento"),
		tcPostgres.WithPassword("orcamento"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                  8000,
		Env:                   "test",
		JWTSecret:             "test-secret-key",
		JWTExpirationHours:    8,
		JWTRefreshHours:       24,
		DatabaseURL:           pgURL,
		RedisURL:              rdURL,
		WorkerPoolSize:        1,
		PDFStoragePath:        t.TempDir(),
		PrazoCancelamentoDias: 7,
		CustoCacheTTLMin:      10,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed admin user
	hash, err := bcrypt.GenerateFromPassword([]byte("orcamento2026"), 12)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Usuario{
		Username:     "admin@e2e.test",
		Nome:         "Admin E2E",
		PasswordHash: string(hash),
		Rol:          "administrador",
		Ativo:        true,
	}).Error)

	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	r := router.New(cfg, db, rdb, smtpCB)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin@e2e.test", "password": "orcamento2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken}
}

func (env *testEnv) criarCliente(t *testing.T, nome string) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/clientes",
		jsonBody(t, map[string]any{"nome": nome}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var cliente struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &cliente)
	return cliente.ID
}

func (env *testEnv) criarProduto(t *testing.T, body map[string]any) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/produtos", jsonBody(t, body), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var produto struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &produto)
	return produto.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Full quote cycle: catalog → order → extras and taxes → generated quote.
// Cost 250 with a 20% margin prices at 312.50; an extra of 12.50 closes the
// subtotal at 325; ICMS 10% brings it to 361.11 and freight of 20, added
// after the tax, lands the final total at 381.11.
func TestE2E_FluxoCompletoOrcamento(t *testing.T) {
	env := setupTestEnv(t)

	produtoID := env.criarProduto(t, map[string]any{
		"nome":             "Suporte industrial",
		"tipo":             "simples",
		"preco_unitario":   250.0,
		"margem_lucro_pct": 20.0,
	})
	clienteID := env.criarCliente(t, "Metalurgica Silva")

	pedidoResp := do(t, env.server, "POST", "/v1/pedidos",
		jsonBody(t, map[string]any{
			"produto_id":  produtoID,
			"cliente_id":  clienteID,
			"quantidade":  1,
			"tem_frete":   true,
			"valor_frete": 20.0,
		}), env.token)
	require.Equal(t, http.StatusCreated, pedidoResp.StatusCode)
	var pedido struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeJSON(t, pedidoResp, &pedido)
	assert.Equal(t, "pendente", pedido.Status)

	extraResp := do(t, env.server, "POST", "/v1/pedidos/"+pedido.ID+"/itens-extras",
		jsonBody(t, map[string]any{"descricao": "Embalagem especial", "valor": 12.50}), env.token)
	require.Equal(t, http.StatusCreated, extraResp.StatusCode)
	extraResp.Body.Close()

	impResp := do(t, env.server, "POST", "/v1/pedidos/"+pedido.ID+"/impostos",
		jsonBody(t, map[string]any{"tipo": "ICMS", "percentual": 10}), env.token)
	require.Equal(t, http.StatusCreated, impResp.StatusCode)
	impResp.Body.Close()

	orcResp := do(t, env.server, "GET", "/v1/pedidos/"+pedido.ID+"/orcamento?fresh=1", nil, env.token)
	require.Equal(t, http.StatusOK, orcResp.StatusCode)
	var orc struct {
		Subtotal         decimal.Decimal `json:"subtotal"`
		TotalComImpostos decimal.Decimal `json:"total_com_impostos"`
		Frete            decimal.Decimal `json:"frete"`
		TotalFinal       decimal.Decimal `json:"total_final"`
	}
	decodeJSON(t, orcResp, &orc)

	assert.Equal(t, "325.00", orc.Subtotal.StringFixed(2))
	assert.Equal(t, "361.11", orc.TotalComImpostos.StringFixed(2))
	assert.Equal(t, "20.00", orc.Frete.StringFixed(2))
	assert.Equal(t, "381.11", orc.TotalFinal.StringFixed(2))
}

// BOM cost resolution over real storage, and cycle rejection at the API edge.
func TestE2E_CustoArvoreECiclo(t *testing.T) {
	env := setupTestEnv(t)

	conjunto := env.criarProduto(t, map[string]any{
		"nome": "Conjunto soldado",
		"tipo": "calculado",
	})
	chapa := env.criarProduto(t, map[string]any{
		"nome":           "Chapa de aco",
		"tipo":           "simples",
		"preco_unitario": 10.0,
	})

	depResp := do(t, env.server, "POST", "/v1/produtos/"+conjunto+"/dependencias",
		jsonBody(t, map[string]any{"produto_filho_id": chapa, "quantidade": 3}), env.token)
	require.Equal(t, http.StatusCreated, depResp.StatusCode)
	depResp.Body.Close()

	custoResp := do(t, env.server, "GET", "/v1/produtos/"+conjunto+"/custo?fresh=1", nil, env.token)
	require.Equal(t, http.StatusOK, custoResp.StatusCode)
	var custo struct {
		CustoTotal     decimal.Decimal `json:"custo_total"`
		CustoMateriais decimal.Decimal `json:"custo_materiais"`
	}
	decodeJSON(t, custoResp, &custo)
	assert.Equal(t, "30.00", custo.CustoTotal.StringFixed(2))
	assert.Equal(t, "30.00", custo.CustoMateriais.StringFixed(2))

	// chapa -> conjunto fecharia um ciclo
	cicloResp := do(t, env.server, "POST", "/v1/produtos/"+chapa+"/dependencias",
		jsonBody(t, map[string]any{"produto_filho_id": conjunto, "quantidade": 1}), env.token)
	assert.Equal(t, http.StatusConflict, cicloResp.StatusCode)
	cicloResp.Body.Close()
}

// Cliente lifecycle: aberto → confirmado is allowed, any move out of a
// terminal status is rejected.
func TestE2E_ClienteCicloDeVida(t *testing.T) {
	env := setupTestEnv(t)
	clienteID := env.criarCliente(t, "Oficina Norte")

	confResp := do(t, env.server, "POST", "/v1/clientes/"+clienteID+"/confirmar", nil, env.token)
	require.Equal(t, http.StatusOK, confResp.StatusCode)
	confResp.Body.Close()

	cancResp := do(t, env.server, "POST", "/v1/clientes/"+clienteID+"/cancelar", nil, env.token)
	assert.Equal(t, http.StatusConflict, cancResp.StatusCode)
	cancResp.Body.Close()
}

// Order state machine: pendente cannot jump straight to finalizado, and a
// non-pendente order rejects quote-input mutations.
func TestE2E_PedidoMaquinaDeEstados(t *testing.T) {
	env := setupTestEnv(t)
	clienteID := env.criarCliente(t, "Cliente Pedido")

	pedidoResp := do(t, env.server, "POST", "/v1/pedidos",
		jsonBody(t, map[string]any{"cliente_id": clienteID, "quantidade": 1}), env.token)
	require.Equal(t, http.StatusCreated, pedidoResp.StatusCode)
	var pedido struct {
		ID string `json:"id"`
	}
	decodeJSON(t, pedidoResp, &pedido)

	saltoResp := do(t, env.server, "PATCH", "/v1/pedidos/"+pedido.ID+"/status",
		jsonBody(t, map[string]any{"status": "finalizado"}), env.token)
	assert.Equal(t, http.StatusConflict, saltoResp.StatusCode)
	saltoResp.Body.Close()

	okResp := do(t, env.server, "PATCH", "/v1/pedidos/"+pedido.ID+"/status",
		jsonBody(t, map[string]any{"status": "em_producao"}), env.token)
	require.Equal(t, http.StatusOK, okResp.StatusCode)
	okResp.Body.Close()

	congeladoResp := do(t, env.server, "POST", "/v1/pedidos/"+pedido.ID+"/impostos",
		jsonBody(t, map[string]any{"tipo": "ISS", "percentual": 5}), env.token)
	assert.Equal(t, http.StatusConflict, congeladoResp.StatusCode)
	congeladoResp.Body.Close()
}
