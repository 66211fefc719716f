package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/mt5bridge/internal/bridge/application"
	"github.com/wyfcoding/mt5bridge/internal/bridge/domain"
	"github.com/wyfcoding/mt5bridge/pkg/metrics"
)

// stubSession 固定行情与结果的终端会话桩
type stubSession struct {
	connected bool
	quote     *domain.Quote
	account   *domain.Account
	positions []*domain.Position
	results   []*domain.TradeResult
}

func (s *stubSession) Login(ctx context.Context, login int64, password, server string) (*domain.Account, error) {
	return s.account, nil
}

func (s *stubSession) Account(ctx context.Context) (*domain.Account, error) {
	return s.account, nil
}

func (s *stubSession) Tick(ctx context.Context, symbol string) (*domain.Quote, error) {
	if s.quote == nil || s.quote.Symbol != symbol {
		return nil, domain.ErrQuoteUnavailable
	}
	return s.quote, nil
}

func (s *stubSession) SymbolInfo(ctx context.Context, symbol string) (*domain.SymbolInfo, error) {
	return &domain.SymbolInfo{Name: symbol, Tradable: true}, nil
}

func (s *stubSession) Symbols(ctx context.Context) ([]*domain.SymbolInfo, error) {
	return []*domain.SymbolInfo{
		{Name: "EURUSD", Visible: true},
		{Name: "GBPUSD", Visible: true},
		{Name: "HIDDEN", Visible: false},
	}, nil
}

func (s *stubSession) Rates(ctx context.Context, symbol string, timeframe domain.Timeframe, count int) ([]*domain.Candle, error) {
	return []*domain.Candle{
		{Time: time.Unix(1700000000, 0), Open: decimal.NewFromFloat(1.1), Close: decimal.NewFromFloat(1.2)},
	}, nil
}

func (s *stubSession) Send(ctx context.Context, submission *domain.TradeSubmission) (*domain.TradeResult, error) {
	if len(s.results) == 0 {
		return nil, nil
	}
	result := s.results[0]
	s.results = s.results[1:]
	return result, nil
}

func (s *stubSession) Positions(ctx context.Context) ([]*domain.Position, error) {
	return s.positions, nil
}

func (s *stubSession) Position(ctx context.Context, ticket int64) (*domain.Position, error) {
	for _, pos := range s.positions {
		if pos.Ticket == ticket {
			return pos, nil
		}
	}
	return nil, domain.ErrPositionNotFound
}

func (s *stubSession) Connected(ctx context.Context) bool { return s.connected }

func (s *stubSession) Shutdown(ctx context.Context) error { return nil }

type stubRepo struct{}

func (r *stubRepo) Save(ctx context.Context, record *domain.TradeRecord) error { return nil }

func (r *stubRepo) ListBySymbol(ctx context.Context, symbol string, limit, offset int) ([]*domain.TradeRecord, int64, error) {
	return nil, 0, nil
}

func newTestRouter(session *stubSession) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := metrics.New("test")

	executor := application.NewExecutorService(session, &stubRepo{}, nil, m, application.ExecutorConfig{
		Deviation: 20,
		Magic:     12345,
		Comment:   "bridge",
	})
	query := application.NewQueryService(session, &stubRepo{}, nil, nil, m, 100)
	service := application.NewBridgeService(session, executor, query)

	router := gin.New()
	NewBridgeHandler(service).RegisterRoutes(router)
	return router
}

func connectedSession() *stubSession {
	return &stubSession{
		connected: true,
		quote: &domain.Quote{
			Symbol: "EURUSD",
			Bid:    decimal.NewFromFloat(1.1000),
			Ask:    decimal.NewFromFloat(1.1002),
			Time:   time.Now(),
		},
		account: &domain.Account{
			Login:        123456,
			Server:       "Demo-Server",
			Currency:     "USD",
			Balance:      decimal.NewFromInt(10000),
			Equity:       decimal.NewFromInt(10000),
			TradeAllowed: true,
		},
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestExecuteAccepted(t *testing.T) {
	session := connectedSession()
	session.results = []*domain.TradeResult{{
		Done:    true,
		Retcode: 10009,
		Order:   1001,
		Deal:    2001,
		Price:   decimal.NewFromFloat(1.1002),
		Volume:  decimal.NewFromFloat(0.1),
	}}
	router := newTestRouter(session)

	w := doJSON(t, router, http.MethodPost, "/api/v1/execute", gin.H{
		"symbol": "EURUSD",
		"side":   "BUY",
		"volume": 0.1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp application.ExecutionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1001), resp.Order)
	assert.Equal(t, "RETURN", resp.FillingModeUsed)
}

func TestExecuteAllRejectedReturnsDiagnostic(t *testing.T) {
	session := connectedSession()
	session.results = []*domain.TradeResult{
		{Done: false, Retcode: 10030, Comment: "Unsupported filling mode"},
		{Done: false, Retcode: 10030, Comment: "Unsupported filling mode"},
		{Done: false, Retcode: 10019, Comment: "Not enough money"},
	}
	router := newTestRouter(session)

	w := doJSON(t, router, http.MethodPost, "/api/v1/execute", gin.H{
		"symbol": "EURUSD",
		"side":   "BUY",
		"volume": 0.1,
	})
	// 终端拒绝不是传输错误，HTTP 层仍返回 200
	require.Equal(t, http.StatusOK, w.Code)

	var resp application.ExecutionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "Not enough money")
}

func TestExecuteValidation(t *testing.T) {
	router := newTestRouter(connectedSession())

	w := doJSON(t, router, http.MethodPost, "/api/v1/execute", gin.H{"side": "BUY", "volume": 0.1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/execute", gin.H{
		"symbol": "EURUSD",
		"side":   "HOLD",
		"volume": 0.1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteNotConnected(t *testing.T) {
	session := connectedSession()
	session.connected = false
	router := newTestRouter(session)

	w := doJSON(t, router, http.MethodPost, "/api/v1/execute", gin.H{
		"symbol": "EURUSD",
		"side":   "BUY",
		"volume": 0.1,
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestClosePositionNotFound(t *testing.T) {
	router := newTestRouter(connectedSession())

	w := doJSON(t, router, http.MethodPost, "/api/v1/close_position", gin.H{"ticket": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClosePositionAccepted(t *testing.T) {
	session := connectedSession()
	session.positions = []*domain.Position{{
		Ticket: 555,
		Symbol: "EURUSD",
		Side:   domain.OrderSideBuy,
		Volume: decimal.NewFromFloat(0.3),
	}}
	session.results = []*domain.TradeResult{{
		Done:    true,
		Retcode: 10009,
		Deal:    2002,
		Price:   decimal.NewFromFloat(1.1000),
		Volume:  decimal.NewFromFloat(0.3),
	}}
	router := newTestRouter(session)

	w := doJSON(t, router, http.MethodPost, "/api/v1/close_position", gin.H{"ticket": 555})
	require.Equal(t, http.StatusOK, w.Code)

	var resp application.ExecutionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(2002), resp.Deal)
}

func TestGetStatus(t *testing.T) {
	router := newTestRouter(connectedSession())

	w := doJSON(t, router, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Code int                    `json:"code"`
		Data application.StatusDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Connected)
	assert.Equal(t, int64(123456), envelope.Data.Login)
}

func TestGetStatusDisconnected(t *testing.T) {
	session := connectedSession()
	session.connected = false
	router := newTestRouter(session)

	w := doJSON(t, router, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data application.StatusDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Connected)
}

func TestGetQuote(t *testing.T) {
	router := newTestRouter(connectedSession())

	w := doJSON(t, router, http.MethodGet, "/api/v1/quotes/EURUSD", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data application.QuoteDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.InDelta(t, 1.1000, envelope.Data.Bid, 1e-9)
	assert.InDelta(t, 1.1002, envelope.Data.Ask, 1e-9)
}

func TestGetQuotesBatch(t *testing.T) {
	router := newTestRouter(connectedSession())

	w := doJSON(t, router, http.MethodPost, "/api/v1/quotes", gin.H{
		"symbols": []string{"EURUSD", "XAUUSD"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Quotes    map[string]application.QuoteDTO `json:"quotes"`
			Timestamp string                          `json:"timestamp"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Quotes, 2)
	assert.InDelta(t, 1.1000, envelope.Data.Quotes["EURUSD"].Bid, 1e-9)
	assert.Empty(t, envelope.Data.Quotes["EURUSD"].Error)
	// 不可用品种只标记错误，不拖垮整批
	assert.Contains(t, envelope.Data.Quotes["XAUUSD"].Error, "cannot get price")
	assert.NotEmpty(t, envelope.Data.Timestamp)
}

func TestGetQuotesBatchValidation(t *testing.T) {
	router := newTestRouter(connectedSession())

	w := doJSON(t, router, http.MethodPost, "/api/v1/quotes", gin.H{"symbols": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetQuotesBatchNotConnected(t *testing.T) {
	session := connectedSession()
	session.connected = false
	router := newTestRouter(session)

	w := doJSON(t, router, http.MethodPost, "/api/v1/quotes", gin.H{
		"symbols": []string{"EURUSD"},
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestQueryRates(t *testing.T) {
	router := newTestRouter(connectedSession())

	w := doJSON(t, router, http.MethodPost, "/api/v1/rates", gin.H{
		"symbol":    "EURUSD",
		"timeframe": "1h",
		"count":     1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data application.RatesDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "EURUSD", envelope.Data.Symbol)
	assert.Len(t, envelope.Data.Rates, 1)
}

func TestQuerySymbolInfo(t *testing.T) {
	router := newTestRouter(connectedSession())

	w := doJSON(t, router, http.MethodPost, "/api/v1/symbol_info", gin.H{"symbol": "EURUSD"})
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data application.SymbolDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "EURUSD", envelope.Data.Name)
}

func TestListSymbolsFiltersHidden(t *testing.T) {
	router := newTestRouter(connectedSession())

	w := doJSON(t, router, http.MethodGet, "/api/v1/symbols", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Symbols []string `json:"symbols"`
			Count   int      `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, []string{"EURUSD", "GBPUSD"}, envelope.Data.Symbols)
	assert.Equal(t, 2, envelope.Data.Count)
}

func TestGetRatesInvalidTimeframe(t *testing.T) {
	router := newTestRouter(connectedSession())

	w := doJSON(t, router, http.MethodGet, "/api/v1/rates/EURUSD?timeframe=2h", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPositions(t *testing.T) {
	session := connectedSession()
	session.positions = []*domain.Position{{
		Ticket: 555,
		Symbol: "EURUSD",
		Side:   domain.OrderSideBuy,
		Volume: decimal.NewFromFloat(0.3),
	}}
	router := newTestRouter(session)

	w := doJSON(t, router, http.MethodGet, "/api/v1/positions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Positions []application.PositionDTO `json:"positions"`
			Count     int                       `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, 1, envelope.Data.Count)
	assert.Equal(t, int64(555), envelope.Data.Positions[0].Ticket)
}

func TestHealthAlwaysOK(t *testing.T) {
	session := connectedSession()
	session.connected = false
	router := newTestRouter(session)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
