package terminal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/mt5bridge/internal/bridge/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{GatewayAddr: server.URL, RequestTimeout: 5 * time.Second})
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestSendAccepted(t *testing.T) {
	var received orderRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/order", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		writeJSON(t, w, http.StatusOK, orderResultPayload{
			Retcode: RetcodeDone,
			Order:   1001,
			Deal:    2001,
			Price:   1.1002,
			Volume:  0.1,
		})
	}))

	result, err := client.Send(context.Background(), &domain.TradeSubmission{
		Symbol:    "EURUSD",
		Side:      domain.OrderSideBuy,
		Volume:    decimal.NewFromFloat(0.1),
		Price:     decimal.NewFromFloat(1.1002),
		Deviation: 20,
		Magic:     12345,
		FillMode:  domain.FillModeIOC,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Done)
	assert.Equal(t, RetcodeDone, result.Retcode)
	assert.Equal(t, int64(1001), result.Order)

	assert.Equal(t, "EURUSD", received.Symbol)
	assert.Equal(t, "BUY", received.Type)
	assert.Equal(t, "IOC", received.Filling)
	assert.Equal(t, "GTC", received.TimeType)
	assert.Equal(t, 20, received.Deviation)
	assert.Equal(t, int64(12345), received.Magic)
	assert.Equal(t, int64(0), received.Position)
}

func TestSendRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, orderResultPayload{
			Retcode: 10030,
			Comment: "Unsupported filling mode",
		})
	}))

	result, err := client.Send(context.Background(), &domain.TradeSubmission{
		Symbol:   "EURUSD",
		Side:     domain.OrderSideBuy,
		Volume:   decimal.NewFromFloat(0.1),
		FillMode: domain.FillModeReturn,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.False(t, result.Done)
	assert.Equal(t, 10030, result.Retcode)
	assert.Equal(t, "Unsupported filling mode", result.Comment)
}

func TestSendParsesResponseWithoutContentType(t *testing.T) {
	// 网关应答缺失 Content-Type 时仍按 JSON 解析，
	// 不得把已成交的应答退化成零值结果
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := json.Marshal(orderResultPayload{
			Retcode: RetcodeDone,
			Order:   1001,
			Deal:    2001,
			Price:   1.1002,
			Volume:  0.1,
		})
		require.NoError(t, err)
		w.Write(body)
	}))

	result, err := client.Send(context.Background(), &domain.TradeSubmission{
		Symbol:   "EURUSD",
		Side:     domain.OrderSideBuy,
		Volume:   decimal.NewFromFloat(0.1),
		FillMode: domain.FillModeReturn,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Done)
	assert.Equal(t, RetcodeDone, result.Retcode)
	assert.Equal(t, int64(1001), result.Order)
}

func TestTickParsesResponseWithoutContentType(t *testing.T) {
	// 报价路径同样不得因缺失 Content-Type 产生零价报价
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := json.Marshal(tickPayload{Symbol: "EURUSD", Bid: 1.1000, Ask: 1.1002})
		require.NoError(t, err)
		w.Write(body)
	}))

	quote, err := client.Tick(context.Background(), "EURUSD")
	require.NoError(t, err)

	assert.True(t, quote.Bid.Equal(decimal.NewFromFloat(1.1000)))
	assert.True(t, quote.Ask.Equal(decimal.NewFromFloat(1.1002)))
}

func TestSendNoResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	result, err := client.Send(context.Background(), &domain.TradeSubmission{
		Symbol:   "EURUSD",
		Side:     domain.OrderSideBuy,
		Volume:   decimal.NewFromFloat(0.1),
		FillMode: domain.FillModeReturn,
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestSendTransportErrorMapsToNotConnected(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := NewClient(Config{GatewayAddr: server.URL, RequestTimeout: time.Second})

	_, err := client.Send(context.Background(), &domain.TradeSubmission{
		Symbol:   "EURUSD",
		Side:     domain.OrderSideBuy,
		Volume:   decimal.NewFromFloat(0.1),
		FillMode: domain.FillModeReturn,
	})
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestTick(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tick", r.URL.Path)
		require.Equal(t, "EURUSD", r.URL.Query().Get("symbol"))
		writeJSON(t, w, http.StatusOK, tickPayload{
			Symbol: "EURUSD",
			Bid:    1.1000,
			Ask:    1.1002,
			Time:   1700000000,
			Volume: 10,
		})
	}))

	quote, err := client.Tick(context.Background(), "EURUSD")
	require.NoError(t, err)

	assert.Equal(t, "EURUSD", quote.Symbol)
	assert.True(t, quote.Bid.Equal(decimal.NewFromFloat(1.1000)))
	assert.True(t, quote.Ask.Equal(decimal.NewFromFloat(1.1002)))
	assert.Equal(t, time.Unix(1700000000, 0), quote.Time)
}

func TestTickUnknownSymbol(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, errorPayload{Error: "unknown symbol"})
	}))

	_, err := client.Tick(context.Background(), "XXXYYY")
	assert.ErrorIs(t, err, domain.ErrQuoteUnavailable)
}

func TestPositionNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.Position(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrPositionNotFound)
}

func TestConnected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ping", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	assert.True(t, client.Connected(context.Background()))

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	offline := NewClient(Config{GatewayAddr: down.URL, RequestTimeout: time.Second})
	assert.False(t, offline.Connected(context.Background()))
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login", r.URL.Path)
		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, int64(123456), req.Login)
		writeJSON(t, w, http.StatusOK, accountPayload{
			Login:        req.Login,
			Server:       req.Server,
			Currency:     "USD",
			Balance:      10000,
			TradeAllowed: true,
		})
	}))

	account, err := client.Login(context.Background(), 123456, "secret", "Demo-Server")
	require.NoError(t, err)

	assert.Equal(t, int64(123456), account.Login)
	assert.Equal(t, "Demo-Server", account.Server)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(10000)))
}
