// Package http 提供桥接服务的 HTTP 接口
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/mt5bridge/internal/bridge/application"
	"github.com/wyfcoding/mt5bridge/internal/bridge/domain"
	"github.com/wyfcoding/mt5bridge/pkg/response"
)

// BridgeHandler 桥接服务 HTTP 处理器
type BridgeHandler struct {
	service *application.BridgeService
}

// NewBridgeHandler 创建 HTTP 处理器
func NewBridgeHandler(service *application.BridgeService) *BridgeHandler {
	return &BridgeHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *BridgeHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	api := router.Group("/api/v1")
	{
		api.GET("/status", h.GetStatus)
		api.GET("/account", h.GetAccount)
		api.POST("/connect", h.Connect)
		api.GET("/quotes/:symbol", h.GetQuote)
		api.POST("/quotes", h.GetQuotes)
		api.GET("/rates/:symbol", h.GetRates)
		api.POST("/rates", h.QueryRates)
		api.GET("/symbol_info/:symbol", h.GetSymbolInfo)
		api.POST("/symbol_info", h.QuerySymbolInfo)
		api.GET("/symbols", h.ListSymbols)
		api.POST("/execute", h.Execute)
		api.GET("/positions", h.ListPositions)
		api.POST("/close_position", h.ClosePosition)
		api.GET("/trades", h.ListTrades)
	}
}

// Health 健康检查，无论终端状态如何都返回 200
func (h *BridgeHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStatus 获取终端连接状态
func (h *BridgeHandler) GetStatus(c *gin.Context) {
	status := h.service.Query.GetStatus(c.Request.Context())
	response.Success(c, status)
}

// GetAccount 获取账户信息
func (h *BridgeHandler) GetAccount(c *gin.Context) {
	account, err := h.service.Query.GetAccount(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, account)
}

// ConnectRequest 登录请求
type ConnectRequest struct {
	Login    int64  `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
	Server   string `json:"server" binding:"required"`
}

// Connect 登录交易服务器
func (h *BridgeHandler) Connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "INVALID_PARAMS")
		return
	}

	account, err := h.service.Connect(c.Request.Context(), req.Login, req.Password, req.Server)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, account)
}

// GetQuote 获取品种报价
func (h *BridgeHandler) GetQuote(c *gin.Context) {
	quote, err := h.service.Query.GetQuote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, quote)
}

// QuotesRequest 批量报价请求
type QuotesRequest struct {
	Symbols []string `json:"symbols" binding:"required,min=1"`
}

// GetQuotes 批量获取多个品种的报价
// 不可用品种不使整批失败，对应条目携带 error 字段
func (h *BridgeHandler) GetQuotes(c *gin.Context) {
	var req QuotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "INVALID_PARAMS")
		return
	}

	quotes, err := h.service.Query.GetQuotes(c.Request.Context(), req.Symbols)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"quotes":    quotes,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// RatesRequest K 线查询请求
type RatesRequest struct {
	Symbol    string `json:"symbol" binding:"required"`
	Timeframe string `json:"timeframe"`
	Count     int    `json:"count"`
}

// QueryRates 按请求体查询历史 K 线
func (h *BridgeHandler) QueryRates(c *gin.Context) {
	var req RatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "INVALID_PARAMS")
		return
	}

	rates, err := h.service.Query.GetRates(c.Request.Context(), req.Symbol, req.Timeframe, req.Count)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, rates)
}

// SymbolInfoRequest 品种元数据查询请求
type SymbolInfoRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// QuerySymbolInfo 按请求体查询品种元数据
func (h *BridgeHandler) QuerySymbolInfo(c *gin.Context) {
	var req SymbolInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "INVALID_PARAMS")
		return
	}

	info, err := h.service.Query.GetSymbolInfo(c.Request.Context(), req.Symbol)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, info)
}

// GetRates 获取历史 K 线
// 查询参数 timeframe 缺省 5m，count 缺省 100
func (h *BridgeHandler) GetRates(c *gin.Context) {
	count, _ := strconv.Atoi(c.DefaultQuery("count", "100"))
	rates, err := h.service.Query.GetRates(c.Request.Context(), c.Param("symbol"), c.Query("timeframe"), count)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, rates)
}

// GetSymbolInfo 获取品种元数据
func (h *BridgeHandler) GetSymbolInfo(c *gin.Context) {
	info, err := h.service.Query.GetSymbolInfo(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, info)
}

// ListSymbols 获取可交易品种列表
func (h *BridgeHandler) ListSymbols(c *gin.Context) {
	symbols, err := h.service.Query.ListSymbols(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, gin.H{"symbols": symbols, "count": len(symbols)})
}

// ExecuteRequest 下单请求
type ExecuteRequest struct {
	Symbol     string  `json:"symbol" binding:"required"`
	Side       string  `json:"side" binding:"required"`
	Volume     float64 `json:"volume" binding:"required,gt=0"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
	Comment    string  `json:"comment"`
	Magic      int64   `json:"magic"`
}

// Execute 下单
// 被终端拒绝不算传输错误：返回 200 且 success=false，附最后一次诊断
func (h *BridgeHandler) Execute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, &application.ExecutionResponse{Success: false, Error: err.Error()})
		return
	}

	result, err := h.service.Executor.PlaceOrder(c.Request.Context(), application.PlaceOrderCommand{
		Symbol:     req.Symbol,
		Side:       req.Side,
		Volume:     req.Volume,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		Comment:    req.Comment,
		Magic:      req.Magic,
	})
	if err != nil {
		c.JSON(executionStatus(err), &application.ExecutionResponse{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListPositions 获取全部持仓
func (h *BridgeHandler) ListPositions(c *gin.Context) {
	positions, err := h.service.Query.ListPositions(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, gin.H{"positions": positions, "count": len(positions)})
}

// CloseRequest 平仓请求
type CloseRequest struct {
	Ticket int64 `json:"ticket" binding:"required"`
}

// ClosePosition 平仓
func (h *BridgeHandler) ClosePosition(c *gin.Context) {
	var req CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, &application.ExecutionResponse{Success: false, Error: err.Error()})
		return
	}

	result, err := h.service.Executor.ClosePosition(c.Request.Context(), req.Ticket)
	if err != nil {
		c.JSON(executionStatus(err), &application.ExecutionResponse{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListTrades 分页查询历史执行记录
func (h *BridgeHandler) ListTrades(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	records, total, err := h.service.Query.ListTrades(c.Request.Context(), c.Query("symbol"), page, pageSize)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, gin.H{"trades": records, "total": total, "page": page, "page_size": pageSize})
}

// handleError 将领域错误映射为 HTTP 状态码
func (h *BridgeHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotConnected):
		response.ErrorWithStatus(c, http.StatusServiceUnavailable, err.Error(), "NOT_CONNECTED")
	case errors.Is(err, domain.ErrSymbolRequired),
		errors.Is(err, domain.ErrInvalidSide),
		errors.Is(err, domain.ErrInvalidVolume),
		errors.Is(err, domain.ErrInvalidFillMode),
		errors.Is(err, domain.ErrInvalidTimeframe):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "INVALID_PARAMS")
	case errors.Is(err, domain.ErrPositionNotFound),
		errors.Is(err, domain.ErrSymbolUnavailable),
		errors.Is(err, domain.ErrQuoteUnavailable):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "NOT_FOUND")
	default:
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

// executionStatus 下单/平仓路径的前置错误映射
func executionStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotConnected):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrSymbolRequired),
		errors.Is(err, domain.ErrInvalidSide),
		errors.Is(err, domain.ErrInvalidVolume),
		errors.Is(err, domain.ErrInvalidFillMode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPositionNotFound),
		errors.Is(err, domain.ErrQuoteUnavailable),
		errors.Is(err, domain.ErrSymbolUnavailable):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
