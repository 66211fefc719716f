package application

import (
	"context"

	"github.com/wyfcoding/mt5bridge/internal/bridge/domain"
	"github.com/wyfcoding/mt5bridge/pkg/logger"
)

// BridgeService 桥接服务门面
// 聚合执行与查询两类服务，并负责终端登录
type BridgeService struct {
	Executor *ExecutorService
	Query    *QueryService

	session domain.Session
}

// NewBridgeService 创建桥接服务门面
func NewBridgeService(session domain.Session, executor *ExecutorService, query *QueryService) *BridgeService {
	return &BridgeService{
		Executor: executor,
		Query:    query,
		session:  session,
	}
}

// Connect 使用凭据登录交易服务器
func (s *BridgeService) Connect(ctx context.Context, login int64, password, server string) (*AccountDTO, error) {
	account, err := s.session.Login(ctx, login, password, server)
	if err != nil {
		logger.Error(ctx, "Terminal login failed", "login", login, "server", server, "error", err)
		return nil, err
	}
	logger.Info(ctx, "Terminal login succeeded",
		"login", account.Login,
		"server", account.Server,
		"currency", account.Currency,
	)
	return NewAccountDTO(account), nil
}
