// Package grpc 提供桥接服务的 gRPC 健康检查接口
package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/wyfcoding/mt5bridge/internal/bridge/application"
)

// HealthServer 健康检查服务
// serving 状态跟随终端连接巡检结果，供负载均衡与编排系统探活
type HealthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	monitor *application.ConnectionMonitor
}

// NewHealthServer 创建健康检查服务
func NewHealthServer(monitor *application.ConnectionMonitor) *HealthServer {
	return &HealthServer{monitor: monitor}
}

// Check 单次健康检查
func (s *HealthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	return &grpc_health_v1.HealthCheckResponse{Status: s.servingStatus()}, nil
}

// Watch 流式健康检查，仅返回当前状态
func (s *HealthServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	if err := stream.Send(&grpc_health_v1.HealthCheckResponse{Status: s.servingStatus()}); err != nil {
		return status.Errorf(codes.Unavailable, "send health status: %v", err)
	}
	<-stream.Context().Done()
	return nil
}

func (s *HealthServer) servingStatus() grpc_health_v1.HealthCheckResponse_ServingStatus {
	if s.monitor != nil && s.monitor.Connected() {
		return grpc_health_v1.HealthCheckResponse_SERVING
	}
	return grpc_health_v1.HealthCheckResponse_NOT_SERVING
}
