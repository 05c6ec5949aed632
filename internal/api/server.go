package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Server 是对外的 HTTP 服务：定时任务触发入口 + 公开查询接口
type Server struct {
	handler *Handler
	server  *http.Server
	port    int
}

func NewServer(handler *Handler, port int) *Server {
	return &Server{
		handler: handler,
		port:    port,
	}
}

// Start 启动 HTTP 服务，阻塞到服务退出
func (s *Server) Start() error {
	mux := http.NewServeMux()
	s.handler.RegisterRoutes(mux)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 12 * time.Minute, // 分析周期是串行限速的，触发接口要等它跑完
		IdleTimeout:  60 * time.Second,
	}

	fmt.Printf("🚀 HTTP 服务启动，监听端口 %d\n", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Stop 优雅关闭
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		fmt.Println("👋 正在关闭 HTTP 服务...")
		return s.server.Shutdown(ctx)
	}
	return nil
}
