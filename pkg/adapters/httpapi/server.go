// Package httpapi 通过 HTTP 暴露分析服务
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/renjie/furnace-core/pkg/adapters/ingest"
	"github.com/renjie/furnace-core/pkg/core/domain"
	"github.com/renjie/furnace-core/pkg/core/ports"
	"github.com/renjie/furnace-core/pkg/core/services"
)

// MaxUploadBytes 单次上传的最大字节数
const MaxUploadBytes = 32 << 20

// RequestIDHeader 调用方可指定 run ID
const RequestIDHeader = "X-Request-ID"

// Server gin 服务
type Server struct {
	router      *gin.Engine
	analyzer    ports.FurnaceAnalyzer
	logger      *zap.Logger
	readTimeout time.Duration
}

// ServerOption 配置选项
type ServerOption func(*Server)

// WithServerLogger 设置日志
func WithServerLogger(logger *zap.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReadTimeout 设置 HTTP 读超时
func WithReadTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

// NewServer 创建服务并注册路由
func NewServer(analyzer ports.FurnaceAnalyzer, opts ...ServerOption) *Server {
	s := &Server{
		analyzer:    analyzer,
		logger:      zap.NewNop(),
		readTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.accessLog())
	router.NoRoute(func(c *gin.Context) {
		RespondWithError(c, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})

	router.GET("/healthz", s.health)
	v1 := router.Group("/v1")
	v1.POST("/analyze", s.analyze)
	v1.POST("/columns", s.columns)

	s.router = router
	return s
}

// Handler 返回 http.Handler (测试使用)
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 监听 addr，ctx 取消时优雅关闭
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: s.readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// analyze POST /v1/analyze
// 支持 multipart 表单字段 "file"，或原始请求体 + ?format=csv|json|xlsx
func (s *Server) analyze(c *gin.Context) {
	table, source, ok := s.readTable(c)
	if !ok {
		return
	}

	runID := c.GetHeader(RequestIDHeader)
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx := domain.NewContext(c.Request.Context(), domain.RunContext{
		RunID:    runID,
		Source:   source,
		Operator: "http",
	})

	report, err := s.analyzer.Analyze(ctx, table)
	if err != nil {
		s.logger.Warn("analysis failed", zap.String("run_id", runID), zap.Error(err))
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// columns POST /v1/columns 只返回列识别结果
func (s *Server) columns(c *gin.Context) {
	table, _, ok := s.readTable(c)
	if !ok {
		return
	}
	if len(table.Columns) == 0 {
		respondDomainError(c, domain.ErrNotTabular)
		return
	}
	c.JSON(http.StatusOK, services.ResolveColumns(table.Columns))
}

func (s *Server) readTable(c *gin.Context) (*domain.Table, string, bool) {
	body, name, format, err := upload(c)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedFormat) {
			respondDomainError(c, err)
		} else {
			RespondWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		}
		return nil, "", false
	}
	defer body.Close()

	src, err := ingest.ForFormat(format, c.Query("sheet"))
	if err != nil {
		respondDomainError(c, err)
		return nil, "", false
	}
	table, result, err := src.Read(c.Request.Context(), body)
	if err != nil {
		respondDomainError(c, err)
		return nil, "", false
	}
	if result != nil && result.Failed > 0 {
		s.logger.Warn("rows failed to parse", zap.String("source", name), zap.Int("failed", result.Failed))
	}
	return table, name, true
}

// upload 返回请求体、来源名称与格式
func upload(c *gin.Context) (io.ReadCloser, string, ingest.Format, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, "", "", fmt.Errorf("missing form file: %w", err)
		}
		format := ingest.Format(c.Query("format"))
		if format == "" {
			if format, err = ingest.DetectFormat(fh.Filename); err != nil {
				return nil, "", "", err
			}
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", "", fmt.Errorf("open upload: %w", err)
		}
		return f, filepath.Base(fh.Filename), format, nil
	}

	format := ingest.Format(c.Query("format"))
	if format == "" {
		switch c.ContentType() {
		case "application/json":
			format = ingest.FormatJSON
		case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
			format = ingest.FormatXLSX
		default:
			format = ingest.FormatCSV
		}
	}
	return c.Request.Body, "request-body", format, nil
}
