package cron

import (
	"context"
	"fmt"
	"sync"

	"github.com/gocrud/container"
	"github.com/gocrud/container/logging"
	"github.com/robfig/cron/v3"
)

// Service Cron 定时任务服务。
// 每个任务触发时在独立的容器作用域内执行，
// 作用域内解析的依赖在单次执行内共享，跨执行隔离。
type Service struct {
	cron      *cron.Cron
	container *container.Container
	logger    logging.Logger
	mu        sync.RWMutex
	jobs      map[string]cron.EntryID // 任务名称到任务ID的映射
}

// addJob 添加简单任务
func (s *Service) addJob(spec, name string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(spec, func() {
		s.logger.Debug(fmt.Sprintf("Cron job '%s' started", name))
		defer s.logger.Debug(fmt.Sprintf("Cron job '%s' completed", name))
		job()
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job '%s': %w", name, err)
	}

	s.jobs[name] = entryID
	s.logger.Info(fmt.Sprintf("Cron job '%s' registered with spec '%s'", name, spec))
	return nil
}

// addScopedJob 添加作用域任务，每次触发创建新的容器作用域
func (s *Service) addScopedJob(spec, name string, handler func(*container.Scope) error) error {
	return s.addJob(spec, name, func() {
		if err := s.container.RunScope(func(sc *container.Scope) error {
			return handler(sc)
		}); err != nil {
			s.logger.Error(fmt.Sprintf("Cron job '%s' failed", name),
				logging.Field{Key: "error", Value: err.Error()})
		}
	})
}

// RemoveJob 移除定时任务
func (s *Service) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		s.logger.Info(fmt.Sprintf("Cron job '%s' removed", name))
	}
}

// JobNames 返回所有已注册任务的名称
func (s *Service) JobNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// Start 启动调度器
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info(fmt.Sprintf("Cron service starting with %d jobs", len(s.jobs)))
	s.cron.Start()
	return nil
}

// Stop 停止调度器，等待进行中的任务完成
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Cron service stopping")
	stopCtx := s.cron.Stop()

	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger 适配 cron.Logger 接口
type cronLogger struct {
	logger logging.Logger
}

func newCronLogger(logger logging.Logger) *cronLogger {
	return &cronLogger{logger: logger}
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, toFields(keysAndValues)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	fields := append([]logging.Field{{Key: "error", Value: err.Error()}}, toFields(keysAndValues)...)
	l.logger.Error(msg, fields...)
}

func toFields(keysAndValues []any) []logging.Field {
	fields := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		fields = append(fields, logging.Field{Key: key, Value: keysAndValues[i+1]})
	}
	return fields
}
