package cron

import (
	"fmt"
	"time"

	"github.com/gocrud/container"
	"github.com/gocrud/container/logging"
	"github.com/robfig/cron/v3"
)

// ServiceToken Cron 服务令牌
var ServiceToken = container.NewToken[*Service]().As("cron.service")

// jobDefinition 任务定义
type jobDefinition struct {
	spec    string
	name    string
	handler func()
	scoped  func(*container.Scope) error
}

// Builder Cron 配置构建器
type Builder struct {
	enableSeconds    bool
	enableCronLogger bool
	location         string
	jobs             []jobDefinition
}

// NewBuilder 创建 Cron 构建器
func NewBuilder() *Builder {
	return &Builder{
		location: "UTC",
		jobs:     make([]jobDefinition, 0),
	}
}

// WithSeconds 启用秒级精度
func (b *Builder) WithSeconds() *Builder {
	b.enableSeconds = true
	return b
}

// WithLocation 设置时区
func (b *Builder) WithLocation(location string) *Builder {
	b.location = location
	return b
}

// EnableCronLogger 启用 cron 库的内部调度日志
func (b *Builder) EnableCronLogger() *Builder {
	b.enableCronLogger = true
	return b
}

// AddJob 添加简单任务
func (b *Builder) AddJob(spec, name string, handler func()) *Builder {
	b.jobs = append(b.jobs, jobDefinition{spec: spec, name: name, handler: handler})
	return b
}

// AddScopedJob 添加作用域任务。
// handler 每次触发收到一个新的容器作用域，
// 可以从中解析作用域生命周期的依赖。
//
// 示例：
//
//	builder.AddScopedJob("0 */5 * * * *", "sync-data", func(sc *container.Scope) error {
//	    svc, err := container.Resolve(sc, dataServiceToken)
//	    if err != nil {
//	        return err
//	    }
//	    return svc.Sync()
//	})
func (b *Builder) AddScopedJob(spec, name string, handler func(*container.Scope) error) *Builder {
	b.jobs = append(b.jobs, jobDefinition{spec: spec, name: name, scoped: handler})
	return b
}

// Apply 将 Cron 服务作为单例工厂注册到容器构建器。
// 服务依赖容器自身令牌，首次解析时创建并绑定任务。
func (b *Builder) Apply(cb *container.Builder, logger logging.Logger) (*container.Builder, error) {
	jobs := make([]jobDefinition, len(b.jobs))
	copy(jobs, b.jobs)

	enableSeconds := b.enableSeconds
	enableCronLogger := b.enableCronLogger
	location := b.location

	return cb.RegisterFactory(ServiceToken, container.FactoryDescriptor{
		Scope:        container.ScopeSingleton,
		Dependencies: []container.AnyToken{container.Self},
		Factory: func(deps ...any) (any, error) {
			c, ok := deps[0].(*container.Container)
			if !ok {
				return nil, fmt.Errorf("cron: expected container dependency, got %T", deps[0])
			}

			loc, err := time.LoadLocation(location)
			if err != nil {
				return nil, fmt.Errorf("cron: invalid location '%s': %w", location, err)
			}

			cronOpts := []cron.Option{
				cron.WithLocation(loc),
				cron.WithChain(cron.Recover(newCronLogger(logger))),
			}
			if enableCronLogger {
				cronOpts = append(cronOpts, cron.WithLogger(newCronLogger(logger)))
			}
			if enableSeconds {
				cronOpts = append(cronOpts, cron.WithSeconds())
			}

			svc := &Service{
				cron:      cron.New(cronOpts...),
				container: c,
				logger:    logger,
				jobs:      make(map[string]cron.EntryID),
			}

			for _, job := range jobs {
				var err error
				if job.scoped != nil {
					err = svc.addScopedJob(job.spec, job.name, job.scoped)
				} else {
					err = svc.addJob(job.spec, job.name, job.handler)
				}
				if err != nil {
					return nil, err
				}
			}

			return svc, nil
		},
	})
}
