package database

import (
	"fmt"
	"sync"

	"github.com/gocrud/container"
	"github.com/gocrud/container/logging"
	"gorm.io/gorm"
)

// FactoryToken 数据库工厂令牌，用于统一关闭所有连接
var FactoryToken = container.NewToken[*Factory]().As("database.factory")

// DB 默认数据库实例令牌
var DB = Token("default")

var tokens = struct {
	mu sync.Mutex
	m  map[string]*container.Token[*gorm.DB]
}{m: make(map[string]*container.Token[*gorm.DB])}

// Token 返回指定名称数据库实例的令牌。
// 同名多次调用返回同一个令牌，保证解析时的身份一致。
func Token(name string) *container.Token[*gorm.DB] {
	tokens.mu.Lock()
	defer tokens.mu.Unlock()

	if tok, ok := tokens.m[name]; ok {
		return tok
	}
	tok := container.NewToken[*gorm.DB]().As("database." + name)
	tokens.m[name] = tok
	return tok
}

// Builder 数据库配置构建器
type Builder struct {
	configs []Options
	errs    []error
}

// NewBuilder 创建数据库构建器
func NewBuilder() *Builder {
	return &Builder{
		configs: make([]Options, 0),
	}
}

// Add 添加一个数据库实例配置
func (b *Builder) Add(name string, dialector gorm.Dialector, configure func(*Options)) *Builder {
	opts := NewDefaultOptions(name, dialector)
	if configure != nil {
		configure(opts)
	}

	if err := opts.Validate(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("invalid database configuration for '%s': %w", name, err))
		return b
	}

	b.configs = append(b.configs, *opts)
	return b
}

// Apply 将所有数据库实例作为单例工厂注册到容器构建器。
// 连接在令牌首次被解析时才真正打开。
func (b *Builder) Apply(cb *container.Builder, logger logging.Logger) (*container.Builder, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if len(b.configs) == 0 {
		return cb, nil
	}

	factory := NewFactory()
	cb, err := cb.Register(FactoryToken, factory)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, opts := range b.configs {
		if seen[opts.Name] {
			return nil, fmt.Errorf("database '%s' already registered", opts.Name)
		}
		seen[opts.Name] = true

		opts := opts
		cb, err = cb.RegisterFactory(Token(opts.Name), container.FactoryDescriptor{
			Scope: container.ScopeSingleton,
			Factory: func(deps ...any) (any, error) {
				return factory.open(opts)
			},
		})
		if err != nil {
			return nil, err
		}

		logger.Info("database registered",
			logging.Field{Key: "name", Value: opts.Name})
	}

	return cb, nil
}
