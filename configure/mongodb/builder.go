package mongodb

import (
	"fmt"
	"sync"

	"github.com/gocrud/container"
	"github.com/gocrud/container/logging"
	"github.com/gocrud/mgo"
)

// FactoryToken MongoDB 客户端工厂令牌
var FactoryToken = container.NewToken[*Factory]().As("mongodb.factory")

// Client 默认 MongoDB 客户端令牌
var Client = Token("default")

var tokens = struct {
	mu sync.Mutex
	m  map[string]*container.Token[*mgo.Client]
}{m: make(map[string]*container.Token[*mgo.Client])}

// Token 返回指定名称 MongoDB 客户端的令牌
func Token(name string) *container.Token[*mgo.Client] {
	tokens.mu.Lock()
	defer tokens.mu.Unlock()

	if tok, ok := tokens.m[name]; ok {
		return tok
	}
	tok := container.NewToken[*mgo.Client]().As("mongodb." + name)
	tokens.m[name] = tok
	return tok
}

// Builder MongoDB 配置构建器
type Builder struct {
	configs []Options
	errs    []error
}

// NewBuilder 创建构建器
func NewBuilder() *Builder {
	return &Builder{
		configs: make([]Options, 0),
	}
}

// Add 添加 MongoDB 客户端配置
func (b *Builder) Add(name string, uri string, configure func(*Options)) *Builder {
	opts := NewDefaultOptions(name, uri)
	if configure != nil {
		configure(opts)
	}

	if err := opts.Validate(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("invalid mongo configuration for '%s': %w", name, err))
		return b
	}

	b.configs = append(b.configs, *opts)
	return b
}

// Apply 将所有 MongoDB 客户端作为单例工厂注册到容器构建器。
// 客户端在令牌首次被解析时才真正创建。
func (b *Builder) Apply(cb *container.Builder, logger logging.Logger) (*container.Builder, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("mongo configuration errors: %v", b.errs)
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
			return nil, fmt.Errorf("mongo client '%s' already configured", opts.Name)
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

		logger.Info("Mongo client registered",
			logging.Field{Key: "name", Value: opts.Name},
			logging.Field{Key: "uri", Value: opts.Uri})
	}

	return cb, nil
}
