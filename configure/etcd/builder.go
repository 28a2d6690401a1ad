package etcd

import (
	"fmt"
	"sync"

	"github.com/gocrud/container"
	"github.com/gocrud/container/logging"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// FactoryToken etcd 客户端工厂令牌
var FactoryToken = container.NewToken[*Factory]().As("etcd.factory")

// Client 默认 etcd 客户端令牌
var Client = Token("default")

var tokens = struct {
	mu sync.Mutex
	m  map[string]*container.Token[*clientv3.Client]
}{m: make(map[string]*container.Token[*clientv3.Client])}

// Token 返回指定名称 etcd 客户端的令牌
func Token(name string) *container.Token[*clientv3.Client] {
	tokens.mu.Lock()
	defer tokens.mu.Unlock()

	if tok, ok := tokens.m[name]; ok {
		return tok
	}
	tok := container.NewToken[*clientv3.Client]().As("etcd." + name)
	tokens.m[name] = tok
	return tok
}

// Builder etcd 客户端配置构建器
type Builder struct {
	configs []Options
	errs    []error
}

// NewBuilder 创建 etcd 构建器
func NewBuilder() *Builder {
	return &Builder{
		configs: make([]Options, 0),
	}
}

// AddClient 添加一个 etcd 客户端配置
func (b *Builder) AddClient(name string, configure func(*Options)) *Builder {
	opts := NewDefaultOptions(name)
	if configure != nil {
		configure(opts)
	}

	if err := opts.Validate(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("invalid etcd configuration for '%s': %w", name, err))
		return b
	}

	b.configs = append(b.configs, *opts)
	return b
}

// Apply 将所有 etcd 客户端作为单例工厂注册到容器构建器
func (b *Builder) Apply(cb *container.Builder, logger logging.Logger) (*container.Builder, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("etcd configuration errors: %v", b.errs)
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
			return nil, fmt.Errorf("etcd client '%s' already configured", opts.Name)
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

		logger.Info("etcd client registered",
			logging.Field{Key: "name", Value: opts.Name},
			logging.Field{Key: "endpoints", Value: fmt.Sprintf("%v", opts.Endpoints)})
	}

	return cb, nil
}
