package container

import (
	"fmt"
	"strings"
	"sync"
)

// Resolver 是 Container 与 Scope 的公共解析接口。
type Resolver interface {
	// Resolve 解析 tok 对应的值
	Resolve(tok AnyToken) (any, error)
	// ResolveArray 按顺序独立解析每个 Token，首个失败立即中止
	ResolveArray(toks []AnyToken) ([]any, error)
}

// Container 是绑定到一个 State 快照的只读解析器。
//
// 容器自身唯一的可变数据是单例缓存：并发的首次解析允许重复构造，
// 最后一次写入生效（只保证缓存收敛，不保证恰好构造一次）。
// 状态本身不可变，因此多个容器可以跨 goroutine 并发使用。
type Container struct {
	state *State

	mu         sync.RWMutex
	singletons map[AnyToken]any
}

func newContainer(s *State) *Container {
	return &Container{
		state:      s,
		singletons: make(map[AnyToken]any),
	}
}

// Resolve 解析 tok 对应的值。
//
//   - 普通值原样返回，不做任何拷贝
//   - 工厂先按声明顺序递归解析其依赖，再调用工厂函数
//   - 自引用 Token 返回容器本身
//   - Token 没有条目时返回 ErrTokenNotFound，错误信息包含 Token 的 key
//   - 依赖链回环时返回 ErrCircularDependency
func (c *Container) Resolve(tok AnyToken) (any, error) {
	return c.resolve(tok, nil, nil)
}

// ResolveArray 按顺序独立解析每个 Token，返回等长的结果序列。
// 没有事务语义：第 i 个 Token 解析失败时直接返回错误，之后的 Token 不再解析。
func (c *Container) ResolveArray(toks []AnyToken) ([]any, error) {
	return resolveArray(c, toks)
}

// FindImplementationTokens 返回注册时声明了 Implements 包含 base 的 Token，
// 按注册顺序排列。
//
// 提供 generics 时做超集过滤：候选 Token 的 Generics 必须包含每一个
// 给定的泛型 Token 才会保留。没有实现方时返回空序列，不报错。
func (c *Container) FindImplementationTokens(base AnyToken, generics ...AnyToken) []AnyToken {
	impls := c.state.implementations[base]
	if len(generics) == 0 {
		out := make([]AnyToken, len(impls))
		copy(out, impls)
		return out
	}

	out := make([]AnyToken, 0, len(impls))
	for _, impl := range impls {
		matched := true
		for _, generic := range generics {
			if !c.state.referencesGeneric(impl, generic) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, impl)
		}
	}
	return out
}

// State 返回容器绑定的状态快照。
// 快照可以传给其他 Builder 的 Merge，或存入 Manager。
func (c *Container) State() *State {
	return c.state
}

// CreateScope 创建一个带独立缓存的新作用域。
// 每次调用产生的作用域互不共享 scoped 实例。
func (c *Container) CreateScope() *Scope {
	return &Scope{
		container: c,
		cache:     make(map[AnyToken]any),
	}
}

// RunScope 在一个新的作用域中执行 fn，并原样返回 fn 的结果。
// fn 内部可以自行等待异步工作；作用域的生命周期就是这次调用。
//
//	err := c.RunScope(func(s *container.Scope) error {
//	    svc, err := container.Resolve(s, RequestServiceToken)
//	    ...
//	})
func (c *Container) RunScope(fn func(*Scope) error) error {
	return fn(c.CreateScope())
}

// resolve 是核心递归。sc 非空时应用 scoped 缓存策略；
// path 跟踪当前解析链上的工厂 Token，用于循环依赖检测。
func (c *Container) resolve(tok AnyToken, sc *Scope, path []AnyToken) (any, error) {
	if tok == nil {
		return nil, fmt.Errorf("container: cannot resolve a nil token: %w", ErrTokenNotFound)
	}

	// 自引用 Token 优先于一般查找
	if isSelf(tok) {
		return c, nil
	}

	e, ok := c.state.entries[tok]
	if !ok {
		return nil, fmt.Errorf("container: token %q not found: %w", tok.Key(), ErrTokenNotFound)
	}

	if !e.isFactory() {
		return e.value, nil
	}
	desc := e.factory

	for _, seen := range path {
		if seen == tok {
			return nil, fmt.Errorf("container: %s: %w", formatCycle(append(path, tok)), ErrCircularDependency)
		}
	}

	switch desc.Scope {
	case ScopeSingleton:
		c.mu.RLock()
		cached, hit := c.singletons[tok]
		c.mu.RUnlock()
		if hit {
			return cached, nil
		}

		instance, err := c.invoke(desc, sc, append(path, tok))
		if err != nil {
			return nil, err
		}

		// 并发首次解析可能构造多次，后写覆盖即可
		c.mu.Lock()
		c.singletons[tok] = instance
		c.mu.Unlock()
		return instance, nil

	case ScopeScoped:
		if sc == nil {
			// 没有活动作用域，按 transient 处理
			return c.invoke(desc, nil, append(path, tok))
		}
		if cached, hit := sc.get(tok); hit {
			return cached, nil
		}

		instance, err := c.invoke(desc, sc, append(path, tok))
		if err != nil {
			return nil, err
		}
		return sc.loadOrStore(tok, instance), nil

	default:
		return c.invoke(desc, sc, append(path, tok))
	}
}

// invoke 按声明顺序解析依赖并调用工厂函数。
func (c *Container) invoke(desc *FactoryDescriptor, sc *Scope, path []AnyToken) (any, error) {
	deps := make([]any, len(desc.Dependencies))
	for i, depTok := range desc.Dependencies {
		v, err := c.resolve(depTok, sc, path)
		if err != nil {
			return nil, fmt.Errorf("container: dependency %q: %w", tokenLabel(depTok), err)
		}
		deps[i] = v
	}
	return desc.Factory(deps...)
}

// resolveArray 是 Container/Scope 共享的 ResolveArray 实现。
func resolveArray(r Resolver, toks []AnyToken) ([]any, error) {
	out := make([]any, 0, len(toks))
	for _, tok := range toks {
		v, err := r.Resolve(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// formatCycle 把解析路径渲染成 a -> b -> a 的形式。
func formatCycle(path []AnyToken) string {
	keys := make([]string, len(path))
	for i, tok := range path {
		keys[i] = tok.Key()
	}
	return "cycle " + strings.Join(keys, " -> ")
}

// Resolve 以类型安全的方式从 r 解析 tok。
//
//	repo, err := container.Resolve(c, RepoToken)
func Resolve[T any](r Resolver, tok *Token[T]) (T, error) {
	var zero T
	v, err := r.Resolve(tok)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: token %q resolved to %T, expected %T", tok.Key(), v, zero)
	}
	return typed, nil
}

// MustResolve 与 Resolve 相同，失败时 panic。
func MustResolve[T any](r Resolver, tok *Token[T]) T {
	v, err := Resolve(r, tok)
	if err != nil {
		panic(err)
	}
	return v
}
