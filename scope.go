package container

import "sync"

// Scope 是叠加在容器之上的短生命周期解析上下文。
//
// 作用域的行为与外层容器完全一致，除了注册为 ScopeScoped 的 Token：
// 它们在同一个作用域内至多解析一次，首次解析写入作用域缓存，
// 之后的解析（包括作为其他工厂的传递依赖被解析时）返回同一实例。
// 不同的作用域之间缓存互相独立。
type Scope struct {
	container *Container

	mu    sync.Mutex
	cache map[AnyToken]any
}

// Resolve 在本作用域内解析 tok。
func (s *Scope) Resolve(tok AnyToken) (any, error) {
	return s.container.resolve(tok, s, nil)
}

// ResolveArray 按顺序独立解析每个 Token，首个失败立即中止。
func (s *Scope) ResolveArray(toks []AnyToken) ([]any, error) {
	return resolveArray(s, toks)
}

// Container 返回作用域所属的容器。
func (s *Scope) Container() *Container {
	return s.container
}

// Dispose 清空作用域缓存，帮助 GC 回收 scoped 实例。
// 作用域随回调结束整体丢弃时通常不需要显式调用。
func (s *Scope) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok := range s.cache {
		delete(s.cache, tok)
	}
}

func (s *Scope) get(tok AnyToken) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache[tok]
	return v, ok
}

// loadOrStore 写入 tok 的实例，已有实例时返回已缓存的那个。
// 并发的首次解析可能重复构造，但同一作用域内所有调用方
// 最终观察到同一个实例（先写生效）。
func (s *Scope) loadOrStore(tok AnyToken, v any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[tok]; ok {
		return cached
	}
	s.cache[tok] = v
	return v
}
