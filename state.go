package container

// entry 是状态中一个槽位的内容：普通值或工厂描述符，二者取一。
type entry struct {
	value   any
	factory *FactoryDescriptor
}

func (e entry) isFactory() bool {
	return e.factory != nil
}

// State 是 Token 到注册内容的不可变映射。
//
// 所有写操作都发生在 Builder 上，并以写时复制的方式产生新的 State，
// 旧的 State 永远不会被修改。因此从同一条 Builder 链派生出的多个容器
// 可以在不同 goroutine 上无锁共享状态。
//
// 除槽位映射外，State 还维护两个派生索引：
//   - implementations: 接口 Token -> 声明实现了它的 Token 列表
//   - references:      泛型参数 Token -> 在 Generics 中引用它的 Token 列表
//
// 索引在每次写入后由槽位集合整体重建，保证索引键对应的 Token
// 一定仍然存在于槽位中，且合并时不会产生重复项。
type State struct {
	entries map[AnyToken]entry

	// order 记录注册顺序，保证索引与查询结果的确定性
	order []AnyToken

	implementations map[AnyToken][]AnyToken
	references      map[AnyToken][]AnyToken
}

func newState() *State {
	return &State{
		entries:         make(map[AnyToken]entry),
		implementations: make(map[AnyToken][]AnyToken),
		references:      make(map[AnyToken][]AnyToken),
	}
}

// Len 返回已注册槽位的数量。
func (s *State) Len() int {
	return len(s.entries)
}

// Has 报告 tok 是否已注册。
func (s *State) Has(tok AnyToken) bool {
	_, ok := s.entries[tok]
	return ok
}

// Tokens 按注册顺序返回所有 Token 的拷贝。
func (s *State) Tokens() []AnyToken {
	out := make([]AnyToken, len(s.order))
	copy(out, s.order)
	return out
}

// clone 返回槽位与顺序的浅拷贝，调用方负责随后 reindex。
func (s *State) clone() *State {
	next := &State{
		entries: make(map[AnyToken]entry, len(s.entries)+1),
		order:   make([]AnyToken, len(s.order), len(s.order)+1),
	}
	for tok, e := range s.entries {
		next.entries[tok] = e
	}
	copy(next.order, s.order)
	return next
}

// with 返回写入一个槽位之后的新 State，接收者保持不变。
func (s *State) with(tok AnyToken, e entry) *State {
	next := s.clone()
	if _, exists := next.entries[tok]; !exists {
		next.order = append(next.order, tok)
	}
	next.entries[tok] = e
	next.reindex()
	return next
}

// merge 返回与 other 的右偏并集：key 冲突时 other 的条目生效。
// 索引在合并后的槽位集合上整体重建，而不是简单拼接。
func (s *State) merge(other *State) *State {
	next := &State{
		entries: make(map[AnyToken]entry, len(s.entries)+len(other.entries)),
	}
	for tok, e := range s.entries {
		next.entries[tok] = e
	}
	next.order = append(next.order, s.order...)
	for _, tok := range other.order {
		if _, exists := next.entries[tok]; !exists {
			next.order = append(next.order, tok)
		}
		next.entries[tok] = other.entries[tok]
	}
	next.reindex()
	return next
}

// reindex 由当前槽位集合重建两个元数据索引。
func (s *State) reindex() {
	s.implementations = make(map[AnyToken][]AnyToken)
	s.references = make(map[AnyToken][]AnyToken)

	for _, tok := range s.order {
		meta := tok.Metadata()
		if meta == nil {
			continue
		}
		for _, base := range meta.Implements {
			if base == nil {
				continue
			}
			s.implementations[base] = append(s.implementations[base], tok)
		}
		for _, generic := range meta.Generics {
			if generic == nil {
				continue
			}
			s.references[generic] = append(s.references[generic], tok)
		}
	}
}

// referencesGeneric 报告 tok 是否在 Generics 中引用了 generic。
func (s *State) referencesGeneric(tok, generic AnyToken) bool {
	for _, ref := range s.references[generic] {
		if ref == tok {
			return true
		}
	}
	return false
}
