package container

import "fmt"

// Builder 以不可变方式累积注册。
//
// 每个写操作都返回一个绑定新 State 的全新 Builder，接收者保持不变，
// 因此一条 Builder 链上的任意中间代都可以独立 Result() 出互不影响的容器：
//
//	b1, _ := container.NewBuilder().Register(ConfigToken, cfg)
//	b2, _ := b1.Register(RepoToken, repo)
//	c1 := b1.Result() // 只看得到 ConfigToken
//	c2 := b2.Result() // 看得到两者
type Builder struct {
	state *State
}

// NewBuilder 创建一个空的构建器。
func NewBuilder() *Builder {
	return &Builder{state: newState()}
}

// FactoryRegistration 是 RegisterFactories 的单个批量条目。
type FactoryRegistration struct {
	Token      AnyToken
	Descriptor FactoryDescriptor
}

// Register 在 tok 下注册一个普通值，已存在时覆盖（后写生效）。
//
// 在 Self 下注册会返回 ErrReservedToken。
func (b *Builder) Register(tok AnyToken, value any) (*Builder, error) {
	if err := checkRegistrable(tok); err != nil {
		return b, err
	}
	return &Builder{state: b.state.with(tok, entry{value: value})}, nil
}

// RegisterStrict 与 Register 相同，但 tok 已有条目时返回 ErrAlreadyRegistered。
func (b *Builder) RegisterStrict(tok AnyToken, value any) (*Builder, error) {
	if err := checkRegistrable(tok); err != nil {
		return b, err
	}
	if b.state.Has(tok) {
		return b, fmt.Errorf("container: token %q already registered: %w", tok.Key(), ErrAlreadyRegistered)
	}
	return b.Register(tok, value)
}

// RegisterFactory 在 tok 下注册一个工厂描述符，覆盖语义与 Register 一致。
//
// 描述符必须携带非空的 Factory（Dependencies 可以为空），
// 否则返回 ErrInvalidFactory。描述符的 Scope 会随注册一起持久化，
// 解析时由容器应用对应的缓存策略。
func (b *Builder) RegisterFactory(tok AnyToken, desc FactoryDescriptor) (*Builder, error) {
	if err := checkRegistrable(tok); err != nil {
		return b, err
	}
	if err := desc.validate(); err != nil {
		return b, err
	}
	d := desc
	d.Dependencies = append([]AnyToken(nil), desc.Dependencies...)
	return &Builder{state: b.state.with(tok, entry{factory: &d})}, nil
}

// RegisterFactoryStrict 与 RegisterFactory 相同，但 tok 已有条目时
// 返回 ErrAlreadyRegistered。
func (b *Builder) RegisterFactoryStrict(tok AnyToken, desc FactoryDescriptor) (*Builder, error) {
	if err := checkRegistrable(tok); err != nil {
		return b, err
	}
	if b.state.Has(tok) {
		return b, fmt.Errorf("container: token %q already registered: %w", tok.Key(), ErrAlreadyRegistered)
	}
	return b.RegisterFactory(tok, desc)
}

// RegisterFactories 按数组顺序批量注册工厂。
// 同一个 Token 在一次调用内出现多次时，靠后的条目覆盖靠前的。
// 任意一条注册失败立即中止并返回该错误。
func (b *Builder) RegisterFactories(regs []FactoryRegistration) (*Builder, error) {
	next := b
	for i, reg := range regs {
		var err error
		next, err = next.RegisterFactory(reg.Token, reg.Descriptor)
		if err != nil {
			return b, fmt.Errorf("container: registration %d: %w", i, err)
		}
	}
	return next, nil
}

// Merge 返回当前状态与 other 的右偏并集构建器：
// key 冲突时 other 的条目生效，元数据索引在合并后的条目集合上重建。
func (b *Builder) Merge(other *State) *Builder {
	if other == nil || other.Len() == 0 {
		return &Builder{state: b.state}
	}
	return &Builder{state: b.state.merge(other)}
}

// Result 固化为绑定当前状态快照的只读容器。
// 之后对 Builder 的任何调用都不会影响已经固化的容器。
func (b *Builder) Result() *Container {
	return newContainer(b.state)
}

// State 返回当前状态快照。
func (b *Builder) State() *State {
	return b.state
}

// MustRegister 与 Register 相同，失败时 panic。用于程序启动期的链式注册。
func (b *Builder) MustRegister(tok AnyToken, value any) *Builder {
	next, err := b.Register(tok, value)
	if err != nil {
		panic(err)
	}
	return next
}

// MustRegisterFactory 与 RegisterFactory 相同，失败时 panic。
func (b *Builder) MustRegisterFactory(tok AnyToken, desc FactoryDescriptor) *Builder {
	next, err := b.RegisterFactory(tok, desc)
	if err != nil {
		panic(err)
	}
	return next
}

// checkRegistrable 拒绝 nil Token 和自引用 Token。
func checkRegistrable(tok AnyToken) error {
	if tok == nil {
		return fmt.Errorf("container: cannot register a nil token: %w", ErrNilToken)
	}
	if isSelf(tok) {
		return fmt.Errorf("container: token %q is reserved for the container itself: %w", tok.Key(), ErrReservedToken)
	}
	return nil
}
