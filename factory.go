package container

import (
	"fmt"
	"reflect"
)

// ScopeType 作用域类型，定义实例的生命周期
type ScopeType int

const (
	// ScopeTransient 瞬态作用域（默认）
	// 每次解析都重新运行工厂及其全部依赖解析，不缓存
	// 适用场景：命令对象、事件对象等需要独立状态的对象
	ScopeTransient ScopeType = iota

	// ScopeSingleton 单例作用域
	// 在一个 Container 的生命周期内只构造一次，后续解析返回缓存实例
	// 适用场景：无状态服务、配置、客户端连接等
	ScopeSingleton

	// ScopeScoped 作用域内单例
	// 在同一个 Scope 内只构造一次，不同 Scope 之间实例相互独立
	// 适用场景：HTTP 请求级别的服务、工作单元等
	// 没有活动 Scope 时按 Transient 处理
	ScopeScoped
)

// String 返回作用域类型的字符串表示
func (s ScopeType) String() string {
	switch s {
	case ScopeTransient:
		return "transient"
	case ScopeSingleton:
		return "singleton"
	case ScopeScoped:
		return "scoped"
	default:
		return "unknown"
	}
}

// FactoryFunc 工厂函数。
// deps 与描述符中声明的依赖 Token 一一对应、顺序一致。
type FactoryFunc func(deps ...any) (any, error)

// FactoryDescriptor 把有序的依赖 Token 列表和构造函数配成一对。
//
// 示例：
//
//	desc := container.FactoryDescriptor{
//	    Dependencies: []container.AnyToken{ConfigToken},
//	    Factory: func(deps ...any) (any, error) {
//	        return NewService(deps[0].(*Config)), nil
//	    },
//	    Scope: container.ScopeSingleton,
//	}
type FactoryDescriptor struct {
	// Dependencies 依赖 Token，按工厂参数顺序排列，可以为空
	Dependencies []AnyToken

	// Factory 构造函数，解析后的依赖按声明顺序传入
	Factory FactoryFunc

	// Scope 生命周期，零值为 ScopeTransient
	Scope ScopeType
}

// validate 检查描述符是否完好。
func (d FactoryDescriptor) validate() error {
	if d.Factory == nil {
		return fmt.Errorf("container: factory descriptor has no factory function: %w", ErrInvalidFactory)
	}
	if d.Scope < ScopeTransient || d.Scope > ScopeScoped {
		return fmt.Errorf("container: unknown scope %d: %w", d.Scope, ErrInvalidFactory)
	}
	for i, dep := range d.Dependencies {
		if dep == nil {
			return fmt.Errorf("container: dependency %d is a nil token: %w", i, ErrInvalidFactory)
		}
	}
	return nil
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Construct 将构造函数适配为 FactoryFunc。
//
// ctor 可以是任意函数；解析得到的依赖按声明顺序作为位置参数传入。
// 返回值约定：第一个返回值是实例，最后一个返回值若为 error 则作为失败返回。
// 这让基于构造函数的服务可以和普通工厂统一注册：
//
//	func NewUserService(repo *UserRepo, cfg *Config) *UserService { ... }
//
//	desc := container.FactoryDescriptor{
//	    Dependencies: []container.AnyToken{RepoToken, ConfigToken},
//	    Factory:      container.Construct(NewUserService),
//	}
func Construct(ctor any) FactoryFunc {
	fn := reflect.ValueOf(ctor)

	return func(deps ...any) (any, error) {
		if fn.Kind() != reflect.Func {
			return nil, fmt.Errorf("container: constructor must be a function, got %T: %w", ctor, ErrInvalidFactory)
		}

		fnType := fn.Type()
		if !fnType.IsVariadic() && fnType.NumIn() != len(deps) {
			return nil, fmt.Errorf("container: constructor expects %d arguments, got %d resolved dependencies",
				fnType.NumIn(), len(deps))
		}

		args := make([]reflect.Value, len(deps))
		for i, dep := range deps {
			if dep == nil {
				// nil 依赖需要带上参数的静态类型才能传入 Call
				args[i] = reflect.Zero(argTypeAt(fnType, i))
				continue
			}
			args[i] = reflect.ValueOf(dep)
		}

		results := fn.Call(args)
		if len(results) == 0 {
			return nil, fmt.Errorf("container: constructor returned no values")
		}

		// 检查 error
		if len(results) > 1 {
			last := results[len(results)-1]
			if last.Type().Implements(errType) {
				if !last.IsNil() {
					return nil, fmt.Errorf("container: constructor failed: %w", last.Interface().(error))
				}
			}
		}

		return results[0].Interface(), nil
	}
}

// argTypeAt 返回函数第 i 个参数的类型，兼容变参函数。
func argTypeAt(fnType reflect.Type, i int) reflect.Type {
	if fnType.IsVariadic() && i >= fnType.NumIn()-1 {
		return fnType.In(fnType.NumIn() - 1).Elem()
	}
	return fnType.In(i)
}
