// Package container 提供一个基于 Token 的依赖注入容器。
// 注册阶段通过不可变的 Builder 累积状态，最终固化为只读的 Container，
// 解析阶段按声明的依赖 Token 递归解析工厂，并应用
// transient / singleton / scoped 三种生命周期策略。
//
// Example:
//
//	var RepoToken = container.NewToken[*UserRepo]().As("user.repo")
//
//	func main() {
//	    b, _ := container.NewBuilder().Register(RepoToken, NewUserRepo())
//	    c := b.Result()
//	    repo, _ := container.Resolve(c, RepoToken)
//	    // Use repo...
//	}
package container

import "fmt"

// Metadata 描述 Token 的实现关系元数据。
//
// Implements 声明在该 Token 下注册的值实现了哪些接口 Token，
// Generics 声明该实现所使用的泛型参数 Token。
// 两者共同支撑 Container.FindImplementationTokens 的按能力查找。
type Metadata struct {
	Implements []AnyToken
	Generics   []AnyToken
}

// AnyToken 是所有 Token[T] 的公共视图，用于在容器状态中异构存储。
//
// Token 按标识比较：两次 As 调用返回的 Token 永远是不同的槽位，
// 即使 key 字符串相同。key 仅用于诊断信息和日志。
type AnyToken interface {
	// Key 返回 Token 的诊断名称
	Key() string
	// Metadata 返回 Token 的元数据，没有则为 nil
	Metadata() *Metadata

	fmt.Stringer

	// sealed 防止包外类型实现 AnyToken，保证标识语义
	sealed()
}

// Token 表示一个注册槽位的不透明唯一标识符。
//
// 类型参数 T 是幻影类型，只被泛型辅助函数 Resolve[T] / MustResolve[T]
// 用来做类型安全的断言，运行时不参与比较。
//
// 使用场景：
//   - 需要注册多个相同类型但用途不同的依赖（如多个数据库连接）
//   - 配置值（如字符串、整数等基本类型）
//
// 示例：
//
//	var DBConnectionString = container.NewToken[string]().As("db-connection")
//	var CacheConnectionString = container.NewToken[string]().As("cache-connection")
type Token[T any] struct {
	key  string
	meta *Metadata
}

// TokenBuilder 通过 As 完成 Token 的创建。
type TokenBuilder[T any] struct{}

// NewToken 开始创建一个携带类型 T 的 Token。
//
// 返回的 TokenBuilder 通过 As(key, metadata?) 完成创建。
// 每次 As 调用都产生一个全新的 Token，不做任何按 key 的驻留。
func NewToken[T any]() TokenBuilder[T] {
	return TokenBuilder[T]{}
}

// As 以给定的诊断 key（和可选的元数据）完成 Token 创建。
func (TokenBuilder[T]) As(key string, meta ...Metadata) *Token[T] {
	t := &Token[T]{key: key}
	if len(meta) > 0 {
		m := meta[0]
		t.meta = &m
	}
	return t
}

// Key 返回 Token 的诊断名称
func (t *Token[T]) Key() string { return t.key }

// Metadata 返回 Token 的元数据，没有则为 nil
func (t *Token[T]) Metadata() *Metadata { return t.meta }

// String 返回 Token 的字符串表示
func (t *Token[T]) String() string {
	return fmt.Sprintf("Token(%s)", t.key)
}

func (t *Token[T]) sealed() {}

// Self 是预定义的自引用 Token。
//
// 解析 Self 返回容器本身，工厂可以把 Self 声明为依赖，
// 在运行期做动态/条件解析。禁止在 Self 下注册任何值或工厂，
// 所有注册入口都会返回 ErrReservedToken。
var Self = NewToken[*Container]().As("container.self")

// isSelf 按标识判断 tok 是否为自引用 Token。
func isSelf(tok AnyToken) bool {
	return tok == AnyToken(Self)
}

// tokenLabel 返回 tok 的诊断名称，容忍 nil。
func tokenLabel(tok AnyToken) string {
	if tok == nil {
		return "<nil>"
	}
	return tok.Key()
}
