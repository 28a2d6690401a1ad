package container

import "errors"

// 错误分类。所有返回的错误都带上下文信息并包装以下哨兵，
// 调用方用 errors.Is 匹配类别：
//
//	if errors.Is(err, container.ErrTokenNotFound) { ... }
var (
	// ErrTokenNotFound 解析时 Token 没有对应条目，错误信息包含 Token 的 key
	ErrTokenNotFound = errors.New("token not found")

	// ErrNilToken 注册入口收到 nil Token
	ErrNilToken = errors.New("nil token")

	// ErrAlreadyRegistered 严格注册时 Token 已有条目
	ErrAlreadyRegistered = errors.New("token already registered")

	// ErrReservedToken 试图在自引用 Token 下注册
	ErrReservedToken = errors.New("reserved token")

	// ErrInvalidFactory 工厂注册的描述符不完好（缺少工厂函数等）
	ErrInvalidFactory = errors.New("invalid factory descriptor")

	// ErrCircularDependency 工厂依赖链回环。
	// Go 的栈溢出不可恢复，所以用显式的解析路径检测替代自然递归失败，
	// 对外仍然保持"解析报错"的契约
	ErrCircularDependency = errors.New("circular dependency")

	// ErrContainerKeyConflict Manager 中注册了重复的容器 key
	ErrContainerKeyConflict = errors.New("container key already registered")

	// ErrContainerKeyNotFound Manager 中获取或切换到未注册的容器 key
	ErrContainerKeyNotFound = errors.New("container key not found")
)
