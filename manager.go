package container

import (
	"fmt"
	"sync"
)

// DefaultContainerKey 是 Manager 在未指定 key 时使用的容器名称。
const DefaultContainerKey = "default"

// Manager 是容器的命名注册表，维护 string key 到容器的映射和一个
// 当前默认 key。它只是核心容器之上的薄封装，不参与解析。
//
// 使用场景：多租户、按环境切换容器、测试中替换整套注册。
type Manager struct {
	mu         sync.RWMutex
	containers map[string]*Container
	current    string
}

// NewManager 创建一个空的容器注册表。
func NewManager() *Manager {
	return &Manager{
		containers: make(map[string]*Container),
	}
}

// RegisterContainer 以 key 注册容器，key 省略时使用 DefaultContainerKey。
// key 已被占用时返回 ErrContainerKeyConflict。
// 第一个注册的容器自动成为当前默认容器。
func (m *Manager) RegisterContainer(c *Container, key ...string) error {
	k := DefaultContainerKey
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.containers[k]; exists {
		return fmt.Errorf("container: manager key %q already registered: %w", k, ErrContainerKeyConflict)
	}

	m.containers[k] = c
	if m.current == "" {
		m.current = k
	}
	return nil
}

// Container 返回 key 对应的容器，key 省略时返回当前默认容器。
// key 未注册（或尚无默认容器）时返回 ErrContainerKeyNotFound。
func (m *Manager) Container(key ...string) (*Container, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k := m.current
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}
	if k == "" {
		return nil, fmt.Errorf("container: no default container registered: %w", ErrContainerKeyNotFound)
	}

	c, ok := m.containers[k]
	if !ok {
		return nil, fmt.Errorf("container: manager key %q not found: %w", k, ErrContainerKeyNotFound)
	}
	return c, nil
}

// SetDefaultContainer 把当前默认容器切换到 key。
// key 从未注册过时返回 ErrContainerKeyNotFound，默认容器保持不变。
func (m *Manager) SetDefaultContainer(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.containers[key]; !ok {
		return fmt.Errorf("container: manager key %q not found: %w", key, ErrContainerKeyNotFound)
	}
	m.current = key
	return nil
}

// State 返回 key 对应容器的状态快照，key 省略时使用当前默认容器。
func (m *Manager) State(key ...string) (*State, error) {
	c, err := m.Container(key...)
	if err != nil {
		return nil, err
	}
	return c.State(), nil
}

// Keys 返回已注册的容器 key（无序）。
func (m *Manager) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.containers))
	for k := range m.containers {
		keys = append(keys, k)
	}
	return keys
}
