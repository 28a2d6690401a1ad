package container

import (
	"errors"
	"testing"
)

func managerFixture(t *testing.T) (*Manager, *Container, *Container) {
	t.Helper()

	tok := NewToken[string]().As("env")
	prod := NewBuilder().MustRegister(tok, "prod").Result()
	test := NewBuilder().MustRegister(tok, "test").Result()

	m := NewManager()
	if err := m.RegisterContainer(prod, "prod"); err != nil {
		t.Fatalf("register prod failed: %v", err)
	}
	if err := m.RegisterContainer(test, "test"); err != nil {
		t.Fatalf("register test failed: %v", err)
	}
	return m, prod, test
}

func TestManagerRegisterAndFetch(t *testing.T) {
	m, prod, test := managerFixture(t)

	got, err := m.Container("prod")
	if err != nil || got != prod {
		t.Fatalf("fetch by key failed: %v", err)
	}
	got, err = m.Container("test")
	if err != nil || got != test {
		t.Fatalf("fetch by key failed: %v", err)
	}

	// 第一个注册的容器是当前默认容器
	got, err = m.Container()
	if err != nil || got != prod {
		t.Fatalf("default container should be the first registered, got %v (%v)", got, err)
	}
}

func TestManagerKeyConflict(t *testing.T) {
	m, prod, _ := managerFixture(t)

	err := m.RegisterContainer(prod, "prod")
	if !errors.Is(err, ErrContainerKeyConflict) {
		t.Fatalf("expected ErrContainerKeyConflict, got %v", err)
	}
}

func TestManagerKeyNotFound(t *testing.T) {
	m, _, _ := managerFixture(t)

	if _, err := m.Container("staging"); !errors.Is(err, ErrContainerKeyNotFound) {
		t.Fatalf("expected ErrContainerKeyNotFound, got %v", err)
	}
	if err := m.SetDefaultContainer("staging"); !errors.Is(err, ErrContainerKeyNotFound) {
		t.Fatalf("switching to an unregistered key must fail, got %v", err)
	}

	// 空 Manager 没有默认容器
	empty := NewManager()
	if _, err := empty.Container(); !errors.Is(err, ErrContainerKeyNotFound) {
		t.Fatalf("empty manager must report ErrContainerKeyNotFound, got %v", err)
	}
}

func TestManagerSwitchDefault(t *testing.T) {
	m, _, test := managerFixture(t)

	if err := m.SetDefaultContainer("test"); err != nil {
		t.Fatalf("SetDefaultContainer failed: %v", err)
	}
	got, err := m.Container()
	if err != nil || got != test {
		t.Fatalf("default should now be the test container, got %v (%v)", got, err)
	}
}

func TestManagerDefaultKeyRegistration(t *testing.T) {
	tok := NewToken[string]().As("env")
	c := NewBuilder().MustRegister(tok, "default").Result()

	m := NewManager()
	if err := m.RegisterContainer(c); err != nil {
		t.Fatalf("register without key failed: %v", err)
	}

	got, err := m.Container(DefaultContainerKey)
	if err != nil || got != c {
		t.Fatalf("container should be under the default key, got %v (%v)", got, err)
	}
}

func TestManagerState(t *testing.T) {
	m, prod, _ := managerFixture(t)

	state, err := m.State("prod")
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if state != prod.State() {
		t.Fatal("manager must hand out the container's own snapshot")
	}

	// 快照可以合并进新的 Builder 链
	tok := NewToken[string]().As("extra")
	c := NewBuilder().Merge(state).MustRegister(tok, "x").Result()
	if c.State().Len() != state.Len()+1 {
		t.Fatal("merged state lost entries")
	}
}

func TestManagerKeys(t *testing.T) {
	m, _, _ := managerFixture(t)

	keys := m.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
}
