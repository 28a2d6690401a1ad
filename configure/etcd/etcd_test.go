package etcd

import (
	"os"
	"testing"
	"time"

	"github.com/gocrud/container"
	"github.com/gocrud/container/logging"
)

func TestBuilderValidation(t *testing.T) {
	// 空端点列表
	_, err := NewBuilder().
		AddClient("bad", func(o *Options) { o.Endpoints = nil }).
		Apply(container.NewBuilder(), logging.NewNopLogger())
	if err == nil {
		t.Fatal("Expected error for empty endpoints")
	}

	// 非法超时
	_, err = NewBuilder().
		AddClient("bad", func(o *Options) { o.DialTimeout = 0 }).
		Apply(container.NewBuilder(), logging.NewNopLogger())
	if err == nil {
		t.Fatal("Expected error for zero dial timeout")
	}

	// 重复名称
	_, err = NewBuilder().
		AddClient("dup", nil).
		AddClient("dup", nil).
		Apply(container.NewBuilder(), logging.NewNopLogger())
	if err == nil {
		t.Fatal("Expected error for duplicate name")
	}
}

func TestRegistrationIsLazy(t *testing.T) {
	// 注册阶段不触发连接
	cb, err := NewBuilder().
		AddClient("lazy", func(o *Options) {
			o.Endpoints = []string{"localhost:1"}
			o.DialTimeout = time.Second
		}).
		Apply(container.NewBuilder(), logging.NewNopLogger())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !cb.Result().State().Has(Token("lazy")) {
		t.Error("Expected token to be registered")
	}
}

func TestResolveClient_Integration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=1 to run.")
	}

	cb, err := NewBuilder().
		AddClient("default", nil).
		Apply(container.NewBuilder(), logging.NewNopLogger())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	c := cb.Result()
	client, err := container.Resolve(c, Client)
	if err != nil {
		t.Fatalf("Failed to resolve etcd client: %v", err)
	}
	if client == nil {
		t.Fatal("Expected non-nil client")
	}

	factory, _ := container.Resolve(c, FactoryToken)
	if err := factory.Close(); err != nil {
		t.Errorf("Failed to close clients: %v", err)
	}
}
