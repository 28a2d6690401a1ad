package database_test

import (
	"testing"

	"github.com/gocrud/container"
	"github.com/gocrud/container/config"
	"github.com/gocrud/container/configure/database"
	"github.com/gocrud/container/logging"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name string
}

// DBConfig 模拟用户定义的配置结构
type DBConfig struct {
	DSN          string `json:"dsn"`
	MaxOpenConns int    `json:"max_open_conns"`
}

func TestDatabaseConfiguration(t *testing.T) {
	// 1. 配置内存配置源 (演示 config.Load 的使用)
	cfg, err := config.NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"db": map[string]any{
				"master": map[string]any{
					"dsn":            "file::memory:?cache=shared",
					"max_open_conns": 5,
				},
			},
		}).
		Build()
	if err != nil {
		t.Fatalf("Failed to build configuration: %v", err)
	}

	dbConf, err := config.Load[DBConfig](cfg, "db.master")
	if err != nil {
		t.Fatalf("Failed to load db config: %v", err)
	}

	// 2. 注册数据库工厂
	cb, err := database.NewBuilder().
		Add("master", sqlite.Open(dbConf.DSN), func(o *database.Options) {
			o.MaxOpenConns = dbConf.MaxOpenConns
			o.AutoMigrate = []any{&User{}}
		}).
		Apply(container.NewBuilder(), logging.NewNopLogger())
	if err != nil {
		t.Fatalf("Failed to apply database builder: %v", err)
	}

	c := cb.Result()

	// 3. 首次解析时打开连接
	db, err := container.Resolve(c, database.Token("master"))
	if err != nil {
		t.Fatalf("Failed to resolve database: %v", err)
	}

	// Verify config was applied
	sqlDB, _ := db.DB()
	stats := sqlDB.Stats()
	if stats.MaxOpenConnections != 5 {
		t.Errorf("Expected MaxOpenConns 5, got %d", stats.MaxOpenConnections)
	}

	// Test DB interaction
	if err := db.Create(&User{Name: "test"}).Error; err != nil {
		t.Fatalf("Failed to insert record: %v", err)
	}

	// 单例：再次解析得到同一个连接
	again, err := container.Resolve(c, database.Token("master"))
	if err != nil {
		t.Fatalf("Failed to resolve database again: %v", err)
	}
	if again != db {
		t.Error("Expected singleton database instance")
	}

	// 工厂跟踪已打开的连接并可统一关闭
	factory, err := container.Resolve(c, database.FactoryToken)
	if err != nil {
		t.Fatalf("Failed to resolve factory: %v", err)
	}
	opened := 0
	factory.Each(func(name string, _ *gorm.DB) {
		if name == "master" {
			opened++
		}
	})
	if opened != 1 {
		t.Errorf("Expected 1 opened database, got %d", opened)
	}
	if err := factory.Close(); err != nil {
		t.Errorf("Failed to close databases: %v", err)
	}
}

func TestDatabaseBuilder_Errors(t *testing.T) {
	// Missing dialector
	_, err := database.NewBuilder().
		Add("invalid", nil, nil).
		Apply(container.NewBuilder(), logging.NewNopLogger())
	if err == nil {
		t.Fatal("Expected error for missing dialector, got nil")
	}

	// Duplicate
	_, err = database.NewBuilder().
		Add("dup", sqlite.Open("file::memory:"), nil).
		Add("dup", sqlite.Open("file::memory:"), nil).
		Apply(container.NewBuilder(), logging.NewNopLogger())
	if err == nil {
		t.Fatal("Expected error for duplicate name, got nil")
	}
	t.Logf("Got expected error: %v", err)
}

func TestTokenIdentity(t *testing.T) {
	if database.Token("master") != database.Token("master") {
		t.Error("Expected same token for same name")
	}
	if database.Token("master") == database.Token("slave") {
		t.Error("Expected distinct tokens for distinct names")
	}
	if database.Token("default") != database.DB {
		t.Error("Expected DB to be the default token")
	}
}
