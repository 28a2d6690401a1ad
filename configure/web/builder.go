package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/container"
	"github.com/gocrud/container/logging"
)

// Controller 控制器接口，挂载自己的路由
type Controller interface {
	RegisterRoutes(router gin.IRouter)
}

// ControllerBase 控制器基础令牌。
// 控制器令牌通过元数据声明实现该令牌，挂载时按元数据发现。
var ControllerBase = container.NewToken[Controller]().As("web.controller")

const scopeContextKey = "container.scope"

// ScopeMiddleware 为每个请求创建独立的容器作用域。
// 请求内解析的作用域依赖共享，请求间隔离。
func ScopeMiddleware(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sc := c.CreateScope()
		ctx.Set(scopeContextKey, sc)
		defer sc.Dispose()
		ctx.Next()
	}
}

// ScopeFrom 从请求上下文取出容器作用域。
// 未安装 ScopeMiddleware 时返回 nil。
func ScopeFrom(ctx *gin.Context) *container.Scope {
	if v, ok := ctx.Get(scopeContextKey); ok {
		if sc, ok := v.(*container.Scope); ok {
			return sc
		}
	}
	return nil
}

// Builder Web 主机构建器（基于 Gin）
type Builder struct {
	logger    logging.Logger
	container *container.Container
	port      int
	engine    *gin.Engine
	errs      []error
}

// NewBuilder 创建 Web 构建器
func NewBuilder(c *container.Container, logger logging.Logger) *Builder {
	// 设置 Gin 为发布模式（默认）
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	// 默认中间件：恢复 panic、按请求作用域
	engine.Use(gin.Recovery())
	engine.Use(ScopeMiddleware(c))

	return &Builder{
		logger:    logger,
		container: c,
		port:      8080,
		engine:    engine,
	}
}

// UsePort 设置端口
func (b *Builder) UsePort(port int) *Builder {
	b.port = port
	return b
}

// Get 注册 GET 路由
func (b *Builder) Get(path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.GET(path, handlers...)
	return b
}

// Post 注册 POST 路由
func (b *Builder) Post(path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.POST(path, handlers...)
	return b
}

// Put 注册 PUT 路由
func (b *Builder) Put(path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.PUT(path, handlers...)
	return b
}

// Delete 注册 DELETE 路由
func (b *Builder) Delete(path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.DELETE(path, handlers...)
	return b
}

// Any 注册任意方法路由
func (b *Builder) Any(path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.Any(path, handlers...)
	return b
}

// Group 创建路由组
func (b *Builder) Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return b.engine.Group(relativePath, handlers...)
}

// Use 使用全局中间件
func (b *Builder) Use(middleware ...gin.HandlerFunc) *Builder {
	b.engine.Use(middleware...)
	return b
}

// NoRoute 处理 404
func (b *Builder) NoRoute(handlers ...gin.HandlerFunc) *Builder {
	b.engine.NoRoute(handlers...)
	return b
}

// SetMode 设置 Gin 模式
func (b *Builder) SetMode(mode string) *Builder {
	gin.SetMode(mode)
	return b
}

// Engine 获取 Gin 引擎（用于高级定制）
func (b *Builder) Engine() *gin.Engine {
	return b.engine
}

// MountControllers 按元数据发现并挂载所有控制器。
// 解析所有声明实现 ControllerBase 的令牌，逐个注册路由。
func (b *Builder) MountControllers() *Builder {
	toks := b.container.FindImplementationTokens(ControllerBase)
	instances, err := b.container.ResolveArray(toks)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("failed to resolve controllers: %w", err))
		return b
	}

	for i, instance := range instances {
		ctrl, ok := instance.(Controller)
		if !ok {
			b.errs = append(b.errs, fmt.Errorf("token %s does not resolve to a Controller, got %T", toks[i], instance))
			continue
		}
		ctrl.RegisterRoutes(b.engine)
		b.logger.Info("Controller mounted",
			logging.Field{Key: "token", Value: toks[i].String()})
	}

	return b
}

// Build 构建 Web 主机
func (b *Builder) Build() (*Host, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	return &Host{
		port:   b.port,
		engine: b.engine,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", b.port),
			Handler: b.engine,
		},
		logger: b.logger,
	}, nil
}
