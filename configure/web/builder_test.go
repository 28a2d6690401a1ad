package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/container"
	"github.com/gocrud/container/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------- Mock Controllers ----------------

// SimpleController 普通控制器
type SimpleController struct{}

func (c *SimpleController) RegisterRoutes(router gin.IRouter) {
	router.GET("/simple", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "simple")
	})
}

// DepService 模拟依赖服务
type DepService struct {
	Value string
}

// ControllerWithDep 带依赖的控制器（工厂注入）
type ControllerWithDep struct {
	Svc *DepService
}

func (c *ControllerWithDep) RegisterRoutes(router gin.IRouter) {
	router.GET("/dep", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, c.Svc.Value)
	})
}

// ---------------- Tests ----------------

func TestMountControllers(t *testing.T) {
	simpleToken := container.NewToken[*SimpleController]().As("web.test.simple", container.Metadata{
		Implements: []container.AnyToken{ControllerBase},
	})
	depToken := container.NewToken[*DepService]().As("web.test.depservice")
	ctrlToken := container.NewToken[*ControllerWithDep]().As("web.test.withdep", container.Metadata{
		Implements: []container.AnyToken{ControllerBase},
	})

	cb, err := container.NewBuilder().Register(simpleToken, &SimpleController{})
	require.NoError(t, err)
	cb, err = cb.Register(depToken, &DepService{Value: "injected"})
	require.NoError(t, err)
	cb, err = cb.RegisterFactory(ctrlToken, container.FactoryDescriptor{
		Scope:        container.ScopeSingleton,
		Dependencies: []container.AnyToken{depToken},
		Factory: container.Construct(func(svc *DepService) *ControllerWithDep {
			return &ControllerWithDep{Svc: svc}
		}),
	})
	require.NoError(t, err)

	c := cb.Result()

	host, err := NewBuilder(c, logging.NewNopLogger()).
		MountControllers().
		Build()
	require.NoError(t, err)

	// /simple 来自值控制器
	w := httptest.NewRecorder()
	host.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/simple", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "simple", w.Body.String())

	// /dep 来自工厂控制器，依赖已注入
	w = httptest.NewRecorder()
	host.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dep", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "injected", w.Body.String())
}

func TestRequestScopeIsolation(t *testing.T) {
	type requestID struct{ n int }
	reqToken := container.NewToken[*requestID]().As("web.test.requestid")

	var counter atomic.Int32
	cb, err := container.NewBuilder().RegisterFactory(reqToken, container.FactoryDescriptor{
		Scope: container.ScopeScoped,
		Factory: func(deps ...any) (any, error) {
			return &requestID{n: int(counter.Add(1))}, nil
		},
	})
	require.NoError(t, err)

	c := cb.Result()

	b := NewBuilder(c, logging.NewNopLogger())
	b.Get("/whoami", func(ctx *gin.Context) {
		sc := ScopeFrom(ctx)
		require.NotNil(t, sc)

		id, err := container.Resolve(sc, reqToken)
		require.NoError(t, err)

		// 同一请求内重复解析返回同一实例
		again, err := container.Resolve(sc, reqToken)
		require.NoError(t, err)
		assert.Same(t, id, again)

		ctx.JSON(http.StatusOK, gin.H{"id": id.n})
	})

	host, err := b.Build()
	require.NoError(t, err)

	// 两个请求得到不同的作用域实例
	w1 := httptest.NewRecorder()
	host.Engine().ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	w2 := httptest.NewRecorder()
	host.Engine().ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.NotEqual(t, w1.Body.String(), w2.Body.String())
}

func TestScopeFromWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ScopeFrom(ctx))
}

func TestHostStopsOnContextCancel(t *testing.T) {
	c := container.NewBuilder().Result()

	// 端口 0 由系统分配，避免占用固定端口
	host, err := NewBuilder(c, logging.NewNopLogger()).
		UsePort(0).
		Build()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- host.Start(ctx)
	}()

	// 给服务器一点启动时间后取消
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}

	// 取消后服务器已关闭，重新监听直接返回 ErrServerClosed
	assert.ErrorIs(t, host.server.ListenAndServe(), http.ErrServerClosed)
}

func TestMountControllers_ResolveFailure(t *testing.T) {
	missingDep := container.NewToken[*DepService]().As("web.test.missing")
	badToken := container.NewToken[*ControllerWithDep]().As("web.test.bad", container.Metadata{
		Implements: []container.AnyToken{ControllerBase},
	})

	cb, err := container.NewBuilder().RegisterFactory(badToken, container.FactoryDescriptor{
		Scope:        container.ScopeSingleton,
		Dependencies: []container.AnyToken{missingDep},
		Factory: container.Construct(func(svc *DepService) *ControllerWithDep {
			return &ControllerWithDep{Svc: svc}
		}),
	})
	require.NoError(t, err)

	_, err = NewBuilder(cb.Result(), logging.NewNopLogger()).
		MountControllers().
		Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrTokenNotFound)
}
