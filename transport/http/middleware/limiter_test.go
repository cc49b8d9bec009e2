package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slotkeeper/config"
	otelMocks "slotkeeper/infras/otel/mocks"
	"slotkeeper/shared/cache"
	cacheMocks "slotkeeper/shared/cache/mocks"
	"slotkeeper/shared/constant"
	"slotkeeper/transport/http/middleware"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const limiterKey = "limiter:10.0.0.1:curl"

func newLimited(t *testing.T, enable bool) (http.Handler, *cacheMocks.MockRedisCache) {
	t.Helper()

	c := cacheMocks.NewMockRedisCache(gomock.NewController(t))

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = enable
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	app := middleware.NewAppMiddleware(otelMocks.NewOtel(), cfg, c)

	handler := app.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	return handler, c
}

func limitedRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings", nil)
	req.Header.Set(constant.RequestHeaderForwardedFor, "10.0.0.1, 172.16.0.1")
	req.Header.Set(constant.RequestHeaderUserAgent, "curl")

	return req
}

func TestRateLimitFirstRequest(t *testing.T) {
	handler, c := newLimited(t, true)

	c.EXPECT().Get(gomock.Any(), limiterKey, gomock.Any()).Return(cache.Nil)
	c.EXPECT().Save(gomock.Any(), limiterKey, 1, 60).Return(nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, limitedRequest())

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "2", rec.Header().Get(constant.RequestHeaderRateLimit))
	assert.Equal(t, "1", rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
}

func TestRateLimitExceeded(t *testing.T) {
	handler, c := newLimited(t, true)

	c.EXPECT().Get(gomock.Any(), limiterKey, gomock.Any()).DoAndReturn(func(_ context.Context, _ string, value any) error {
		*value.(*int) = 2

		return nil
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, limitedRequest())

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get(constant.RequestHeaderRetryAfter))
}

func TestRateLimitCacheDown(t *testing.T) {
	handler, c := newLimited(t, true)

	c.EXPECT().Get(gomock.Any(), limiterKey, gomock.Any()).Return(errors.New("connection refused"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, limitedRequest())

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	handler, _ := newLimited(t, false)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, limitedRequest())

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
