package exception_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/ferdian3456/rosterbridge/internal/exception"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newApp() *fiber.App {
	log := zap.NewNop()
	app := fiber.New(fiber.Config{ErrorHandler: exception.ErrorHandler(log)})
	app.Use(exception.Recovery(log))
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})
	app.Get("/limited", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTooManyRequests, "slow down")
	})
	return app
}

func decode(t *testing.T, body io.Reader) envelope {
	t.Helper()
	raw, err := io.ReadAll(body)
	require.NoError(t, err)

	var out envelope
	require.NoError(t, sonic.Unmarshal(raw, &out))
	return out
}

func TestErrorHandler(t *testing.T) {
	app := newApp()

	t.Run("unknown route", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/nope", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.Equal(t, constant.ERR_NOT_FOUND_ERROR, decode(t, resp.Body).Error.Code)
	})

	t.Run("rate limited", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/limited", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

		body := decode(t, resp.Body)
		assert.Equal(t, constant.ERR_RATE_LIMITED, body.Error.Code)
		assert.Equal(t, "slow down", body.Error.Message)
	})

	t.Run("panic", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/panic", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, constant.ERR_INTERNAL_SERVER_ERROR_CODE, decode(t, resp.Body).Error.Code)
	})
}
