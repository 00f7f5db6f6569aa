package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EchoZapLogger возвращает middleware для Echo, которое логирует каждый запрос через zap.
// Уровень зависит от класса статуса: 5xx - Error, 3xx/4xx - Warn, остальное - Info.
func EchoZapLogger(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			res := c.Response()

			err := next(c)
			if err != nil {
				// Даем Echo выставить статус до того, как мы его прочитаем
				c.Error(err)
			}

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("remote_ip", c.RealIP()),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
			}
			if id := requestID(req, res); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			if deviceID, ok := c.Get(deviceIDKey).(string); ok && deviceID != "" {
				fields = append(fields, zap.String("deviceID", deviceID))
			}

			switch status := res.Status; {
			case err != nil:
				log.Error("Handler error", append(fields, zap.Error(err))...)
			case status >= http.StatusInternalServerError:
				log.Error("Server error", fields...)
			case status >= http.StatusBadRequest:
				log.Warn("Client error", fields...)
			case status >= http.StatusMultipleChoices:
				log.Warn("Redirection", fields...)
			default:
				log.Info("Success", fields...)
			}
			// Ошибка уже обработана через c.Error
			return nil
		}
	}
}

func requestID(req *http.Request, res *echo.Response) string {
	if id := req.Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return res.Header().Get(echo.HeaderXRequestID)
}
