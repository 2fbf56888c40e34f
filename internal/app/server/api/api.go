// REST API сервера учета мебельных заказов:
//
// GET    /api/orders        # Список заказов
// GET    /api/orders/{id}   # Получить заказ
// POST   /api/orders        # Создать заказ
// PUT    /api/orders/{id}   # Обновить заказ
// DELETE /api/orders/{id}   # Удалить заказ
// POST   /api/orders/sync   # Сверка пакета клиентских заказов
// GET    /api/health        # Проверка доступности

package api

import (
	"net/http"
	"strings"

	"furnitrack/internal/app/server/api/http/health"
	"furnitrack/internal/app/server/api/http/middleware"
	loggerMW "furnitrack/internal/app/server/api/http/middleware/logger"
	orderAPI "furnitrack/internal/app/server/api/http/order"
	"furnitrack/internal/domain/order"
	"furnitrack/internal/infrastructure/storage/postgres"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

type Handlers struct {
	Health *health.Handler
	Order  *orderAPI.Handler
}

// errorResponse — формат ошибок API: error всегда заполнен, message
// добавляет детали, когда они есть.
type errorResponse struct {
	status  int
	Err     string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (e *errorResponse) GetStatus() int { return e.status }

func (e *errorResponse) Error() string {
	if e.Message != "" {
		return e.Err + ": " + e.Message
	}
	return e.Err
}

func init() {
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		resp := &errorResponse{status: status, Err: msg}
		if resp.Err == "" {
			resp.Err = http.StatusText(status)
		}
		details := make([]string, 0, len(errs))
		for _, err := range errs {
			if err != nil {
				details = append(details, err.Error())
			}
		}
		resp.Message = strings.Join(details, "; ")
		return resp
	}
}

// New создает *chi.Mux со всеми операциями через huma.Register
func New(storage *postgres.Storage, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("Furnitrack API", "1.0.0")
	API := humachi.New(mux, config)

	h := handlers(storage, log)
	h.Health.SetupRoutes(API)
	h.Order.SetupRoutes(API)

	return mux
}

func handlers(storage *postgres.Storage, log *slog.Logger) *Handlers {
	logMW := loggerMW.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(logMW.Middleware())
	healthHandler := health.NewHandler(log, middlewares.GetAllAndClear())

	orderRepo := postgres.NewOrderRepository(storage, log)
	orderService := order.NewService(orderRepo, log)
	middlewares.Add(logMW.Middleware())
	orderHandler := orderAPI.NewHandler(orderService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		Order:  orderHandler,
	}
}
