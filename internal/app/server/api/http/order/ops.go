package order

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "orders-list",
		Method:      http.MethodGet,
		Path:        "/api/orders",
		Summary:     "Список заказов",
		Tags:        []string{"orders"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "orders-find",
		Method:      http.MethodGet,
		Path:        "/api/orders/{id}",
		Summary:     "Получить заказ",
		Tags:        []string{"orders"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "orders-create",
		Method:        http.MethodPost,
		Path:          "/api/orders",
		Summary:       "Создать заказ",
		DefaultStatus: http.StatusCreated,
		Tags:          []string{"orders"},
		Middlewares:   h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "orders-update",
		Method:      http.MethodPut,
		Path:        "/api/orders/{id}",
		Summary:     "Обновить заказ",
		Tags:        []string{"orders"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID:   "orders-delete",
		Method:        http.MethodDelete,
		Path:          "/api/orders/{id}",
		Summary:       "Удалить заказ",
		DefaultStatus: http.StatusNoContent,
		Tags:          []string{"orders"},
		Middlewares:   h.middleware,
	}
}

func (h *Handler) syncOp() huma.Operation {
	return huma.Operation{
		OperationID: "orders-sync",
		Method:      http.MethodPost,
		Path:        "/api/orders/sync",
		Summary:     "Сверка пакета заказов",
		Description: "Принимает смесь заказов с серверными id и без них, создает новые, перезаписывает существующие и возвращает полный актуальный список.",
		Tags:        []string{"orders", "sync"},
		Middlewares: h.middleware,
	}
}
