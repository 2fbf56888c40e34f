package order

import (
	"context"
	"errors"

	"furnitrack/internal/domain/order"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	service    order.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service order.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	// Регистрируем sync до {id}, чтобы маршрут не перехватывался.
	huma.Register(api, h.syncOp(), h.sync)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	orders, err := h.service.List(ctx)
	if err != nil {
		return nil, h.mapError(err)
	}

	return &listOutput{Body: orders}, nil
}

func (h *Handler) find(ctx context.Context, input *findInput) (*orderOutput, error) {
	o, err := h.service.Find(ctx, input.ID)
	if err != nil {
		return nil, h.mapError(err)
	}

	return &orderOutput{Body: *o}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*orderOutput, error) {
	o := input.Body
	created, err := h.service.Create(ctx, &o)
	if err != nil {
		return nil, h.mapError(err)
	}

	return &orderOutput{Body: *created}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*orderOutput, error) {
	o := input.Body
	updated, err := h.service.Update(ctx, input.ID, &o)
	if err != nil {
		return nil, h.mapError(err)
	}

	return &orderOutput{Body: *updated}, nil
}

func (h *Handler) delete(ctx context.Context, input *findInput) (*deleteOutput, error) {
	if err := h.service.Delete(ctx, input.ID); err != nil {
		return nil, h.mapError(err)
	}

	return &deleteOutput{}, nil
}

// sync — эндпоинт сверки: принимает пакет клиентских заказов и
// возвращает полный актуальный список (last-write-wins, см. Reconcile).
func (h *Handler) sync(ctx context.Context, input *syncInput) (*syncOutput, error) {
	merged, err := h.service.Reconcile(ctx, input.Body.Orders)
	if err != nil {
		return nil, h.mapError(err)
	}

	return &syncOutput{Body: merged}, nil
}

// mapError переводит доменные ошибки в HTTP-статусы: ошибки валидации —
// терминальные 4xx, остальное — 5xx.
func (h *Handler) mapError(err error) error {
	switch {
	case errors.Is(err, order.ErrValidation):
		return huma.Error400BadRequest("validation failed", err)
	case errors.Is(err, order.ErrNotFound):
		return huma.Error404NotFound("Order not found")
	default:
		h.log.Error("unexpected error", "error", err)
		return huma.Error500InternalServerError("Internal server error", err)
	}
}
