package orders

import (
	"fmt"
	"strconv"
	"strings"

	"furnitrack/internal/app/client"
	"furnitrack/internal/domain/order"

	"github.com/spf13/cobra"
)

// OrdersCmd - родительская команда для всех операций с заказами
var OrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Управление заказами",
	Long:  `Просмотр, создание, изменение и удаление заказов мастерской.`,
}

func appFromContext(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value("app").(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

// parseOrderID принимает как серверный числовой id, так и временный
// локальный вида temp-<...>.
func parseOrderID(raw string) (order.ID, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return order.SyncedID(n), nil
	}
	if strings.HasPrefix(raw, "temp-") {
		return order.LocalID(raw), nil
	}
	return order.ID{}, fmt.Errorf("неверный ID заказа: %s", raw)
}
