// cmd/client/cmd/orders/list.go
package orders

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"furnitrack/internal/domain/order"

	"github.com/spf13/cobra"
)

var (
	listFormat string
	listStatus string
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список заказов",
	Long: `Просмотр списка заказов. Работает и без сети: показывается
локальная копия, включая еще не синхронизированные заказы.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		orders, err := app.ListOrders(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения списка заказов: %w", err)
		}

		if listStatus != "" {
			filtered := orders[:0]
			for _, o := range orders {
				if o.Status == listStatus {
					filtered = append(filtered, o)
				}
			}
			orders = filtered
		}

		switch listFormat {
		case "json":
			return printOrdersJSON(orders)
		case "table":
			return printOrdersTable(orders)
		default:
			return printOrdersSimple(orders)
		}
	},
}

func printOrdersSimple(orders []order.Order) error {
	if len(orders) == 0 {
		fmt.Println("Заказы не найдены")
		return nil
	}

	fmt.Printf("Найдено заказов: %d\n\n", len(orders))

	for i, o := range orders {
		sync := "✓"
		if o.ID.IsLocal() {
			sync = "⌛"
		}
		fmt.Printf("%d. [%s] %s (%s)\n", i+1, sync, o.Name, o.Status)
		fmt.Printf("   ID: %s | Заказчик: %s | Цена: %.2f\n",
			o.ID.String(), o.Customer, o.Price)
		fmt.Println()
	}

	return nil
}

func printOrdersTable(orders []order.Order) error {
	if len(orders) == 0 {
		fmt.Println("Заказы не найдены")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tНазвание\tЗаказчик\tСтатус\tЦена\tОстаток\t\n")
	fmt.Fprintf(w, "---\t---\t---\t---\t---\t---\t\n")

	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%.2f\t\n",
			o.ID.String(),
			truncate(o.Name, 30),
			truncate(o.Customer, 20),
			o.Status,
			o.Price,
			o.Balance,
		)
	}

	w.Flush()
	fmt.Printf("\nВсего заказов: %d\n", len(orders))
	return nil
}

func printOrdersJSON(orders []order.Order) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(orders)
}

func truncate(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return string(runes[:length-3]) + "..."
}

func init() {
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "simple", "формат вывода (simple, table, json)")
	ListCmd.Flags().StringVarP(&listStatus, "status", "s", "", "фильтр по статусу заказа")
}
