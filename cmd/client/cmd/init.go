// cmd/client/cmd/init.go
package cmd

import (
	"furnitrack/cmd/client/cmd/orders"
	"furnitrack/cmd/client/cmd/sync"
)

func init() {
	// Команды работы с заказами
	rootCmd.AddCommand(orders.OrdersCmd)
	orders.OrdersCmd.AddCommand(orders.ListCmd)
	orders.OrdersCmd.AddCommand(orders.GetCmd)
	orders.OrdersCmd.AddCommand(orders.SaveCmd)
	orders.OrdersCmd.AddCommand(orders.DeleteCmd)

	// Команды синхронизации
	rootCmd.AddCommand(sync.SyncCmd)
}
