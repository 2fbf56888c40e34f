// cmd/client/cmd/orders/save.go
package orders

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"furnitrack/internal/domain/order"

	"github.com/spf13/cobra"
)

var (
	saveFile string

	saveName       string
	saveCustomer   string
	savePhone      string
	saveStatus     string
	savePrice      float64
	savePrepayment float64
	saveNotes      string
)

var SaveCmd = &cobra.Command{
	Use:   "save [id]",
	Short: "Создать или изменить заказ",
	Long: `Сохранение заказа. Без аргумента создается новый заказ, с ID
изменяется существующий.

Заказ можно описать флагами или передать целиком через --file
(JSON-файл либо "-" для чтения из stdin). Сохранение работает и без
сети: заказ попадет на сервер при восстановлении соединения.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		var o order.Order
		if len(args) == 1 {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			existing, err := app.GetOrder(id)
			if err != nil {
				return fmt.Errorf("ошибка получения заказа: %w", err)
			}
			o = *existing
		}

		if saveFile != "" {
			if err := readOrderFile(saveFile, &o); err != nil {
				return err
			}
		}
		applyFlags(cmd, &o)

		saved, err := app.SaveOrder(cmd.Context(), o)
		if err != nil {
			return fmt.Errorf("ошибка сохранения заказа: %w", err)
		}

		fmt.Printf("✅ Заказ сохранен: %s (%s)\n", saved.Name, saved.ID.String())
		if saved.ID.IsLocal() {
			fmt.Println("⌛ Сервер недоступен, заказ будет синхронизирован позже")
		}
		return nil
	},
}

func readOrderFile(path string, o *order.Order) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("ошибка чтения файла заказа: %w", err)
	}
	if err := json.Unmarshal(data, o); err != nil {
		return fmt.Errorf("ошибка парсинга заказа: %w", err)
	}
	return nil
}

// applyFlags переносит в заказ только явно указанные флаги, чтобы не
// затирать поля существующего заказа значениями по умолчанию.
func applyFlags(cmd *cobra.Command, o *order.Order) {
	if cmd.Flags().Changed("name") {
		o.Name = saveName
	}
	if cmd.Flags().Changed("customer") {
		o.Customer = saveCustomer
	}
	if cmd.Flags().Changed("phone") {
		o.Phone = savePhone
	}
	if cmd.Flags().Changed("status") {
		o.Status = saveStatus
	}
	if cmd.Flags().Changed("price") {
		o.Price = savePrice
	}
	if cmd.Flags().Changed("prepayment") {
		o.Prepayment = savePrepayment
		o.Balance = o.Price - o.Prepayment
	}
	if cmd.Flags().Changed("notes") {
		o.Notes = saveNotes
	}
	if o.Expenses == nil {
		o.Expenses = []order.Expense{}
	}
	if o.Photos == nil {
		o.Photos = []order.Photo{}
	}
}

func init() {
	SaveCmd.Flags().StringVar(&saveFile, "file", "", "JSON-файл с заказом (\"-\" для stdin)")
	SaveCmd.Flags().StringVarP(&saveName, "name", "n", "", "название заказа")
	SaveCmd.Flags().StringVarP(&saveCustomer, "customer", "c", "", "заказчик")
	SaveCmd.Flags().StringVar(&savePhone, "phone", "", "телефон заказчика")
	SaveCmd.Flags().StringVarP(&saveStatus, "status", "s", "", "статус заказа")
	SaveCmd.Flags().Float64VarP(&savePrice, "price", "p", 0, "цена заказа")
	SaveCmd.Flags().Float64Var(&savePrepayment, "prepayment", 0, "предоплата")
	SaveCmd.Flags().StringVar(&saveNotes, "notes", "", "заметки")
}
