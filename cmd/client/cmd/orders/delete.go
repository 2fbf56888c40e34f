// cmd/client/cmd/orders/delete.go
package orders

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteForce bool

var DeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Удалить заказ",
	Long: `Удаление заказа по ID. Заказ сразу исчезает из локального
списка; удаление на сервере выполняется при наличии сети или
откладывается в очередь.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		id, err := parseOrderID(args[0])
		if err != nil {
			return err
		}

		o, err := app.GetOrder(id)
		if err != nil {
			return fmt.Errorf("ошибка получения заказа: %w", err)
		}

		if !deleteForce {
			fmt.Printf("Удалить заказ \"%s\" (%s)? [y/N]: ", o.Name, o.ID.String())
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				fmt.Println("Отменено")
				return nil
			}
		}

		if err := app.DeleteOrder(cmd.Context(), id); err != nil {
			return fmt.Errorf("ошибка удаления заказа: %w", err)
		}

		fmt.Printf("✅ Заказ \"%s\" удален\n", o.Name)
		return nil
	},
}

func init() {
	DeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "удалить без подтверждения")
}
