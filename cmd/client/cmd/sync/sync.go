// cmd/client/cmd/sync/sync.go
package sync

import (
	"fmt"

	"furnitrack/internal/app/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	syncStatus  bool
	showDead    bool
	requeueDead bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Управление синхронизацией",
	Long: `Синхронизация заказов с сервером.

Без флагов запускает прогон очереди офлайн-изменений. Флаг --status
показывает состояние сети и очереди, --dead выводит изменения,
которые сервер отклонил, --requeue возвращает их в очередь.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value("app").(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		if syncStatus {
			return showSyncStatus(app)
		}
		if showDead {
			return showDeadLetter(app)
		}
		if requeueDead {
			return requeueDeadLetter(app)
		}
		return runSync(cmd, app)
	},
}

func runSync(cmd *cobra.Command, app *client.App) error {
	pending, err := app.Pending()
	if err != nil {
		return err
	}
	if pending == 0 {
		fmt.Println("Очередь пуста, синхронизировать нечего")
		return nil
	}

	fmt.Printf("Изменений в очереди: %d\n", pending)
	fmt.Println("Синхронизация...")

	if err := app.SyncNow(cmd.Context()); err != nil {
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}

	remaining, err := app.Pending()
	if err != nil {
		return err
	}
	if remaining > 0 {
		color.Yellow("⚠ Доставлено частично, в очереди осталось: %d", remaining)
		return nil
	}

	color.Green("✅ Все изменения доставлены на сервер")
	return nil
}

func showSyncStatus(app *client.App) error {
	fmt.Println("=== Статус синхронизации ===")

	fmt.Print("Сеть:        ")
	if app.Online() {
		color.Green("онлайн")
	} else {
		color.Red("офлайн")
	}

	status := app.Status()
	fmt.Print("Состояние:   ")
	switch status.State {
	case client.StateSyncing:
		color.Cyan("синхронизация")
	case client.StateSuccess:
		color.Green("синхронизировано")
	case client.StateError:
		color.Red("ошибка")
	default:
		fmt.Println("ожидание")
	}

	fmt.Printf("В очереди:   %d\n", status.Pending)

	if status.Err != nil {
		fmt.Printf("Последняя ошибка: %v\n", status.Err)
	}

	dead, err := app.DeadLetter()
	if err != nil {
		return err
	}
	if len(dead) > 0 {
		color.Yellow("Отклонено сервером: %d (см. sync --dead)", len(dead))
	}

	return nil
}

func showDeadLetter(app *client.App) error {
	dead, err := app.DeadLetter()
	if err != nil {
		return err
	}
	if len(dead) == 0 {
		fmt.Println("Отклоненных изменений нет")
		return nil
	}

	fmt.Printf("Отклоненных изменений: %d\n\n", len(dead))
	for i, d := range dead {
		name := "-"
		if d.Order != nil {
			name = d.Order.Name
		}
		fmt.Printf("%d. [%s] %s\n", i+1, d.Type, name)
		fmt.Printf("   Причина: %s\n", d.Reason)
		fmt.Printf("   Когда:   %s\n", d.FailedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}

	fmt.Println("Исправьте данные и верните изменения в очередь: sync --requeue")
	return nil
}

func requeueDeadLetter(app *client.App) error {
	n, err := app.RequeueDead()
	if err != nil {
		return fmt.Errorf("ошибка возврата в очередь: %w", err)
	}
	if n == 0 {
		fmt.Println("Возвращать нечего")
		return nil
	}
	color.Green("✅ Возвращено в очередь: %d", n)
	return nil
}

func init() {
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "показать статус синхронизации")
	SyncCmd.Flags().BoolVar(&showDead, "dead", false, "показать отклоненные сервером изменения")
	SyncCmd.Flags().BoolVar(&requeueDead, "requeue", false, "вернуть отклоненные изменения в очередь")
}
