// cmd/client/cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"

	"furnitrack/internal/app/client"
	"furnitrack/internal/app/client/config"
	"furnitrack/internal/utils/logger"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

var (
	cfg           *config.Config
	log           *slog.Logger
	app           *client.App
	jsonOutput    bool
	serverAddress string
)

var rootCmd = &cobra.Command{
	Use:   "furnitrack",
	Short: "Furnitrack - клиент трекера мебельных заказов",
	Long: `Furnitrack — клиентское приложение трекера заказов мебельной мастерской.

Заказы хранятся локально и доступны без сети; изменения, сделанные в
офлайне, накапливаются в очереди и доставляются на сервер при
восстановлении соединения.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	defer func() {
		if app != nil {
			app.Close()
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg = config.MustLoad()

	// Переопределяем настройки из флагов командной строки
	if serverAddress != "" {
		cfg.ServerAddress = serverAddress
	}

	log = logger.New(cfg.Env)

	var err error
	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	app.Start(cmd.Context())

	cmd.SetContext(context.WithValue(cmd.Context(), "app", app))
	return nil
}

func init() {
	cobra.OnInitialize()

	// Глобальные флаги
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&serverAddress, "server", "", "адрес сервера Furnitrack")
}
