package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MinhaKim02/protest-crawling-database/internal/config"
	"github.com/MinhaKim02/protest-crawling-database/internal/notifier"
	"github.com/MinhaKim02/protest-crawling-database/internal/storage"
)

func newNotifyCmd(cfg *config.Config) *cobra.Command {
	var (
		dateText string
		prefix   string
		botToken string
		chatID   string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Post a day's schedule to a Telegram chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := resolveDate(dateText)
			if err != nil {
				return err
			}

			store, err := storage.New(flagDataDir, prefix)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}
			batch, err := store.LoadBatch(date)
			if err != nil {
				return fmt.Errorf("loading snapshot: %w", err)
			}

			var n notifier.Notifier
			if dryRun {
				n = notifier.NewDryRunNotifier(cmd.OutOrStdout())
			} else {
				tn, err := notifier.NewTelegramNotifier(botToken, chatID)
				if err != nil {
					return fmt.Errorf("creating Telegram notifier: %w", err)
				}
				n = tn
			}

			if err := n.Notify(cmd.Context(), batch); err != nil {
				return fmt.Errorf("posting schedule: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dateText, "date", "", "Date to post (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&prefix, "prefix", storage.MainPrefix, "Snapshot name prefix")
	cmd.Flags().StringVar(&botToken, "bot-token", cfg.TelegramBot, "Telegram bot token (env: "+config.EnvTelegramBot+")")
	cmd.Flags().StringVar(&chatID, "chat-id", cfg.TelegramChat, "Telegram chat ID (env: "+config.EnvTelegramChat+")")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the message instead of posting it")
	return cmd
}
