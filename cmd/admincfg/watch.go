package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"admincfg/internal/dsl"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload definitions on change and lint them after every reload",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		lintAndLog := func(entities []*dsl.Entity) {
			issues := dsl.Lint(entities)
			for _, is := range issues {
				log.Warn().
					Str("entity", is.Entity).
					Str("view", is.View).
					Str("field", is.Field).
					Str("code", is.Code).
					Msg(is.Message)
			}
			log.Info().Int("entities", len(entities)).Int("issues", len(issues)).Msg("definitions checked")
		}
		reg.OnChange(lintAndLog)
		lintAndLog(reg.Entities())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := reg.Watch(ctx); err != nil {
			return err
		}
		defer reg.Stop()

		<-ctx.Done()
		log.Info().Msg("stopped watching")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
