package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/realtime"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow new and updated profiles as they are submitted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := newLogger()
		defer func() {
			_ = log.Sync()
		}()

		client := newAPIClientFromFlags()
		liveURL, err := client.LiveURL()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		obs, err := realtime.NewObserver(realtime.ObserverConfig{
			URL:   liveURL,
			Token: client.token,
			OnState: func(state realtime.State, err error) {
				renderState(out, state, err)
			},
			OnEvent: func(ev domain.ProfileUpdated) {
				renderEvent(out, ev)
			},
		}, log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Debug("watching live feed", zap.String("server", client.baseURL))
		if err := obs.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
