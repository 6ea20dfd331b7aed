package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"grant-assistant-be/pkg/events"
	pktNats "grant-assistant-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	var url, eventType string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print interview events published to NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := pktNats.NewSubscriber(url)
			if err != nil {
				return err
			}
			defer sub.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = sub.Subscribe(ctx, eventType, "", func(_ context.Context, event events.Event) error {
				body, _ := json.MarshalIndent(event.Payload(), "  ", "  ")
				color.Cyan("%s  %s", event.Timestamp().Format("15:04:05"), event.EventType())
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", body)
				return nil
			})
			if err != nil {
				return err
			}

			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "nats", os.Getenv("NATS_URL"), "NATS server URL")
	cmd.Flags().StringVar(&eventType, "type", "", "Only this event type, e.g. INTERVIEW_COMPLETED")
	return cmd
}
