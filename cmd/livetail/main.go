package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smukkama/factory-monitor/internal/database"
	"github.com/smukkama/factory-monitor/internal/protocol"
	"github.com/smukkama/factory-monitor/internal/queue"
	"github.com/smukkama/factory-monitor/internal/telemetry"
	"github.com/smukkama/factory-monitor/pkg/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		groupID     string
		machineID   string
		createTopic bool
		partitions  int
	)

	cmd := &cobra.Command{
		Use:           "livetail",
		Short:         "Follow live sensor readings published to Kafka",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			telemetry.SetupLogging(cfg.Telemetry.LogLevel, cfg.Telemetry.LogFormat)

			if len(cfg.Kafka.Brokers) == 0 {
				return errors.New("KAFKA_BROKERS is not set")
			}

			if createTopic {
				if err := queue.EnsureTopic(cfg.Kafka.Brokers, cfg.Kafka.TopicReadings, partitions, 1); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return tail(ctx, cfg, groupID, machineID)
		},
	}

	cmd.Flags().StringVar(&groupID, "group", "", "Consumer group; empty tails partition 0 from the newest offset without committing")
	cmd.Flags().StringVar(&machineID, "machine", "", "Only show readings for this machine")
	cmd.Flags().BoolVar(&createTopic, "create-topic", false, "Create the readings topic before tailing")
	cmd.Flags().IntVar(&partitions, "partitions", 3, "Partitions for --create-topic")
	return cmd
}

func tail(ctx context.Context, cfg *config.Config, groupID, machineID string) error {
	consumer, err := queue.NewReadingConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicReadings, groupID)
	if err != nil {
		return err
	}
	defer consumer.Close()

	log.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.TopicReadings).
		Str("group", groupID).
		Msg("tailing live readings")

	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := consumer.Stats()
				log.Info().
					Int64("messages", stats.Messages).
					Int64("bytes", stats.Bytes).
					Int64("errors", stats.Errors).
					Msg("consumer stats")
			}
		}
	}()

	for {
		d, err := consumer.ConsumeReading(ctx)
		switch {
		case errors.Is(err, queue.ErrMalformedReading):
			log.Warn().Err(err).Msg("skipping message")
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			return err
		case machineID == "" || d.Reading.MachineID == machineID:
			logReading(d.Reading)
		}

		if err := consumer.Ack(ctx, d); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("failed to commit offset")
		}
	}
}

func logReading(msg *protocol.ReadingMessage) {
	r := msg.Reading
	event := log.Info()
	if r.Status != database.SensorStatusNormal {
		event = log.Warn()
	}
	event.
		Str("machine_id", msg.MachineID).
		Str("machine", msg.MachineName).
		Float64("temperature", r.Temperature).
		Float64("humidity", r.Humidity).
		Float64("pressure", r.Pressure).
		Float64("vibration", r.Vibration).
		Float64("power", r.PowerConsumption).
		Str("status", r.Status).
		Time("recorded_at", r.RecordedAt).
		Msg("reading")
}
