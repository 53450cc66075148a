// Package nats connects to a NATS server and publishes events through JetStream.
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NewClient connects to url and keeps reconnecting for the lifetime of the process.
// Connection state changes are reported through logger.
func NewClient(url, name string, timeout time.Duration, logger *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(timeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS connection lost", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection restored", slog.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

func NewJetStreamContext(nc *nats.Conn) (jetstream.JetStream, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return js, nil
}

// StreamOptions describes the stream that retains published events.
type StreamOptions struct {
	Name     string
	Subjects []string
	MaxAge   time.Duration
	// Duplicates is the deduplication window for message IDs; zero uses the server default.
	Duplicates time.Duration
}

// EnsureStream creates the stream, or updates it when it already exists.
func EnsureStream(ctx context.Context, js jetstream.JetStream, opts StreamOptions) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       opts.Name,
		Subjects:   opts.Subjects,
		Storage:    jetstream.FileStorage,
		MaxAge:     opts.MaxAge,
		Duplicates: opts.Duplicates,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure stream %s: %w", opts.Name, err)
	}
	return nil
}
