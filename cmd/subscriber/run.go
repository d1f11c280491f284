// cmd/subscriber/run.go
package subscriber

import (
	"context"
	"fmt"

	sub "github.com/curbsidehq/curbside/internal/app/subscriber"
	"github.com/curbsidehq/curbside/internal/shared/config"
	"github.com/curbsidehq/curbside/internal/shared/logger"
	"github.com/curbsidehq/curbside/internal/shared/rabbitmq"
)

// Run wires the notification subscriber and blocks until ctx is cancelled.
func Run(ctx context.Context, configPath string) error {
	log := logger.New("curbside-subscriber")

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		log.Error(ctx, "config_load_failed", "Failed to load configuration", err)
		return err
	}
	if !cfg.RabbitMQ.Enabled {
		return fmt.Errorf("subscriber mode requires rabbitmq.enabled: true")
	}

	client, err := rabbitmq.Connect(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err)
		return err
	}
	defer client.Close()

	return sub.New(client, log).Run(ctx)
}
