// File: internal/services/vector/client.go
package vector

import (
	"context"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
)

// ClientService owns the Pinecone client and index connection.
type ClientService struct {
	config *Config
	client *pinecone.Client
	index  *pinecone.IndexConnection
	logger Logger
}

func NewClientService(config *Config, logger Logger) (*ClientService, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: config.APIKey,
	})
	if err != nil {
		return nil, NewConnectionError("failed to create client", err)
	}

	index, err := client.Index(pinecone.NewIndexConnParams{
		Host:      config.IndexHost,
		Namespace: config.Namespace,
	})
	if err != nil {
		return nil, NewConnectionError("failed to connect to index", err)
	}

	logger.Info("vector store client initialized",
		"host", config.IndexHost,
		"namespace", config.Namespace)

	return &ClientService{
		config: config,
		client: client,
		index:  index,
		logger: logger,
	}, nil
}

func (c *ClientService) Index() *pinecone.IndexConnection {
	return c.index
}

// HealthCheck verifies the index connection by requesting its stats.
func (c *ClientService) HealthCheck(ctx context.Context) error {
	if _, err := c.index.DescribeIndexStats(ctx); err != nil {
		c.logger.Error("vector store health check failed", "error", err)
		return NewConnectionError("health check failed", err)
	}
	c.logger.Debug("vector store health check passed")
	return nil
}

func (c *ClientService) Close() error {
	return c.index.Close()
}
