// File: internal/services/vector/repository.go
package vector

import (
	"context"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

// VectorService implements Index on top of a Pinecone index connection.
type VectorService struct {
	client *ClientService
	retry  *RetryService
	config *Config
	logger Logger
}

func NewVectorService(client *ClientService, retry *RetryService, config *Config, logger Logger) *VectorService {
	return &VectorService{
		client: client,
		retry:  retry,
		config: config,
		logger: logger,
	}
}

// Upsert inserts or replaces one document vector; re-sending the same id
// never duplicates.
func (v *VectorService) Upsert(ctx context.Context, id string, values []float32, metadata map[string]any) error {
	return v.retry.RetryWithTimeout(func(ctx context.Context) error {
		v.logger.Debug("upserting vector", "id", id, "dimension", len(values))

		md, err := structpb.NewStruct(metadata)
		if err != nil {
			return NewOperationError("invalid vector metadata", err)
		}

		vectors := []*pinecone.Vector{{
			Id:       id,
			Values:   &values,
			Metadata: md,
		}}
		if _, err := v.client.Index().UpsertVectors(ctx, vectors); err != nil {
			v.logger.Error("vector upsert failed", "id", id, "error", err)
			return NewOperationError("upsert operation failed", err)
		}
		return nil
	})
}

func (v *VectorService) QuerySimilar(ctx context.Context, embedding []float32, topK int) ([]Match, error) {
	var matches []Match
	err := v.retry.RetryWithTimeout(func(ctx context.Context) error {
		v.logger.Debug("querying similar vectors", "topK", topK, "dimension", len(embedding))

		resp, err := v.client.Index().QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
			Vector:          embedding,
			TopK:            uint32(topK),
			IncludeMetadata: true,
		})
		if err != nil {
			v.logger.Error("similarity search failed", "error", err)
			return NewOperationError("search operation failed", err)
		}

		matches = make([]Match, 0, len(resp.Matches))
		for _, scored := range resp.Matches {
			if scored == nil || scored.Vector == nil {
				continue
			}
			matches = append(matches, Match{
				ID:       scored.Vector.Id,
				Score:    scored.Score,
				Metadata: metadataToMap(scored.Vector.Metadata),
			})
		}

		v.logger.Debug("similarity search completed", "results_count", len(matches))
		return nil
	})
	return matches, err
}

// DeleteBySession removes every document whose metadata session_id matches.
func (v *VectorService) DeleteBySession(ctx context.Context, sessionID string) error {
	return v.retry.RetryWithTimeout(func(ctx context.Context) error {
		v.logger.Debug("deleting session vectors", "session_id", sessionID)

		filter, err := structpb.NewStruct(map[string]any{
			"session_id": sessionID,
		})
		if err != nil {
			return NewOperationError("invalid delete filter", err)
		}

		if err := v.client.Index().DeleteVectorsByFilter(ctx, filter); err != nil {
			v.logger.Error("vector delete failed", "session_id", sessionID, "error", err)
			return NewOperationError("delete operation failed", err)
		}
		return nil
	})
}

// Count reports the number of documents in the configured namespace.
func (v *VectorService) Count(ctx context.Context) (int64, error) {
	var count int64
	err := v.retry.RetryWithTimeout(func(ctx context.Context) error {
		stats, err := v.client.Index().DescribeIndexStats(ctx)
		if err != nil {
			return NewOperationError("stats operation failed", err)
		}
		if ns, ok := stats.Namespaces[v.config.Namespace]; ok && ns != nil {
			count = int64(ns.VectorCount)
		}
		return nil
	})
	return count, err
}

func (v *VectorService) HealthCheck(ctx context.Context) error {
	return v.client.HealthCheck(ctx)
}

func metadataToMap(md *pinecone.Metadata) map[string]any {
	out := map[string]any{}
	if md == nil {
		return out
	}
	for key, value := range md.AsMap() {
		out[key] = value
	}
	return out
}
