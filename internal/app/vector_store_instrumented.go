package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/caddie-backend/internal/observability"
	"github.com/yungbote/caddie-backend/internal/platform/pinecone"
)

type instrumentedVectorStore struct {
	provider string
	inner    pinecone.VectorStore
	metrics  *observability.Metrics
}

func instrumentVectorStore(provider string, inner pinecone.VectorStore) pinecone.VectorStore {
	if inner == nil {
		return nil
	}
	return &instrumentedVectorStore{
		provider: provider,
		inner:    inner,
		metrics:  observability.Current(),
	}
}

func (s *instrumentedVectorStore) Upsert(ctx context.Context, namespace string, vectors []pinecone.Vector) error {
	ctx, span, start := s.begin(ctx, "upsert", namespace, attribute.Int("vector.count", len(vectors)))
	err := s.inner.Upsert(ctx, namespace, vectors)
	s.finish(span, "upsert", err, start)
	return err
}

func (s *instrumentedVectorStore) QueryMatches(ctx context.Context, namespace string, q []float32, topK int, filter map[string]any) ([]pinecone.VectorMatch, error) {
	ctx, span, start := s.begin(ctx, "query_matches", namespace, attribute.Int("vector.top_k", topK))
	out, err := s.inner.QueryMatches(ctx, namespace, q, topK, filter)
	span.SetAttributes(attribute.Int("vector.matches", len(out)))
	s.finish(span, "query_matches", err, start)
	return out, err
}

func (s *instrumentedVectorStore) Fetch(ctx context.Context, namespace string, ids []string) ([]pinecone.Vector, error) {
	ctx, span, start := s.begin(ctx, "fetch", namespace, attribute.Int("vector.ids", len(ids)))
	out, err := s.inner.Fetch(ctx, namespace, ids)
	s.finish(span, "fetch", err, start)
	return out, err
}

func (s *instrumentedVectorStore) DeleteIDs(ctx context.Context, namespace string, ids []string) error {
	ctx, span, start := s.begin(ctx, "delete_ids", namespace, attribute.Int("vector.ids", len(ids)))
	err := s.inner.DeleteIDs(ctx, namespace, ids)
	s.finish(span, "delete_ids", err, start)
	return err
}

func (s *instrumentedVectorStore) begin(ctx context.Context, operation, namespace string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	attrs = append(attrs,
		attribute.String("vector.provider", s.provider),
		attribute.String("vector.namespace", namespace),
	)
	ctx, span := observability.StartSpan(ctx, "vector."+operation, attrs...)
	return ctx, span, time.Now()
}

func (s *instrumentedVectorStore) finish(span trace.Span, operation string, err error, start time.Time) {
	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	if s.metrics != nil {
		s.metrics.ObserveVectorOp(s.provider, operation, status, time.Since(start))
	}
}
