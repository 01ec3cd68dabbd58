package app

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/caddie-backend/internal/platform/logger"
	"github.com/yungbote/caddie-backend/internal/platform/pinecone"
)

func TestVectorProviderQdrantSmokeUpsertQueryDelete(t *testing.T) {
	if !vectorSmokeEnabled() {
		t.Skip("set CADDIE_RUN_VECTOR_SMOKE=true to run vector store smoke tests")
	}

	vs := mustResolveSmokeVectorStore(t)
	ctx := context.Background()
	vectorID := "smoke_shot_vector"
	namespace := "smoke_shots"
	vector := smokeVectorValues(t)

	err := vs.Upsert(ctx, namespace, []pinecone.Vector{{
		ID:       vectorID,
		Values:   vector,
		Metadata: map[string]any{"user_id": "smoke-user", "liked": true},
	}})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	t.Cleanup(func() {
		if err := vs.DeleteIDs(context.Background(), namespace, []string{vectorID}); err != nil {
			t.Errorf("DeleteIDs: %v", err)
		}
	})

	matches, err := vs.QueryMatches(ctx, namespace, vector, 3, map[string]any{"user_id": "smoke-user"})
	if err != nil {
		t.Fatalf("QueryMatches: %v", err)
	}
	found := false
	for _, m := range matches {
		if m.ID == vectorID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected vector id %q in query results, got=%+v", vectorID, matches)
	}

	fetched, err := vs.Fetch(ctx, namespace, []string{vectorID})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(fetched) != 1 || fetched[0].Metadata["user_id"] != "smoke-user" {
		t.Fatalf("Fetch: got=%+v", fetched)
	}
}

func TestResolveVectorStoreQdrantUnavailableIsExplicit(t *testing.T) {
	if !vectorSmokeEnabled() {
		t.Skip("set CADDIE_RUN_VECTOR_SMOKE=true to run vector store smoke tests")
	}
	_, err := resolveVectorStore(context.Background(), logger.Nop(), VectorConfig{
		Provider:         string(VectorProviderQdrant),
		QdrantURL:        "http://127.0.0.1:65534",
		QdrantCollection: "caddie_shots",
		QdrantVectorDim:  3,
		Timeout:          2 * time.Second,
	})
	var bootErr *VectorProviderBootstrapError
	if !errors.As(err, &bootErr) {
		t.Fatalf("expected VectorProviderBootstrapError, got=%T (%v)", err, err)
	}
	if bootErr.Code != VectorProviderBootstrapErrorConnectFailed {
		t.Fatalf("error code: want=%q got=%q", VectorProviderBootstrapErrorConnectFailed, bootErr.Code)
	}
}

func mustResolveSmokeVectorStore(t *testing.T) pinecone.VectorStore {
	t.Helper()
	cfg := VectorConfig{
		Provider:               string(VectorProviderQdrant),
		NamespacePrefix:        "caddie_smoke",
		Timeout:                10 * time.Second,
		QdrantURL:              smokeEnv("QDRANT_URL", "http://127.0.0.1:6333"),
		QdrantCollection:       smokeEnv("QDRANT_COLLECTION", "caddie_smoke"),
		QdrantVectorDim:        smokeVectorDim(t),
		QdrantCreateCollection: true,
	}
	vs, err := resolveVectorStore(context.Background(), logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("resolveVectorStore: %v", err)
	}
	return vs
}

func vectorSmokeEnabled() bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv("CADDIE_RUN_VECTOR_SMOKE")))
	return raw == "1" || raw == "true" || raw == "yes"
}

func smokeEnv(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func smokeVectorDim(t *testing.T) int {
	t.Helper()
	raw := smokeEnv("QDRANT_VECTOR_DIM", "8")
	dim, err := strconv.Atoi(raw)
	if err != nil || dim < 3 {
		t.Fatalf("QDRANT_VECTOR_DIM must be an integer >= 3, got=%q", raw)
	}
	return dim
}

func smokeVectorValues(t *testing.T) []float32 {
	t.Helper()
	out := make([]float32, smokeVectorDim(t))
	out[0] = 1.0
	out[1] = 0.25
	out[2] = 0.125
	return out
}
