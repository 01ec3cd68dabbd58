package shotmemory

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/caddie-backend/internal/platform/logger"
	"github.com/yungbote/caddie-backend/internal/platform/pinecone"
)

// Namespaces of the two indices over the same shot ids.
const (
	NamespaceConditions = "shots_conditions"
	NamespaceFull       = "shots_full"
)

// Embedder turns texts into vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// Entry is one shot as written to vector memory.
type Entry struct {
	ID             string
	ConditionsText string
	FullText       string
	Metadata       map[string]any
}

// DualStore is the only writer of shot vectors. Every entry lands in both
// namespaces under the same id with the same metadata.
type DualStore struct {
	vec pinecone.VectorStore
	emb Embedder
	log *logger.Logger
}

func NewDualStore(vec pinecone.VectorStore, emb Embedder, baseLog *logger.Logger) *DualStore {
	return &DualStore{vec: vec, emb: emb, log: baseLog.With("module", "ShotDualStore")}
}

func (s *DualStore) embedPair(ctx context.Context, e Entry) (cond, full []float32, err error) {
	vecs, err := s.emb.Embed(ctx, []string{e.ConditionsText, e.FullText})
	if err != nil {
		return nil, nil, fmt.Errorf("embed shot %s: %w", e.ID, err)
	}
	if len(vecs) != 2 {
		return nil, nil, fmt.Errorf("embed shot %s: expected 2 vectors, got %d", e.ID, len(vecs))
	}
	return vecs[0], vecs[1], nil
}

// Put writes both vectors. Either write failing fails the call.
func (s *DualStore) Put(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("shot entry requires an id")
	}
	cond, full, err := s.embedPair(ctx, e)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v := pinecone.Vector{ID: e.ID, Values: cond, Metadata: withText(e.Metadata, e.ConditionsText)}
		if err := s.vec.Upsert(gctx, NamespaceConditions, []pinecone.Vector{v}); err != nil {
			return fmt.Errorf("upsert %s: %w", NamespaceConditions, err)
		}
		return nil
	})
	g.Go(func() error {
		v := pinecone.Vector{ID: e.ID, Values: full, Metadata: withText(e.Metadata, e.FullText)}
		if err := s.vec.Upsert(gctx, NamespaceFull, []pinecone.Vector{v}); err != nil {
			return fmt.Errorf("upsert %s: %w", NamespaceFull, err)
		}
		return nil
	})
	return g.Wait()
}

// Delete removes the shot from both namespaces. Only a failure on the full
// namespace is returned; a conditions failure is logged.
func (s *DualStore) Delete(ctx context.Context, id string) error {
	var g errgroup.Group
	g.Go(func() error {
		if err := s.vec.DeleteIDs(ctx, NamespaceConditions, []string{id}); err != nil {
			s.log.Warn("Conditions vector delete failed", "shot_id", id, "error", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.vec.DeleteIDs(ctx, NamespaceFull, []string{id}); err != nil {
			return fmt.Errorf("delete %s: %w", NamespaceFull, err)
		}
		return nil
	})
	return g.Wait()
}

// Rewrite replaces both vectors of an existing shot (delete, then insert).
// As with Delete, only the full namespace is required to succeed.
func (s *DualStore) Rewrite(ctx context.Context, e Entry) error {
	cond, full, err := s.embedPair(ctx, e)
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.Go(func() error {
		if err := s.replace(ctx, NamespaceConditions, pinecone.Vector{ID: e.ID, Values: cond, Metadata: withText(e.Metadata, e.ConditionsText)}); err != nil {
			s.log.Warn("Conditions vector rewrite failed", "shot_id", e.ID, "error", err)
		}
		return nil
	})
	g.Go(func() error {
		return s.replace(ctx, NamespaceFull, pinecone.Vector{ID: e.ID, Values: full, Metadata: withText(e.Metadata, e.FullText)})
	})
	return g.Wait()
}

func (s *DualStore) replace(ctx context.Context, ns string, v pinecone.Vector) error {
	if err := s.vec.DeleteIDs(ctx, ns, []string{v.ID}); err != nil {
		return fmt.Errorf("delete %s: %w", ns, err)
	}
	if err := s.vec.Upsert(ctx, ns, []pinecone.Vector{v}); err != nil {
		return fmt.Errorf("upsert %s: %w", ns, err)
	}
	return nil
}

// SearchConditions runs a user-scoped nearest-neighbour query on the
// conditions namespace.
func (s *DualStore) SearchConditions(ctx context.Context, query []float32, userID string, k int) ([]pinecone.VectorMatch, error) {
	return s.vec.QueryMatches(ctx, NamespaceConditions, query, k, map[string]any{MetaUserID: userID})
}

// FetchFull loads the full records for ids; unknown ids are omitted.
func (s *DualStore) FetchFull(ctx context.Context, ids []string) ([]pinecone.Vector, error) {
	return s.vec.Fetch(ctx, NamespaceFull, ids)
}

func (s *DualStore) embedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.emb.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 query vector, got %d", len(vecs))
	}
	return vecs[0], nil
}
