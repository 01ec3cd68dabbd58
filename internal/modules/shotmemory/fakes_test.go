package shotmemory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/yungbote/caddie-backend/internal/platform/pinecone"
)

// memVectorStore is an in-memory pinecone.VectorStore scoring by cosine
// similarity and honouring equality filters.
type memVectorStore struct {
	mu        sync.Mutex
	data      map[string]map[string]pinecone.Vector
	failOn    map[string]error // "op:namespace"
	deletes   []string
	upserts   []string
	scoreOver map[string]float64
}

func newMemVectorStore() *memVectorStore {
	return &memVectorStore{
		data:      map[string]map[string]pinecone.Vector{},
		failOn:    map[string]error{},
		scoreOver: map[string]float64{},
	}
}

func (s *memVectorStore) fail(op, ns string) error {
	return s.failOn[op+":"+ns]
}

func (s *memVectorStore) Upsert(_ context.Context, ns string, vectors []pinecone.Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("upsert", ns); err != nil {
		return err
	}
	if s.data[ns] == nil {
		s.data[ns] = map[string]pinecone.Vector{}
	}
	for _, v := range vectors {
		s.data[ns][v.ID] = v
		s.upserts = append(s.upserts, ns+"/"+v.ID)
	}
	return nil
}

func (s *memVectorStore) QueryMatches(_ context.Context, ns string, q []float32, topK int, filter map[string]any) ([]pinecone.VectorMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("query", ns); err != nil {
		return nil, err
	}
	var out []pinecone.VectorMatch
	for id, v := range s.data[ns] {
		if !matchesFilter(v.Metadata, filter) {
			continue
		}
		score := cosine(q, v.Values)
		if override, ok := s.scoreOver[id]; ok {
			score = override
		}
		out = append(out, pinecone.VectorMatch{ID: id, Score: score, Metadata: v.Metadata})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (s *memVectorStore) Fetch(_ context.Context, ns string, ids []string) ([]pinecone.Vector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("fetch", ns); err != nil {
		return nil, err
	}
	var out []pinecone.Vector
	for _, id := range ids {
		if v, ok := s.data[ns][id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *memVectorStore) DeleteIDs(_ context.Context, ns string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("delete", ns); err != nil {
		return err
	}
	for _, id := range ids {
		delete(s.data[ns], id)
		s.deletes = append(s.deletes, ns+"/"+id)
	}
	return nil
}

func (s *memVectorStore) has(ns, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[ns][id]
	return ok
}

func (s *memVectorStore) get(ns, id string) pinecone.Vector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[ns][id]
}

func matchesFilter(meta, filter map[string]any) bool {
	for k, want := range filter {
		if meta[k] != want {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// constEmbedder maps every text to the same unit vector unless overridden.
type constEmbedder struct {
	byText map[string][]float32
	err    error
	calls  int
}

func (e *constEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		if v, ok := e.byText[in]; ok {
			out[i] = v
			continue
		}
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type stubGenerator struct {
	reply  map[string]any
	err    error
	calls  int
	system string
	prompt string
	schema string
}

func (g *stubGenerator) GenerateJSON(_ context.Context, system, user, schemaName string, _ map[string]any) (map[string]any, error) {
	g.calls++
	g.system = system
	g.prompt = user
	g.schema = schemaName
	return g.reply, g.err
}

func ranking(indices ...any) map[string]any {
	return map[string]any{"indices": indices}
}

var errBoom = errors.New("boom")
