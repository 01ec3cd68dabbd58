package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/yungbote/caddie-backend/internal/platform/logger"
	"github.com/yungbote/caddie-backend/internal/platform/pinecone"
)

func TestVectorStoreUpsertRequestShape(t *testing.T) {
	var captured map[string]any
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPut {
			t.Fatalf("method: want=%s got=%s", http.MethodPut, r.Method)
		}
		if r.URL.Path != "/collections/shots/points" || r.URL.RawQuery != "wait=true" {
			t.Fatalf("url: got=%q", r.URL.String())
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return okResponse(t, map[string]any{"status": "acknowledged"}), nil
	})

	meta := map[string]any{"user_id": "u-1"}
	err := s.Upsert(context.Background(), "shots_full", []pinecone.Vector{
		{ID: "shot-1", Values: []float32{1, 2, 3}, Metadata: meta},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	points, _ := captured["points"].([]any)
	if len(points) != 1 {
		t.Fatalf("points length: want=1 got=%d", len(points))
	}
	first := points[0].(map[string]any)
	if first["id"] != s.pointID("caddie:shots_full", "shot-1") {
		t.Fatalf("point id mismatch: got=%v", first["id"])
	}
	payload := first["payload"].(map[string]any)
	if payload[payloadNamespaceKey] != "caddie:shots_full" || payload[payloadVectorIDKey] != "shot-1" {
		t.Fatalf("payload bookkeeping: got=%v", payload)
	}
	if _, exists := meta[payloadNamespaceKey]; exists {
		t.Fatalf("input metadata mutated")
	}
}

func TestVectorStoreUpsertRejectsDimensionMismatch(t *testing.T) {
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected")
		return nil, nil
	})
	err := s.Upsert(context.Background(), "shots_full", []pinecone.Vector{{ID: "x", Values: []float32{1}}})
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Code != OperationErrorValidation {
		t.Fatalf("expected validation OperationError, got=%v", err)
	}
}

func TestVectorStoreQueryMatchesFilterNamespaceAndScoreNormalization(t *testing.T) {
	var captured map[string]any
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/collections/shots/points/search" {
			t.Fatalf("path: got=%q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return okResponse(t, []map[string]any{
			{"id": "p-b", "score": 0.90, "payload": map[string]any{payloadVectorIDKey: "shot-b", "text": "B"}},
			{"id": "p-a", "score": 0.10, "payload": map[string]any{payloadVectorIDKey: "shot-a", "text": "A"}},
		}), nil
	})
	s.distance = "euclid"

	matches, err := s.QueryMatches(context.Background(), "shots_conditions", []float32{1, 2, 3}, 2, map[string]any{"user_id": "u-1"})
	if err != nil {
		t.Fatalf("QueryMatches: %v", err)
	}
	if len(matches) != 2 || matches[0].ID != "shot-a" || matches[1].ID != "shot-b" {
		t.Fatalf("match ordering mismatch: got=%+v", matches)
	}
	if matches[0].Metadata["text"] != "A" {
		t.Fatalf("metadata: got=%v", matches[0].Metadata)
	}
	if _, leaked := matches[0].Metadata[payloadVectorIDKey]; leaked {
		t.Fatalf("bookkeeping key leaked into metadata")
	}

	must, _ := captured["filter"].(map[string]any)["must"].([]any)
	nsCond := findConditionByKey(must, payloadNamespaceKey)
	if nsCond == nil || nsCond["match"].(map[string]any)["value"] != "caddie:shots_conditions" {
		t.Fatalf("namespace condition: got=%v", must)
	}
	if findConditionByKey(must, "user_id") == nil {
		t.Fatalf("missing user_id condition")
	}
}

func TestVectorStoreFetchFiltersForeignNamespaceAndKeepsOrder(t *testing.T) {
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost || r.URL.Path != "/collections/shots/points" {
			t.Fatalf("request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if ids, _ := body["ids"].([]any); len(ids) != 2 {
			t.Fatalf("ids: got=%v", body["ids"])
		}
		return okResponse(t, []map[string]any{
			{"id": "p2", "payload": map[string]any{payloadVectorIDKey: "shot-2", payloadNamespaceKey: "caddie:shots_full"}},
			{"id": "p1", "payload": map[string]any{payloadVectorIDKey: "shot-1", payloadNamespaceKey: "caddie:shots_full", "text": "full"}},
			{"id": "px", "payload": map[string]any{payloadVectorIDKey: "shot-1", payloadNamespaceKey: "caddie:other"}},
		}), nil
	})

	got, err := s.Fetch(context.Background(), "shots_full", []string{"shot-1", "shot-2"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 2 || got[0].ID != "shot-1" || got[1].ID != "shot-2" {
		t.Fatalf("fetch: got=%+v", got)
	}
	if got[0].Metadata["text"] != "full" {
		t.Fatalf("metadata: got=%v", got[0].Metadata)
	}
}

func TestVectorStoreDeleteIDsDedupesAndNamespacedPointIDs(t *testing.T) {
	var captured map[string]any
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/collections/shots/points/delete" || r.URL.RawQuery != "wait=true" {
			t.Fatalf("url: got=%q", r.URL.String())
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return okResponse(t, map[string]any{"status": "acknowledged"}), nil
	})

	if err := s.DeleteIDs(context.Background(), "shots_full", []string{"s-1", "s-1", " ", "s-2"}); err != nil {
		t.Fatalf("DeleteIDs: %v", err)
	}
	points, _ := captured["points"].([]any)
	if len(points) != 2 {
		t.Fatalf("points length: want=2 got=%d", len(points))
	}
	if points[0] != s.pointID("caddie:shots_full", "s-1") || points[1] != s.pointID("caddie:shots_full", "s-2") {
		t.Fatalf("point ids: got=%v", points)
	}
}

func TestVectorStoreQueryMatchesUnsupportedFilterError(t *testing.T) {
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected")
		return nil, nil
	})
	_, err := s.QueryMatches(context.Background(), "shots_conditions", []float32{1, 2, 3}, 3, map[string]any{
		"distance": map[string]any{"$gt": 1},
	})
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Code != OperationErrorUnsupportedFilter {
		t.Fatalf("expected unsupported filter error, got=%v", err)
	}
}

func TestVerifyReadyCreatesMissingCollection(t *testing.T) {
	var calls []string
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case r.URL.Path == "/readyz":
			return &http.Response{StatusCode: http.StatusOK, Header: make(http.Header), Body: io.NopCloser(bytes.NewReader(nil))}, nil
		case r.Method == http.MethodGet && r.URL.Path == "/collections/shots":
			return &http.Response{StatusCode: http.StatusNotFound, Header: make(http.Header), Body: io.NopCloser(bytes.NewReader([]byte(`{}`)))}, nil
		default:
			return okResponse(t, true), nil
		}
	})
	s.cfg.CreateCollection = true

	if err := s.verifyReady(context.Background()); err != nil {
		t.Fatalf("verifyReady: %v", err)
	}
	if len(calls) != 5 {
		t.Fatalf("calls: got=%v", calls)
	}
	if calls[2] != "PUT /collections/shots" {
		t.Fatalf("create call: got=%q", calls[2])
	}
	if s.distance != "Cosine" {
		t.Fatalf("distance: got=%q", s.distance)
	}
}

func TestClassifyHTTPCallError(t *testing.T) {
	var opErr *OperationError
	if err := classifyHTTPCallError("query", "timeout", context.DeadlineExceeded); !errors.As(err, &opErr) || opErr.Code != OperationErrorTimeout {
		t.Fatalf("timeout: got=%v", err)
	}
	if err := classifyHTTPCallError("query", "transport", fmt.Errorf("boom")); !errors.As(err, &opErr) || opErr.Code != OperationErrorTransportFailed {
		t.Fatalf("transport: got=%v", err)
	}
}

func newTestVectorStore(t *testing.T, roundTrip func(*http.Request) (*http.Response, error)) *vectorStore {
	t.Helper()
	return &vectorStore{
		log:      logger.Nop(),
		cfg:      Config{Collection: "shots", VectorDim: 3},
		baseURL:  "http://qdrant.local",
		nsPrefix: "caddie",
		http:     &http.Client{Transport: roundTripFunc(roundTrip)},
		distance: "Cosine",
	}
}

func okResponse(t *testing.T, result any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"result": result, "status": "ok", "time": 0.001})
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader(raw)),
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
