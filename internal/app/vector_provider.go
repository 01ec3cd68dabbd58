package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	neturl "net/url"
	"strings"

	"github.com/yungbote/caddie-backend/internal/platform/logger"
	"github.com/yungbote/caddie-backend/internal/platform/pinecone"
	"github.com/yungbote/caddie-backend/internal/platform/qdrant"
)

var (
	newPineconeClient      = pinecone.New
	newPineconeVectorStore = pinecone.NewVectorStore
	newQdrantVectorStore   = qdrant.NewVectorStore
)

type VectorProviderBootstrapErrorCode string

const (
	VectorProviderBootstrapErrorConfig             VectorProviderBootstrapErrorCode = "config_invalid"
	VectorProviderBootstrapErrorConnectFailed      VectorProviderBootstrapErrorCode = "connect_failed"
	VectorProviderBootstrapErrorProviderInitFailed VectorProviderBootstrapErrorCode = "provider_init_failed"
)

type VectorProviderBootstrapError struct {
	Code     VectorProviderBootstrapErrorCode
	Provider string
	Cause    error
}

func (e *VectorProviderBootstrapError) Error() string {
	if e == nil {
		return "vector provider bootstrap failed"
	}
	return fmt.Sprintf("vector provider bootstrap failed (code=%s provider=%q): %v", e.Code, e.Provider, e.Cause)
}

func (e *VectorProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveVectorStore builds the configured provider and wraps it with
// operation metrics. Shot memory cannot run without a store, so every
// failure is returned.
func resolveVectorStore(ctx context.Context, log *logger.Logger, cfg VectorConfig) (pinecone.VectorStore, error) {
	pcfg, err := resolveVectorProviderConfig(cfg)
	if err != nil {
		var cfgErr *VectorProviderConfigError
		provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
		if errors.As(err, &cfgErr) {
			provider = string(cfgErr.Provider)
		}
		bootErr := &VectorProviderBootstrapError{Code: VectorProviderBootstrapErrorConfig, Provider: provider, Cause: err}
		log.Error("Vector store provider selection failed", "provider", provider, "error_code", bootErr.Code, "error", err)
		return nil, bootErr
	}
	provider := string(pcfg.Provider)

	var vs pinecone.VectorStore
	switch pcfg.Provider {
	case VectorProviderQdrant:
		log.Info("Selecting vector store provider",
			"provider", provider,
			"qdrant_url", pcfg.Qdrant.URL,
			"qdrant_collection", pcfg.Qdrant.Collection,
			"namespace_prefix", pcfg.Qdrant.NamespacePrefix,
			"vector_dim", pcfg.Qdrant.VectorDim,
		)
		vs, err = newQdrantVectorStore(ctx, log, pcfg.Qdrant)
	case VectorProviderPinecone:
		log.Info("Selecting vector store provider",
			"provider", provider,
			"index_name", pcfg.PineconeStore.IndexName,
			"namespace_prefix", pcfg.PineconeStore.NamespacePrefix,
		)
		var pc pinecone.Client
		pc, err = newPineconeClient(log, pcfg.Pinecone)
		if err == nil {
			vs, err = newPineconeVectorStore(ctx, log, pc, pcfg.PineconeStore)
		}
	}
	if err != nil {
		classified := classifyVectorProviderBootstrapError(provider, err)
		log.Error("Vector store provider bootstrap failed",
			"provider", provider,
			"error_code", vectorProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return instrumentVectorStore(provider, vs), nil
}

func classifyVectorProviderBootstrapError(provider string, err error) error {
	code := VectorProviderBootstrapErrorProviderInitFailed
	var urlErr *neturl.Error
	var netErr net.Error
	var qcfgErr *qdrant.ConfigError
	errLower := strings.ToLower(err.Error())
	switch {
	case errors.As(err, &qcfgErr):
		code = VectorProviderBootstrapErrorConfig
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		code = VectorProviderBootstrapErrorConnectFailed
	case strings.Contains(errLower, "ready check failed"), strings.Contains(errLower, "connection refused"):
		code = VectorProviderBootstrapErrorConnectFailed
	}
	return &VectorProviderBootstrapError{Code: code, Provider: provider, Cause: err}
}

func vectorProviderBootstrapErrorCode(err error) VectorProviderBootstrapErrorCode {
	var bootstrapErr *VectorProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return VectorProviderBootstrapErrorProviderInitFailed
}
