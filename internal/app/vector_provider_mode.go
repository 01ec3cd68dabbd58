package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/caddie-backend/internal/platform/pinecone"
	"github.com/yungbote/caddie-backend/internal/platform/qdrant"
)

type VectorProvider string

const (
	VectorProviderPinecone VectorProvider = "pinecone"
	VectorProviderQdrant   VectorProvider = "qdrant"
)

type VectorProviderConfigErrorCode string

const (
	VectorProviderConfigErrorInvalidProvider      VectorProviderConfigErrorCode = "invalid_provider"
	VectorProviderConfigErrorMissingQdrantURL     VectorProviderConfigErrorCode = "missing_qdrant_url"
	VectorProviderConfigErrorInvalidQdrantURL     VectorProviderConfigErrorCode = "invalid_qdrant_url"
	VectorProviderConfigErrorMissingQdrantColl    VectorProviderConfigErrorCode = "missing_qdrant_collection"
	VectorProviderConfigErrorInvalidQdrantVector  VectorProviderConfigErrorCode = "invalid_qdrant_vector_dim"
	VectorProviderConfigErrorUnknownQdrantFailure VectorProviderConfigErrorCode = "qdrant_config_error"
	VectorProviderConfigErrorMissingPineconeKey   VectorProviderConfigErrorCode = "missing_pinecone_api_key"
	VectorProviderConfigErrorMissingPineconeIndex VectorProviderConfigErrorCode = "missing_pinecone_index"
)

type VectorProviderConfigError struct {
	Code     VectorProviderConfigErrorCode
	Provider VectorProvider
	Cause    error
}

func (e *VectorProviderConfigError) Error() string {
	if e == nil {
		return "invalid vector provider config"
	}
	return fmt.Sprintf("invalid vector provider config (code=%s provider=%q): %v", e.Code, e.Provider, e.Cause)
}

func (e *VectorProviderConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// VectorProviderConfig is the validated settings for exactly one provider.
type VectorProviderConfig struct {
	Provider      VectorProvider
	Qdrant        qdrant.Config
	Pinecone      pinecone.Config
	PineconeStore pinecone.StoreConfig
}

func resolveVectorProviderConfig(cfg VectorConfig) (VectorProviderConfig, error) {
	switch provider := VectorProvider(strings.ToLower(strings.TrimSpace(cfg.Provider))); provider {
	case VectorProviderQdrant:
		qcfg := qdrant.Config{
			URL:              cfg.QdrantURL,
			APIKey:           cfg.QdrantAPIKey,
			Collection:       cfg.QdrantCollection,
			NamespacePrefix:  cfg.NamespacePrefix,
			VectorDim:        cfg.QdrantVectorDim,
			Timeout:          cfg.Timeout,
			CreateCollection: cfg.QdrantCreateCollection,
		}.Normalize()
		if err := qdrant.ValidateConfig(qcfg); err != nil {
			return VectorProviderConfig{}, mapQdrantConfigError(err)
		}
		return VectorProviderConfig{Provider: provider, Qdrant: qcfg}, nil

	case VectorProviderPinecone:
		if strings.TrimSpace(cfg.PineconeAPIKey) == "" {
			return VectorProviderConfig{}, &VectorProviderConfigError{
				Code:     VectorProviderConfigErrorMissingPineconeKey,
				Provider: provider,
				Cause:    errors.New("PINECONE_API_KEY is required"),
			}
		}
		if strings.TrimSpace(cfg.PineconeIndexName) == "" {
			return VectorProviderConfig{}, &VectorProviderConfigError{
				Code:     VectorProviderConfigErrorMissingPineconeIndex,
				Provider: provider,
				Cause:    errors.New("PINECONE_INDEX_NAME is required"),
			}
		}
		return VectorProviderConfig{
			Provider: provider,
			Pinecone: pinecone.Config{
				APIKey:     strings.TrimSpace(cfg.PineconeAPIKey),
				APIVersion: strings.TrimSpace(cfg.PineconeAPIVersion),
				BaseURL:    strings.TrimSpace(cfg.PineconeBaseURL),
				Timeout:    cfg.Timeout,
			},
			PineconeStore: pinecone.StoreConfig{
				IndexName:       strings.TrimSpace(cfg.PineconeIndexName),
				IndexHost:       strings.TrimSpace(cfg.PineconeIndexHost),
				NamespacePrefix: strings.TrimSpace(cfg.NamespacePrefix),
			},
		}, nil

	default:
		return VectorProviderConfig{}, &VectorProviderConfigError{
			Code:     VectorProviderConfigErrorInvalidProvider,
			Provider: provider,
			Cause:    fmt.Errorf("unsupported vector provider %q; expected qdrant or pinecone", cfg.Provider),
		}
	}
}

func mapQdrantConfigError(err error) error {
	code := VectorProviderConfigErrorUnknownQdrantFailure
	var qerr *qdrant.ConfigError
	if errors.As(err, &qerr) {
		switch qerr.Code {
		case qdrant.ConfigErrorMissingURL:
			code = VectorProviderConfigErrorMissingQdrantURL
		case qdrant.ConfigErrorInvalidURL:
			code = VectorProviderConfigErrorInvalidQdrantURL
		case qdrant.ConfigErrorMissingCollection:
			code = VectorProviderConfigErrorMissingQdrantColl
		case qdrant.ConfigErrorInvalidVectorDim:
			code = VectorProviderConfigErrorInvalidQdrantVector
		}
	}
	return &VectorProviderConfigError{Code: code, Provider: VectorProviderQdrant, Cause: err}
}
