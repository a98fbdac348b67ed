package config

// LLMProviderType identifies which wire protocol a named LLM provider speaks.
type LLMProviderType string

const (
	LLMProviderTypeOpenAI    LLMProviderType = "openai"
	LLMProviderTypeAnthropic LLMProviderType = "anthropic"
	LLMProviderTypeGoogle    LLMProviderType = "google"
	LLMProviderTypeVertexAI  LLMProviderType = "vertexai"
	LLMProviderTypeAzure     LLMProviderType = "azure-openai"
)

// IsValid reports whether t is one of the supported provider types.
func (t LLMProviderType) IsValid() bool {
	switch t {
	case LLMProviderTypeOpenAI, LLMProviderTypeAnthropic, LLMProviderTypeGoogle, LLMProviderTypeVertexAI, LLMProviderTypeAzure:
		return true
	default:
		return false
	}
}

// CacheBackend identifies the Response Cache's durable storage technology.
type CacheBackend string

const (
	CacheBackendRedis    CacheBackend = "redis"
	CacheBackendInMemory CacheBackend = "in-memory"
)

// IsValid reports whether b is a supported cache backend.
func (b CacheBackend) IsValid() bool {
	return b == CacheBackendRedis || b == CacheBackendInMemory
}
