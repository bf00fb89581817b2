package llmx

import "fmt"

// Provider is the closed set of supported LLM backends. Selection is
// resolved here once instead of string-keyed branching at call sites.
type Provider string

const (
	ProviderAuto   Provider = "auto"
	ProviderOpenAI Provider = "openai"
	ProviderVLLM   Provider = "vllm"
)

// ParseProvider validates a configured provider string.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderAuto, ProviderOpenAI, ProviderVLLM:
		return Provider(s), nil
	case "":
		return ProviderAuto, nil
	default:
		return "", fmt.Errorf("unsupported llm provider %q", s)
	}
}
