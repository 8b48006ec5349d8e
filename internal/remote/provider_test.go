package remote

import (
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestClientProvider_AccessorsAreAlwaysCurrent(t *testing.T) {
	client1 := openai.NewClient("key-1")
	client2 := openai.NewClient("key-2")

	provider := NewClientProvider(client1, "https://example.openai.azure.com", "2024-02-01")
	// Consumer is constructed once, before the swap.
	model := NewAzureModel(provider, "gpt-4")

	if model.Client() != client1 {
		t.Error("first access must resolve the original client")
	}

	provider.Swap(client2)

	if model.Client() != client2 {
		t.Error("access after swap must resolve the new client")
	}
	if model.Client() != client2 {
		t.Error("no access may ever fall back to a cached client")
	}
}

func TestClientProvider_StaticAccessors(t *testing.T) {
	provider := NewClientProvider(openai.NewClient("k"), "https://example.openai.azure.com", "2024-02-01")

	if provider.BaseURL() != "https://example.openai.azure.com" {
		t.Errorf("unexpected base url %q", provider.BaseURL())
	}
	if provider.APIVersion() != "2024-02-01" {
		t.Errorf("unexpected api version %q", provider.APIVersion())
	}
}

func TestClientProvider_ConcurrentSwapWhileReading(t *testing.T) {
	old := openai.NewClient("old")
	new_ := openai.NewClient("new")
	provider := NewClientProvider(old, "", "")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c := provider.Client()
				// Either instance is acceptable; nil or anything else is not.
				if c != old && c != new_ {
					t.Error("read observed neither the old nor the new client")
					return
				}
			}
		}()
	}
	for i := 0; i < 1000; i++ {
		provider.Swap(new_)
		provider.Swap(old)
	}
	provider.Swap(new_)
	wg.Wait()

	if provider.Client() != new_ {
		t.Error("final read must observe the last swap")
	}
}
