package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"nutrition-relay/internal/core/ai/cache"
	"nutrition-relay/internal/core/ai/provider"
	"nutrition-relay/internal/core/ai/queue"
	"nutrition-relay/internal/infrastructure/config"
	"nutrition-relay/internal/pkg/common"
)

type fakeProvider struct {
	content string
	replies []string // 依序回傳，用完後回傳 content
	err     error
	calls   int
	last    *provider.Request
}

func (f *fakeProvider) Generate(_ context.Context, req *provider.Request) (*provider.Response, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	if f.calls <= len(f.replies) {
		return &provider.Response{Content: f.replies[f.calls-1]}, nil
	}
	return &provider.Response{Content: f.content}, nil
}

func (f *fakeProvider) Name() string              { return "fake" }
func (f *fakeProvider) GetModel() string          { return "fake-model" }
func (f *fakeProvider) GetTimeout() time.Duration { return time.Second }
func (f *fakeProvider) Close() error              { return nil }

func newTestService(p provider.Provider, store cache.Store) *Service {
	return New(p, store, queue.NewManager(config.QueueConfig{Workers: 1, MaxSize: 1}), config.AIConfig{MaxTokens: 500, Temperature: 0.2})
}

func TestProcessRequest(t *testing.T) {
	p := &fakeProvider{content: `{"foodName":"김밥"}`}
	s := newTestService(p, nil)

	resp, err := s.ProcessRequest(context.Background(), "  분석  ", "data:image/jpeg;base64,AAAA")
	if err != nil {
		t.Fatalf("ProcessRequest() error = %v", err)
	}
	if resp.Content != `{"foodName":"김밥"}` || resp.CacheHit {
		t.Errorf("resp = %+v", resp)
	}
	if p.last.Prompt != "분석" || !p.last.JSONMode || p.last.MaxTokens != 500 || p.last.ImageURL == "" {
		t.Errorf("request = %+v", p.last)
	}
}

func TestProcessRequestWrapsProviderError(t *testing.T) {
	p := &fakeProvider{err: errors.New("connection refused")}
	s := newTestService(p, nil)

	_, err := s.ProcessRequest(context.Background(), "x", "")
	if !errors.Is(err, common.ErrAIServiceError) {
		t.Errorf("error = %v, want ErrAIServiceError", err)
	}
}

func TestProcessRequestUsesCache(t *testing.T) {
	store := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	defer store.Close()

	p := &fakeProvider{content: "cached"}
	s := newTestService(p, store)

	for i := 0; i < 2; i++ {
		resp, err := s.ProcessRequest(context.Background(), "same prompt", "")
		if err != nil {
			t.Fatalf("ProcessRequest() error = %v", err)
		}
		if resp.Content != "cached" {
			t.Errorf("Content = %q", resp.Content)
		}
		if wantHit := i == 1; resp.CacheHit != wantHit {
			t.Errorf("call %d CacheHit = %v, want %v", i, resp.CacheHit, wantHit)
		}
	}
	if p.calls != 1 {
		t.Errorf("provider calls = %d, want 1", p.calls)
	}
}

func TestProcessRequestSkipsCachingRejectedContent(t *testing.T) {
	store := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	defer store.Close()

	p := &fakeProvider{replies: []string{"Sorry, I cannot help with that.", `{"foodName":"김밥"}`}}
	onlyObjects := func(content string) error {
		if !strings.HasPrefix(content, "{") {
			return errors.New("not an object")
		}
		return nil
	}
	s := New(p, store, queue.NewManager(config.QueueConfig{Workers: 1, MaxSize: 1}), config.AIConfig{}, WithCacheValidator(onlyObjects))

	want := []struct {
		content  string
		cacheHit bool
	}{
		{"Sorry, I cannot help with that.", false},
		{`{"foodName":"김밥"}`, false},
		{`{"foodName":"김밥"}`, true},
	}
	for i, w := range want {
		resp, err := s.ProcessRequest(context.Background(), "김밥", "")
		if err != nil {
			t.Fatalf("call %d error = %v", i, err)
		}
		if resp.Content != w.content || resp.CacheHit != w.cacheHit {
			t.Errorf("call %d = %+v, want content %q hit %v", i, resp, w.content, w.cacheHit)
		}
	}
	if p.calls != 2 {
		t.Errorf("provider calls = %d, want 2", p.calls)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{config.ProviderOpenAI, "openai", false},
		{config.ProviderGemini, "gemini", false},
		{config.ProviderOpenRouter, "openrouter", false},
		{"claude", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := &config.Config{AI: config.AIConfig{Provider: tt.provider}}
			p, err := NewProvider(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider() error = %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}
