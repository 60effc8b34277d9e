package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/agentic-commerce/internal/domain/catalog"
	"github.com/yanqian/agentic-commerce/internal/domain/checkout"
	"github.com/yanqian/agentic-commerce/internal/domain/discovery"
	"github.com/yanqian/agentic-commerce/internal/domain/explainer"
	"github.com/yanqian/agentic-commerce/internal/domain/intent"
	"github.com/yanqian/agentic-commerce/internal/domain/linkcheck"
	"github.com/yanqian/agentic-commerce/internal/domain/session"
	"github.com/yanqian/agentic-commerce/internal/infra/browser"
	"github.com/yanqian/agentic-commerce/internal/infra/config"
	"github.com/yanqian/agentic-commerce/internal/infra/linkstore"
	"github.com/yanqian/agentic-commerce/internal/infra/llm/chatgpt"
	"github.com/yanqian/agentic-commerce/internal/infra/mockcatalog"
	"github.com/yanqian/agentic-commerce/internal/infra/pageclassifier"
	"github.com/yanqian/agentic-commerce/internal/infra/serpapi"
	"github.com/yanqian/agentic-commerce/internal/infra/sessionstore"
	"github.com/yanqian/agentic-commerce/internal/infra/webpage"
)

// provideChatGPTClient returns nil when no API key is configured; callers
// then run their offline paths.
func provideChatGPTClient(cfg *config.Config, logger *slog.Logger) *chatgpt.Client {
	if cfg.MockMode || strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Info("llm disabled, using offline parsing and template explanations", "mock_mode", cfg.MockMode)
		return nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		logger.Error("failed to create chatgpt client, llm disabled", "error", err)
		return nil
	}
	return client
}

func provideIntentConfig(cfg *config.Config) intent.Config {
	return intent.Config{
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		MaxInputLength: cfg.HTTP.MaxInputLength,
		MockMode:       cfg.MockMode,
	}
}

func provideIntentChatClient(client *chatgpt.Client) intent.ChatClient {
	if client == nil {
		return nil
	}
	return client
}

func provideExplainerConfig(cfg *config.Config) explainer.Config {
	return explainer.Config{
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.ExplainTokens,
		MockMode:  cfg.MockMode,
	}
}

func provideExplainerChatClient(client *chatgpt.Client) explainer.ChatClient {
	if client == nil {
		return nil
	}
	return client
}

func provideComparer(links linkcheck.Service) explainer.Comparer {
	return links
}

func provideDiscoveryConfig(cfg *config.Config) discovery.Config {
	return discovery.Config{
		MockMode:    cfg.MockMode,
		MaxResults:  cfg.Discovery.MaxResults,
		Concurrency: cfg.Discovery.Concurrency,
	}
}

func provideSearchProvider(cfg *config.Config, logger *slog.Logger) discovery.Provider {
	if cfg.MockMode || strings.TrimSpace(cfg.Discovery.SerpAPIKey) == "" {
		logger.Info("serpapi disabled, discovery uses the embedded catalog", "mock_mode", cfg.MockMode)
		return nil
	}
	client, err := serpapi.NewClient(serpapi.Config{
		APIKey:            cfg.Discovery.SerpAPIKey,
		BaseURL:           cfg.Discovery.BaseURL,
		MaxResults:        cfg.Discovery.MaxResults,
		RequestsPerSecond: cfg.Discovery.RequestsPerSecond,
		Burst:             cfg.Discovery.Burst,
	}, logger)
	if err != nil {
		logger.Error("failed to create serpapi client, discovery disabled", "error", err)
		return nil
	}
	return client
}

func provideCatalog() (discovery.Catalog, error) {
	c, err := mockcatalog.New()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func provideLinkCheckConfig(cfg *config.Config) linkcheck.Config {
	return linkcheck.Config{
		ValidTTL:       cfg.LinkCheck.ValidTTL,
		InvalidTTL:     cfg.LinkCheck.InvalidTTL,
		DomainBackoff:  cfg.LinkCheck.DomainBackoff,
		RequestTimeout: cfg.LinkCheck.RequestTimeout,
	}
}

func providePageFetcher(cfg *config.Config) linkcheck.PageFetcher {
	return webpage.NewFetcher(webpage.FetcherConfig{
		UserAgent:    cfg.LinkCheck.UserAgent,
		MaxBodyBytes: cfg.LinkCheck.MaxBodyBytes,
		Timeout:      cfg.LinkCheck.RequestTimeout,
	})
}

// provideRenderer returns nil unless screenshot verification is enabled.
func provideRenderer(cfg *config.Config, logger *slog.Logger) *browser.Renderer {
	vision := cfg.LinkCheck.Vision
	if !vision.Enabled {
		return nil
	}
	return browser.NewRenderer(browser.Config{
		Bin:            vision.BrowserBin,
		ViewportWidth:  vision.ViewportWidth,
		ViewportHeight: vision.ViewportHeight,
		SettleDelay:    vision.SettleDelay,
	}, logger)
}

func provideLinkCheckCapabilities(cfg *config.Config, client *chatgpt.Client, renderer *browser.Renderer, logger *slog.Logger) linkcheck.Capabilities {
	var caps linkcheck.Capabilities
	if client == nil {
		return caps
	}
	classifier := pageclassifier.New(client, cfg.LLM.ClassifierModel, cfg.LLM.VisionModel, logger)
	if cfg.LinkCheck.TextClassifier {
		caps.Text = classifier
	}
	if renderer != nil {
		caps.Renderer = renderer
		caps.Vision = classifier
	}
	return caps
}

func provideLinkStore(cfg *config.Config, logger *slog.Logger) linkcheck.Store {
	if cfg.LinkCheck.Redis.Enabled {
		if client, ok := connectValkey(cfg.LinkCheck.Redis.Addr, logger); ok {
			logger.Info("link check valkey store enabled", "addr", cfg.LinkCheck.Redis.Addr)
			return linkstore.NewValkeyStore(client, "linkcheck")
		}
	}
	return linkstore.NewMemoryStore()
}

func provideSessionStore(cfg *config.Config, logger *slog.Logger) session.Store {
	if cfg.Session.Redis.Enabled {
		if client, ok := connectValkey(cfg.Session.Redis.Addr, logger); ok {
			logger.Info("session valkey store enabled", "addr", cfg.Session.Redis.Addr)
			return sessionstore.NewValkeyStore(client, "session", cfg.Session.TTL)
		}
	}
	return sessionstore.NewMemoryStore()
}

func provideLivenessChecker(links linkcheck.Service) catalog.LivenessChecker {
	return links
}

func provideExtractor() catalog.Extractor {
	return webpage.NewExtractor()
}

func provideCheckoutConfig(cfg *config.Config) checkout.Config {
	return checkout.Config{StepDelay: cfg.Checkout.StepDelay}
}

// connectValkey dials and pings addr. A false result means the caller should
// fall back to memory.
func connectValkey(addr string, logger *slog.Logger) (valkey.Client, bool) {
	opt, err := buildValkeyOptions(addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return nil, false
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "addr", addr, "error", err)
		client.Close()
		return nil, false
	}
	return client, true
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
