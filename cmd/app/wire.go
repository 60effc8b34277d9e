//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/agentic-commerce/internal/bootstrap"
	"github.com/yanqian/agentic-commerce/internal/domain/cart"
	"github.com/yanqian/agentic-commerce/internal/domain/catalog"
	"github.com/yanqian/agentic-commerce/internal/domain/checkout"
	"github.com/yanqian/agentic-commerce/internal/domain/discovery"
	"github.com/yanqian/agentic-commerce/internal/domain/explainer"
	"github.com/yanqian/agentic-commerce/internal/domain/intent"
	"github.com/yanqian/agentic-commerce/internal/domain/linkcheck"
	"github.com/yanqian/agentic-commerce/internal/domain/ranking"
	"github.com/yanqian/agentic-commerce/internal/infra/config"
	httpiface "github.com/yanqian/agentic-commerce/internal/interface/http"
	"github.com/yanqian/agentic-commerce/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideChatGPTClient,
		provideIntentConfig,
		provideIntentChatClient,
		provideExplainerConfig,
		provideExplainerChatClient,
		provideComparer,
		provideDiscoveryConfig,
		provideSearchProvider,
		provideCatalog,
		provideLinkCheckConfig,
		providePageFetcher,
		provideRenderer,
		provideLinkCheckCapabilities,
		provideLinkStore,
		provideSessionStore,
		provideLivenessChecker,
		provideExtractor,
		provideCheckoutConfig,
		linkcheck.NewService,
		intent.NewService,
		discovery.NewService,
		ranking.NewService,
		cart.NewService,
		explainer.NewService,
		catalog.NewService,
		checkout.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
