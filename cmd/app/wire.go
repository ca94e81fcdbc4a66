//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/adventure-ai/internal/bootstrap"
	"github.com/yanqian/adventure-ai/internal/domain/adventure"
	"github.com/yanqian/adventure-ai/internal/domain/similarity"
	"github.com/yanqian/adventure-ai/internal/infra/config"
	"github.com/yanqian/adventure-ai/internal/infra/llm/chatgpt"
	httpiface "github.com/yanqian/adventure-ai/internal/interface/http"
	"github.com/yanqian/adventure-ai/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAdventureConfig,
		provideChatGPTClient,
		provideCompleter,
		provideCatalog,
		adventure.NewService,
		similarity.NewService,
		wire.Bind(new(adventure.Completer), new(*chatgpt.Completer)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
