package main

import (
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/spf13/cobra"

	"github.com/iWorld-y/search_chat/app/search_chat/internal/server"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket chat server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := newChatModel(cmd.Context())
		if err != nil {
			return err
		}

		klogger := log.With(logger.NewKratosLogger(),
			"service.id", id,
			"service.name", Name,
			"service.version", Version,
		)
		hs := server.NewHTTPServer(cfg.Server, newChatService(cm), klogger)

		logger.Log.Infof("服务启动，监听 %s，模型 %s", cfg.Server.Addr, cfg.LLM.Model)
		return newApp(klogger, hs).Run()
	},
}

func newApp(logger log.Logger, hs *http.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs),
	)
}
