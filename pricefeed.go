// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package main

import (
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"

	"pricefeed-api/internal/apierror"
	"pricefeed-api/internal/cli"
	"pricefeed-api/internal/config"
	"pricefeed-api/internal/handler"
	"pricefeed-api/internal/svc"
)

var configFile = flag.String("f", "etc/pricefeed.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)

	server := rest.MustNewServer(cfg.RestConf)
	defer server.Stop()

	httpx.SetErrorHandlerCtx(apierror.Handler)

	ctx := svc.NewServiceContext(*cfg)
	handler.RegisterHandlers(server, ctx)

	cli.LogConfigSummary(cfg)

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
