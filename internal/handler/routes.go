// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"pricefeed-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/health",
				Handler: HealthHandler(serverCtx),
			},
		},
	)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/api/v1/price/:assetClass/:symbol",
				Handler: PriceHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/v1/gainers/:assetClass",
				Handler: GainersHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/v1/losers/:assetClass",
				Handler: LosersHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/v1/stable/:assetClass",
				Handler: StableHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/assets",
				Handler: AssetsHandler(serverCtx),
			},
		},
	)
}
