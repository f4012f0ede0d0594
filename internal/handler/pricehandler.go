package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"pricefeed-api/internal/apierror"
	"pricefeed-api/internal/logic"
	"pricefeed-api/internal/svc"
	"pricefeed-api/internal/types"
)

func PriceHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PriceRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, apierror.BadRequest(err.Error()))
			return
		}

		l := logic.NewPriceLogic(r.Context(), svcCtx)
		resp, err := l.Price(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
