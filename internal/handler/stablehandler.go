package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"pricefeed-api/internal/apierror"
	"pricefeed-api/internal/logic"
	"pricefeed-api/internal/svc"
	"pricefeed-api/internal/types"
)

func StableHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.StableRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, apierror.BadRequest(err.Error()))
			return
		}

		l := logic.NewStableLogic(r.Context(), svcCtx)
		resp, err := l.Stable(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
