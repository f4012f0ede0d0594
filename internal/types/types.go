// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package types

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type PriceRequest struct {
	AssetClass string `path:"assetClass,options=stocks|crypto|forex"`
	Symbol     string `path:"symbol"`
	Period     string `form:"period,default=1d,options=1h|1d|1w"`
}

type CandleView struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

type PriceResponse struct {
	AssetClass   string       `json:"asset_class"`
	Symbol       string       `json:"symbol"`
	Period       string       `json:"period"`
	CurrentPrice float64      `json:"current_price"`
	Candles      []CandleView `json:"candles"`
}

type RankRequest struct {
	AssetClass string `path:"assetClass,options=stocks|crypto|forex"`
	Limit      int    `form:"limit,default=10,range=[1:50]"`
	Timeframe  string `form:"timeframe,default=1d,options=1h|1d|1w"`
}

type StableRequest struct {
	AssetClass   string  `path:"assetClass,options=stocks|crypto|forex"`
	Limit        int     `form:"limit,default=10,range=[1:50]"`
	VolThreshold float64 `form:"vol_threshold,default=2.0,range=[0:50]"`
	Timeframe    string  `form:"timeframe,default=1w,options=1d|1w"`
}

type RankedAssetView struct {
	Symbol        string    `json:"symbol"`
	Prices        []float64 `json:"prices"`
	CurrentPrice  float64   `json:"current_price"`
	PctChange     *float64  `json:"pct_change,omitempty"`
	VolatilityPct *float64  `json:"volatility_pct,omitempty"`
}

type RankedListResponse struct {
	Items        []RankedAssetView `json:"items"`
	TotalFetched int               `json:"total_fetched"`
}

type AssetsRequest struct {
	Category     string  `form:"category,options=gainers|losers|stable"`
	AssetClass   string  `form:"class,default=crypto,options=stocks|crypto|forex"`
	Symbols      string  `form:"symbols,optional"`
	Timeframe    string  `form:"timeframe,default=1d,options=1h|1d|1w"`
	VolThreshold float64 `form:"vol_threshold,default=2.0,range=[0:50]"`
}

type AssetsResponse struct {
	Category     string            `json:"category"`
	AssetClass   string            `json:"asset_class"`
	Items        []RankedAssetView `json:"items"`
	TotalFetched int               `json:"total_fetched"`
}
