package config

import (
	"pricefeed-api/pkg/quote"
)

// MustLoadMarket loads etc/market.yaml from the project root and panics on
// error. It lets tools and tests get at the provider config without
// requiring a full application config file.
func MustLoadMarket() *quote.Config {
	return quote.MustLoad()
}
