package entitlement

import (
	"github.com/smallbiznis/zoolspeed/internal/config"
	"github.com/smallbiznis/zoolspeed/internal/entitlement/repository"
	"github.com/smallbiznis/zoolspeed/internal/entitlement/service"
	"github.com/smallbiznis/zoolspeed/internal/entitlement/token"
	"go.uber.org/fx"
)

var Module = fx.Module("entitlement.service",
	fx.Provide(provideTokens),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

func provideTokens(cfg config.Config) (*token.Generator, error) {
	return token.NewGenerator(cfg.TokenPepper)
}
