package catalog

import (
	"github.com/smallbiznis/zoolspeed/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("catalog",
	fx.Provide(provide),
)

func provide(cfg config.Config, log *zap.Logger) (*Catalog, error) {
	c, err := Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	log.Named("catalog").Info("feature catalog loaded",
		zap.Int("features", c.Len()),
		zap.Int("admin", len(c.ByScope(ScopeAdmin))),
		zap.Int("general", len(c.ByScope(ScopeGeneral))),
	)
	return c, nil
}
