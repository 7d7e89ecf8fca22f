package catalog

import (
	"github.com/opencampus/paygate/internal/catalog/repository"
	"github.com/opencampus/paygate/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
