package entitlement

import (
	"github.com/opencampus/paygate/internal/entitlement/repository"
	"github.com/opencampus/paygate/internal/entitlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("entitlement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
