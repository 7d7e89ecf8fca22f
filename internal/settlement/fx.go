package settlement

import (
	"github.com/opencampus/paygate/internal/settlement/repository"
	"github.com/opencampus/paygate/internal/settlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settlement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
