package wallet

import (
	"github.com/opencampus/paygate/internal/wallet/repository"
	"github.com/opencampus/paygate/internal/wallet/service"
	"go.uber.org/fx"
)

var Module = fx.Module("wallet.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
