package coupon

import (
	"github.com/opencampus/paygate/internal/coupon/repository"
	"github.com/opencampus/paygate/internal/coupon/service"
	"go.uber.org/fx"
)

var Module = fx.Module("coupon.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
