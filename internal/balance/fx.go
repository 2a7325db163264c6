package balance

import (
	"github.com/smallbiznis/lotline/internal/balance/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("balance.store",
	fx.Provide(repository.Provide),
)
