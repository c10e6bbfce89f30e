package registry

import (
	"github.com/alpacahq/gofilings/service/cikmap"
	"github.com/alpacahq/gofilings/service/corporateaction"
)

type Registry interface {
	CorporateAction() corporateaction.CorporateActionService
	CIKMap() cikmap.Mapper
}
