// Package gfreg wires the concrete service implementations together and
// exposes them through the shared registry. Binaries swap pieces (like
// the CIK listings feed) here, not in the services themselves.
package gfreg

import (
	"sync"

	"github.com/alpacahq/gofilings/service/cikmap"
	"github.com/alpacahq/gofilings/service/corporateaction"
	"github.com/alpacahq/gofilings/service/registry"
)

var Services registry.Registry

type gfRegistry struct{}

func (r *gfRegistry) CorporateAction() corporateaction.CorporateActionService {
	return corporateaction.Service()
}

var (
	mapperOnce sync.Once
	mapper     cikmap.Mapper

	// listings feed is injected by the binary before first use; until
	// then the mapper resolves nothing
	listingsLoader cikmap.LoadListingsFunc = func() ([]cikmap.Listing, error) {
		return nil, nil
	}
)

// UseListingsLoader installs the feed backing the CIK mapper. Must be
// called before the first CIKMap() lookup to take effect.
func UseListingsLoader(f cikmap.LoadListingsFunc) {
	listingsLoader = f
}

func (r *gfRegistry) CIKMap() cikmap.Mapper {
	mapperOnce.Do(func() {
		mapper = cikmap.NewMapper(func() ([]cikmap.Listing, error) {
			return listingsLoader()
		})
	})
	return mapper
}

func init() {
	Services = &gfRegistry{}
}
