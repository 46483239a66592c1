package traffic

import (
	"strings"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/domain"
)

// adviceMessagePrefix opens every route change suggestion.
const adviceMessagePrefix = "Suggest a new route instead of current route = "

// RouteChangeAdvisor decides whether the hotspots along a route warrant an
// alternate-route advisory. A single hotspot anywhere on the route is enough;
// there is no severity weighting.
type RouteChangeAdvisor struct{}

// NewRouteChangeAdvisor returns the advisory decision component.
func NewRouteChangeAdvisor() *RouteChangeAdvisor {
	return &RouteChangeAdvisor{}
}

// Advise produces route change advice when the route has at least one
// hotspot. The second return value reports whether advice was produced; an
// empty hotspot list yields none.
func (a *RouteChangeAdvisor) Advise(hotspots domain.VehicleRouteTrafficHotspots) (domain.VehicleRouteChangeAdvice, bool) {
	if len(hotspots.TrafficHotspotsOnRoute) < 1 {
		return domain.VehicleRouteChangeAdvice{}, false
	}

	rendered := make([]string, 0, len(hotspots.TrafficHotspotsOnRoute))
	for _, event := range hotspots.TrafficHotspotsOnRoute {
		rendered = append(rendered, event.String())
	}

	return domain.VehicleRouteChangeAdvice{
		VehicleID:             hotspots.VehicleID,
		RouteChangeSuggestion: adviceMessagePrefix + strings.Join(rendered, ","),
	}, true
}
