package traffic

import (
	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/domain"
)

// ResolvedWaypoint is the outcome of matching one route waypoint against the
// sensor directory: either a sensor, or an explicit unresolved marker
// carrying the coordinates that failed to match.
type ResolvedWaypoint struct {
	Coordinates domain.GeographicCoordinates
	Sensor      *domain.TrafficSensor
}

// Resolved reports whether a sensor was found for this waypoint.
func (w ResolvedWaypoint) Resolved() bool {
	return w.Sensor != nil
}

// RouteSensorResolver maps route waypoints to known traffic sensors by exact
// coordinate identity. Since routes are expressed in sensor coordinates this
// needs no geo computation, only a lookup.
type RouteSensorResolver struct {
	byCoordinates map[domain.GeographicCoordinates]domain.TrafficSensor
	logger        *zap.Logger
}

// NewRouteSensorResolver indexes the given sensors by coordinates. When two
// sensors share coordinates the first one wins.
func NewRouteSensorResolver(sensors []domain.TrafficSensor, logger *zap.Logger) *RouteSensorResolver {
	index := make(map[domain.GeographicCoordinates]domain.TrafficSensor, len(sensors))
	for _, sensor := range sensors {
		if _, exists := index[sensor.GeographicCoordinates]; !exists {
			index[sensor.GeographicCoordinates] = sensor
		}
	}
	logger.Debug("indexed traffic sensors", zap.Int("count", len(index)))

	return &RouteSensorResolver{byCoordinates: index, logger: logger}
}

// Resolve maps each waypoint of the route to a sensor or an unresolved
// marker, one output element per waypoint, route order preserved. Waypoints
// are never deduplicated: a revisited location resolves again.
func (r *RouteSensorResolver) Resolve(route domain.Route) []ResolvedWaypoint {
	waypoints := make([]ResolvedWaypoint, 0, len(route))
	for _, coordinates := range route {
		waypoint := ResolvedWaypoint{Coordinates: coordinates}
		if sensor, ok := r.byCoordinates[coordinates]; ok {
			waypoint.Sensor = &sensor
		}
		waypoints = append(waypoints, waypoint)
	}
	return waypoints
}

// SensorsOnRoute resolves the route and collects the matched sensors in
// route order, returning the coordinates of any waypoints without a matching
// sensor alongside. Unresolved waypoints are skipped, not fatal: the caller
// decides whether partial resolution is acceptable.
func (r *RouteSensorResolver) SensorsOnRoute(vehicleID string, route domain.Route) (domain.VehicleRouteTrafficSensors, []domain.GeographicCoordinates) {
	sensors := make([]domain.TrafficSensor, 0, len(route))
	var unresolved []domain.GeographicCoordinates

	for _, waypoint := range r.Resolve(route) {
		if !waypoint.Resolved() {
			unresolved = append(unresolved, waypoint.Coordinates)
			continue
		}
		sensors = append(sensors, *waypoint.Sensor)
	}

	return domain.VehicleRouteTrafficSensors{
		VehicleID:      vehicleID,
		SensorsOnRoute: sensors,
	}, unresolved
}
