package traffic

import (
	"testing"

	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/domain"
)

func directorySensor(id int, longitude, latitude float64) domain.TrafficSensor {
	return domain.TrafficSensor{
		ID:            id,
		DescriptiveID: "sensor",
		Ident8:        "A0140002",
		TrafficLane:   "R10",
		GeographicCoordinates: domain.GeographicCoordinates{
			Longitude: longitude,
			Latitude:  latitude,
		},
	}
}

func testDirectory() []domain.TrafficSensor {
	return []domain.TrafficSensor{
		directorySensor(1, 4.28, 51.18),
		directorySensor(2, 4.30, 51.20),
		directorySensor(3, 4.32, 51.22),
	}
}

func TestResolvePreservesRouteOrder(t *testing.T) {
	resolver := NewRouteSensorResolver(testDirectory(), zap.NewNop())

	route := domain.Route{
		{Longitude: 4.32, Latitude: 51.22},
		{Longitude: 4.28, Latitude: 51.18},
		{Longitude: 4.30, Latitude: 51.20},
	}

	waypoints := resolver.Resolve(route)
	if len(waypoints) != 3 {
		t.Fatalf("Resolve returned %d waypoints, want 3", len(waypoints))
	}

	wantIDs := []int{3, 1, 2}
	for i, waypoint := range waypoints {
		if !waypoint.Resolved() {
			t.Fatalf("waypoint %d unresolved", i)
		}
		if waypoint.Sensor.ID != wantIDs[i] {
			t.Errorf("waypoint %d resolved to sensor %d, want %d", i, waypoint.Sensor.ID, wantIDs[i])
		}
	}
}

func TestResolveRevisitedWaypointResolvesAgain(t *testing.T) {
	resolver := NewRouteSensorResolver(testDirectory(), zap.NewNop())

	location := domain.GeographicCoordinates{Longitude: 4.28, Latitude: 51.18}
	waypoints := resolver.Resolve(domain.Route{location, location})

	if len(waypoints) != 2 {
		t.Fatalf("Resolve returned %d waypoints, want 2", len(waypoints))
	}
	for i, waypoint := range waypoints {
		if !waypoint.Resolved() || waypoint.Sensor.ID != 1 {
			t.Errorf("waypoint %d = %+v, want sensor 1", i, waypoint)
		}
	}
}

func TestResolveMarksUnknownCoordinatesUnresolved(t *testing.T) {
	resolver := NewRouteSensorResolver(testDirectory(), zap.NewNop())

	unknown := domain.GeographicCoordinates{Longitude: 0.0, Latitude: 0.0}
	waypoints := resolver.Resolve(domain.Route{unknown})

	if waypoints[0].Resolved() {
		t.Error("waypoint with unknown coordinates resolved unexpectedly")
	}
	if waypoints[0].Coordinates != unknown {
		t.Errorf("unresolved marker lost coordinates: %+v", waypoints[0].Coordinates)
	}
}

func TestSensorsOnRouteSkipsUnresolvedWaypoints(t *testing.T) {
	resolver := NewRouteSensorResolver(testDirectory(), zap.NewNop())

	unknown := domain.GeographicCoordinates{Longitude: 9.99, Latitude: 9.99}
	route := domain.Route{
		{Longitude: 4.28, Latitude: 51.18},
		unknown,
		{Longitude: 4.30, Latitude: 51.20},
	}

	routeSensors, unresolved := resolver.SensorsOnRoute("LIC-ENSE-PLATE-1", route)

	if routeSensors.VehicleID != "LIC-ENSE-PLATE-1" {
		t.Errorf("vehicle id = %q", routeSensors.VehicleID)
	}
	if len(routeSensors.SensorsOnRoute) != 2 {
		t.Fatalf("resolved %d sensors, want 2", len(routeSensors.SensorsOnRoute))
	}
	if routeSensors.SensorsOnRoute[0].ID != 1 || routeSensors.SensorsOnRoute[1].ID != 2 {
		t.Errorf("sensors out of order: %+v", routeSensors.SensorsOnRoute)
	}
	if len(unresolved) != 1 || unresolved[0] != unknown {
		t.Errorf("unresolved = %+v, want the unknown waypoint", unresolved)
	}
}

func TestResolverFirstSensorWinsForDuplicateCoordinates(t *testing.T) {
	shared := domain.GeographicCoordinates{Longitude: 4.28, Latitude: 51.18}
	sensors := []domain.TrafficSensor{
		directorySensor(1, shared.Longitude, shared.Latitude),
		directorySensor(2, shared.Longitude, shared.Latitude),
	}
	resolver := NewRouteSensorResolver(sensors, zap.NewNop())

	waypoints := resolver.Resolve(domain.Route{shared})
	if !waypoints[0].Resolved() || waypoints[0].Sensor.ID != 1 {
		t.Errorf("duplicate coordinates resolved to %+v, want sensor 1", waypoints[0])
	}
}
