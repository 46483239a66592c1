package domain

import (
	"encoding/json"
	"fmt"
)

// Route is an ordered, non-empty list of waypoints: element 0 is the
// vehicle's current location, the remaining elements make up the rest of the
// path to the destination, in travel order.
type Route []GeographicCoordinates

// VehicleRouteChangeEvent signifies that a vehicle selected a new route,
// progressed along its route, or reached its destination (route shrunk to
// the current location only).
type VehicleRouteChangeEvent struct {
	VehicleID    string       `json:"vehicleId"`
	VehicleClass VehicleClass `json:"vehicleClass"`
	Route        Route        `json:"route"`
}

// CurrentLocation returns the vehicle's current position, the first waypoint
// of the route.
func (e VehicleRouteChangeEvent) CurrentLocation() GeographicCoordinates {
	return e.Route[0]
}

// VehicleRouteChangeEventFromJSON deserializes a broker payload.
func VehicleRouteChangeEventFromJSON(data []byte) (VehicleRouteChangeEvent, error) {
	var e VehicleRouteChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return VehicleRouteChangeEvent{}, fmt.Errorf("decode route change event: %w", err)
	}
	return e, nil
}

// VehicleRouteTrafficSensors carries the traffic sensors found along a
// vehicle's route, in route order.
type VehicleRouteTrafficSensors struct {
	VehicleID      string          `json:"vehicleId"`
	SensorsOnRoute []TrafficSensor `json:"sensorsOnRoute"`
}

// VehicleRouteTrafficHotspots carries the hotspot measurements found along a
// vehicle's route, in route order. Waypoints without a hotspot are absent.
type VehicleRouteTrafficHotspots struct {
	VehicleID              string         `json:"vehicleId"`
	TrafficHotspotsOnRoute []TrafficEvent `json:"trafficHotspotsOnRoute"`
}

// VehicleRouteChangeAdvice is the advice sent to a driver to select another
// route, based on the hotspots found along the current one.
type VehicleRouteChangeAdvice struct {
	VehicleID             string `json:"vehicleId"`
	RouteChangeSuggestion string `json:"suggestion"`
}

// ToJSON serializes the advice for the broker.
func (a VehicleRouteChangeAdvice) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}

// VehicleRouteChangeAdviceFromJSON deserializes a broker payload.
func VehicleRouteChangeAdviceFromJSON(data []byte) (VehicleRouteChangeAdvice, error) {
	var a VehicleRouteChangeAdvice
	if err := json.Unmarshal(data, &a); err != nil {
		return VehicleRouteChangeAdvice{}, fmt.Errorf("decode route change advice: %w", err)
	}
	return a, nil
}
