package domain

// GeographicCoordinates is a decimal (longitude, latitude) pair according to
// the WGS84-projection (EPSG:4326).
//
// Coordinates are compared by exact value, never by proximity: a route
// waypoint matches a sensor only when both carry the identical decimals.
// The struct is comparable so it can serve as a map key.
type GeographicCoordinates struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// TrafficSensor describes a measurement point installed by the Flemish road
// authorities. Sensors are loaded once from the configuration feed and are
// read-only afterwards.
type TrafficSensor struct {
	// ID is the unique identification number of the measurement point.
	ID int `json:"id"`
	// DescriptiveID is an internally used id. May be omitted in the future.
	DescriptiveID string `json:"descriptiveId"`
	// Name is a rough textual description of the location.
	Name string `json:"name"`
	// Ident8 is the unique road number of the "Wegenregister" roads registry.
	Ident8 string `json:"ident8"`
	// TrafficLane references the lane of the measurement point; the leading
	// character indicates the lane type (R regular, B bus, P hard shoulder, ..).
	TrafficLane string `json:"trafficLane"`

	GeographicCoordinates GeographicCoordinates `json:"geographicCoordinates"`
}
