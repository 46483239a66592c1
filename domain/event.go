package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Special speed values used by the upstream feed, within the 0..254 km/h
// value domain.
const (
	// SpeedInitial marks a measurement that was never computed.
	SpeedInitial = 251
	// SpeedNoVehicles marks a class in which no vehicles were counted.
	SpeedNoVehicles = 252
	// SpeedNotComputable marks a measurement whose calculation failed.
	SpeedNotComputable = 254
	// SpeedRangeMax is the upper bound of plausible measurements; anything
	// above it is one of the special values.
	SpeedRangeMax = 200
)

// TrafficEvent is a single per-sensor, per-vehicle-class traffic measurement,
// as modeled by the Flemish road authorities.
//
// VehicleAverageSpeed is the arithmetic average Sum(vi)/n and
// VehicleHarmonicSpeed the harmonic average n/Sum(1/vi) of the individual
// vehicle speeds in this class, both in km/h with the special values above.
type TrafficEvent struct {
	TimeRegistration           *time.Time   `json:"timeRegistration"`
	SensorID                   int          `json:"sensorId"`
	SensorDescriptiveID        string       `json:"sensorDescriptiveId"`
	SensorAvailable            bool         `json:"sensorAvailable"`
	SensorDataRecent           bool         `json:"sensorDataRecent"`
	SensorLastTimeOfDataUpdate *time.Time   `json:"sensorLastTimeOfDataUpdate"`
	VehicleClass               VehicleClass `json:"vehicleClass"`
	VehicleCount               int          `json:"vehicleCount"`
	VehicleAverageSpeed        int          `json:"vehicleAverageSpeed"`
	VehicleHarmonicSpeed       int          `json:"vehicleHarmonicSpeed"`
}

// CountedInClass reports whether any vehicles of this class were actually
// measured during the interval.
func (e TrafficEvent) CountedInClass() bool {
	return e.VehicleCount > 0 &&
		e.VehicleAverageSpeed != SpeedNoVehicles &&
		e.VehicleHarmonicSpeed != SpeedNoVehicles
}

// SpeedOutOfRange reports whether either speed measurement lies outside the
// plausible 0..200 km/h range, i.e. carries one of the special values.
func (e TrafficEvent) SpeedOutOfRange() bool {
	return e.VehicleAverageSpeed > SpeedRangeMax || e.VehicleHarmonicSpeed > SpeedRangeMax
}

// String renders the event for advisory messages. The format is deterministic:
// equal events always render identically.
func (e TrafficEvent) String() string {
	return fmt.Sprintf("hotspot{sensorId=%d, sensor=%s, class=%s, count=%d, avgSpeed=%d, harmonicSpeed=%d}",
		e.SensorID, e.SensorDescriptiveID, e.VehicleClass, e.VehicleCount,
		e.VehicleAverageSpeed, e.VehicleHarmonicSpeed)
}

// ToJSON serializes the event for the broker.
func (e TrafficEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TrafficEventFromJSON deserializes a broker payload.
func TrafficEventFromJSON(data []byte) (TrafficEvent, error) {
	var e TrafficEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return TrafficEvent{}, fmt.Errorf("decode traffic event: %w", err)
	}
	return e, nil
}
