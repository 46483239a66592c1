package traffic

import (
	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/domain"
)

// CongestionSpeedThreshold is the harmonic speed (km/h) below which a
// measurement counts as congested.
const CongestionSpeedThreshold = 50

// HotspotFilter decides which traffic events qualify as hotspot candidates.
// It is a pure predicate: rejection is a normal outcome, not a failure.
type HotspotFilter struct{}

// NewHotspotFilter returns the admission filter for hotspot candidates.
func NewHotspotFilter() *HotspotFilter {
	return &HotspotFilter{}
}

// Accepts reports whether the event is hotspot-worthy:
// the sensor is available, the vehicle class is reliable, vehicles were
// actually counted, the speed measurements are within range, and the harmonic
// speed indicates congestion.
func (f *HotspotFilter) Accepts(event domain.TrafficEvent) bool {
	return event.SensorAvailable &&
		event.VehicleClass.Reliable() &&
		event.VehicleCount != 0 &&
		event.CountedInClass() &&
		!event.SpeedOutOfRange() &&
		event.VehicleHarmonicSpeed < CongestionSpeedThreshold
}
