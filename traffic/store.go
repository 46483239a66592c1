package traffic

import (
	"sync"

	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/domain"
)

// HotspotStore retains the latest admitted traffic event per
// (sensor id, vehicle class) pair.
//
// Replacement is last-write-wins in call-arrival order, not in measurement
// timestamp order: an older measurement arriving late overwrites a newer one.
// Entries never expire; they live until overwritten.
type HotspotStore struct {
	mu      sync.RWMutex
	sensors map[int]*sensorHotspots
	logger  *zap.Logger
}

// sensorHotspots holds the per-class events of one sensor behind its own
// lock, so writes to unrelated sensors never serialize.
type sensorHotspots struct {
	mu     sync.RWMutex
	events map[domain.VehicleClass]domain.TrafficEvent
}

// NewHotspotStore returns an empty store.
func NewHotspotStore(logger *zap.Logger) *HotspotStore {
	return &HotspotStore{
		sensors: make(map[int]*sensorHotspots),
		logger:  logger,
	}
}

// Store records the event under (event.SensorID, event.VehicleClass),
// replacing any prior value for that key. The event must already have passed
// the admission filter; the store performs no filtering itself.
func (s *HotspotStore) Store(event domain.TrafficEvent) {
	s.logger.Debug("storing hotspot event",
		zap.Int("sensor_id", event.SensorID),
		zap.String("vehicle_class", string(event.VehicleClass)))

	entry := s.sensorEntry(event.SensorID)

	entry.mu.Lock()
	entry.events[event.VehicleClass] = event
	entry.mu.Unlock()
}

// sensorEntry returns the per-sensor entry, creating it atomically on first
// write so two concurrent first inserts for the same sensor never lose an
// update.
func (s *HotspotStore) sensorEntry(sensorID int) *sensorHotspots {
	s.mu.RLock()
	entry, ok := s.sensors[sensorID]
	s.mu.RUnlock()
	if ok {
		return entry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok = s.sensors[sensorID]; ok {
		return entry
	}
	entry = &sensorHotspots{events: make(map[domain.VehicleClass]domain.TrafficEvent)}
	s.sensors[sensorID] = entry
	return entry
}

// HotspotsOfSensor returns a snapshot of the currently known hotspot events
// for the sensor, keyed by vehicle class. An unknown sensor id yields an
// empty map, never nil.
func (s *HotspotStore) HotspotsOfSensor(sensorID int) map[domain.VehicleClass]domain.TrafficEvent {
	s.mu.RLock()
	entry, ok := s.sensors[sensorID]
	s.mu.RUnlock()

	if !ok {
		return map[domain.VehicleClass]domain.TrafficEvent{}
	}

	entry.mu.RLock()
	snapshot := make(map[domain.VehicleClass]domain.TrafficEvent, len(entry.events))
	for class, event := range entry.events {
		snapshot[class] = event
	}
	entry.mu.RUnlock()

	s.logger.Debug("looked up hotspots",
		zap.Int("sensor_id", sensorID),
		zap.Int("found", len(snapshot)))

	return snapshot
}

// Len returns the number of sensors with at least one retained event.
func (s *HotspotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sensors)
}
