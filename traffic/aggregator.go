package traffic

import (
	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/domain"
)

// DefaultClassPriority orders the vehicle classes considered when one sensor
// holds hotspots for several classes. Passenger-car congestion is the primary
// driver signal, so cars come first.
var DefaultClassPriority = []domain.VehicleClass{
	domain.ClassCar,
	domain.ClassMinivan,
	domain.ClassRigidLorries,
	domain.ClassTruckOrBus,
}

// HotspotAggregator selects, for each sensor along a route, one
// representative hotspot measurement from the store.
type HotspotAggregator struct {
	store    *HotspotStore
	priority []domain.VehicleClass
	logger   *zap.Logger
}

// NewHotspotAggregator builds an aggregator using DefaultClassPriority.
func NewHotspotAggregator(store *HotspotStore, logger *zap.Logger) *HotspotAggregator {
	return NewHotspotAggregatorWithPriority(store, DefaultClassPriority, logger)
}

// NewHotspotAggregatorWithPriority builds an aggregator with a custom class
// priority order. The first class of the order present in the store wins.
func NewHotspotAggregatorWithPriority(store *HotspotStore, priority []domain.VehicleClass, logger *zap.Logger) *HotspotAggregator {
	return &HotspotAggregator{store: store, priority: priority, logger: logger}
}

// Aggregate finds the traffic hotspots along a vehicle's route. Sensors
// without a hotspot in any prioritized class contribute a synthetic
// ClassUnknown placeholder which is dropped from the result; the remaining
// hotspots retain route order.
func (a *HotspotAggregator) Aggregate(routeSensors domain.VehicleRouteTrafficSensors) domain.VehicleRouteTrafficHotspots {
	hotspots := make([]domain.TrafficEvent, 0, len(routeSensors.SensorsOnRoute))
	for _, sensor := range routeSensors.SensorsOnRoute {
		event := a.hotspotEventOrUnknown(sensor)
		if event.VehicleClass == domain.ClassUnknown {
			continue
		}
		hotspots = append(hotspots, event)
	}

	result := domain.VehicleRouteTrafficHotspots{
		VehicleID:              routeSensors.VehicleID,
		TrafficHotspotsOnRoute: hotspots,
	}

	a.logger.Debug("aggregated traffic hotspots",
		zap.String("vehicle_id", result.VehicleID),
		zap.Int("hotspots", len(result.TrafficHotspotsOnRoute)))

	return result
}

// hotspotEventOrUnknown selects the stored event of the highest-priority
// class present for the sensor, or a no-hotspot placeholder when none of the
// prioritized classes is present.
func (a *HotspotAggregator) hotspotEventOrUnknown(sensor domain.TrafficSensor) domain.TrafficEvent {
	stored := a.store.HotspotsOfSensor(sensor.ID)

	for _, class := range a.priority {
		if event, ok := stored[class]; ok {
			return event
		}
	}

	return domain.TrafficEvent{
		SensorID:            sensor.ID,
		SensorDescriptiveID: sensor.DescriptiveID,
		VehicleClass:        domain.ClassUnknown,
	}
}
