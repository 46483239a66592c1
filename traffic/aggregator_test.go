package traffic

import (
	"testing"

	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/domain"
)

func routeOverSensors(ids ...int) domain.VehicleRouteTrafficSensors {
	sensors := make([]domain.TrafficSensor, 0, len(ids))
	for _, id := range ids {
		sensors = append(sensors, domain.TrafficSensor{ID: id, DescriptiveID: "sensor"})
	}
	return domain.VehicleRouteTrafficSensors{VehicleID: "LIC-ENSE-PLATE-1", SensorsOnRoute: sensors}
}

func TestAggregateSelectsByClassPriority(t *testing.T) {
	store := NewHotspotStore(zap.NewNop())
	store.Store(storedEvent(5, domain.ClassTruckOrBus, 30))
	store.Store(storedEvent(5, domain.ClassCar, 40))

	aggregator := NewHotspotAggregator(store, zap.NewNop())
	hotspots := aggregator.Aggregate(routeOverSensors(5))

	if len(hotspots.TrafficHotspotsOnRoute) != 1 {
		t.Fatalf("got %d hotspots, want 1", len(hotspots.TrafficHotspotsOnRoute))
	}
	if got := hotspots.TrafficHotspotsOnRoute[0].VehicleClass; got != domain.ClassCar {
		t.Errorf("selected class %s, want %s", got, domain.ClassCar)
	}
}

func TestAggregateFallsBackThroughPriorityOrder(t *testing.T) {
	store := NewHotspotStore(zap.NewNop())
	store.Store(storedEvent(5, domain.ClassRigidLorries, 30))
	store.Store(storedEvent(5, domain.ClassTruckOrBus, 25))

	aggregator := NewHotspotAggregator(store, zap.NewNop())
	hotspots := aggregator.Aggregate(routeOverSensors(5))

	if got := hotspots.TrafficHotspotsOnRoute[0].VehicleClass; got != domain.ClassRigidLorries {
		t.Errorf("selected class %s, want %s", got, domain.ClassRigidLorries)
	}
}

func TestAggregatePreservesRouteOrderAndDropsQuietSensors(t *testing.T) {
	store := NewHotspotStore(zap.NewNop())
	store.Store(storedEvent(1, domain.ClassCar, 40))
	store.Store(storedEvent(3, domain.ClassMinivan, 35))

	aggregator := NewHotspotAggregator(store, zap.NewNop())
	hotspots := aggregator.Aggregate(routeOverSensors(1, 2, 3))

	if len(hotspots.TrafficHotspotsOnRoute) != 2 {
		t.Fatalf("got %d hotspots, want 2", len(hotspots.TrafficHotspotsOnRoute))
	}
	if hotspots.TrafficHotspotsOnRoute[0].SensorID != 1 || hotspots.TrafficHotspotsOnRoute[1].SensorID != 3 {
		t.Errorf("hotspots out of route order: %+v", hotspots.TrafficHotspotsOnRoute)
	}
}

func TestAggregateEmptyStoreYieldsNoHotspots(t *testing.T) {
	store := NewHotspotStore(zap.NewNop())
	aggregator := NewHotspotAggregator(store, zap.NewNop())

	hotspots := aggregator.Aggregate(routeOverSensors(1, 2, 3))

	if hotspots.VehicleID != "LIC-ENSE-PLATE-1" {
		t.Errorf("vehicle id = %q", hotspots.VehicleID)
	}
	if len(hotspots.TrafficHotspotsOnRoute) != 0 {
		t.Errorf("got %d hotspots, want none", len(hotspots.TrafficHotspotsOnRoute))
	}
}

func TestAggregateHonorsCustomPriority(t *testing.T) {
	store := NewHotspotStore(zap.NewNop())
	store.Store(storedEvent(5, domain.ClassCar, 40))
	store.Store(storedEvent(5, domain.ClassTruckOrBus, 25))

	trucksFirst := []domain.VehicleClass{domain.ClassTruckOrBus, domain.ClassCar}
	aggregator := NewHotspotAggregatorWithPriority(store, trucksFirst, zap.NewNop())

	hotspots := aggregator.Aggregate(routeOverSensors(5))
	if got := hotspots.TrafficHotspotsOnRoute[0].VehicleClass; got != domain.ClassTruckOrBus {
		t.Errorf("selected class %s, want %s", got, domain.ClassTruckOrBus)
	}
}
