package pipeline

import (
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/domain"
	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/traffic"
)

type captureSink struct {
	advices []domain.VehicleRouteChangeAdvice
	err     error
}

func (s *captureSink) SendAdvice(advice domain.VehicleRouteChangeAdvice) error {
	if s.err != nil {
		return s.err
	}
	s.advices = append(s.advices, advice)
	return nil
}

func routeSensors() []domain.TrafficSensor {
	return []domain.TrafficSensor{
		{ID: 1, DescriptiveID: "H291L10", GeographicCoordinates: domain.GeographicCoordinates{Longitude: 3.1, Latitude: 51.0}},
		{ID: 2, DescriptiveID: "H291L20", GeographicCoordinates: domain.GeographicCoordinates{Longitude: 3.2, Latitude: 51.1}},
		{ID: 3, DescriptiveID: "H291L30", GeographicCoordinates: domain.GeographicCoordinates{Longitude: 3.3, Latitude: 51.2}},
	}
}

func routeProcessor(t *testing.T, store *traffic.HotspotStore, sinks ...AdviceSink) *RouteAdviceProcessor {
	t.Helper()
	logger := zap.NewNop()
	return NewRouteAdviceProcessor(
		traffic.NewRouteSensorResolver(routeSensors(), logger),
		traffic.NewHotspotAggregator(store, logger),
		traffic.NewRouteChangeAdvisor(),
		logger,
		sinks...,
	)
}

func routeChangePayload(t *testing.T, vehicleID string, route domain.Route) []byte {
	t.Helper()
	payload, err := json.Marshal(domain.VehicleRouteChangeEvent{
		VehicleID:    vehicleID,
		VehicleClass: domain.ClassCar,
		Route:        route,
	})
	if err != nil {
		t.Fatalf("marshal route change: %v", err)
	}
	return payload
}

func fullRoute() domain.Route {
	return domain.Route{
		{Longitude: 3.1, Latitude: 51.0},
		{Longitude: 3.2, Latitude: 51.1},
		{Longitude: 3.3, Latitude: 51.2},
	}
}

func TestHandleRouteChangeWithoutHotspotsEmitsNothing(t *testing.T) {
	store := traffic.NewHotspotStore(zap.NewNop())
	sink := &captureSink{}
	processor := routeProcessor(t, store, sink)

	payload := routeChangePayload(t, "LIC-ENSE-PLATE-1", fullRoute())
	if err := processor.HandleRouteChange(nil, payload); err != nil {
		t.Fatalf("HandleRouteChange: %v", err)
	}

	if len(sink.advices) != 0 {
		t.Errorf("got %d advisories for a quiet route, want 0", len(sink.advices))
	}
	stats := processor.Stats()
	if stats["routes_processed"] != 1 || stats["advisories_emitted"] != 0 {
		t.Errorf("stats = %v", stats)
	}
}

func TestHandleRouteChangeEmitsAdviceForHotspotOnRoute(t *testing.T) {
	store := traffic.NewHotspotStore(zap.NewNop())
	store.Store(domain.TrafficEvent{
		SensorID:             2,
		SensorDescriptiveID:  "H291L20",
		SensorAvailable:      true,
		VehicleClass:         domain.ClassCar,
		VehicleCount:         12,
		VehicleAverageSpeed:  35,
		VehicleHarmonicSpeed: 31,
	})
	sink := &captureSink{}
	processor := routeProcessor(t, store, sink)

	payload := routeChangePayload(t, "LIC-ENSE-PLATE-1", fullRoute())
	if err := processor.HandleRouteChange(nil, payload); err != nil {
		t.Fatalf("HandleRouteChange: %v", err)
	}

	if len(sink.advices) != 1 {
		t.Fatalf("got %d advisories, want 1", len(sink.advices))
	}
	if sink.advices[0].VehicleID != "LIC-ENSE-PLATE-1" {
		t.Errorf("advice vehicle id = %q", sink.advices[0].VehicleID)
	}
	if got := processor.Stats()["advisories_emitted"]; got != 1 {
		t.Errorf("advisories_emitted = %d, want 1", got)
	}
}

func TestHandleRouteChangeFansOutToAllSinks(t *testing.T) {
	store := traffic.NewHotspotStore(zap.NewNop())
	store.Store(domain.TrafficEvent{
		SensorID:             1,
		SensorAvailable:      true,
		VehicleClass:         domain.ClassCar,
		VehicleCount:         8,
		VehicleAverageSpeed:  30,
		VehicleHarmonicSpeed: 28,
	})
	first := &captureSink{}
	second := &captureSink{}
	processor := routeProcessor(t, store, first, second)

	payload := routeChangePayload(t, "LIC-ENSE-PLATE-1", fullRoute())
	if err := processor.HandleRouteChange(nil, payload); err != nil {
		t.Fatalf("HandleRouteChange: %v", err)
	}

	if len(first.advices) != 1 || len(second.advices) != 1 {
		t.Errorf("fan-out reached %d and %d sinks, want 1 and 1", len(first.advices), len(second.advices))
	}
}

func TestHandleRouteChangeSinkFailurePropagates(t *testing.T) {
	store := traffic.NewHotspotStore(zap.NewNop())
	store.Store(domain.TrafficEvent{
		SensorID:             1,
		SensorAvailable:      true,
		VehicleClass:         domain.ClassCar,
		VehicleCount:         8,
		VehicleAverageSpeed:  30,
		VehicleHarmonicSpeed: 28,
	})
	sink := &captureSink{err: errors.New("broker down")}
	processor := routeProcessor(t, store, sink)

	payload := routeChangePayload(t, "LIC-ENSE-PLATE-1", fullRoute())
	if err := processor.HandleRouteChange(nil, payload); err == nil {
		t.Error("expected sink failure to propagate")
	}
}

func TestHandleRouteChangeEmptyRouteMeansDestinationReached(t *testing.T) {
	store := traffic.NewHotspotStore(zap.NewNop())
	sink := &captureSink{}
	processor := routeProcessor(t, store, sink)

	payload := routeChangePayload(t, "LIC-ENSE-PLATE-1", domain.Route{})
	if err := processor.HandleRouteChange(nil, payload); err != nil {
		t.Fatalf("HandleRouteChange: %v", err)
	}
	if len(sink.advices) != 0 {
		t.Error("got advice for a vehicle at its destination")
	}
}

func TestHandleRouteChangeCountsUnresolvedWaypoints(t *testing.T) {
	store := traffic.NewHotspotStore(zap.NewNop())
	sink := &captureSink{}
	processor := routeProcessor(t, store, sink)

	route := domain.Route{
		{Longitude: 3.1, Latitude: 51.0},
		{Longitude: 99.9, Latitude: 99.9},
	}
	if err := processor.HandleRouteChange(nil, routeChangePayload(t, "LIC-ENSE-PLATE-1", route)); err != nil {
		t.Fatalf("HandleRouteChange: %v", err)
	}

	if got := processor.Stats()["unresolved_waypoints"]; got != 1 {
		t.Errorf("unresolved_waypoints = %d, want 1", got)
	}
}

func TestHandleRouteChangeUndecodablePayload(t *testing.T) {
	store := traffic.NewHotspotStore(zap.NewNop())
	processor := routeProcessor(t, store)

	if err := processor.HandleRouteChange(nil, []byte(`not json`)); err == nil {
		t.Error("expected an error for an undecodable payload")
	}
}
