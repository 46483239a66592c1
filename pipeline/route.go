package pipeline

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/domain"
	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/traffic"
)

// AdviceSink receives every advisory the route path produces.
type AdviceSink interface {
	SendAdvice(advice domain.VehicleRouteChangeAdvice) error
}

// RouteAdviceProcessor is the read path: decode a route change event, resolve
// its waypoints to sensors, aggregate the hotspots along the route and, when
// warranted, emit route change advice to every sink.
type RouteAdviceProcessor struct {
	resolver   *traffic.RouteSensorResolver
	aggregator *traffic.HotspotAggregator
	advisor    *traffic.RouteChangeAdvisor
	sinks      []AdviceSink
	logger     *zap.Logger

	processed           atomic.Int64
	advised             atomic.Int64
	unresolvedWaypoints atomic.Int64
}

// NewRouteAdviceProcessor wires resolver, aggregator and advisor into the
// read path. Advisories fan out to all sinks.
func NewRouteAdviceProcessor(
	resolver *traffic.RouteSensorResolver,
	aggregator *traffic.HotspotAggregator,
	advisor *traffic.RouteChangeAdvisor,
	logger *zap.Logger,
	sinks ...AdviceSink,
) *RouteAdviceProcessor {
	return &RouteAdviceProcessor{
		resolver:   resolver,
		aggregator: aggregator,
		advisor:    advisor,
		sinks:      sinks,
		logger:     logger,
	}
}

// HandleRouteChange processes one route change message. Waypoints without a
// matching sensor are skipped and counted; they fail only this route's
// resolution, never the ingestion path or the store.
func (p *RouteAdviceProcessor) HandleRouteChange(_, value []byte) error {
	event, err := domain.VehicleRouteChangeEventFromJSON(value)
	if err != nil {
		return err
	}
	p.processed.Add(1)

	if len(event.Route) == 0 {
		// Destination reached: nothing left to advise on.
		return nil
	}

	routeSensors, unresolved := p.resolver.SensorsOnRoute(event.VehicleID, event.Route)
	if len(unresolved) > 0 {
		p.unresolvedWaypoints.Add(int64(len(unresolved)))
		p.logger.Warn("route has waypoints without a matching sensor",
			zap.String("vehicle_id", event.VehicleID),
			zap.Int("unresolved", len(unresolved)),
			zap.Int("resolved", len(routeSensors.SensorsOnRoute)))
	}

	hotspots := p.aggregator.Aggregate(routeSensors)

	advice, ok := p.advisor.Advise(hotspots)
	if !ok {
		return nil
	}
	p.advised.Add(1)

	p.logger.Info("route change advice produced",
		zap.String("vehicle_id", advice.VehicleID),
		zap.Int("hotspots", len(hotspots.TrafficHotspotsOnRoute)))

	for _, sink := range p.sinks {
		if err := sink.SendAdvice(advice); err != nil {
			return fmt.Errorf("send advice for %s: %w", advice.VehicleID, err)
		}
	}
	return nil
}

// Stats returns the route processing counters.
func (p *RouteAdviceProcessor) Stats() map[string]int64 {
	return map[string]int64{
		"routes_processed":     p.processed.Load(),
		"advisories_emitted":   p.advised.Load(),
		"unresolved_waypoints": p.unresolvedWaypoints.Load(),
	}
}
