package pipeline

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/domain"
	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/traffic"
)

// IngestionPipeline is the write path: decode an incoming measurement, run
// it through the admission filter and retain accepted events in the hotspot
// store. It shares nothing with the route path except the store.
type IngestionPipeline struct {
	filter *traffic.HotspotFilter
	store  *traffic.HotspotStore
	logger *zap.Logger

	accepted atomic.Int64
	rejected atomic.Int64
}

// NewIngestionPipeline wires the filter and store into the write path.
func NewIngestionPipeline(filter *traffic.HotspotFilter, store *traffic.HotspotStore, logger *zap.Logger) *IngestionPipeline {
	return &IngestionPipeline{filter: filter, store: store, logger: logger}
}

// HandleTrafficEvent processes one raw measurement message. Rejection by the
// admission filter is a normal outcome; only undecodable payloads return an
// error.
func (p *IngestionPipeline) HandleTrafficEvent(_, value []byte) error {
	event, err := domain.TrafficEventFromJSON(value)
	if err != nil {
		return err
	}

	if !p.filter.Accepts(event) {
		p.rejected.Add(1)
		return nil
	}

	p.store.Store(event)
	p.accepted.Add(1)
	return nil
}

// Stats returns the ingestion counters.
func (p *IngestionPipeline) Stats() map[string]int64 {
	return map[string]int64{
		"events_accepted": p.accepted.Load(),
		"events_rejected": p.rejected.Load(),
		"sensors_tracked": int64(p.store.Len()),
	}
}
