package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/domain"
)

// TrafficRetriever fetches the live measurement feed published by the
// Flemish road authorities and converts it to TrafficEvent records, one
// event per (measurement site, vehicle class) pair.
type TrafficRetriever struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewTrafficRetriever builds a retriever for the given measurement feed URL.
func NewTrafficRetriever(url string, timeout time.Duration, logger *zap.Logger) *TrafficRetriever {
	return &TrafficRetriever{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// mivData mirrors the measurement XML document.
type mivData struct {
	XMLName          xml.Name       `xml:"miv"`
	MeasurementSites []mivDataPoint `xml:"meetpunt"`
}

type mivDataPoint struct {
	UniqueID      int          `xml:"unieke_id,attr"`
	DescriptiveID string       `xml:"beschrijvende_id,attr"`
	ObservedAt    string       `xml:"tijd_waarneming"`
	LastChangedAt string       `xml:"tijd_laatst_gewijzigd"`
	RecentData    int          `xml:"actueel_publicatie"`
	Available     int          `xml:"beschikbaar"`
	Measurements  []mivClassed `xml:"meetdata"`
}

type mivClassed struct {
	ClassID       int `xml:"klasse_id,attr"`
	VehicleCount  int `xml:"verkeersintensiteit"`
	AverageSpeed  int `xml:"voertuigsnelheid_rekenkundig"`
	HarmonicSpeed int `xml:"voertuigsnelheid_harmonisch"`
}

// Retrieve fetches and converts the current measurements.
func (r *TrafficRetriever) Retrieve(ctx context.Context) ([]domain.TrafficEvent, error) {
	body, err := fetch(ctx, r.client, r.url)
	if err != nil {
		return nil, fmt.Errorf("retrieve traffic data: %w", err)
	}

	var data mivData
	if err := xml.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parse traffic data: %w", err)
	}

	events := make([]domain.TrafficEvent, 0, len(data.MeasurementSites)*len(domain.VehicleClasses))
	for _, site := range data.MeasurementSites {
		for _, measurement := range site.Measurements {
			events = append(events, toEvent(site, measurement))
		}
	}

	r.logger.Debug("retrieved traffic events",
		zap.Int("measurement_sites", len(data.MeasurementSites)),
		zap.Int("events", len(events)))

	return events, nil
}

func toEvent(site mivDataPoint, measurement mivClassed) domain.TrafficEvent {
	return domain.TrafficEvent{
		TimeRegistration:           parseFeedTime(site.ObservedAt),
		SensorID:                   site.UniqueID,
		SensorDescriptiveID:        site.DescriptiveID,
		SensorAvailable:            site.Available == 1,
		SensorDataRecent:           site.RecentData == 1,
		SensorLastTimeOfDataUpdate: parseFeedTime(site.LastChangedAt),
		VehicleClass:               domain.VehicleClassFromCode(measurement.ClassID),
		VehicleCount:               measurement.VehicleCount,
		VehicleAverageSpeed:        measurement.AverageSpeed,
		VehicleHarmonicSpeed:       measurement.HarmonicSpeed,
	}
}

// parseFeedTime parses an RFC3339 feed timestamp, returning nil for absent
// or malformed values rather than failing the whole measurement.
func parseFeedTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &parsed
}
