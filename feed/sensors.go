package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/domain"
)

const userAgent = "traffic-advisory/1.0"

// SensorRetriever fetches the sensor configuration feed published by the
// Flemish road authorities and converts it to TrafficSensor records.
type SensorRetriever struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewSensorRetriever builds a retriever for the given configuration URL.
func NewSensorRetriever(url string, timeout time.Duration, logger *zap.Logger) *SensorRetriever {
	return &SensorRetriever{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// mivConfig mirrors the sensor configuration XML document.
type mivConfig struct {
	XMLName          xml.Name         `xml:"mivconfig"`
	LastConfigChange string           `xml:"tijd_laatste_config_wijziging,attr"`
	MeasurementSites []mivConfigPoint `xml:"meetpunt"`
}

type mivConfigPoint struct {
	UniqueID      int    `xml:"unieke_id,attr"`
	DescriptiveID string `xml:"beschrijvende_id"`
	FullName      string `xml:"volledige_naam"`
	Ident8        string `xml:"ident8"`
	TrafficLane   string `xml:"Rijstrook"`
	Longitude     string `xml:"lengtegraad_EPSG_4326"`
	Latitude      string `xml:"breedtegraad_EPSG_4326"`
}

// Retrieve fetches and converts the full sensor list.
func (r *SensorRetriever) Retrieve(ctx context.Context) ([]domain.TrafficSensor, error) {
	body, err := fetch(ctx, r.client, r.url)
	if err != nil {
		return nil, fmt.Errorf("retrieve sensor config: %w", err)
	}

	var config mivConfig
	if err := xml.Unmarshal(body, &config); err != nil {
		return nil, fmt.Errorf("parse sensor config: %w", err)
	}

	sensors := make([]domain.TrafficSensor, 0, len(config.MeasurementSites))
	for _, site := range config.MeasurementSites {
		sensor, err := site.toSensor()
		if err != nil {
			r.logger.Warn("skipping malformed measurement site",
				zap.Int("unieke_id", site.UniqueID), zap.Error(err))
			continue
		}
		sensors = append(sensors, sensor)
	}

	r.logger.Info("retrieved traffic sensors",
		zap.Int("count", len(sensors)),
		zap.String("last_config_change", config.LastConfigChange))

	return sensors, nil
}

func (p mivConfigPoint) toSensor() (domain.TrafficSensor, error) {
	longitude, err := parseDecimal(p.Longitude)
	if err != nil {
		return domain.TrafficSensor{}, fmt.Errorf("longitude: %w", err)
	}
	latitude, err := parseDecimal(p.Latitude)
	if err != nil {
		return domain.TrafficSensor{}, fmt.Errorf("latitude: %w", err)
	}

	return domain.TrafficSensor{
		ID:            p.UniqueID,
		DescriptiveID: p.DescriptiveID,
		Name:          p.FullName,
		Ident8:        p.Ident8,
		TrafficLane:   p.TrafficLane,
		GeographicCoordinates: domain.GeographicCoordinates{
			Longitude: longitude,
			Latitude:  latitude,
		},
	}, nil
}

// parseDecimal accepts both dot and comma decimal separators; the feed mixes
// them between coordinate systems.
func parseDecimal(value string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	return strconv.ParseFloat(normalized, 64)
}

func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}
