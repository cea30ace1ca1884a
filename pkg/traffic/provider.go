package traffic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gojek/heimdall/v7/httpclient"
)

const (
	// MinFactor free-flow multiplier floor.
	MinFactor = 1.0
	// MaxFactor congestion multiplier cap.
	MaxFactor = 4.0

	DefaultSampleTimeout = 2000 * time.Millisecond
)

var ErrNoFlowData = errors.New("no flow data for sample point")

// Provider estimates a traffic multiplier (free-flow speed over current
// speed) for a coordinate. Implementations may fail per point; callers treat
// a failure as multiplier 1.0.
type Provider interface {
	SampleFactor(ctx context.Context, lat, lon float64) (float64, error)
}

// TomTomClient samples the TomTom flow-segment endpoint. Each call is bounded
// by the client's HTTP timeout.
type TomTomClient struct {
	apiKey string
	client *httpclient.Client
}

func NewTomTomClient(apiKey string, timeout time.Duration) *TomTomClient {
	if timeout <= 0 {
		timeout = DefaultSampleTimeout
	}
	return &TomTomClient{
		apiKey: apiKey,
		client: httpclient.NewClient(httpclient.WithHTTPTimeout(timeout)),
	}
}

type flowSegmentResponse struct {
	FlowSegmentData struct {
		CurrentSpeed  float64 `json:"currentSpeed"`
		FreeFlowSpeed float64 `json:"freeFlowSpeed"`
	} `json:"flowSegmentData"`
}

func (t *TomTomClient) SampleFactor(ctx context.Context, lat, lon float64) (float64, error) {
	url := fmt.Sprintf(
		"https://api.tomtom.com/traffic/services/4/flowSegmentData/absolute/10/json?point=%f,%f&key=%s",
		lat, lon, t.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return MinFactor, err
	}
	res, err := t.client.Do(req)
	if err != nil {
		return MinFactor, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return MinFactor, fmt.Errorf("flow segment request status %d", res.StatusCode)
	}

	flow := flowSegmentResponse{}
	if err := json.NewDecoder(res.Body).Decode(&flow); err != nil {
		return MinFactor, err
	}
	cur := flow.FlowSegmentData.CurrentSpeed
	free := flow.FlowSegmentData.FreeFlowSpeed
	if cur <= 0 || free <= 0 {
		return MinFactor, ErrNoFlowData
	}
	return ClampFactor(free / cur), nil
}

// ClampFactor clamps a multiplier into [MinFactor, MaxFactor].
func ClampFactor(f float64) float64 {
	if f < MinFactor {
		return MinFactor
	}
	if f > MaxFactor {
		return MaxFactor
	}
	return f
}
