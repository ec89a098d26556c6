package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/urbanflow/buswatch/transit"
)

// Resource identifiers of the Warsaw public transport API.
const (
	liveEndpoint      = "busestrams_get"
	liveResourceID    = "f2e5503e-927d-4ad3-9500-4ab9e55deb59"
	stopsEndpoint     = "dbstore_get"
	stopsResourceID   = "1c08a38c-ae09-46d2-8926-4f9d25cb0630"
	timetableEndpoint = "dbtimetable_get"
	linesResourceID   = "88cd555f-6f31-43ca-9de4-66c479ad5942"
	schedResourceID   = "e923fa0e-d96c-43f9-ae6e-60518c9f3238"
	routesEndpoint    = "public_transport_routes"
)

// Metrics receives instrumentation callbacks from the collector. All methods
// must be safe for concurrent use. A nil Metrics disables instrumentation.
type Metrics interface {
	RequestObserve(d time.Duration)
	RequestErrInc()
	SnapshotInc()
	VehiclesSet(n int)
}

// Client is an HTTP client for the municipal transit API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	metrics    Metrics
}

// NewClient creates a client for the given API base URL and key
func NewClient(baseURL, apiKey string, timeout time.Duration, m Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
	}
}

// get performs one safe request. Non-200 responses, transport errors and
// API-level failures (the result field degraded to a string) all come back
// as errors; callers retry rather than inspect them.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	params.Set("apikey", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.RequestObserve(time.Since(start))
	}
	if err != nil {
		c.errInc()
		return nil, fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.errInc()
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, endpoint)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.errInc()
		return nil, fmt.Errorf("read %s: %w", endpoint, err)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.errInc()
		return nil, fmt.Errorf("decode %s: %w", endpoint, err)
	}

	// The API signals quota and key problems as {"result": "błędna metoda..."}.
	var apiErr string
	if json.Unmarshal(envelope.Result, &apiErr) == nil {
		c.errInc()
		return nil, fmt.Errorf("%s: API error: %s", endpoint, apiErr)
	}
	return envelope.Result, nil
}

func (c *Client) errInc() {
	if c.metrics != nil {
		c.metrics.RequestErrInc()
	}
}

// kvEntry is the API's generic {"values": [{"key": ..., "value": ...}]} row
type kvEntry struct {
	Values []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"values"`
}

func (e kvEntry) toMap() map[string]string {
	m := make(map[string]string, len(e.Values))
	for _, kv := range e.Values {
		m[kv.Key] = kv.Value
	}
	return m
}

// Stops fetches the stop universe. Coordinates stay textual; the transit
// index parses them.
func (c *Client) Stops(ctx context.Context) ([]transit.StopRecord, error) {
	raw, err := c.get(ctx, stopsEndpoint, url.Values{"id": {stopsResourceID}})
	if err != nil {
		return nil, err
	}
	var entries []kvEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode stops: %w", err)
	}

	stops := make([]transit.StopRecord, 0, len(entries))
	for _, e := range entries {
		m := e.toMap()
		stops = append(stops, transit.StopRecord{
			GroupID: m["zespol"],
			PostNo:  m["slupek"],
			Name:    m["nazwa_zespolu"],
			Lon:     m["dlug_geo"],
			Lat:     m["szer_geo"],
		})
	}
	return stops, nil
}

// Lines fetches the lines that stop at the given stop post
func (c *Client) Lines(ctx context.Context, groupID, postNo string) ([]string, error) {
	raw, err := c.get(ctx, timetableEndpoint, url.Values{
		"id":        {linesResourceID},
		"busstopId": {groupID},
		"busstopNr": {postNo},
	})
	if err != nil {
		return nil, err
	}
	var entries []kvEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode lines: %w", err)
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if len(e.Values) > 0 {
			lines = append(lines, e.Values[0].Value)
		}
	}
	return lines, nil
}

// Schedule fetches the departures of one line at one stop post
func (c *Client) Schedule(ctx context.Context, groupID, postNo, line string) ([]transit.Departure, error) {
	raw, err := c.get(ctx, timetableEndpoint, url.Values{
		"id":        {schedResourceID},
		"busstopId": {groupID},
		"busstopNr": {postNo},
		"line":      {line},
	})
	if err != nil {
		return nil, err
	}
	var entries []kvEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}

	deps := make([]transit.Departure, 0, len(entries))
	for _, e := range entries {
		m := e.toMap()
		deps = append(deps, transit.Departure{
			Time:      m["czas"],
			Direction: m["kierunek"],
			Route:     m["trasa"],
			Brigade:   m["brygada"],
		})
	}
	return deps, nil
}

// routeStopRef is the API's per-sequence stop reference inside a route
type routeStopRef struct {
	GroupID string `json:"nr_zespolu"`
	PostNo  string `json:"nr_przystanku"`
}

// Routes fetches every line's routes as ordered stop key lists
func (c *Client) Routes(ctx context.Context) (transit.RoutesTable, error) {
	raw, err := c.get(ctx, routesEndpoint, url.Values{})
	if err != nil {
		return nil, err
	}
	// line -> route name -> 1-based sequence number -> stop reference
	var decoded map[string]map[string]map[string]routeStopRef
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode routes: %w", err)
	}

	table := transit.RoutesTable{}
	for line, byRoute := range decoded {
		table[line] = map[string][]transit.StopKey{}
		for route, bySeq := range byRoute {
			stops := make([]transit.StopKey, len(bySeq))
			for seqStr, ref := range bySeq {
				seq, err := strconv.Atoi(seqStr)
				if err != nil || seq < 1 || seq > len(bySeq) {
					return nil, fmt.Errorf("route %s/%s: bad stop sequence %q", line, route, seqStr)
				}
				stops[seq-1] = transit.StopKey{GroupID: ref.GroupID, PostNo: ref.PostNo}
			}
			table[line][route] = stops
		}
	}
	return table, nil
}

// LiveRecord is one vehicle position row of the live feed
type LiveRecord struct {
	Lines         string  `json:"Lines"`
	Lon           float64 `json:"Lon"`
	VehicleNumber string  `json:"VehicleNumber"`
	Time          string  `json:"Time"`
	Lat           float64 `json:"Lat"`
	Brigade       string  `json:"Brigade"`
}

// Live fetches the current bus positions
func (c *Client) Live(ctx context.Context) ([]LiveRecord, error) {
	raw, err := c.get(ctx, liveEndpoint, url.Values{
		"resource_id": {liveResourceID},
		"type":        {"1"},
	})
	if err != nil {
		return nil, err
	}
	var records []LiveRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode live positions: %w", err)
	}
	return records, nil
}
