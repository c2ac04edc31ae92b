package zoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/domain"
)

const defaultConfThreshold = 0.5

// HTTPDetectorConfig holds the arguments of HTTPDetector.
// Exactly one of URL and Service must be set.
type HTTPDetectorConfig struct {
	URL           string  `json:"url,omitempty"`
	Service       string  `json:"service,omitempty"`
	ConfThreshold float64 `json:"conf_threshold"`
	TimeoutMS     int     `json:"timeout_ms,omitempty"`
	HealthPath    string  `json:"health_path,omitempty"`
}

// HTTPDetector sends each frame to an object detection service and
// groups the detections by label:
//
//	{label: [[x1, y1, x2, y2, confidence, label], ...]}
//
// The service answers POST <url>/detect with a JSON list of
// [label, [x1, y1, x2, y2], confidence] entries.
type HTTPDetector struct {
	cfg      HTTPDetectorConfig
	services *ServiceDirectory
	client   *http.Client

	mu      sync.Mutex
	baseURL string
}

func newHTTPDetector(args callable.Args, services *ServiceDirectory, client *http.Client) (callable.Processor, error) {
	cfg := HTTPDetectorConfig{ConfThreshold: defaultConfThreshold}
	if err := callable.Decode(args, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &HTTPDetector{cfg: cfg, services: services, client: client}, nil
}

// NewHTTPDetector builds a detector outside of a registry.
func NewHTTPDetector(cfg HTTPDetectorConfig, services *ServiceDirectory, client *http.Client) (*HTTPDetector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if services == nil {
		services = NewServiceDirectory()
	}
	if client == nil {
		client = NewHTTPClient()
	}
	return &HTTPDetector{cfg: cfg, services: services, client: client}, nil
}

func (c HTTPDetectorConfig) validate() error {
	switch {
	case c.URL == "" && c.Service == "":
		return errors.New("one of url or service is required")
	case c.URL != "" && c.Service != "":
		return errors.New("url and service are mutually exclusive")
	case c.ConfThreshold < 0 || c.ConfThreshold > 1:
		return fmt.Errorf("conf_threshold must be within [0, 1], got %v", c.ConfThreshold)
	case c.TimeoutMS < 0:
		return fmt.Errorf("timeout_ms must not be negative, got %d", c.TimeoutMS)
	}
	return nil
}

func (*HTTPDetector) CallableName() string  { return HTTPDetectorName }
func (d *HTTPDetector) Args() callable.Args { return callable.ArgsOf(d.cfg) }

// Prepare resolves the service URL and, when a health path is configured,
// checks that the service answers. Once it succeeds, later calls are no-ops.
func (d *HTTPDetector) Prepare(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.baseURL != "" {
		return nil
	}

	base := strings.TrimRight(d.cfg.URL, "/")
	if d.cfg.Service != "" {
		url, err := d.services.Lookup(d.cfg.Service)
		if err != nil {
			return err
		}
		base = url
	}

	if d.cfg.HealthPath != "" {
		if err := d.ping(ctx, base+"/"+strings.TrimLeft(d.cfg.HealthPath, "/")); err != nil {
			return err
		}
	}

	d.baseURL = base
	return nil
}

func (d *HTTPDetector) ping(ctx context.Context, url string) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("health check %s: unexpected status %s", url, resp.Status)
	}
	return nil
}

func (d *HTTPDetector) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.TimeoutMS > 0 {
		return context.WithTimeout(ctx, time.Duration(d.cfg.TimeoutMS)*time.Millisecond)
	}
	return context.WithCancel(ctx)
}

func (d *HTTPDetector) Process(ctx context.Context, frame domain.Frame) (map[string]any, error) {
	d.mu.Lock()
	base := d.baseURL
	d.mu.Unlock()
	if base == "" {
		return nil, fmt.Errorf("%s used before Prepare", HTTPDetectorName)
	}

	body, contentType, err := detectForm(frame, d.cfg.ConfThreshold)
	if err != nil {
		return nil, err
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/detect", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("detect: unexpected status %s", resp.Status)
	}

	var detections [][]any
	if err := json.NewDecoder(resp.Body).Decode(&detections); err != nil {
		return nil, fmt.Errorf("detect: decode response: %w", err)
	}
	return groupDetections(detections)
}

func detectForm(frame domain.Frame, threshold float64) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("confidence", strconv.FormatFloat(threshold, 'f', -1, 64)); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("format", "box"); err != nil {
		return nil, "", err
	}
	part, err := w.CreateFormFile("picture", fmt.Sprintf("frame-%d.jpg", frame.ID))
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(frame.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func groupDetections(detections [][]any) (map[string]any, error) {
	out := make(map[string]any)
	for i, det := range detections {
		if len(det) != 3 {
			return nil, fmt.Errorf("detect: detection %d has %d fields, want 3", i, len(det))
		}
		label := fmt.Sprint(det[0])
		box, ok := det[1].([]any)
		if !ok {
			return nil, fmt.Errorf("detect: detection %d has no bounding box", i)
		}

		entry := make([]any, 0, len(box)+2)
		entry = append(entry, box...)
		entry = append(entry, det[2], label)

		existing, _ := out[label].([][]any)
		out[label] = append(existing, entry)
	}
	return out, nil
}
