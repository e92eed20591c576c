package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPAddressDetector queries an ipify-style endpoint that echoes the
// caller's public address as {"ip": "..."}.
type HTTPAddressDetector struct {
	Endpoint   string
	HTTPClient *http.Client
}

func NewHTTPAddressDetector(endpoint string) *HTTPAddressDetector {
	return &HTTPAddressDetector{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (d *HTTPAddressDetector) Detect(ctx context.Context) ([]string, error) {
	if strings.TrimSpace(d.Endpoint) == "" {
		return nil, nil
	}
	if d.HTTPClient == nil {
		d.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, d.Endpoint, nil)
	if err != nil {
		return nil, err
	}
	response, err := d.HTTPClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	if response.StatusCode >= 300 {
		return nil, fmt.Errorf("address detection failed with status %d", response.StatusCode)
	}

	var payload struct {
		IP  string   `json:"ip"`
		IPs []string `json:"ips"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, err
	}
	addresses := payload.IPs
	if payload.IP != "" {
		addresses = append(addresses, payload.IP)
	}
	return addresses, nil
}
