package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"
)

const (
	// Probe endpoints are cheap, well-known GETs on each upstream.
	defaultSECProbeURL   = "https://data.sec.gov/api/xbrl/companyconcept/CIK0000320193/us-gaap/Assets.json"
	defaultYahooProbeURL = "https://query1.finance.yahoo.com/v8/finance/chart/AAPL"

	probeTimeout = 5 * time.Second

	// Yahoo rejects default Go User-Agents, same as the quote client.
	probeBrowserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// dependencyStatus reports the result of probing one upstream.
type dependencyStatus struct {
	Status         string `json:"status"`
	URL            string `json:"url"`
	Description    string `json:"description"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	Error          string `json:"error,omitempty"`
}

// handleHealth returns full service health: upstream dependency probes
// plus host resource usage. All dependencies down means 503, partial
// outages degrade to a warning but keep serving.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	deps := s.probeDependencies(r.Context())

	healthy := 0
	for _, dep := range deps {
		if dep.Status == "healthy" {
			healthy++
		}
	}

	var overall string
	switch healthy {
	case len(deps):
		overall = "healthy"
	case 0:
		overall = "unhealthy"
	default:
		overall = "degraded"
	}

	data := map[string]interface{}{
		"status":         overall,
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"environment":    s.cfg.Environment,
		"version":        Version,
		"dependencies":   deps,
		"system":         s.systemStats(),
	}

	switch overall {
	case "unhealthy":
		s.respond(w, r, http.StatusServiceUnavailable, Envelope{
			Status:  StatusError,
			Message: "Service is unhealthy, all upstream dependencies are unreachable",
			Data:    data,
		})
	case "degraded":
		s.respondStatus(w, r, StatusWarning,
			"Service is degraded, some upstream dependencies are unreachable", data, nil)
	default:
		s.respondSuccess(w, r, "Service is healthy", data, nil)
	}
}

// handleHealthSimple is a cheap liveness check with no upstream probes.
func (s *Server) handleHealthSimple(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"status":         "ok",
		"timestamp":      time.Now().UTC(),
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
	}
	s.respondSuccess(w, r, "Service is running", data, nil)
}

// handleHealthDependencies probes the upstreams without collecting
// host stats.
func (s *Server) handleHealthDependencies(w http.ResponseWriter, r *http.Request) {
	deps := s.probeDependencies(r.Context())

	healthy := 0
	for _, dep := range deps {
		if dep.Status == "healthy" {
			healthy++
		}
	}

	data := map[string]interface{}{
		"dependencies": deps,
		"summary": map[string]interface{}{
			"healthy":           healthy,
			"total":             len(deps),
			"health_percentage": float64(healthy) / float64(len(deps)) * 100,
		},
	}
	s.respondSuccess(w, r, "Dependency health checked", data, nil)
}

// probeDependencies checks each upstream concurrently.
func (s *Server) probeDependencies(ctx context.Context) map[string]dependencyStatus {
	probes := []struct {
		name        string
		url         string
		userAgent   string
		description string
	}{
		{"sec_edgar", s.secProbeURL, s.cfg.SECUserAgent, "SEC EDGAR company filings API"},
		{"yahoo_finance", s.yahooProbeURL, probeBrowserUserAgent, "Yahoo Finance search and quote API"},
	}

	results := make([]dependencyStatus, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Add(1)
		go func(i int, url, ua, desc string) {
			defer wg.Done()
			results[i] = s.probe(ctx, url, ua, desc)
		}(i, p.url, p.userAgent, p.description)
	}
	wg.Wait()

	out := make(map[string]dependencyStatus, len(probes))
	for i, p := range probes {
		out[p.name] = results[i]
	}
	return out
}

func (s *Server) probe(ctx context.Context, url, userAgent, description string) dependencyStatus {
	result := dependencyStatus{URL: url, Description: description}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Status = "unhealthy"
		result.Error = err.Error()
		return result
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.probeClient.Do(req)
	result.ResponseTimeMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Status = "unhealthy"
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("probe returned status %d", resp.StatusCode)
		return result
	}
	result.Status = "healthy"
	return result
}

// systemStats collects host resource usage. Any collector that fails
// is logged and skipped, health reporting must not depend on it.
func (s *Server) systemStats() map[string]interface{} {
	stats := map[string]interface{}{}

	// 100ms sample keeps the health endpoint responsive.
	if cpuPercents, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercents) > 0 {
		stats["cpu_percent"] = cpuPercents[0]
	} else if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats["memory"] = map[string]interface{}{
			"total_mb":     vm.Total / 1024 / 1024,
			"used_mb":      vm.Used / 1024 / 1024,
			"used_percent": vm.UsedPercent,
		}
	} else {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
	}

	if du, err := disk.Usage("/"); err == nil {
		stats["disk"] = map[string]interface{}{
			"total_gb":     float64(du.Total) / 1024 / 1024 / 1024,
			"used_gb":      float64(du.Used) / 1024 / 1024 / 1024,
			"used_percent": du.UsedPercent,
		}
	} else {
		s.log.Warn().Err(err).Msg("Failed to get disk usage")
	}

	if conns, err := psnet.Connections("tcp"); err == nil {
		stats["connections"] = len(conns)
	} else {
		s.log.Warn().Err(err).Msg("Failed to count TCP connections")
	}

	return stats
}
