package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Expects a running daemon whose config provisions agents 1..numAgents
// with apiKey "load-key-<id>" and accessToken "load-token-<id>".
const (
	baseURL        = "http://127.0.0.1:18090"
	numWorkers     = 50
	testDuration   = 10 * time.Second
	numAgents      = 100
	numSubscribers = 20
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

// streamClient has no overall timeout: subscriber connections are
// meant to stay open for the whole run.
var streamClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConnsPerHost: numSubscribers,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	fmt.Println("=== Pulsed Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Agents: %d | Subscribers: %d\n\n", numAgents, numSubscribers)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Long-lived subscribers counting fan-out deliveries across all phases
	var delivered atomic.Int64
	stopStreams := make(chan struct{})
	var streamWg sync.WaitGroup
	for i := 0; i < numSubscribers; i++ {
		streamWg.Add(1)
		go func(agentID int) {
			defer streamWg.Done()
			subscribe(agentID, &delivered, stopStreams)
		}(i%numAgents + 1)
	}

	// Phase 1: Seed snapshots with ingest reports
	fmt.Println("\n--- Phase 1: Seeding (POST /api/ingest) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doIngest(rng)
	})

	// Phase 2: Mixed read/write load
	fmt.Println("\n--- Phase 2: Mixed load (70% ingest, 30% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.70:
			return doIngest(rng)
		case r < 0.85:
			return doGetLatest(rng)
		case r < 0.95:
			return doGetLatestByKey(rng)
		default:
			return doHealth()
		}
	})

	// Phase 3: Read-heavy load
	fmt.Println("\n--- Phase 3: Read-heavy load (10% ingest, 90% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doIngest(rng)
		case r < 0.55:
			return doGetLatest(rng)
		case r < 0.90:
			return doGetLatestByKey(rng)
		default:
			return doHealth()
		}
	})

	close(stopStreams)
	streamWg.Wait()
	fmt.Printf("\nStream deliveries across %d subscribers: %d events\n",
		numSubscribers, delivered.Load())
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-32s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 98))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-32s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 98))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func agentKey(id int) string   { return fmt.Sprintf("load-key-%d", id) }
func agentToken(id int) string { return fmt.Sprintf("load-token-%d", id) }

func doIngest(rng *rand.Rand) result {
	id := rng.Intn(numAgents) + 1
	body := map[string]interface{}{
		"state":           []string{"active", "idle", "away"}[rng.Intn(3)],
		"keystrokes":      rng.Intn(200),
		"sessionActiveMs": rng.Intn(60000),
	}
	data, _ := json.Marshal(body)

	req, _ := http.NewRequest(http.MethodPost, baseURL+"/api/ingest", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", agentKey(id))

	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{"POST /api/ingest", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /api/ingest", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetLatest(rng *rand.Rand) result {
	id := rng.Intn(numAgents) + 1
	req, _ := http.NewRequest(http.MethodGet, baseURL+"/api/status/latest", nil)
	req.Header.Set("Authorization", "Bearer "+agentToken(id))

	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /api/status/latest", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /api/status/latest", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetLatestByKey(rng *rand.Rand) result {
	id := rng.Intn(numAgents) + 1
	req, _ := http.NewRequest(http.MethodGet, baseURL+"/api/status/latest/by-key", nil)
	req.Header.Set("x-api-key", agentKey(id))

	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /api/status/latest/by-key", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /api/status/latest/by-key", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doHealth() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/health")
	lat := time.Since(start)
	if err != nil {
		return result{"GET /health", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /health", resp.StatusCode, lat, resp.StatusCode != 200}
}

// subscribe holds one event-stream connection open, counting status
// events until stop closes. Reconnects when the server ends the stream.
func subscribe(agentID int, delivered *atomic.Int64, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		req, _ := http.NewRequest(http.MethodGet,
			baseURL+"/api/status/stream?token="+agentToken(agentID), nil)
		resp, err := streamClient.Do(req)
		if err != nil {
			time.Sleep(500 * time.Millisecond)
			continue
		}

		go func() {
			<-stop
			resp.Body.Close()
		}()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if strings.HasPrefix(scanner.Text(), "event: status") {
				delivered.Add(1)
			}
		}
		resp.Body.Close()
	}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
