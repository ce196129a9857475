package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scenario is one kind of request a simulated trader sends
type Scenario struct {
	Name   string
	Method string
	Path   string
	Form   url.Values
	// Status the site answers with when the request is accepted
	OK int
}

// TestResult contains metrics for a single request
type TestResult struct {
	Scenario     string
	Success      bool
	Rejected     bool // apology page: not enough cash, no shares owned, ...
	ResponseTime time.Duration
	StatusCode   int
	Error        error
}

// TestStats contains aggregated test statistics
type TestStats struct {
	TotalRequests      int
	SuccessfulRequests int
	RejectedRequests   int
	FailedRequests     int
	TotalTime          time.Duration
	MinResponseTime    time.Duration
	MaxResponseTime    time.Duration
	TotalResponseTime  time.Duration
	ResponseTimes      []time.Duration
	ErrorCounts        map[string]int
	ScenarioStats      map[string]int
	Lock               sync.Mutex
}

// trader is a registered account with its own cookie jar
type trader struct {
	username string
	client   *http.Client
}

func main() {
	concurrency := flag.Int("c", 5, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 100, "Total number of requests to make")
	traders := flag.Int("u", 3, "Number of accounts to register and spread load across")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the site")
	symbolsStr := flag.String("symbols", "AAPL,MSFT,NFLX", "Comma-separated symbols to trade")
	delayMs := flag.Int("delay", 100, "Delay between requests in milliseconds")
	flag.Parse()

	symbols := strings.Split(*symbolsStr, ",")
	var scenarios []Scenario
	for _, symbol := range symbols {
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			continue
		}
		scenarios = append(scenarios,
			Scenario{"Buy " + symbol, http.MethodPost, "/buy", url.Values{"symbol": {symbol}, "shares": {"1"}}, http.StatusFound},
			Scenario{"Sell " + symbol, http.MethodPost, "/sell", url.Values{"symbol": {symbol}, "shares": {"1"}}, http.StatusFound},
			Scenario{"Quote " + symbol, http.MethodPost, "/quote", url.Values{"symbol": {symbol}}, http.StatusOK},
		)
	}
	scenarios = append(scenarios,
		Scenario{"Portfolio", http.MethodGet, "/", nil, http.StatusOK},
		Scenario{"History", http.MethodGet, "/history", nil, http.StatusOK},
	)

	fmt.Printf("Registering %d accounts at %s\n", *traders, *baseURL)
	accounts := make([]*trader, 0, *traders)
	for i := 0; i < *traders; i++ {
		t, err := register(*baseURL)
		if err != nil {
			fmt.Printf("Failed to register account: %v\n", err)
			return
		}
		accounts = append(accounts, t)
	}

	fmt.Printf("Scenarios: %d\n", len(scenarios))
	fmt.Printf("Concurrency: %d goroutines\n", *concurrency)
	fmt.Printf("Total requests: %d\n", *totalRequests)
	fmt.Printf("Delay between requests: %d ms\n", *delayMs)

	stats := &TestStats{
		TotalRequests:   *totalRequests,
		MinResponseTime: time.Hour,
		ErrorCounts:     make(map[string]int),
		ResponseTimes:   make([]time.Duration, 0, *totalRequests),
		ScenarioStats:   make(map[string]int),
	}

	results := make(chan TestResult, *totalRequests)
	jobs := make(chan int, *totalRequests)

	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(*baseURL, *delayMs, accounts, scenarios, jobs, results)
		}()
	}

	for i := 0; i < *totalRequests; i++ {
		jobs <- i
	}
	close(jobs)

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for result := range results {
			stats.Lock.Lock()
			stats.ScenarioStats[result.Scenario]++
			switch {
			case result.Success:
				stats.SuccessfulRequests++
			case result.Rejected:
				stats.RejectedRequests++
			default:
				stats.FailedRequests++
				errMsg := "unknown"
				if result.Error != nil {
					errMsg = result.Error.Error()
				}
				stats.ErrorCounts[errMsg]++
			}

			stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
			stats.TotalResponseTime += result.ResponseTime
			if result.ResponseTime < stats.MinResponseTime {
				stats.MinResponseTime = result.ResponseTime
			}
			if result.ResponseTime > stats.MaxResponseTime {
				stats.MaxResponseTime = result.ResponseTime
			}
			stats.Lock.Unlock()
		}
	}()

	startTime := time.Now()
	fmt.Println("Test running...")

	ticker := time.NewTicker(1 * time.Second)
	go func() {
		for range ticker.C {
			stats.Lock.Lock()
			completed := stats.SuccessfulRequests + stats.RejectedRequests + stats.FailedRequests
			if completed > 0 {
				fmt.Printf("Progress: %d/%d requests completed (%.1f%%)\n",
					completed, stats.TotalRequests, float64(completed)/float64(stats.TotalRequests)*100)
			}
			stats.Lock.Unlock()
		}
	}()

	wg.Wait()
	close(results)
	<-collected
	ticker.Stop()

	stats.TotalTime = time.Since(startTime)
	printResults(stats)
}

func newClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Timeout: 10 * time.Second,
		Jar:     jar,
		// Keep the redirect status visible
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// register creates a fresh account; the jar keeps its session cookie
func register(baseURL string) (*trader, error) {
	t := &trader{
		username: "load-" + uuid.NewString()[:8],
		client:   newClient(),
	}
	resp, err := t.client.PostForm(baseURL+"/register", url.Values{
		"username":     {t.username},
		"password":     {"load-test"},
		"confirmation": {"load-test"},
	})
	if err != nil {
		return nil, err
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		return nil, fmt.Errorf("register %s: HTTP status code %d", t.username, resp.StatusCode)
	}
	return t, nil
}

func worker(baseURL string, delayMs int, accounts []*trader, scenarios []Scenario, jobs <-chan int, results chan<- TestResult) {
	for range jobs {
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}

		account := accounts[rand.Intn(len(accounts))]
		scenario := scenarios[rand.Intn(len(scenarios))]
		results <- send(account, baseURL, scenario)
	}
}

func send(account *trader, baseURL string, scenario Scenario) TestResult {
	result := TestResult{Scenario: scenario.Name}

	var body *strings.Reader
	if scenario.Form != nil {
		body = strings.NewReader(scenario.Form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequest(scenario.Method, baseURL+scenario.Path, body)
	if err != nil {
		result.Error = err
		return result
	}
	if scenario.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	startTime := time.Now()
	resp, err := account.client.Do(req)
	result.ResponseTime = time.Since(startTime)
	if err != nil {
		result.Error = err
		return result
	}
	resp.Body.Close()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode == scenario.OK:
		result.Success = true
	case resp.StatusCode == http.StatusForbidden:
		result.Rejected = true
	case resp.StatusCode == http.StatusFound && resp.Header.Get("Location") == "/login":
		result.Error = errors.New("session lost")
	default:
		result.Error = fmt.Errorf("HTTP status code %d", resp.StatusCode)
	}
	return result
}

func percentile(sorted []time.Duration, p int) time.Duration {
	return sorted[len(sorted)*p/100]
}

func printResults(stats *TestStats) {
	rps := float64(stats.SuccessfulRequests+stats.RejectedRequests) / stats.TotalTime.Seconds()

	var avgResponseTime time.Duration
	var p50, p90, p95, p99 time.Duration
	if len(stats.ResponseTimes) > 0 {
		avgResponseTime = stats.TotalResponseTime / time.Duration(len(stats.ResponseTimes))

		sortedTimes := make([]time.Duration, len(stats.ResponseTimes))
		copy(sortedTimes, stats.ResponseTimes)
		sort.Slice(sortedTimes, func(i, j int) bool { return sortedTimes[i] < sortedTimes[j] })

		p50 = percentile(sortedTimes, 50)
		p90 = percentile(sortedTimes, 90)
		p95 = percentile(sortedTimes, 95)
		p99 = percentile(sortedTimes, 99)
	}

	pct := func(n int) float64 { return float64(n) / float64(stats.TotalRequests) * 100 }

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Requests:      %d\n", stats.TotalRequests)
	fmt.Printf("Accepted Requests:   %d (%.1f%%)\n", stats.SuccessfulRequests, pct(stats.SuccessfulRequests))
	fmt.Printf("Rejected Orders:     %d (%.1f%%)\n", stats.RejectedRequests, pct(stats.RejectedRequests))
	fmt.Printf("Failed Requests:     %d (%.1f%%)\n", stats.FailedRequests, pct(stats.FailedRequests))
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())
	fmt.Printf("Answered per second: %.2f\n", rps)

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average Response:    %v\n", avgResponseTime)
	fmt.Printf("Minimum Response:    %v\n", stats.MinResponseTime)
	fmt.Printf("Maximum Response:    %v\n", stats.MaxResponseTime)
	fmt.Printf("P50 Response:        %v\n", p50)
	fmt.Printf("P90 Response:        %v\n", p90)
	fmt.Printf("P95 Response:        %v\n", p95)
	fmt.Printf("P99 Response:        %v\n", p99)

	fmt.Println("\n----------------- SCENARIO DISTRIBUTION -----------------")
	names := make([]string, 0, len(stats.ScenarioStats))
	for name := range stats.ScenarioStats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-15s: %d requests (%.1f%%)\n", name, stats.ScenarioStats[name], pct(stats.ScenarioStats[name]))
	}

	if stats.FailedRequests > 0 {
		fmt.Println("\n----------------- ERROR DISTRIBUTION -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d (%.1f%%)\n", errMsg, count, pct(count))
		}
	}
	fmt.Println("================================================")
}
