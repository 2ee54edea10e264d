package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"
)

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	UseLLM      bool
	Pairs       []Pair
}

// Pair is one job description and résumé submitted together.
type Pair struct {
	JobText    string `json:"job_text"`
	ResumeText string `json:"resume_text"`
}

type analyzeRequest struct {
	JobText    string `json:"job_text"`
	ResumeText string `json:"resume_text"`
	UseLLM     bool   `json:"use_llm"`
}

type analyzeResponse struct {
	Notes struct {
		SkillMatch float64 `json:"skill_match"`
	} `json:"notes"`
}

var samplePairs = []Pair{
	{
		JobText:    "Backend engineer: Python, FastAPI, Postgres, Docker, CI/CD with GitHub Actions.",
		ResumeText: "Built FastAPI services in Python backed by Postgres; containerised with Docker.",
	},
	{
		JobText:    "Frontend role using React, TypeScript, Next.js and Tailwind. Testing with Jest and Playwright.",
		ResumeText: "Shipped a Next.js storefront in TypeScript and React; unit testing with Jest.",
	},
	{
		JobText:    "ML engineer: PyTorch, TensorFlow, pandas, numpy, scikit-learn, AWS.",
		ResumeText: "Machine learning projects with pandas, numpy and PyTorch on GCP.",
	},
	{
		JobText:    "Platform engineer: Kubernetes, Terraform, Ansible, Linux, Nginx, Kafka, Redis.",
		ResumeText: "Ran Kubernetes clusters on Linux with Terraform; operated Redis and RabbitMQ.",
	},
	{
		JobText:    "Java developer with REST API design, MySQL, SQL Server and Jenkins pipelines.",
		ResumeText: "Java and Spring services exposing REST APIs over MySQL, built in Jenkins.",
	},
	{
		JobText:    "",
		ResumeText: "",
	},
}

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "base URL of the ai-tailor service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	useLLM := flag.Bool("llm", false, "request a generative hint with every analysis")
	pairsFile := flag.String("pairs", "", "optional JSON file with [{job_text, resume_text}] pairs")
	flag.Parse()

	pairs := samplePairs
	if *pairsFile != "" {
		loaded, err := loadPairs(*pairsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load pairs: %v\n", err)
			os.Exit(1)
		}
		pairs = loaded
	}

	cfg := Config{
		BaseURL:     *baseURL,
		Concurrency: *concurrency,
		Duration:    *duration,
		UseLLM:      *useLLM,
		Pairs:       pairs,
	}

	fmt.Println("=== AI Tailor Load Test ===")
	fmt.Printf("Target:      %s/analyze\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Pairs:       %d unique\n", len(cfg.Pairs))
	fmt.Printf("LLM:         %t\n", cfg.UseLLM)
	fmt.Println()

	stats := runLoadTest(cfg)
	if !printReport(stats.Summarize(), cfg.Duration) {
		os.Exit(1)
	}
}

func loadPairs(path string) ([]Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pairs []Pair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%s contains no pairs", path)
	}
	return pairs, nil
}

func runLoadTest(cfg Config) *Stats {
	stats := NewStats()
	timeout := 10 * time.Second
	if cfg.UseLLM {
		timeout = 60 * time.Second
	}
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	bodies := make([][]byte, len(cfg.Pairs))
	for i, p := range cfg.Pairs {
		bodies[i], _ = json.Marshal(analyzeRequest{JobText: p.JobText, ResumeText: p.ResumeText, UseLLM: cfg.UseLLM})
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	fmt.Print("Running")

	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			idx := workerID

			for ctx.Err() == nil {
				body := bodies[idx%len(bodies)]
				idx++

				start := time.Now()
				status, score, err := analyze(ctx, client, cfg.BaseURL, body)
				if ctx.Err() != nil {
					return
				}
				stats.RecordRequest(time.Since(start), status, score, err)
			}
		}(w)
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return stats
}

func analyze(ctx context.Context, client *http.Client, baseURL string, body []byte) (int, float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, 0, nil
	}
	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return resp.StatusCode, 0, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, out.Notes.SkillMatch, nil
}

// printReport writes the summary and reports whether any request completed.
func printReport(s Summary, duration time.Duration) bool {
	fmt.Println("=== Results ===")
	fmt.Printf("Total Requests:  %d\n", s.Total)
	fmt.Printf("Successful:      %d\n", s.Success)
	fmt.Printf("Errors:          %d\n", s.Errors)

	if s.Total > 0 {
		fmt.Printf("Error Rate:      %.2f%%\n", float64(s.Errors)/float64(s.Total)*100)
		fmt.Printf("Requests/sec:    %.2f\n", float64(s.Total)/duration.Seconds())
		fmt.Printf("Avg Skill Match: %.3f\n", s.AvgScore)
	}

	if s.Max > 0 {
		fmt.Println()
		fmt.Println("=== Latency ===")
		fmt.Printf("Min:    %s\n", s.Min)
		fmt.Printf("Avg:    %s\n", s.Avg)
		fmt.Printf("P50:    %s\n", s.P50)
		fmt.Printf("P90:    %s\n", s.P90)
		fmt.Printf("P95:    %s\n", s.P95)
		fmt.Printf("P99:    %s\n", s.P99)
		fmt.Printf("Max:    %s\n", s.Max)
		fmt.Printf("StdDev: %s\n", s.StdDev)
	}

	fmt.Println()
	fmt.Println("=== Status Codes ===")
	codes := make([]int, 0, len(s.StatusCodes))
	for code := range s.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Printf("  %d: %d\n", code, s.StatusCodes[code])
	}

	if s.Total == 0 {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the service running?")
		return false
	}
	return true
}
