package loadgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/sandeepkv93/authplus-license-service/internal/codec"
	"github.com/sandeepkv93/authplus-license-service/internal/observability"
)

type Credentials struct {
	Username string
	Password string
}

type Config struct {
	BaseURL     string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
	Accounts    int

	Admin  Credentials
	Client Credentials
	// Decrypter is optional. When set, 200 responses are decoded and their
	// status field classified.
	Decrypter codec.Decrypter
}

type Result struct {
	TotalRequests  int64
	Failures       int64
	Status2xx      int64
	Status4xx      int64
	Status5xx      int64
	StatusSuccess  int64
	StatusFailure  int64
	DecodeFailures int64
}

type request struct {
	method string
	path   string
	creds  Credentials
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 15
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.Accounts <= 0 {
		cfg.Accounts = 25
	}
	profile := strings.ToLower(cfg.Profile)
	if profile == "" {
		profile = "mixed"
	}
	build, ok := profiles[profile]
	if !ok {
		return Result{}, fmt.Errorf("unknown profile: %s", cfg.Profile)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	var decoder *codec.Client
	if cfg.Decrypter != nil {
		decoder = codec.NewClient(cfg.Decrypter)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var res Result
	jobs := make(chan request, cfg.Concurrency*2)
	wg := sync.WaitGroup{}
	for range cfg.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				send(ctx, client, decoder, cfg.BaseURL, profile, job, &res)
			}
		}()
	}

	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)^0x9e3779b97f4a7c15))
	limiter := rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		select {
		case jobs <- build(rng, cfg):
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()
	return Result{
		TotalRequests:  atomic.LoadInt64(&res.TotalRequests),
		Failures:       atomic.LoadInt64(&res.Failures),
		Status2xx:      atomic.LoadInt64(&res.Status2xx),
		Status4xx:      atomic.LoadInt64(&res.Status4xx),
		Status5xx:      atomic.LoadInt64(&res.Status5xx),
		StatusSuccess:  atomic.LoadInt64(&res.StatusSuccess),
		StatusFailure:  atomic.LoadInt64(&res.StatusFailure),
		DecodeFailures: atomic.LoadInt64(&res.DecodeFailures),
	}, nil
}

func send(ctx context.Context, client *http.Client, decoder *codec.Client, baseURL, profile string, job request, res *Result) {
	req, err := http.NewRequestWithContext(ctx, job.method, baseURL+job.path, nil)
	if err != nil {
		atomic.AddInt64(&res.Failures, 1)
		return
	}
	if job.creds.Username != "" {
		req.SetBasicAuth(job.creds.Username, job.creds.Password)
	}
	resp, err := client.Do(req)
	if err != nil {
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			atomic.AddInt64(&res.Failures, 1)
		}
		return
	}
	defer resp.Body.Close()
	atomic.AddInt64(&res.TotalRequests, 1)

	class := "other"
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		class = "2xx"
		atomic.AddInt64(&res.Status2xx, 1)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		class = "4xx"
		atomic.AddInt64(&res.Status4xx, 1)
	case resp.StatusCode >= 500:
		class = "5xx"
		atomic.AddInt64(&res.Status5xx, 1)
	}
	observability.RecordLoadgenRequest(ctx, class, profile)

	if decoder == nil || resp.StatusCode != http.StatusOK || job.path == "/" {
		return
	}
	var fields map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
		if ctx.Err() == nil {
			atomic.AddInt64(&res.DecodeFailures, 1)
		}
		return
	}
	if _, ok := fields["status"]; !ok {
		// payload responses (fetch, stats, license) carry no status field
		if _, err := decoder.Decode(fields); err != nil {
			atomic.AddInt64(&res.DecodeFailures, 1)
			return
		}
		atomic.AddInt64(&res.StatusSuccess, 1)
		return
	}
	status, _, err := decoder.Status(fields)
	if err != nil {
		atomic.AddInt64(&res.DecodeFailures, 1)
		return
	}
	switch status {
	case codec.StatusSuccess:
		atomic.AddInt64(&res.StatusSuccess, 1)
	case codec.StatusFailure:
		atomic.AddInt64(&res.StatusFailure, 1)
	default:
		atomic.AddInt64(&res.DecodeFailures, 1)
	}
}

var profiles = map[string]func(*rand.Rand, Config) request{
	"login": loginRequest,
	"admin": adminRequest,
	"mixed": func(rng *rand.Rand, cfg Config) request {
		switch n := rng.IntN(10); {
		case n == 0:
			return request{method: http.MethodGet, path: "/"}
		case n < 7:
			return loginRequest(rng, cfg)
		default:
			return adminRequest(rng, cfg)
		}
	},
}

func accountName(rng *rand.Rand, cfg Config) string {
	return fmt.Sprintf("loadgen-%03d", rng.IntN(cfg.Accounts))
}

func loginRequest(rng *rand.Rand, cfg Config) request {
	q := url.Values{}
	user := accountName(rng, cfg)
	q.Set("username", user)
	q.Set("password", user+"-password")
	q.Set("hwid", user+"-hwid")
	return request{method: http.MethodPost, path: "/account/login?" + q.Encode(), creds: cfg.Client}
}

func adminRequest(rng *rand.Rand, cfg Config) request {
	if rng.IntN(2) == 0 {
		return request{method: http.MethodGet, path: "/stats", creds: cfg.Admin}
	}
	q := url.Values{}
	q.Set("username", accountName(rng, cfg))
	return request{method: http.MethodGet, path: "/account/fetch?" + q.Encode(), creds: cfg.Admin}
}
