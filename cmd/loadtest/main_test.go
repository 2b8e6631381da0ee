package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func withCLIArgs(t *testing.T, args []string, fn func()) {
	t.Helper()

	oldArgs := os.Args
	oldCommandLine := flag.CommandLine

	os.Args = append([]string{"loadtest"}, args...)
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flag.CommandLine = fs

	defer func() {
		os.Args = oldArgs
		flag.CommandLine = oldCommandLine
	}()

	fn()
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    loadMode
		wantErr string
	}{
		{name: "create", input: "create", want: modeCreate},
		{name: "create-pay", input: "create-pay", want: modeCreatePay},
		{name: "create-pay-cancel", input: "create-pay-cancel", want: modeCreatePayCancel},
		{name: "unsupported", input: "bad", wantErr: "unsupported mode"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseMode(tc.input)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("unexpected mode: got %q want %q", got, tc.want)
			}
		})
	}
}

func TestParseConfig(t *testing.T) {
	t.Run("count mode", func(t *testing.T) {
		withCLIArgs(t, []string{
			"-base-url=http://127.0.0.1:8080",
			"-mode=create-pay",
			"-total=12",
			"-concurrency=3",
			"-timeout=2s",
			"-cancel-rate=10",
			"-service-name=Dry Cleaning",
			"-price-centavos=9900",
			"-customer-tag=stage",
			"-output=/tmp/out.json",
		}, func() {
			cfg, err := parseConfig()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !cfg.totalSet {
				t.Fatalf("expected totalSet=true")
			}
			if cfg.duration != 0 {
				t.Fatalf("expected zero duration, got %s", cfg.duration)
			}
			if cfg.mode != modeCreatePay {
				t.Fatalf("unexpected mode: %s", cfg.mode)
			}
			if cfg.total != 12 || cfg.concurrency != 3 {
				t.Fatalf("unexpected numeric config: %+v", cfg)
			}
			if cfg.timeout != 2*time.Second {
				t.Fatalf("unexpected timeout: %s", cfg.timeout)
			}
			if cfg.priceCentavos != 9900 {
				t.Fatalf("unexpected price: %d", cfg.priceCentavos)
			}
		})
	})

	t.Run("duration mode", func(t *testing.T) {
		withCLIArgs(t, []string{
			"-duration=3s",
			"-concurrency=2",
		}, func() {
			cfg, err := parseConfig()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.duration != 3*time.Second {
				t.Fatalf("unexpected duration: %s", cfg.duration)
			}
			if cfg.totalSet {
				t.Fatalf("expected totalSet=false when -total was not provided")
			}
		})
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name    string
			args    []string
			wantErr string
		}{
			{name: "invalid duration", args: []string{"-duration=bad"}, wantErr: "parse duration"},
			{name: "negative duration", args: []string{"-duration=-1s"}, wantErr: "duration must be >= 0"},
			{name: "invalid cancel rate", args: []string{"-cancel-rate=101"}, wantErr: "cancel-rate must be between 0 and 100"},
			{name: "empty total", args: []string{"-duration=0s", "-total=0"}, wantErr: "total must be > 0"},
			{name: "empty base url", args: []string{"-base-url= "}, wantErr: "base-url is required"},
			{name: "invalid price", args: []string{"-price-centavos=0"}, wantErr: "price-centavos must be > 0"},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				withCLIArgs(t, tc.args, func() {
					_, err := parseConfig()
					if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
						t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
					}
				})
			})
		}
	})
}

func TestDispatchJobs(t *testing.T) {
	t.Run("count mode", func(t *testing.T) {
		jobs := make(chan int, 16)
		dispatchJobs(jobs, config{total: 5})

		var got []int
		for v := range jobs {
			got = append(got, v)
		}
		if !slices.Equal(got, []int{0, 1, 2, 3, 4}) {
			t.Fatalf("unexpected jobs sequence: %v", got)
		}
	})

	t.Run("duration mode", func(t *testing.T) {
		jobs := make(chan int, 32)
		done := make(chan struct{})
		go func() {
			dispatchJobs(jobs, config{duration: 20 * time.Millisecond})
			close(done)
		}()

		count := 0
		for range jobs {
			count++
		}
		<-done
		if count == 0 {
			t.Fatalf("expected non-zero jobs for duration mode")
		}
	})

	t.Run("duration with explicit max total", func(t *testing.T) {
		jobs := make(chan int, 16)
		dispatchJobs(jobs, config{duration: time.Second, total: 3, totalSet: true})
		count := 0
		for range jobs {
			count++
		}
		if count != 3 {
			t.Fatalf("expected 3 jobs, got %d", count)
		}
	})
}

func TestCollectorAndReport(t *testing.T) {
	c := newCollector()
	c.record("scenario", 10*time.Millisecond, http.StatusOK)
	c.record("scenario", 20*time.Millisecond, http.StatusUnprocessableEntity)
	c.record("CreateOrder", 15*time.Millisecond, http.StatusCreated)
	c.record("RecordPayment", 5*time.Millisecond, 0)

	snap, ok := c.snapshot("scenario")
	if !ok {
		t.Fatalf("scenario snapshot missing")
	}
	if snap.Calls != 2 || snap.Success != 1 || snap.Failed != 1 {
		t.Fatalf("unexpected scenario snapshot: %+v", snap)
	}
	if snap.Codes["200"] != 1 || snap.Codes["422"] != 1 {
		t.Fatalf("unexpected codes: %+v", snap.Codes)
	}

	paySnap, ok := c.snapshot("RecordPayment")
	if !ok {
		t.Fatalf("RecordPayment snapshot missing")
	}
	if paySnap.Codes["transport_error"] != 1 || paySnap.Failed != 1 {
		t.Fatalf("unexpected transport error accounting: %+v", paySnap)
	}

	r := c.buildReport(time.Now(), 2*time.Second)
	if r.TotalScenarios != 2 || r.FailedScenarios != 1 {
		t.Fatalf("unexpected report totals: %+v", r)
	}
	if r.RPS <= 0 {
		t.Fatalf("expected positive rps, got %f", r.RPS)
	}
	if _, ok := r.Methods["CreateOrder"]; !ok {
		t.Fatalf("expected CreateOrder stats in report")
	}
}

func TestUtilityFunctions(t *testing.T) {
	if got := codeLabel(0); got != "transport_error" {
		t.Fatalf("codeLabel(0) = %s", got)
	}
	if got := codeLabel(http.StatusConflict); got != "409" {
		t.Fatalf("unexpected code label: %s", got)
	}

	if got := ratio(1, 4); got != 0.25 {
		t.Fatalf("ratio mismatch: %f", got)
	}
	if got := ratio(1, 0); got != 0 {
		t.Fatalf("ratio with zero total must be 0, got %f", got)
	}

	values := []float64{10, 20, 30, 40}
	summary := buildLatencySummary(values)
	if summary.P50 <= 0 || summary.P95 <= 0 || summary.Max != 40 {
		t.Fatalf("unexpected latency summary: %+v", summary)
	}
	if p := percentile(values, 95); p <= 0 {
		t.Fatalf("unexpected percentile: %f", p)
	}

	if got := runTarget(config{total: 50}); got != "count:50" {
		t.Fatalf("unexpected run target: %s", got)
	}
	if got := runTarget(config{duration: 2 * time.Second}); got != "duration:2s" {
		t.Fatalf("unexpected duration run target: %s", got)
	}
	if got := runTarget(config{duration: 2 * time.Second, total: 10, totalSet: true}); got != "duration:2s,max-total:10" {
		t.Fatalf("unexpected capped duration run target: %s", got)
	}

	if shouldCancelScenario(5, 0) {
		t.Fatal("cancel rate 0 must never cancel")
	}
	if !shouldCancelScenario(5, 100) {
		t.Fatal("cancel rate 100 must always cancel")
	}
	if !shouldCancelScenario(3, 10) || shouldCancelScenario(42, 10) {
		t.Fatal("unexpected modulo cancel behavior")
	}
}

func TestWriteJSONReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")

	sample := report{TotalScenarios: 2, SuccessScenarios: 2}
	if err := writeJSONReport(path, sample); err != nil {
		t.Fatalf("writeJSONReport error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	var decoded report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if decoded.TotalScenarios != 2 || decoded.SuccessScenarios != 2 {
		t.Fatalf("unexpected decoded report: %+v", decoded)
	}
}

// fakeAPI эмулирует HTTP API сервиса для сценариев нагрузочного теста.
type fakeAPI struct {
	mu            sync.Mutex
	orderSeq      int64
	keysByPath    map[string][]string
	createStatus  int
	paymentStatus int
	cancelStatus  int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		keysByPath:    make(map[string][]string),
		createStatus:  http.StatusCreated,
		paymentStatus: http.StatusOK,
		cancelStatus:  http.StatusOK,
	}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/customers", func(w http.ResponseWriter, r *http.Request) {
		f.recordKey("customers", r)
		writeJSON(w, http.StatusCreated, map[string]any{"id": "cust-load"})
	})
	mux.HandleFunc("POST /v1/orders", func(w http.ResponseWriter, r *http.Request) {
		f.recordKey("orders", r)
		if f.createStatus >= http.StatusBadRequest {
			writeJSON(w, f.createStatus, map[string]any{"code": "validation_failed"})
			return
		}
		id := atomic.AddInt64(&f.orderSeq, 1)
		writeJSON(w, f.createStatus, map[string]any{
			"order": map[string]any{"id": fmt.Sprintf("order-%d", id)},
		})
	})
	mux.HandleFunc("POST /v1/orders/{id}/payment", func(w http.ResponseWriter, r *http.Request) {
		f.recordKey("payment", r)
		writeJSON(w, f.paymentStatus, map[string]any{"order": map[string]any{"id": r.PathValue("id")}})
	})
	mux.HandleFunc("POST /v1/orders/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		f.recordKey("status", r)
		writeJSON(w, f.cancelStatus, map[string]any{"id": r.PathValue("id"), "status": "cancelled"})
	})

	return mux
}

func (f *fakeAPI) recordKey(kind string, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keysByPath[kind] = append(f.keysByPath[kind], r.Header.Get(idempotencyHeader))
}

func (f *fakeAPI) keys(kind string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keysByPath[kind]...)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func testRunConfig(baseURL string) config {
	return config{
		baseURL:       baseURL,
		mode:          modeCreatePayCancel,
		timeout:       time.Second,
		serviceName:   "Wash & Fold",
		priceCentavos: 15000,
		customerTag:   "load",
	}
}

func TestHTTPHelpersAndRunScenario(t *testing.T) {
	api := newFakeAPI()
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	col := newCollector()
	cfg := testRunConfig(srv.URL)
	client := newAPIClient(cfg.baseURL, cfg.timeout)

	customerID, err := createLoadCustomer(client, cfg, "run-1", col)
	if err != nil {
		t.Fatalf("createLoadCustomer failed: %v", err)
	}
	if customerID != "cust-load" {
		t.Fatalf("unexpected customer id: %s", customerID)
	}

	if err := runScenario(client, cfg, 1, "run-1", customerID, col); err != nil {
		t.Fatalf("runScenario failed: %v", err)
	}

	createKeys := api.keys("orders")
	if len(createKeys) != 1 || createKeys[0] != "lt-create-run-1-1" {
		t.Fatalf("unexpected create keys: %v", createKeys)
	}
	payKeys := api.keys("payment")
	if len(payKeys) != 1 || payKeys[0] != "lt-pay-run-1-1" {
		t.Fatalf("unexpected payment keys: %v", payKeys)
	}
	cancelKeys := api.keys("status")
	if len(cancelKeys) != 1 || cancelKeys[0] != "lt-cancel-run-1-1" {
		t.Fatalf("unexpected cancel keys: %v", cancelKeys)
	}

	snap, ok := col.snapshot("CreateOrder")
	if !ok || snap.Calls == 0 {
		t.Fatalf("CreateOrder metric missing")
	}

	api.createStatus = http.StatusUnprocessableEntity
	if err := runScenario(client, cfg, 2, "run-2", customerID, col); err == nil || !strings.Contains(err.Error(), "status 422") {
		t.Fatalf("expected 422 error, got %v", err)
	}
	api.createStatus = http.StatusCreated

	createOnly := cfg
	createOnly.mode = modeCreate
	if err := runScenario(client, createOnly, 3, "run-3", customerID, col); err != nil {
		t.Fatalf("create-only scenario failed: %v", err)
	}
	if got := api.keys("payment"); len(got) != 1 {
		t.Fatalf("create-only mode must not record payments, got %v", got)
	}
}

func TestRunScenario_TransportError(t *testing.T) {
	col := newCollector()
	cfg := testRunConfig("http://127.0.0.1:1")
	client := newAPIClient(cfg.baseURL, 200*time.Millisecond)

	if err := runScenario(client, cfg, 1, "run-1", "cust-load", col); err == nil {
		t.Fatal("expected transport error")
	}

	snap, ok := col.snapshot("scenario")
	if !ok || snap.Codes["transport_error"] != 1 {
		t.Fatalf("expected transport_error scenario code, got %+v", snap)
	}
}

func TestPrintReport(t *testing.T) {
	r := report{
		TotalScenarios:   2,
		SuccessScenarios: 2,
		Methods: map[string]methodReport{
			"scenario":    {Calls: 2, Success: 2},
			"CreateOrder": {Calls: 2, Success: 2},
		},
	}

	out := captureStdout(t, func() {
		printReport(r, config{mode: modeCreate, total: 2})
	})

	if !strings.Contains(out, "Load test summary") {
		t.Fatalf("expected summary header, got: %s", out)
	}
	if !strings.Contains(out, "CreateOrder") {
		t.Fatalf("expected method section, got: %s", out)
	}
}

func TestMainSmoke(t *testing.T) {
	api := newFakeAPI()
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	dir := t.TempDir()
	outPath := filepath.Join(dir, "main-report.json")

	withCLIArgs(t, []string{
		"-base-url=" + srv.URL,
		"-mode=create",
		"-total=5",
		"-concurrency=2",
		"-timeout=2s",
		"-output=" + outPath,
	}, func() {
		main()
	})

	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("expected report file from main: %v", err)
	}
	if got := api.keys("orders"); len(got) != 5 {
		t.Fatalf("expected 5 create calls, got %d", len(got))
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = oldStdout

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured output: %v", err)
	}
	_ = r.Close()

	return string(data)
}
