package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/trueamperror/rift-otc-api/internal/auth"
	"github.com/trueamperror/rift-otc-api/internal/types"
)

const (
	minDeals      = 10
	maxDeals      = 40
	numWorkers    = 4
	serverAddress = "http://localhost:8080"
)

type tokenChoice struct {
	id     string
	symbol string
}

var (
	tokens = []tokenChoice{
		{"uniswap", "UNI"},
		{"arbitrum", "ARB"},
		{"aave", "AAVE"},
		{"chainlink", "LINK"},
		{"optimism", "OP"},
	}
	lockPeriods = types.LockPeriods
)

// init configures the logger for the simulation with pretty printing and timestamp
func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// routeStats tracks performance statistics for an API endpoint
type routeStats struct {
	name       string
	durations  []time.Duration
	totalCalls int
	failures   int
}

func (rs *routeStats) addDuration(d time.Duration) {
	rs.durations = append(rs.durations, d)
	rs.totalCalls++
}

// calculate computes min, max, mean, median, p95 and p99 from the recorded
// durations
func (rs *routeStats) calculate() (min, max, mean, median, p95, p99 time.Duration) {
	if len(rs.durations) == 0 {
		return 0, 0, 0, 0, 0, 0
	}

	sort.Slice(rs.durations, func(i, j int) bool {
		return rs.durations[i] < rs.durations[j]
	})

	min = rs.durations[0]
	max = rs.durations[len(rs.durations)-1]

	var sum time.Duration
	for _, d := range rs.durations {
		sum += d
	}
	mean = sum / time.Duration(len(rs.durations))
	median = rs.durations[len(rs.durations)/2]

	p95idx := int(math.Ceil(float64(len(rs.durations))*0.95)) - 1
	p99idx := int(math.Ceil(float64(len(rs.durations))*0.99)) - 1
	p95 = rs.durations[p95idx]
	p99 = rs.durations[p99idx]

	return
}

// simulationClient handles HTTP communication with the deal API
type simulationClient struct {
	baseURL   string
	authToken string
	client    *http.Client
	mu        sync.Mutex
	stats     map[string]*routeStats
}

func newSimulationClient() (*simulationClient, error) {
	sc := &simulationClient{
		baseURL: serverAddress,
		client:  &http.Client{Timeout: 10 * time.Second},
		stats: map[string]*routeStats{
			"auth":    {name: "Authentication"},
			"create":  {name: "Create Deal"},
			"accept":  {name: "Accept Deal"},
			"claim":   {name: "Claim Deal"},
			"cancel":  {name: "Cancel Deal"},
			"get":     {name: "Get Deal"},
			"list":    {name: "List Deals"},
			"suggest": {name: "Suggest Discount"},
		},
	}

	token, err := sc.authenticate()
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	sc.authToken = token

	return sc, nil
}

func (sc *simulationClient) record(route string, start time.Time, failed bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	stats := sc.stats[route]
	stats.addDuration(time.Since(start))
	if failed {
		stats.failures++
	}
}

// envelope is the standard API response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (sc *simulationClient) do(method, route, path string, body interface{}, out interface{}) (string, error) {
	start := time.Now()

	var payload *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			sc.record(route, start, true)
			return "", err
		}
		payload = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequest(method, sc.baseURL+path, payload)
	if err != nil {
		sc.record(route, start, true)
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if sc.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+sc.authToken)
	}

	resp, err := sc.client.Do(req)
	if err != nil {
		sc.record(route, start, true)
		return "", err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		sc.record(route, start, true)
		return "", err
	}

	if !env.Success {
		sc.record(route, start, true)
		code := "UNKNOWN"
		message := fmt.Sprintf("status %d", resp.StatusCode)
		if env.Error != nil {
			code = env.Error.Code
			message = env.Error.Message
		}
		return code, fmt.Errorf("%s: %s", code, message)
	}

	sc.record(route, start, false)
	if out != nil {
		return "", json.Unmarshal(env.Data, out)
	}
	return "", nil
}

func (sc *simulationClient) authenticate() (string, error) {
	start := time.Now()

	credentials := auth.Credentials{
		APIKey:    auth.TestAPIKey,
		APISecret: auth.TestAPISecret,
	}

	raw, err := json.Marshal(credentials)
	if err != nil {
		return "", err
	}

	resp, err := sc.client.Post(sc.baseURL+"/api/v1/auth/token", "application/json", bytes.NewBuffer(raw))
	if err != nil {
		sc.record("auth", start, true)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		sc.record("auth", start, true)
		return "", fmt.Errorf("authentication failed with status: %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		sc.record("auth", start, true)
		return "", err
	}

	var token auth.TokenResponse
	if err := json.Unmarshal(env.Data, &token); err != nil {
		sc.record("auth", start, true)
		return "", err
	}

	sc.record("auth", start, false)
	return token.Token, nil
}

// runDealLifecycle drives one deal through a randomized lifecycle:
// create, then either cancel it or accept it and attempt an early claim.
func (sc *simulationClient) runDealLifecycle(worker int) {
	logger := log.With().Int("worker", worker).Logger()

	token := tokens[rand.Intn(len(tokens))]
	seller := fmt.Sprintf("0xseller%032d", rand.Intn(1000))

	var suggestion struct {
		SuggestedDiscount float64 `json:"suggested_discount"`
	}
	lockPeriod := lockPeriods[rand.Intn(len(lockPeriods))]
	path := fmt.Sprintf("/api/v1/tokens/%s/suggest-discount?lock_period=%d&risk_score=%.1f",
		token.id, lockPeriod, rand.Float64()*10)
	if _, err := sc.do(http.MethodGet, "suggest", path, nil, &suggestion); err != nil {
		logger.Warn().Err(err).Msg("discount suggestion failed, using default")
		suggestion.SuggestedDiscount = 15
	}

	createReq := types.CreateDealRequest{
		SellerAddress: seller,
		TokenID:       token.id,
		TokenSymbol:   token.symbol,
		TokenAmount:   float64(100 + rand.Intn(10000)),
		Discount:      suggestion.SuggestedDiscount,
		LockPeriod:    lockPeriod,
	}

	var deal types.Deal
	if _, err := sc.do(http.MethodPost, "create", "/api/v1/deals", createReq, &deal); err != nil {
		logger.Error().Err(err).Str("token", token.id).Msg("failed to create deal")
		return
	}
	logger.Info().
		Str("deal_id", deal.DealID).
		Float64("total_cost", deal.TotalCost).
		Msg("created deal")

	if rand.Float64() < 0.3 {
		// Seller walks away.
		cancelReq := types.CancelDealRequest{SellerAddress: seller}
		if _, err := sc.do(http.MethodPost, "cancel", "/api/v1/deals/"+deal.DealID+"/cancel", cancelReq, nil); err != nil {
			logger.Error().Err(err).Str("deal_id", deal.DealID).Msg("failed to cancel deal")
		}
		return
	}

	buyer := fmt.Sprintf("0xbuyer%033d", rand.Intn(1000))
	acceptReq := types.AcceptDealRequest{BuyerAddress: buyer}
	if _, err := sc.do(http.MethodPost, "accept", "/api/v1/deals/"+deal.DealID+"/accept", acceptReq, &deal); err != nil {
		logger.Error().Err(err).Str("deal_id", deal.DealID).Msg("failed to accept deal")
		return
	}

	// The lock period has not passed, so the claim must be rejected with an
	// invalid transition; anything else is a bug worth logging loudly.
	if code, err := sc.do(http.MethodPost, "claim", "/api/v1/deals/"+deal.DealID+"/claim", nil, nil); err == nil {
		logger.Error().Str("deal_id", deal.DealID).Msg("early claim unexpectedly succeeded")
	} else if code != "INVALID_TRANSITION" {
		logger.Error().Err(err).Str("deal_id", deal.DealID).Msg("early claim failed with unexpected error")
	}

	// A cancel after funding must also be rejected.
	cancelReq := types.CancelDealRequest{SellerAddress: seller}
	if code, err := sc.do(http.MethodPost, "cancel", "/api/v1/deals/"+deal.DealID+"/cancel", cancelReq, nil); err == nil {
		logger.Error().Str("deal_id", deal.DealID).Msg("cancel of funded deal unexpectedly succeeded")
	} else if code != "INVALID_TRANSITION" {
		logger.Error().Err(err).Str("deal_id", deal.DealID).Msg("funded cancel failed with unexpected error")
	}

	if _, err := sc.do(http.MethodGet, "get", "/api/v1/deals/"+deal.DealID, nil, &deal); err != nil {
		logger.Error().Err(err).Str("deal_id", deal.DealID).Msg("failed to fetch deal")
		return
	}
	if deal.Status != types.StatusFunded {
		logger.Error().Str("deal_id", deal.DealID).Str("status", deal.Status).Msg("unexpected deal status after funding")
	}
}

func (sc *simulationClient) printStats() {
	fmt.Println("\n=== Simulation Results ===")
	for _, key := range []string{"auth", "suggest", "create", "accept", "claim", "cancel", "get", "list"} {
		rs := sc.stats[key]
		if rs.totalCalls == 0 {
			continue
		}
		min, max, mean, median, p95, p99 := rs.calculate()
		fmt.Printf("\n%s (%d calls, %d failures)\n", rs.name, rs.totalCalls, rs.failures)
		fmt.Printf("  min=%v max=%v mean=%v median=%v p95=%v p99=%v\n", min, max, mean, median, p95, p99)
	}
}

func main() {
	sc, err := newSimulationClient()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize simulation client")
	}

	totalDeals := minDeals + rand.Intn(maxDeals-minDeals+1)
	log.Info().Int("deals", totalDeals).Int("workers", numWorkers).Msg("starting deal lifecycle simulation")

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for range jobs {
				sc.runDealLifecycle(worker)
			}
		}(w)
	}

	for i := 0; i < totalDeals; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Final listing pass over the deal book.
	var open []types.Deal
	if _, err := sc.do(http.MethodGet, "list", "/api/v1/deals?status=open", nil, &open); err != nil {
		log.Error().Err(err).Msg("failed to list open deals")
	} else {
		log.Info().Int("open_deals", len(open)).Msg("listed open deals")
	}

	sc.printStats()
}
