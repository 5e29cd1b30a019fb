package engine

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/bingokit/drawsync/internal/draw"
	"github.com/bingokit/drawsync/internal/metrics"
	"github.com/bingokit/drawsync/internal/store"
	"github.com/bingokit/drawsync/internal/transport"
)

// State names one phase of the fallback state machine.
type State string

const (
	StateTryAPI    State = "try_api"
	StateTryHTML   State = "try_html"
	StateDone      State = "done"
	StateExhausted State = "exhausted"
)

// Config controls one acquisition run.
type Config struct {
	PageSize        int
	MaxPages        int
	PaceDelay       time.Duration
	HTMLURLs        []string
	HTMLPollRetries int
	HTMLPollDelay   time.Duration
	PublishTopic    string
}

// Report is the run outcome handed back to the caller and published
// downstream.
type Report struct {
	RunID         string `json:"run_id"`
	Date          string `json:"date"`
	State         State  `json:"state"`
	Fetched       int    `json:"fetched"`
	Rejected      int    `json:"rejected"`
	Added         int    `json:"added"`
	Upgraded      int    `json:"upgraded"`
	Conflicts     int    `json:"conflicts"`
	Total         int    `json:"total"`
	PrevMaxPeriod string `json:"prev_max_period"`
	NewMaxPeriod  string `json:"new_max_period"`
	Wrote         bool   `json:"wrote"`
}

// Engine drives one run: explore candidate shapes against the API, fall
// back to HTML documents, merge whatever was found, and persist only when
// the store changed. Execution is strictly sequential; one request is in
// flight at a time. Concurrent runs against the same persisted store need
// external serialization.
type Engine struct {
	cfg        Config
	dims       Dimensions
	fetcher    Fetcher
	retry      *transport.RetryPolicy
	extractor  PayloadExtractor
	normalizer Normalizer
	scraper    FallbackScraper
	gateway    store.Gateway
	publisher  Publisher
	archiver   Archiver
	idGen      IDGenerator
	pause      pauser
	logger     *zap.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithPublisher attaches a run-completion publisher.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithArchiver attaches a raw-payload archiver.
func WithArchiver(a Archiver) Option {
	return func(e *Engine) { e.archiver = a }
}

// WithIDGenerator overrides run ID generation.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.idGen = g }
}

func withPauser(p pauser) Option {
	return func(e *Engine) { e.pause = p }
}

// New constructs an Engine.
func New(
	cfg Config,
	dims Dimensions,
	fetcher Fetcher,
	retry *transport.RetryPolicy,
	extractor PayloadExtractor,
	normalizer Normalizer,
	scraper FallbackScraper,
	gateway store.Gateway,
	logger *zap.Logger,
	opts ...Option,
) *Engine {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		cfg:        cfg,
		dims:       dims,
		fetcher:    fetcher,
		retry:      retry,
		extractor:  extractor,
		normalizer: normalizer,
		scraper:    scraper,
		gateway:    gateway,
		pause:      timerPauser{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one acquisition for the target date. Only a persistence
// write failure (or a broken run ID source) surfaces as an error; every
// other condition resolves to a normal report, possibly with zero effect.
func (e *Engine) Run(ctx context.Context, date time.Time) (Report, error) {
	runID := "run"
	if e.idGen != nil {
		id, err := e.idGen.NewID()
		if err != nil {
			return Report{}, fmt.Errorf("generate run id: %w", err)
		}
		runID = id
	}
	logger := e.logger.With(zap.String("run_id", runID), zap.String("date", date.Format("2006-01-02")))
	logger.Info("Run starting")

	existing := e.gateway.Load(ctx)
	report := Report{
		RunID:         runID,
		Date:          date.Format("2006-01-02"),
		PrevMaxPeriod: existing.MaxPeriod(),
	}

	records, rawPayload, rejected := e.tryAPI(ctx, date, logger)
	report.State = StateDone
	if len(records) == 0 {
		logger.Info("Candidate space exhausted; trying HTML fallback")
		report.State = StateTryHTML
		records = e.tryHTML(ctx, logger)
		if len(records) > 0 {
			report.State = StateDone
		}
	}
	report.Fetched = len(records)
	report.Rejected = rejected

	if len(records) == 0 {
		report.State = StateExhausted
		report.Total = len(existing)
		report.NewMaxPeriod = report.PrevMaxPeriod
		metrics.TotalRunsExhausted.Inc()
		logger.Info("Run exhausted; no records this run, nothing written")
		return report, nil
	}

	merge, err := draw.Reconcile(existing, records, logger)
	if err != nil {
		return Report{}, fmt.Errorf("reconcile: %w", err)
	}
	report.Added = merge.Added
	report.Upgraded = merge.Upgraded
	report.Conflicts = merge.Conflicts
	report.Total = len(merge.Store)
	report.NewMaxPeriod = merge.Store.MaxPeriod()
	metrics.TotalRecordsMerged.Add(float64(merge.Added + merge.Upgraded))

	if merge.Changed {
		if err := e.gateway.Save(ctx, merge.Store); err != nil {
			return Report{}, fmt.Errorf("save store: %w", err)
		}
		report.Wrote = true
	}

	e.archive(ctx, runID, date, rawPayload, logger)
	e.publish(ctx, report, logger)

	logger.Info("Run finished",
		zap.String("state", string(report.State)),
		zap.Int("added", report.Added),
		zap.Int("total", report.Total),
		zap.String("prev_max_period", report.PrevMaxPeriod),
		zap.String("new_max_period", report.NewMaxPeriod),
		zap.Bool("wrote", report.Wrote),
	)
	return report, nil
}

// tryAPI walks the candidate space. The first shape whose opening page
// yields at least one normalized record gets pinned and paginated to
// completion; everything else is discarded after one probe.
func (e *Engine) tryAPI(ctx context.Context, date time.Time, logger *zap.Logger) ([]draw.Record, []byte, int) {
	rejected := 0
	explorer := NewExplorer(e.dims)
	for {
		if ctx.Err() != nil {
			return nil, nil, rejected
		}
		shape, ok := explorer.Next()
		if !ok {
			return nil, nil, rejected
		}
		records, raw, rej := e.paginate(ctx, shape, date, logger)
		rejected += rej
		if len(records) > 0 {
			logger.Info("Candidate shape pinned",
				zap.String("shape", shape.String()),
				zap.Int("records", len(records)),
			)
			return records, raw, rejected
		}
	}
}

// paginate probes shape's opening page and, if it produces records, drives
// the remaining pages under the paginator's stop rules.
func (e *Engine) paginate(ctx context.Context, shape Shape, date time.Time, logger *zap.Logger) ([]draw.Record, []byte, int) {
	paginator := Paginator{PageSize: e.cfg.PageSize, MaxPages: e.cfg.MaxPages}
	state := PageState{}
	var (
		records   []draw.Record
		firstBody []byte
		rejected  int
	)

	page := shape.PageOrigin
	for {
		res := e.fetchWithRetry(ctx, shape, date, page)
		e.pause.Pause(ctx, e.cfg.PaceDelay)
		if res.Outcome != transport.OutcomeSuccess {
			// Client errors, exhausted retries, and empty bodies all end
			// this shape's run; whatever was already collected stands.
			return records, firstBody, rejected
		}

		rows, hint, hasHint := e.extractor.ExtractRows(res.Body)
		state.Pages++
		state.LastRowCount = len(rows)
		state.Accumulated += len(rows)
		if hasHint {
			state.TotalHint, state.HasHint = hint, true
		}

		for _, row := range rows {
			rec, err := e.normalizer.Normalize(row)
			if err != nil {
				rejected++
				metrics.TotalRejections.Inc()
				logger.Debug("Row rejected", zap.Error(err))
				continue
			}
			records = append(records, rec)
		}
		if state.Pages == 1 {
			firstBody = res.Body
			if len(records) == 0 {
				// Rows without a single valid record do not pin a shape.
				return nil, nil, rejected
			}
		}
		if !paginator.ShouldContinue(state) {
			return records, firstBody, rejected
		}
		page++
	}
}

// fetchWithRetry executes one (shape, page) call, retrying server errors
// and transport failures with bounded backoff on the same shape.
func (e *Engine) fetchWithRetry(ctx context.Context, shape Shape, date time.Time, page int) transport.Result {
	params := shape.Params(date, page)
	var res transport.Result
	for attempt := 0; attempt < e.retry.MaxAttempts(); attempt++ {
		if ctx.Err() != nil {
			return transport.Result{Outcome: transport.OutcomeTransportFailure, Err: ctx.Err()}
		}
		res = e.fetcher.Fetch(ctx, shape.Method, shape.Endpoint, params)
		if !e.retry.ShouldRetry(res.Outcome, attempt) {
			return res
		}
		e.pause.Pause(ctx, e.retry.Backoff(attempt))
	}
	return res
}

// tryHTML polls the fixed fallback document list. Polling tolerates a
// source mid-update: a bounded number of sleep-then-recheck rounds, each
// with a fixed wait.
func (e *Engine) tryHTML(ctx context.Context, logger *zap.Logger) []draw.Record {
	if e.scraper == nil || len(e.cfg.HTMLURLs) == 0 {
		return nil
	}
	for round := 0; round <= e.cfg.HTMLPollRetries; round++ {
		if ctx.Err() != nil {
			return nil
		}
		if round > 0 {
			e.pause.Pause(ctx, e.cfg.HTMLPollDelay)
		}
		for _, url := range e.cfg.HTMLURLs {
			records, err := e.scraper.Scrape(ctx, url)
			if err != nil {
				logger.Warn("HTML fallback failed", zap.String("url", url), zap.Error(err))
				continue
			}
			if len(records) > 0 {
				logger.Info("HTML fallback yielded records",
					zap.String("url", url), zap.Int("records", len(records)))
				return records
			}
		}
	}
	return nil
}

func (e *Engine) archive(ctx context.Context, runID string, date time.Time, payload []byte, logger *zap.Logger) {
	if e.archiver == nil || len(payload) == 0 {
		return
	}
	objectPath := path.Join(date.Format("2006-01-02"), fmt.Sprintf("%s.json", runID))
	uri, err := e.archiver.Archive(ctx, objectPath, payload)
	if err != nil {
		logger.Warn("Raw payload archive failed", zap.Error(err))
		return
	}
	logger.Debug("Raw payload archived", zap.String("uri", uri))
}

func (e *Engine) publish(ctx context.Context, report Report, logger *zap.Logger) {
	if e.publisher == nil {
		return
	}
	if _, err := e.publisher.Publish(ctx, e.cfg.PublishTopic, report); err != nil {
		logger.Warn("Run report publish failed", zap.Error(err))
	}
}
