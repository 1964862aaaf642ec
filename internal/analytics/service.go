package analytics

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/abasto-labs/savings-api/internal/common"
	"github.com/abasto-labs/savings-api/internal/obs"
	"github.com/abasto-labs/savings-api/internal/pipeline"
	"github.com/abasto-labs/savings-api/internal/snapshot"
)

// DefaultCacheSize bounds how many fingerprinted results stay resident.
const DefaultCacheSize = 8

// Loader reads one snapshot from a directory. Tests substitute fixtures.
type Loader func(dir string) (*snapshot.Snapshot, error)

// Analysis bundles one computed result with the snapshot it came from.
type Analysis struct {
	Snapshot *snapshot.Snapshot
	Result   *pipeline.Result
}

// Service owns the snapshot lifecycle: it loads the input directory,
// runs the savings pipeline and memoizes results by snapshot
// fingerprint, so identical input bytes are never recomputed. Current
// serves the resident analysis for the rest of the process lifetime;
// only Reload goes back to disk.
type Service struct {
	Dir       string
	Load      Loader
	CacheSize int
	Log       zerolog.Logger
	Now       func() time.Time

	mu      sync.Mutex
	cache   map[string]*Analysis
	order   []string
	current *Analysis
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) loader() Loader {
	if s.Load != nil {
		return s.Load
	}
	return snapshot.Load
}

func (s *Service) cacheSize() int {
	if s.CacheSize > 0 {
		return s.CacheSize
	}
	return DefaultCacheSize
}

// Current returns the resident analysis, loading and computing it on
// first use. After a failed load the next call retries from disk.
func (s *Service) Current(ctx context.Context) (*Analysis, error) {
	if s == nil || s.Dir == "" {
		return nil, errors.New("analytics service not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return s.current, nil
	}
	return s.refreshLocked(ctx)
}

// Ready reports whether an analysis is servable, loading on first use.
// Readiness probes go through here so a broken snapshot directory keeps
// the instance out of rotation until a reload fixes it.
func (s *Service) Ready(ctx context.Context) error {
	_, err := s.Current(ctx)
	return err
}

// Reload re-reads the snapshot directory. When the fingerprint matches
// a resident result the computation is reused; otherwise the pipeline
// runs again.
func (s *Service) Reload(ctx context.Context) (*Analysis, error) {
	if s == nil || s.Dir == "" {
		return nil, errors.New("analytics service not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Service) refreshLocked(ctx context.Context) (*Analysis, error) {
	_, span := otel.Tracer("analytics.Service").Start(ctx, "AnalyticsService.Refresh")
	defer span.End()

	loadStart := time.Now()
	snap, err := s.loader()(s.Dir)
	loadResult := "ok"
	if err != nil {
		loadResult = "error"
	}
	if obs.SnapshotLoadsTotal != nil {
		obs.SnapshotLoadsTotal.WithLabelValues(loadResult).Inc()
		obs.SnapshotLoadDuration.Observe(obs.DurationMillis(time.Since(loadStart)))
	}
	if err != nil {
		span.RecordError(err)
		s.Log.Error().Err(err).Str("dir", s.Dir).Msg("snapshot load failed")
		return nil, loadError(err)
	}

	span.SetAttributes(attribute.String("snapshot.fingerprint", shortFingerprint(snap.Fingerprint)))
	if obs.SnapshotRows != nil {
		for table, n := range snap.Counts() {
			obs.SnapshotRows.WithLabelValues(table).Set(float64(n))
		}
	}
	for _, warn := range snap.Warnings {
		if obs.SnapshotWarningsTotal != nil {
			obs.SnapshotWarningsTotal.WithLabelValues(warn.Table).Inc()
		}
		s.Log.Warn().
			Str("table", warn.Table).
			Strs("missing", warn.Missing).
			Msg("input table loaded in degraded form")
	}

	if cached, ok := s.cache[snap.Fingerprint]; ok {
		if obs.ResultCacheHits != nil {
			obs.ResultCacheHits.Inc()
		}
		s.Log.Debug().
			Str("fingerprint", shortFingerprint(snap.Fingerprint)).
			Msg("analysis served from cache")
		s.current = cached
		return cached, nil
	}
	if obs.ResultCacheMisses != nil {
		obs.ResultCacheMisses.Inc()
	}

	computeStart := time.Now()
	res, err := pipeline.Compute(snap)
	runResult := "ok"
	if err != nil {
		runResult = "error"
	}
	if obs.PipelineRunsTotal != nil {
		obs.PipelineRunsTotal.WithLabelValues(runResult).Inc()
		obs.PipelineDuration.Observe(obs.DurationMillis(time.Since(computeStart)))
	}
	if err != nil {
		span.RecordError(err)
		s.Log.Error().Err(err).Msg("pipeline compute failed")
		return nil, err
	}
	res.RunID = uuid.New()
	res.ComputedAt = s.now().UTC()
	if obs.PipelineOffers != nil {
		obs.PipelineOffers.Set(float64(len(res.Offers)))
	}

	analysis := &Analysis{Snapshot: snap, Result: res}
	s.storeLocked(snap.Fingerprint, analysis)
	s.current = analysis

	s.Log.Info().
		Str("run_id", res.RunID.String()).
		Str("fingerprint", shortFingerprint(snap.Fingerprint)).
		Int("offers", len(res.Offers)).
		Int("warnings", len(res.Warnings)).
		Dur("elapsed", time.Since(loadStart)).
		Msg("savings analysis computed")
	return analysis, nil
}

// loadError classifies a failed load for the API error body: an input
// file that does not exist reads as a missing snapshot, anything else as
// a malformed one.
func loadError(err error) error {
	code := common.CodeSnapshotMalformed
	if errors.Is(err, fs.ErrNotExist) {
		code = common.CodeSnapshotMissing
	}
	return common.NewAppError(code, err.Error(), http.StatusInternalServerError, err)
}

// storeLocked inserts a freshly computed analysis and evicts the oldest
// fingerprints beyond the cache bound.
func (s *Service) storeLocked(fingerprint string, a *Analysis) {
	if s.cache == nil {
		s.cache = make(map[string]*Analysis)
	}
	s.cache[fingerprint] = a
	s.order = append(s.order, fingerprint)
	for len(s.order) > s.cacheSize() {
		delete(s.cache, s.order[0])
		s.order = s.order[1:]
	}
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
