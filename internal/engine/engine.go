// Package engine orchestrates one rotation invocation end to end: prerequisite
// probes, candidate acquisition, the rotation walk, retention cleanup, state
// persistence, and the run journal.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"mural/internal/applylog"
	"mural/internal/config"
	"mural/internal/filter"
	"mural/internal/journal"
	"mural/internal/logging"
	"mural/internal/mirror"
	"mural/internal/notifications"
	"mural/internal/pool"
	"mural/internal/retention"
	"mural/internal/rotation"
	"mural/internal/services/steamcmd"
	"mural/internal/services/wallpaper"
	"mural/internal/workshop"
)

// Engine runs one invocation at a time. It is not safe for concurrent use;
// the daemon serializes invocations.
type Engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *journal.Store // nil disables journaling
	notifier notifications.Service

	// Hooks, replaced in tests.
	fetchCandidates func(ctx context.Context) (workshop.FetchResult, error)
	locateEngine    func(configured string) (string, error)
	locateRoot      func(configured string) (string, error)
	makeActivator   func(exe, root string) (rotation.Activator, error)
	fallbackApply   func(ctx context.Context, exe, root string, id uint64) error
	makeClient      func() *workshop.Client
}

// New wires an engine from its collaborators. A nil notifier degrades to the
// no-op service; a nil store disables the journal.
func New(cfg *config.Config, logger *slog.Logger, store *journal.Store, notifier notifications.Service) *Engine {
	if notifier == nil {
		notifier = notifications.NewService(&config.Config{})
	}
	e := &Engine{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "engine"),
		store:    store,
		notifier: notifier,
	}
	e.fetchCandidates = e.defaultFetch
	e.locateEngine = wallpaper.Locate
	e.locateRoot = wallpaper.LocateWorkshopRoot
	e.makeActivator = e.defaultActivator
	e.fallbackApply = e.defaultFallbackApply
	e.makeClient = e.defaultClient
	return e
}

// RunOnce executes one invocation. The rotation state is persisted at the end
// of every invocation regardless of outcome; only unrecoverable setup errors
// (unwritable state, fetch aborted by context) surface as errors.
func (e *Engine) RunOnce(ctx context.Context) (Status, error) {
	started := time.Now()
	runID := e.journalStart(ctx)
	state := rotation.LoadState(e.cfg.Paths.StateFile)

	summary := journal.Summary{}
	finish := func(status Status, runErr error) (Status, error) {
		if saveErr := state.Save(e.cfg.Paths.StateFile); saveErr != nil {
			if runErr == nil {
				runErr = saveErr
			}
			logging.ErrorWithContext(e.logger, "state save failed", saveErr,
				logging.String("path", e.cfg.Paths.StateFile),
				logging.String(logging.FieldErrorHint, "check permissions on the state directory"),
			)
		}
		summary.Status = string(status)
		summary.Error = runErr
		e.journalFinish(ctx, runID, summary)
		e.logger.Info("invocation finished",
			logging.String("status", string(status)),
			logging.Int("fetched", summary.Fetched),
			logging.Int("filtered", summary.Filtered),
			logging.Int("attempted", summary.Attempted),
			logging.Duration("elapsed", time.Since(started)),
		)
		if runErr != nil {
			_ = e.notifier.NotifyError(ctx, runErr, "rotation run")
		}
		return status, runErr
	}

	exe, err := e.locateEngine(e.cfg.Paths.WallpaperEngine)
	if err != nil {
		logging.WarnWithContext(e.logger, "wallpaper engine unavailable", err,
			logging.String(logging.FieldImpact, "retrying on the detect interval"))
		return finish(StatusWaitingEngine, nil)
	}
	root, err := e.locateRoot(e.cfg.Paths.WorkshopRoot)
	if err != nil {
		logging.WarnWithContext(e.logger, "workshop content root unavailable", err,
			logging.String(logging.FieldImpact, "retrying on the detect interval"))
		return finish(StatusWaitingWorkshop, nil)
	}

	result, err := e.fetchCandidates(ctx)
	if err != nil {
		return finish(StatusNoCandidates, fmt.Errorf("fetch candidates: %w", err))
	}
	summary.Fetched = result.Seen
	summary.Filtered = len(result.IDs)
	summary.Trace = result.Trace
	workshop.LogTrace(e.logger, result.Trace)

	if len(result.IDs) == 0 {
		return finish(StatusNoCandidates, nil)
	}

	logged, err := applylog.New(e.cfg.Paths.ActivationLog).IDs()
	if err != nil {
		logging.WarnWithContext(e.logger, "activation log unreadable", err,
			logging.String(logging.FieldImpact, "freshness preference degraded this run"))
	}
	candidates := pool.Assemble(result.IDs, pool.SeenSet(state.History, logged))

	activator, err := e.makeActivator(exe, root)
	if err != nil {
		return finish(StatusAllFailed, fmt.Errorf("build activation pipeline: %w", err))
	}

	opts := rotation.Options{
		OnePerRun:   e.cfg.Rotation.OnePerRun,
		Wraparound:  e.cfg.Rotation.RotateIfAllDone,
		MaxAttempts: e.cfg.Rotation.MaxAttemptsPerRun,
	}
	outcome := rotation.Run(ctx, candidates, state, opts, activator, e.logger)
	summary.Attempted = outcome.Attempted

	if outcome.Exhausted {
		_ = e.notifier.NotifyExhausted(ctx)
		return finish(StatusExhausted, nil)
	}

	if !outcome.Applied() && outcome.Attempted > 0 && opts.OnePerRun {
		// Last-resort: the final attempted item may already be usable on
		// disk even though its pipeline failed.
		lastID := outcome.FailedIDs[len(outcome.FailedIDs)-1]
		if fbErr := e.fallbackApply(ctx, exe, root, lastID); fbErr == nil {
			state.RecordSuccess(lastID)
			outcome.AppliedIDs = append(outcome.AppliedIDs, lastID)
			e.logger.Info("fallback apply succeeded", logging.Uint64("workshop_id", lastID))
		}
	}

	if !outcome.Applied() {
		if outcome.Attempted == 0 {
			return finish(StatusNoCandidates, nil)
		}
		return finish(StatusAllFailed, nil)
	}

	summary.AppliedID = outcome.AppliedIDs[len(outcome.AppliedIDs)-1]

	// Eager save: the applied item must survive a crash in cleanup.
	if err := state.Save(e.cfg.Paths.StateFile); err != nil {
		return finish(StatusApplied, fmt.Errorf("persist state after apply: %w", err))
	}

	appliedLog := applylog.New(e.cfg.Paths.ActivationLog)
	for _, id := range outcome.AppliedIDs {
		if err := appliedLog.Append(id); err != nil {
			logging.WarnWithContext(e.logger, "activation log append failed", err,
				logging.Uint64("workshop_id", id))
		}
		title := result.Details[id].Title
		_ = e.notifier.NotifyApplied(ctx, id, title)
	}

	if e.cfg.Rotation.OnePerRun && e.cfg.Cleanup.DeletePrevious {
		e.cleanup(exe, root, summary.AppliedID)
	}

	return finish(StatusApplied, nil)
}

func (e *Engine) cleanup(exe, root string, current uint64) {
	logged, err := applylog.New(e.cfg.Paths.ActivationLog).IDs()
	if err != nil {
		logging.WarnWithContext(e.logger, "cleanup skipped, activation log unreadable", err)
		return
	}
	// Newest first for the keep-tail computation.
	newestFirst := make([]uint64, 0, len(logged))
	for i := len(logged) - 1; i >= 0; i-- {
		newestFirst = append(newestFirst, logged[i])
	}

	protected := map[uint64]struct{}{}
	for _, raw := range config.SplitList(e.cfg.Cleanup.ProtectedIDs) {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id != 0 {
			protected[id] = struct{}{}
		}
	}

	policy := retention.Policy{
		KeepLastN:     e.cfg.Cleanup.KeepLastN,
		Protected:     protected,
		UseRecycleBin: e.cfg.Cleanup.UseRecycleBin,
		TrashDir:      e.cfg.Paths.TrashDir,
		Logger:        e.logger,
	}
	result := policy.Cleanup(current, newestFirst, e.storageRoots(exe, root))
	if len(result.Deleted) > 0 || len(result.Failed) > 0 {
		e.logger.Info("retention pass complete",
			logging.Int("deleted", len(result.Deleted)),
			logging.Int("failed", len(result.Failed)))
	}
}

// storageRoots lists every directory tree that may hold per-item content:
// the workshop tree, the engine's backup projects, and steamcmd's staging.
func (e *Engine) storageRoots(exe, root string) []string {
	roots := []string{root}
	if exe != "" {
		roots = append(roots, filepath.Join(filepath.Dir(exe), "projects", "backup"))
	}
	if bin := e.cfg.Paths.Steamcmd; bin != "" {
		roots = append(roots, filepath.Join(filepath.Dir(bin),
			"steamapps", "workshop", "content", strconv.Itoa(workshop.AppID)))
	}
	return roots
}

func (e *Engine) defaultFetch(ctx context.Context) (workshop.FetchResult, error) {
	if manual := config.SplitList(e.cfg.Rotation.SubscribedIDs); len(manual) > 0 {
		return e.manualCandidates(ctx, manual)
	}

	spec := filter.FromConfig(e.cfg.Filters)
	client := e.makeClient()

	// Without a Web API key the catalog query service is unavailable; fall
	// back to scraping the public community browse pages and backfilling
	// metadata through the keyless details endpoint.
	if !client.HasKey() {
		sort, days := workshop.MapBrowseSort(e.cfg.Sort.Method)
		req := workshop.BrowseRequest{
			Sort:          sort,
			Days:          days,
			IncludeTags:   spec.IncludeQueryTags(),
			ExcludedTags:  spec.ExcludeQueryTags(),
			PageSize:      e.cfg.Filters.NumPerPage,
			MaxPages:      e.cfg.Filters.MaxPages,
			MinCandidates: e.cfg.Filters.MinCandidates,
		}
		return client.FetchBrowseUnion(ctx, req, spec.Accept)
	}

	queryType, days := workshop.MapSort(e.cfg.Sort.Method)
	req := workshop.FetchRequest{
		QueryType:     queryType,
		Days:          days,
		IncludeTags:   spec.IncludeQueryTags(),
		ExcludedTags:  spec.ExcludeQueryTags(),
		PageSize:      e.cfg.Filters.NumPerPage,
		MaxPages:      e.cfg.Filters.MaxPages,
		MinCandidates: e.cfg.Filters.MinCandidates,
	}
	return client.FetchUnion(ctx, req, spec.Accept)
}

// manualCandidates honors [rotation] subscribed_ids: the operator's list is
// the pool, bypassing fetch and filter. Details are backfilled best-effort
// for display and notifications.
func (e *Engine) manualCandidates(ctx context.Context, manual []string) (workshop.FetchResult, error) {
	var ids []uint64
	for _, raw := range manual {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			logging.WarnWithContext(e.logger, "ignoring malformed subscribed id", err,
				logging.String("value", raw))
			continue
		}
		ids = append(ids, id)
	}
	result := workshop.FetchResult{IDs: ids, Details: map[uint64]workshop.Item{}, Seen: len(ids)}

	// The details endpoint needs no key, so metadata backfill works even for
	// keyless setups.
	if len(ids) > 0 {
		if details, err := e.makeClient().Details(ctx, ids); err == nil {
			result.Details = details
		}
	}
	return result, nil
}

func (e *Engine) defaultClient() *workshop.Client {
	httpClient := &http.Client{
		Timeout: time.Duration(e.cfg.Network.RequestTimeout) * time.Second,
	}
	if proxy := e.cfg.Network.HTTPSProxy; proxy != "" {
		if proxyURL, err := url.Parse(proxy); err == nil {
			httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}
	return workshop.NewClient(e.cfg.Steam.APIKey, workshop.ClientOptions{
		HTTPClient:     httpClient,
		MaxTries:       e.cfg.Network.MaxRetries + 1,
		RequestsPerMin: e.cfg.Network.RateLimitPerMinute,
		Logger:         e.logger,
	})
}

func (e *Engine) defaultActivator(exe, root string) (rotation.Activator, error) {
	applier, err := wallpaper.New(exe)
	if err != nil {
		return nil, err
	}
	activator := itemActivator{
		mirrorer:     mirror.DirMirrorer{},
		applier:      applier,
		backupDirFor: applier.BackupDir,
		workshopRoot: root,
		logger:       e.logger,
	}
	if bin := e.cfg.Paths.Steamcmd; bin != "" {
		downloader, err := steamcmd.New(bin, steamcmd.Credentials{
			Username:  e.cfg.Steam.Username,
			Password:  e.cfg.Steam.Password,
			GuardCode: e.cfg.Steam.GuardCode,
		})
		if err != nil {
			return nil, err
		}
		activator.downloader = downloader
	}
	return activator, nil
}

func (e *Engine) defaultFallbackApply(ctx context.Context, exe, root string, id uint64) error {
	entry, err := wallpaper.FindEntry(filepath.Join(root, strconv.FormatUint(id, 10)))
	if err != nil {
		return err
	}
	applier, err := wallpaper.New(exe)
	if err != nil {
		return err
	}
	return applier.Apply(ctx, entry)
}

func (e *Engine) journalStart(ctx context.Context) string {
	if e.store == nil {
		return ""
	}
	runID, err := e.store.RecordStart(ctx)
	if err != nil {
		logging.WarnWithContext(e.logger, "journal start failed", err)
		return ""
	}
	return runID
}

func (e *Engine) journalFinish(ctx context.Context, runID string, summary journal.Summary) {
	if e.store == nil || runID == "" {
		return
	}
	if err := e.store.Finish(ctx, runID, summary); err != nil {
		logging.WarnWithContext(e.logger, "journal finish failed", err)
	}
}
