// Package download coordinates the fetch workflows: whole sets, batch runs
// across many sets, single-card print sweeps and audit-driven backfills.
// Each workflow plans first, then executes the plan with per-item failure
// isolation; a re-run over an unchanged collection downloads nothing.
package download

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"forgefetch/internal/audit"
	"forgefetch/internal/config"
	"forgefetch/internal/forge"
	"forgefetch/internal/imaging"
	"forgefetch/internal/scryfall"
)

// Summary is the outcome report of one workflow run. Every planned item is
// accounted for in exactly one counter.
type Summary struct {
	RunID           string
	Started         time.Time
	Duration        time.Duration
	Planned         int
	Downloaded      int
	SkippedExisting int
	NotFound        int
	Ambiguous       int
	Collisions      int
	Failed          int
	FailedSets      []string
}

func newSummary() *Summary {
	return &Summary{RunID: uuid.NewString(), Started: time.Now()}
}

func (s *Summary) finish() { s.Duration = time.Since(s.Started) }

// Clean returns true when nothing went wrong or was left unresolved.
func (s *Summary) Clean() bool {
	return s.Failed == 0 && s.Collisions == 0 && s.Ambiguous == 0 && len(s.FailedSets) == 0
}

// SetScope filters which sets an all-sets batch run covers.
type SetScope int

const (
	// ScopeAll covers every set Scryfall lists, tokens and promos included.
	ScopeAll SetScope = iota
	// ScopeSanctioned skips token, memorabilia and joke sets.
	ScopeSanctioned
)

func (s SetScope) allows(set scryfall.Set) bool {
	if s != ScopeSanctioned {
		return true
	}
	switch set.SetType {
	case "token", "memorabilia", "funny", "minigame":
		return false
	}
	return set.CardCount > 0
}

// Orchestrator runs the download workflows against one configuration.
type Orchestrator struct {
	cfg     *config.Config
	client  *scryfall.Client
	log     *slog.Logger
	planner Planner
}

func New(cfg *config.Config, client *scryfall.Client, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		cfg:    cfg,
		client: client,
		log:    log,
		planner: Planner{
			Resolver:   forge.Resolver{RotateSplit: cfg.Naming.RotateSplit},
			Policy:     forge.ParsePolicy(cfg.Naming.Policy),
			FullBorder: cfg.Naming.FullBorder,
		},
	}
}

// ResolveSet maps user input, a set code or part of a set name, to one set.
// Input that matches several sets about equally well is an error naming the
// candidates rather than a guess.
func (o *Orchestrator) ResolveSet(ctx context.Context, query string) (scryfall.Set, error) {
	query = strings.TrimSpace(query)
	if meta, err := o.client.SetMeta(ctx, strings.ToLower(query)); err == nil && meta.Code != "" {
		return meta, nil
	}
	sets, err := o.client.Sets(ctx)
	if err != nil {
		return scryfall.Set{}, fmt.Errorf("listing sets: %w", err)
	}
	matches := scryfall.MatchSets(query, sets)
	switch len(matches) {
	case 0:
		return scryfall.Set{}, fmt.Errorf("no set matches %q", query)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, 0, 5)
		for i, m := range matches {
			if i == 5 {
				break
			}
			names = append(names, fmt.Sprintf("%s (%s)", m.Name, strings.ToUpper(m.Code)))
		}
		return scryfall.Set{}, fmt.Errorf("%q is ambiguous: %s", query, strings.Join(names, ", "))
	}
}

// DownloadSet fetches every print of one set into Cards/<SET>/. The set may
// be given as a code or a (partial) name. Existing files are kept unless
// overwrite is set. When printedFirst is set the files are named as printed
// (flavor and printed names win over the oracle name).
func (o *Orchestrator) DownloadSet(ctx context.Context, setQuery string, overwrite, printedFirst bool) (*Summary, error) {
	sum := newSummary()
	defer sum.finish()
	set, err := o.ResolveSet(ctx, setQuery)
	if err != nil {
		return sum, err
	}
	o.log.Info("downloading set", "set", set.Code, "name", set.Name, "cards", set.CardCount)
	planner := o.planner
	if printedFirst {
		planner.Policy = forge.PrintedFirst
	}
	if err := o.downloadSetInto(ctx, set.Code, overwrite, sum, planner); err != nil {
		return sum, err
	}
	return sum, nil
}

func (o *Orchestrator) downloadSetInto(ctx context.Context, setCode string, overwrite bool, sum *Summary, planner Planner) error {
	code := strings.ToLower(strings.TrimSpace(setCode))
	cards, err := o.client.CardsBySet(ctx, code)
	if err != nil {
		if errors.Is(err, scryfall.ErrNotFound) {
			o.log.Warn("set has no prints", "set", code)
			sum.NotFound++
			return nil
		}
		return fmt.Errorf("listing set %s: %w", code, err)
	}

	dir := filepath.Join(o.cfg.CardsDir(), forge.SetFolder(code))
	plan := planner.PlanSet(cards, dir)
	o.execute(ctx, plan, overwrite, sum)
	return nil
}

// DownloadAllSets runs DownloadSet across every set the scope allows,
// pausing between sets. One set failing never aborts the batch; failed set
// codes are collected in the summary and appended to the batch error log.
func (o *Orchestrator) DownloadAllSets(ctx context.Context, scope SetScope, overwrite bool) (*Summary, error) {
	sum := newSummary()
	defer sum.finish()

	sets, err := o.client.Sets(ctx)
	if err != nil {
		return sum, fmt.Errorf("listing sets: %w", err)
	}

	for _, set := range sets {
		if !scope.allows(set) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		o.log.Info("batch set", "set", set.Code, "name", set.Name, "cards", set.CardCount)
		if err := o.downloadSetInto(ctx, set.Code, overwrite, sum, o.planner); err != nil {
			o.log.Error("set failed, continuing batch", "set", set.Code, "err", err)
			sum.FailedSets = append(sum.FailedSets, set.Code)
		}
		if o.cfg.Scryfall.SetPause > 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-time.After(o.cfg.Scryfall.SetPause):
			}
		}
	}

	if len(sum.FailedSets) > 0 {
		o.writeBatchLog(sum)
	}
	return sum, nil
}

// DownloadSetsFromFile reads set codes or names from a text file (one per
// line, '#' comments allowed, duplicates dropped) and runs the batch over
// them. Lines that resolve to no set are reported and skipped.
func (o *Orchestrator) DownloadSetsFromFile(ctx context.Context, path string, overwrite bool) (*Summary, error) {
	sum := newSummary()
	defer sum.finish()

	queries, err := readSetList(path)
	if err != nil {
		return sum, err
	}
	if len(queries) == 0 {
		return sum, fmt.Errorf("no set codes in %s", path)
	}

	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		set, err := o.ResolveSet(ctx, query)
		if err != nil {
			o.log.Warn("unresolved set list entry", "entry", query, "err", err)
			sum.FailedSets = append(sum.FailedSets, query)
			continue
		}
		if err := o.downloadSetInto(ctx, set.Code, overwrite, sum, o.planner); err != nil {
			o.log.Error("set failed, continuing batch", "set", set.Code, "err", err)
			sum.FailedSets = append(sum.FailedSets, set.Code)
		}
		if o.cfg.Scryfall.SetPause > 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-time.After(o.cfg.Scryfall.SetPause):
			}
		}
	}

	if len(sum.FailedSets) > 0 {
		o.writeBatchLog(sum)
	}
	return sum, nil
}

// DownloadCardPrints fetches every print of one named card into Singles/.
// When printedFirst is set the files are named by the name on the card
// (flavor and printed names win over the oracle name).
func (o *Orchestrator) DownloadCardPrints(ctx context.Context, name string, printedFirst bool) (*Summary, error) {
	sum := newSummary()
	defer sum.finish()

	cards, err := o.client.PrintsByName(ctx, name)
	if err != nil {
		if errors.Is(err, scryfall.ErrNotFound) {
			o.log.Warn("no prints found", "name", name)
			sum.NotFound++
			return sum, nil
		}
		return sum, fmt.Errorf("listing prints of %q: %w", name, err)
	}

	planner := o.planner
	if printedFirst {
		planner.Policy = forge.PrintedFirst
	}
	// Each card gets its own folder under Singles; prints of many sets land
	// together, so file names keep the set-code prefix.
	dir := filepath.Join(o.cfg.SinglesDir(), forge.Sanitize(name, true))
	plan := planner.PlanSingles(cards, dir)
	o.execute(ctx, plan, false, sum)
	return sum, nil
}

// RunTokenAudit backfills missing token images from a pipe-delimited token
// manifest. Matched tokens are written to Tokens/ under their slug name.
func (o *Orchestrator) RunTokenAudit(ctx context.Context, manifestPath string) (*Summary, error) {
	sum := newSummary()
	defer sum.finish()

	if err := audit.CheckLocation(o.cfg.Dirs.Base, manifestPath); err != nil {
		return sum, err
	}
	entries, err := audit.ParseManifest(manifestPath, audit.FormatToken)
	if err != nil {
		return sum, err
	}

	rec := audit.NewReconciler(o.client, o.log)
	resolutions := rec.ReconcileTokens(ctx, entries)

	var plan []forge.ResolvedPath
	var mismatches []string
	for _, res := range resolutions {
		switch res.Kind {
		case audit.NotFound:
			o.log.Warn("token not found", "slug", res.Entry.Slug, "set", res.Entry.Set)
			mismatches = append(mismatches, fmt.Sprintf("not_found: %s|%s", res.Entry.Slug, res.Entry.Set))
			sum.NotFound++
		case audit.Ambiguous:
			o.log.Warn("token ambiguous, skipping", "slug", res.Entry.Slug,
				"set", res.Entry.Set, "candidates", res.Candidates)
			mismatches = append(mismatches, fmt.Sprintf("ambiguous: %s|%s -> %s",
				res.Entry.Slug, res.Entry.Set, strings.Join(res.Candidates, "; ")))
			sum.Ambiguous++
		case audit.Matched:
			face, ok := o.pickFace(*res.Card, res.FaceIndex)
			if !ok {
				sum.NotFound++
				continue
			}
			base := forge.Sanitize(res.Entry.Slug, false)
			plan = append(plan, o.planner.PlanFace(*res.Card, face, o.cfg.TokensDir(), base))
		}
	}
	o.execute(ctx, plan, false, sum)
	o.writeRunLog(sum, mismatches)
	return sum, nil
}

// RunCardAudit backfills missing card images from a free-text audit report.
// Matched prints are written to Cards/<SET>/ under the name the report used.
func (o *Orchestrator) RunCardAudit(ctx context.Context, manifestPath string) (*Summary, error) {
	sum := newSummary()
	defer sum.finish()

	if err := audit.CheckLocation(o.cfg.Dirs.Base, manifestPath); err != nil {
		return sum, err
	}
	entries, err := audit.ParseManifest(manifestPath, audit.FormatReport)
	if err != nil {
		return sum, err
	}

	rec := audit.NewReconciler(o.client, o.log)
	resolutions := rec.ReconcileCards(ctx, entries)

	var plan []forge.ResolvedPath
	var mismatches []string
	for _, res := range resolutions {
		switch res.Kind {
		case audit.NotFound:
			o.log.Warn("card not found", "name", res.Entry.Name, "set", res.Entry.Set)
			mismatches = append(mismatches, fmt.Sprintf("not_found: %s (%s)", res.Entry.Name, res.Entry.Set))
			sum.NotFound++
		case audit.Ambiguous:
			o.log.Warn("card ambiguous, skipping", "name", res.Entry.Name,
				"set", res.Entry.Set, "candidates", res.Candidates)
			mismatches = append(mismatches, fmt.Sprintf("ambiguous: %s (%s) -> %s",
				res.Entry.Name, res.Entry.Set, strings.Join(res.Candidates, "; ")))
			sum.Ambiguous++
		case audit.Matched:
			face, ok := o.pickFace(*res.Card, res.FaceIndex)
			if !ok {
				sum.NotFound++
				continue
			}
			base := strings.ReplaceAll(forge.Sanitize(res.Entry.Name, false), " ", "_")
			if res.Entry.PrintIndex > 1 {
				base = fmt.Sprintf("%s_%d", base, res.Entry.PrintIndex)
			}
			dir := filepath.Join(o.cfg.CardsDir(), forge.SetFolder(res.Entry.Set))
			plan = append(plan, o.planner.PlanFace(*res.Card, face, dir, base))
		}
	}
	o.execute(ctx, plan, false, sum)
	o.writeRunLog(sum, mismatches)
	return sum, nil
}

// CleanSetFolder deletes every file directly under Cards/<SET>/. The caller
// is responsible for confirming with the user first.
func (o *Orchestrator) CleanSetFolder(setCode string) error {
	dir := filepath.Join(o.cfg.CardsDir(), forge.SetFolder(setCode))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("removing %s: %w", e.Name(), err)
		}
	}
	o.log.Info("cleaned set folder", "dir", dir, "files", len(entries))
	return nil
}

// pickFace resolves the card's faces and returns the 1-based idx-th one.
func (o *Orchestrator) pickFace(card scryfall.Card, idx int) (forge.Face, bool) {
	faces := o.planner.Resolver.Resolve(card)
	if len(faces) == 0 {
		return forge.Face{}, false
	}
	if idx < 1 || idx > len(faces) {
		idx = 1
	}
	return faces[idx-1], true
}

// execute downloads a checked plan item by item. One item failing logs and
// counts, never aborts; context cancellation stops the run.
func (o *Orchestrator) execute(ctx context.Context, plan []forge.ResolvedPath, overwrite bool, sum *Summary) {
	items, collisions := CheckCollisions(plan)
	for _, err := range collisions {
		o.log.Error("dropping colliding item", "err", err)
		sum.Collisions++
	}
	sum.Planned += len(items)

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return
		}
		if !overwrite {
			if _, err := os.Stat(item.RelPath); err == nil {
				sum.SkippedExisting++
				continue
			}
		}
		if err := o.fetchOne(ctx, item); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			o.log.Error("download failed", "card", item.CardName, "path", item.RelPath, "err", err)
			sum.Failed++
			continue
		}
		sum.Downloaded++
	}
}

func (o *Orchestrator) fetchOne(ctx context.Context, item forge.ResolvedPath) error {
	data, err := o.client.DownloadBytes(ctx, item.SourceURL)
	if err != nil {
		return err
	}
	if item.Rotate != 0 {
		rotated, changed, err := imaging.Rotate(data, item.Rotate)
		if err != nil {
			return fmt.Errorf("rotating image: %w", err)
		}
		if !changed {
			o.log.Debug("image stored unrotated", "path", item.RelPath)
		}
		data = rotated
	}
	if err := os.MkdirAll(item.Dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(item.RelPath, data, 0o644); err != nil {
		return err
	}
	o.log.Debug("saved", "path", item.RelPath, "bytes", len(data))
	return nil
}

// writeRunLog appends the unresolved entries of an audit run to a per-run
// section of the session log in the base directory. Write-only; nothing
// parses it back.
func (o *Orchestrator) writeRunLog(sum *Summary, mismatches []string) {
	if len(mismatches) == 0 {
		return
	}
	path := filepath.Join(o.cfg.Dirs.Base, "forgefetch-run.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		o.log.Error("cannot write run log", "path", path, "err", err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "# run %s at %s\n", sum.RunID, sum.Started.Format(time.RFC3339))
	for _, line := range mismatches {
		fmt.Fprintln(f, line)
	}
	o.log.Info("unresolved entries logged", "log", path, "count", len(mismatches))
}

// writeBatchLog appends the failed set codes of a batch run to a log file in
// the base directory, so a follow-up run can retry just those.
func (o *Orchestrator) writeBatchLog(sum *Summary) {
	path := filepath.Join(o.cfg.Dirs.Base, "forgefetch-failed-sets.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		o.log.Error("cannot write batch log", "path", path, "err", err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "# run %s at %s\n", sum.RunID, sum.Started.Format(time.RFC3339))
	for _, code := range sum.FailedSets {
		fmt.Fprintln(f, code)
	}
	o.log.Warn("batch had failures", "log", path, "sets", sum.FailedSets)
}

func readSetList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening set list: %w", err)
	}
	defer f.Close()

	var codes []string
	seen := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		codes = append(codes, line)
	}
	return codes, sc.Err()
}
