// Package sprites downloads roster sprites to a local directory.
package sprites

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/pomodex/internal/model"
	"github.com/verte-zerg/pomodex/internal/roster"
)

// DefaultConcurrency bounds parallel downloads.
const DefaultConcurrency = 8

const maxSpriteBytes = 1 << 20

// Fetcher downloads sprites. The zero value is not usable; use New.
type Fetcher struct {
	client      *http.Client
	baseURL     string
	dir         string
	concurrency int
	force       bool
	log         *zap.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL overrides roster.SpriteBaseURL.
func WithBaseURL(u string) Option {
	return func(f *Fetcher) { f.baseURL = strings.TrimRight(u, "/") }
}

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithConcurrency bounds parallel downloads.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithForce re-downloads sprites that already exist.
func WithForce(force bool) Option {
	return func(f *Fetcher) { f.force = force }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}

// New returns a Fetcher writing into dir.
func New(dir string, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: 30 * time.Second},
		baseURL:     roster.SpriteBaseURL,
		dir:         dir,
		concurrency: DefaultConcurrency,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Result summarizes a Fetch.
type Result struct {
	Downloaded int
	Skipped    int
	Failed     []model.CreatureID
}

// Fetch downloads the sprites for ids. A failed sprite is logged and
// reported in Result.Failed without stopping the others; the returned error
// is non-nil only when the directory cannot be created or ctx ends.
func (f *Fetcher) Fetch(ctx context.Context, ids []model.CreatureID) (Result, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create sprite dir: %w", err)
	}

	var downloaded, skipped atomic.Int64
	failed := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			ok, err := f.fetchOne(gctx, id)
			switch {
			case err != nil && gctx.Err() != nil:
				return gctx.Err()
			case err != nil:
				failed[i] = true
				f.log.Warn("sprite download failed", zap.Int("creature", int(id)), zap.Error(err))
			case ok:
				downloaded.Add(1)
			default:
				skipped.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	res := Result{Downloaded: int(downloaded.Load()), Skipped: int(skipped.Load())}
	for i, bad := range failed {
		if bad {
			res.Failed = append(res.Failed, ids[i])
		}
	}
	if err != nil {
		return res, fmt.Errorf("failed to fetch sprites: %w", err)
	}
	return res, nil
}

// Path returns where the sprite for id is stored under dir.
func Path(dir string, id model.CreatureID) string {
	return filepath.Join(dir, roster.SpriteFile(id))
}

func (f *Fetcher) fetchOne(ctx context.Context, id model.CreatureID) (bool, error) {
	if !model.ValidCreature(id) {
		return false, model.ErrInvalidCreature
	}
	dest := Path(f.dir, id)
	if !f.force {
		if _, err := os.Stat(dest); err == nil {
			return false, nil
		}
	}

	url := f.baseURL + "/" + roster.SpriteFile(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() {
		// Best-effort close.
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("failed to download %s: %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(f.dir, ".sprite-*")
	if err != nil {
		return false, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	n, err := io.Copy(tmp, io.LimitReader(resp.Body, maxSpriteBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > maxSpriteBytes {
		err = errors.New("sprite too large")
	}
	if err == nil {
		err = os.Rename(tmpName, dest)
	}
	if err != nil {
		// Best-effort cleanup.
		_ = os.Remove(tmpName)
		return false, fmt.Errorf("failed to write sprite %d: %w", id, err)
	}
	return true, nil
}
