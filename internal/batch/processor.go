// Package batch exports many scenes concurrently. Every job owns its scene,
// builder and writer; only the texture caches are shared.
package batch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"rhst-exporter/internal/convert"
	"rhst-exporter/internal/export"
	"rhst-exporter/internal/gltfscene"
	"rhst-exporter/internal/preview"
	"rhst-exporter/internal/texture"
)

// Config holds all shared resources for a batch run.
type Config struct {
	RunID     string
	OutputDir string
	Format    string
	Indent    bool
	Params    export.Params

	// DumpTextures stages every referenced texture into TexturesDir, or
	// OutputDir/textures when empty.
	DumpTextures bool
	TexturesDir  string
	// SourceTextures is where textures are looked up; empty means the
	// directory of each input scene.
	SourceTextures string
	Stage          texture.StageOptions

	// Converter runs after a successful binary export when set.
	Converter      *convert.Converter
	Target         string
	ConvertVerbose bool
	KeepArtifacts  bool

	Preview        bool
	PreviewOptions preview.Options

	Workers int
	Logger  *slog.Logger
}

// NewRunID returns a fresh identifier for a batch run.
func NewRunID() string {
	return uuid.NewString()
}

// Result holds the outcome of processing one scene.
type Result struct {
	Input     string        `json:"input"`
	Output    string        `json:"output,omitempty"`
	Converted string        `json:"converted,omitempty"`
	Preview   string        `json:"preview,omitempty"`
	Textures  int           `json:"textures"`
	Stats     export.Stats  `json:"stats"`
	Took      time.Duration `json:"took_ns"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// Run processes all inputs using a worker pool. Results are in input order.
func Run(ctx context.Context, cfg Config, inputs []string) []Result {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.RunID == "" {
		cfg.RunID = NewRunID()
	}
	log = log.With("run", cfg.RunID)
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	total := len(inputs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()
	r := &runner{cfg: cfg, log: log, caches: map[string]*texture.Cache{}}

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					log.Info("progress", "done", p, "total", total, "rate", float64(p)/elapsed)
				}
			}
		}
	}()

	// Worker pool
	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = r.process(ctx, inputs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	log.Info("batch finished", "scenes", total, "took", time.Since(start))
	return results
}

type runner struct {
	cfg Config
	log *slog.Logger

	mu     sync.Mutex
	caches map[string]*texture.Cache
	// staged holds texture names already claimed by a job.
	staged sync.Map
}

// cache returns the texture cache for the directory textures are read from,
// indexing it on first use.
func (r *runner) cache(dir string) *texture.Cache {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.caches[dir]; ok {
		return c
	}
	c := texture.NewCache(texture.BuildIndex(dir))
	r.caches[dir] = c
	return c
}

func (r *runner) process(ctx context.Context, input string) Result {
	start := time.Now()
	res := Result{Input: input}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Took = time.Since(start)
		r.log.Warn("scene failed", "input", input, "err", err)
		return res
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	log := r.log.With("input", filepath.Base(input))
	s, err := gltfscene.Load(input, log)
	if err != nil {
		return fail(err)
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return fail(errors.Wrapf(err, "batch: create %s", r.cfg.OutputDir))
	}

	params := r.cfg.Params
	if params.BaseDir == "" {
		params.BaseDir = filepath.Dir(input)
	}
	out := filepath.Join(r.cfg.OutputDir, stem+export.Ext(r.cfg.Format))
	er, err := export.Export(s, params, out, r.cfg.Format, r.cfg.Indent, log)
	if err != nil {
		return fail(err)
	}
	res.Output = out
	res.Stats = er.Stats

	texDir := r.cfg.SourceTextures
	if texDir == "" {
		texDir = filepath.Dir(input)
	}
	cache := r.cache(texDir)

	if r.cfg.DumpTextures {
		n, err := r.stage(ctx, cache, er.Textures, log)
		if err != nil {
			return fail(err)
		}
		res.Textures = n
	}

	if r.cfg.Converter != nil && r.cfg.Format == export.FormatBinary {
		target := r.cfg.Target
		if target == "" {
			target = "brres"
		}
		dst := filepath.Join(r.cfg.OutputDir, stem+"."+target)
		if _, err := r.cfg.Converter.Run(ctx, out, dst, r.cfg.ConvertVerbose); err != nil {
			return fail(err)
		}
		res.Converted = dst
		if !r.cfg.KeepArtifacts {
			if err := os.Remove(out); err != nil {
				log.Warn("could not remove build artifact", "path", out, "err", err)
			} else {
				res.Output = ""
			}
		}
	}

	if r.cfg.Preview {
		img := preview.Render(er.Graph, cache, r.cfg.PreviewOptions)
		path := filepath.Join(r.cfg.OutputDir, stem+".webp")
		if err := preview.WriteWebP(path, img); err != nil {
			return fail(err)
		}
		res.Preview = path
	}

	res.Success = true
	res.Took = time.Since(start)
	log.Debug("scene done", "took", res.Took)
	return res
}

// stage dumps the textures no other job has claimed yet.
func (r *runner) stage(ctx context.Context, c *texture.Cache, names []string, log *slog.Logger) (int, error) {
	var todo []string
	for _, name := range names {
		if _, loaded := r.staged.LoadOrStore(name, struct{}{}); !loaded {
			todo = append(todo, name)
		}
	}
	if len(todo) == 0 {
		return 0, nil
	}

	dir := r.cfg.TexturesDir
	if dir == "" {
		dir = filepath.Join(r.cfg.OutputDir, "textures")
	}
	opts := r.cfg.Stage
	opts.Logger = log
	start := time.Now()
	staged, err := texture.Stage(ctx, c, todo, dir, opts)
	if err != nil {
		return len(staged), err
	}
	log.Info("PNG dumping", "textures", len(staged), "took", time.Since(start))
	return len(staged), nil
}
