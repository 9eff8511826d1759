// Package batch 并发解析多个互相独立的 JSON 文档
//
// 单个文档的解析始终是同步的；并行只发生在文档之间，每个文档独占一个 Arena，
// 调用方用完后对 Result.Doc 调用 Release。
//
//	r, _ := batch.New(batch.DefaultConfig())
//	defer r.Close()
//	results, err := r.ParseFiles(ctx, []string{"a.json", "b.json"})
package batch

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/uniyakcom/arenajson/json"
)

// ErrPanic 解析过程中发生 panic，具体值附在错误信息里
var ErrPanic = errors.New("batch: parse panicked")

// Config 批量解析配置
type Config struct {
	Workers         int                   // 解析 worker 数，<= 0 时为 GOMAXPROCS
	ReadConcurrency int                   // 并发读文件数，<= 0 时为 Workers
	Parser          *json.Config          // 为 nil 时使用 json.DefaultConfig()
	Logger          *slog.Logger          // 为 nil 时使用 slog.Default()
	Registerer      prometheus.Registerer // 为 nil 时指标不注册
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Workers: runtime.GOMAXPROCS(0),
		Parser:  json.DefaultConfig(),
	}
}

// Input 一个待解析的文档
type Input struct {
	Name string
	Data []byte
}

// Result 单个文档的解析结果，Doc 与 Err 恰好一个非空
type Result struct {
	Name     string
	Doc      *json.Document
	Err      error
	Duration time.Duration
}

// Runner 基于 ants 协程池的批量解析器（并发安全）
type Runner struct {
	cfg     Config
	pool    *ants.Pool
	logger  *slog.Logger
	metrics *metrics
	parse   func([]byte, *json.Config) (*json.Document, error)
}

// New 创建 Runner
func New(cfg *Config) (*Runner, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.ReadConcurrency <= 0 {
		c.ReadConcurrency = c.Workers
	}
	if c.Parser == nil {
		c.Parser = json.DefaultConfig()
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := ants.NewPool(c.Workers, ants.WithPanicHandler(func(p any) {
		logger.Error("parse worker panicked", "panic", p)
	}))
	if err != nil {
		return nil, errors.Wrap(err, "create worker pool")
	}
	return &Runner{
		cfg:     c,
		pool:    pool,
		logger:  logger,
		metrics: newMetrics(c.Registerer),
		parse:   json.ParseBytesWith,
	}, nil
}

// Close 关闭协程池并等待 worker 退出
func (r *Runner) Close() error {
	return r.pool.ReleaseTimeout(5 * time.Second)
}

// ParseAll 并发解析 inputs，结果与输入一一对应、顺序一致
//
// ctx 取消后尚未开始的输入返回 ctx.Err()，已开始的解析照常完成。
func (r *Runner) ParseAll(ctx context.Context, inputs []Input) []Result {
	results := make([]Result, len(inputs))
	var wg sync.WaitGroup
	for i := range inputs {
		i := i
		results[i].Name = inputs[i].Name
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		wg.Add(1)
		task := func() {
			defer wg.Done()
			defer r.recoverInto(&results[i], inputs[i])
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			results[i] = r.parseOne(inputs[i])
		}
		if err := r.pool.Submit(task); err != nil {
			wg.Done()
			results[i].Err = errors.Wrapf(err, "submit %s", inputs[i].Name)
		}
	}
	wg.Wait()
	return results
}

// recoverInto 把 worker 中的 panic 转成 res.Err，保证 Doc 与 Err 恰好一个非空
func (r *Runner) recoverInto(res *Result, in Input) {
	p := recover()
	if p == nil {
		return
	}
	*res = Result{Name: in.Name, Err: errors.Wrapf(ErrPanic, "%s: %v", in.Name, p)}
	r.metrics.observe(len(in.Data), 0, res.Err)
	r.logger.Error("parse worker panicked", "name", in.Name, "panic", p)
}

func (r *Runner) parseOne(in Input) Result {
	start := time.Now()
	doc, err := r.parse(in.Data, r.cfg.Parser)
	res := Result{Name: in.Name, Doc: doc, Err: err, Duration: time.Since(start)}
	r.metrics.observe(len(in.Data), res.Duration, err)
	if err != nil {
		r.logger.Error("document parse failed", "name", in.Name, "bytes", len(in.Data), "error", err)
	} else {
		r.logger.Debug("document parsed", "name", in.Name, "bytes", len(in.Data), "pairs", doc.Len(), "duration", res.Duration)
	}
	return res
}

// ReadFiles 并发读取 paths，任一失败返回第一个错误
func (r *Runner) ReadFiles(ctx context.Context, paths []string) ([]Input, error) {
	inputs := make([]Input, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.ReadConcurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "read %s", path)
			}
			inputs[i] = Input{Name: path, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}

// ParseFiles 读取并解析 paths
func (r *Runner) ParseFiles(ctx context.Context, paths []string) ([]Result, error) {
	inputs, err := r.ReadFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	return r.ParseAll(ctx, inputs), nil
}

// ReleaseAll 释放 results 中的全部文档
func ReleaseAll(results []Result) {
	for i := range results {
		if results[i].Doc != nil {
			results[i].Doc.Release()
		}
	}
}
