package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/c2h5oh/datasize"

	"github.com/uniyakcom/arenajson/internal/support/arena"
	"github.com/uniyakcom/arenajson/json"
)

// 环境变量作为命令行参数的默认值
const (
	envDepthLimit    = "ARENAJSON_DEPTH_LIMIT"
	envAllowTrailing = "ARENAJSON_ALLOW_TRAILING"
	envChunkSize     = "ARENAJSON_CHUNK_SIZE"
	envArenaLimit    = "ARENAJSON_ARENA_LIMIT"
	envWorkers       = "ARENAJSON_WORKERS"
	envLogLevel      = "ARENAJSON_LOG_LEVEL"
)

// options 命令行选项
type options struct {
	depthLimit    int
	allowTrailing bool
	chunkSize     byteSize
	arenaLimit    byteSize
	workers       int
	logLevel      string
}

// defaultOptions 从环境变量加载默认值，无法解析的值回退到内置默认并告警
func defaultOptions(getenv func(string) string) options {
	o := options{
		depthLimit: json.DefaultDepthLimit,
		chunkSize:  byteSize(arena.DefaultChunkSize),
		logLevel:   "warn",
	}
	if v := getenv(envDepthLimit); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			o.depthLimit = n
		} else {
			slog.Warn("invalid environment variable, using default", "name", envDepthLimit, "value", v)
		}
	}
	if v := getenv(envAllowTrailing); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			o.allowTrailing = b
		} else {
			slog.Warn("invalid environment variable, using default", "name", envAllowTrailing, "value", v)
		}
	}
	if v := getenv(envChunkSize); v != "" {
		if err := o.chunkSize.Set(v); err != nil {
			slog.Warn("invalid environment variable, using default", "name", envChunkSize, "value", v)
		}
	}
	if v := getenv(envArenaLimit); v != "" {
		if err := o.arenaLimit.Set(v); err != nil {
			slog.Warn("invalid environment variable, using default", "name", envArenaLimit, "value", v)
		}
	}
	if v := getenv(envWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			o.workers = n
		} else {
			slog.Warn("invalid environment variable, using default", "name", envWorkers, "value", v)
		}
	}
	if v := getenv(envLogLevel); v != "" {
		o.logLevel = v
	}
	return o
}

func (o options) parserConfig() *json.Config {
	cfg := json.DefaultConfig()
	cfg.DepthLimit = o.depthLimit
	cfg.AllowTrailing = o.allowTrailing
	cfg.Arena.ChunkSize = datasize.ByteSize(o.chunkSize)
	cfg.Arena.Limit = datasize.ByteSize(o.arenaLimit)
	return cfg
}

func (o options) logger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", o.logLevel)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// byteSize 让 datasize.ByteSize 满足 pflag.Value
type byteSize datasize.ByteSize

func (b *byteSize) String() string {
	if *b == 0 {
		return "0"
	}
	return datasize.ByteSize(*b).HumanReadable()
}

func (b *byteSize) Set(s string) error {
	var v datasize.ByteSize
	if err := v.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return err
	}
	*b = byteSize(v)
	return nil
}

func (b *byteSize) Type() string { return "bytes" }
