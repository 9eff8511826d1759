package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/uniyakcom/arenajson/batch"
	"github.com/uniyakcom/arenajson/json"
)

// errFailed 至少一个文档解析失败（具体错误已输出）
var errFailed = stderrors.New("one or more documents failed to parse")

// NewCLI 创建 jsonpp 根命令
func NewCLI() *cobra.Command {
	opts := defaultOptions(os.Getenv)

	rootCmd := &cobra.Command{
		Use:   "jsonpp",
		Short: "Arena-backed JSON object parser and pretty printer",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// 错误时不输出 usage
			cmd.SilenceUsage = true
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.IntVar(&opts.depthLimit, "depth-limit", opts.depthLimit, "Nesting depth must stay below this limit")
	flags.BoolVar(&opts.allowTrailing, "allow-trailing", opts.allowTrailing, "Ignore content after the closing brace")
	flags.Var(&opts.chunkSize, "chunk-size", "Arena chunk size (e.g. 64KB)")
	flags.Var(&opts.arenaLimit, "arena-limit", "Maximum arena memory per document, 0 for unlimited")
	flags.IntVar(&opts.workers, "workers", opts.workers, "Number of parse workers, 0 for GOMAXPROCS")
	flags.StringVar(&opts.logLevel, "log-level", opts.logLevel, "Log level (debug, info, warn, error)")

	printCmd := &cobra.Command{
		Use:   "print FILE...",
		Short: "Pretty-print JSON documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(cmd, opts, args, func(out io.Writer, r batch.Result) {
				if len(args) > 1 {
					color.New(color.Bold).Fprintf(out, "%s:\n", r.Name)
				}
				_, _ = r.Doc.WriteTo(out)
			})
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Validate JSON documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(cmd, opts, args, func(out io.Writer, r batch.Result) {
				fmt.Fprintf(out, "%s: ok\n", r.Name)
			})
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats FILE...",
		Short: "Show document and arena statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			err := runFiles(cmd, opts, args, func(_ io.Writer, r batch.Result) {
				rows = append(rows, statsRow(r.Name, r.Doc))
			})
			if len(rows) > 0 {
				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.SetHeader([]string{"FILE", "PAIRS", "TOTAL", "DEPTH", "INPUT", "ARENA"})
				table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
				table.SetAlignment(tablewriter.ALIGN_LEFT)
				table.SetHeaderLine(false)
				table.SetBorder(false)
				table.SetNoWhiteSpace(true)
				table.SetTablePadding("    ")
				table.AppendBulk(rows)
				table.Render()
			}
			return err
		},
	}

	getCmd := &cobra.Command{
		Use:   "get FILE PATH",
		Short: "Look up a dot separated key path without building a tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, "read %s", args[0])
			}
			res := json.GetBytes(data, args[1])
			if !res.Exists() {
				return fmt.Errorf("%s: path %q not found", args[0], args[1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.String())
			return nil
		},
	}

	rootCmd.AddCommand(printCmd, checkCmd, statsCmd, getCmd)
	return rootCmd
}

// runFiles 批量解析 paths，成功的文档交给 fn，失败的输出错误
func runFiles(cmd *cobra.Command, opts options, paths []string, fn func(io.Writer, batch.Result)) error {
	logger, err := opts.logger()
	if err != nil {
		return err
	}
	r, err := batch.New(&batch.Config{
		Workers: opts.workers,
		Parser:  opts.parserConfig(),
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer r.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := r.ParseFiles(ctx, paths)
	if err != nil {
		return err
	}
	defer batch.ReleaseAll(results)

	failed := false
	for _, res := range results {
		if res.Err != nil {
			failed = true
			reportError(cmd.ErrOrStderr(), res.Name, res.Err)
			continue
		}
		fn(cmd.OutOrStdout(), res)
	}
	if failed {
		return errFailed
	}
	return nil
}

// reportError 输出 "error: file:line:col: msg"
func reportError(w io.Writer, name string, err error) {
	prefix := color.New(color.Bold).Sprint("error:")
	var se *json.SyntaxError
	if stderrors.As(err, &se) {
		fmt.Fprintf(w, "%s %s:%d:%d: %s (%s)\n", prefix, name, se.Line, se.Column, se.Msg, se.Kind)
		return
	}
	fmt.Fprintf(w, "%s %s: %v\n", prefix, name, err)
}

func statsRow(name string, d *json.Document) []string {
	return []string{
		name,
		strconv.Itoa(d.Len()),
		strconv.Itoa(d.Count()),
		strconv.Itoa(d.Depth()),
		humanize.Bytes(uint64(d.Size())),
		humanize.Bytes(uint64(d.ArenaStats().Used)),
	}
}
