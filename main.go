package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ByLCY/quire/compose"
	"github.com/ByLCY/quire/config"
	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/measure"
	"github.com/ByLCY/quire/renderer"
	canvasrenderer "github.com/ByLCY/quire/renderer/canvas"
)

const (
	appName    = "quire"
	appVersion = "0.3.0"
)

// env 保存一次运行共享的配置与日志。
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	start time.Time
}

type envKey struct{}

func envFromContext(ctx context.Context) *env {
	if e, ok := ctx.Value(envKey{}).(*env); ok {
		return e
	}
	panic("运行环境未初始化")
}

func contextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &env{log: zap.NewNop(), start: time.Now()})
}

// initializeAppContext 在命令行解析之后、子命令执行之前载入配置与日志。
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	e := envFromContext(ctx)

	var err error
	configFile := cmd.String("config")
	if e.cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("无法载入配置: %w", err)
	}
	if cmd.Bool("verbose") {
		e.cfg.Logging.ConsoleLogger.Level = "debug"
	}
	if e.log, err = e.cfg.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("无法初始化日志: %w", err)
	}
	e.log.Debug("程序启动", zap.Strings("args", os.Args), zap.String("ver", appVersion), zap.String("runtime", runtime.Version()))
	if len(configFile) == 0 {
		e.log.Debug("未指定配置文件，使用默认配置")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, _ *cli.Command) (err error) {
	e := envFromContext(ctx)
	if e.log == nil {
		return nil
	}
	e.log.Debug("程序结束", zap.Duration("elapsed", time.Since(e.start)))
	if er := e.log.Sync(); er != nil && !isIgnorableSyncError(er) {
		err = multierr.Append(err, fmt.Errorf("无法刷新日志: %w", er))
	}
	return err
}

// isIgnorableSyncError 忽略对终端执行 fsync 时的错误。
func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}

func main() {
	ctx, stop := signal.NotifyContext(contextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            appName,
		Usage:           "把排版 DSL 文档渲染为 PDF",
		Version:         appVersion + " (" + runtime.Version() + ")",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "从 `FILE` 载入 YAML 配置"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "在控制台输出调试日志"},
		},
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "排版并输出 PDF",
				Action:    renderCommand,
				ArgsUsage: "SOURCE [DESTINATION]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "data", Usage: "绑定到文档的 `JSON` 数据"},
					&cli.StringFlag{Name: "data-file", Usage: "从 `FILE` 读取绑定数据（JSON）"},
					&cli.StringFlag{Name: "debug", Usage: "把布局结果以 JSON 写入 `FILE`"},
					&cli.BoolFlag{Name: "continue-on-error", Aliases: []string{"k"}, Usage: "跳过排版失败的语句并继续"},
					&cli.StringFlag{Name: "measure", Value: "font", Usage: "文本测量方式：font 使用嵌入字体，mono 按等宽字符估算"},
				},
			},
			{
				Name:      "layout",
				Usage:     "只排版，把布局结果以 JSON 输出",
				Action:    layoutCommand,
				ArgsUsage: "SOURCE [DESTINATION]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "data", Usage: "绑定到文档的 `JSON` 数据"},
					&cli.StringFlag{Name: "data-file", Usage: "从 `FILE` 读取绑定数据（JSON）"},
					&cli.BoolFlag{Name: "continue-on-error", Aliases: []string{"k"}, Usage: "跳过排版失败的语句并继续"},
					&cli.StringFlag{Name: "measure", Value: "font", Usage: "文本测量方式：font 使用嵌入字体，mono 按等宽字符估算"},
				},
			},
			{
				Name:      "dumpconfig",
				Usage:     "输出默认或当前生效的配置（YAML）",
				Action:    outputConfiguration,
				ArgsUsage: "[DESTINATION]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "输出内嵌的默认配置"},
				},
			},
		},
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "运行失败: %v\n", err)
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

// job 描述一次排版任务。
type job struct {
	source          string
	data            any
	continueOnError bool
}

func newJob(cmd *cli.Command) (job, error) {
	j := job{source: cmd.Args().Get(0), continueOnError: cmd.Bool("continue-on-error")}
	if j.source == "" {
		return j, fmt.Errorf("缺少 SOURCE 参数")
	}
	raw := []byte(cmd.String("data"))
	if path := cmd.String("data-file"); path != "" {
		if len(raw) > 0 {
			return j, fmt.Errorf("--data 与 --data-file 只能二选一")
		}
		var err error
		if raw, err = os.ReadFile(path); err != nil {
			return j, fmt.Errorf("读取数据文件失败: %w", err)
		}
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &j.data); err != nil {
			return j, fmt.Errorf("解析 data JSON 失败: %w", err)
		}
	}
	return j, nil
}

// destination 返回第二个参数，缺省时把 SOURCE 的扩展名换成 ext。
func destination(cmd *cli.Command, source, ext string) string {
	if out := cmd.Args().Get(1); out != "" {
		return out
	}
	return strings.TrimSuffix(source, filepath.Ext(source)) + ext
}

func newBackend(e *env, source string) renderer.Backend {
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir:      filepath.Dir(source),
		MaxImageSize: e.cfg.Images.MaxSize,
		Logger:       e.log,
	})
}

// newMeasurer 按 --measure 选择文本测量器。
func newMeasurer(name string, backend renderer.Backend) (layout.TextMeasurer, error) {
	switch name {
	case "", "font":
		return backend, nil
	case "mono":
		return measure.NewMono(), nil
	default:
		return nil, fmt.Errorf("未知的测量方式 %q（可选 font、mono）", name)
	}
}

func renderCommand(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	j, err := newJob(cmd)
	if err != nil {
		return err
	}
	out := destination(cmd, j.source, ".pdf")
	backend := newBackend(e, j.source)
	measurer, err := newMeasurer(cmd.String("measure"), backend)
	if err != nil {
		return err
	}

	result, err := typeset(e, j, measurer)
	if err != nil {
		return err
	}
	if path := cmd.String("debug"); path != "" {
		if err := writeDebug(result, path); err != nil {
			return err
		}
	}
	if err := write(e, backend, result, out); err != nil {
		return err
	}
	e.log.Info("已生成 PDF", zap.String("file", out), zap.Int("pages", len(result.Pages)))
	return nil
}

func layoutCommand(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	j, err := newJob(cmd)
	if err != nil {
		return err
	}
	measurer, err := newMeasurer(cmd.String("measure"), newBackend(e, j.source))
	if err != nil {
		return err
	}
	result, err := typeset(e, j, measurer)
	if err != nil {
		return err
	}
	out := destination(cmd, j.source, ".json")
	if err := writeDebug(result, out); err != nil {
		return err
	}
	e.log.Info("已输出布局", zap.String("file", out), zap.Int("pages", len(result.Pages)))
	return nil
}

// typeset 串联解析与排版。
func typeset(e *env, j job, measurer layout.TextMeasurer) (*layout.Result, error) {
	doc, err := dsl.ParseFile(j.source)
	if err != nil {
		return nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}

	settings, err := e.cfg.Settings()
	if err != nil {
		return nil, err
	}
	result, err := compose.Build(doc, j.data, compose.Options{
		Measurer:        measurer,
		Settings:        &settings,
		Logger:          e.log,
		ContinueOnError: j.continueOnError,
	})
	if err != nil {
		if !j.continueOnError || result == nil {
			return nil, fmt.Errorf("布局计算失败: %w", err)
		}
		for _, er := range multierr.Errors(err) {
			e.log.Warn("已跳过", zap.Error(er))
		}
	}
	return result, nil
}

func write(e *env, r renderer.Renderer, result *layout.Result, out string) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(out, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	e.log.Debug("PDF 写入完成", zap.Int("bytes", len(pdfBytes)))
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	if cmd.Args().Len() > 1 {
		e.log.Warn("参数过多，只使用第一个输出路径", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var (
		data []byte
		err  error
	)
	if cmd.Bool("default") {
		data = config.Prepare()
	} else if data, err = config.Dump(e.cfg); err != nil {
		return err
	}

	fname := cmd.Args().Get(0)
	if fname == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(fname, data, 0o644); err != nil {
		return fmt.Errorf("无法写入配置文件 %s: %w", fname, err)
	}
	e.log.Info("已输出配置", zap.String("file", fname))
	return nil
}
