package app

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zurustar/bna/pkg/catalog"
	"github.com/zurustar/bna/pkg/cli"
	"github.com/zurustar/bna/pkg/compiler"
	"github.com/zurustar/bna/pkg/config"
	"github.com/zurustar/bna/pkg/fileutil"
	"github.com/zurustar/bna/pkg/host"
	"github.com/zurustar/bna/pkg/logger"
	"github.com/zurustar/bna/pkg/program"
	"github.com/zurustar/bna/pkg/script"
	"github.com/zurustar/bna/pkg/vm"
	"golang.org/x/text/encoding"
)

// 終了コード
const (
	ExitOK      = 0
	ExitRuntime = 1 // 実行時エラー
	ExitUsage   = 2 // 引数・設定・コンパイルのエラー
)

// ExamplesDir は埋め込みファイルシステム内の同梱サンプルのディレクトリ
const ExamplesDir = "examples"

// CompileFailure はスクリプトのコンパイルに失敗したことを表す
type CompileFailure struct {
	FileName string
	Errors   []error
}

func (e *CompileFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d compile error(s)", e.FileName, len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString("\n")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap returns the individual compile errors.
func (e *CompileFailure) Unwrap() []error { return e.Errors }

// ExitCode はRunの戻り値に対応する終了コードを返す
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var re *vm.RuntimeError
	if errors.As(err, &re) {
		return ExitRuntime
	}
	return ExitUsage
}

// settings はコマンドラインとYAML実行ファイルを合わせた実行設定
type settings struct {
	logLevel string
	maxSteps int
	encoding encoding.Encoding
	baseDir  string
	seed     uint64
	inputs   *vm.Environment
}

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config   *cli.Config
	settings settings
	log      *slog.Logger
	examples *catalog.Registry
	files    *host.FileTable

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Option configures an Application.
type Option func(*Application)

// WithIO replaces the process standard streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(app *Application) {
		app.stdin = stdin
		app.stdout = stdout
		app.stderr = stderr
	}
}

// New Applicationを作成
// examplesFSのexamplesディレクトリにある.bnaファイルが同梱サンプルになる。
func New(examplesFS fs.FS, opts ...Option) *Application {
	app := &Application{
		examples: catalog.NewRegistry(examplesFS, ExamplesDir),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}

	// 2. 実行ファイルの読み込みと設定の統合
	if err := app.loadSettings(); err != nil {
		return err
	}

	// 3. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.log.Info("Application started", "max_steps", app.settings.maxSteps, "base_dir", app.settings.baseDir)

	switch {
	case app.config.ListExamples:
		app.listExamples()
		return nil
	case app.config.CheckDir != "":
		return app.checkDirectory(app.config.CheckDir)
	}

	// 4. スクリプトの読み込み
	s, err := app.loadScript()
	if err != nil {
		return fmt.Errorf("failed to load script: %w", err)
	}
	app.log.Info("Script loaded", "name", s.FileName, "size", s.Size)
	app.log.Debug("Script content preview", "name", s.FileName, "preview", truncate(s.Content, 100))

	// 5. スクリプトのコンパイル
	prog, errs := compiler.Compile(s.Content)
	if len(errs) > 0 {
		app.log.Error("Compilation failed", "name", s.FileName, "errors", len(errs))
		return &CompileFailure{FileName: s.FileName, Errors: errs}
	}
	app.log.Info("Script compiled successfully", "instructions", prog.Len(), "labels", len(prog.Labels()))
	app.log.Debug("Program generated", "listing", "\n"+prog.String())

	if app.config.DumpProgram {
		fmt.Fprint(app.stdout, prog.String())
		return nil
	}

	// 6. 実行
	return app.execute(prog)
}

// Close は実行中に開かれたままのファイルを閉じる
func (app *Application) Close() {
	if app.files != nil {
		app.files.CloseAll()
	}
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// loadSettings はYAML実行ファイルを読み込み、コマンドラインの指定で上書きする
// 優先順位: コマンドライン・環境変数 > 実行ファイル > 既定値
func (app *Application) loadSettings() error {
	run := &config.RunConfig{}
	if app.config.ConfigPath != "" {
		loaded, err := config.Load(app.config.ConfigPath)
		if err != nil {
			return err
		}
		run = loaded
	}

	s := settings{
		logLevel: app.config.LogLevel,
		maxSteps: app.config.MaxSteps,
		baseDir:  run.BaseDir,
		seed:     app.config.Seed,
	}
	if !app.config.IsSet("log-level") && run.LogLevel != "" {
		s.logLevel = strings.ToLower(run.LogLevel)
	}
	if !app.config.IsSet("max-steps") && run.MaxSteps != 0 {
		s.maxSteps = run.MaxSteps
	}
	if !app.config.IsSet("seed") && run.Seed != 0 {
		s.seed = run.Seed
	}

	encName := app.config.Encoding
	if !app.config.IsSet("encoding") && run.Encoding != "" {
		encName = run.Encoding
	}
	enc, err := script.LookupEncoding(encName)
	if err != nil {
		return err
	}
	s.encoding = enc

	values, err := run.Values()
	if err != nil {
		return err
	}
	s.inputs = vm.EnvironmentOf(values)

	app.settings = s
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	if err := logger.InitLoggerTo(app.stderr, app.settings.logLevel); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

// listExamples 同梱サンプルの一覧を表示
func (app *Application) listExamples() {
	entries := app.examples.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(app.stdout, "no bundled examples")
		return
	}
	for _, e := range entries {
		line := fmt.Sprintf("%-12s %s", e.Name, e.DisplayName())
		if e.Metadata.Summary != "" {
			line += " - " + e.Metadata.Summary
		}
		fmt.Fprintln(app.stdout, line)
	}
}

// checkDirectory ディレクトリ内の全スクリプトをコンパイルして結果を表示する
func (app *Application) checkDirectory(dir string) error {
	loader := script.NewLoader(fileutil.NewRealFS(dir), app.settings.encoding)
	results, err := compiler.CompileDirectory(loader, ".")
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if len(r.Errors) == 0 {
			fmt.Fprintf(app.stdout, "ok    %s (%d instructions)\n", r.FileName, r.Program.Len())
			continue
		}
		failed++
		fmt.Fprintf(app.stdout, "FAIL  %s\n", r.FileName)
		for _, e := range r.Errors {
			fmt.Fprintf(app.stdout, "      %s\n", strings.ReplaceAll(e.Error(), "\n", "\n      "))
		}
	}
	app.log.Info("Check completed", "scripts", len(results), "failed", failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d scripts failed to compile", failed, len(results))
	}
	return nil
}

// loadScript は実行するスクリプトを読み込む（同梱サンプルまたはファイル）
func (app *Application) loadScript() (*script.Script, error) {
	if app.config.Example != "" {
		if app.config.ScriptPath != "" {
			return nil, fmt.Errorf("give either a script path or --example, not both")
		}
		return app.examples.Load(app.config.Example)
	}
	if app.config.ScriptPath == "" {
		return nil, fmt.Errorf("no script given (see --help)")
	}

	dir, name := filepath.Split(app.config.ScriptPath)
	loader := script.NewLoader(fileutil.NewRealFS(dir), app.settings.encoding)
	return loader.Load(name)
}

// execute はプログラムを実行する
func (app *Application) execute(prog *program.Program) error {
	app.files = host.NewFileTable(app.settings.baseDir,
		host.WithEncoding(app.settings.encoding),
		host.WithFileLogger(app.log))

	random := host.NewRandom()
	if app.settings.seed != 0 {
		random = host.NewSeededRandom(app.settings.seed)
	}

	opts := []vm.Option{
		vm.WithMaxSteps(app.settings.maxSteps),
		vm.WithConsole(host.NewConsole(app.stdin, app.stdout)),
		vm.WithRandom(random),
		vm.WithClock(host.SystemClock{}),
		vm.WithFileSystem(app.files),
		vm.WithLogger(app.log),
	}
	if app.config.Trace {
		opts = append(opts, vm.WithTrace(app.traceStep))
	}

	start := time.Now()
	env, err := vm.New(opts...).Run(prog, app.settings.inputs)
	if err != nil {
		app.log.Error("Run failed", "error", err, "environment", env)
		return err
	}
	app.log.Info("Application terminated normally", "elapsed", time.Since(start), "variables", env.Len())
	app.log.Debug("Final environment", "environment", env)
	return nil
}

// traceStep は1命令分のトレースを標準エラー出力に書く
func (app *Application) traceStep(s vm.Step) {
	line := ""
	if s.Instruction.Line > 0 {
		line = fmt.Sprintf(" line %d", s.Instruction.Line)
	}
	fmt.Fprintf(app.stderr, "[%4d%s] %-30s %s\n", s.PC, line, s.Instruction, s.Env)
}

// truncate 文字列を指定した文字数で切り詰める（マルチバイト文字の途中では切らない）
func truncate(s string, maxLen int) string {
	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
