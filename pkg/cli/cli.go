package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/zurustar/bna/pkg/logger"
	"github.com/zurustar/bna/pkg/script"
)

// 環境変数名
const (
	EnvLogLevel = "BNA_LOG_LEVEL"
	EnvMaxSteps = "BNA_MAX_STEPS"
	EnvEncoding = "BNA_ENCODING"
)

// DefaultLogLevel はログレベルの既定値。スクリプトの出力を邪魔しないようwarn。
const DefaultLogLevel = "warn"

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	ScriptPath   string // 実行するスクリプトのパス
	ConfigPath   string // YAML実行ファイルのパス（省略可）
	LogLevel     string // ログレベル（debug, info, warn, error）
	MaxSteps     int    // 実行命令数の上限（0は無制限）
	Encoding     string // スクリプトとデータファイルの文字コード
	Seed         uint64 // 乱数のシード（0は時刻から決める）
	Example      string // 実行する同梱サンプル名
	ListExamples bool   // 同梱サンプルの一覧を表示
	DumpProgram  bool   // コンパイル結果の命令列を表示して終了
	CheckDir     string // ディレクトリ内の全スクリプトをコンパイルのみ行う
	Trace        bool   // 命令ごとの実行トレースを標準エラー出力に書く
	ShowHelp     bool   // ヘルプ表示フラグ

	set map[string]bool // コマンドラインまたは環境変数で指定された項目
}

// IsSet は項目がコマンドラインまたは環境変数で明示的に指定されたかを返す。
// 名前はロングオプション名（"max-steps" など）。
func (c *Config) IsSet(name string) bool {
	return c.set[name]
}

// 短縮形 → ロングオプション名
var aliases = map[string]string{
	"c": "config",
	"l": "log-level",
	"s": "max-steps",
	"e": "encoding",
	"x": "example",
	"d": "dump-program",
	"h": "help",
}

// 値を取らないフラグ
var boolFlags = map[string]bool{
	"list-examples": true,
	"dump-program":  true,
	"trace":         true,
	"help":          true,
}

// ParseArgs コマンドライン引数を解析してConfigを返す
// フラグは環境変数より優先される。
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("bna", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{set: map[string]bool{}}

	fs.StringVar(&config.ConfigPath, "config", "", "YAML実行ファイル")
	fs.StringVar(&config.ConfigPath, "c", "", "YAML実行ファイル（短縮形）")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", DefaultLogLevel, "ログレベル（短縮形）")
	fs.IntVar(&config.MaxSteps, "max-steps", 0, "実行命令数の上限")
	fs.IntVar(&config.MaxSteps, "s", 0, "実行命令数の上限（短縮形）")
	fs.StringVar(&config.Encoding, "encoding", "", "文字コード（utf-8, shift_jis など）")
	fs.StringVar(&config.Encoding, "e", "", "文字コード（短縮形）")
	fs.Uint64Var(&config.Seed, "seed", 0, "乱数のシード")
	fs.StringVar(&config.Example, "example", "", "同梱サンプルを実行")
	fs.StringVar(&config.Example, "x", "", "同梱サンプルを実行（短縮形）")
	fs.BoolVar(&config.ListExamples, "list-examples", false, "同梱サンプルの一覧")
	fs.BoolVar(&config.DumpProgram, "dump-program", false, "命令列を表示して終了")
	fs.BoolVar(&config.DumpProgram, "d", false, "命令列を表示して終了（短縮形）")
	fs.StringVar(&config.CheckDir, "check", "", "ディレクトリ内のスクリプトをコンパイルのみ行う")
	fs.BoolVar(&config.Trace, "trace", false, "実行トレース")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if long, ok := aliases[name]; ok {
			name = long
		}
		config.set[name] = true
	})

	// 環境変数からの設定（コマンドラインフラグが優先）
	if !config.set["log-level"] {
		if v := os.Getenv(EnvLogLevel); v != "" {
			config.LogLevel = v
			config.set["log-level"] = true
		}
	}
	if !config.set["max-steps"] {
		if v := os.Getenv(EnvMaxSteps); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %q", EnvMaxSteps, v)
			}
			config.MaxSteps = n
			config.set["max-steps"] = true
		}
	}
	if !config.set["encoding"] {
		if v := os.Getenv(EnvEncoding); v != "" {
			config.Encoding = v
			config.set["encoding"] = true
		}
	}
	config.LogLevel = strings.ToLower(config.LogLevel)

	// 値の検証
	if config.MaxSteps < 0 {
		return nil, fmt.Errorf("max steps must be non-negative, got %d", config.MaxSteps)
	}
	if _, err := logger.ParseLevel(config.LogLevel); err != nil {
		return nil, fmt.Errorf("%w (must be debug, info, warn, or error)", err)
	}
	if _, err := script.LookupEncoding(config.Encoding); err != nil {
		return nil, err
	}

	// 位置引数（スクリプトのパス）
	switch fs.NArg() {
	case 0:
	case 1:
		config.ScriptPath = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected one script, got %d arguments", fs.NArg())
	}

	return config, nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--" 以降はすべて位置引数
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			// -name=value の形式なら次の引数は関係ない
			if strings.Contains(arg, "=") {
				continue
			}
			// ブール型フラグでない場合は次の引数も追加
			if !isBoolFlag(arg) && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	for _, p := range positional {
		if strings.HasPrefix(p, "-") {
			flags = append(flags, "--")
			break
		}
	}
	return append(flags, positional...)
}

func isBoolFlag(arg string) bool {
	name := strings.TrimLeft(arg, "-")
	if long, ok := aliases[name]; ok {
		name = long
	}
	return boolFlags[name]
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `bna - BNA script interpreter

Usage:
  bna [options] <script.bna>
  bna [options] --example <name>
  bna --check <directory>

Options:
  -c, --config <file>         YAML実行ファイル（max_steps, encoding, log_level, base_dir, seed, inputs）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: %s）
  -s, --max-steps <n>         実行命令数の上限（デフォルト: 0 = 無制限）
  -e, --encoding <name>       スクリプトとデータファイルの文字コード（デフォルト: utf-8）
      --seed <n>              乱数のシード（同じシードなら同じ結果）
  -x, --example <name>        同梱サンプルを実行
      --list-examples         同梱サンプルの一覧を表示
  -d, --dump-program          コンパイル結果の命令列を表示して終了
      --check <directory>     ディレクトリ内の全スクリプトをコンパイルして検査
      --trace                 命令ごとの実行トレースを標準エラー出力に表示
  -h, --help                  このヘルプを表示

Environment Variables:
  %s=<level>         ログレベル
  %s=<n>             実行命令数の上限
  %s=<name>          文字コード

Exit Status:
  0  正常終了
  1  実行時エラー
  2  引数・設定・コンパイルのエラー

Examples:
  bna count.bna                       スクリプトを実行
  bna --max-steps 100000 loop.bna     無限ループ対策
  bna -e shift_jis old.bna            Shift_JISのスクリプトを実行
  bna --config run.yaml main.bna      実行ファイルの設定で実行
  bna --example fizzbuzz              同梱サンプルを実行
`, DefaultLogLevel, EnvLogLevel, EnvMaxSteps, EnvEncoding)
}
