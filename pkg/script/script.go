package script

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/zurustar/bna/pkg/fileutil"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Extension はスクリプトファイルの拡張子
const Extension = ".bna"

// Script はスクリプトファイルを表す
type Script struct {
	FileName string // ファイル名
	Content  string // UTF-8に変換された内容
	Size     int64  // 変換前のバイト数
}

// Loader はスクリプトファイルの読み込みを行う
type Loader struct {
	fsys fileutil.FileSystem
	enc  encoding.Encoding // nilの場合はUTF-8
}

// NewLoader Loaderを作成
// encにnilを指定した場合、スクリプトはUTF-8として扱う。
func NewLoader(fsys fileutil.FileSystem, enc encoding.Encoding) *Loader {
	return &Loader{
		fsys: fsys,
		enc:  enc,
	}
}

// Load 単一のスクリプトファイルを読み込む
func (l *Loader) Load(name string) (*Script, error) {
	data, err := l.fsys.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content, err := Decode(data, l.enc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert encoding: %w", err)
	}

	return &Script{
		FileName: path.Base(strings.ReplaceAll(name, "\\", "/")),
		Content:  content,
		Size:     int64(len(data)),
	}, nil
}

// List ディレクトリ内の.bnaファイル名をソートして返す（拡張子はcase-insensitive）
func (l *Loader) List(dir string) ([]string, error) {
	entries, err := l.fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(path.Ext(e.Name()), Extension) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Decode 指定されたエンコーディングからUTF-8に変換
// UTF-8の場合は先頭のBOMを取り除く。
func Decode(data []byte, enc encoding.Encoding) (string, error) {
	if enc == nil {
		enc = unicode.UTF8BOM
	}
	reader := transform.NewReader(strings.NewReader(string(data)), enc.NewDecoder())

	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode: %w", err)
	}

	return string(utf8Data), nil
}

// LookupEncoding エンコーディング名からencoding.Encodingを取得
// 空文字列と"utf-8"はnil（UTF-8）を返す。"sjis"はShift_JISの別名として扱う。
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "sjis", "shift_jis", "shift-jis":
		return japanese.ShiftJIS, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}
