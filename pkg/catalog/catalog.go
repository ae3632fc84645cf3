// Package catalog lists the example scripts bundled with the binary.
package catalog

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/zurustar/bna/pkg/compiler/lexer"
	"github.com/zurustar/bna/pkg/compiler/token"
	"github.com/zurustar/bna/pkg/fileutil"
	"github.com/zurustar/bna/pkg/script"
)

// Metadata はスクリプト先頭のコメントから抽出した情報
//
//	# title: Count to ten
//	# summary: A loop with a backward GOTO
//	# note: any number of note lines
type Metadata struct {
	Title   string
	Summary string
	Notes   []string
}

// Entry は同梱サンプル1件を表す
type Entry struct {
	Name     string    // 拡張子を除いたファイル名
	FileName string    // ファイル名
	Metadata *Metadata // 先頭コメントから抽出したメタデータ
}

// DisplayName はサンプルの表示名を返す
// titleがあればそれを、なければファイル名を返す
func (e *Entry) DisplayName() string {
	if e.Metadata != nil && e.Metadata.Title != "" {
		return e.Metadata.Title
	}
	return e.Name
}

// Registry は同梱サンプルの管理を行う
type Registry struct {
	entries []Entry
	loader  *script.Loader
}

// NewRegistry はfsysのdir以下にある.bnaファイルからRegistryを作成する
// dirが存在しない場合は空のRegistryになる。
func NewRegistry(fsys fs.FS, dir string) *Registry {
	r := &Registry{
		loader: script.NewLoader(fileutil.NewEmbedFS(fsys, dir), nil),
	}

	names, err := r.loader.List(".")
	if err != nil {
		return r
	}
	for _, name := range names {
		entry := Entry{
			Name:     strings.TrimSuffix(name, path.Ext(name)),
			FileName: name,
			Metadata: &Metadata{},
		}
		if s, err := r.loader.Load(name); err == nil {
			entry.Metadata = ExtractMetadata(s.Content)
		}
		r.entries = append(r.entries, entry)
	}
	sort.Slice(r.entries, func(i, j int) bool { return r.entries[i].Name < r.entries[j].Name })
	return r
}

// Entries は全サンプルを名前順で返す
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Find は名前（拡張子の有無・大文字小文字を問わない）でサンプルを探す
func (r *Registry) Find(name string) (*Entry, error) {
	want := strings.TrimSuffix(strings.ToLower(name), script.Extension)
	for i := range r.entries {
		if strings.ToLower(r.entries[i].Name) == want {
			e := r.entries[i]
			return &e, nil
		}
	}
	return nil, fmt.Errorf("no example named %q (use --list-examples)", name)
}

// Load はサンプルのスクリプトを読み込む
func (r *Registry) Load(name string) (*script.Script, error) {
	e, err := r.Find(name)
	if err != nil {
		return nil, err
	}
	return r.loader.Load(e.FileName)
}

// ExtractMetadata はスクリプト先頭のコメントからメタデータを抽出する
// フルコンパイルせずにLexerのみを使用して軽量に抽出する。
// 最初の文が現れた時点で抽出を終える。
func ExtractMetadata(content string) *Metadata {
	metadata := &Metadata{}

	l := lexer.New(content)
	for {
		tok := l.NextToken()
		switch tok.Type {
		case token.EOF:
			return metadata
		case token.NEWLINE:
			continue
		case token.COMMENT:
			parseHeaderComment(tok.Literal, metadata)
		default:
			return metadata
		}
	}
}

// parseHeaderComment は "# key: value" 形式のコメントをメタデータに追加する
func parseHeaderComment(literal string, metadata *Metadata) {
	rest := strings.TrimSpace(strings.TrimPrefix(literal, "#"))
	key, value, ok := strings.Cut(rest, ":")
	if !ok {
		return
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}

	switch strings.ToLower(strings.TrimSpace(key)) {
	case "title":
		if metadata.Title == "" {
			metadata.Title = value
		}
	case "summary":
		if metadata.Summary == "" {
			metadata.Summary = value
		}
	case "note":
		metadata.Notes = append(metadata.Notes, value)
	}
}
