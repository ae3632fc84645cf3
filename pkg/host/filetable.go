package host

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/zurustar/bna/pkg/fileutil"
	"github.com/zurustar/bna/pkg/logger"
	"github.com/zurustar/bna/pkg/opcode"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// minHandleID is the minimum handle ID assigned by FileTable.
// Handles start from 1 (not 0) to distinguish from uninitialized values.
const minHandleID = 1

// fileEntry はファイルテーブルの1エントリ。
type fileEntry struct {
	file   *os.File
	mode   opcode.FileMode
	reader *bufio.Reader // READ用。読み込みモードで開いたときに生成する。
	writer *bufio.Writer // WRITE用。書き込みモードで開いたときに生成する。
	sink   io.Closer     // 文字コード変換用のtransform.Writer。UTF-8の場合はnil。
}

// FileTable は整数ハンドル→*os.Fileのマッピングを管理する。
// ハンドルは1から始まる正の整数で、閉じたハンドルは再利用される。
type FileTable struct {
	baseDir string
	enc     encoding.Encoding
	files   map[int64]*fileEntry
	mu      sync.Mutex
	log     *slog.Logger
}

// FileTableOption configures a FileTable.
type FileTableOption func(*FileTable)

// WithEncoding sets the text encoding of the files. nil means UTF-8.
func WithEncoding(enc encoding.Encoding) FileTableOption {
	return func(t *FileTable) {
		t.enc = enc
	}
}

// WithFileLogger sets a custom logger.
func WithFileLogger(log *slog.Logger) FileTableOption {
	return func(t *FileTable) {
		t.log = log
	}
}

// NewFileTable は新しいFileTableを生成して返す。
// 相対パスはbaseDirから解決する。baseDirが空の場合はカレントディレクトリ。
func NewFileTable(baseDir string, opts ...FileTableOption) *FileTable {
	t := &FileTable{
		baseDir: baseDir,
		files:   make(map[int64]*fileEntry),
		log:     logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// resolve は相対パスをbaseDirから解決する。
// 読み込み時は大文字小文字を区別せずに既存ファイルを探す。
func (t *FileTable) resolve(path string, mode opcode.FileMode) string {
	full := path
	if !filepath.IsAbs(path) && t.baseDir != "" {
		full = filepath.Join(t.baseDir, path)
	}
	if mode == opcode.ReadMode {
		if found, err := fileutil.ResolveCaseInsensitive(full); err == nil {
			return found
		}
	}
	return full
}

// Open はファイルを開き、未使用の最小整数ハンドル（1以上）を割り当てて返す。
// 書き込みモードではファイルを新規作成する（存在すれば切り詰める）。
func (t *FileTable) Open(path string, mode opcode.FileMode) (int64, error) {
	full := t.resolve(path, mode)

	var (
		f   *os.File
		err error
	)
	if mode == opcode.WriteMode {
		f, err = os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	} else {
		f, err = os.Open(full)
	}
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}

	entry := &fileEntry{file: f, mode: mode}
	if mode == opcode.WriteMode {
		if t.enc != nil {
			tw := transform.NewWriter(f, t.enc.NewEncoder())
			entry.sink = tw
			entry.writer = bufio.NewWriter(tw)
		} else {
			entry.writer = bufio.NewWriter(f)
		}
	} else {
		entry.reader = bufio.NewReader(t.decodeFrom(f))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	handle := int64(minHandleID)
	for {
		if _, exists := t.files[handle]; !exists {
			break
		}
		handle++
	}
	t.files[handle] = entry

	t.log.Debug("File opened", "path", full, "mode", mode, "handle", handle)
	return handle, nil
}

func (t *FileTable) decodeFrom(r io.Reader) io.Reader {
	if t.enc == nil {
		return r
	}
	return transform.NewReader(r, t.enc.NewDecoder())
}

// get はハンドルに対応するfileEntryを返す。無効なハンドルの場合はエラーを返す。
func (t *FileTable) get(handle int64) (*fileEntry, error) {
	entry, exists := t.files[handle]
	if !exists {
		return nil, fmt.Errorf("invalid file handle: %d", handle)
	}
	return entry, nil
}

// ReadLine は1行を読み込む。改行文字（CR, LF, CRLF）は含めない。
// EOF時は空文字列とeof=trueを返す。
func (t *FileTable) ReadLine(handle int64) (string, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, err := t.get(handle)
	if err != nil {
		return "", false, err
	}
	if entry.reader == nil {
		return "", false, fmt.Errorf("file handle %d is not open for reading", handle)
	}

	line, err := readLine(entry.reader)
	if err == io.EOF && len(line) == 0 {
		return "", true, nil
	}
	if err != nil && err != io.EOF {
		return "", false, err
	}
	return string(line), false, nil
}

// readLine reads a single line, handling CR, LF, and CRLF delimiters.
// Returns the line content without the trailing line delimiter.
func readLine(r *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return line, err
		}
		if b == '\n' {
			return line, nil
		}
		if b == '\r' {
			next, err := r.Peek(1)
			if err == nil && len(next) > 0 && next[0] == '\n' {
				_, _ = r.ReadByte()
			}
			return line, nil
		}
		line = append(line, b)
	}
}

// Write は文字列と改行をファイルに書き込む。
func (t *FileTable) Write(handle int64, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, err := t.get(handle)
	if err != nil {
		return err
	}
	if entry.writer == nil {
		return fmt.Errorf("file handle %d is not open for writing", handle)
	}
	if _, err := entry.writer.WriteString(text + "\n"); err != nil {
		return err
	}
	return nil
}

// Close はハンドルのファイルを閉じてハンドルを解放する。
// 解放されたハンドルは後続のOpen呼び出しで再利用される。
func (t *FileTable) Close(handle int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, err := t.get(handle)
	if err != nil {
		return err
	}
	delete(t.files, handle)
	return entry.close()
}

func (e *fileEntry) close() error {
	var flushErr error
	if e.writer != nil {
		flushErr = e.writer.Flush()
	}
	if e.sink != nil {
		if err := e.sink.Close(); err != nil && flushErr == nil {
			flushErr = err
		}
	}
	closeErr := e.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// CloseAll は開いている全てのファイルを閉じてリソースを解放する。
// 個別のCloseエラーはログに記録するが、クリーンアップ処理は継続する。
func (t *FileTable) CloseAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for handle, entry := range t.files {
		if err := entry.close(); err != nil {
			t.log.Warn("Failed to close file", "handle", handle, "error", err)
		}
		delete(t.files, handle)
	}
}

// OpenCount は開いているファイルの数を返す。
func (t *FileTable) OpenCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.files)
}
