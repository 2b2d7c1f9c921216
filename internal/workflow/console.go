package workflow

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
)

// DefaultMaxLineBytes ограничивает длину одной строки ввода.
const DefaultMaxLineBytes = 64 * 1024

type readResult struct {
	line string
	err  error
}

// StreamConsole читает строки из io.Reader в отдельной горутине, чтобы ожидание ввода
// можно было прервать отменой контекста.
type StreamConsole struct {
	in           *bufio.Reader
	out          io.Writer
	maxLineBytes int

	once      sync.Once
	closeOnce sync.Once
	results   chan readResult
	done      chan struct{}
}

var _ Console = (*StreamConsole)(nil)

// NewStreamConsole создаёт консоль поверх потоков ввода и вывода.
func NewStreamConsole(in io.Reader, out io.Writer) *StreamConsole {
	return NewStreamConsoleWithLimit(in, out, DefaultMaxLineBytes)
}

// NewStreamConsoleWithLimit создаёт консоль с собственным лимитом длины строки.
// Более длинная строка пропускается целиком и возвращается как ошибка валидации.
func NewStreamConsoleWithLimit(in io.Reader, out io.Writer, maxLineBytes int) *StreamConsole {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	return &StreamConsole{
		in:           bufio.NewReader(in),
		out:          out,
		maxLineBytes: maxLineBytes,
		results:      make(chan readResult, 1),
		done:         make(chan struct{}),
	}
}

// ReadLine возвращает следующую строку без перевода строки.
func (c *StreamConsole) ReadLine(ctx context.Context) (string, error) {
	c.once.Do(func() { go c.scan() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-c.results:
		if !ok {
			return "", io.EOF
		}
		return r.line, r.err
	}
}

// Printf пишет в поток вывода.
func (c *StreamConsole) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// Close останавливает фоновое чтение после текущей строки.
func (c *StreamConsole) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (c *StreamConsole) scan() {
	defer close(c.results)
	for {
		line, err := c.readLine()
		if err != nil && !domain.IsRecoverable(err) {
			c.send(readResult{err: err})
			return
		}
		if !c.send(readResult{line: line, err: err}) {
			return
		}
	}
}

func (c *StreamConsole) send(r readResult) bool {
	select {
	case c.results <- r:
		return true
	case <-c.done:
		return false
	}
}

// readLine читает строку до '\n', не накапливая в памяти больше maxLineBytes.
func (c *StreamConsole) readLine() (string, error) {
	var (
		line    []byte
		tooLong bool
	)
	for {
		chunk, err := c.in.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			if len(strings.TrimRight(string(line), "\r\n")) > c.maxLineBytes {
				tooLong = true
				line = nil
			}
		}

		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && (!errors.Is(err, io.EOF) || (len(line) == 0 && !tooLong)) {
			return "", err
		}
		break
	}

	if tooLong {
		return "", domain.Errorf(domain.CodeValidation, "input line is longer than %d bytes", c.maxLineBytes)
	}
	return strings.TrimRight(string(line), "\r\n"), nil
}
