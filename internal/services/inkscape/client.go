package inkscape

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"qslgen/internal/services"
)

const (
	inputToken  = "{input}"
	outputToken = "{output}"
	// outputTailLines bounds how much converter output is kept for error messages.
	outputTailLines = 5
)

// Rasterizer converts a rendered SVG into a raster image.
type Rasterizer interface {
	Rasterize(ctx context.Context, svgPath, outputPath string) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithOutputHandler receives every line the converter prints.
func WithOutputHandler(fn func(string)) Option {
	return func(c *Client) {
		c.onOutput = fn
	}
}

// Client runs the converter CLI.
type Client struct {
	binary   string
	args     []string
	timeout  time.Duration
	exec     Executor
	onOutput func(string)
}

// New constructs a converter client. A zero timeout leaves conversions unbounded.
func New(binary string, args []string, timeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "inkscape", "new", "converter binary required", nil)
	}
	if !containsToken(args, inputToken) || !containsToken(args, outputToken) {
		return nil, services.Wrap(services.ErrConfiguration, "inkscape", "new",
			fmt.Sprintf("converter args must reference %s and %s", inputToken, outputToken), nil)
	}
	client := &Client{
		binary:  binary,
		args:    append([]string(nil), args...),
		timeout: timeout,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured converter executable.
func (c *Client) Binary() string {
	return c.binary
}

// Args expands the argument template for a single conversion.
func (c *Client) Args(svgPath, outputPath string) []string {
	replacer := strings.NewReplacer(inputToken, svgPath, outputToken, outputPath)
	expanded := make([]string, len(c.args))
	for i, arg := range c.args {
		expanded[i] = replacer.Replace(arg)
	}
	return expanded
}

// Rasterize runs the converter for one card. Failures are tagged with
// services.ErrTimeout when the deadline expired and services.ErrExternalTool otherwise.
func (c *Client) Rasterize(ctx context.Context, svgPath, outputPath string) error {
	if strings.TrimSpace(svgPath) == "" || strings.TrimSpace(outputPath) == "" {
		return services.Wrap(services.ErrValidation, "inkscape", "rasterize", "input and output paths required", nil)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	tail := newLineTail(outputTailLines)
	err := c.exec.Run(runCtx, c.binary, c.Args(svgPath, outputPath), func(line string) {
		tail.add(line)
		if c.onOutput != nil {
			c.onOutput(line)
		}
	})
	if err == nil {
		return nil
	}

	message := fmt.Sprintf("convert %s", svgPath)
	if output := tail.String(); output != "" {
		message += " (" + output + ")"
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return services.Wrap(services.ErrTimeout, "inkscape", "rasterize",
			fmt.Sprintf("%s: exceeded %s", message, c.timeout), err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return services.Wrap(services.ErrExternalTool, "inkscape", "rasterize", message, err)
}

func containsToken(args []string, token string) bool {
	for _, arg := range args {
		if strings.Contains(arg, token) {
			return true
		}
	}
	return false
}

type lineTail struct {
	mu    sync.Mutex
	max   int
	lines []string
}

func newLineTail(max int) *lineTail {
	return &lineTail{max: max}
}

func (t *lineTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *lineTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "; ")
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onOutput != nil {
				onOutput(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
