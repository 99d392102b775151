// Package progress renders a live, single-line view of a cleanup run on
// stderr. Keeping the display off stdout leaves the final summary clean
// for pipes and machine-readable formats.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/saraf/clean-whiteboard-images/pkg/logger"
)

type tracker struct {
	config Config
	log    logger.Logger
	writer io.Writer

	// State
	status    Status
	message   string
	startTime time.Time
	active    bool
	loop      bool

	// Rendering
	renderer    renderer
	refreshRate time.Duration
	width       int

	// Synchronization
	mu       sync.Mutex
	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

// New creates a new progress tracker writing to stderr
func New(config Config, log logger.Logger) Tracker {
	if config.RefreshRate == 0 {
		config.RefreshRate = 100 * time.Millisecond
	}

	p := &tracker{
		config:      config,
		log:         log,
		writer:      os.Stderr,
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
		refreshRate: config.RefreshRate,
	}

	if p.config.Width == 0 {
		p.width = p.terminalWidth()
	} else {
		p.width = p.config.Width
	}

	p.renderer = p.createRenderer()

	p.log.WithFields(logger.Fields{
		"style":   p.config.Style,
		"width":   p.width,
		"noColor": p.config.NoColor,
		"refresh": p.config.RefreshRate,
	}).Debug("Created progress tracker")

	return p
}

func (p *tracker) Start(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.WithFields(logger.Fields{
		"message": message,
	}).Debug("Starting progress display")

	p.message = message
	p.startTime = time.Now()
	p.active = true
	p.loop = true

	go p.renderLoop()
}

func (p *tracker) Update(status Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.WithFields(logger.Fields{
		"done":  status.Done,
		"total": status.Total,
		"item":  status.CurrentItem,
	}).Trace("Updating progress")

	p.status = status
	// The first data point supersedes the start banner.
	p.message = ""

	if p.active {
		p.render()
	}
}

func (p *tracker) Complete(message string) {
	p.finish(message)
}

func (p *tracker) Fail(message string) {
	if !p.config.NoColor {
		message = fmt.Sprintf("\033[31m%s\033[0m", message)
	}
	p.finish(message)
}

func (p *tracker) Stop() {
	p.stopLoop()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Debug("Stopping progress display")

	if !p.active {
		return
	}
	p.active = false
	p.clearLine()
}

func (p *tracker) IsSupportedTerminal() bool {
	if f, ok := p.writer.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Internal methods

// finish renders a last frame with the final message and releases the
// render loop. The line stays visible unless HideAfterComplete is set.
func (p *tracker) finish(message string) {
	p.stopLoop()

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return
	}
	p.active = false

	p.message = message
	p.render()

	if p.config.HideAfterComplete {
		p.clearLine()
		return
	}
	fmt.Fprintln(p.writer)
}

// stopLoop releases the render goroutine. Safe to call more than once
// and before Start.
func (p *tracker) stopLoop() {
	p.mu.Lock()
	started := p.loop
	p.mu.Unlock()

	p.stopOnce.Do(func() {
		close(p.stopChan)
	})

	if started {
		<-p.doneChan
	}
}

func (p *tracker) renderLoop() {
	ticker := time.NewTicker(p.refreshRate)
	defer ticker.Stop()
	defer close(p.doneChan)

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.active {
				p.render()
			}
			p.mu.Unlock()
		}
	}
}

func (p *tracker) render() {
	output := p.renderer.render(p.status, p.message, p.calculateStats())
	p.clearLine()
	fmt.Fprint(p.writer, output)
}

func (p *tracker) clearLine() {
	if p.IsSupportedTerminal() {
		fmt.Fprint(p.writer, "\r\033[K")
	} else {
		fmt.Fprint(p.writer, "\r")
	}
}

func (p *tracker) terminalWidth() int {
	if p.IsSupportedTerminal() {
		if w, _, err := term.GetSize(int(os.Stderr.Fd())); err == nil {
			return w
		}
	}

	return 80
}

func (p *tracker) calculateStats() Statistics {
	elapsed := time.Since(p.startTime)

	var stats Statistics
	stats.Elapsed = elapsed

	if p.status.Total > 0 {
		stats.Percent = float64(p.status.Done) / float64(p.status.Total) * 100
	}
	if stats.Percent > 100 {
		stats.Percent = 100
	}

	if p.status.Done > 0 && elapsed > 0 {
		stats.Rate = float64(p.status.Done) / elapsed.Seconds()
	}

	return stats
}

func (p *tracker) createRenderer() renderer {
	switch p.config.Style {
	case StyleBar:
		return &barRenderer{
			width:     p.width,
			noColor:   p.config.NoColor,
			showStats: p.config.ShowStats,
		}
	default:
		return &simpleRenderer{
			noColor:   p.config.NoColor,
			showStats: p.config.ShowStats,
		}
	}
}
