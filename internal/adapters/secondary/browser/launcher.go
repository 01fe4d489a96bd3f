// Package browser opens the preview page in a local web browser.
package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// Launcher implements the BrowserLauncher interface
type Launcher struct {
	browsers  []Browser
	preferred string
	lookPath  func(string) (string, error)
	logger    *slog.Logger
}

// Browser is a command able to open a URL
type Browser struct {
	Name    string
	Command string
	Args    func(url string) []string
}

// NewLauncher creates a launcher for the current platform. preferred names a
// browser such as "firefox"; "" or "default" uses the system handler.
func NewLauncher(preferred string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		browsers:  platformBrowsers(runtime.GOOS),
		preferred: preferred,
		lookPath:  exec.LookPath,
		logger:    logger,
	}
}

// Launch opens url unless noOpen is set. The browser process is not waited for.
func (l *Launcher) Launch(url string, noOpen bool) error {
	if noOpen {
		return nil
	}

	browser, err := l.selectBrowser()
	if err != nil {
		return fmt.Errorf("browser selection: %w", err)
	}

	cmd := exec.Command(browser.Command, browser.Args(url)...) // #nosec G204 - command comes from the fixed platform list
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching %s: %w", browser.Name, err)
	}
	l.logger.Debug("browser launched", slog.String("browser", browser.Name), slog.String("url", url))

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

// Detect returns the name of the browser Launch would use
func (l *Launcher) Detect() (string, error) {
	browser, err := l.selectBrowser()
	if err != nil {
		return "", err
	}
	return browser.Name, nil
}

// selectBrowser returns the preferred browser when it is installed, and
// otherwise the first installed one
func (l *Launcher) selectBrowser() (*Browser, error) {
	if len(l.browsers) == 0 {
		return nil, errors.New("no browsers detected for " + runtime.GOOS)
	}

	var fallback *Browser
	for i := range l.browsers {
		candidate := &l.browsers[i]
		if _, err := l.lookPath(candidate.Command); err != nil {
			continue
		}
		if l.wants(candidate.Name) {
			return candidate, nil
		}
		if fallback == nil {
			fallback = candidate
		}
	}
	if fallback == nil {
		return nil, errors.New("no supported browsers found on this system")
	}
	if l.preferred != "" && !strings.EqualFold(l.preferred, "default") {
		l.logger.Warn("preferred browser not found",
			slog.String("browser", l.preferred),
			slog.String("using", fallback.Name))
	}
	return fallback, nil
}

func (l *Launcher) wants(name string) bool {
	if l.preferred == "" || strings.EqualFold(l.preferred, "default") {
		return false
	}
	return strings.EqualFold(l.preferred, name)
}

func urlOnly(url string) []string { return []string{url} }

// platformBrowsers lists the launch commands for goos, system handler first
func platformBrowsers(goos string) []Browser {
	switch goos {
	case "darwin":
		app := func(name string) func(string) []string {
			return func(url string) []string { return []string{"-a", name, url} }
		}
		return []Browser{
			{Name: "Default", Command: "open", Args: urlOnly},
			{Name: "Chrome", Command: "open", Args: app("Google Chrome")},
			{Name: "Safari", Command: "open", Args: app("Safari")},
			{Name: "Firefox", Command: "open", Args: app("Firefox")},
		}
	case "linux", "freebsd", "openbsd":
		return []Browser{
			{Name: "Default", Command: "xdg-open", Args: urlOnly},
			{Name: "Chrome", Command: "google-chrome", Args: urlOnly},
			{Name: "Chromium", Command: "chromium", Args: urlOnly},
			{Name: "Firefox", Command: "firefox", Args: urlOnly},
		}
	case "windows":
		start := func(target string) func(string) []string {
			return func(url string) []string {
				if target == "" {
					return []string{"/c", "start", "", url}
				}
				return []string{"/c", "start", target, url}
			}
		}
		return []Browser{
			{Name: "Default", Command: "cmd", Args: start("")},
			{Name: "Chrome", Command: "cmd", Args: start("chrome")},
			{Name: "Edge", Command: "cmd", Args: start("msedge")},
		}
	default:
		return nil
	}
}

var _ ports.BrowserLauncher = (*Launcher)(nil)
