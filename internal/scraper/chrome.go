package scraper

import (
	"os/exec"
	"path/filepath"

	"github.com/jmylchreest/tagscrape/internal/logger"
)

// Common Chrome/Chromium binary names across different systems
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
	// macOS paths
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	// Common Linux paths
	"/usr/bin/google-chrome-stable",
	"/usr/bin/google-chrome",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/snap/bin/chromium",
	"/headless-shell/headless-shell",
	// Windows paths
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// FindChromePath searches PATH and common install locations for a
// Chrome/Chromium binary. It returns "" when none is found, in which case
// chromedp falls back to its own lookup.
func FindChromePath() string {
	return findBinary(chromeBinaryNames)
}

func findBinary(names []string) string {
	for _, name := range names {
		path, err := lookPath(name)
		if err != nil {
			continue
		}
		if !filepath.IsAbs(path) {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
		}
		logger.Debug("found Chrome binary", "name", name, "path", path)
		return path
	}
	logger.Debug("no Chrome binary found in known locations")
	return ""
}
