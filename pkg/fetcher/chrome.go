package fetcher

import (
	"os/exec"

	"github.com/jmylchreest/frogfind/internal/logger"
)

// Chrome/Chromium binary names and locations, most specific last.
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"/usr/bin/chromium",
	"/snap/bin/chromium",
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
}

// FindChromePath returns the first browser binary found on PATH or at a
// well-known location, or "" to let chromedp use its own lookup.
func FindChromePath() string {
	return findBinary(chromeBinaryNames, exec.LookPath)
}

func findBinary(names []string, lookPath func(string) (string, error)) string {
	for _, name := range names {
		if path, err := lookPath(name); err == nil {
			logger.Debug("found browser binary", "name", name, "path", path)
			return path
		}
	}
	logger.Warn("no Chrome binary found, dynamic fetch mode may not work")
	return ""
}
