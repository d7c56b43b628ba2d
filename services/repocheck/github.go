package repocheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Checker performs a best-effort reachability check on a submitted
// repository URL: fetch the page and confirm it renders as a repository
// rather than a 404. Submission never fails on network errors; the check is
// advisory and disabled by default.
type Checker struct {
	httpClient *http.Client
	enabled    bool
}

// Config holds checker configuration
type Config struct {
	Enabled bool
	Timeout time.Duration
}

// NewChecker creates a repository checker
func NewChecker(config Config) *Checker {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	return &Checker{
		httpClient: &http.Client{Timeout: config.Timeout},
		enabled:    config.Enabled,
	}
}

// Result of a reachability check
type Result struct {
	Checked   bool   `json:"checked"`
	Reachable bool   `json:"reachable"`
	Title     string `json:"title,omitempty"`
}

// Check fetches the repository URL and extracts the page title. A non-200
// status marks the repo unreachable; transport errors leave it unchecked.
func (c *Checker) Check(ctx context.Context, repoURL string) Result {
	if !c.enabled {
		return Result{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, repoURL, nil)
	if err != nil {
		return Result{}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; edusphere-bot/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Checked: true, Reachable: false}
	}

	title := extractTitle(resp.Body)
	return Result{Checked: true, Reachable: true, Title: title}
}

// extractTitle walks the HTML tree for the first <title> element
func extractTitle(r io.Reader) string {
	doc, err := html.Parse(r)
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if len(title) > 200 {
		title = title[:200]
	}
	return title
}

// String implements fmt.Stringer for log lines
func (r Result) String() string {
	if !r.Checked {
		return "repo check skipped"
	}
	return fmt.Sprintf("repo reachable=%t title=%q", r.Reachable, r.Title)
}
