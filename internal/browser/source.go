// Package browser attaches to the user's already-running browser over the
// DevTools protocol and exposes the active tab as a watch.DocumentSource.
// The page is only ever read; navigation and fetching stay with the user.
package browser

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// snapshotTimeout caps a single read from the tab.
const snapshotTimeout = 5 * time.Second

// Source is a live-tab document source.
type Source struct {
	tabCtx      context.Context
	allocCancel context.CancelFunc
	tabCancel   context.CancelFunc
	changes     chan struct{}
	verbose     bool
}

// Attach connects to the browser's remote debugging endpoint and binds to the
// active tab. Requires the browser to have been started with
// --remote-debugging-port.
func Attach(ctx context.Context, devtoolsURL string, verbose bool) (*Source, error) {
	if verbose {
		log.Printf("[browser] attaching to %s", devtoolsURL)
	}

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, devtoolsURL)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	source := &Source{
		tabCtx:      tabCtx,
		allocCancel: allocCancel,
		tabCancel:   tabCancel,
		changes:     make(chan struct{}, 16),
		verbose:     verbose,
	}

	// Route/content change events become change notifications. The channel
	// is buffered and sends are non-blocking: the watcher coalesces bursts
	// anyway, so dropped notifications during a burst are harmless.
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		switch ev.(type) {
		case *page.EventFrameNavigated,
			*page.EventNavigatedWithinDocument,
			*page.EventLifecycleEvent,
			*dom.EventDocumentUpdated:
			select {
			case source.changes <- struct{}{}:
			default:
			}
		}
	})

	// Establish the connection and enable the event domains.
	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := dom.Enable().Do(ctx); err != nil {
			return err
		}
		if err := page.Enable().Do(ctx); err != nil {
			return err
		}
		return page.SetLifecycleEventsEnabled(true).Do(ctx)
	}))
	if err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to attach to browser: %w", err)
	}

	return source, nil
}

// Location returns the tab's current URL.
func (s *Source) Location() (string, error) {
	ctx, cancel := context.WithTimeout(s.tabCtx, snapshotTimeout)
	defer cancel()

	var location string
	if err := chromedp.Run(ctx, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return location, nil
}

// HTML snapshots the rendered content tree.
func (s *Source) HTML() (string, error) {
	ctx, cancel := context.WithTimeout(s.tabCtx, snapshotTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("failed to snapshot document: %w", err)
	}
	return html, nil
}

// Changes delivers content-change notifications from the tab.
func (s *Source) Changes() <-chan struct{} {
	return s.changes
}

// Notify renders a transient toast into the page acknowledging a capture.
// Failures are logged, never propagated: the notification is best-effort.
func (s *Source) Notify(message string) error {
	ctx, cancel := context.WithTimeout(s.tabCtx, snapshotTimeout)
	defer cancel()

	script := fmt.Sprintf(toastScript, jsString(message))
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, nil)); err != nil {
		if s.verbose {
			log.Printf("[browser] toast failed: %v", err)
		}
		return fmt.Errorf("failed to render notification: %w", err)
	}
	return nil
}

// Close detaches from the browser without closing the user's tab.
func (s *Source) Close() error {
	s.tabCancel()
	s.allocCancel()
	return nil
}

// toastScript injects a small fixed-position element that removes itself.
const toastScript = `(() => {
	const el = document.createElement('div');
	el.textContent = %s;
	el.style.cssText = 'position:fixed;top:16px;right:16px;z-index:2147483647;' +
		'background:#1a7f37;color:#fff;padding:10px 16px;border-radius:6px;' +
		'font:14px sans-serif;box-shadow:0 2px 8px rgba(0,0,0,.3);';
	document.body.appendChild(el);
	setTimeout(() => el.remove(), 3000);
})()`

// jsString quotes a Go string as a JavaScript string literal.
func jsString(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + replacer.Replace(s) + "'"
}
