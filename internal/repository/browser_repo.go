package repository

import (
	"context"

	"github.com/user/linkedin-connector/internal/entity"
)

// ScrollOptions bounds the scroll-to-bottom wait used to materialize lazy content.
type ScrollOptions struct {
	StepPx     int
	IntervalMS int
	MaxSteps   int
}

// Page defines the browser primitives the connector drives. Every blocking
// method honours the deadline of the passed context.
type Page interface {
	// Navigate opens a URL and waits for the DOM to be ready.
	Navigate(ctx context.Context, url string) error
	// Title returns the current document title.
	Title(ctx context.Context) (string, error)
	// SetViewport resizes the emulated window.
	SetViewport(ctx context.Context, width, height int64) error
	// Type waits for the selector and types text into it, one key at a time.
	Type(ctx context.Context, selector, text string) error
	// WaitVisible waits until the selector matches a visible element.
	WaitVisible(ctx context.Context, selector string) error
	// Click waits for the selector and clicks it.
	Click(ctx context.Context, selector string) error
	// ClickAndWaitNavigation clicks the selector and waits for the resulting navigation.
	ClickAndWaitNavigation(ctx context.Context, selector string) error
	// ScrollToBottom scrolls in fixed steps until the scroll offset reaches the
	// document height or MaxSteps is exhausted. It returns the steps taken.
	ScrollToBottom(ctx context.Context, opts ScrollOptions) (int, error)
	// Cards enumerates the elements matching selector, in document order.
	Cards(ctx context.Context, selector string) ([]Card, error)
	// Cookies reads the cookies of the current browser context.
	Cookies(ctx context.Context) (entity.Session, error)
	// SetCookies applies cookies to the browser context.
	SetCookies(ctx context.Context, session entity.Session) error
}

// Card is a handle to one result entry, scoping queries to its subtree.
type Card interface {
	// HTML returns the outer HTML of the card.
	HTML(ctx context.Context) (string, error)
	// ControlLabel waits for a control inside the card and returns its trimmed text.
	ControlLabel(ctx context.Context, selector string) (string, error)
	// ClickControl clicks a control inside the card.
	ClickControl(ctx context.Context, selector string) error
}
