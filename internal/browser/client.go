package browser

import "context"

// Launcher starts browser sessions.
type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (Session, error)
}

// Session is a live browser owned by whoever launched it.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Info(ctx context.Context) (*PageResult, error)
	Anchors(ctx context.Context, selector string) ([]Anchor, error)
	Descriptor(ctx context.Context) (*ConnectionDescriptor, error)
	BinaryPath() string
	Close() error
}

// Anchor is a link element found on the current page.
type Anchor interface {
	Href() (string, error)
	Text() (string, error)
}

// PageResult represents the state of the current page
type PageResult struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	HTML  string `json:"html,omitempty"`
}
