package store

// CursorStack tracks the continuation tokens a client has paged through,
// enabling "previous page" over a backend that is strictly forward-only.
//
// The stack holds the token used to fetch each visited page, starting with
// the empty token of the first page. Going back pops the current page's
// token and re-fetches with the one below it, so the backend is never
// called with a token it did not itself issue.
//
// CursorStack is a client-side helper; the gateway itself stays stateless.
type CursorStack struct {
	tokens []string
}

// NewCursorStack returns a stack positioned on the first page.
func NewCursorStack() *CursorStack {
	return &CursorStack{tokens: []string{""}}
}

// Current returns the token that fetches the current page.
func (c *CursorStack) Current() string {
	return c.tokens[len(c.tokens)-1]
}

// Advance records next as the token for the following page and moves onto
// it. Advancing with an empty token is a no-op: the listing is exhausted.
func (c *CursorStack) Advance(next string) bool {
	if next == "" {
		return false
	}
	c.tokens = append(c.tokens, next)
	return true
}

// Back moves to the previous page's token. Returns false when already on
// the first page.
func (c *CursorStack) Back() bool {
	if len(c.tokens) <= 1 {
		return false
	}
	c.tokens = c.tokens[:len(c.tokens)-1]
	return true
}

// Depth returns the 1-based page number of the current position.
func (c *CursorStack) Depth() int {
	return len(c.tokens)
}
