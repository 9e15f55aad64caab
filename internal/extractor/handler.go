package extractor

import "context"

// Entry is one transferable item produced by a Handler.
type Entry struct {
	URL   string
	ID    string
	Title string
}

// Handler turns a resolved input into the entries a job transfers.
type Handler interface {
	Entries(ctx context.Context, input string, d *Descriptor) ([]Entry, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, input string, d *Descriptor) ([]Entry, error)

// Entries calls f.
func (f HandlerFunc) Entries(ctx context.Context, input string, d *Descriptor) ([]Entry, error) {
	return f(ctx, input, d)
}

// SingleEntry is the default handler: the input itself is the only entry.
var SingleEntry Handler = HandlerFunc(func(_ context.Context, input string, d *Descriptor) ([]Entry, error) {
	return []Entry{{URL: input, ID: d.MatchID(input)}}, nil
})
