package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fallback() Descriptor {
	return Descriptor{Key: "Generic", Patterns: []string{`.*`}, Fallback: true}
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name  string
		descs []Descriptor
		opts  []Option
		err   string
	}{
		{
			name:  "no fallback",
			descs: []Descriptor{{Key: "A", Patterns: []string{`a`}}},
			err:   "no fallback",
		},
		{
			name:  "two fallbacks",
			descs: []Descriptor{fallback(), {Key: "Other", Patterns: []string{`.*`}, Fallback: true}},
			err:   "second fallback",
		},
		{
			name:  "empty key",
			descs: []Descriptor{{Patterns: []string{`a`}}, fallback()},
			err:   "empty key",
		},
		{
			name:  "duplicate key",
			descs: []Descriptor{{Key: "A", Patterns: []string{`a`}}, {Key: "A", Patterns: []string{`b`}}, fallback()},
			err:   "duplicate key",
		},
		{
			name:  "no patterns",
			descs: []Descriptor{{Key: "A"}, fallback()},
			err:   "no patterns",
		},
		{
			name:  "bad pattern",
			descs: []Descriptor{{Key: "A", Patterns: []string{`(unclosed`}}, fallback()},
			err:   "compile",
		},
		{
			name:  "unknown defer target",
			descs: []Descriptor{{Key: "A", Patterns: []string{`a`}, Override: DeferTo("Nope")}, fallback()},
			err:   "unknown descriptor",
		},
		{
			name: "defer cycle",
			descs: []Descriptor{
				{Key: "A", Patterns: []string{`a`}, Override: DeferTo("B")},
				{Key: "B", Patterns: []string{`b`}, Override: DeferTo("A")},
				fallback(),
			},
			err: "cycle",
		},
		{
			name:  "handler for unknown key",
			descs: []Descriptor{fallback()},
			opts:  []Option{WithHandler("Missing", SingleEntry)},
			err:   "unknown descriptor Missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.descs, tt.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestRegistry_FallbackTriedLast(t *testing.T) {
	r, err := NewRegistry([]Descriptor{
		fallback(),
		{Key: "Search", Patterns: []string{`ytsearch(?<prefix>|[1-9][0-9]*|all):(?<query>[\s\S]+)`}, Returns: ReturnPlaylist},
	})
	require.NoError(t, err)

	assert.Equal(t, "Search", r.Resolve("ytsearch:cats").Key)
	assert.Equal(t, "Generic", r.Resolve("cats").Key)

	all := r.Descriptors()
	require.Len(t, all, 2)
	assert.Equal(t, "Generic", all[1].Key)
}

func TestRegistry_ResolveIsTotal(t *testing.T) {
	r := MustNewRegistry([]Descriptor{
		{Key: "Example", Patterns: []string{`https://example\.com/(?<id>\d+)$`}},
		fallback(),
	})

	inputs := []string{"", " ", "::::", "http://", "%zz", "https://example.com/abc", "\x00\xff", "😀"}
	for _, in := range inputs {
		d := r.Resolve(in)
		require.NotNil(t, d, "input %q", in)
		assert.True(t, d.Fallback, "input %q", in)
	}
	assert.Equal(t, "Example", r.Resolve("https://example.com/42").Key)
}

func TestRegistry_DisabledNeverMatches(t *testing.T) {
	r := MustNewRegistry([]Descriptor{
		{Key: "Off", Patterns: []string{`.*`}, Disabled: true},
		{Key: "NoPatterns", Disabled: true},
		fallback(),
	})

	assert.Equal(t, "Generic", r.Resolve("anything").Key)
	assert.False(t, r.Suitable("Off", "anything"))
	assert.False(t, r.Suitable("NoPatterns", "anything"))
}

func TestRegistry_AnchoredAtStart(t *testing.T) {
	r := MustNewRegistry([]Descriptor{
		{Key: "User", Patterns: []string{`ytuser:(?<id>.+)`}},
		fallback(),
	})

	assert.Equal(t, "User", r.Resolve("ytuser:someone").Key)
	assert.Equal(t, "Generic", r.Resolve("see ytuser:someone").Key)
}

func TestRegistry_FirstMatchWins(t *testing.T) {
	r := MustNewRegistry([]Descriptor{
		{Key: "Specific", Patterns: []string{`https://example\.com/clip/`}},
		{Key: "General", Patterns: []string{`https://example\.com/`}},
		fallback(),
	})

	assert.Equal(t, "Specific", r.Resolve("https://example.com/clip/1").Key)
	assert.Equal(t, "General", r.Resolve("https://example.com/watch/1").Key)
}

// Both descriptors share a base pattern; the overrides alone decide.
func overlapping(itemFirst bool) []Descriptor {
	item := Descriptor{
		Key:      "Item",
		Patterns: []string{`https://media\.example/`},
		Returns:  ReturnVideo,
		Override: PreferIfCollectionContext(),
	}
	collection := Descriptor{
		Key:      "Collection",
		Patterns: []string{`https://media\.example/`},
		Returns:  ReturnPlaylist,
		Override: RejectIfItemInCollectionContext(),
	}
	if itemFirst {
		return []Descriptor{item, collection, fallback()}
	}
	return []Descriptor{collection, item, fallback()}
}

func TestRegistry_OverridesDisambiguate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://media.example/watch?v=abc&list=xyz", "Item"},
		{"https://media.example/playlist?list=xyz", "Collection"},
		{"https://media.example/watch?v=abc", ""}, // no markers: order decides
	}

	for _, itemFirst := range []bool{true, false} {
		r := MustNewRegistry(overlapping(itemFirst))
		for _, tt := range tests {
			want := tt.want
			if want == "" {
				want = map[bool]string{true: "Item", false: "Collection"}[itemFirst]
			}
			for i := 0; i < 3; i++ {
				assert.Equal(t, want, r.Resolve(tt.input).Key, "itemFirst=%v input=%s", itemFirst, tt.input)
			}
		}
	}
}

func TestRegistry_PreferOverrideNeverWidens(t *testing.T) {
	r := MustNewRegistry([]Descriptor{
		{Key: "Item", Patterns: []string{`https://media\.example/watch`}, Override: PreferIfCollectionContext()},
		fallback(),
	})

	// both markers, but the item pattern itself does not match
	assert.Equal(t, "Generic", r.Resolve("https://other.example/watch?v=abc&list=xyz").Key)
}

func TestRegistry_DeferTo(t *testing.T) {
	r := MustNewRegistry([]Descriptor{
		{Key: "Tab", Patterns: []string{`https://media\.example/`}, Override: DeferTo("Video")},
		{Key: "Video", Patterns: []string{`https://media\.example/v/`}},
		fallback(),
	})

	assert.Equal(t, "Video", r.Resolve("https://media.example/v/123").Key)
	assert.Equal(t, "Tab", r.Resolve("https://media.example/channel/abc").Key)
	assert.True(t, r.Suitable("Generic", "whatever"))
	assert.False(t, r.Suitable("Unknown", "whatever"))
}

func TestRegistry_Handlers(t *testing.T) {
	expander := HandlerFunc(func(_ context.Context, input string, _ *Descriptor) ([]Entry, error) {
		return []Entry{{URL: input + "#1"}, {URL: input + "#2"}}, nil
	})

	r := MustNewRegistry([]Descriptor{
		{Key: "List", Patterns: []string{`list:(?<id>\w+)`}},
		fallback(),
	}, WithHandler("List", expander))

	d := r.Resolve("list:abc")
	entries, err := r.Handler(d).Entries(context.Background(), "list:abc", d)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	g := r.Resolve("single")
	entries, err = r.Handler(g).Entries(context.Background(), "single", g)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{URL: "single"}}, entries)
}

func TestRegistry_CopiesInput(t *testing.T) {
	descs := []Descriptor{{Key: "A", Patterns: []string{`a`}}, fallback()}
	r := MustNewRegistry(descs)

	descs[0].Patterns[0] = `b`
	descs[0].Key = "Changed"

	d, ok := r.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, []string{`a`}, d.Patterns)
	assert.Equal(t, "A", r.Resolve("a").Key)
}
