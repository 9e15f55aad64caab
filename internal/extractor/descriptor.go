package extractor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// ReturnType declares what a descriptor's handler yields.
type ReturnType string

const (
	ReturnVideo    ReturnType = "video"
	ReturnPlaylist ReturnType = "playlist"
	ReturnAny      ReturnType = "any"
)

// Markers used by the collection-context overrides.
const (
	CollectionMarker = "list="
	ItemMarker       = "watch?v="
)

// OverrideKind tags an Override strategy.
type OverrideKind int

const (
	// OverrideDefault applies the pattern set unchanged.
	OverrideDefault OverrideKind = iota
	// OverridePreferIfCollectionContext refuses inputs that carry the
	// collection marker without the item marker.
	OverridePreferIfCollectionContext
	// OverrideRejectIfItemInCollectionContext refuses inputs carrying both markers.
	OverrideRejectIfItemInCollectionContext
	// OverrideDeferTo refuses any input the Target descriptor accepts.
	OverrideDeferTo
)

func (k OverrideKind) String() string {
	switch k {
	case OverridePreferIfCollectionContext:
		return "PreferIfCollectionContext"
	case OverrideRejectIfItemInCollectionContext:
		return "RejectIfItemInCollectionContext"
	case OverrideDeferTo:
		return "DeferTo"
	default:
		return "Default"
	}
}

// Override is the per-descriptor suitability strategy. Overrides only ever
// narrow the base pattern rule; none of them accepts input its own patterns
// reject.
type Override struct {
	Kind   OverrideKind
	Target string // descriptor key, OverrideDeferTo only
}

// PreferIfCollectionContext returns the override used by single-item
// descriptors that overlap a collection descriptor.
func PreferIfCollectionContext() Override {
	return Override{Kind: OverridePreferIfCollectionContext}
}

// RejectIfItemInCollectionContext returns the override used by collection
// descriptors that overlap a single-item descriptor.
func RejectIfItemInCollectionContext() Override {
	return Override{Kind: OverrideRejectIfItemInCollectionContext}
}

// DeferTo returns an override that yields to the descriptor with the given key.
func DeferTo(key string) Override {
	return Override{Kind: OverrideDeferTo, Target: key}
}

// Descriptor is one candidate handler. Values are immutable once registered.
type Descriptor struct {
	Key          string // stable identifier, e.g. "YoutubePlaylist"
	Name         string // display name, e.g. "youtube:playlist"
	Description  string
	SearchKey    string // e.g. "ytsearch" for "ytsearch:" prefixed queries
	Patterns     []string
	Disabled     bool // never matches, regardless of Patterns
	Returns      ReturnType
	Override     Override
	Fallback     bool
	Hidden       bool // not listed to users
	Broken       bool // known not to work
	AgeLimit     int
	NetrcMachine string

	compiled []*regexp2.Regexp
}

func (d *Descriptor) compile(timeout time.Duration) error {
	d.compiled = make([]*regexp2.Regexp, 0, len(d.Patterns))
	for _, p := range d.Patterns {
		re, err := regexp2.Compile(`\A(?:`+p+`)`, regexp2.None)
		if err != nil {
			return fmt.Errorf("descriptor %s: compile %q: %w", d.Key, p, err)
		}
		re.MatchTimeout = timeout
		d.compiled = append(d.compiled, re)
	}
	return nil
}

// matchBase applies the pattern set alone. A match that times out counts as
// no match.
func (d *Descriptor) matchBase(input string) bool {
	return d.firstMatch(input) != nil
}

func (d *Descriptor) firstMatch(input string) *regexp2.Match {
	if d.Disabled {
		return nil
	}
	for _, re := range d.compiled {
		m, err := re.FindStringMatch(input)
		if err == nil && m != nil {
			return m
		}
	}
	return nil
}

// Groups returns the named groups captured by the first matching pattern,
// or nil when no pattern matches.
func (d *Descriptor) Groups(input string) map[string]string {
	m := d.firstMatch(input)
	if m == nil {
		return nil
	}
	groups := make(map[string]string)
	for _, g := range m.Groups() {
		if g.Name == "" || len(g.Captures) == 0 {
			continue
		}
		if _, err := strconv.Atoi(g.Name); err == nil {
			continue // unnamed group
		}
		groups[g.Name] = g.String()
	}
	return groups
}

// MatchID returns the "id" group of the first matching pattern, or "".
func (d *Descriptor) MatchID(input string) string {
	return d.Groups(input)["id"]
}

// IsSingleVideo reports whether the handler yields a single item. known is
// false for descriptors returning either shape.
func (d *Descriptor) IsSingleVideo() (single bool, known bool) {
	switch d.Returns {
	case ReturnVideo:
		return true, true
	case ReturnPlaylist:
		return false, true
	default:
		return false, false
	}
}

// Collection reports whether the handler may yield more than one item.
func (d *Descriptor) Collection() bool {
	single, known := d.IsSingleVideo()
	return !(known && single)
}

// SupportsLogin reports whether the descriptor reads .netrc credentials.
func (d *Descriptor) SupportsLogin() bool {
	return d.NetrcMachine != ""
}

// DescriptionText renders the one-line listing used by the extractors command.
func (d *Descriptor) DescriptionText(markdown bool) string {
	var b strings.Builder
	if d.NetrcMachine != "" {
		if markdown {
			fmt.Fprintf(&b, " [*%s*]", d.NetrcMachine)
		} else {
			fmt.Fprintf(&b, " [%s]", d.NetrcMachine)
		}
	}
	if d.Hidden {
		b.WriteString(" [HIDDEN]")
	} else if d.Description != "" {
		b.WriteString(" " + d.Description)
	}
	if d.SearchKey != "" {
		if d.Description != "" && !d.Hidden {
			b.WriteString(";")
		}
		fmt.Fprintf(&b, " %q prefix", d.SearchKey+":")
	}
	if d.Broken {
		if markdown {
			b.WriteString(" (**Currently broken**)")
		} else {
			b.WriteString(" (Currently broken)")
		}
	}

	name := d.Name
	if name == "" {
		name = d.Key
	}
	if markdown {
		name = " - **" + name + "**"
	}
	if b.Len() == 0 {
		return name
	}
	return name + ":" + b.String()
}
