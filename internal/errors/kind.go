package errors

// Kind classifies a failure for reporting.
type Kind string

const (
	KindNone         Kind = ""
	KindInvalidInput Kind = "InvalidInput"
	KindBusy         Kind = "Busy"
	KindCancelled    Kind = "Cancelled"
	KindToolMissing  Kind = "ToolMissing"
	KindTransfer     Kind = "TransferError"
	KindUnclassified Kind = "UnclassifiedError"
)

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// KindOf maps err onto the taxonomy. A nil error has KindNone; anything not
// marked with a sentinel is KindUnclassified.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case Is(err, ErrCancelled):
		return KindCancelled
	case Is(err, ErrInvalidInput):
		return KindInvalidInput
	case Is(err, ErrBusy):
		return KindBusy
	case Is(err, ErrToolMissing):
		return KindToolMissing
	case Is(err, ErrTransfer):
		return KindTransfer
	default:
		return KindUnclassified
	}
}

// Hint returns the flattened user hints attached to err, or "".
func Hint(err error) string {
	if err == nil {
		return ""
	}
	return FlattenHints(err)
}
