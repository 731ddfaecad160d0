package domain

// EntryPoint identifies a top-level flow a conversation can start from.
type EntryPoint int

const (
	EntryUnknown EntryPoint = iota
	EntryService
	EntryProfile
	EntryPoll
	EntryFeedback
	// EntryMenu is the top-level menu. It owns no dialog.
	EntryMenu
)

var entryTokens = map[EntryPoint]string{
	EntryService:  "service",
	EntryProfile:  "profile",
	EntryPoll:     "poll",
	EntryFeedback: "feedback",
	EntryMenu:     "menu",
}

// DialogEntryPoints lists the entry points that are backed by a dialog.
var DialogEntryPoints = []EntryPoint{EntryService, EntryProfile, EntryPoll, EntryFeedback}

// Token is the stable identifier used in traces, callback payloads and file names.
func (e EntryPoint) Token() string {
	return entryTokens[e]
}

func (e EntryPoint) String() string {
	if t, ok := entryTokens[e]; ok {
		return t
	}
	return "unknown"
}

// HasDialog reports whether the entry point starts a dialog flow.
func (e EntryPoint) HasDialog() bool {
	switch e {
	case EntryService, EntryProfile, EntryPoll, EntryFeedback:
		return true
	}
	return false
}

// ParseEntryPoint resolves a token produced by EntryPoint.Token.
func ParseEntryPoint(token string) (EntryPoint, bool) {
	for e, t := range entryTokens {
		if t == token {
			return e, true
		}
	}
	return EntryUnknown, false
}
