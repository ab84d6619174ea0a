package seriesview

import "github.com/labworks/seriesdesk/pkg/series"

// Phase is where the current fetch cycle stands.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// ViewState is a snapshot of everything the render layer needs. Snapshots are
// never mutated after they are handed out; Items and Response are replaced
// wholesale rather than edited.
type ViewState struct {
	CurrentPage   int
	CurrentOffset int
	SearchText    string
	Items         []series.Item
	Response      *series.ListResponse
	PageCount     int
	Phase         Phase
	IsLoading     bool
	HasError      bool
	// Version increases with every state change, so listeners receiving
	// snapshots from several goroutines can discard older ones.
	Version uint64
}

// NoResults reports whether the last stored response came back empty.
func (s ViewState) NoResults() bool {
	return s.Response != nil && len(s.Response.Results) == 0
}

// Query is the effective list query for this state.
func (s ViewState) Query() series.ListQuery {
	return series.ListQuery{Offset: s.CurrentOffset, SearchText: s.SearchText}
}
