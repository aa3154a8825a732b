package finder

import (
	"fmt"

	"github.com/seanblong/repofinder/pkg/models"
)

// User-facing texts.
const (
	LoadingText  = "Loading..."
	ErrorText    = "Error fetching repositories"
	EmptyText    = "No repositories found"
	FetchLabel   = "Fetch Repository"
	RefreshLabel = "Refresh"
)

// Kind tags the variant held by a ViewState.
type Kind int

const (
	KindIdle Kind = iota
	KindLoading
	KindError
	KindEmpty
	KindFound
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindLoading:
		return "loading"
	case KindError:
		return "error"
	case KindEmpty:
		return "empty"
	case KindFound:
		return "found"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ViewState is what the finder currently displays. Build one with Idle, Loading,
// Failed, Empty or Found; Message is set only for KindError and Repository only for
// KindFound.
type ViewState struct {
	Kind       Kind
	Message    string
	Repository *models.Repository
}

func Idle() ViewState    { return ViewState{Kind: KindIdle} }
func Loading() ViewState { return ViewState{Kind: KindLoading} }
func Empty() ViewState   { return ViewState{Kind: KindEmpty} }

func Failed(msg string) ViewState {
	return ViewState{Kind: KindError, Message: msg}
}

// Found copies repo so later mutation of the search result cannot leak into the view.
func Found(repo models.Repository) ViewState {
	return ViewState{Kind: KindFound, Repository: &repo}
}

// Text is the single line shown for the non-result states.
func (v ViewState) Text() string {
	switch v.Kind {
	case KindLoading:
		return LoadingText
	case KindError:
		return v.Message
	case KindEmpty:
		return EmptyText
	default:
		return ""
	}
}

// Badges returns the three statistic labels of a found repository.
func Badges(r models.Repository) []string {
	return []string{
		fmt.Sprintf("⭐ Stars: %d", r.Stars),
		fmt.Sprintf("🍴 Forks: %d", r.Forks),
		fmt.Sprintf("🔓 Open Issues: %d", r.OpenIssues),
	}
}
