package entities

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Common errors
var (
	ErrDateIdeaNotFound = errors.New("date idea not found")
	ErrNoSelection      = errors.New("no date ideas selected")
	ErrInvalidPasscode  = errors.New("invalid passcode")
	ErrInvalidSession   = errors.New("invalid session")
	ErrObjectNotFound   = errors.New("object not found")
)

// DefaultTitle is given to newly created date ideas
const DefaultTitle = "New Date"

// DateIdea represents one planned activity
type DateIdea struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Logbook     string `json:"logbook,omitempty"`
	Photo       string `json:"photo,omitempty"`
}

// HasPhoto reports whether a photo has been uploaded for the idea
func (d *DateIdea) HasPhoto() bool {
	return d.Photo != ""
}

// Catalog maps date idea ids to date ideas. It is the shape of the stored JSON document.
type Catalog map[string]*DateIdea

// NextID returns one past the largest numeric id. Non-numeric ids, and ids
// with no successor, are ignored.
func (c Catalog) NextID() string {
	highest := 0
	for id := range c {
		n, err := strconv.Atoi(id)
		if err != nil || n == math.MaxInt {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1)
}

// SortedIDs returns numeric ids ascending, followed by any non-numeric ids in lexical order.
func (c Catalog) SortedIDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})

	return ids
}

// Clone returns a deep copy of the catalog
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for id, idea := range c {
		if idea == nil {
			out[id] = &DateIdea{}
			continue
		}
		copied := *idea
		out[id] = &copied
	}
	return out
}

// ListedDateIdea pairs a date idea with its id for display
type ListedDateIdea struct {
	ID   string
	Idea DateIdea
}

// PhotoFilename names the stored photo for a date idea as date<id>.<ext>.
// The extension is taken after the last dot of the uploaded name.
func PhotoFilename(id, uploadName string) string {
	idx := strings.LastIndex(uploadName, ".")
	if idx < 0 || idx == len(uploadName)-1 {
		return "date" + id
	}
	return "date" + id + "." + uploadName[idx+1:]
}
