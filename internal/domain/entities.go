package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ItemID identifies a row in the local item store.
type ItemID int64

// CoverID names a piece of artwork in the Open Library covers catalog.
// Two items may share one.
type CoverID int64

// Valid reports whether the id can be fetched.
func (c CoverID) Valid() bool { return c > 0 }

func (c CoverID) String() string { return strconv.FormatInt(int64(c), 10) }

// ParseCoverID parses a positive cover identifier.
func ParseCoverID(s string) (CoverID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cover id %q: %w", s, err)
	}
	id := CoverID(n)
	if !id.Valid() {
		return 0, fmt.Errorf("invalid cover id %q: must be positive", s)
	}
	return id, nil
}

// SizeVariant selects the resolution fetched from the covers API.
type SizeVariant string

const (
	SizeSmall  SizeVariant = "S"
	SizeMedium SizeVariant = "M"
	SizeLarge  SizeVariant = "L"
)

// Valid reports whether v is one of S, M or L.
func (v SizeVariant) Valid() bool {
	switch v {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// ParseSizeVariant accepts S/M/L in either case.
func ParseSizeVariant(s string) (SizeVariant, error) {
	v := SizeVariant(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("invalid size variant %q (want S, M or L)", s)
	}
	return v, nil
}

// MediaType distinguishes the kinds of things tracked in the library
type MediaType string

const (
	MediaTypeBook  MediaType = "book"
	MediaTypeComic MediaType = "comic"
	MediaTypeMovie MediaType = "movie"
)

// MediaTypes lists every media type in display order.
func MediaTypes() []MediaType {
	return []MediaType{MediaTypeBook, MediaTypeComic, MediaTypeMovie}
}

// ParseMediaType converts user input to a MediaType
func ParseMediaType(s string) (MediaType, error) {
	t := MediaType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range MediaTypes() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown media type %q", ErrInvalidItem, s)
}

// ItemStatus tracks progress through an item
type ItemStatus string

const (
	StatusBacklog    ItemStatus = "backlog"
	StatusInProgress ItemStatus = "in_progress"
	StatusDone       ItemStatus = "done"
)

// Statuses lists every status in workflow order.
func Statuses() []ItemStatus {
	return []ItemStatus{StatusBacklog, StatusInProgress, StatusDone}
}

// ParseItemStatus converts user input to an ItemStatus. Spaces and dashes are
// accepted in place of underscores ("in progress", "in-progress").
func ParseItemStatus(s string) (ItemStatus, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	st := ItemStatus(norm)
	for _, known := range Statuses() {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidItem, s)
}

// Next returns the following status, wrapping from done back to backlog
func (s ItemStatus) Next() ItemStatus {
	all := Statuses()
	for i, st := range all {
		if st == s {
			return all[(i+1)%len(all)]
		}
	}
	return StatusBacklog
}

// Label returns a human-readable status
func (s ItemStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// MaxRating is the highest rating an item can carry. Zero means unrated.
const MaxRating = 5

// Item is one tracked book, comic or movie
type Item struct {
	ID               ItemID
	Title            string
	MediaType        MediaType
	Status           ItemStatus
	Rating           int // 0 = unrated, otherwise 1..MaxRating
	Notes            string
	Author           string
	FirstPublishYear int    // 0 = unknown
	OpenLibraryKey   string // e.g. "/works/OL82563W"
	CoverID          CoverID
}

// HasCover returns true if the item references cover artwork
func (i Item) HasCover() bool {
	return i.CoverID.Valid()
}

// Validate checks the invariants enforced before an item is stored.
func (i Item) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidItem)
	}
	if _, err := ParseMediaType(string(i.MediaType)); err != nil {
		return err
	}
	if _, err := ParseItemStatus(string(i.Status)); err != nil {
		return err
	}
	if i.Rating < 0 || i.Rating > MaxRating {
		return fmt.Errorf("%w: rating %d out of range 0-%d", ErrInvalidItem, i.Rating, MaxRating)
	}
	if i.CoverID < 0 {
		return fmt.Errorf("%w: negative cover id", ErrInvalidItem)
	}
	return nil
}

// RatingLabel renders the rating as stars, or "" when unrated
func (i Item) RatingLabel() string {
	if i.Rating <= 0 {
		return ""
	}
	return strings.Repeat("★", i.Rating) + strings.Repeat("☆", MaxRating-i.Rating)
}

// YearLabel returns the first publish year or "" when unknown
func (i Item) YearLabel() string {
	if i.FirstPublishYear <= 0 {
		return ""
	}
	return strconv.Itoa(i.FirstPublishYear)
}

// SearchResult is one hit from the online metadata search
type SearchResult struct {
	Key              string  `json:"key"` // e.g. "/works/OL82563W"
	Title            string  `json:"title"`
	Author           string  `json:"author"`
	FirstPublishYear int     `json:"first_publish_year,omitempty"`
	EditionCount     int     `json:"edition_count,omitempty"`
	CoverID          CoverID `json:"cover_id,omitempty"`
}

// ToItem converts a search hit into a new backlog book.
func (r SearchResult) ToItem() Item {
	return Item{
		Title:            strings.TrimSpace(r.Title),
		MediaType:        MediaTypeBook,
		Status:           StatusBacklog,
		Author:           r.Author,
		FirstPublishYear: r.FirstPublishYear,
		OpenLibraryKey:   r.Key,
		CoverID:          r.CoverID,
	}
}
