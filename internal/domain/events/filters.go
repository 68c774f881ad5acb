package events

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

type SortField string

const (
	SortByDate      SortField = "date"
	SortByCreatedAt SortField = "created_at"
	SortByName      SortField = "name"
)

type Filters struct {
	Status      Status
	CreatorID   string
	DateFrom    *time.Time
	DateTo      *time.Time
	MinCapacity *int
	MaxCapacity *int
	HasCapacity *bool
	Upcoming    *bool
	Query       string

	// Mine and Joined are resolved against the request actor by the
	// service; the repository only ever sees CreatorID / JoinedUserID.
	Mine         bool
	Joined       bool
	JoinedUserID string

	Sort       SortField
	Descending bool
}

type Pagination struct {
	Limit  int
	Offset int
}

// ParseFilters builds Filters and Pagination from listing query
// parameters. Unknown values fail with a field-scoped ValidationError.
func ParseFilters(values url.Values) (Filters, Pagination, error) {
	filters := Filters{Sort: SortByDate}
	page := Pagination{Limit: 50}

	if raw := strings.TrimSpace(values.Get("status")); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			return filters, page, err
		}
		filters.Status = status
	}

	filters.CreatorID = strings.TrimSpace(values.Get("creatorId"))

	dateFrom, err := parseDate("dateFrom", values.Get("dateFrom"))
	if err != nil {
		return filters, page, err
	}
	dateTo, err := parseDate("dateTo", values.Get("dateTo"))
	if err != nil {
		return filters, page, err
	}
	if dateFrom != nil && dateTo != nil && dateTo.Before(*dateFrom) {
		return filters, page, ValidationError{Field: "dateTo", Message: "must be on or after dateFrom"}
	}
	filters.DateFrom = dateFrom
	filters.DateTo = dateTo

	filters.MinCapacity, err = parseOptionalInt("minCapacity", values.Get("minCapacity"))
	if err != nil {
		return filters, page, err
	}
	filters.MaxCapacity, err = parseOptionalInt("maxCapacity", values.Get("maxCapacity"))
	if err != nil {
		return filters, page, err
	}

	filters.HasCapacity, err = parseOptionalBool("hasCapacity", values.Get("hasCapacity"))
	if err != nil {
		return filters, page, err
	}
	filters.Upcoming, err = parseOptionalBool("upcoming", values.Get("upcoming"))
	if err != nil {
		return filters, page, err
	}

	filters.Query = strings.TrimSpace(values.Get("q"))
	filters.Mine = values.Get("mine") == "true"
	filters.Joined = values.Get("joined") == "true"

	if raw := strings.TrimSpace(values.Get("sort")); raw != "" {
		switch SortField(raw) {
		case SortByDate, SortByCreatedAt, SortByName:
			filters.Sort = SortField(raw)
		default:
			return filters, page, ValidationError{Field: "sort", Message: "must be date, created_at, or name"}
		}
	}
	switch strings.TrimSpace(values.Get("dir")) {
	case "", "asc":
	case "desc":
		filters.Descending = true
	default:
		return filters, page, ValidationError{Field: "dir", Message: "must be asc or desc"}
	}

	page.Limit, err = parseLimit(values.Get("limit"))
	if err != nil {
		return filters, page, err
	}
	page.Offset, err = parseOffset(values.Get("offset"))
	if err != nil {
		return filters, page, err
	}

	return filters, page, nil
}

func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, ValidationError{Field: field, Message: "must be an ISO8601 date or datetime"}
	}
	return &parsed, nil
}

func parseOptionalInt(field, value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return nil, ValidationError{Field: field, Message: "must be a non-negative number"}
	}
	return &parsed, nil
}

func parseOptionalBool(field, value string) (*bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, ValidationError{Field: field, Message: "must be true or false"}
	}
	return &parsed, nil
}

func parseLimit(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 50, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, ValidationError{Field: "limit", Message: "must be a number"}
	}
	if parsed < 1 || parsed > 200 {
		return 0, ValidationError{Field: "limit", Message: "must be between 1 and 200"}
	}
	return parsed, nil
}

func parseOffset(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, ValidationError{Field: "offset", Message: "must be a non-negative number"}
	}
	return parsed, nil
}
