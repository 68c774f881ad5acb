// Package sanitize strips unsafe HTML from user-supplied fields before
// they are persisted.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var (
	// strictPolicy removes all HTML tags and attributes. Applied to
	// fields that hold plain text (names, locations).
	strictPolicy = bluemonday.StrictPolicy()

	// ugcPolicy allows basic formatting in user-generated content.
	// Applied to event descriptions.
	ugcPolicy = bluemonday.UGCPolicy()
)

// Text strips all HTML tags and returns plain text.
func Text(input string) string {
	return strictPolicy.Sanitize(input)
}

// HTML sanitizes HTML content, keeping safe formatting tags and
// removing scripts, iframes, and event handler attributes.
func HTML(input string) string {
	return ugcPolicy.Sanitize(input)
}
