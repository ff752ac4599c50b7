package pages

import (
	"strings"

	"github.com/google/uuid"
)

// IDLength is the length of every identifier returned by NewID.
const IDLength = 32

// NewID returns a random lowercase hex identifier of IDLength characters,
// safe for use in file names and URLs.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
