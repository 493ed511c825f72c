// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"

	"github.com/bogem/id3v2/v2"
)

// ReadTitle returns "Artist - Title" from the ID3v2 tag at path, or an empty
// string when the file has no such tag. The tag is only read for display.
func ReadTitle(path string) (string, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Artist", "Title"}})
	if err != nil {
		return "", fmt.Errorf("open id3 tag: %w", err)
	}
	defer tag.Close()

	artist, title := tag.Artist(), tag.Title()
	switch {
	case artist != "" && title != "":
		return artist + " - " + title, nil
	case title != "":
		return title, nil
	default:
		return artist, nil
	}
}
