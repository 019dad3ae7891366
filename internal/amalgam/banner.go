// SPDX-License-Identifier: MPL-2.0

package amalgam

import (
	"io"
	"strings"
)

const (
	// BannerWidth is the total width of the full-width banner lines.
	BannerWidth = 118
	// commentLeader starts every banner line.
	commentLeader = "//"
	// bannerContentWidth is the space left for fill and label after the leader.
	bannerContentWidth = BannerWidth - len(commentLeader)
	bannerFill         = "-"
	// endLabelPrefix prefixes the label of a closing banner.
	endLabelPrefix = "END "
)

// RenderBanner returns the three lines of a banner centered on label.
//
// Padding is computed from the byte length of label, so multi-byte labels
// render visually uneven. A label longer than the content width is emitted
// without fill on either side.
func RenderBanner(label string) [3]string {
	left := (bannerContentWidth - len(label)) / 2
	right := bannerContentWidth - len(label) - left

	rule := commentLeader + strings.Repeat(bannerFill, bannerContentWidth)
	title := commentLeader + fill(left) + label + fill(right)
	return [3]string{rule, title, rule}
}

// EndLabel returns the banner label closing the expansion of path.
func EndLabel(path string) string {
	return endLabelPrefix + path
}

func fill(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(bannerFill, n)
}

// writeBanner writes the banner for label followed by a blank line.
func writeBanner(w io.Writer, label string) error {
	var sb strings.Builder
	for _, line := range RenderBanner(label) {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}
