// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamltags

import (
	"fmt"
	"net/url"
	"strings"
)

// EscapeTag percent-encodes every byte that may not appear in a tag as is.
func EscapeTag(tag string) string {
	var sb strings.Builder
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		if isTagChar(c) {
			sb.WriteByte(c)
		} else {
			fmt.Fprintf(&sb, "%%%02X", c)
		}
	}
	return sb.String()
}

func UnescapeTag(tag string) (string, error) {
	if !strings.Contains(tag, "%") {
		return tag, nil
	}
	return url.PathUnescape(tag)
}

func isTagChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.~!;/?:@&=+$,*'()[]#", c) >= 0
}
