package source

import "time"

// feedTimeLayout is the RFC 822 prefix without zone, as feeds publish it.
const feedTimeLayout = "Mon, 2 Jan 2006 15:04:05"

// NormalizeFeedTime converts the first 25 characters of an RSS date into
// ISO-8601 with a Z suffix. The zone is not interpreted. Anything that does
// not parse is returned unchanged.
func NormalizeFeedTime(raw string) string {
	prefix := raw
	if len(prefix) > 25 {
		prefix = prefix[:25]
	}

	t, err := time.Parse(feedTimeLayout, prefix)
	if err != nil {
		return raw
	}

	return t.Format("2006-01-02T15:04:05") + "Z"
}
