package telegram

import "strings"

// splitText splits long messages into chunks that are safe to send to Telegram.
// It prefers newline boundaries. In HTML mode every chunk is balanced: tags
// still open at a cut are closed at the end of the chunk and reopened at the
// start of the next one, and cuts never land inside a tag or an entity.
func splitText(s string, limit int, parseMode string) []string {
	if limit <= 0 {
		limit = textLimit
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return []string{s}
	}
	isHTML := strings.EqualFold(parseMode, "HTML")

	out := make([]string, 0, (len(rs)+limit-1)/limit)
	var open []string // opening tags carried into the next chunk
	start := 0
	for start < len(rs) {
		prefix := strings.Join(open, "")
		budget := max(limit-runeLen(prefix), 1)
		end := cutPoint(rs, start, min(start+budget, len(rs)), limit, isHTML)

		var (
			next   []string
			suffix string
		)
		for {
			next = open
			if isHTML {
				next = scanTags(append([]string(nil), open...), rs[start:end])
			}
			suffix = closingTags(next)
			over := runeLen(prefix) + (end - start) + runeLen(suffix) - limit
			if over <= 0 || end-start <= 1 {
				break
			}
			end = cutPoint(rs, start, max(end-over, start+1), limit, isHTML)
		}

		body := strings.TrimRight(string(rs[start:end]), "\n")
		if strings.TrimSpace(body) != "" {
			out = append(out, prefix+body+suffix)
		}
		open = next

		start = end
		for start < len(rs) && rs[start] == '\n' {
			start++
		}
	}
	return out
}

// cutPoint moves end back to a newline, and in HTML mode off any tag or
// entity that straddles it. It never returns a position at or before start.
func cutPoint(rs []rune, start, end, limit int, isHTML bool) int {
	if end >= len(rs) {
		return len(rs)
	}
	// Prefer a newline near the end of the window, but not a tiny chunk.
	for i := end - 1; i > start; i-- {
		if rs[i] == '\n' && i-start >= limit/3 {
			end = i + 1
			break
		}
	}
	if !isHTML {
		return end
	}

	lastOpen, lastClose := -1, -1
	for i := start; i < end; i++ {
		switch rs[i] {
		case '<':
			lastOpen = i
		case '>':
			lastClose = i
		}
	}
	if lastOpen > lastClose && lastOpen > start {
		end = lastOpen
	}

	// Entities are short: "&amp;" "&quot;" "&#39;".
	for i := end - 1; i > start && i >= end-8; i-- {
		if rs[i] == ';' {
			break
		}
		if rs[i] == '&' {
			end = i
			break
		}
	}
	return end
}

// scanTags applies the tags in seg to the open stack.
func scanTags(open []string, seg []rune) []string {
	for i := 0; i < len(seg); i++ {
		if seg[i] != '<' {
			continue
		}
		j := i + 1
		for j < len(seg) && seg[j] != '>' {
			j++
		}
		if j == len(seg) {
			break
		}
		tag := string(seg[i : j+1])
		i = j

		name := tagName(tag)
		switch {
		case name == "":
		case strings.HasPrefix(tag, "</"):
			for k := len(open) - 1; k >= 0; k-- {
				if tagName(open[k]) == name {
					open = append(open[:k], open[k+1:]...)
					break
				}
			}
		case !strings.HasSuffix(tag, "/>"):
			open = append(open, tag)
		}
	}
	return open
}

func tagName(tag string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(tag, "<"), "/")
	if i := strings.IndexAny(s, " \t\n/>"); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(s)
}

func closingTags(open []string) string {
	var b strings.Builder
	for i := len(open) - 1; i >= 0; i-- {
		b.WriteString("</")
		b.WriteString(tagName(open[i]))
		b.WriteString(">")
	}
	return b.String()
}

func runeLen(s string) int { return len([]rune(s)) }
