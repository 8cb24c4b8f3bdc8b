package structured

import "strings"

// CleanResponse recovers a JSON object from conversational wrapper text:
// markdown fences, "Here is the JSON:" prefixes, trailing commentary. The
// model does not have to be perfectly obedient for parsing to succeed.
func CleanResponse(raw string) string {
	s := strings.TrimSpace(raw)

	// Strip leading/trailing code-fence markers.
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	if strings.HasSuffix(strings.TrimSpace(s), "```") {
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, "```")
	}
	s = strings.TrimSpace(s)

	// Discard any prefix before the first '{' and suffix after the last '}'.
	if start := strings.IndexByte(s, '{'); start >= 0 {
		s = s[start:]
	}
	if end := strings.LastIndexByte(s, '}'); end >= 0 {
		s = s[:end+1]
	}

	return strings.TrimSpace(s)
}
