package util

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strings"
)

func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// HashContent returns a stable hex digest of article text, used to recognize
// re-submissions of the same user-provided content.
func HashContent(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

// FirstSentence returns the text up to (and excluding) the first period.
func FirstSentence(text string) string {
	if idx := strings.IndexByte(text, '.'); idx >= 0 {
		return text[:idx]
	}
	return text
}

// ConvertStructToJson marshals v to JSON, returning "{}" on failure.
func ConvertStructToJson(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
