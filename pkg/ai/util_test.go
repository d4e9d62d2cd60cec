package ai

import (
	"testing"
)

type exampleOut struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestUnmarshalFlexible(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  exampleOut
	}{
		{
			name:  "plain json",
			input: `{"name": "a", "count": 2}`,
			want:  exampleOut{Name: "a", Count: 2},
		},
		{
			name:  "code fence with language tag",
			input: "```json\n{\"name\": \"a\", \"count\": 2}\n```",
			want:  exampleOut{Name: "a", Count: 2},
		},
		{
			name:  "code fence without language tag",
			input: "```\n{\"name\": \"a\", \"count\": 2}\n```",
			want:  exampleOut{Name: "a", Count: 2},
		},
		{
			name:  "double encoded",
			input: `"{\"name\": \"a\", \"count\": 2}"`,
			want:  exampleOut{Name: "a", Count: 2},
		},
		{
			name:  "duplicate leading brace",
			input: `{{"name": "a", "count": 2}`,
			want:  exampleOut{Name: "a", Count: 2},
		},
		{
			name:  "trailing comma repaired",
			input: `{"name": "a", "count": 2,}`,
			want:  exampleOut{Name: "a", Count: 2},
		},
		{
			name:  "single quotes repaired",
			input: `{'name': 'a', 'count': 2}`,
			want:  exampleOut{Name: "a", Count: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out exampleOut
			if err := UnmarshalFlexible(tt.input, &out); err != nil {
				t.Fatalf("UnmarshalFlexible returned error: %v", err)
			}
			if out != tt.want {
				t.Errorf("UnmarshalFlexible() = %+v, want %+v", out, tt.want)
			}
		})
	}
}

func TestUnmarshalFlexibleRejectsGarbage(t *testing.T) {
	var out exampleOut
	if err := UnmarshalFlexible("not json at all and no braces either [", &out); err == nil {
		t.Error("expected error for unrepairable input")
	}
}

func TestTruncateToTokens(t *testing.T) {
	short := "a short sentence"
	if got := TruncateToTokens(short, 100); got != short {
		t.Errorf("text within budget should be unchanged, got %q", got)
	}

	long := ""
	for range 500 {
		long += "word "
	}
	truncated := TruncateToTokens(long, 50)
	if len(truncated) >= len(long) {
		t.Error("expected truncation to shorten the text")
	}

	if got := TruncateToTokens(long, 0); got != long {
		t.Error("zero budget should disable truncation")
	}
}
