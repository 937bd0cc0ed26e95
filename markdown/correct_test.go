package markdown

import "testing"

func TestCorrect(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bold closer after space", "**Bold **Normal", "**Bold** Normal"},
		{"italic closer after space", "*Hey All * **HHH**", "*Hey All*  **HHH**"},
		{"nested closers", "***a ***b", "***a*** b"},
		{"closer pair", "*a **b ** c*", "*a **b**  c*"},
		{"strikethrough", "~~gone ~~here", "~~gone~~ here"},
		{"well formed", "**Hello *World!***", "**Hello *World!***"},
		{"literal stars", "a * b * c", "a * b * c"},
		{"escaped", `\*a *`, `\*a *`},
		{"code span", "`**a **`b", "`**a **`b"},
		{"unclosed code", "``a **b **c", "``a **b** c"},
		{"blank line forgets", "**a\n\n b **c", "**a\n\n b **c"},
		{"single tilde", "~a ~b", "~a ~b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Correct(tt.src); got != tt.want {
				t.Errorf("Correct(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}
