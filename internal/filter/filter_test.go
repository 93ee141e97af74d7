package filter

import "testing"

func TestValid_BoundaryCases(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"two chars", "ab", false},
		{"three chars", "abc", true},
		{"russian text", "привет как дела", true},
		{"punctuation ok", "Ну что, поехали! (наконец-то)", true},
		{"schemed url", "check http://x.co", false},
		{"https url", "смотри https://example.com/path", false},
		{"www host", "заходи на www.example.org", false},
		{"bare domain", "сайт example.com работает", false},
		{"mention", "hello @bob", false},
		{"command", "/gm", false},
		{"command with args", "/story 3", false},
		{"emoji", "привет \U0001F600", false},
		{"hash sign", "тариф #5 подключен", false},
		{"quotes ok", "он сказал «привет» и ушел", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Valid(tc.text); got != tc.want {
				t.Fatalf("Valid(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}
