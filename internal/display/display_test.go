package display

import (
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestParseTemplate_Render(t *testing.T) {
	tests := map[string]struct {
		tmpl   string
		data   any
		exp    string
		expErr string
	}{
		"plain text": {
			tmpl: "no markers",
			exp:  "no markers",
		},
		"field access": {
			tmpl: "Try again in {{ .Seconds }} seconds.",
			data: struct{ Seconds int }{30},
			exp:  "Try again in 30 seconds.",
		},
		"sprig function": {
			tmpl: "{{ .World | upper }}",
			data: struct{ World string }{"outpost"},
			exp:  "OUTPOST",
		},
		"parse error": {
			tmpl:   "{{ .Broken ",
			expErr: "parsing template",
		},
		"execute error": {
			tmpl:   "{{ .Missing }}",
			data:   struct{}{},
			expErr: "executing template",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var got string
			tmpl, err := ParseTemplate("test", tt.tmpl)
			if err == nil {
				got, err = Render(tmpl, tt.data)
			}
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "output", got, tt.exp)
		})
	}
}

func TestSeconds(t *testing.T) {
	tests := map[string]struct {
		d   time.Duration
		exp int
	}{
		"zero":       {d: 0, exp: 0},
		"negative":   {d: -time.Second, exp: 0},
		"whole":      {d: 30 * time.Second, exp: 30},
		"fraction":   {d: 29*time.Second + time.Millisecond, exp: 30},
		"sub second": {d: time.Millisecond, exp: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "seconds", Seconds(tt.d), tt.exp)
		})
	}
}

func TestWrap(t *testing.T) {
	long := strings.Repeat("word ", 40)
	for _, line := range strings.Split(Wrap(long), "\n") {
		if len(line) > DefaultWidth {
			t.Errorf("line longer than %d: %q", DefaultWidth, line)
		}
	}
}
