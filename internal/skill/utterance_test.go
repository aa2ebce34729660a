package skill

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseUtterance(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		text    string
		want    Request
		wantErr bool
	}{
		"empty launches": {text: "  ", want: Request{Intent: IntentLaunch}},
		"yes":            {text: "Yes", want: Request{Intent: IntentYes}},
		"no":             {text: "nope", want: Request{Intent: IntentNo}},
		"help":           {text: "help", want: Request{Intent: IntentHelp}},
		"cancel":         {text: "never   mind", want: Request{Intent: IntentCancel}},
		"stop":           {text: "quit", want: Request{Intent: IntentStop}},
		"find movie with year": {
			text: "find movie Heat 1995",
			want: Request{Intent: IntentFindMovie, Slots: map[string]string{SlotMovieName: "Heat", SlotReleaseDate: "1995"}},
		},
		"movie titled as a year": {
			text: "find film 1917",
			want: Request{Intent: IntentFindMovie, Slots: map[string]string{SlotMovieName: "1917"}},
		},
		"add show keeps trailing number": {
			text: "add show the office 2005",
			want: Request{Intent: IntentAddShow, Slots: map[string]string{SlotShowName: "the office 2005"}},
		},
		"is series": {
			text: "is series the expanse",
			want: Request{Intent: IntentFindShow, Slots: map[string]string{SlotShowName: "the expanse"}},
		},
		"add movie missing title": {
			text: "add movie",
			want: Request{Intent: IntentAddMovie, Slots: map[string]string{}},
		},
		"unknown verb": {text: "play movie heat", wantErr: true},
		"unknown kind": {text: "find song hello", wantErr: true},
		"single word":  {text: "matrix", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseUtterance(tc.text)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseUtterance(%q) error = %v, wantErr %v", tc.text, err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseUtterance(%q) mismatch (-want +got):\n%s", tc.text, diff)
			}
		})
	}
}
