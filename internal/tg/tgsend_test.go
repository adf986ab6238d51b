package tg

import (
	"errors"
	"testing"
)

func TestIsSystemErr(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Too Many Requests: retry after 5 (429)"), true},
		{errors.New("Post https://api.telegram.org: i/o timeout"), true},
		{errors.New("Bad Request: chat not found"), false},
		{errors.New("Forbidden: bot was blocked by the user"), false},
	}
	for _, tc := range cases {
		if got := isSystemErr(tc.err); got != tc.want {
			t.Errorf("isSystemErr(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
