package extract

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooksLikePDF(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want bool
	}{
		{"clean header", []byte("%PDF-1.7\n..."), true},
		{"utf8 bom prefix", append([]byte{0xEF, 0xBB, 0xBF}, []byte("%PDF-1.4")...), true},
		{"leading nuls and whitespace", []byte("\x00\x00 \t\r\n%PDF-1.5"), true},
		{"bom then whitespace", append([]byte{0xEF, 0xBB, 0xBF}, []byte("  \n%PDF-1.6")...), true},
		{"html", []byte("<html><body>nope</body></html>"), false},
		{"header too deep", append(bytes.Repeat([]byte("x"), 2048), []byte("%PDF-")...), false},
		{"empty", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LooksLikePDF(tc.data))
		})
	}
}
