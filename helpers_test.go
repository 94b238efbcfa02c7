package editshell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Pasta Night", "pasta-night"},
		{"  Hello,  World!  ", "hello-world"},
		{"already-a-slug", "already-a-slug"},
		{"Top 10 Tips", "top-10-tips"},
		{"Crème brûlée", "cr-me-br-l-e"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}
