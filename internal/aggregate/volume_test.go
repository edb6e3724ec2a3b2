package aggregate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/tiagoarodrigues55/moveo-report/internal/model"
)

func TestTagVolume(t *testing.T) {
	convs := []model.Conversation{
		conv(1, "0", false, "sou_eu", "outro"),
		conv(2, "0", false, "sou_eu", "sou_eu"),
		conv(3, "0", false, "bloquear", "outro"),
		conv(4, "0", false),
	}

	want := []TagCount{
		{Tag: "sou_eu", Count: 3},
		{Tag: "outro", Count: 2},
		{Tag: "bloquear", Count: 1},
	}
	if diff := cmp.Diff(want, TagVolume(convs)); diff != "" {
		t.Errorf("tag volume mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, TagVolume([]model.Conversation{conv(1, "0", false)}))
}

func TestWithResponse(t *testing.T) {
	convs := []model.Conversation{
		conv(0, "0", false),
		conv(1, "0", false),
		conv(2, "0", false),
		conv(9, "0", false),
	}
	assert.Equal(t, 2, WithResponse(convs))
	assert.Zero(t, WithResponse(nil))
}
