package citycare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImagesURL(t *testing.T) {
	images := NewImages("https://bucket.test")
	assert.Equal(t, PlaceholderImage, images.URL(""))
	assert.Equal(t, "https://cdn.test/a.png", images.URL("https://cdn.test/a.png"))
	assert.Equal(t, "https://bucket.test/menus/a.png", images.URL("menus/a.png"))
	assert.Equal(t, DefaultImageBaseURL+"x.jpg", Images{}.URL("x.jpg"))
}
