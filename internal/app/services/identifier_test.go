package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveIdentifier(t *testing.T) {
	cases := map[string]string{
		"2511321071BF.jpg":     "2511321071BF",
		"reg.no.with.dots.png": "reg", // only the part before the first dot is kept
		"R1":                   "R1",
		"  R2 .JPEG":           "R2",
		"batch/LA/R3.png":      "R3",
		`batch\LA\R4.jpg`:      "R4",
		".jpg":                 "",
		"":                     "",
	}
	for name, want := range cases {
		assert.Equal(t, want, DeriveIdentifier(name), name)
	}
}

func TestIsImage(t *testing.T) {
	for _, name := range []string{"a.jpg", "a.JPG", "a.jpeg", "a.Png"} {
		assert.True(t, IsImage(name), name)
	}
	for _, name := range []string{"a.gif", "a.txt", "jpg", "a.jpg.bak", ""} {
		assert.False(t, IsImage(name), name)
	}
}
