package kioskcontent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/infokiosk/kiosk-content/pkg/kioskcontent"
)

func TestAllowedFile(t *testing.T) {
	tests := []struct {
		name    string
		allowed bool
	}{
		{"photo.png", true},
		{"photo.PNG", true},
		{"scan.jpeg", true},
		{"scan.jpg", true},
		{"anim.gif", true},
		{"doc.pdf", true},
		{"icon.svg", true},
		{"notes.txt", false},
		{"archive.tar.gz", false},
		{"noextension", false},
		{"", false},
		{".png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, kioskcontent.AllowedFile(tt.name))
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"my photo.png", "my_photo.png"},
		{"../../etc/passwd", "passwd"},
		{`..\..\boot.ini`, "boot.ini"},
		{"..hidden.png", "hidden.png"},
		{"-dashed.png", "dashed.png"},
		{"weird$chars!.pdf", "weird_chars_.pdf"},
		{"ünïcode.gif", "_n_code.gif"},
		{".png", "png"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, kioskcontent.SanitizeFilename(tt.in))
		})
	}
}

func TestBaseTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"price.pdf", "price"},
		{"lunch menu.pdf", "lunch menu"},
		{"archive.tar.gz", "archive.tar"},
		{"noextension", "noextension"},
		{".hidden", ".hidden"},
		{"dir/report.pdf", "report"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, kioskcontent.BaseTitle(tt.in))
		})
	}
}
