package s3

import (
	"strings"
	"testing"
)

func TestImageKey_Recipe(t *testing.T) {
	key := ImageKey("pasta-1", ".JPG")
	if !strings.HasPrefix(key, "recipes/pasta-1/images/") {
		t.Errorf("key = %q, want recipes/pasta-1/images prefix", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Errorf("key = %q, want lowercase .jpg suffix", key)
	}
}

func TestImageKey_Unattached(t *testing.T) {
	a := ImageKey("", ".png")
	b := ImageKey("", ".png")
	if !strings.HasPrefix(a, "uploads/images/") {
		t.Errorf("key = %q, want uploads/images prefix", a)
	}
	if a == b {
		t.Error("keys for separate uploads should differ")
	}
}
