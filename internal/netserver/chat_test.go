package netserver

import "testing"

func TestSanitizeChatEscapesAndStripsTags(t *testing.T) {
	got := sanitizeChat(`  <script>alert('x')</script>  `)
	want := "alert(&#39;x&#39;)"
	if got != want {
		t.Fatalf("sanitizeChat() = %q, want %q", got, want)
	}
}

func TestSanitizeChatClampsLength(t *testing.T) {
	long := make([]byte, maxChatLength+50)
	for i := range long {
		long[i] = 'a'
	}
	got := sanitizeChat(string(long))
	if len(got) != maxChatLength {
		t.Fatalf("expected sanitizeChat to clamp to %d bytes, got %d", maxChatLength, len(got))
	}
}

func TestSanitizeChatTrimsWhitespace(t *testing.T) {
	got := sanitizeChat("   hello there   ")
	if got != "hello there" {
		t.Fatalf("expected trimmed 'hello there', got %q", got)
	}
}

func TestStripTagsHandlesDoubleEncodedRemnants(t *testing.T) {
	got := stripTags("before<tag>after")
	if got != "beforeafter" {
		t.Fatalf("stripTags() = %q, want %q", got, "beforeafter")
	}
}
