package container

import (
	"testing"
)

// Token 按标识比较 - 相同 key 的两次创建是不同的槽位
func TestTokenIdentity(t *testing.T) {
	tok1 := NewToken[string]().As("same-key")
	tok2 := NewToken[string]().As("same-key")

	if AnyToken(tok1) == AnyToken(tok2) {
		t.Fatal("two tokens created with the same key must be distinct")
	}

	b, err := NewBuilder().Register(tok1, "first")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	b, err = b.Register(tok2, "second")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	c := b.Result()

	v1, err := Resolve(c, tok1)
	if err != nil {
		t.Fatalf("Resolve tok1 failed: %v", err)
	}
	v2, err := Resolve(c, tok2)
	if err != nil {
		t.Fatalf("Resolve tok2 failed: %v", err)
	}

	if v1 != "first" || v2 != "second" {
		t.Fatalf("expected independent slots, got %q / %q", v1, v2)
	}
}

func TestTokenKeyAndString(t *testing.T) {
	tok := NewToken[int]().As("answer")

	if tok.Key() != "answer" {
		t.Errorf("Key() = %q, want %q", tok.Key(), "answer")
	}
	if tok.String() != "Token(answer)" {
		t.Errorf("String() = %q", tok.String())
	}
	if tok.Metadata() != nil {
		t.Errorf("token without metadata should return nil")
	}
}

func TestTokenMetadata(t *testing.T) {
	base := NewToken[any]().As("repository")
	generic := NewToken[any]().As("user")

	tok := NewToken[any]().As("user-repository", Metadata{
		Implements: []AnyToken{base},
		Generics:   []AnyToken{generic},
	})

	meta := tok.Metadata()
	if meta == nil {
		t.Fatal("metadata should not be nil")
	}
	if len(meta.Implements) != 1 || meta.Implements[0] != AnyToken(base) {
		t.Errorf("unexpected Implements: %v", meta.Implements)
	}
	if len(meta.Generics) != 1 || meta.Generics[0] != AnyToken(generic) {
		t.Errorf("unexpected Generics: %v", meta.Generics)
	}
}

// Self 是包级单例，标识稳定
func TestSelfTokenIdentity(t *testing.T) {
	if !isSelf(Self) {
		t.Fatal("Self must be recognized as the self token")
	}
	if isSelf(NewToken[*Container]().As("container.self")) {
		t.Fatal("a look-alike token must not be recognized as Self")
	}
}
