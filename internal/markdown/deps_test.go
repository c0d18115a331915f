package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalDependencies(t *testing.T) {
	body := []byte(`# Page

![diagram](images/arch.png)
A [sibling](other.md) and a [parent](../intro.md#section).
An [external](https://example.com/page) link, a [mail](mailto:a@b.c) link,
an [anchor](#here), and a [site-absolute](/assets/logo.svg) link.
<https://auto.example.com>

[ref]: snippets/shared.md
Some [ref] usage.
`)

	deps := LocalDependencies(body, "docs/guide/page.md")
	assert.Equal(t, []string{
		"docs/guide/images/arch.png",
		"docs/guide/other.md",
		"docs/guide/snippets/shared.md",
		"docs/intro.md",
	}, deps)
}

func TestLocalDependenciesQueryAndFragmentStripped(t *testing.T) {
	body := []byte("[a](img.png?v=2) [b](img.png#frag)")
	deps := LocalDependencies(body, "page.md")
	assert.Equal(t, []string{"img.png"}, deps)
}

func TestLocalDependenciesSelfReferenceDropped(t *testing.T) {
	body := []byte("[self](page.md) [also](./page.md#top)")
	deps := LocalDependencies(body, "page.md")
	assert.Empty(t, deps)
}

func TestExtractLinksKinds(t *testing.T) {
	body := []byte("![img](a.png) [link](b.md) <https://c.example>\n\n[ref]: d.md\n")
	links := ExtractLinks(body)

	kinds := make(map[LinkKind][]string)
	for _, l := range links {
		kinds[l.Kind] = append(kinds[l.Kind], l.Destination)
	}
	assert.Equal(t, []string{"a.png"}, kinds[LinkKindImage])
	assert.Equal(t, []string{"b.md"}, kinds[LinkKindInline])
	assert.Equal(t, []string{"https://c.example"}, kinds[LinkKindAuto])
	assert.Equal(t, []string{"d.md"}, kinds[LinkKindReferenceDefinition])
}
