package formatter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Format converts text into display blocks. It is deterministic: the same
// text always yields the same blocks.
func Format(text string) []Block {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []Block
	used := make(map[string]bool, len(Pipeline))
	for _, l := range splitLines(text) {
		if l.blank() {
			if len(out) == 0 || out[len(out)-1].Kind == KindSpacer {
				continue
			}
			out = append(out, Block{Kind: KindSpacer, Line: l.Source})
			continue
		}
		out = append(out, classify(l, used, out)...)
	}

	for len(out) > 0 && out[len(out)-1].Kind == KindSpacer {
		out = out[:len(out)-1]
	}
	return out
}

func classify(l Line, used map[string]bool, prev []Block) []Block {
	for _, m := range Pipeline {
		if m.Once && used[m.Name] {
			continue
		}
		if !m.Match(l) {
			continue
		}
		if m.Once {
			used[m.Name] = true
		}
		return m.Extract(l)
	}
	p := paragraph(l)
	if n := len(prev); n > 0 {
		last := prev[n-1]
		p.Indent = last.Kind == KindHeader || (last.Kind == KindParagraph && last.Indent)
	}
	return []Block{p}
}

// Cache memoizes Format for the repeated re-rendering of a growing
// streamed text. Returned slices are shared and must not be modified.
type Cache struct {
	lru *lru.Cache[string, []Block]
}

func NewCache(size int) (*Cache, error) {
	c, err := lru.New[string, []Block](size)
	if err != nil {
		return nil, fmt.Errorf("create format cache: %w", err)
	}
	return &Cache{lru: c}, nil
}

func (c *Cache) Format(text string) []Block {
	sum := sha256.Sum256([]byte(text))
	key := hex.EncodeToString(sum[:])
	if blocks, ok := c.lru.Get(key); ok {
		return blocks
	}
	blocks := Format(text)
	c.lru.Add(key, blocks)
	return blocks
}

func (c *Cache) Len() int { return c.lru.Len() }
