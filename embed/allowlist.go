package embed

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/naoina/toml"
)

//go:embed allowlist.toml
var defaultAllowListToml []byte

// AllowList is the declarative description of what may survive sanitization.
type AllowList struct {
	Tags           map[string][]string          `toml:"tags"`
	GlobalAttrs    []string                     `toml:"global_attrs"`
	DropTags       []string                     `toml:"drop_tags"`
	URLAttrs       []string                     `toml:"url_attrs"`
	URLSchemes     []string                     `toml:"url_schemes"`
	SetAttrs       map[string]map[string]string `toml:"set_attrs"`
	SpoilerClasses []string                     `toml:"spoiler_classes"`
	SarcasmClasses []string                     `toml:"sarcasm_classes"`
}

// DefaultAllowList returns a fresh copy of the built-in allow-list.
func DefaultAllowList() *AllowList {
	return mustUnmarshalAllowList(defaultAllowListToml)
}

func mustUnmarshalAllowList(cnf []byte) *AllowList {
	al, err := ParseAllowList(cnf)
	if err != nil {
		panic("bad default allow-list: " + err.Error())
	}
	return al
}

// ParseAllowList decodes a TOML allow-list document.
func ParseAllowList(cnf []byte) (*AllowList, error) {
	al := &AllowList{}
	if err := toml.Unmarshal(cnf, al); err != nil {
		return nil, fmt.Errorf("allow-list: %w", err)
	}
	if len(al.Tags) == 0 {
		return nil, fmt.Errorf("allow-list: no tags allowed")
	}
	return al, nil
}

// LoadAllowList reads a TOML allow-list from a file.
func LoadAllowList(path string) (*AllowList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("allow-list: %w", err)
	}
	return ParseAllowList(data)
}

type forcedAttr struct {
	key string
	val string
}

// policy is the compiled, read-only form of an AllowList.
type policy struct {
	tags       map[string]map[string]bool
	global     map[string]bool
	drop       map[string]bool
	urlAttrs   map[string]bool
	urlSchemes map[string]bool
	forced     map[string][]forcedAttr
	spoiler    map[string]bool
	sarcasm    map[string]bool
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, v := range list {
		set[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return set
}

func compile(al *AllowList) *policy {
	p := &policy{
		tags:       make(map[string]map[string]bool, len(al.Tags)),
		global:     toSet(al.GlobalAttrs),
		drop:       toSet(al.DropTags),
		urlAttrs:   toSet(al.URLAttrs),
		urlSchemes: toSet(al.URLSchemes),
		forced:     make(map[string][]forcedAttr, len(al.SetAttrs)),
		spoiler:    toSet(al.SpoilerClasses),
		sarcasm:    toSet(al.SarcasmClasses),
	}
	for tag, attrs := range al.Tags {
		tag = strings.ToLower(tag)
		if p.drop[tag] {
			// drop_tags wins over tags
			continue
		}
		p.tags[tag] = toSet(attrs)
	}
	for tag, attrs := range al.SetAttrs {
		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		list := make([]forcedAttr, 0, len(keys))
		for _, k := range keys {
			list = append(list, forcedAttr{key: strings.ToLower(k), val: attrs[k]})
		}
		p.forced[strings.ToLower(tag)] = list
	}
	return p
}

func (p *policy) allowsTag(tag string) bool {
	_, ok := p.tags[tag]
	return ok
}

func (p *policy) allowsAttr(tag, key string) bool {
	// inline handlers and style never pass, whatever the list says
	if strings.HasPrefix(key, "on") || key == "style" {
		return false
	}
	return p.global[key] || p.tags[tag][key]
}

// isMarkerAttr reports the attributes that carry spoiler and sarcasm
// markers. They are kept on every allowed element.
func isMarkerAttr(key string) bool {
	switch key {
	case "class", "data-spoiler", "data-sarcasm":
		return true
	}
	return false
}

func (p *policy) isMarker(token string) bool {
	return p.spoiler[token] || p.sarcasm[token]
}
