package mp4io

import (
	"bytes"
	"fmt"
	"sort"
)

// ChildrenField is the field holding the child boxes of a container kind.
const ChildrenField = "children"

// Kind describes one registered box type.
type Kind struct {
	Tag  Tag
	Name string
	// Full kinds start their body with version and flags.
	Full bool
	// Container kinds hold only child boxes, under ChildrenField.
	Container bool
	Fields    []Field
}

var registry = map[Tag]*Kind{}

// Register adds a kind to the table consulted at every box boundary. It is
// meant to be called from init functions and panics on a duplicate tag.
func Register(k *Kind) {
	if _, dup := registry[k.Tag]; dup {
		panic(fmt.Sprintf("mp4io: box type %q registered twice", k.Tag.String()))
	}
	if k.Name == "" {
		k.Name = k.Tag.String()
	}
	registry[k.Tag] = k
}

// Lookup returns the kind registered for tag, or nil.
func Lookup(tag Tag) *Kind {
	return registry[tag]
}

// Kinds returns all registered kinds ordered by tag.
func Kinds() []*Kind {
	out := make([]*Kind, 0, len(registry))
	for _, k := range registry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Tag[:], out[j].Tag[:]) < 0
	})
	return out
}

func container(name string) *Kind {
	return &Kind{
		Tag:       StringToTag(name),
		Name:      name,
		Container: true,
		Fields:    []Field{F(ChildrenField, Boxes())},
	}
}

func opaque(name string) *Kind {
	return &Kind{
		Tag:    StringToTag(name),
		Name:   name,
		Fields: []Field{F("data", Raw())},
	}
}

func plainBox(name string, fields ...Field) *Kind {
	return &Kind{Tag: StringToTag(name), Name: name, Fields: fields}
}

func fullBox(name string, fields ...Field) *Kind {
	return &Kind{Tag: StringToTag(name), Name: name, Full: true, Fields: fields}
}
