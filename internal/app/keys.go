package app

import "github.com/nhle/wellness/internal/keys"

// KeyMap is the keys package map, aliased for the root model.
type KeyMap = keys.KeyMap

// DefaultKeyMap delegates to keys.DefaultKeyMap.
func DefaultKeyMap() *KeyMap {
	return keys.DefaultKeyMap()
}
