package compiler

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const workletSuffix = "Worklet"

// IsEventAttr reports whether key is an event handler attribute: "on"
// followed by an uppercase letter, as in onClick.
func IsEventAttr(key string) bool {
	if !strings.HasPrefix(key, "on") {
		return false
	}
	r, _ := utf8.DecodeRuneInString(key[2:])
	return r != utf8.RuneError && unicode.IsUpper(r)
}

// ResolveEventKey maps an event attribute to its template binding key. ok is
// false when key is not an event attribute and must be left untouched.
//
//	onScrollUpdateWorklet        -> worklet:onscrollupdate
//	shouldResponseOnMoveWorklet  -> worklet:should-response-on-move
//	onClick                      -> bindtap (onTap on touch-first platforms)
func ResolveEventKey(key string, platform Platform) (binding string, ok bool) {
	if strings.HasSuffix(key, workletSuffix) {
		name := key
		for strings.HasSuffix(name, workletSuffix) {
			name = strings.TrimSuffix(name, workletSuffix)
		}
		if strings.HasPrefix(name, "on") {
			return "worklet:" + strings.ToLower(name), true
		}
		return "worklet:" + KebabCase(name), true
	}

	if !IsEventAttr(key) {
		return "", false
	}

	event := strings.ToLower(key[2:])
	if event == "click" {
		event = "tap"
	}

	if platform.TouchFirst() {
		if event == "tap" {
			return "onTap", true
		}
		return key, true
	}
	return "bind" + event, true
}
