package hotkey

import (
	"fmt"
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Windows virtual-key codes as reported in gohook rawcodes. Modifiers map to
// both their left and right variants.
var rawcodesByName = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":     {32},
	"enter":     {13},
	"esc":       {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"insert":    {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pagedown":  {34},

	"printscreen": {44},

	"left":  {37},
	"up":    {38},
	"right": {39},
	"down":  {40},
}

var aliases = map[string]string{
	"control": "ctrl",
	"option":  "alt",
	"win":     "cmd",
	"super":   "cmd",
	"meta":    "cmd",
	"return":  "enter",
	"escape":  "esc",
	"del":     "delete",
	"ins":     "insert",
	"pgup":    "pageup",
	"pgdn":    "pagedown",
	"prtsc":   "printscreen",
	"print":   "printscreen",
}

// Listener watches global key events for one key combination.
type Listener struct {
	combo string
	keys  []keyState

	mu      sync.Mutex
	stopped bool
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// New parses combo (e.g. "Ctrl+Alt+S") into a Listener.
func New(combo string) (*Listener, error) {
	names := parseHotkey(combo)
	if len(names) == 0 {
		return nil, fmt.Errorf("empty hotkey %q", combo)
	}
	l := &Listener{combo: combo}
	for _, name := range names {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return nil, fmt.Errorf("cannot map key %q in hotkey %q", name, combo)
		}
		l.keys = append(l.keys, keyState{name: name, rawcodes: codes})
	}
	return l, nil
}

// Start hooks global input and calls callback from the hook goroutine each
// time the full combination is down.
func (l *Listener) Start(callback func()) {
	log.Printf("Hotkey listener configured for: %s", l.combo)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}

		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				if l.press(ev.Rawcode) && callback != nil {
					log.Printf("Hotkey %s activated", l.combo)
					callback()
				}
			case gohook.KeyUp:
				l.release(ev.Rawcode)
			}
		}
		log.Printf("Hotkey event channel closed")
	}()
}

// Stop unhooks global input. It is safe to call more than once.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	gohook.End()
}

// press records a key down and reports whether the whole combination is now
// held. The pressed state resets after a match.
func (l *Listener) press(rawcode uint16) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.keys {
		if l.keys[i].matches(rawcode) {
			l.keys[i].pressed = true
		}
	}
	for i := range l.keys {
		if !l.keys[i].pressed {
			return false
		}
	}
	for i := range l.keys {
		l.keys[i].pressed = false
	}
	return true
}

func (l *Listener) release(rawcode uint16) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.keys {
		if l.keys[i].matches(rawcode) {
			l.keys[i].pressed = false
		}
	}
}

func (k keyState) matches(rawcode uint16) bool {
	for _, c := range k.rawcodes {
		if c == rawcode {
			return true
		}
	}
	return false
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+s" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if canonical, ok := aliases[part]; ok {
			part = canonical
		}
		keys = append(keys, part)
	}
	return keys
}

// keyNameToRawcodes maps a key name to its Windows virtual key code rawcodes
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if canonical, ok := aliases[keyName]; ok {
		keyName = canonical
	}
	if codes, ok := rawcodesByName[keyName]; ok {
		return codes
	}

	// Letters and digits share their ASCII codes with VK codes.
	if len(keyName) == 1 {
		c := keyName[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c - 'a' + 'A')}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c)}
		}
	}

	// F1-F24 are VK_F1 (112) onwards.
	var n int
	if _, err := fmt.Sscanf(keyName, "f%d", &n); err == nil && n >= 1 && n <= 24 && keyName == fmt.Sprintf("f%d", n) {
		return []uint16{uint16(111 + n)}
	}

	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
	return nil
}
