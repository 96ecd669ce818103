package schema

// Alphabet maps status kinds and auxiliary markers to the characters used in a token.
type Alphabet struct {
	Name      string
	Separator byte
	OutOfDate byte
	chars     map[StatusKind]byte
}

// Char returns the character for the kind and whether the alphabet defines one.
func (a Alphabet) Char(k StatusKind) (byte, bool) {
	c, ok := a.chars[k]
	return c, ok
}

// newAlphabet builds an alphabet from the shared base table plus per-alphabet overrides.
func newAlphabet(name string, separator, outOfDate byte, overrides map[StatusKind]byte) Alphabet {
	chars := map[StatusKind]byte{
		StatusModified:    'M',
		StatusAdded:       'A',
		StatusDeleted:     'D',
		StatusUnversioned: '?',
		StatusMissing:     '!',
		StatusReplaced:    'R',
		StatusConflicted:  'C',
		StatusObstructed:  '~',
		StatusIgnored:     'I',
		StatusIncomplete:  ':',
		StatusExternal:    'X',
	}
	for k, c := range overrides {
		chars[k] = c
	}
	return Alphabet{Name: name, Separator: separator, OutOfDate: outOfDate, chars: chars}
}

// StandardAlphabet uses the canonical status codes, meant for humans.
var StandardAlphabet = newAlphabet("standard", ' ', '*', nil)

// FileNameSafeAlphabet replaces characters that are unsafe in file and artifact names.
var FileNameSafeAlphabet = newAlphabet("file-name-safe", '-', 'd', map[StatusKind]byte{
	StatusUnversioned: 'u',
	StatusMissing:     'm',
	StatusObstructed:  'o',
	StatusIncomplete:  'i',
})
