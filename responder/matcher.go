package responder

// Command is the byte sequence that triggers a reply.
var Command = [CommandLen]byte{'M', 'A', 'R', 'C', 'O'}

// Reply is the byte sequence transmitted after Command is recognized.
// It is never written.
var Reply = []byte("\n\rPOLO!\n\r")

// CommandLen is the size of the command window.
const CommandLen = 5

// Matcher keeps the most recently received bytes and fires a one-cycle
// trigger when they equal Command.
type Matcher struct {
	window  [CommandLen]byte
	count   int
	trigger bool
}

// Step advances the matcher by one clock cycle. valid and b are the
// receiver outputs registered on the previous cycle.
func (m Matcher) Step(valid bool, b byte) Matcher {
	m.trigger = false
	if !valid {
		return m
	}

	if m.count < CommandLen {
		m.window[m.count] = b
		m.count++
	} else {
		copy(m.window[:], m.window[1:])
		m.window[CommandLen-1] = b
	}

	if m.count == CommandLen && m.window == Command {
		m.trigger = true
		m.window = [CommandLen]byte{}
		m.count = 0
	}

	return m
}

// Triggered reports whether the command was matched on the last edge.
func (m Matcher) Triggered() bool { return m.trigger }

// Window returns a copy of the buffered bytes, oldest first.
func (m Matcher) Window() []byte {
	w := make([]byte, m.count)
	copy(w, m.window[:m.count])
	return w
}
