package input

// Source identifies where a key event came from.
type Source int

const (
	Mouse Source = iota
	Touch
	Keyboard
)

func (s Source) String() string {
	switch s {
	case Mouse:
		return "mouse"
	case Touch:
		return "touch"
	case Keyboard:
		return "keyboard"
	}
	return "unknown"
}

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// KeyEvent is a physical key press or release.
type KeyEvent struct {
	Code      int
	Down      bool
	Repeat    bool // auto-repeat of a key already held
	Modifiers Modifier
}

// KeySource delivers physical key events to subscribers. The returned
// function cancels the subscription.
type KeySource interface {
	Subscribe(fn func(KeyEvent)) (unsubscribe func())
}

// Dispatcher is a KeySource fed by the host's event loop.
type Dispatcher struct {
	subs map[int]func(KeyEvent)
	next int
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[int]func(KeyEvent))}
}

func (d *Dispatcher) Subscribe(fn func(KeyEvent)) func() {
	id := d.next
	d.next++
	d.subs[id] = fn
	return func() { delete(d.subs, id) }
}

// Dispatch delivers ev to every subscriber in subscription order.
func (d *Dispatcher) Dispatch(ev KeyEvent) {
	for id := 0; id < d.next; id++ {
		if fn, ok := d.subs[id]; ok {
			fn(ev)
		}
	}
}

// Subscribers is the number of live subscriptions.
func (d *Dispatcher) Subscribers() int {
	return len(d.subs)
}
