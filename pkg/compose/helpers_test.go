package compose

import "testing"

// node stands in for a rendering target.
type node struct {
	HTML string
}

func nodeOf(t *testing.T, self *Object) *node {
	t.Helper()
	n, ok := self.Get("node").(*node)
	if !ok {
		t.Fatalf("instance has no node, got %T", self.Get("node"))
	}
	return n
}

// trace records the order in which methods and advice run.
type trace struct {
	steps []int
}

func (tr *trace) push(n int) { tr.steps = append(tr.steps, n) }

// step returns a method that records n.
func (tr *trace) step(n int) *Method {
	return Fn(func(*Object, ...any) (any, error) {
		tr.push(n)
		return nil, nil
	})
}

// afterStep returns after-advice that records n.
func (tr *trace) afterStep(n int) *Decorator {
	return After(func(*Object, ...any) (any, error) {
		tr.push(n)
		return nil, nil
	})
}

// aroundStep returns around-advice that calls the base and then records n.
func (tr *trace) aroundStep(n int) *Decorator {
	return Around(func(base *Method) Func {
		return func(self *Object, args ...any) (any, error) {
			if _, err := base.Call(self, args...); err != nil {
				return nil, err
			}
			tr.push(n)
			return nil, nil
		}
	})
}

// counter returns an initializer that increments *n.
func counter(n *int) *Initializer {
	return Init(func(*Object, ...any) (any, error) {
		*n++
		return nil, nil
	})
}

// widgets mirrors a small widget hierarchy: Widget stores its node and
// renders a fixed greeting, MessageWidget renders its message, SpanishWidget
// only changes the message.
type widgets struct {
	Widget        *Type
	MessageWidget *Type
	SpanishWidget *Type
}

func newWidgets(t *testing.T) widgets {
	t.Helper()
	widget, err := Compose(
		Init(func(self *Object, args ...any) (any, error) {
			if len(args) > 0 {
				return nil, self.Set("node", args[0])
			}
			return nil, nil
		}),
		NewBag().
			Set("render", Named("widget.render", func(self *Object, _ ...any) (any, error) {
				nodeOf(t, self).HTML = "<div>hi</div>"
				return nil, nil
			})).
			Set("getNode", Named("widget.getNode", func(self *Object, _ ...any) (any, error) {
				return self.Get("node"), nil
			})),
	)
	if err != nil {
		t.Fatalf("compose Widget: %v", err)
	}
	message, err := Compose(widget, NewBag().
		Set("message", "Hello, World").
		Set("render", Named("message.render", func(self *Object, _ ...any) (any, error) {
			nodeOf(t, self).HTML = "<div>" + self.Get("message").(string) + "</div>"
			return nil, nil
		})))
	if err != nil {
		t.Fatalf("compose MessageWidget: %v", err)
	}
	spanish, err := Compose(message, NewBag().Set("message", "Hola"))
	if err != nil {
		t.Fatalf("compose SpanishWidget: %v", err)
	}
	return widgets{Widget: widget, MessageWidget: message, SpanishWidget: spanish}
}
