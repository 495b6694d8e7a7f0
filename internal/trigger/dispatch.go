package trigger

// TriggerAction runs performers on area events. It implements Listener.
type TriggerAction struct {
	Enter []*Performer
	Stay  []*Performer
	Exit  []*Performer
}

// OnTrigger dispatches ev to the performers bound to its kind.
func (t *TriggerAction) OnTrigger(ev Event) {
	var list []*Performer
	switch ev.Kind {
	case EventEnter:
		list = t.Enter
	case EventStay:
		list = t.Stay
	case EventExit:
		list = t.Exit
	}
	if ev.Body == nil {
		return
	}
	for _, p := range list {
		p.Perform(ev.Frame, ev.Body)
	}
}

// Bind attaches p to the given event kinds.
func (t *TriggerAction) Bind(p *Performer, kinds ...EventKind) {
	for _, k := range kinds {
		switch k {
		case EventEnter:
			t.Enter = append(t.Enter, p)
		case EventStay:
			t.Stay = append(t.Stay, p)
		case EventExit:
			t.Exit = append(t.Exit, p)
		}
	}
}
