package threads

// Communicator is a synchronous rendezvous channel for a single 32-bit
// word: Speak blocks until a matching Listen is ready to receive, and
// vice versa, so that every word handed to Speak is received by exactly
// one Listen call.
type Communicator struct {
	lock *Lock

	// speakerWaiting and listenerWaiting are condition variables a
	// speaker/listener sleeps on while waiting for its counterpart.
	speakerWaiting  *Condition
	listenerWaiting *Condition

	listenerCount int
	word          int32
	wordReady     bool
}

// NewCommunicator returns an idle communicator.
func NewCommunicator() *Communicator {
	lock := NewLock()
	return &Communicator{
		lock:            lock,
		speakerWaiting:  NewCondition(lock),
		listenerWaiting: NewCondition(lock),
	}
}

// Speak blocks until another thread calls Listen, then transfers word to
// it and returns.
func (c *Communicator) Speak(word int32) {
	c.lock.Acquire()
	defer c.lock.Release()

	for c.wordReady || c.listenerCount == 0 {
		c.speakerWaiting.Wait()
	}

	c.word = word
	c.wordReady = true
	c.listenerWaiting.Wake()
}

// Listen blocks until another thread calls Speak, then returns the word
// it transferred.
func (c *Communicator) Listen() int32 {
	c.lock.Acquire()
	defer c.lock.Release()

	c.listenerCount++
	c.speakerWaiting.Wake()

	for !c.wordReady {
		c.listenerWaiting.Wait()
	}

	word := c.word
	c.wordReady = false
	c.listenerCount--
	c.speakerWaiting.Wake()
	return word
}
