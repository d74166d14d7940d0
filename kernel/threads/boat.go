package threads

import "sync"

// BoatGrader records each boat crossing performed while ferrying adults
// and children from Oahu to Molokai, so a test can check that the moves
// reported are a valid solution to the puzzle (no more than two
// passengers per crossing, an adult never crosses without a child pilot
// having crossed just before, nobody strands the boat on the wrong
// island).
type BoatGrader interface {
	ChildRowToMolokai()
	ChildRowToOahu()
	ChildRideToMolokai()
	ChildRideToOahu()
	AdultRowToMolokai()
}

// boatPerson is the goroutine-side half of one adult or child crossing
// Oahu to Molokai. command delivers the move the orchestrator wants this
// person to perform next; ack reports that the move (and the matching
// grader call) has completed. Unlike the rest of this package, a
// person's body is plain goroutine/channel code rather than a scheduled
// Thread: the puzzle's own rules, not priority or donation, decide who
// moves when, so there is nothing for the scheduler to arbitrate.
type boatPerson struct {
	command chan func()
	ack     chan struct{}
	done    chan struct{}
}

func newBoatPerson() *boatPerson {
	p := &boatPerson{
		command: make(chan func()),
		ack:     make(chan struct{}),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		for move := range p.command {
			move()
			p.ack <- struct{}{}
		}
	}()
	return p
}

// perform hands move to the person's goroutine and blocks until it runs.
func (p *boatPerson) perform(move func()) {
	p.command <- move
	<-p.ack
}

// retire stops the person's goroutine and waits for it to exit.
func (p *boatPerson) retire() {
	close(p.command)
	<-p.done
}

// RunBoatPuzzle simulates ferrying adults and children from Oahu to
// Molokai using a single two-seat boat: an adult crosses only behind a
// child pilot (reported as the pilot's ChildRowToMolokai followed by the
// adult's AdultRowToMolokai), and two children may cross together with
// either one piloting. The grader calls do not track which island the
// boat is on.
// It spawns one goroutine per adult and per child, drives every crossing
// by handing that person's goroutine the matching BoatGrader call, and
// waits for all of them to retire before returning.
//
// The sequencing needs no negotiation between the goroutines themselves:
// a single child shuttles every adult across two boat-trips at a time
// (pilot and adult over, pilot back alone), and once no adults remain the
// rest of the children drain two at a time (one rows back for the
// others) until the last pair crosses together to finish.
func RunBoatPuzzle(adults, children int, grader BoatGrader) {
	if adults > 0 && children == 0 {
		panic("threads: boat puzzle needs at least one child to pilot adults across")
	}

	adultPeople := make([]*boatPerson, adults)
	for i := range adultPeople {
		adultPeople[i] = newBoatPerson()
	}
	childPeople := make([]*boatPerson, children)
	for i := range childPeople {
		childPeople[i] = newBoatPerson()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		childrenAtOahu := append([]*boatPerson{}, childPeople...)

		if children > 0 {
			pilot := childrenAtOahu[len(childrenAtOahu)-1]
			childrenAtOahu = childrenAtOahu[:len(childrenAtOahu)-1]

			for _, adult := range adultPeople {
				pilot.perform(grader.ChildRowToMolokai)
				adult.perform(grader.AdultRowToMolokai)
				pilot.perform(grader.ChildRowToOahu)
			}

			childrenAtOahu = append(childrenAtOahu, pilot)
		}

		for len(childrenAtOahu) > 2 {
			a, b := childrenAtOahu[0], childrenAtOahu[1]
			childrenAtOahu = childrenAtOahu[2:]
			a.perform(grader.ChildRowToMolokai)
			b.perform(grader.ChildRideToMolokai)
			a.perform(grader.ChildRowToOahu)
			childrenAtOahu = append(childrenAtOahu, a)
		}
		if len(childrenAtOahu) == 2 {
			childrenAtOahu[0].perform(grader.ChildRowToMolokai)
			childrenAtOahu[1].perform(grader.ChildRideToMolokai)
		} else if len(childrenAtOahu) == 1 {
			childrenAtOahu[0].perform(grader.ChildRowToMolokai)
		}
	}()
	wg.Wait()

	for _, p := range adultPeople {
		p.retire()
	}
	for _, p := range childPeople {
		p.retire()
	}
}
