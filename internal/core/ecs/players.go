package ecs

// Players tracks how many local logic passes a tick runs and which slot is
// being simulated. It is only touched from the game goroutine.
type Players struct {
	amount  int
	current int
	own     int
}

func NewPlayers() *Players {
	return &Players{amount: 1}
}

func (p *Players) Amount() int { return p.amount }

func (p *Players) SetAmount(n int) {
	if n < 0 {
		n = 0
	}
	p.amount = n
}

// Current is the slot of the logic pass in progress.
func (p *Players) Current() int { return p.current }

func (p *Players) SetCurrent(slot int) { p.current = slot }

// Own is the slot controlled by this process.
func (p *Players) Own() int { return p.own }

func (p *Players) SetOwn(slot int) { p.own = slot }
