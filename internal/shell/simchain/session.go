package simchain

import "github.com/ethereum/go-ethereum/common"

// =============================================================================
// Broadcast Session
// =============================================================================

// Session is a recorded broadcast session. Suspend drops the session;
// Resume restores only the public sender address, mirroring the real
// collaborator's limitation that a private credential cannot be restored.
type Session struct {
	active bool
	sender common.Address

	// Suspends and Resumes count lifecycle transitions, for tests.
	Suspends int
	Resumes  int
}

// OpenSession starts an active session signing as sender.
func OpenSession(sender common.Address) *Session {
	return &Session{active: true, sender: sender}
}

func (s *Session) Active() bool {
	return s.active
}

func (s *Session) Sender() common.Address {
	return s.sender
}

func (s *Session) Suspend() {
	s.active = false
	s.Suspends++
}

func (s *Session) Resume(sender common.Address) {
	s.sender = sender
	s.active = true
	s.Resumes++
}
