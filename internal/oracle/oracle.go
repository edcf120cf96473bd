// Package oracle emulates the private question/answer oracle collaborator.
// A requester submits a question addressed to a divinity together with a
// fixed-width callback descriptor; when the divinity answers, the oracle
// invokes the callback on the target contract with the answer and the
// 5-element payload carried by the descriptor.
package oracle

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/defi-wonderland/aztec-coin-toss/internal/zknotes"
)

var (
	// ErrDuplicateQuestion is returned when a question id is reused.
	ErrDuplicateQuestion = errors.New("question id already submitted")
	// ErrUnknownQuestion is returned when answering a question that was
	// never submitted.
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrNotDivinity is returned when someone other than the question's
	// divinity submits an answer.
	ErrNotDivinity = errors.New("caller is not the question's divinity")
)

// Handler is the callback surface a contract registers to receive answers.
// sender is the address the invocation arrives from; trust decisions based
// on it are the callee's responsibility.
type Handler interface {
	OracleCallback(sender zknotes.Address, answer *big.Int, data [5]*big.Int) error
}

// Question is one pending or answered oracle question.
type Question struct {
	Requester zknotes.Address
	ID        *big.Int
	Divinity  zknotes.Address
	AnswerID  *big.Int
	// Callback[0] is the target contract; Callback[1..5] is the payload
	// delivered verbatim to it.
	Callback [6]*big.Int
	Answered bool
}

// Contract is one deployed oracle instance.
type Contract struct {
	mu        sync.Mutex
	address   zknotes.Address
	questions map[zknotes.Address]*Question
	handlers  map[zknotes.Address]Handler
}

// NewContract deploys an oracle instance.
func NewContract() *Contract {
	return &Contract{
		address:   zknotes.AddressFromBig(zknotes.RandomField()),
		questions: make(map[zknotes.Address]*Question),
		handlers:  make(map[zknotes.Address]Handler),
	}
}

// Address returns the contract's address.
func (c *Contract) Address() zknotes.Address { return c.address }

// RegisterCallback wires a contract address to its callback handler.
func (c *Contract) RegisterCallback(addr zknotes.Address, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[addr] = h
}

// SubmitQuestion records a question for the divinity to answer later.
func (c *Contract) SubmitQuestion(requester zknotes.Address, questionID *big.Int, divinity zknotes.Address, answerID *big.Int, callback [6]*big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := zknotes.AddressFromBig(questionID)
	if _, ok := c.questions[key]; ok {
		return ErrDuplicateQuestion
	}
	c.questions[key] = &Question{
		Requester: requester,
		ID:        new(big.Int).Set(questionID),
		Divinity:  divinity,
		AnswerID:  new(big.Int).Set(answerID),
		Callback:  callback,
	}
	return nil
}

// SubmitAnswer lets the question's divinity publish an answer. The oracle
// then invokes the callback target with its own address as sender, which is
// what downstream contracts check at settlement time.
func (c *Contract) SubmitAnswer(caller zknotes.Address, questionID, answer *big.Int) error {
	c.mu.Lock()
	q, ok := c.questions[zknotes.AddressFromBig(questionID)]
	if !ok {
		c.mu.Unlock()
		return ErrUnknownQuestion
	}
	if caller != q.Divinity {
		c.mu.Unlock()
		return ErrNotDivinity
	}
	target := zknotes.AddressFromBig(q.Callback[0])
	handler, registered := c.handlers[target]
	q.Answered = true
	c.mu.Unlock()

	if !registered {
		return fmt.Errorf("no callback handler registered for %s", target)
	}
	var data [5]*big.Int
	copy(data[:], q.Callback[1:])
	return handler.OracleCallback(c.address, answer, data)
}
